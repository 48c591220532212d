package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/tendant/simple-blog/internal/logging"
	"github.com/tendant/simple-blog/pkg/simpleblog/api"
	"github.com/tendant/simple-blog/pkg/simpleblog/config"
)

func main() {
	var configFile string
	flags := flag.NewFlagSet("server", flag.ExitOnError)
	flags.StringVar(&configFile, "config", "", "path to a yaml, json, toml or .env config file")
	flags.Usage = func() {
		fmt.Fprintf(flags.Output(), "Usage of %s:\n", os.Args[0])
		flags.PrintDefaults()
		var cfg config.ServerConfig
		cleanenv.FUsage(flags.Output(), &cfg, nil)()
	}
	flags.Parse(os.Args[1:])

	if err := run(configFile); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run(configFile string) error {
	serverConfig, err := config.Load(config.WithConfigFile(configFile), config.WithEnv())
	if err != nil {
		return fmt.Errorf("failed to load server configuration: %w", err)
	}

	logger, err := logging.New(serverConfig.LogLevel, serverConfig.LogFormat)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, err := serverConfig.BuildRepository(ctx)
	if err != nil {
		return fmt.Errorf("failed to build repository: %w", err)
	}
	defer repo.Close()

	svc, err := serverConfig.BuildService(repo, logger)
	if err != nil {
		return fmt.Errorf("failed to build service: %w", err)
	}

	routerConfig := api.DefaultRouterConfig()
	routerConfig.MaxBodyBytes = serverConfig.MaxBodyBytes
	routerConfig.AllowedOrigins = serverConfig.AllowedOrigins
	routerConfig.RequestTimeout = serverConfig.RequestTimeout

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%s", serverConfig.Port),
		Handler:           api.NewRouter(svc, routerConfig),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Simple Blog Server starting",
			"port", serverConfig.Port,
			"env", serverConfig.Environment,
			"database", redact(serverConfig.DatabaseURL),
			"storage", serverConfig.StorageURL,
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("Server exiting")
	return nil
}
