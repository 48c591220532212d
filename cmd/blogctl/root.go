package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/tendant/simple-blog/internal/logging"
	"github.com/tendant/simple-blog/pkg/simpleblog"
	"github.com/tendant/simple-blog/pkg/simpleblog/config"
)

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	configFile  string
	databaseURL string
	logLevel    string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "blogctl",
		Short: "Administer a simple-blog collection store",
		Long: `blogctl works directly on the collection store used by the blog server.

The store is selected like the server does it: DATABASE_URL from the
environment or a config file, overridable with --database.

Examples:
  blogctl import --authors authors.json --blog-posts blogPosts.json
  blogctl list authors
  blogctl export blogPosts -o blogPosts.json
  blogctl pdf 0c8f... -o post.pdf`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "Config file (yaml, json, toml or .env)")
	cmd.PersistentFlags().StringVar(&opts.databaseURL, "database", "", "Collection store URL, overrides DATABASE_URL")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level")

	cmd.AddCommand(
		newImportCmd(opts),
		newExportCmd(opts),
		newListCmd(opts),
		newPDFCmd(opts),
	)
	return cmd
}

// loadConfig resolves the server configuration plus flag overrides.
func (o *globalOptions) loadConfig() (*config.ServerConfig, error) {
	options := []config.Option{config.WithConfigFile(o.configFile), config.WithEnv()}
	if o.databaseURL != "" {
		options = append(options, config.WithDatabaseURL(o.databaseURL))
	}
	return config.Load(options...)
}

func (o *globalOptions) logger() (*slog.Logger, error) {
	return logging.New(o.logLevel, logging.FormatText)
}

// openRepository opens the configured store. The caller must Close it.
func (o *globalOptions) openRepository(ctx context.Context) (simpleblog.Repository, *config.ServerConfig, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	repo, err := cfg.BuildRepository(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open collection store: %w", err)
	}
	return repo, cfg, nil
}

func parseCollection(name string) (simpleblog.Collection, error) {
	switch simpleblog.Collection(name) {
	case simpleblog.CollectionAuthors, simpleblog.CollectionBlogPosts:
		return simpleblog.Collection(name), nil
	default:
		return "", fmt.Errorf("unknown collection %q (use %s or %s)", name, simpleblog.CollectionAuthors, simpleblog.CollectionBlogPosts)
	}
}
