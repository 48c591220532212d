package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/simple-blog/pkg/simpleblog"
	"github.com/tendant/simple-blog/pkg/simpleblog/pdf"
	"github.com/tendant/simple-blog/pkg/simpleblog/repo/jsonfile"
	"github.com/tendant/simple-blog/pkg/simpleblog/repo/memory"
	repopg "github.com/tendant/simple-blog/pkg/simpleblog/repo/postgres"
	"github.com/tendant/simple-blog/pkg/simpleblog/repo/sqlite"
	fsstorage "github.com/tendant/simple-blog/pkg/simpleblog/storage/fs"
	memorystorage "github.com/tendant/simple-blog/pkg/simpleblog/storage/memory"
	s3storage "github.com/tendant/simple-blog/pkg/simpleblog/storage/s3"
	"github.com/tendant/simple-blog/pkg/simpleblog/urlstrategy"
)

// Backend kinds recognised in DATABASE_URL and STORAGE_URL.
const (
	KindNone     = "none"
	KindMemory   = "memory"
	KindJSONFile = "jsonfile"
	KindSQLite   = "sqlite"
	KindPostgres = "postgres"
	KindFS       = "fs"
	KindS3       = "s3"
)

func databaseKind(dbURL string) (string, error) {
	switch {
	case dbURL == "" || dbURL == "memory" || dbURL == "memory://":
		return KindMemory, nil
	case strings.HasPrefix(dbURL, "file://"):
		return KindJSONFile, nil
	case strings.HasPrefix(dbURL, "sqlite://"):
		return KindSQLite, nil
	case strings.HasPrefix(dbURL, "postgres://"), strings.HasPrefix(dbURL, "postgresql://"):
		return KindPostgres, nil
	default:
		return "", fmt.Errorf("unsupported DATABASE_URL format: %s (use 'memory', 'file://', 'sqlite://' or 'postgres://')", dbURL)
	}
}

func storageKind(storageURL string) (string, error) {
	switch {
	case storageURL == "" || storageURL == "none":
		return KindNone, nil
	case storageURL == "memory" || storageURL == "memory://":
		return KindMemory, nil
	case strings.HasPrefix(storageURL, "fs://"), strings.HasPrefix(storageURL, "file://"):
		return KindFS, nil
	case strings.HasPrefix(storageURL, "s3://"):
		return KindS3, nil
	default:
		return "", fmt.Errorf("unsupported STORAGE_URL format: %s (use 'none', 'memory', 'fs://...' or 's3://...')", storageURL)
	}
}

// localPath strips scheme:// and rejects an empty remainder.
func localPath(raw, scheme string) (string, error) {
	path := strings.TrimPrefix(raw, scheme+"://")
	if path == "" {
		return "", fmt.Errorf("path cannot be empty in %s", raw)
	}
	return path, nil
}

// BuildRepository opens the collection store named by DatabaseURL. The
// caller owns the result and must Close it.
func (c *ServerConfig) BuildRepository(ctx context.Context) (simpleblog.Repository, error) {
	kind, err := databaseKind(c.DatabaseURL)
	if err != nil {
		return nil, err
	}

	switch kind {
	case KindMemory:
		return memory.New(), nil

	case KindJSONFile:
		dir, err := localPath(c.DatabaseURL, "file")
		if err != nil {
			return nil, err
		}
		repo, err := jsonfile.New(jsonfile.Config{Dir: dir})
		if err != nil {
			return nil, err
		}
		return repo, nil

	case KindSQLite:
		path, err := localPath(c.DatabaseURL, "sqlite")
		if err != nil {
			return nil, err
		}
		repo, err := sqlite.NewFromPath(path)
		if err != nil {
			return nil, err
		}
		return repo, nil

	default:
		return c.buildPostgresRepository(ctx)
	}
}

// pooledRepository closes the pool it was built on.
type pooledRepository struct {
	*repopg.Repository
	pool *pgxpool.Pool
}

func (r *pooledRepository) Close() error {
	r.pool.Close()
	return nil
}

func (c *ServerConfig) buildPostgresRepository(ctx context.Context) (simpleblog.Repository, error) {
	cfg, err := pgxpool.ParseConfig(c.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
	}

	schema := c.DBSchema
	if schema != "" {
		searchPath := "SET search_path TO " + pgx.Identifier{schema}.Sanitize()
		cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			_, err := conn.Exec(ctx, searchPath)
			return err
		}
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	if schema != "" {
		if _, err := pool.Exec(ctx, "CREATE SCHEMA IF NOT EXISTS "+pgx.Identifier{schema}.Sanitize()); err != nil {
			pool.Close()
			return nil, fmt.Errorf("create schema %s: %w", schema, err)
		}
	}
	if err := repopg.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &pooledRepository{Repository: repopg.NewWithPool(pool), pool: pool}, nil
}

// BuildBlobStore opens the media store named by StorageURL. It returns nil
// without error for "none", which disables uploads.
func (c *ServerConfig) BuildBlobStore() (simpleblog.BlobStore, error) {
	kind, err := storageKind(c.StorageURL)
	if err != nil {
		return nil, err
	}

	switch kind {
	case KindNone:
		return nil, nil

	case KindMemory:
		return memorystorage.New(), nil

	case KindFS:
		scheme := "fs"
		if strings.HasPrefix(c.StorageURL, "file://") {
			scheme = "file"
		}
		dir, err := localPath(c.StorageURL, scheme)
		if err != nil {
			return nil, err
		}
		store, err := fsstorage.New(fsstorage.Config{BaseDir: dir})
		if err != nil {
			return nil, err
		}
		return store, nil

	default:
		s3Config, err := c.s3Config()
		if err != nil {
			return nil, err
		}
		store, err := s3storage.New(s3Config)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
}

// s3Config merges S3Config with the bucket and query parameters of
// s3://bucket?region=...&endpoint=...&path_style=true&prefix=...
func (c *ServerConfig) s3Config() (s3storage.Config, error) {
	u, err := url.Parse(c.StorageURL)
	if err != nil {
		return s3storage.Config{}, fmt.Errorf("failed to parse STORAGE_URL: %w", err)
	}
	if u.Host == "" {
		return s3storage.Config{}, errors.New("S3 bucket name cannot be empty in STORAGE_URL")
	}

	cfg := s3storage.Config{
		Region:                 c.S3.Region,
		Bucket:                 u.Host,
		AccessKeyID:            c.S3.AccessKeyID,
		SecretAccessKey:        c.S3.SecretAccessKey,
		Endpoint:               c.S3.Endpoint,
		UsePathStyle:           c.S3.UsePathStyle,
		KeyPrefix:              c.S3.KeyPrefix,
		EnableSSE:              c.S3.EnableSSE,
		SSEAlgorithm:           c.S3.SSEAlgorithm,
		SSEKMSKeyID:            c.S3.SSEKMSKeyID,
		CreateBucketIfNotExist: c.S3.CreateBucketIfNotExist,
	}

	q := u.Query()
	if v := q.Get("region"); v != "" {
		cfg.Region = v
	}
	if v := q.Get("endpoint"); v != "" {
		cfg.Endpoint = v
	}
	if v := q.Get("prefix"); v != "" {
		cfg.KeyPrefix = v
	}
	if v := q.Get("path_style"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return s3storage.Config{}, fmt.Errorf("invalid path_style in STORAGE_URL: %w", err)
		}
		cfg.UsePathStyle = b
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	return cfg, nil
}

// BuildURLStrategy returns the strategy that turns object keys into links.
func (c *ServerConfig) BuildURLStrategy() (simpleblog.URLStrategy, error) {
	return urlstrategy.NewURLStrategy(urlstrategy.Config{
		Type:       urlstrategy.URLStrategyType(c.URLStrategy),
		CDNBaseURL: c.CDNBaseURL,
		APIBaseURL: c.PublicBaseURL,
	})
}

// BuildService creates a Service over repo from the server configuration.
func (c *ServerConfig) BuildService(repo simpleblog.Repository, logger *slog.Logger) (simpleblog.Service, error) {
	if logger == nil {
		logger = slog.Default()
	}

	options := []simpleblog.Option{
		simpleblog.WithRepository(repo),
		simpleblog.WithLogger(logger),
		simpleblog.WithAvatarServiceURL(c.AvatarServiceURL),
		simpleblog.WithEmptyListNotFound(c.EmptyListNotFound),
		simpleblog.WithUniqueEmails(c.EnforceUniqueEmail),
	}

	blobStore, err := c.BuildBlobStore()
	if err != nil {
		return nil, fmt.Errorf("failed to build media store: %w", err)
	}
	if blobStore != nil {
		options = append(options, simpleblog.WithBlobStore(blobStore))
	}

	strategy, err := c.BuildURLStrategy()
	if err != nil {
		return nil, fmt.Errorf("failed to build url strategy: %w", err)
	}
	options = append(options, simpleblog.WithURLStrategy(strategy))

	if c.EnableEventLogging {
		options = append(options, simpleblog.WithEventSink(simpleblog.NewLogEventSink(logger)))
	}

	fetcherOpts := []pdf.FetcherOption{pdf.WithTimeout(c.CoverFetchTimeout)}
	if c.CoverCacheSize > 0 {
		fetcherOpts = append(fetcherOpts, pdf.WithCacheSize(c.CoverCacheSize))
	}
	fetcher, err := pdf.NewHTTPFetcher(fetcherOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build cover fetcher: %w", err)
	}
	options = append(options,
		simpleblog.WithCoverFetcher(fetcher),
		simpleblog.WithExporter(pdf.NewRenderer(
			pdf.WithPageSize(c.PDFPageSize),
			pdf.WithComments(c.PDFComments),
			pdf.WithLogger(logger),
		)),
	)

	return simpleblog.New(options...)
}
