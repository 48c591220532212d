package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tendant/simple-blog/pkg/simpleblog"
	"github.com/tendant/simple-blog/pkg/simpleblog/urlstrategy"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Defaults used by the server binary.
const (
	DefaultDatabaseURL = "sqlite://./data/blog.db"
	DefaultStorageURL  = "fs://./data/media"
)

func defaults() ServerConfig {
	return ServerConfig{
		Port:               "8080",
		Environment:        "development",
		LogLevel:           "info",
		LogFormat:          "text",
		DatabaseURL:        DefaultDatabaseURL,
		StorageURL:         DefaultStorageURL,
		PublicBaseURL:      urlstrategy.DefaultAPIBaseURL,
		URLStrategy:        string(urlstrategy.StrategyTypeContentBased),
		AvatarServiceURL:   simpleblog.DefaultAvatarServiceURL,
		EmptyListNotFound:  true,
		EnableEventLogging: true,
		PDFPageSize:        "A4",
		PDFComments:        true,
		CoverFetchTimeout:  10 * time.Second,
		CoverCacheSize:     64,
		MaxBodyBytes:       20 << 20,
		RequestTimeout:     60 * time.Second,
		AllowedOrigins:     []string{"*"},
		S3: S3Config{
			Region: "us-east-1",
		},
	}
}

// ServerConfig represents server configuration for the simple-blog service.
// Tags drive cleanenv for env vars and config files.
type ServerConfig struct {
	Port        string `yaml:"port" json:"port" env:"PORT" env-description:"HTTP listen port"`
	Environment string `yaml:"environment" json:"environment" env:"ENVIRONMENT" env-description:"development, production or testing"`
	LogLevel    string `yaml:"log_level" json:"log_level" env:"LOG_LEVEL" env-description:"debug, info, warn or error"`
	LogFormat   string `yaml:"log_format" json:"log_format" env:"LOG_FORMAT" env-description:"text or json"`

	// Persistence: memory, file:///dir, sqlite://path or postgres://...
	DatabaseURL string `yaml:"database_url" json:"database_url" env:"DATABASE_URL" env-description:"collection store URL"`
	DBSchema    string `yaml:"db_schema" json:"db_schema" env:"DB_SCHEMA" env-description:"Postgres schema (search_path)"`

	// Media: none, memory, fs://dir or s3://bucket
	StorageURL string   `yaml:"storage_url" json:"storage_url" env:"STORAGE_URL" env-description:"media store URL"`
	S3         S3Config `yaml:"s3" json:"s3"`

	PublicBaseURL string `yaml:"public_base_url" json:"public_base_url" env:"PUBLIC_BASE_URL" env-description:"base URL written into media links"`
	URLStrategy   string `yaml:"url_strategy" json:"url_strategy" env:"URL_STRATEGY" env-description:"content-based or cdn"`
	CDNBaseURL    string `yaml:"cdn_base_url" json:"cdn_base_url" env:"CDN_BASE_URL" env-description:"base URL for the cdn strategy"`

	AvatarServiceURL   string `yaml:"avatar_service_url" json:"avatar_service_url" env:"AVATAR_SERVICE_URL" env-description:"generated avatar service"`
	EmptyListNotFound  bool   `yaml:"empty_list_not_found" json:"empty_list_not_found" env:"EMPTY_LIST_NOT_FOUND" env-description:"answer 404 for empty lists"`
	EnforceUniqueEmail bool   `yaml:"enforce_unique_email" json:"enforce_unique_email" env:"ENFORCE_UNIQUE_EMAIL" env-description:"reject duplicate author emails"`
	EnableEventLogging bool   `yaml:"enable_event_logging" json:"enable_event_logging" env:"ENABLE_EVENT_LOGGING" env-description:"log mutation events"`

	PDFPageSize       string        `yaml:"pdf_page_size" json:"pdf_page_size" env:"PDF_PAGE_SIZE" env-description:"A4, A5, Letter or Legal"`
	PDFComments       bool          `yaml:"pdf_comments" json:"pdf_comments" env:"PDF_COMMENTS" env-description:"include comments in exports"`
	CoverFetchTimeout time.Duration `yaml:"cover_fetch_timeout" json:"cover_fetch_timeout" env:"COVER_FETCH_TIMEOUT" env-description:"timeout for remote cover images"`
	CoverCacheSize    int           `yaml:"cover_cache_size" json:"cover_cache_size" env:"COVER_CACHE_SIZE" env-description:"remote covers kept in memory"`

	MaxBodyBytes   int64         `yaml:"max_body_bytes" json:"max_body_bytes" env:"MAX_BODY_BYTES" env-description:"request body limit"`
	RequestTimeout time.Duration `yaml:"request_timeout" json:"request_timeout" env:"REQUEST_TIMEOUT" env-description:"per request timeout"`
	AllowedOrigins []string      `yaml:"allowed_origins" json:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-separator:"," env-description:"CORS origins"`
}

// S3Config holds the S3 media store settings not carried by STORAGE_URL.
type S3Config struct {
	Region                 string `yaml:"region" json:"region" env:"AWS_REGION" env-description:"S3 region"`
	AccessKeyID            string `yaml:"access_key_id" json:"access_key_id" env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey        string `yaml:"secret_access_key" json:"secret_access_key" env:"AWS_SECRET_ACCESS_KEY"`
	Endpoint               string `yaml:"endpoint" json:"endpoint" env:"AWS_S3_ENDPOINT" env-description:"S3 compatible endpoint"`
	UsePathStyle           bool   `yaml:"use_path_style" json:"use_path_style" env:"AWS_S3_USE_PATH_STYLE"`
	KeyPrefix              string `yaml:"key_prefix" json:"key_prefix" env:"AWS_S3_KEY_PREFIX"`
	EnableSSE              bool   `yaml:"enable_sse" json:"enable_sse" env:"AWS_S3_ENABLE_SSE"`
	SSEAlgorithm           string `yaml:"sse_algorithm" json:"sse_algorithm" env:"AWS_S3_SSE_ALGORITHM"`
	SSEKMSKeyID            string `yaml:"sse_kms_key_id" json:"sse_kms_key_id" env:"AWS_S3_SSE_KMS_KEY_ID"`
	CreateBucketIfNotExist bool   `yaml:"create_bucket_if_not_exist" json:"create_bucket_if_not_exist" env:"AWS_S3_CREATE_BUCKET"`
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	if _, err := databaseKind(c.DatabaseURL); err != nil {
		return err
	}
	if _, err := storageKind(c.StorageURL); err != nil {
		return err
	}

	switch urlstrategy.URLStrategyType(c.URLStrategy) {
	case urlstrategy.StrategyTypeContentBased, "":
		if c.PublicBaseURL == "" {
			return errors.New("public_base_url is required for the content-based url strategy")
		}
	case urlstrategy.StrategyTypeCDN:
		if c.CDNBaseURL == "" {
			return errors.New("cdn_base_url is required for the cdn url strategy")
		}
	default:
		return fmt.Errorf("unknown url strategy: %s", c.URLStrategy)
	}

	if c.MaxBodyBytes < 0 {
		return errors.New("max_body_bytes must not be negative")
	}
	if c.CoverCacheSize < 0 {
		return errors.New("cover_cache_size must not be negative")
	}
	return nil
}

// IsProduction reports whether the server runs in production.
func (c *ServerConfig) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}
