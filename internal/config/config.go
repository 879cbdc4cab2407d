package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var ErrMissingRequired = errors.New("missing required configuration")

type Config struct {
	DBHost string `envconfig:"DB_HOST" default:"postgres"`
	DBPort int    `envconfig:"DB_PORT" default:"5432"`
	DBUser string `envconfig:"DB_USER" default:"ragmark"`
	DBPass string `envconfig:"DB_PASS" default:"password"`
	DBName string `envconfig:"DB_NAME" default:"ragmark"`

	WeaviateHost   string `envconfig:"WEAVIATE_HOST" default:"localhost:8080"`
	WeaviateScheme string `envconfig:"WEAVIATE_SCHEME" default:"http"`

	BlobEndpoint  string `envconfig:"BLOB_ENDPOINT" default:"localhost:9000"`
	BlobAccessKey string `envconfig:"BLOB_ACCESS_KEY"`
	BlobSecretKey string `envconfig:"BLOB_SECRET_KEY"`
	BlobBucket    string `envconfig:"BLOB_BUCKET" default:"crawled-markdown"`
	BlobUseSSL    bool   `envconfig:"BLOB_USE_SSL" default:"false"`

	CohereAPIKey string `envconfig:"COHERE_API_KEY"`
	EmbedModel   string `envconfig:"EMBED_MODEL" default:"embed-english-v3.0"`

	// Bearer token callers must present on the HTTP ingress.
	APIToken string `envconfig:"API_TOKEN"`

	NSQLookupd string `envconfig:"NSQ_LOOKUPD" default:"nsqlookupd:4161"`
	NSQDHost   string `envconfig:"NSQD_HOST" default:"nsqd:4150"`
	NSQDHTTP   string `envconfig:"NSQD_HTTP" default:"nsqd:4151"`

	// The queue adapter batches up to QueueBatchSize requests into one
	// pipeline run to keep embedding calls appropriately sized.
	QueueBatchSize    int `envconfig:"QUEUE_BATCH_SIZE" default:"5"`
	QueueFlushSeconds int `envconfig:"QUEUE_FLUSH_SECONDS" default:"2"`

	MigrationPath string `envconfig:"MIGRATION_PATH" default:"file://migrations"`

	// Server
	ServerPort int `envconfig:"SERVER_PORT" default:"8081"`

	// Resilience
	BootstrapRetryAttempts     int `envconfig:"BOOTSTRAP_RETRY_ATTEMPTS" default:"10"`
	BootstrapRetryDelaySeconds int `envconfig:"BOOTSTRAP_RETRY_DELAY_SECONDS" default:"2"`
}

func Load() (*Config, error) {
	// Try loading .env from current dir and repo root
	// Ignore errors, as env vars might be set in the shell
	_ = godotenv.Load(".env")

	cwd, _ := os.Getwd()
	rootEnv := filepath.Join(cwd, "../.env")
	_ = godotenv.Load(rootEnv)

	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.DBHost == "" {
		return fmt.Errorf("%w: DB_HOST", ErrMissingRequired)
	}
	if c.DBUser == "" {
		return fmt.Errorf("%w: DB_USER", ErrMissingRequired)
	}
	if c.DBName == "" {
		return fmt.Errorf("%w: DB_NAME", ErrMissingRequired)
	}
	if c.BlobBucket == "" {
		return fmt.Errorf("%w: BLOB_BUCKET", ErrMissingRequired)
	}
	if c.QueueBatchSize < 1 {
		return fmt.Errorf("%w: QUEUE_BATCH_SIZE", ErrMissingRequired)
	}
	return nil
}
