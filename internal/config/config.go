package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMongo    = "mongo"

	ImageStoreDisk = "disk"
	ImageStoreS3   = "s3"

	Production = "production"
)

type DatabaseOptions struct {
	DSN      string `env:"DB_DSN"`
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"postgres"`
	Password string `env:"DB_PASSWORD" envDefault:"postgres"`
	Name     string `env:"DB_NAME" envDefault:"employees"`
	SSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
}

// ConnectionString prefers DB_DSN when it is set.
func (d DatabaseOptions) ConnectionString() string {
	if d.DSN != "" {
		return d.DSN
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode,
	)
}

type MongoOptions struct {
	URI      string `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	Database string `env:"MONGO_DATABASE" envDefault:"employees"`
}

type ImageOptions struct {
	Store     string `env:"IMAGE_STORE" envDefault:"disk"`
	Dir       string `env:"IMAGE_DIR" envDefault:"./uploads"`
	Bucket    string `env:"S3_BUCKET"`
	Region    string `env:"S3_REGION" envDefault:"us-east-1"`
	Endpoint  string `env:"S3_ENDPOINT"`
	AccessKey string `env:"AWS_ACCESS_KEY_ID"`
	SecretKey string `env:"AWS_SECRET_ACCESS_KEY"`
}

type RateLimitOptions struct {
	RPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"5"`
	Burst int     `env:"RATE_LIMIT_BURST" envDefault:"10"`
}

type Config struct {
	AppEnv       string        `env:"APP_ENV" envDefault:"development"`
	Port         string        `env:"PORT" envDefault:"8080"`
	StoreDriver  string        `env:"STORE_DRIVER" envDefault:"postgres"`
	RedisAddr    string        `env:"REDIS_ADDR"`
	KafkaBroker  string        `env:"KAFKA_BROKER"`
	ListCacheTTL time.Duration `env:"LIST_CACHE_TTL" envDefault:"5m"`
	MaxRetries   int           `env:"CONNECT_MAX_RETRIES" envDefault:"5"`

	Database  DatabaseOptions
	Mongo     MongoOptions
	Image     ImageOptions
	RateLimit RateLimitOptions
}

// Load reads .env (when present) and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return Parse()
}

// Parse reads the process environment only.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.StoreDriver != StoreDriverPostgres && c.StoreDriver != StoreDriverMongo {
		return fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StoreDriverPostgres, StoreDriverMongo, c.StoreDriver)
	}
	switch c.Image.Store {
	case ImageStoreDisk:
		if c.Image.Dir == "" {
			return errors.New("IMAGE_DIR is required when IMAGE_STORE is disk")
		}
	case ImageStoreS3:
		if c.Image.Bucket == "" {
			return errors.New("S3_BUCKET is required when IMAGE_STORE is s3")
		}
	default:
		return fmt.Errorf("IMAGE_STORE must be %q or %q, got %q", ImageStoreDisk, ImageStoreS3, c.Image.Store)
	}
	if c.RateLimit.RPS <= 0 || c.RateLimit.Burst < 1 {
		return fmt.Errorf("rate limit must be positive, got rps=%v burst=%d", c.RateLimit.RPS, c.RateLimit.Burst)
	}
	if c.MaxRetries < 1 {
		c.MaxRetries = 1
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == Production
}
