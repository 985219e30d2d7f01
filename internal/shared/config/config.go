package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
)

// Config holds application configuration.
type Config struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	Env             string        `env:"ENV" envDefault:"dev"`
	CORSAllowOrigin []string      `env:"CORS_ALLOW_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173"`
	PublicBaseURL   string        `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8080"`
	MaxUploadBytes  int64         `env:"MAX_UPLOAD_BYTES" envDefault:"5242880"`
	ReconcileEvery  time.Duration `env:"RECONCILE_INTERVAL" envDefault:"0s"`

	DocStore    string      `env:"DOC_STORE" envDefault:"memory"`
	DatabaseURL string      `env:"DATABASE_URL"`
	Mongo       MongoConfig `envPrefix:"MONGODB_"`

	ObjectStoreType string         `env:"OBJECT_STORE" envDefault:"local"`
	LocalStoreDir   string         `env:"LOCAL_STORE_DIR" envDefault:"./data"`
	AWSRegion       string         `env:"AWS_REGION"`
	S3              S3Config       `envPrefix:"S3_"`
	Minio           MinioConfig    `envPrefix:"MINIO_"`
	ImageKit        ImageKitConfig `envPrefix:"IMAGEKIT_"`

	ClerkWebhookSecret string `env:"CLERK_WEBHOOK_SECRET"`
}

type MongoConfig struct {
	URI            string        `env:"URI"`
	Database       string        `env:"DATABASE" envDefault:"lilkami"`
	ConnectTimeout time.Duration `env:"CONNECT_TIMEOUT" envDefault:"10s"`
}

type S3Config struct {
	Bucket        string `env:"BUCKET"`
	Prefix        string `env:"PREFIX"`
	PublicBaseURL string `env:"PUBLIC_BASE_URL"`
}

type MinioConfig struct {
	Endpoint      string `env:"ENDPOINT"`
	AccessKey     string `env:"ACCESS_KEY"`
	SecretKey     string `env:"SECRET_KEY"`
	Bucket        string `env:"BUCKET" envDefault:"wallpapers"`
	PublicBaseURL string `env:"PUBLIC_BASE_URL"`
}

type ImageKitConfig struct {
	PrivateKey  string `env:"PRIVATE_KEY"`
	PublicKey   string `env:"PUBLIC_KEY"`
	URLEndpoint string `env:"URL_ENDPOINT"`
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (Config, error) {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")
	return parse(env.Options{})
}

// LoadFrom parses configuration from an explicit environment map instead of
// the process environment.
func LoadFrom(environ map[string]string) (Config, error) {
	return parse(env.Options{Environment: environ})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg.Env = normalizeEnv(cfg.Env)
	cfg.DocStore = normalizeDocStore(cfg.DocStore)
	cfg.ObjectStoreType = normalizeStoreType(cfg.ObjectStoreType)
	cfg.CORSAllowOrigin = splitAndTrim(cfg.CORSAllowOrigin)
	cfg.PublicBaseURL = strings.TrimRight(strings.TrimSpace(cfg.PublicBaseURL), "/")
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 5 << 20
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.DocStore {
	case "mongo":
		if strings.TrimSpace(c.Mongo.URI) == "" {
			return fmt.Errorf("DOC_STORE=mongo requires MONGODB_URI")
		}
	case "postgres":
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return fmt.Errorf("DOC_STORE=postgres requires DATABASE_URL")
		}
	}
	if c.Env == "production" && c.DocStore == "memory" {
		return fmt.Errorf("DOC_STORE=memory is not allowed in production")
	}
	return nil
}

// IsDevLike reports whether the environment tolerates in-memory fallbacks.
func (c Config) IsDevLike() bool {
	return c.Env == "dev" || c.Env == "local"
}

func splitAndTrim(raw []string) []string {
	var out []string
	for _, p := range raw {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeDocStore(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "mongo", "mongodb":
		return "mongo"
	case "postgres", "pg", "postgresql":
		return "postgres"
	default:
		return "memory"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	case "minio":
		return "minio"
	case "imagekit":
		return "imagekit"
	default:
		return "local"
	}
}
