package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Postmark PostmarkConfig `yaml:"postmark"`
	Storage  StorageConfig  `yaml:"storage"`
	Sender   SenderConfig   `yaml:"sender"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig holds the Postgres connection settings
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// PostmarkConfig holds Postmark API credentials. The server token
// authorizes sending, the account token manages sending domains.
type PostmarkConfig struct {
	BaseURL        string `yaml:"base_url"`
	ServerToken    string `yaml:"server_token"`
	AccountToken   string `yaml:"account_token"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the HTTP client timeout as a duration
func (c PostmarkConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// StorageConfig holds the S3 bucket where rendered invoice documents live.
// Credentials are optional; when unset the SDK default chain is used.
type StorageConfig struct {
	S3Bucket        string `yaml:"s3_bucket"`
	S3Region        string `yaml:"s3_region"`
	AWSProfile      string `yaml:"aws_profile"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

// SenderConfig holds the platform-default sender address used when an
// organization has no verified custom domain
type SenderConfig struct {
	DefaultFromEmail string `yaml:"default_from_email"`
	DefaultFromName  string `yaml:"default_from_name"`
}

// Load reads configuration from a YAML file and applies defaults
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Postmark.BaseURL == "" {
		cfg.Postmark.BaseURL = "https://api.postmarkapp.com"
	}
	if cfg.Postmark.TimeoutSeconds == 0 {
		cfg.Postmark.TimeoutSeconds = 30
	}
	if cfg.Storage.S3Region == "" {
		cfg.Storage.S3Region = "eu-central-1"
	}

	return &cfg, nil
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so secrets can live in .env locally and in real env vars in deployment.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("POSTMARK_SERVER_TOKEN"); v != "" {
		cfg.Postmark.ServerToken = v
	}
	if v := os.Getenv("POSTMARK_ACCOUNT_TOKEN"); v != "" {
		cfg.Postmark.AccountToken = v
	}
	if v := os.Getenv("POSTMARK_BASE_URL"); v != "" {
		cfg.Postmark.BaseURL = v
	}
	if v := os.Getenv("DOCS_S3_BUCKET"); v != "" {
		cfg.Storage.S3Bucket = v
	}
	if v := os.Getenv("DOCS_S3_REGION"); v != "" {
		cfg.Storage.S3Region = v
	}
	if v := os.Getenv("AWS_PROFILE"); v != "" {
		cfg.Storage.AWSProfile = v
	}
	if v := os.Getenv("DOCS_S3_ACCESS_KEY_ID"); v != "" {
		cfg.Storage.AccessKeyID = v
	}
	if v := os.Getenv("DOCS_S3_SECRET_ACCESS_KEY"); v != "" {
		cfg.Storage.SecretAccessKey = v
	}
	if v := os.Getenv("DEFAULT_FROM_EMAIL"); v != "" {
		cfg.Sender.DefaultFromEmail = v
	}
	if v := os.Getenv("DEFAULT_FROM_NAME"); v != "" {
		cfg.Sender.DefaultFromName = v
	}

	return cfg, nil
}
