package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string        `env:"PORT,      default=8080"`
	Env       string        `env:"ENV,       default=development"`
	LogLevel  string        `env:"LOG_LEVEL, default=info"`
	BaseURL   string        `env:"BASE_URL,  default=http://localhost:8080"`
	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL, default=720h"`

	// BcryptCost is lowered in development to keep the seed and tests fast.
	BcryptCost int `env:"BCRYPT_COST, default=12"`

	CORSOrigins []string `env:"CORS_ORIGINS, default=*"`

	Mongo  MongoConfig
	Redis  RedisConfig
	Mail   MailConfig
	MinIO  MinIOConfig
	Upload UploadConfig
	Notify NotifyConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017/?replicaSet=rs0"`
	Database string `env:"MONGO_DB,  default=qanda"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

type MailConfig struct {
	Host     string `env:"SMTP_HOST,     default=localhost"`
	Port     int    `env:"SMTP_PORT,     default=587"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"MAIL_FROM,     default=no-reply@qanda.local"`
	Admin    string `env:"MAIL_ADMIN,    default=admin@qanda.local"`
	Workers  int    `env:"MAIL_WORKERS,  default=4"`
}

type MinIOConfig struct {
	Endpoint  string `env:"MINIO_ENDPOINT,   default=localhost:9000"`
	AccessKey string `env:"MINIO_ACCESS_KEY"`
	SecretKey string `env:"MINIO_SECRET_KEY"`
	Bucket    string `env:"MINIO_BUCKET,     default=uploads"`
	UseSSL    bool   `env:"MINIO_USE_SSL,    default=false"`
}

type UploadConfig struct {
	MaxBytes   int64    `env:"UPLOAD_MAX_BYTES,   default=5242880"`
	AllowedExt []string `env:"UPLOAD_ALLOWED_EXT, default=png,jpg"`
}

type NotifyConfig struct {
	Self  bool `env:"NOTIFY_SELF,  default=true"`
	Email bool `env:"NOTIFY_EMAIL, default=false"`
}

// IsDevelopment reports whether the process runs with ENV=development.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// Load reads an optional .env file, then the environment. A missing .env is
// not an error; variables already set in the environment win.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return load(envconfig.OsLookuper())
}

func load(l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(context.Background(), &envconfig.Config{
		Target:   &cfg,
		Lookuper: l,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.TokenTTL <= 0 {
		return errors.New("TOKEN_TTL must be positive")
	}
	if c.Upload.MaxBytes <= 0 {
		return errors.New("UPLOAD_MAX_BYTES must be positive")
	}
	return nil
}
