package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

// Config holds all process configuration, populated from the environment.
type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	BaseURL   string `env:"MEETI_BASE_URL, default=http://localhost:8080"`
	DBPath    string `env:"MEETI_DB_PATH,  default=meeti.db"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	Uploads UploadConfig
	Redis   RedisConfig
	SMTP    SMTPConfig
}

// UploadConfig is the process-wide upload policy, injected into the
// uploads store rather than read from a package singleton.
type UploadConfig struct {
	Dir      string `env:"UPLOADS_DIR,       default=./public/uploads"`
	MaxBytes int64  `env:"UPLOADS_MAX_BYTES, default=100000"`
}

// RedisConfig configures the token blacklist and flash queue.
// An empty Addr means redis is not used and in-memory stores are wired.
type RedisConfig struct {
	Addr string `env:"REDIS_ADDR"`
	DB   int    `env:"REDIS_DB, default=0"`
}

// SMTPConfig configures outbound confirmation mail.
// An empty Host means mail is logged instead of sent.
type SMTPConfig struct {
	Host string `env:"SMTP_HOST"`
	Port string `env:"SMTP_PORT, default=587"`
	User string `env:"SMTP_USER"`
	Pass string `env:"SMTP_PASS"`
	From string `env:"SMTP_FROM, default=no-reply@meeti.local"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
