package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// minSecretLen is the shortest HS256 signing secret Load accepts.
const minSecretLen = 32

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Budgetree"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Host         string `envconfig:"DB_HOST" default:"localhost"`
		Port         int    `envconfig:"DB_PORT" default:"5432"`
		User         string `envconfig:"DB_USER" default:"postgres"`
		Password     string `envconfig:"DB_PASSWORD" default:""`
		Name         string `envconfig:"DB_NAME" default:"budgetree"`
		SSLMode      string `envconfig:"DB_SSLMODE" default:"disable"`
		MaxOpenConns int    `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
		MaxIdleConns int    `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
	}

	Server struct {
		Timeout         time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"15s"`
	}

	Auth struct {
		Secret       string        `envconfig:"AUTH_SECRET" required:"true"`
		TokenTTL     time.Duration `envconfig:"AUTH_TOKEN_TTL" default:"24h"`
		BcryptCost   int           `envconfig:"AUTH_BCRYPT_COST" default:"10"`
		SecureCookie bool          `envconfig:"AUTH_SECURE_COOKIE" default:"false"`
	}

	Report struct {
		DefaultPageSize int `envconfig:"REPORT_DEFAULT_PAGE_SIZE" default:"20"`
		MaxPageSize     int `envconfig:"REPORT_MAX_PAGE_SIZE" default:"500"`
	}

	CORS struct {
		AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	}

	Log struct {
		Level  string `envconfig:"LOG_LEVEL" default:"info"`
		Format string `envconfig:"LOG_FORMAT" default:"text"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name, c.DB.SSLMode)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if len(cfg.Auth.Secret) < minSecretLen {
		return nil, fmt.Errorf("invalid AUTH_SECRET: must be at least %d bytes", minSecretLen)
	}

	if cfg.Report.DefaultPageSize < 1 {
		return nil, fmt.Errorf("invalid REPORT_DEFAULT_PAGE_SIZE %d: must be at least 1", cfg.Report.DefaultPageSize)
	}

	if cfg.Report.MaxPageSize < cfg.Report.DefaultPageSize {
		return nil, fmt.Errorf("invalid REPORT_MAX_PAGE_SIZE %d: must not be below the default page size", cfg.Report.MaxPageSize)
	}

	return &cfg, nil
}
