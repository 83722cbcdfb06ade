// Package config loads the service configuration from environment variables
// via envconfig.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds ALL application settings.
type Config struct {
	// --- HTTP ---
	HTTPPort            int           `envconfig:"HTTP_PORT" default:"8080"`
	HTTPShutdownTimeout time.Duration `envconfig:"HTTP_SHUTDOWN_TIMEOUT" default:"10s"`

	// --- Storage ---
	// "postgres" for real deployments, "memory" to run without a database
	// (demo mode, integration tests).
	StorageDriver string `envconfig:"STORAGE_DRIVER" default:"postgres"`

	// --- Database ---
	// Inside docker-compose "localhost" is almost always wrong; the default
	// matches the compose service name. Override DB_HOST=localhost locally.
	DBHost     string `envconfig:"DB_HOST" default:"postgres"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"foguinho"`
	DBPassword string `envconfig:"DB_PASSWORD" default:""`
	DBName     string `envconfig:"DB_NAME" default:"foguinho"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	DBMaxConns int32  `envconfig:"DB_MAX_CONNS" default:"25"`
	DBMinConns int32  `envconfig:"DB_MIN_CONNS" default:"5"`

	// --- Application ---
	AppEnv      string `envconfig:"APP_ENV" default:"development"`
	AppLogLevel string `envconfig:"APP_LOG_LEVEL" default:"debug"`
	// One timezone defines every day boundary and restoration month window.
	AppTimezone string `envconfig:"APP_TIMEZONE" default:"America/Sao_Paulo"`

	// --- Streak engine ---
	StreakRequiredUsers    int `envconfig:"STREAK_REQUIRED_USERS" default:"2"`
	StreakMaxRestorations  int `envconfig:"STREAK_MAX_RESTORATIONS" default:"5"`
	DashboardHistoryDays   int `envconfig:"DASHBOARD_HISTORY_DAYS" default:"14"`
	RankingSize            int `envconfig:"RANKING_SIZE" default:"10"`

	// --- Rate limiting (per sender on the webhook) ---
	RateLimitRequests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"30"`
	RateLimitWindow   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`
}

// DatabaseDSN returns the PostgreSQL connection string.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

// Validate rejects configurations the service cannot run with.
func (c *Config) Validate() error {
	if c.StorageDriver != "postgres" && c.StorageDriver != "memory" {
		return fmt.Errorf("STORAGE_DRIVER deve ser postgres ou memory, não %q", c.StorageDriver)
	}
	if c.StorageDriver == "postgres" && c.DBPassword == "" {
		return fmt.Errorf("DB_PASSWORD é obrigatório com STORAGE_DRIVER=postgres")
	}
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("HTTP_PORT inválida: %d", c.HTTPPort)
	}
	if c.StreakRequiredUsers <= 0 {
		return fmt.Errorf("STREAK_REQUIRED_USERS deve ser > 0")
	}
	if c.StreakMaxRestorations < 0 {
		return fmt.Errorf("STREAK_MAX_RESTORATIONS não pode ser negativo")
	}
	if c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS/DB_MAX_CONNS incorretos")
	}
	return nil
}

// Load reads the environment into a Config.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("não foi possível carregar a configuração: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
