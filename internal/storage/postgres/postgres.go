// Package postgres is the pgx-backed Store implementation.
//
// A pgxpool connection pool is shared by all queries; the pool handles
// reconnects and caps concurrent connections. Migrations are embedded SQL
// strings applied at boot, versioned through a schema_migrations table.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"foguinho/internal/config"
)

// NewPool opens and pings a pgx connection pool configured from cfg.
func NewPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseDSN())
	if err != nil {
		return nil, fmt.Errorf("parse do DSN: %w", err)
	}

	poolConfig.MaxConns = cfg.DBMaxConns
	poolConfig.MinConns = cfg.DBMinConns
	poolConfig.MaxConnLifetime = 1 * time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("criação do pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("banco de dados indisponível: %w", err)
	}

	log.Info("Conexão com PostgreSQL estabelecida")
	return pool, nil
}
