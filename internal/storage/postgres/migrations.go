package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

// RunMigrations applies every pending migration in order. Each migration
// runs in its own transaction and is recorded in schema_migrations, so a
// restart never re-applies one.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMPTZ DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("criação da tabela de migrações: %w", err)
	}

	migrations := []struct {
		version int
		sql     string
	}{
		{1, migration001Groups},
		{2, migration002Activity},
		{3, migration003Restorations},
		{4, migration004GroupDays},
	}

	for _, m := range migrations {
		applied, err := execMigration(ctx, pool, m.version, m.sql)
		if err != nil {
			return fmt.Errorf("migração %d: %w", m.version, err)
		}
		if applied {
			log.Infof("Migração %d aplicada", m.version)
		}
	}
	return nil
}

// execMigration applies one migration inside a transaction, skipping it when
// the version is already recorded. Returns whether it actually ran.
func execMigration(ctx context.Context, pool *pgxpool.Pool, version int, sql string) (bool, error) {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("início da transação: %w", err)
	}
	defer tx.Rollback(ctx)

	var exists bool
	err = tx.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)", version,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("verificação da versão: %w", err)
	}
	if exists {
		return false, nil
	}

	if _, err := tx.Exec(ctx, sql); err != nil {
		return false, err
	}
	if _, err := tx.Exec(ctx,
		"INSERT INTO schema_migrations (version) VALUES ($1)", version,
	); err != nil {
		return false, err
	}
	return true, tx.Commit(ctx)
}

var migration001Groups = `
CREATE TABLE IF NOT EXISTS groups (
    id VARCHAR(255) PRIMARY KEY,
    name VARCHAR(255) NOT NULL,
    required_users INTEGER NOT NULL DEFAULT 2,
    streak INTEGER NOT NULL DEFAULT 0 CHECK (streak >= 0),
    status VARCHAR(16) NOT NULL DEFAULT 'active',
    last_met_day DATE,
    max_restorations INTEGER NOT NULL DEFAULT 5,
    last_activity TIMESTAMPTZ,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

var migration002Activity = `
CREATE TABLE IF NOT EXISTS group_activity (
    group_id VARCHAR(255) NOT NULL REFERENCES groups(id),
    user_id VARCHAR(255) NOT NULL,
    day DATE NOT NULL,
    messages INTEGER NOT NULL DEFAULT 1,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (group_id, user_id, day)
);
CREATE INDEX IF NOT EXISTS idx_group_activity_group_day ON group_activity(group_id, day);
`

var migration003Restorations = `
CREATE TABLE IF NOT EXISTS restorations (
    id UUID PRIMARY KEY,
    group_id VARCHAR(255) NOT NULL REFERENCES groups(id),
    user_id VARCHAR(255) NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_restorations_group_created ON restorations(group_id, created_at);
`

var migration004GroupDays = `
CREATE TABLE IF NOT EXISTS group_days (
    group_id VARCHAR(255) NOT NULL REFERENCES groups(id),
    day DATE NOT NULL,
    active_users INTEGER NOT NULL,
    met BOOLEAN NOT NULL,
    streak INTEGER NOT NULL,
    PRIMARY KEY (group_id, day)
);
`
