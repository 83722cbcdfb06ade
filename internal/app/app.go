// Package app assembles the application: storage, services, HTTP server and
// background jobs, in dependency order.
package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"foguinho/internal/common"
	"foguinho/internal/config"
	"foguinho/internal/features/activity"
	"foguinho/internal/features/fire"
	"foguinho/internal/features/groups"
	"foguinho/internal/jobs"
	"foguinho/internal/server"
	"foguinho/internal/storage"
	"foguinho/internal/storage/memory"
	"foguinho/internal/storage/postgres"
	"foguinho/internal/ws"
)

// App is the fully wired application.
type App struct {
	Handler   http.Handler
	Scheduler *jobs.Scheduler

	server *server.Server
	pool   *pgxpool.Pool // nil with the memory driver
}

// New builds the application from configuration. Order matters: storage
// first, then the services over it, then the HTTP layer and jobs.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	loc := common.LoadLocation(cfg.AppTimezone)

	var (
		store storage.Store
		pool  *pgxpool.Pool
	)
	switch cfg.StorageDriver {
	case "memory":
		log.Warn("armazenamento em memória: os dados não sobrevivem a um restart")
		store = memory.New()
	default:
		var err error
		pool, err = postgres.NewPool(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("conexão com o banco: %w", err)
		}
		if err := postgres.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrações: %w", err)
		}
		store = postgres.New(pool, loc)
	}

	tracker := activity.NewService(store, loc)
	engine := fire.NewService(store, tracker, loc)
	groupSvc := groups.NewService(store, engine, tracker, loc,
		cfg.StreakRequiredUsers, cfg.StreakMaxRestorations, cfg.DashboardHistoryDays)

	hub := ws.NewHub()

	srv := server.New(engine, groupSvc, tracker, hub, loc, server.Options{
		RateLimitRequests: cfg.RateLimitRequests,
		RateLimitWindow:   cfg.RateLimitWindow,
		RankingSize:       cfg.RankingSize,
	})

	scheduler := jobs.NewScheduler(engine, hub, loc)

	log.WithFields(log.Fields{
		"driver":   cfg.StorageDriver,
		"timezone": loc.String(),
	}).Info("aplicação montada")

	return &App{
		Handler:   srv.Router(),
		Scheduler: scheduler,
		server:    srv,
		pool:      pool,
	}, nil
}

// Shutdown stops the background pieces and closes the database pool.
func (a *App) Shutdown(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		a.Scheduler.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		log.Warn("timeout aguardando os jobs em execução")
	}

	a.server.Close()
	if a.pool != nil {
		a.pool.Close()
	}
}
