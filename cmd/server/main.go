// Package main is the service entrypoint. It loads configuration, assembles
// the application and serves HTTP until SIGINT/SIGTERM.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"foguinho/internal/app"
	"foguinho/internal/config"
)

func main() {
	setupLogging()

	// .env is optional: docker-compose injects the environment directly.
	_ = godotenv.Load()

	log.Info("=== Foguinho iniciando ===")

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("não foi possível carregar a configuração")
	}

	if level, err := log.ParseLevel(cfg.AppLogLevel); err == nil {
		log.SetLevel(level)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	application, err := app.New(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("não foi possível inicializar a aplicação")
	}

	application.Scheduler.Start(ctx)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: application.Handler,
	}

	go func() {
		log.WithField("port", cfg.HTTPPort).Info("=== Foguinho pronto ===")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("servidor HTTP caiu")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	log.Infof("sinal %s recebido, encerrando...", sig)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("encerramento do servidor HTTP com erro")
	}
	application.Shutdown(shutdownCtx)

	log.Info("=== Foguinho encerrado ===")
}

// setupLogging configures the log format before anything else runs.
func setupLogging() {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	log.SetOutput(os.Stdout)
	log.SetLevel(log.DebugLevel)
}
