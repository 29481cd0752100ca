package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"vive-gamer/internal/config"
	"vive-gamer/internal/db"
	"vive-gamer/internal/server"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		logrus.WithError(err).Warn("failed to load .env")
	}
	cfg := config.Load()

	logrus.SetFormatter(&logrus.JSONFormatter{})
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(level)
	} else {
		logrus.WithField("level", cfg.LogLevel).Warn("unknown log level, using info")
	}

	conn, err := db.Open(cfg)
	switch {
	case errors.Is(err, db.ErrNoDatabase):
		logrus.Info("no database configured, running in memory")
	case err != nil:
		logrus.WithError(err).Warn("database unavailable, running in memory")
	default:
		if err := db.Migrate(conn); err != nil {
			logrus.WithError(err).Warn("database migration failed")
		}
	}

	srv := server.New(conn, cfg)
	defer srv.Close()

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logrus.WithField("addr", httpServer.Addr).Info("vive-gamer server listening")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logrus.WithError(err).Fatal("server stopped")
	}
}
