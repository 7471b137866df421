// Package server boots the dependencies and runs the HTTP server until
// SIGINT/SIGTERM.
package server

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/shashiranjanraj/qrmenu/config"
	"github.com/shashiranjanraj/qrmenu/internal/kernel"
	"github.com/shashiranjanraj/qrmenu/pkg/database"
	"github.com/shashiranjanraj/qrmenu/pkg/logger"
	"github.com/shashiranjanraj/qrmenu/pkg/session"
	"github.com/shashiranjanraj/qrmenu/pkg/storage"
)

const shutdownTimeout = 15 * time.Second

// Start connects the database, session store and storage disk, then serves
// until the process is signalled. In-flight requests get shutdownTimeout to
// finish.
func Start() error {
	if err := config.Load(); err != nil {
		return err
	}
	if err := config.CheckAppKey(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := database.Connect(); err != nil {
		return err
	}
	defer database.Close(database.DB) //nolint:errcheck

	sessions, closeSessions := OpenSessionStore(ctx)
	defer closeSessions()

	disk := OpenDisk(ctx)

	k, err := kernel.NewHTTPKernel(kernel.FromConfig(database.DB, sessions, disk))
	if err != nil {
		return err
	}
	defer k.Close()

	srv := &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           k.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("qrmenu listening", "addr", srv.Addr, "env", config.AppEnv())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// OpenSessionStore returns the Redis store when SESSION_DRIVER=redis and the
// server answers, otherwise the in-memory store with a warning.
func OpenSessionStore(ctx context.Context) (session.Store, func()) {
	if config.SessionDriver() != "redis" {
		return session.NewMemoryStore(), func() {}
	}

	client, err := session.Dial(ctx, config.RedisAddr(), config.RedisPassword())
	if err != nil {
		logger.Warn("redis unavailable, sessions fall back to memory", "addr", config.RedisAddr(), "error", err)
		return session.NewMemoryStore(), func() {}
	}
	return session.NewRedisStore(client), func() { _ = client.Close() }
}

// OpenDisk opens the STORAGE_DISK driver. A missing configuration is not
// fatal: uploads answer 503 until it is fixed.
func OpenDisk(ctx context.Context) storage.Disk {
	disk, err := storage.Open(ctx, config.StorageDisk())
	if err != nil {
		logger.Warn("image storage disabled", "disk", config.StorageDisk(), "error", err)
		return nil
	}
	return disk
}
