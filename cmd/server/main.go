package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/hku-span/span2030/internal/curriculum"
	"github.com/hku-span/span2030/internal/exercise"
	"github.com/hku-span/span2030/internal/platform/cache"
	"github.com/hku-span/span2030/internal/platform/config"
	"github.com/hku-span/span2030/internal/platform/database"
	"github.com/hku-span/span2030/internal/progress"
	"github.com/hku-span/span2030/internal/session"
	"github.com/hku-span/span2030/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(newLogger(os.Stdout, cfg.Log))

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	// Graceful shutdown on SIGTERM/SIGINT.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	catalog, err := curriculum.Load(contentFS(cfg.ContentPath))
	if err != nil {
		return fmt.Errorf("loading content: %w", err)
	}

	checks := map[string]web.CheckFunc{}

	var store session.Store = session.NewMemoryStore(cfg.Session.TTL)
	if cfg.Cache.URL != "" {
		c, err := cache.New(ctx, cache.Options{URL: cfg.Cache.URL, PoolSize: cfg.Cache.PoolSize})
		if err != nil {
			return fmt.Errorf("connecting cache: %w", err)
		}
		defer c.Close()
		store = session.NewRedisStore(c.Client, cfg.Session.TTL)
		checks["cache"] = c.HealthCheck
		slog.Info("session store", "backend", "redis")
	} else {
		slog.Info("session store", "backend", "memory")
	}

	var events progress.EventLogger = progress.NopEventLogger{}
	if cfg.Database.URL != "" {
		db, err := database.New(ctx, cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.MinConns)
		if err != nil {
			return fmt.Errorf("connecting database: %w", err)
		}
		defer db.Close()
		if err := db.Migrate(ctx); err != nil {
			return fmt.Errorf("migrating database: %w", err)
		}
		events = progress.NewPostgresEventLogger(db.Pool)
		checks["database"] = db.HealthCheck
		slog.Info("event log enabled")
	}

	normalizer := exercise.Strict
	if cfg.Grading.AccentInsensitive {
		normalizer = exercise.AccentInsensitive
		slog.Info("accent-insensitive grading enabled")
	}

	srv, err := web.New(web.Options{
		Catalog:    catalog,
		Store:      store,
		Events:     events,
		Normalizer: normalizer,
		Instructor: web.Instructor{
			Username:     cfg.Instructor.Username,
			PasswordHash: cfg.Instructor.PasswordHash,
		},
		Session: web.SessionOptions{
			CookieName: cfg.Session.CookieName,
			TTL:        cfg.Session.TTL,
			Secure:     cfg.Session.Secure,
		},
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Checks:         checks,
	})
	if err != nil {
		return err
	}

	httpSrv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      srv.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// contentFS returns the embedded course content unless a directory is configured.
func contentFS(path string) fs.FS {
	if path == "" {
		return curriculum.DefaultFS()
	}
	return os.DirFS(path)
}

func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
