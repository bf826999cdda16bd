package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/conorfennell/stepquiz/internal/config"
	"github.com/conorfennell/stepquiz/internal/content"
	"github.com/conorfennell/stepquiz/internal/storage"
	"github.com/conorfennell/stepquiz/internal/sync"
	"github.com/conorfennell/stepquiz/internal/web"
)

func main() {
	// 1. Parse flags and load configuration
	flags := config.Flags()
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("stepquiz failed", "error", err)
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	// 2. Open the database and the study account
	db, err := storage.Open(cfg.DB)
	if err != nil {
		return err
	}
	defer db.Close()
	logger.Info("database opened", "path", cfg.DB)

	user, err := db.EnsureUser(ctx, cfg.User)
	if err != nil {
		return err
	}
	logger.Info("study account ready", "email", user.Email, "id", user.ID)

	// 3. Pick the content source
	var source content.Source
	if cfg.Content.URL != "" {
		source = content.NewHTTPSource(cfg.Content.URL, cfg.Content.Timeout)
		logger.Info("serving content over http", "url", cfg.Content.URL)
	} else {
		source = content.NewFSSource(cfg.Content.Dir)
		logger.Info("serving content from disk", "dir", cfg.Content.Dir)
	}
	loader := content.NewLoader(source, cfg.SubjectCatalog(), logger)

	syncOpts := sync.Options{Repo: cfg.Content.Repo, Dir: cfg.Content.Dir}
	if cfg.Sync {
		if _, err := sync.RunSync(ctx, syncOpts, loader); err != nil {
			return err
		}
	}

	// 4. Serve
	srv, err := web.NewServer(db, loader, web.Settings{
		UserEmail:    cfg.User,
		HeatmapWeeks: cfg.Stats.HeatmapWeeks,
		Sync:         syncOpts,
	}, logger)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "address", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed to start: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	logger.Info("shutting down server")
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}
