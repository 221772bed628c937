package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/sistemapolicial/officer-registry/internal/auth"
	"github.com/sistemapolicial/officer-registry/internal/config"
	"github.com/sistemapolicial/officer-registry/internal/database"
	"github.com/sistemapolicial/officer-registry/internal/filestore"
	"github.com/sistemapolicial/officer-registry/internal/logging"
	"github.com/sistemapolicial/officer-registry/internal/officer"
	"github.com/sistemapolicial/officer-registry/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"port", cfg.Server.Port,
		"db_max_conns", cfg.Database.MaxConns,
		"upload_dir", cfg.Upload.Dir,
	)

	ctx := context.Background()

	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Log which database we connected to
	if u, err := url.Parse(cfg.Database.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	}

	if err := database.Migrate(cfg.Database.URL, slog.Default()); err != nil {
		slog.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	if cfg.Auth.BootstrapUser != "" {
		if err := ensureBootstrapUser(ctx, pool, cfg.Auth.BootstrapUser, cfg.Auth.BootstrapPassword); err != nil {
			slog.Error("failed to create bootstrap user", "error", err)
			os.Exit(1)
		}
		slog.Info("bootstrap user ready", "username", cfg.Auth.BootstrapUser)
	}

	files, err := filestore.New(cfg.Upload.Dir)
	if err != nil {
		slog.Error("failed to prepare upload directory", "error", err)
		os.Exit(1)
	}

	store := officer.NewPostgresStore(pool, cfg.Database.AcquireTimeout)
	service := officer.NewService(store, files)
	authService := auth.NewService(auth.NewPostgresUserStore(pool), cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	server := web.NewServer(cfg, service, authService, pool)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(cfg.Server.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
