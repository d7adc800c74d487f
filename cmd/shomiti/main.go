// Copyright (c) 2026 Shomiti Contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/shomiti/shomiti-go/internal/cache"
	"github.com/shomiti/shomiti-go/internal/config"
	"github.com/shomiti/shomiti-go/internal/handler/api"
	"github.com/shomiti/shomiti-go/internal/logging"
	"github.com/shomiti/shomiti-go/internal/maintenance"
	"github.com/shomiti/shomiti-go/internal/middleware"
	"github.com/shomiti/shomiti-go/internal/session"
	"github.com/shomiti/shomiti-go/internal/store"
	"github.com/shomiti/shomiti-go/internal/webhook"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "Shomiti - community association backend\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SHOMITI_SESSION_SECRET   Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SHOMITI_DB_PATH          SQLite database path (default: ./data/shomiti.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SHOMITI_SERVER_PORT     Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SHOMITI_ENV              Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SHOMITI_ADMIN_EMAILS     Comma-separated admin allow-list (empty: demo mode)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SHOMITI_UPLOADS_DIR      Media upload directory (default: ./uploads)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SHOMITI_REDIS_URL        Redis URL for the content cache (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SHOMITI_DO_SEED          Seed demo content on startup (default: false)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}
	if *showVersion {
		_, _ = fmt.Printf("shomiti %s (commit: %s, built: %s)\n", appVersion, appGitCommit, appBuildTime)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Ensure data and upload directories exist
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	if err := os.MkdirAll(cfg.UploadsDir, 0755); err != nil {
		return fmt.Errorf("creating uploads directory: %w", err)
	}

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// Upgrade logger to tee WARN and ERROR records into the activity log
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger = slog.New(logging.NewActivityLogHandler(textHandler, db))
	slog.SetDefault(logger)
	slog.Info("activity log integration enabled", "min_level", "warn")

	ctx := context.Background()
	if err := store.Seed(ctx, db, cfg.DoSeed); err != nil {
		return fmt.Errorf("seeding database: %w", err)
	}

	sessionManager := session.New(db, cfg.IsDevelopment())
	slog.Info("session manager initialized")

	contentCache := cache.New(cfg.RedisURL, cfg.CachePrefix, time.Duration(cfg.CacheTTL)*time.Second)
	defer func() {
		if err := contentCache.Close(); err != nil {
			slog.Error("error closing cache", "error", err)
		}
	}()

	dispatcher := webhook.NewDispatcher(db, logger, webhook.Config{
		Secret: cfg.WebhookSecret,
	})
	dispatcher.Start(ctx)
	defer dispatcher.Stop()
	slog.Info("webhook dispatcher started",
		"membership_webhook", cfg.MembershipWebhookEnabled(),
		"contact_webhook", cfg.ContactWebhookEnabled(),
	)

	scheduler := maintenance.New(db, logger)
	if err := scheduler.Start(); err != nil {
		return fmt.Errorf("starting maintenance scheduler: %w", err)
	}
	defer scheduler.Stop()

	apiHandler := api.NewHandler(db, cfg, sessionManager, dispatcher, contentCache)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(middleware.SecurityHeaders)

	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
		slog.Info("CORS enabled", "origins", cfg.CORSOrigins)
	}

	r.Use(middleware.RateLimit(20, 40))
	r.Use(sessionManager.LoadAndSave)
	r.Use(middleware.LoadUser(sessionManager, db))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", apiHandler.Status)

		r.Route("/content/{collection}", func(r chi.Router) {
			r.Get("/", apiHandler.ListContent)
			r.Get("/facets", apiHandler.ContentFacets)
			r.Get("/{id}", apiHandler.GetContent)
		})

		r.Get("/hero/{placement}", apiHandler.GetHeroes)
		r.Get("/events/{id}/countdown", apiHandler.EventCountdown)
		r.Get("/events/{id}/countdown/stream", apiHandler.EventCountdownStream)

		r.Post("/memberships", apiHandler.CreateMembership)
		r.Post("/contact", apiHandler.SubmitContact)

		r.With(apiHandler.LoginProtection().Middleware).Post("/auth/login", apiHandler.Login)
		r.Post("/auth/logout", apiHandler.Logout)
		r.Get("/auth/session", apiHandler.Session)
		r.Post("/auth/reset", apiHandler.RequestReset)

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAuth())
			r.Use(middleware.RequireAdmin(cfg))

			r.Route("/content/{collection}", func(r chi.Router) {
				r.Post("/", apiHandler.CreateContent)
				r.Put("/{id}", apiHandler.UpdateContent)
				r.Delete("/{id}", apiHandler.DeleteContent)
			})

			r.Route("/hero/{placement}", func(r chi.Router) {
				r.Get("/", apiHandler.ListHeroesAdmin)
				r.Post("/", apiHandler.CreateHero)
				r.Put("/{id}", apiHandler.UpdateHero)
				r.Delete("/{id}", apiHandler.DeleteHero)
			})

			r.Get("/memberships", apiHandler.ListMemberships)
			r.Post("/upload", apiHandler.Upload)
			r.Get("/summary", apiHandler.Summary)
		})
	})

	// Uploaded media: cache for 1 week
	uploadsHandler := http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadsDir)))
	r.Handle("/uploads/*", http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=604800")
		uploadsHandler.ServeHTTP(w, req)
	}))

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      0, // SSE countdown streams stay open
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
