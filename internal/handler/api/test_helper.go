// Copyright (c) 2026 Shomiti Contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/mattn/go-sqlite3"

	"github.com/shomiti/shomiti-go/internal/auth"
	"github.com/shomiti/shomiti-go/internal/cache"
	"github.com/shomiti/shomiti-go/internal/config"
	"github.com/shomiti/shomiti-go/internal/middleware"
	"github.com/shomiti/shomiti-go/internal/model"
	"github.com/shomiti/shomiti-go/internal/session"
	"github.com/shomiti/shomiti-go/internal/store"
	"github.com/shomiti/shomiti-go/internal/webhook"
)

const testSchema = `
	CREATE TABLE users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		name TEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		last_login_at DATETIME
	);

	CREATE TABLE sessions (
		token TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		expiry REAL NOT NULL
	);

	CREATE TABLE content_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		collection TEXT NOT NULL,
		title TEXT NOT NULL,
		slug TEXT,
		description TEXT NOT NULL DEFAULT '',
		content TEXT NOT NULL DEFAULT '',
		category TEXT,
		date DATETIME,
		thumbnail TEXT,
		url TEXT,
		tags TEXT,
		urgent BOOLEAN NOT NULL DEFAULT 0,
		extra TEXT,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE memberships (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		father_name TEXT,
		mother_name TEXT,
		institution TEXT,
		address TEXT,
		email TEXT NOT NULL,
		phone TEXT,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE hero_content (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		placement TEXT NOT NULL,
		image TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		subtitle TEXT NOT NULL DEFAULT '',
		cta_text TEXT NOT NULL DEFAULT '',
		cta_link TEXT NOT NULL DEFAULT '',
		display_order INTEGER NOT NULL DEFAULT 0,
		is_active BOOLEAN NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE activities (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		level TEXT NOT NULL DEFAULT 'info',
		category TEXT NOT NULL DEFAULT 'system',
		message TEXT NOT NULL,
		user_id INTEGER,
		metadata TEXT NOT NULL DEFAULT '{}',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE webhook_deliveries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		event TEXT NOT NULL,
		url TEXT NOT NULL,
		payload BLOB NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		attempts INTEGER NOT NULL DEFAULT 0,
		response_code INTEGER,
		response_body TEXT,
		delivered_at DATETIME,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
`

// testDB creates an in-memory SQLite database with the full schema.
// One connection only: each :memory: connection is its own database.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(testSchema); err != nil {
		t.Fatalf("failed to create test schema: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

// testEnv bundles a running API server with its collaborators. Requests
// go through the real router and session middleware; the client keeps
// cookies, so a login carries over to later calls.
type testEnv struct {
	db      *sql.DB
	queries *store.Queries
	handler *Handler
	cfg     *config.Config
	cache   cache.Cache
	server  *httptest.Server
	client  *http.Client
}

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		DBPath:        ":memory:",
		SessionSecret: "test-session-secret-0123456789abcdef",
		ServerHost:    "localhost",
		ServerPort:    8080,
		Env:           "development",
		LogLevel:      "error",
		UploadsDir:    t.TempDir(),
		PublicBaseURL: "http://localhost:8080",
		AdminEmails:   []string{"admin@example.com"},
		WebhookSecret: "test-webhook-secret",
		CacheTTL:      300,
	}
}

// newTestEnv builds the API handler and mounts it on a router shaped
// like the production one, minus the login rate limiter (covered by its
// own tests; it would throttle lockout scenarios here).
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)
	cfg := newTestConfig(t)

	sessions := session.New(db, true)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dispatcher := webhook.NewDispatcher(db, logger, webhook.Config{
		Workers: 1,
		Secret:  cfg.WebhookSecret,
	})
	dispatcher.Start(context.Background())
	t.Cleanup(dispatcher.Stop)

	backingCache := cache.NewMemoryCache(time.Minute)
	h := NewHandler(db, cfg, sessions, dispatcher, backingCache)

	r := chi.NewRouter()
	r.Use(sessions.LoadAndSave)
	r.Use(middleware.LoadUser(sessions, db))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", h.Status)

		r.Route("/content/{collection}", func(r chi.Router) {
			r.Get("/", h.ListContent)
			r.Get("/facets", h.ContentFacets)
			r.Get("/{id}", h.GetContent)
		})

		r.Get("/hero/{placement}", h.GetHeroes)
		r.Get("/events/{id}/countdown", h.EventCountdown)
		r.Get("/events/{id}/countdown/stream", h.EventCountdownStream)

		r.Post("/memberships", h.CreateMembership)
		r.Post("/contact", h.SubmitContact)

		r.Post("/auth/login", h.Login)
		r.Post("/auth/logout", h.Logout)
		r.Get("/auth/session", h.Session)
		r.Post("/auth/reset", h.RequestReset)

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAuth())
			r.Use(middleware.RequireAdmin(cfg))

			r.Route("/content/{collection}", func(r chi.Router) {
				r.Post("/", h.CreateContent)
				r.Put("/{id}", h.UpdateContent)
				r.Delete("/{id}", h.DeleteContent)
			})

			r.Route("/hero/{placement}", func(r chi.Router) {
				r.Get("/", h.ListHeroesAdmin)
				r.Post("/", h.CreateHero)
				r.Put("/{id}", h.UpdateHero)
				r.Delete("/{id}", h.DeleteHero)
			})

			r.Get("/memberships", h.ListMemberships)
			r.Post("/upload", h.Upload)
			r.Get("/summary", h.Summary)
		})
	})

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("failed to create cookie jar: %v", err)
	}

	return &testEnv{
		db:      db,
		queries: store.New(db),
		handler: h,
		cfg:     cfg,
		cache:   backingCache,
		server:  server,
		client:  &http.Client{Jar: jar},
	}
}

// do sends a request to the test server. A non-empty body is sent as
// JSON.
func (e *testEnv) do(t *testing.T, method, path, body string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, e.server.URL+path, reader)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := e.client.Do(req)
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, path, err)
	}
	return res
}

// createTestUser inserts a user with a real password hash.
func createTestUser(t *testing.T, q *store.Queries, email, password, name string) model.User {
	t.Helper()

	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	now := time.Now()
	user, err := q.CreateUser(context.Background(), store.CreateUserParams{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// login signs the environment's client in as the given user. It expects
// success.
func (e *testEnv) login(t *testing.T, email, password string) {
	t.Helper()

	res := e.do(t, http.MethodPost, "/api/v1/auth/login",
		`{"email":"`+email+`","password":"`+password+`"}`)
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode != http.StatusOK {
		t.Fatalf("login returned status %d, want %d", res.StatusCode, http.StatusOK)
	}
}

// loginAdmin creates the allow-listed admin and signs in as them.
func (e *testEnv) loginAdmin(t *testing.T) model.User {
	t.Helper()

	user := createTestUser(t, e.queries, "admin@example.com", "correct-horse", "Admin")
	e.login(t, user.Email, "correct-horse")
	return user
}

// createTestContent inserts a content row directly.
func createTestContent(t *testing.T, q *store.Queries, arg store.CreateContentParams) model.ContentItem {
	t.Helper()

	if arg.CreatedAt.IsZero() {
		arg.CreatedAt = time.Now()
	}
	if arg.UpdatedAt.IsZero() {
		arg.UpdatedAt = arg.CreatedAt
	}
	item, err := q.CreateContent(context.Background(), arg)
	if err != nil {
		t.Fatalf("failed to create test content: %v", err)
	}
	return item
}

// createTestHero inserts a hero row directly.
func createTestHero(t *testing.T, q *store.Queries, arg store.CreateHeroParams) model.Hero {
	t.Helper()

	if arg.CreatedAt.IsZero() {
		arg.CreatedAt = time.Now()
	}
	if arg.UpdatedAt.IsZero() {
		arg.UpdatedAt = arg.CreatedAt
	}
	hero, err := q.CreateHero(context.Background(), arg)
	if err != nil {
		t.Fatalf("failed to create test hero: %v", err)
	}
	return hero
}

type envelope struct {
	Data json.RawMessage `json:"data"`
	Meta *Meta           `json:"meta"`
}

// decodeData asserts the status code and unmarshals the envelope's data
// field into v. It returns the envelope for meta assertions.
func decodeData(t *testing.T, res *http.Response, wantStatus int, v any) envelope {
	t.Helper()
	defer func() { _ = res.Body.Close() }()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	if res.StatusCode != wantStatus {
		t.Fatalf("status = %d, want %d (body: %s)", res.StatusCode, wantStatus, raw)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		t.Fatalf("failed to decode envelope: %v (body: %s)", err, raw)
	}
	if v != nil {
		if err := json.Unmarshal(env.Data, v); err != nil {
			t.Fatalf("failed to decode data: %v (data: %s)", err, env.Data)
		}
	}
	return env
}

// decodeError asserts the status code and returns the error payload.
func decodeError(t *testing.T, res *http.Response, wantStatus int) ErrorDetail {
	t.Helper()
	defer func() { _ = res.Body.Close() }()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	if res.StatusCode != wantStatus {
		t.Fatalf("status = %d, want %d (body: %s)", res.StatusCode, wantStatus, raw)
	}

	var errRes ErrorResponse
	if err := json.Unmarshal(raw, &errRes); err != nil {
		t.Fatalf("failed to decode error response: %v (body: %s)", err, raw)
	}
	return errRes.Error
}
