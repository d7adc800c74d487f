// Copyright (c) 2026 Shomiti Contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath        string `env:"SHOMITI_DB_PATH" envDefault:"./data/shomiti.db"`
	SessionSecret string `env:"SHOMITI_SESSION_SECRET,required"`
	ServerHost    string `env:"SHOMITI_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"SHOMITI_SERVER_PORT" envDefault:"8080"`
	Env           string `env:"SHOMITI_ENV" envDefault:"development"`
	LogLevel      string `env:"SHOMITI_LOG_LEVEL" envDefault:"info"`
	UploadsDir    string `env:"SHOMITI_UPLOADS_DIR" envDefault:"./uploads"`
	PublicBaseURL string `env:"SHOMITI_PUBLIC_BASE_URL" envDefault:"http://localhost:8080"`

	// AdminEmails is the comma-separated allow-list of admin addresses.
	// An empty list enables demo mode: every authenticated user is an admin.
	AdminEmails []string `env:"SHOMITI_ADMIN_EMAILS" envSeparator:","`

	// CORSOrigins lists origins allowed to call the API (the public SPA).
	CORSOrigins []string `env:"SHOMITI_CORS_ORIGINS" envSeparator:","`

	// Outbound notification configuration
	MembershipWebhookURL string `env:"SHOMITI_MEMBERSHIP_WEBHOOK_URL"`
	ContactWebhookURL    string `env:"SHOMITI_CONTACT_WEBHOOK_URL"`
	WebhookSecret        string `env:"SHOMITI_WEBHOOK_SECRET"`

	// Cache configuration
	RedisURL    string `env:"SHOMITI_REDIS_URL"` // Optional Redis URL for the hero/config cache
	CachePrefix string `env:"SHOMITI_CACHE_PREFIX" envDefault:"shomiti:"`
	CacheTTL    int    `env:"SHOMITI_CACHE_TTL" envDefault:"300"` // Seconds

	// Seeding configuration
	DoSeed bool `env:"SHOMITI_DO_SEED" envDefault:"false"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// MembershipWebhookEnabled returns true if the membership webhook is configured.
func (c Config) MembershipWebhookEnabled() bool {
	return c.MembershipWebhookURL != ""
}

// ContactWebhookEnabled returns true if the contact webhook is configured.
func (c Config) ContactWebhookEnabled() bool {
	return c.ContactWebhookURL != ""
}

// DemoMode returns true when no admin allow-list is configured. In demo mode
// every authenticated user passes the admin gate.
func (c Config) DemoMode() bool {
	return len(c.normalizedAdminEmails()) == 0
}

// IsAdminEmail reports whether email is on the admin allow-list. Matching is
// case-insensitive. With an empty allow-list (demo mode) every non-empty
// email is accepted.
func (c Config) IsAdminEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false
	}
	allowed := c.normalizedAdminEmails()
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if a == email {
			return true
		}
	}
	return false
}

func (c Config) normalizedAdminEmails() []string {
	out := make([]string, 0, len(c.AdminEmails))
	for _, e := range c.AdminEmails {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			out = append(out, e)
		}
	}
	return out
}

// MinSessionSecretLength is the minimum required length for the session secret.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("SHOMITI_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	for _, weak := range knownWeakSecrets {
		if cfg.SessionSecret == weak {
			return nil, fmt.Errorf("SHOMITI_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	if cfg.DemoMode() {
		slog.Warn("SHOMITI_ADMIN_EMAILS is empty; running in demo mode, every authenticated user is an admin")
	}

	return cfg, nil
}
