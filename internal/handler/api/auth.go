// Copyright (c) 2026 Shomiti Contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mileusna/useragent"

	"github.com/shomiti/shomiti-go/internal/auth"
	"github.com/shomiti/shomiti-go/internal/middleware"
	"github.com/shomiti/shomiti-go/internal/model"
)

// LoginInput is the login request payload.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionView is the identity payload the access gate drives its state
// machine on.
type SessionView struct {
	User    *UserView `json:"user"`
	IsAdmin bool      `json:"isAdmin"`
}

// UserView is the JSON shape of a signed-in user.
type UserView struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func userView(u *model.User) *UserView {
	if u == nil {
		return nil
	}
	return &UserView{ID: u.ID, Email: u.Email, Name: u.Name}
}

// clientDevice summarizes the User-Agent header for the audit trail.
func clientDevice(r *http.Request) string {
	ua := useragent.Parse(r.UserAgent())
	if ua.Name == "" {
		return "unknown"
	}
	device := ua.Name
	if ua.OS != "" {
		device += " on " + ua.OS
	}
	return device
}

// Login authenticates a user and opens a session. Repeated failures lock
// the account; locked and invalid attempts are indistinguishable beyond
// the lockout message, and unknown addresses burn an attempt too.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var in LoginInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		WriteValidationError(w, map[string]string{"email": "Email and password are required"})
		return
	}

	if locked, remaining := h.logins.IsLocked(email); locked {
		slog.Warn("login attempt on locked account",
			"category", model.ActivityCategoryAuth,
			"email", email,
			"device", clientDevice(r))
		WriteError(w, http.StatusTooManyRequests, "account_locked",
			fmt.Sprintf("Account locked. Try again in %s.", remaining.Round(time.Second)), nil)
		return
	}

	user, err := h.queries.GetUserByEmail(r.Context(), email)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slog.Error("database error during login", "error", err)
			WriteInternalError(w, "Login failed")
			return
		}
		h.logins.RecordFailure(email)
		slog.Warn("login failed",
			"category", model.ActivityCategoryAuth,
			"email", email,
			"reason", "unknown user",
			"device", clientDevice(r))
		WriteUnauthorized(w, "Invalid email or password")
		return
	}

	valid, err := auth.CheckPassword(in.Password, user.PasswordHash)
	if err != nil || !valid {
		h.logins.RecordFailure(email)
		slog.Warn("login failed",
			"category", model.ActivityCategoryAuth,
			"user_id", user.ID,
			"reason", "invalid password",
			"device", clientDevice(r))
		WriteUnauthorized(w, "Invalid email or password")
		return
	}

	h.logins.RecordSuccess(email)

	if err := h.queries.UpdateUserLastLogin(r.Context(), user.ID, time.Now()); err != nil {
		slog.Error("updating last login failed", "error", err, "user_id", user.ID)
	}

	// New session token against fixation.
	if err := h.sessions.RenewToken(r.Context()); err != nil {
		slog.Error("session renewal failed", "error", err)
		WriteInternalError(w, "Login failed")
		return
	}
	h.sessions.Put(r.Context(), middleware.SessionKeyUserID, user.ID)

	slog.Info("user logged in", "user_id", user.ID, "device", clientDevice(r))
	WriteSuccess(w, SessionView{
		User:    userView(&user),
		IsAdmin: h.cfg.IsAdminEmail(user.Email),
	}, nil)
}

// Logout destroys the session. Succeeds for anonymous callers too.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	userID := h.sessions.GetInt64(r.Context(), middleware.SessionKeyUserID)

	if err := h.sessions.Destroy(r.Context()); err != nil {
		slog.Error("session destroy failed", "error", err)
		WriteInternalError(w, "Logout failed")
		return
	}

	if userID > 0 {
		slog.Info("user logged out", "user_id", userID)
	}
	WriteSuccess(w, map[string]string{"status": "logged_out"}, nil)
}

// Session reports the current identity and admin flag. Anonymous callers
// get a null user, not an error; the gate treats that as signed-out.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	view := SessionView{User: userView(user)}
	if user != nil {
		view.IsAdmin = h.cfg.IsAdminEmail(user.Email)
	}
	WriteSuccess(w, view, nil)
}

// ResetInput is the password reset request payload.
type ResetInput struct {
	Email string `json:"email"`
}

// RequestReset records a password reset request. Mail transport is an
// external collaborator; the response never reveals whether the address
// exists.
func (h *Handler) RequestReset(w http.ResponseWriter, r *http.Request) {
	var in ResetInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || !model.ValidEmail(email) {
		WriteValidationError(w, map[string]string{"email": "A valid email is required"})
		return
	}

	if user, err := h.queries.GetUserByEmail(r.Context(), email); err == nil {
		slog.Warn("password reset requested",
			"category", model.ActivityCategoryAuth,
			"user_id", user.ID)
	}

	WriteSuccess(w, map[string]string{"status": "reset_requested"}, nil)
}
