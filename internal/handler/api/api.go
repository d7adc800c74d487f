// Copyright (c) 2026 Shomiti Contributors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api provides the JSON API consumed by the public site and the
// admin panel.
package api

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/shomiti/shomiti-go/internal/cache"
	"github.com/shomiti/shomiti-go/internal/config"
	"github.com/shomiti/shomiti-go/internal/imaging"
	"github.com/shomiti/shomiti-go/internal/middleware"
	"github.com/shomiti/shomiti-go/internal/model"
	"github.com/shomiti/shomiti-go/internal/store"
	"github.com/shomiti/shomiti-go/internal/webhook"
)

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	db         *sql.DB
	queries    *store.Queries
	cfg        *config.Config
	sessions   *scs.SessionManager
	dispatcher *webhook.Dispatcher
	processor  *imaging.Processor
	heroCache  *cache.TypedCache[[]model.Hero]
	logins     *middleware.LoginProtection
}

// NewHandler creates the API handler with its collaborators.
func NewHandler(db *sql.DB, cfg *config.Config, sessions *scs.SessionManager, dispatcher *webhook.Dispatcher, backingCache cache.Cache) *Handler {
	ttl := time.Duration(cfg.CacheTTL) * time.Second
	return &Handler{
		db:         db,
		queries:    store.New(db),
		cfg:        cfg,
		sessions:   sessions,
		dispatcher: dispatcher,
		processor:  imaging.NewProcessor(cfg.UploadsDir),
		heroCache:  cache.NewTypedCache[[]model.Hero](backingCache, ttl),
		logins:     middleware.NewLoginProtection(),
	}
}

// LoginProtection exposes the login limiter for route wiring.
func (h *Handler) LoginProtection() *middleware.LoginProtection {
	return h.logins
}

// Response is the standard API response wrapper.
type Response struct {
	Data any   `json:"data"`
	Meta *Meta `json:"meta,omitempty"`
}

// Meta contains list metadata.
type Meta struct {
	Total int64 `json:"total,omitempty"`
}

// ErrorResponse is the standard API error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a 200 response in the standard envelope.
func WriteSuccess(w http.ResponseWriter, data any, meta *Meta) {
	WriteJSON(w, http.StatusOK, Response{Data: data, Meta: meta})
}

// WriteCreated writes a 201 response in the standard envelope.
func WriteCreated(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, Response{Data: data})
}

// WriteError writes an error response with a stable code.
func WriteError(w http.ResponseWriter, statusCode int, code, message string, details map[string]string) {
	WriteJSON(w, statusCode, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// WriteBadRequest writes a 400 response.
func WriteBadRequest(w http.ResponseWriter, message string, details map[string]string) {
	WriteError(w, http.StatusBadRequest, "bad_request", message, details)
}

// WriteNotFound writes a 404 response.
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, "not_found", message, nil)
}

// WriteUnauthorized writes a 401 response.
func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, "unauthorized", message, nil)
}

// WriteInternalError writes a 500 response.
func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, "internal_error", message, nil)
}

// WriteValidationError writes a 422 response with per-field messages.
func WriteValidationError(w http.ResponseWriter, fieldErrors map[string]string) {
	WriteError(w, http.StatusUnprocessableEntity, "validation_error", "Validation failed", fieldErrors)
}

// StatusResponse contains API status information.
type StatusResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// Status reports API liveness.
func (h *Handler) Status(w http.ResponseWriter, _ *http.Request) {
	WriteSuccess(w, StatusResponse{Status: "ok", Version: "v1"}, nil)
}
