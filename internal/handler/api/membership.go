// Copyright (c) 2026 Shomiti Contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/shomiti/shomiti-go/internal/model"
	"github.com/shomiti/shomiti-go/internal/store"
	"github.com/shomiti/shomiti-go/internal/webhook"
)

// MembershipView is the JSON shape of an application.
type MembershipView struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	FatherName  string    `json:"fatherName,omitempty"`
	MotherName  string    `json:"motherName,omitempty"`
	Institution string    `json:"institution,omitempty"`
	Address     string    `json:"address,omitempty"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func membershipView(m model.Membership) MembershipView {
	return MembershipView{
		ID:          m.ID,
		Name:        m.Name,
		FatherName:  m.FatherName.String,
		MotherName:  m.MotherName.String,
		Institution: m.Institution.String,
		Address:     m.Address.String,
		Email:       m.Email,
		Phone:       m.Phone.String,
		CreatedAt:   m.CreatedAt,
	}
}

// MembershipInput is the application form payload.
type MembershipInput struct {
	Name        string `json:"name"`
	FatherName  string `json:"fatherName"`
	MotherName  string `json:"motherName"`
	Institution string `json:"institution"`
	Address     string `json:"address"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
}

// CreateMembership accepts a membership application. Applications are
// immutable once stored; the configured webhook receives a signed copy.
func (h *Handler) CreateMembership(w http.ResponseWriter, r *http.Request) {
	var in MembershipInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)

	if errs := model.ValidateMembership(in.Name, in.Email, in.Phone, in.Address); len(errs) > 0 {
		WriteValidationError(w, errs)
		return
	}

	m, err := h.queries.CreateMembership(r.Context(), store.CreateMembershipParams{
		Name:        in.Name,
		FatherName:  nullString(strings.TrimSpace(in.FatherName)),
		MotherName:  nullString(strings.TrimSpace(in.MotherName)),
		Institution: nullString(strings.TrimSpace(in.Institution)),
		Address:     nullString(strings.TrimSpace(in.Address)),
		Email:       in.Email,
		Phone:       nullString(in.Phone),
		CreatedAt:   time.Now(),
	})
	if err != nil {
		slog.Error("creating membership failed", "error", err)
		WriteInternalError(w, "Failed to submit application")
		return
	}

	slog.Info("membership application received",
		"category", model.ActivityCategoryMembership,
		"membership_id", m.ID)

	// Background context: the notification must outlive this request.
	if err := h.dispatcher.DispatchEvent(context.WithoutCancel(r.Context()),
		h.cfg.MembershipWebhookURL, webhook.EventMembershipCreated,
		webhook.MembershipEventData{
			ID:           m.ID,
			Name:         m.Name,
			Email:        m.Email,
			Phone:        m.Phone.String,
			Address:      m.Address.String,
			RegisteredAt: m.CreatedAt,
		}); err != nil {
		slog.Error("queuing membership webhook failed", "membership_id", m.ID, "error", err)
	}

	WriteCreated(w, membershipView(m))
}

// ListMemberships returns all applications, newest first. Applications
// have no edit or delete path; the list is the whole admin surface.
func (h *Handler) ListMemberships(w http.ResponseWriter, r *http.Request) {
	memberships, err := h.queries.ListMemberships(r.Context())
	if err != nil {
		slog.Error("listing memberships failed", "error", err)
		WriteInternalError(w, "Failed to list memberships")
		return
	}

	views := make([]MembershipView, 0, len(memberships))
	for _, m := range memberships {
		views = append(views, membershipView(m))
	}
	WriteSuccess(w, views, &Meta{Total: int64(len(views))})
}

// ContactInput is the contact form payload.
type ContactInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

func validateContact(in *ContactInput) map[string]string {
	errs := make(map[string]string)
	if strings.TrimSpace(in.Name) == "" {
		errs["name"] = "Name is required"
	}
	if strings.TrimSpace(in.Email) == "" {
		errs["email"] = "Email is required"
	} else if !model.ValidEmail(in.Email) {
		errs["email"] = "Invalid email address"
	}
	if strings.TrimSpace(in.Message) == "" {
		errs["message"] = "Message is required"
	}
	return errs
}

// SubmitContact forwards a contact form submission to the configured
// webhook. Nothing is stored beyond the delivery record.
func (h *Handler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	var in ContactInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return
	}

	if errs := validateContact(&in); len(errs) > 0 {
		WriteValidationError(w, errs)
		return
	}

	if err := h.dispatcher.DispatchEvent(context.WithoutCancel(r.Context()),
		h.cfg.ContactWebhookURL, webhook.EventContactSubmitted,
		webhook.ContactEventData{
			Name:        strings.TrimSpace(in.Name),
			Email:       strings.TrimSpace(in.Email),
			Subject:     strings.TrimSpace(in.Subject),
			Message:     in.Message,
			SubmittedAt: time.Now().UTC(),
		}); err != nil {
		slog.Error("queuing contact webhook failed", "error", err)
		WriteInternalError(w, "Failed to submit message")
		return
	}

	WriteSuccess(w, map[string]string{"status": "received"}, nil)
}
