// Copyright (c) 2026 Shomiti Contributors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package webhook dispatches outbound notifications for membership
// registrations and contact submissions, with HMAC-signed payloads and
// retried delivery.
package webhook

import "time"

// Event types dispatched by the application.
const (
	EventMembershipCreated = "membership.created"
	EventContactSubmitted  = "contact.submitted"
)

// Event is the JSON envelope posted to the receiving endpoint.
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// NewEvent creates an event stamped with the current UTC time.
func NewEvent(eventType string, data any) *Event {
	return &Event{
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

// MembershipEventData is the payload for membership.created.
type MembershipEventData struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Address      string    `json:"address"`
	Occupation   string    `json:"occupation,omitempty"`
	RegisteredAt time.Time `json:"registered_at"`
}

// ContactEventData is the payload for contact.submitted.
type ContactEventData struct {
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Subject     string    `json:"subject,omitempty"`
	Message     string    `json:"message"`
	SubmittedAt time.Time `json:"submitted_at"`
}
