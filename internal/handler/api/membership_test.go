// Copyright (c) 2026 Shomiti Contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shomiti/shomiti-go/internal/webhook"
)

func TestCreateMembership(t *testing.T) {
	env := newTestEnv(t)

	res := env.do(t, http.MethodPost, "/api/v1/memberships",
		`{"name":"Anika Rahman","email":"anika@example.com","phone":"01712345678","fatherName":"Abdul Rahman","institution":"Dhaka University"}`)
	var created MembershipView
	decodeData(t, res, http.StatusCreated, &created)

	if created.ID == 0 || created.Name != "Anika Rahman" {
		t.Errorf("created = %+v, want stored application", created)
	}
	if created.FatherName != "Abdul Rahman" {
		t.Errorf("fatherName = %q, want Abdul Rahman", created.FatherName)
	}
}

func TestCreateMembershipValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{"missing name", `{"email":"a@b.cd","phone":"01712345678"}`, "name"},
		{"missing email", `{"name":"A","phone":"01712345678"}`, "email"},
		{"malformed email", `{"name":"A","email":"not-an-email","phone":"01712345678"}`, "email"},
		{"malformed phone", `{"name":"A","email":"a@b.cd","phone":"12ab"}`, "phone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := env.do(t, http.MethodPost, "/api/v1/memberships", tt.body)
			detail := decodeError(t, res, http.StatusUnprocessableEntity)
			if detail.Code != "validation_error" {
				t.Errorf("code = %q, want validation_error", detail.Code)
			}
			if _, ok := detail.Details[tt.wantField]; !ok {
				t.Errorf("details = %v, want field %q", detail.Details, tt.wantField)
			}
		})
	}
}

func TestCreateMembershipDeliversWebhook(t *testing.T) {
	env := newTestEnv(t)

	received := make(chan []byte, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		sig := r.Header.Get("X-Webhook-Signature")
		if !webhook.VerifySignature(body, sig, env.cfg.WebhookSecret) {
			t.Error("webhook signature did not verify")
		}
		if got := r.Header.Get("X-Webhook-Event"); got != webhook.EventMembershipCreated {
			t.Errorf("event header = %q, want %q", got, webhook.EventMembershipCreated)
		}
		received <- body
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()
	env.cfg.MembershipWebhookURL = server.URL

	res := env.do(t, http.MethodPost, "/api/v1/memberships",
		`{"name":"Karim","email":"karim@example.com","phone":"01898765432"}`)
	var created MembershipView
	decodeData(t, res, http.StatusCreated, &created)

	select {
	case body := <-received:
		if len(body) == 0 {
			t.Error("webhook body empty")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("webhook was not delivered")
	}
}

func TestCreateMembershipWithoutWebhookURL(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.MembershipWebhookURL = ""

	res := env.do(t, http.MethodPost, "/api/v1/memberships",
		`{"name":"Salma","email":"salma@example.com","phone":"01711112222"}`)
	var created MembershipView
	decodeData(t, res, http.StatusCreated, &created)
	if created.ID == 0 {
		t.Error("application not stored when webhook is unconfigured")
	}
}

func TestListMembershipsRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)

	res := env.do(t, http.MethodGet, "/api/v1/admin/memberships", "")
	decodeError(t, res, http.StatusUnauthorized)
}

func TestListMemberships(t *testing.T) {
	env := newTestEnv(t)
	env.loginAdmin(t)

	for _, name := range []string{"First", "Second"} {
		res := env.do(t, http.MethodPost, "/api/v1/memberships",
			`{"name":"`+name+`","email":"x@example.com","phone":"01712345678"}`)
		decodeData(t, res, http.StatusCreated, nil)
	}

	res := env.do(t, http.MethodGet, "/api/v1/admin/memberships", "")
	var views []MembershipView
	got := decodeData(t, res, http.StatusOK, &views)

	if len(views) != 2 {
		t.Fatalf("got %d applications, want 2", len(views))
	}
	if got.Meta == nil || got.Meta.Total != 2 {
		t.Errorf("meta = %+v, want total 2", got.Meta)
	}
}

func TestMembershipsHaveNoUpdateRoute(t *testing.T) {
	env := newTestEnv(t)
	env.loginAdmin(t)

	res := env.do(t, http.MethodPost, "/api/v1/memberships",
		`{"name":"Immutable","email":"x@example.com","phone":"01712345678"}`)
	decodeData(t, res, http.StatusCreated, nil)

	for _, method := range []string{http.MethodPut, http.MethodDelete} {
		res := env.do(t, method, "/api/v1/admin/memberships/1", "")
		_ = res.Body.Close()
		if res.StatusCode != http.StatusNotFound && res.StatusCode != http.StatusMethodNotAllowed {
			t.Errorf("%s returned %d, want 404 or 405", method, res.StatusCode)
		}
	}
}

func TestSubmitContact(t *testing.T) {
	env := newTestEnv(t)

	received := make(chan struct{}, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("X-Webhook-Event"); got != webhook.EventContactSubmitted {
			t.Errorf("event header = %q, want %q", got, webhook.EventContactSubmitted)
		}
		received <- struct{}{}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()
	env.cfg.ContactWebhookURL = server.URL

	res := env.do(t, http.MethodPost, "/api/v1/contact",
		`{"name":"Visitor","email":"visitor@example.com","subject":"Hello","message":"A question"}`)
	var status map[string]string
	decodeData(t, res, http.StatusOK, &status)
	if status["status"] != "received" {
		t.Errorf("status = %v, want received", status)
	}

	select {
	case <-received:
	case <-time.After(5 * time.Second):
		t.Fatal("contact webhook was not delivered")
	}
}

func TestSubmitContactValidation(t *testing.T) {
	env := newTestEnv(t)

	res := env.do(t, http.MethodPost, "/api/v1/contact", `{"subject":"only"}`)
	detail := decodeError(t, res, http.StatusUnprocessableEntity)
	for _, field := range []string{"name", "email", "message"} {
		if _, ok := detail.Details[field]; !ok {
			t.Errorf("details = %v, want field %q", detail.Details, field)
		}
	}
}
