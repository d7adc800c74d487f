// Copyright (c) 2026 Shomiti Contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"regexp"
	"strings"
	"time"
)

// MaxMembershipAddressLen is the maximum accepted address length.
const MaxMembershipAddressLen = 200

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe = regexp.MustCompile(`^[0-9]{10,14}$`)
)

// Membership is a membership application. Applications are immutable once
// created; the admin surface only lists them.
type Membership struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	FatherName  sql.NullString `json:"fatherName,omitempty"`
	MotherName  sql.NullString `json:"motherName,omitempty"`
	Institution sql.NullString `json:"institution,omitempty"`
	Address     sql.NullString `json:"address,omitempty"`
	Email       string         `json:"email"`
	Phone       sql.NullString `json:"phone,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// ValidEmail reports whether s has the shape of an e-mail address.
// The remote mail system remains the final authority.
func ValidEmail(s string) bool {
	return emailRe.MatchString(s)
}

// ValidPhone reports whether s is a 10-14 digit phone number.
func ValidPhone(s string) bool {
	return phoneRe.MatchString(s)
}

// ValidateMembership checks the application fields and returns a map of
// field name to error message. An empty map means the application is valid.
func ValidateMembership(name, email, phone, address string) map[string]string {
	errs := make(map[string]string)
	if strings.TrimSpace(name) == "" {
		errs["name"] = "Name is required"
	}
	if strings.TrimSpace(email) == "" {
		errs["email"] = "Email is required"
	} else if !ValidEmail(email) {
		errs["email"] = "Invalid email address"
	}
	if phone != "" && !ValidPhone(phone) {
		errs["phone"] = "Phone must be 10-14 digits"
	}
	if len(address) > MaxMembershipAddressLen {
		errs["address"] = "Address must be 200 characters or fewer"
	}
	return errs
}
