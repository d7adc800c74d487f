// Copyright (c) 2026 Shomiti Contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/shomiti/shomiti-go/internal/model"
)

const membershipColumns = `id, name, father_name, mother_name, institution,
	address, email, phone, created_at`

// CreateMembershipParams holds the fields of a membership application.
type CreateMembershipParams struct {
	Name        string
	FatherName  sql.NullString
	MotherName  sql.NullString
	Institution sql.NullString
	Address     sql.NullString
	Email       string
	Phone       sql.NullString
	CreatedAt   time.Time
}

// CreateMembership inserts an application and returns the stored row.
// Applications are immutable: there is no update path.
func (q *Queries) CreateMembership(ctx context.Context, arg CreateMembershipParams) (model.Membership, error) {
	res, err := q.db.ExecContext(ctx,
		`INSERT INTO memberships
		 (name, father_name, mother_name, institution, address, email, phone, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.Name, arg.FatherName, arg.MotherName, arg.Institution, arg.Address,
		arg.Email, arg.Phone, arg.CreatedAt)
	if err != nil {
		return model.Membership{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Membership{}, err
	}
	return q.GetMembership(ctx, id)
}

// GetMembership fetches an application by id.
func (q *Queries) GetMembership(ctx context.Context, id int64) (model.Membership, error) {
	var m model.Membership
	err := q.db.QueryRowContext(ctx,
		`SELECT `+membershipColumns+` FROM memberships WHERE id = ?`, id).
		Scan(&m.ID, &m.Name, &m.FatherName, &m.MotherName, &m.Institution,
			&m.Address, &m.Email, &m.Phone, &m.CreatedAt)
	return m, err
}

// ListMemberships returns all applications, newest first.
func (q *Queries) ListMemberships(ctx context.Context) ([]model.Membership, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+membershipColumns+` FROM memberships ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Membership
	for rows.Next() {
		var m model.Membership
		if err := rows.Scan(&m.ID, &m.Name, &m.FatherName, &m.MotherName, &m.Institution,
			&m.Address, &m.Email, &m.Phone, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// CountMemberships returns the number of applications on file.
func (q *Queries) CountMemberships(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM memberships`).Scan(&n)
	return n, err
}
