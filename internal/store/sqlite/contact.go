// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ticketline Contributors

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/ticketline-dev/ticketline/internal/store"
)

// Compile-time interface check.
var _ store.ContactStore = (*ContactStore)(nil)

// ContactStore implements store.ContactStore backed by SQLite.
type ContactStore struct {
	db *sql.DB
}

// Create inserts a contact. Used by ingestion collaborators and tests;
// the query engine never writes.
func (c *ContactStore) Create(ctx context.Context, contact *store.Contact) error {
	const q = `INSERT INTO contacts (id, name, number, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)`

	_, err := c.db.ExecContext(ctx, q,
		contact.ID,
		contact.Name,
		contact.Number,
		formatTime(contact.CreatedAt),
		formatTime(contact.UpdatedAt),
	)
	if isConstraintErr(err) {
		return fmt.Errorf("creating contact %s: %w", contact.ID, store.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("creating contact %s: %w: %w", contact.ID, store.ErrDatabase, err)
	}
	return nil
}

func (c *ContactStore) FindByID(ctx context.Context, id string) (*store.Contact, error) {
	const q = `SELECT id, name, number, created_at, updated_at FROM contacts WHERE id = ?`
	return c.scanOne(c.db.QueryRowContext(ctx, q, id), id)
}

func (c *ContactStore) FindByNumber(ctx context.Context, number string) (*store.Contact, error) {
	const q = `SELECT id, name, number, created_at, updated_at FROM contacts WHERE number = ?`
	return c.scanOne(c.db.QueryRowContext(ctx, q, number), number)
}

func (c *ContactStore) scanOne(row *sql.Row, key string) (*store.Contact, error) {
	var contact store.Contact
	var createdAt, updatedAt string

	err := row.Scan(
		&contact.ID,
		&contact.Name,
		&contact.Number,
		&createdAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("contact %s: %w", key, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting contact %s: %w: %w", key, store.ErrDatabase, err)
	}

	contact.CreatedAt = parseTime(createdAt)
	contact.UpdatedAt = parseTime(updatedAt)

	return &contact, nil
}

// isConstraintErr reports whether err is a SQLite constraint violation.
func isConstraintErr(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint
}
