// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ticketline Contributors

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ticketline-dev/ticketline/internal/store"
)

// Compile-time interface check.
var _ store.TicketStore = (*TicketStore)(nil)

// TicketStore implements store.TicketStore backed by SQLite.
type TicketStore struct {
	db *sql.DB
}

// Create inserts a ticket. Used by ingestion collaborators and tests;
// the query engine never writes.
func (t *TicketStore) Create(ctx context.Context, ticket *store.Ticket) error {
	const q = `INSERT INTO tickets (id, contact_id, status, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)`

	_, err := t.db.ExecContext(ctx, q,
		ticket.ID,
		ticket.ContactID,
		string(ticket.Status),
		formatTime(ticket.CreatedAt),
		formatTime(ticket.UpdatedAt),
	)
	if isConstraintErr(err) {
		return fmt.Errorf("creating ticket %s: %w", ticket.ID, store.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("creating ticket %s: %w: %w", ticket.ID, store.ErrDatabase, err)
	}
	return nil
}

func (t *TicketStore) FindByID(ctx context.Context, id string) (*store.Ticket, error) {
	const q = `SELECT id, contact_id, status, created_at, updated_at FROM tickets WHERE id = ?`

	var ticket store.Ticket
	var createdAt, updatedAt string

	err := t.db.QueryRowContext(ctx, q, id).Scan(
		&ticket.ID,
		&ticket.ContactID,
		&ticket.Status,
		&createdAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("ticket %s: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting ticket %s: %w: %w", id, store.ErrDatabase, err)
	}

	ticket.CreatedAt = parseTime(createdAt)
	ticket.UpdatedAt = parseTime(updatedAt)

	return &ticket, nil
}

func (t *TicketStore) FindByContact(ctx context.Context, contactID string) ([]*store.Ticket, error) {
	const q = `SELECT id, contact_id, status, created_at, updated_at
FROM tickets WHERE contact_id = ? ORDER BY updated_at DESC`

	rows, err := t.db.QueryContext(ctx, q, contactID)
	if err != nil {
		return nil, fmt.Errorf("listing tickets for contact %s: %w: %w", contactID, store.ErrDatabase, err)
	}
	defer func() { _ = rows.Close() }()

	return scanTickets(rows)
}

func (t *TicketStore) FindUpdatedInRange(ctx context.Context, from, to time.Time) ([]*store.Ticket, error) {
	const q = `SELECT id, contact_id, status, created_at, updated_at
FROM tickets WHERE updated_at >= ? AND updated_at < ? ORDER BY updated_at DESC`

	rows, err := t.db.QueryContext(ctx, q, formatTime(from), formatTime(to))
	if err != nil {
		return nil, fmt.Errorf("listing tickets updated in range: %w: %w", store.ErrDatabase, err)
	}
	defer func() { _ = rows.Close() }()

	return scanTickets(rows)
}

func scanTickets(rows *sql.Rows) ([]*store.Ticket, error) {
	var tickets []*store.Ticket
	for rows.Next() {
		var ticket store.Ticket
		var createdAt, updatedAt string

		if err := rows.Scan(
			&ticket.ID,
			&ticket.ContactID,
			&ticket.Status,
			&createdAt,
			&updatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning ticket row: %w: %w", store.ErrDatabase, err)
		}

		ticket.CreatedAt = parseTime(createdAt)
		ticket.UpdatedAt = parseTime(updatedAt)
		tickets = append(tickets, &ticket)
	}

	return tickets, rows.Err()
}
