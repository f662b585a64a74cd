// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ticketline Contributors

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ticketline-dev/ticketline/internal/store"
)

// Compile-time interface check.
var _ store.MessageStore = (*MessageStore)(nil)

// defaultQueryLimit bounds queries whose caller did not set a limit.
const defaultQueryLimit = 100

// MessageStore implements store.MessageStore backed by SQLite.
type MessageStore struct {
	db *sql.DB
}

// Create inserts a message. Used by ingestion collaborators and tests;
// the query engine never writes.
func (m *MessageStore) Create(ctx context.Context, msg *store.Message) error {
	const q = `INSERT INTO messages (id, ticket_id, body, from_me, quoted_msg_id, created_at)
VALUES (?, ?, ?, ?, ?, ?)`

	_, err := m.db.ExecContext(ctx, q,
		msg.ID,
		msg.TicketID,
		msg.Body,
		msg.FromMe,
		msg.QuotedMsgID,
		formatTime(msg.CreatedAt),
	)
	if isConstraintErr(err) {
		return fmt.Errorf("creating message %s: %w", msg.ID, store.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("creating message %s: %w: %w", msg.ID, store.ErrDatabase, err)
	}
	return nil
}

// Query executes the composed predicate. Matching against the body is a
// literal substring check on the lower-cased column so collation behavior
// is defined by the engine's normalization, not the database's.
func (m *MessageStore) Query(ctx context.Context, q store.MessageQuery) (*store.MessageResult, error) {
	join, where, args := buildPredicate(q)

	whereSQL := ""
	if len(where) > 0 {
		whereSQL = " WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	countSQL := "SELECT COUNT(*) FROM messages m" + join + whereSQL
	if err := m.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting messages: %w: %w", store.ErrDatabase, err)
	}

	limit := q.Limit
	if limit <= 0 {
		limit = defaultQueryLimit
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	selectSQL := `SELECT m.id, m.ticket_id, m.body, m.from_me, m.quoted_msg_id, m.created_at
FROM messages m` + join + whereSQL + ` ORDER BY m.created_at DESC LIMIT ? OFFSET ?`

	rows, err := m.db.QueryContext(ctx, selectSQL, append(args, limit, offset)...)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w: %w", store.ErrDatabase, err)
	}
	defer func() { _ = rows.Close() }()

	msgs, err := scanMessages(rows)
	if err != nil {
		return nil, err
	}

	return &store.MessageResult{Messages: msgs, TotalCount: total}, nil
}

func (m *MessageStore) FindByID(ctx context.Context, id string) (*store.Message, error) {
	const q = `SELECT id, ticket_id, body, from_me, quoted_msg_id, created_at
FROM messages WHERE id = ?`

	var msg store.Message
	var createdAt string

	err := m.db.QueryRowContext(ctx, q, id).Scan(
		&msg.ID,
		&msg.TicketID,
		&msg.Body,
		&msg.FromMe,
		&msg.QuotedMsgID,
		&createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("message %s: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting message %s: %w: %w", id, store.ErrDatabase, err)
	}

	msg.CreatedAt = parseTime(createdAt)
	return &msg, nil
}

// buildPredicate translates a MessageQuery into SQL fragments. The
// contact-number filter joins through tickets to contacts; everything else
// targets the messages table directly.
func buildPredicate(q store.MessageQuery) (join string, where []string, args []any) {
	switch {
	case q.TicketID != "":
		where = append(where, "m.ticket_id = ?")
		args = append(args, q.TicketID)
	case len(q.TicketIDs) > 0:
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(q.TicketIDs)), ",")
		where = append(where, "m.ticket_id IN ("+placeholders+")")
		for _, id := range q.TicketIDs {
			args = append(args, id)
		}
	}

	if q.BodyTerm != "" {
		where = append(where, "instr(lower(m.body), ?) > 0")
		args = append(args, q.BodyTerm)
	}

	if !q.CreatedFrom.IsZero() {
		where = append(where, "m.created_at >= ?")
		args = append(args, formatTime(q.CreatedFrom))
	}
	if !q.CreatedTo.IsZero() {
		where = append(where, "m.created_at < ?")
		args = append(args, formatTime(q.CreatedTo))
	}

	if q.ContactNumber != "" {
		join = " JOIN tickets t ON t.id = m.ticket_id JOIN contacts c ON c.id = t.contact_id"
		where = append(where, "c.number = ?")
		args = append(args, q.ContactNumber)
	}

	return join, where, args
}

func scanMessages(rows *sql.Rows) ([]*store.Message, error) {
	var msgs []*store.Message
	for rows.Next() {
		var msg store.Message
		var createdAt string

		if err := rows.Scan(
			&msg.ID,
			&msg.TicketID,
			&msg.Body,
			&msg.FromMe,
			&msg.QuotedMsgID,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("scanning message row: %w: %w", store.ErrDatabase, err)
		}

		msg.CreatedAt = parseTime(createdAt)
		msgs = append(msgs, &msg)
	}

	return msgs, rows.Err()
}
