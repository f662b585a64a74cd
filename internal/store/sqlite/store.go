// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ticketline Contributors

// Package sqlite provides the SQLite store backend. All three entity sets
// share one database file so the contact-number predicate can join
// messages through tickets to contacts in a single query.
package sqlite

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ticketline-dev/ticketline/internal/store"
)

func init() {
	store.RegisterBackend("sqlite", func(dataPath string) (*store.Stores, error) {
		s, err := New(filepath.Join(dataPath, "ticketline.db"))
		if err != nil {
			return nil, err
		}
		return store.NewStores(s.Contacts(), s.Tickets(), s.Messages(), s), nil
	})
}

// Store owns the shared database connection.
type Store struct {
	db *sql.DB
}

// New opens (or creates) a SQLite database at dbPath and initialises the
// contacts, tickets, and messages tables.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrating sqlite db: %w", err)
	}

	return &Store{db: db}, nil
}

func migrate(db *sql.DB) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS contacts (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL DEFAULT '',
	number     TEXT UNIQUE NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS tickets (
	id         TEXT PRIMARY KEY,
	contact_id TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'open',
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	FOREIGN KEY (contact_id) REFERENCES contacts(id)
);

CREATE INDEX IF NOT EXISTS idx_tickets_contact ON tickets(contact_id);
CREATE INDEX IF NOT EXISTS idx_tickets_updated ON tickets(updated_at);

CREATE TABLE IF NOT EXISTS messages (
	id            TEXT PRIMARY KEY,
	ticket_id     TEXT NOT NULL,
	body          TEXT NOT NULL DEFAULT '',
	from_me       INTEGER NOT NULL DEFAULT 0,
	quoted_msg_id TEXT NOT NULL DEFAULT '',
	created_at    TEXT NOT NULL,
	FOREIGN KEY (ticket_id) REFERENCES tickets(id)
);

CREATE INDEX IF NOT EXISTS idx_messages_ticket_created ON messages(ticket_id, created_at);
CREATE INDEX IF NOT EXISTS idx_messages_created ON messages(created_at);
`
	_, err := db.Exec(ddl)
	return err
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Contacts returns the contact store backed by the shared connection.
func (s *Store) Contacts() *ContactStore { return &ContactStore{db: s.db} }

// Tickets returns the ticket store backed by the shared connection.
func (s *Store) Tickets() *TicketStore { return &TicketStore{db: s.db} }

// Messages returns the message store backed by the shared connection.
func (s *Store) Messages() *MessageStore { return &MessageStore{db: s.db} }

// timeLayout stores timestamps with fixed-width nanoseconds. The TEXT
// columns are compared lexicographically by range predicates and ORDER BY,
// so every value must have the same width; RFC3339Nano trims trailing
// zeros, which would sort "00:00:00.5Z" below "00:00:00Z".
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// formatTime serialises a time.Time to fixed-width RFC3339 UTC for storage.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

// parseTime deserialises a time string stored in the database.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}
