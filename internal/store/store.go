// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ticketline Contributors

package store

import (
	"context"
	"time"
)

// The query engine only reads. Creation and mutation of contacts, tickets,
// and messages belong to external collaborators (ingestion, ticket
// lifecycle services); backend packages expose write methods on their
// concrete types for those collaborators and for tests.

// ContactStore looks up contacts by identifier or phone number.
type ContactStore interface {
	FindByID(ctx context.Context, id string) (*Contact, error)
	FindByNumber(ctx context.Context, number string) (*Contact, error)
}

// TicketStore looks up tickets by identifier, contact, or update window.
type TicketStore interface {
	FindByID(ctx context.Context, id string) (*Ticket, error)
	FindByContact(ctx context.Context, contactID string) ([]*Ticket, error)

	// FindUpdatedInRange returns tickets whose UpdatedAt falls in the
	// half-open interval [from, to), ordered by UpdatedAt descending.
	FindUpdatedInRange(ctx context.Context, from, to time.Time) ([]*Ticket, error)
}

// MessageStore executes composed message queries.
type MessageStore interface {
	// Query returns matches ordered by CreatedAt descending, limited to
	// q.Limit from q.Offset, together with the total match count.
	Query(ctx context.Context, q MessageQuery) (*MessageResult, error)

	FindByID(ctx context.Context, id string) (*Message, error)
}
