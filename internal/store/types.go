// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ticketline Contributors

package store

import "time"

// --- Contact types ---

// Contact is a messaging counterparty identified by phone number.
// Number holds country+area+subscriber digits with no formatting characters.
type Contact struct {
	ID        string
	Name      string
	Number    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// --- Ticket types ---

// TicketStatus represents the lifecycle state of a ticket.
type TicketStatus string

const (
	TicketStatusOpen    TicketStatus = "open"
	TicketStatusPending TicketStatus = "pending"
	TicketStatusClosed  TicketStatus = "closed"
)

// Ticket is a conversation thread belonging to exactly one contact.
type Ticket struct {
	ID        string
	ContactID string
	Status    TicketStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// --- Message types ---

// Message is an immutable unit of conversation content belonging to a ticket.
// QuotedMsgID references another message this one quotes; empty means none.
type Message struct {
	ID          string
	TicketID    string
	Body        string
	FromMe      bool
	QuotedMsgID string
	CreatedAt   time.Time
}

// --- Query types ---

// MessageQuery is the composed message predicate produced by the query
// engine. Absent fields impose no constraint; present fields combine with
// logical AND. BodyTerm must arrive already normalized (trimmed,
// lower-cased) — stores match it as a literal substring against the
// lower-cased body, never as a pattern language.
type MessageQuery struct {
	// TicketID scopes to a single ticket.
	TicketID string
	// TicketIDs scopes to ticket membership; ignored when TicketID is set.
	TicketIDs []string
	// BodyTerm is a normalized substring the body must contain.
	BodyTerm string
	// CreatedFrom/CreatedTo bound CreatedAt as the half-open interval
	// [CreatedFrom, CreatedTo). Zero values impose no bound.
	CreatedFrom time.Time
	CreatedTo   time.Time
	// ContactNumber restricts to messages whose ticket belongs to the
	// contact with exactly this number.
	ContactNumber string

	Limit  int
	Offset int
}

// MessageResult carries one page of matches plus the total match count
// independent of the page window. Messages are ordered newest-first; the
// query engine re-reverses before presenting to callers.
type MessageResult struct {
	Messages   []*Message
	TotalCount int64
}
