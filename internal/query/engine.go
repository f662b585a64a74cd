// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ticketline Contributors

// Package query implements the message query and aggregation engine: it
// turns optional filter parameters into ordered, bounded result sets over
// the contact, ticket, and message stores. Every operation is a read; the
// engine keeps no state between calls.
package query

import (
	"context"
	"errors"

	"github.com/ticketline-dev/ticketline/internal/store"
	tlerr "github.com/ticketline-dev/ticketline/pkg/errors"
)

// Defaults applied by Config.withDefaults. The 20-message page and the
// 200-result caps are the operation contracts; the fan-out bound only
// limits how many per-contact queries run at once.
const (
	DefaultPageSize        = 20
	DefaultSearchLimit     = 200
	DefaultPerContactLimit = 200
	defaultConcurrency     = 4
)

// Config tunes the engine's result bounds.
type Config struct {
	// PageSize is the fixed page size for single-ticket retrieval.
	PageSize int
	// SearchLimit caps global search results. Callers needing more must
	// narrow their filters; there is no page cursor.
	SearchLimit int
	// PerContactLimit caps the messages returned per aggregation group.
	PerContactLimit int
	// Concurrency bounds the aggregation fan-out.
	Concurrency int
}

func (c Config) withDefaults() Config {
	if c.PageSize <= 0 {
		c.PageSize = DefaultPageSize
	}
	if c.SearchLimit <= 0 {
		c.SearchLimit = DefaultSearchLimit
	}
	if c.PerContactLimit <= 0 {
		c.PerContactLimit = DefaultPerContactLimit
	}
	if c.Concurrency <= 0 {
		c.Concurrency = defaultConcurrency
	}
	return c
}

// Engine executes the three query operations against the consumed stores.
type Engine struct {
	contacts store.ContactStore
	tickets  store.TicketStore
	messages store.MessageStore
	cfg      Config
}

// New creates an Engine. Zero Config fields take the package defaults.
func New(contacts store.ContactStore, tickets store.TicketStore, messages store.MessageStore, cfg Config) *Engine {
	return &Engine{
		contacts: contacts,
		tickets:  tickets,
		messages: messages,
		cfg:      cfg.withDefaults(),
	}
}

// resolver caches ticket and contact lookups for the duration of a single
// engine call. It is never shared across calls.
type resolver struct {
	e        *Engine
	tickets  map[string]*store.Ticket
	contacts map[string]*store.Contact
}

func (e *Engine) newResolver() *resolver {
	return &resolver{
		e:        e,
		tickets:  map[string]*store.Ticket{},
		contacts: map[string]*store.Contact{},
	}
}

// contactForTicket resolves the contact owning the given ticket. A dangling
// reference resolves to nil rather than an error, matching the outer-join
// hydration of the stores' consumers.
func (r *resolver) contactForTicket(ctx context.Context, ticketID string) (*store.Contact, error) {
	ticket, ok := r.tickets[ticketID]
	if !ok {
		found, err := r.e.tickets.FindByID(ctx, ticketID)
		if errors.Is(err, store.ErrNotFound) {
			r.tickets[ticketID] = nil
			return nil, nil
		}
		if err != nil {
			return nil, tlerr.Wrap(err, tlerr.CodeStoreDatabaseFailure, "resolving ticket", tlerr.FieldTicketID(ticketID))
		}
		r.tickets[ticketID] = found
		ticket = found
	}
	if ticket == nil {
		return nil, nil
	}

	contact, ok := r.contacts[ticket.ContactID]
	if !ok {
		found, err := r.e.contacts.FindByID(ctx, ticket.ContactID)
		if errors.Is(err, store.ErrNotFound) {
			r.contacts[ticket.ContactID] = nil
			return nil, nil
		}
		if err != nil {
			return nil, tlerr.Wrap(err, tlerr.CodeStoreDatabaseFailure, "resolving contact", tlerr.FieldContactID(ticket.ContactID))
		}
		r.contacts[ticket.ContactID] = found
		contact = found
	}
	return contact, nil
}

// hydrate builds a MessageView for msg, optionally following one level of
// quoted message. A quoted reference that no longer resolves leaves Quoted
// nil; quoting is presentation detail, not an integrity requirement.
func (r *resolver) hydrate(ctx context.Context, msg *store.Message, followQuote bool) (*MessageView, error) {
	contact, err := r.contactForTicket(ctx, msg.TicketID)
	if err != nil {
		return nil, err
	}

	view := &MessageView{Message: msg, Contact: contact}

	if followQuote && msg.QuotedMsgID != "" {
		quoted, err := r.e.messages.FindByID(ctx, msg.QuotedMsgID)
		if errors.Is(err, store.ErrNotFound) {
			return view, nil
		}
		if err != nil {
			return nil, tlerr.Wrap(err, tlerr.CodeStoreDatabaseFailure, "resolving quoted message")
		}
		quotedContact, err := r.contactForTicket(ctx, quoted.TicketID)
		if err != nil {
			return nil, err
		}
		view.Quoted = &MessageView{Message: quoted, Contact: quotedContact}
	}

	return view, nil
}

// hydrateAll builds views for a newest-first store page and re-reverses
// them to the oldest-first presentation order.
func (r *resolver) hydrateAll(ctx context.Context, msgs []*store.Message, followQuotes bool) ([]*MessageView, error) {
	views := make([]*MessageView, 0, len(msgs))
	for _, msg := range msgs {
		view, err := r.hydrate(ctx, msg, followQuotes)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	reverseViews(views)
	return views, nil
}

// reverseViews flips a newest-first slice to oldest-first in place.
func reverseViews(views []*MessageView) {
	for i, j := 0, len(views)-1; i < j; i, j = i+1, j-1 {
		views[i], views[j] = views[j], views[i]
	}
}
