// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ticketline Contributors

// Package memory provides an in-memory store backend. It is the reference
// implementation of the store contracts used by engine tests and by
// `ticketd serve --backend memory` during development. Entities are
// append-only once created, matching the production lifecycle.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ticketline-dev/ticketline/internal/store"
)

// Compile-time interface checks.
var (
	_ store.ContactStore = (*ContactStore)(nil)
	_ store.TicketStore  = (*TicketStore)(nil)
	_ store.MessageStore = (*MessageStore)(nil)
)

func init() {
	store.RegisterBackend("memory", func(string) (*store.Stores, error) {
		s := New()
		return store.NewStores(s.Contacts(), s.Tickets(), s.Messages()), nil
	})
}

// Store holds all three entity sets behind one lock.
type Store struct {
	mu       sync.RWMutex
	contacts map[string]*store.Contact
	tickets  map[string]*store.Ticket
	messages []*store.Message
	msgByID  map[string]*store.Message
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		contacts: map[string]*store.Contact{},
		tickets:  map[string]*store.Ticket{},
		msgByID:  map[string]*store.Message{},
	}
}

// Contacts returns the contact view of the store.
func (s *Store) Contacts() *ContactStore { return &ContactStore{s: s} }

// Tickets returns the ticket view of the store.
func (s *Store) Tickets() *TicketStore { return &TicketStore{s: s} }

// Messages returns the message view of the store.
func (s *Store) Messages() *MessageStore { return &MessageStore{s: s} }

// --- Write methods (ingestion collaborators and tests) ---

// CreateContact stores a contact. An empty ID is assigned a fresh UUID.
func (s *Store) CreateContact(_ context.Context, contact *store.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if contact.ID == "" {
		contact.ID = uuid.NewString()
	}
	if _, ok := s.contacts[contact.ID]; ok {
		return store.ErrConflict
	}
	s.contacts[contact.ID] = contact
	return nil
}

// CreateTicket stores a ticket. An empty ID is assigned a fresh UUID.
func (s *Store) CreateTicket(_ context.Context, ticket *store.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ticket.ID == "" {
		ticket.ID = uuid.NewString()
	}
	if _, ok := s.tickets[ticket.ID]; ok {
		return store.ErrConflict
	}
	s.tickets[ticket.ID] = ticket
	return nil
}

// CreateMessage stores a message. An empty ID is assigned a fresh UUID.
func (s *Store) CreateMessage(_ context.Context, msg *store.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if _, ok := s.msgByID[msg.ID]; ok {
		return store.ErrConflict
	}
	s.messages = append(s.messages, msg)
	s.msgByID[msg.ID] = msg
	return nil
}

// --- ContactStore ---

// ContactStore implements store.ContactStore over the shared data.
type ContactStore struct {
	s *Store
}

func (c *ContactStore) FindByID(_ context.Context, id string) (*store.Contact, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()

	contact, ok := c.s.contacts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return contact, nil
}

func (c *ContactStore) FindByNumber(_ context.Context, number string) (*store.Contact, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()

	for _, contact := range c.s.contacts {
		if contact.Number == number {
			return contact, nil
		}
	}
	return nil, store.ErrNotFound
}

// --- TicketStore ---

// TicketStore implements store.TicketStore over the shared data.
type TicketStore struct {
	s *Store
}

func (t *TicketStore) FindByID(_ context.Context, id string) (*store.Ticket, error) {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()

	ticket, ok := t.s.tickets[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return ticket, nil
}

func (t *TicketStore) FindByContact(_ context.Context, contactID string) ([]*store.Ticket, error) {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()

	var tickets []*store.Ticket
	for _, ticket := range t.s.tickets {
		if ticket.ContactID == contactID {
			tickets = append(tickets, ticket)
		}
	}
	sortTicketsByUpdatedDesc(tickets)
	return tickets, nil
}

func (t *TicketStore) FindUpdatedInRange(_ context.Context, from, to time.Time) ([]*store.Ticket, error) {
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()

	var tickets []*store.Ticket
	for _, ticket := range t.s.tickets {
		if ticket.UpdatedAt.Before(from) || !ticket.UpdatedAt.Before(to) {
			continue
		}
		tickets = append(tickets, ticket)
	}
	sortTicketsByUpdatedDesc(tickets)
	return tickets, nil
}

// --- MessageStore ---

// MessageStore implements store.MessageStore over the shared data.
type MessageStore struct {
	s *Store
}

func (m *MessageStore) Query(_ context.Context, q store.MessageQuery) (*store.MessageResult, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	var matched []*store.Message
	for _, msg := range m.s.messages {
		if m.s.matchesLocked(msg, q) {
			matched = append(matched, msg)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))

	offset := q.Offset
	if offset < 0 {
		offset = 0
	}
	if offset > len(matched) {
		offset = len(matched)
	}
	end := len(matched)
	if q.Limit > 0 && offset+q.Limit < end {
		end = offset + q.Limit
	}

	page := make([]*store.Message, end-offset)
	copy(page, matched[offset:end])

	return &store.MessageResult{Messages: page, TotalCount: total}, nil
}

func (m *MessageStore) FindByID(_ context.Context, id string) (*store.Message, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	msg, ok := m.s.msgByID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return msg, nil
}

func (s *Store) matchesLocked(msg *store.Message, q store.MessageQuery) bool {
	switch {
	case q.TicketID != "":
		if msg.TicketID != q.TicketID {
			return false
		}
	case len(q.TicketIDs) > 0:
		found := false
		for _, id := range q.TicketIDs {
			if msg.TicketID == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if q.BodyTerm != "" && !strings.Contains(strings.ToLower(msg.Body), q.BodyTerm) {
		return false
	}

	if !q.CreatedFrom.IsZero() && msg.CreatedAt.Before(q.CreatedFrom) {
		return false
	}
	if !q.CreatedTo.IsZero() && !msg.CreatedAt.Before(q.CreatedTo) {
		return false
	}

	if q.ContactNumber != "" {
		ticket, ok := s.tickets[msg.TicketID]
		if !ok {
			return false
		}
		contact, ok := s.contacts[ticket.ContactID]
		if !ok || contact.Number != q.ContactNumber {
			return false
		}
	}

	return true
}

func sortTicketsByUpdatedDesc(tickets []*store.Ticket) {
	sort.SliceStable(tickets, func(i, j int) bool {
		return tickets[i].UpdatedAt.After(tickets[j].UpdatedAt)
	})
}
