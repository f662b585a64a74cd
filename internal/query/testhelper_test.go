// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ticketline Contributors

package query_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ticketline-dev/ticketline/internal/store"
	"github.com/ticketline-dev/ticketline/internal/store/memory"
)

var day = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func addContact(t *testing.T, s *memory.Store, id, name, number string) {
	t.Helper()
	require.NoError(t, s.CreateContact(context.Background(), &store.Contact{
		ID:        id,
		Name:      name,
		Number:    number,
		CreatedAt: day,
		UpdatedAt: day,
	}))
}

func addTicket(t *testing.T, s *memory.Store, id, contactID string, updatedAt time.Time) {
	t.Helper()
	require.NoError(t, s.CreateTicket(context.Background(), &store.Ticket{
		ID:        id,
		ContactID: contactID,
		Status:    store.TicketStatusOpen,
		CreatedAt: updatedAt,
		UpdatedAt: updatedAt,
	}))
}

func addMessage(t *testing.T, s *memory.Store, id, ticketID, body string, createdAt time.Time) {
	t.Helper()
	require.NoError(t, s.CreateMessage(context.Background(), &store.Message{
		ID:        id,
		TicketID:  ticketID,
		Body:      body,
		CreatedAt: createdAt,
	}))
}

func addQuotingMessage(t *testing.T, s *memory.Store, id, ticketID, body, quotedID string, createdAt time.Time) {
	t.Helper()
	require.NoError(t, s.CreateMessage(context.Background(), &store.Message{
		ID:          id,
		TicketID:    ticketID,
		Body:        body,
		QuotedMsgID: quotedID,
		CreatedAt:   createdAt,
	}))
}

// guardStores fails the test on any store access. Used to verify that
// validation errors are raised before any query runs.
type guardStores struct {
	t *testing.T
}

func (g guardStores) fail() {
	g.t.Helper()
	g.t.Error("store must not be touched before validation passes")
}

func (g guardStores) FindByID(context.Context, string) (*store.Contact, error) {
	g.fail()
	return nil, store.ErrNotFound
}

func (g guardStores) FindByNumber(context.Context, string) (*store.Contact, error) {
	g.fail()
	return nil, store.ErrNotFound
}

type guardTickets struct {
	guardStores
}

func (g guardTickets) FindByID(context.Context, string) (*store.Ticket, error) {
	g.fail()
	return nil, store.ErrNotFound
}

func (g guardTickets) FindByContact(context.Context, string) ([]*store.Ticket, error) {
	g.fail()
	return nil, nil
}

func (g guardTickets) FindUpdatedInRange(context.Context, time.Time, time.Time) ([]*store.Ticket, error) {
	g.fail()
	return nil, nil
}

type guardMessages struct {
	guardStores
}

func (g guardMessages) Query(context.Context, store.MessageQuery) (*store.MessageResult, error) {
	g.fail()
	return nil, nil
}

func (g guardMessages) FindByID(context.Context, string) (*store.Message, error) {
	g.fail()
	return nil, store.ErrNotFound
}
