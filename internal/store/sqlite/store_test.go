// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ticketline Contributors

package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ticketline-dev/ticketline/internal/store"
)

var day = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedBasic(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, s.Contacts().Create(ctx, &store.Contact{ID: "ct-a", Name: "Alice", Number: "111", CreatedAt: day, UpdatedAt: day}))
	require.NoError(t, s.Contacts().Create(ctx, &store.Contact{ID: "ct-b", Name: "Bob", Number: "222", CreatedAt: day, UpdatedAt: day}))

	require.NoError(t, s.Tickets().Create(ctx, &store.Ticket{ID: "tkt-a", ContactID: "ct-a", Status: store.TicketStatusOpen, CreatedAt: day, UpdatedAt: day.Add(time.Hour)}))
	require.NoError(t, s.Tickets().Create(ctx, &store.Ticket{ID: "tkt-b", ContactID: "ct-b", Status: store.TicketStatusPending, CreatedAt: day, UpdatedAt: day.Add(2 * time.Hour)}))

	require.NoError(t, s.Messages().Create(ctx, &store.Message{ID: "msg-1", TicketID: "tkt-a", Body: "Hello World", CreatedAt: day.Add(time.Minute)}))
	require.NoError(t, s.Messages().Create(ctx, &store.Message{ID: "msg-2", TicketID: "tkt-a", Body: "follow up", FromMe: true, QuotedMsgID: "msg-1", CreatedAt: day.Add(2 * time.Minute)}))
	require.NoError(t, s.Messages().Create(ctx, &store.Message{ID: "msg-3", TicketID: "tkt-b", Body: "hello from bob", CreatedAt: day.Add(3 * time.Minute)}))
}

func TestContactRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedBasic(t, s)

	contact, err := s.Contacts().FindByID(ctx, "ct-a")
	require.NoError(t, err)
	assert.Equal(t, "Alice", contact.Name)
	assert.Equal(t, "111", contact.Number)
	assert.True(t, contact.CreatedAt.Equal(day))

	contact, err = s.Contacts().FindByNumber(ctx, "222")
	require.NoError(t, err)
	assert.Equal(t, "ct-b", contact.ID)

	_, err = s.Contacts().FindByID(ctx, "ct-missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestContactDuplicateNumberConflicts(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedBasic(t, s)

	err := s.Contacts().Create(ctx, &store.Contact{ID: "ct-c", Number: "111", CreatedAt: day, UpdatedAt: day})
	assert.ErrorIs(t, err, store.ErrConflict)
}

func TestTicketRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedBasic(t, s)

	ticket, err := s.Tickets().FindByID(ctx, "tkt-b")
	require.NoError(t, err)
	assert.Equal(t, store.TicketStatusPending, ticket.Status)
	assert.True(t, ticket.UpdatedAt.Equal(day.Add(2*time.Hour)))

	_, err = s.Tickets().FindByID(ctx, "tkt-missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestTicketsByContactNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedBasic(t, s)

	require.NoError(t, s.Tickets().Create(ctx, &store.Ticket{ID: "tkt-a2", ContactID: "ct-a", Status: store.TicketStatusClosed, CreatedAt: day, UpdatedAt: day.Add(3 * time.Hour)}))

	tickets, err := s.Tickets().FindByContact(ctx, "ct-a")
	require.NoError(t, err)
	require.Len(t, tickets, 2)
	assert.Equal(t, "tkt-a2", tickets[0].ID)
	assert.Equal(t, "tkt-a", tickets[1].ID)
}

func TestTicketsUpdatedInRangeIsHalfOpen(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedBasic(t, s)

	tickets, err := s.Tickets().FindUpdatedInRange(ctx, day.Add(time.Hour), day.Add(2*time.Hour))
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, "tkt-a", tickets[0].ID)

	tickets, err = s.Tickets().FindUpdatedInRange(ctx, day, day.Add(3*time.Hour))
	require.NoError(t, err)
	require.Len(t, tickets, 2)
	assert.Equal(t, "tkt-b", tickets[0].ID)
}

func TestMessageQueryByTicketWithPaging(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.Contacts().Create(ctx, &store.Contact{ID: "ct-a", Number: "111", CreatedAt: day, UpdatedAt: day}))
	require.NoError(t, s.Tickets().Create(ctx, &store.Ticket{ID: "tkt-a", ContactID: "ct-a", Status: store.TicketStatusOpen, CreatedAt: day, UpdatedAt: day}))
	for i := 0; i < 5; i++ {
		require.NoError(t, s.Messages().Create(ctx, &store.Message{
			ID:        fmt.Sprintf("msg-%d", i),
			TicketID:  "tkt-a",
			Body:      "x",
			CreatedAt: day.Add(time.Duration(i) * time.Minute),
		}))
	}

	res, err := s.Messages().Query(ctx, store.MessageQuery{TicketID: "tkt-a", Limit: 2, Offset: 2})
	require.NoError(t, err)

	assert.Equal(t, int64(5), res.TotalCount)
	require.Len(t, res.Messages, 2)
	// Newest first: offset 2 of 4,3,2,1,0 is 2,1.
	assert.Equal(t, "msg-2", res.Messages[0].ID)
	assert.Equal(t, "msg-1", res.Messages[1].ID)
}

func TestMessageQueryBodyTerm(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedBasic(t, s)

	// Term arrives already lowercased; matching is against lower(body).
	res, err := s.Messages().Query(ctx, store.MessageQuery{BodyTerm: "hello"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.TotalCount)
	require.Len(t, res.Messages, 2)
	assert.Equal(t, "msg-3", res.Messages[0].ID)
	assert.Equal(t, "msg-1", res.Messages[1].ID)
}

func TestMessageQueryByTicketIDs(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedBasic(t, s)

	res, err := s.Messages().Query(ctx, store.MessageQuery{TicketIDs: []string{"tkt-b", "tkt-missing"}})
	require.NoError(t, err)
	require.Len(t, res.Messages, 1)
	assert.Equal(t, "msg-3", res.Messages[0].ID)
}

func TestMessageQueryCreatedRangeIsHalfOpen(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedBasic(t, s)

	res, err := s.Messages().Query(ctx, store.MessageQuery{
		CreatedFrom: day.Add(time.Minute),
		CreatedTo:   day.Add(3 * time.Minute),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.TotalCount)
	for _, msg := range res.Messages {
		assert.NotEqual(t, "msg-3", msg.ID)
	}
}

func TestMessageQueryByContactNumberJoins(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedBasic(t, s)

	res, err := s.Messages().Query(ctx, store.MessageQuery{ContactNumber: "111"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.TotalCount)
	for _, msg := range res.Messages {
		assert.Equal(t, "tkt-a", msg.TicketID)
	}
}

func TestMessageQueryCombinedPredicate(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedBasic(t, s)

	res, err := s.Messages().Query(ctx, store.MessageQuery{
		TicketIDs:     []string{"tkt-a", "tkt-b"},
		BodyTerm:      "hello",
		CreatedFrom:   day,
		CreatedTo:     day.Add(2 * time.Minute),
		ContactNumber: "111",
	})
	require.NoError(t, err)
	require.Len(t, res.Messages, 1)
	assert.Equal(t, "msg-1", res.Messages[0].ID)
	assert.Equal(t, int64(1), res.TotalCount)
}

func TestMessageFindByIDRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedBasic(t, s)

	msg, err := s.Messages().FindByID(ctx, "msg-2")
	require.NoError(t, err)
	assert.True(t, msg.FromMe)
	assert.Equal(t, "msg-1", msg.QuotedMsgID)
	assert.True(t, msg.CreatedAt.Equal(day.Add(2*time.Minute)))

	_, err = s.Messages().FindByID(ctx, "msg-missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestFormatTimeOrdersLexicographically(t *testing.T) {
	// The TEXT columns compare lexicographically, so serialized order must
	// equal chronological order, including across fractional seconds.
	instants := []time.Time{
		day,
		day.Add(500 * time.Millisecond),
		day.Add(time.Second),
		day.Add(time.Second + time.Nanosecond),
		day.Add(24 * time.Hour),
	}
	for i := 1; i < len(instants); i++ {
		prev, cur := formatTime(instants[i-1]), formatTime(instants[i])
		assert.Less(t, prev, cur, "%v must serialize below %v", instants[i-1], instants[i])
	}
}

func TestMessageQueryFractionalSecondBoundary(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.Contacts().Create(ctx, &store.Contact{ID: "ct-a", Number: "111", CreatedAt: day, UpdatedAt: day}))
	require.NoError(t, s.Tickets().Create(ctx, &store.Ticket{ID: "tkt-a", ContactID: "ct-a", Status: store.TicketStatusOpen, CreatedAt: day, UpdatedAt: day}))

	// Half a second into the day and exactly at midnight must both land in
	// [day, day+1); the next midnight must not.
	require.NoError(t, s.Messages().Create(ctx, &store.Message{ID: "msg-midnight", TicketID: "tkt-a", Body: "x", CreatedAt: day}))
	require.NoError(t, s.Messages().Create(ctx, &store.Message{ID: "msg-half", TicketID: "tkt-a", Body: "x", CreatedAt: day.Add(500 * time.Millisecond)}))
	require.NoError(t, s.Messages().Create(ctx, &store.Message{ID: "msg-next", TicketID: "tkt-a", Body: "x", CreatedAt: day.Add(24 * time.Hour)}))

	res, err := s.Messages().Query(ctx, store.MessageQuery{
		CreatedFrom: day,
		CreatedTo:   day.Add(24 * time.Hour),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(2), res.TotalCount)
	require.Len(t, res.Messages, 2)
	// Newest first across the fractional boundary.
	assert.Equal(t, "msg-half", res.Messages[0].ID)
	assert.Equal(t, "msg-midnight", res.Messages[1].ID)
}

func TestMessageOrderWithinOneSecond(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.Contacts().Create(ctx, &store.Contact{ID: "ct-a", Number: "111", CreatedAt: day, UpdatedAt: day}))
	require.NoError(t, s.Tickets().Create(ctx, &store.Ticket{ID: "tkt-a", ContactID: "ct-a", Status: store.TicketStatusOpen, CreatedAt: day, UpdatedAt: day}))

	base := day.Add(10 * time.Hour)
	require.NoError(t, s.Messages().Create(ctx, &store.Message{ID: "msg-whole", TicketID: "tkt-a", Body: "x", CreatedAt: base}))
	require.NoError(t, s.Messages().Create(ctx, &store.Message{ID: "msg-frac", TicketID: "tkt-a", Body: "x", CreatedAt: base.Add(500 * time.Millisecond)}))

	res, err := s.Messages().Query(ctx, store.MessageQuery{TicketID: "tkt-a"})
	require.NoError(t, err)
	require.Len(t, res.Messages, 2)
	assert.Equal(t, "msg-frac", res.Messages[0].ID)
	assert.Equal(t, "msg-whole", res.Messages[1].ID)
}

func TestTicketsUpdatedInRangeFractionalSecond(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.Contacts().Create(ctx, &store.Contact{ID: "ct-a", Number: "111", CreatedAt: day, UpdatedAt: day}))
	require.NoError(t, s.Tickets().Create(ctx, &store.Ticket{ID: "tkt-a", ContactID: "ct-a", Status: store.TicketStatusOpen, CreatedAt: day, UpdatedAt: day.Add(500 * time.Millisecond)}))

	tickets, err := s.Tickets().FindUpdatedInRange(ctx, day, day.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, "tkt-a", tickets[0].ID)
	assert.True(t, tickets[0].UpdatedAt.Equal(day.Add(500*time.Millisecond)))
}

func TestQueryFailureWrapsDatabaseSentinel(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedBasic(t, s)
	require.NoError(t, s.Close())

	_, err := s.Messages().Query(ctx, store.MessageQuery{TicketID: "tkt-a"})
	assert.ErrorIs(t, err, store.ErrDatabase)

	_, err = s.Tickets().FindUpdatedInRange(ctx, day, day.Add(24*time.Hour))
	assert.ErrorIs(t, err, store.ErrDatabase)
}

func TestRegisteredBackendCreatesDatabaseFile(t *testing.T) {
	dir := t.TempDir()

	stores, err := store.Open("sqlite", dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = stores.Close() })

	assert.FileExists(t, filepath.Join(dir, "ticketline.db"))

	_, err = stores.Tickets.FindByID(context.Background(), "nope")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestOpenUnsupportedBackend(t *testing.T) {
	_, err := store.Open("postgres", t.TempDir())
	require.Error(t, err)
}
