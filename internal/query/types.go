// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ticketline Contributors

package query

import "github.com/ticketline-dev/ticketline/internal/store"

// MessageView is a message hydrated with its contact and, when the message
// quotes another, one level of quoted message (itself hydrated with its
// contact, never with a further quote).
type MessageView struct {
	Message *store.Message
	Contact *store.Contact
	Quoted  *MessageView
}

// TicketMessagesResult is one page of a ticket's conversation.
// Messages are ordered oldest-first and Count is the total number of
// messages in the ticket, independent of the page window.
type TicketMessagesResult struct {
	Messages []*MessageView
	Ticket   *store.Ticket
	Contact  *store.Contact
	Count    int64
	HasMore  bool
}

// SearchResult is a bounded global search result. Messages are ordered
// oldest-first and capped; Count is the total number of matches and may
// exceed the number of messages returned.
type SearchResult struct {
	Messages []*MessageView
	Count    int64
}

// ContactGroup is the per-contact aggregation result. Groups are only
// emitted when Count is non-zero.
type ContactGroup struct {
	ContactNumber string
	Messages      []*MessageView
	Count         int64
}
