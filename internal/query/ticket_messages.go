// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ticketline Contributors

package query

import (
	"context"
	"errors"
	"strconv"

	"github.com/ticketline-dev/ticketline/internal/store"
	tlerr "github.com/ticketline-dev/ticketline/pkg/errors"
)

// TicketMessages returns one page of a ticket's conversation, oldest-first,
// with the true total count and a hasMore flag. pageNumber is the raw
// 1-indexed page as received from the caller; empty defaults to "1".
func (e *Engine) TicketMessages(ctx context.Context, ticketID, pageNumber string) (*TicketMessagesResult, error) {
	if ticketID == "" {
		return nil, tlerr.New(tlerr.CodeQueryFilterInvalid, "ticket id is required")
	}

	page, err := parsePageNumber(pageNumber)
	if err != nil {
		return nil, err
	}

	ticket, err := e.tickets.FindByID(ctx, ticketID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, tlerr.Wrap(err, tlerr.CodeTicketGetNotFound, "ticket not found", tlerr.FieldTicketID(ticketID))
	}
	if err != nil {
		return nil, tlerr.Wrap(err, tlerr.CodeStoreDatabaseFailure, "loading ticket", tlerr.FieldTicketID(ticketID))
	}

	contact, err := e.contacts.FindByID(ctx, ticket.ContactID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, tlerr.Wrap(err, tlerr.CodeStoreDatabaseFailure, "loading ticket contact", tlerr.FieldContactID(ticket.ContactID))
	}

	offset := e.cfg.PageSize * (page - 1)

	res, err := e.messages.Query(ctx, store.MessageQuery{
		TicketID: ticketID,
		Limit:    e.cfg.PageSize,
		Offset:   offset,
	})
	if err != nil {
		return nil, tlerr.Wrap(err, tlerr.CodeStoreDatabaseFailure, "querying ticket messages", tlerr.FieldTicketID(ticketID))
	}

	r := e.newResolver()
	r.tickets[ticket.ID] = ticket
	r.contacts[ticket.ContactID] = contact

	views, err := r.hydrateAll(ctx, res.Messages, true)
	if err != nil {
		return nil, err
	}

	// hasMore uses the returned page length, not the nominal limit, so a
	// final partial page reports false.
	return &TicketMessagesResult{
		Messages: views,
		Ticket:   ticket,
		Contact:  contact,
		Count:    res.TotalCount,
		HasMore:  res.TotalCount > int64(offset+len(res.Messages)),
	}, nil
}

// parsePageNumber coerces the raw page number to a positive integer.
// Absent defaults to page 1.
func parsePageNumber(raw string) (int, error) {
	if raw == "" {
		return 1, nil
	}
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 0, tlerr.Errorf(tlerr.CodeQueryPageInvalid, "page number %q is not a positive integer", raw)
	}
	return page, nil
}
