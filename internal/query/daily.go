// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ticketline Contributors

package query

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ticketline-dev/ticketline/internal/store"
	tlerr "github.com/ticketline-dev/ticketline/pkg/errors"
)

// AggregateDaily discovers the contacts whose tickets were updated on the
// given calendar date and returns, per contact, the day's messages matching
// searchParam. Both arguments are required and validated before any store
// access. Groups follow contact-discovery order (order of first ticket
// encountered); contacts with no matching messages are omitted, and a
// contact whose record no longer exists is skipped without failing the
// batch.
//
// The per-contact queries are independent, so they fan out concurrently up
// to the configured bound; results are reassembled in discovery order
// before returning.
func (e *Engine) AggregateDaily(ctx context.Context, searchParam, date string) ([]*ContactGroup, error) {
	term := NormalizeTerm(searchParam)
	if term == "" {
		return nil, tlerr.New(tlerr.CodeQueryFilterInvalid, "search param is required")
	}
	if date == "" {
		return nil, tlerr.New(tlerr.CodeQueryFilterInvalid, "date is required")
	}

	from, to, err := DayBucket(date)
	if err != nil {
		return nil, err
	}

	tickets, err := e.tickets.FindUpdatedInRange(ctx, from, to)
	if err != nil {
		return nil, tlerr.Wrap(err, tlerr.CodeStoreDatabaseFailure, "discovering day-active tickets")
	}

	// Distinct contacts in first-encountered order; a contact owning
	// several same-day tickets is processed once with all its tickets.
	var contactIDs []string
	ticketsByContact := map[string][]string{}
	for _, ticket := range tickets {
		if _, seen := ticketsByContact[ticket.ContactID]; !seen {
			contactIDs = append(contactIDs, ticket.ContactID)
		}
		ticketsByContact[ticket.ContactID] = append(ticketsByContact[ticket.ContactID], ticket.ID)
	}

	groups := make([]*ContactGroup, len(contactIDs))
	errs := make([]error, len(contactIDs))

	sem := make(chan struct{}, e.cfg.Concurrency)
	var wg sync.WaitGroup
	for i, contactID := range contactIDs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			groups[i], errs[i] = e.contactGroup(ctx, contactID, ticketsByContact[contactID], term, from, to)
		}()
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	// Compact: empty groups (nil) are not emitted.
	out := make([]*ContactGroup, 0, len(groups))
	for _, group := range groups {
		if group != nil {
			out = append(out, group)
		}
	}
	return out, nil
}

// contactGroup runs one bounded per-contact sub-query. A nil group with a
// nil error means the contact is omitted from the result.
func (e *Engine) contactGroup(ctx context.Context, contactID string, ticketIDs []string, term string, from, to time.Time) (*ContactGroup, error) {
	contact, err := e.contacts.FindByID(ctx, contactID)
	if errors.Is(err, store.ErrNotFound) {
		// Contact disappeared between discovery and resolution; skip
		// without aborting the batch.
		return nil, nil
	}
	if err != nil {
		return nil, tlerr.Wrap(err, tlerr.CodeStoreDatabaseFailure, "resolving contact", tlerr.FieldContactID(contactID))
	}

	res, err := e.messages.Query(ctx, store.MessageQuery{
		TicketIDs:   ticketIDs,
		BodyTerm:    term,
		CreatedFrom: from,
		CreatedTo:   to,
		Limit:       e.cfg.PerContactLimit,
	})
	if err != nil {
		return nil, tlerr.Wrap(err, tlerr.CodeStoreDatabaseFailure, "querying contact messages", tlerr.FieldContactID(contactID))
	}

	if res.TotalCount == 0 {
		return nil, nil
	}

	views := make([]*MessageView, 0, len(res.Messages))
	for _, msg := range res.Messages {
		views = append(views, &MessageView{Message: msg, Contact: contact})
	}
	reverseViews(views)

	return &ContactGroup{
		ContactNumber: contact.Number,
		Messages:      views,
		Count:         res.TotalCount,
	}, nil
}
