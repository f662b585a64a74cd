// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ticketline Contributors

package query

import (
	"strings"
	"time"

	"github.com/ticketline-dev/ticketline/internal/store"
	tlerr "github.com/ticketline-dev/ticketline/pkg/errors"
)

// Filter is the optional filter triple accepted by the search operations.
// Empty fields impose no constraint.
type Filter struct {
	// SearchParam is a free-text term matched case-insensitively as a
	// literal substring of the message body.
	SearchParam string
	// Date is a calendar date (YYYY-MM-DD, no time component) selecting
	// the day bucket [D 00:00, D+1 00:00) UTC.
	Date string
	// ContactNumber restricts to messages whose ticket belongs to the
	// contact with exactly this number.
	ContactNumber string
}

const dateLayout = "2006-01-02"

// NormalizeTerm applies the engine's search-term normalization: leading and
// trailing whitespace is trimmed and the term is lower-cased. Normalization
// happens here, never in the stores, so matching behavior is identical
// across backends.
func NormalizeTerm(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}

// DayBucket resolves a calendar date to its half-open day interval
// [D 00:00:00, D+1 00:00:00) in UTC.
func DayBucket(date string) (from, to time.Time, err error) {
	day, err := time.ParseInLocation(dateLayout, date, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, tlerr.Errorf(tlerr.CodeQueryFilterInvalid,
			"date %q is not a calendar date (want YYYY-MM-DD)", date)
	}
	return day, day.AddDate(0, 0, 1), nil
}

// CompileFilter composes the optional filter set into a single message
// predicate. All present filters combine with logical AND; a zero Filter
// compiles to a predicate matching every message. The function is pure:
// same inputs always produce the same predicate.
func CompileFilter(f Filter) (store.MessageQuery, error) {
	var q store.MessageQuery

	q.BodyTerm = NormalizeTerm(f.SearchParam)

	if f.Date != "" {
		from, to, err := DayBucket(f.Date)
		if err != nil {
			return store.MessageQuery{}, err
		}
		q.CreatedFrom = from
		q.CreatedTo = to
	}

	q.ContactNumber = f.ContactNumber

	return q, nil
}
