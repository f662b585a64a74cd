// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ticketline Contributors

package query

import (
	"context"

	tlerr "github.com/ticketline-dev/ticketline/pkg/errors"
)

// Search runs the composed filter across the whole message store. All
// filters are optional; an empty filter returns the most recent messages
// store-wide. Results are capped at the configured search limit while
// Count reports the full number of matches.
func (e *Engine) Search(ctx context.Context, f Filter) (*SearchResult, error) {
	q, err := CompileFilter(f)
	if err != nil {
		return nil, err
	}
	q.Limit = e.cfg.SearchLimit

	res, err := e.messages.Query(ctx, q)
	if err != nil {
		return nil, tlerr.Wrap(err, tlerr.CodeStoreDatabaseFailure, "searching messages")
	}

	views, err := e.newResolver().hydrateAll(ctx, res.Messages, false)
	if err != nil {
		return nil, err
	}

	return &SearchResult{Messages: views, Count: res.TotalCount}, nil
}
