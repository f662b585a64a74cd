// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ticketline Contributors

package store

import (
	"io"
	"sync"

	tlerr "github.com/ticketline-dev/ticketline/pkg/errors"
)

// Stores bundles the three read interfaces a query engine consumes.
type Stores struct {
	Contacts ContactStore
	Tickets  TicketStore
	Messages MessageStore

	closers []io.Closer
}

// NewStores creates a Stores bundle. Closers (e.g. a shared database
// connection) are closed by Close in the order given.
func NewStores(contacts ContactStore, tickets TicketStore, messages MessageStore, closers ...io.Closer) *Stores {
	return &Stores{
		Contacts: contacts,
		Tickets:  tickets,
		Messages: messages,
		closers:  closers,
	}
}

// Close releases backend resources.
func (s *Stores) Close() error {
	var errs []error
	for _, cl := range s.closers {
		if err := cl.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return tlerr.Join(errs...)
	}
	return nil
}

// Factory creates a store bundle rooted at dataPath.
type Factory func(dataPath string) (*Stores, error)

var (
	factories   = map[string]Factory{}
	factoriesMu sync.RWMutex
)

// RegisterBackend registers a factory for a named storage backend.
// Backend packages call this from init(). This function is goroutine-safe.
func RegisterBackend(name string, factory Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[name] = factory
}

// Open creates the store bundle for the named backend, defaulting to
// "sqlite" when backend is empty.
func Open(backend, dataPath string) (*Stores, error) {
	if backend == "" {
		backend = "sqlite"
	}

	factoriesMu.RLock()
	factory, ok := factories[backend]
	factoriesMu.RUnlock()
	if !ok {
		return nil, tlerr.Errorf(tlerr.CodeStoreBackendUnsupported, "unsupported storage backend: %q", backend)
	}

	return factory(dataPath)
}
