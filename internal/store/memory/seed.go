// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ticketline Contributors

package memory

import (
	"context"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ticketline-dev/ticketline/internal/store"
	tlerr "github.com/ticketline-dev/ticketline/pkg/errors"
)

// Seed fixture schema. Timestamps are RFC3339 strings.
type seedFile struct {
	Contacts []seedContact `yaml:"contacts"`
	Tickets  []seedTicket  `yaml:"tickets"`
	Messages []seedMessage `yaml:"messages"`
}

type seedContact struct {
	ID        string    `yaml:"id"`
	Name      string    `yaml:"name"`
	Number    string    `yaml:"number"`
	CreatedAt time.Time `yaml:"created_at"`
	UpdatedAt time.Time `yaml:"updated_at"`
}

type seedTicket struct {
	ID        string    `yaml:"id"`
	ContactID string    `yaml:"contact_id"`
	Status    string    `yaml:"status"`
	CreatedAt time.Time `yaml:"created_at"`
	UpdatedAt time.Time `yaml:"updated_at"`
}

type seedMessage struct {
	ID          string    `yaml:"id"`
	TicketID    string    `yaml:"ticket_id"`
	Body        string    `yaml:"body"`
	FromMe      bool      `yaml:"from_me"`
	QuotedMsgID string    `yaml:"quoted_msg_id"`
	CreatedAt   time.Time `yaml:"created_at"`
}

// LoadSeed reads a YAML fixture and inserts its contacts, tickets, and
// messages. Intended for development mode and demos.
func (s *Store) LoadSeed(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return tlerr.Errorf(tlerr.CodeStoreInvalidInput, "reading seed file %s: %w", path, err)
	}

	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return tlerr.Errorf(tlerr.CodeStoreInvalidInput, "parsing seed file %s: %w", path, err)
	}

	for _, c := range f.Contacts {
		err := s.CreateContact(ctx, &store.Contact{
			ID:        c.ID,
			Name:      c.Name,
			Number:    c.Number,
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
		})
		if err != nil {
			return tlerr.Wrapf(err, tlerr.CodeStoreConflict, "seeding contact %s", c.ID)
		}
	}

	for _, t := range f.Tickets {
		err := s.CreateTicket(ctx, &store.Ticket{
			ID:        t.ID,
			ContactID: t.ContactID,
			Status:    store.TicketStatus(t.Status),
			CreatedAt: t.CreatedAt,
			UpdatedAt: t.UpdatedAt,
		})
		if err != nil {
			return tlerr.Wrapf(err, tlerr.CodeStoreConflict, "seeding ticket %s", t.ID)
		}
	}

	for _, m := range f.Messages {
		err := s.CreateMessage(ctx, &store.Message{
			ID:          m.ID,
			TicketID:    m.TicketID,
			Body:        m.Body,
			FromMe:      m.FromMe,
			QuotedMsgID: m.QuotedMsgID,
			CreatedAt:   m.CreatedAt,
		})
		if err != nil {
			return tlerr.Wrapf(err, tlerr.CodeStoreConflict, "seeding message %s", m.ID)
		}
	}

	return nil
}
