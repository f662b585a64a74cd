// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Ticketline Contributors

package server

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/ticketline-dev/ticketline/internal/query"
	"github.com/ticketline-dev/ticketline/internal/store"
	tlerr "github.com/ticketline-dev/ticketline/pkg/errors"
)

// QueryService provides the query operations for REST handlers.
// It is an interface so handlers can be tested against a stub engine.
type QueryService interface {
	TicketMessages(ctx context.Context, ticketID, pageNumber string) (*query.TicketMessagesResult, error)
	Search(ctx context.Context, f query.Filter) (*query.SearchResult, error)
	AggregateDaily(ctx context.Context, searchParam, date string) ([]*query.ContactGroup, error)
}

// RegisterQueryService sets the query service and registers REST routes.
func (s *Server) RegisterQueryService(svc QueryService) {
	s.queries = svc
	s.registerRoutes()
}

func (s *Server) registerRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-ticket-messages",
		Method:      http.MethodGet,
		Path:        "/api/v1/tickets/{ticketId}/messages",
		Summary:     "List one page of a ticket's messages",
		Tags:        []string{"messages"},
	}, s.handleTicketMessages)

	huma.Register(s.api, huma.Operation{
		OperationID: "search-messages",
		Method:      http.MethodPost,
		Path:        "/api/v1/messages/search",
		Summary:     "Search messages across all tickets",
		Tags:        []string{"messages"},
	}, s.handleSearchMessages)

	huma.Register(s.api, huma.Operation{
		OperationID: "aggregate-daily-messages",
		Method:      http.MethodPost,
		Path:        "/api/v1/messages/daily",
		Summary:     "Group a day's matching messages by contact",
		Tags:        []string{"messages"},
	}, s.handleDailyMessages)
}

// --- Wire types ---

// ContactJSON is the wire form of a contact.
type ContactJSON struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Number string `json:"number"`
}

// TicketJSON is the wire form of a ticket with its contact resolved.
type TicketJSON struct {
	ID        string       `json:"id"`
	ContactID string       `json:"contact_id"`
	Status    string       `json:"status"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
	Contact   *ContactJSON `json:"contact,omitempty"`
}

// MessageJSON is the wire form of a message with its contact and one level
// of quoted message.
type MessageJSON struct {
	ID        string       `json:"id"`
	TicketID  string       `json:"ticket_id"`
	Body      string       `json:"body"`
	FromMe    bool         `json:"from_me"`
	CreatedAt time.Time    `json:"created_at"`
	Contact   *ContactJSON `json:"contact,omitempty"`
	QuotedMsg *MessageJSON `json:"quoted_msg,omitempty"`
}

// --- Request/Response types for huma ---

type ticketMessagesInput struct {
	TicketID   string `path:"ticketId"`
	PageNumber string `query:"pageNumber" doc:"1-indexed page, default 1"`
}
type ticketMessagesOutput struct {
	Body struct {
		Messages []*MessageJSON `json:"messages"`
		Ticket   *TicketJSON    `json:"ticket"`
		Count    int64          `json:"count"`
		HasMore  bool           `json:"hasMore"`
	}
}

type searchMessagesInput struct {
	Body struct {
		SearchParam   string `json:"searchParam,omitempty" doc:"Case-insensitive substring of the message body"`
		Date          string `json:"date,omitempty" doc:"Calendar date YYYY-MM-DD"`
		ContactNumber string `json:"contactNumber,omitempty" doc:"Exact contact phone number"`
	}
}
type searchMessagesOutput struct {
	Body struct {
		Messages []*MessageJSON `json:"messages"`
		Count    int64          `json:"count"`
	}
}

type dailyMessagesInput struct {
	Body struct {
		SearchParam string `json:"searchParam,omitempty" doc:"Case-insensitive substring of the message body (required)"`
		Date        string `json:"date,omitempty" doc:"Calendar date YYYY-MM-DD (required)"`
	}
}
type contactGroupJSON struct {
	ContactNumber string         `json:"contactNumber"`
	Messages      []*MessageJSON `json:"messages"`
	Count         int64          `json:"count"`
}
type dailyMessagesOutput struct {
	Body struct {
		Messages []*contactGroupJSON `json:"messages"`
	}
}

// --- Handlers ---

func (s *Server) handleTicketMessages(ctx context.Context, input *ticketMessagesInput) (*ticketMessagesOutput, error) {
	res, err := s.queries.TicketMessages(ctx, input.TicketID, input.PageNumber)
	if err != nil {
		return nil, httpError(err, "listing ticket messages")
	}

	out := &ticketMessagesOutput{}
	out.Body.Messages = messagesJSON(res.Messages)
	out.Body.Ticket = &TicketJSON{
		ID:        res.Ticket.ID,
		ContactID: res.Ticket.ContactID,
		Status:    string(res.Ticket.Status),
		CreatedAt: res.Ticket.CreatedAt,
		UpdatedAt: res.Ticket.UpdatedAt,
		Contact:   contactJSON(res.Contact),
	}
	out.Body.Count = res.Count
	out.Body.HasMore = res.HasMore
	return out, nil
}

func (s *Server) handleSearchMessages(ctx context.Context, input *searchMessagesInput) (*searchMessagesOutput, error) {
	res, err := s.queries.Search(ctx, query.Filter{
		SearchParam:   input.Body.SearchParam,
		Date:          input.Body.Date,
		ContactNumber: input.Body.ContactNumber,
	})
	if err != nil {
		return nil, httpError(err, "searching messages")
	}

	out := &searchMessagesOutput{}
	out.Body.Messages = messagesJSON(res.Messages)
	out.Body.Count = res.Count
	return out, nil
}

func (s *Server) handleDailyMessages(ctx context.Context, input *dailyMessagesInput) (*dailyMessagesOutput, error) {
	groups, err := s.queries.AggregateDaily(ctx, input.Body.SearchParam, input.Body.Date)
	if err != nil {
		return nil, httpError(err, "aggregating daily messages")
	}

	out := &dailyMessagesOutput{}
	out.Body.Messages = make([]*contactGroupJSON, 0, len(groups))
	for _, group := range groups {
		out.Body.Messages = append(out.Body.Messages, &contactGroupJSON{
			ContactNumber: group.ContactNumber,
			Messages:      messagesJSON(group.Messages),
			Count:         group.Count,
		})
	}
	return out, nil
}

// httpError translates an engine error into the matching huma status error,
// keeping the machine-readable code in the response detail.
func httpError(err error, msg string) error {
	switch tlerr.HTTPStatus(err) {
	case http.StatusNotFound:
		return huma.Error404NotFound(msg, err)
	case http.StatusBadRequest:
		return huma.Error400BadRequest(msg, err)
	case http.StatusUnauthorized:
		return huma.Error401Unauthorized(msg, err)
	default:
		return huma.Error500InternalServerError(msg, err)
	}
}

func contactJSON(contact *store.Contact) *ContactJSON {
	if contact == nil {
		return nil
	}
	return &ContactJSON{
		ID:     contact.ID,
		Name:   contact.Name,
		Number: contact.Number,
	}
}

func messagesJSON(views []*query.MessageView) []*MessageJSON {
	out := make([]*MessageJSON, 0, len(views))
	for _, view := range views {
		out = append(out, messageJSON(view))
	}
	return out
}

func messageJSON(view *query.MessageView) *MessageJSON {
	if view == nil {
		return nil
	}
	msg := &MessageJSON{
		ID:        view.Message.ID,
		TicketID:  view.Message.TicketID,
		Body:      view.Message.Body,
		FromMe:    view.Message.FromMe,
		CreatedAt: view.Message.CreatedAt,
	}
	if view.Contact != nil {
		msg.Contact = &ContactJSON{
			ID:     view.Contact.ID,
			Name:   view.Contact.Name,
			Number: view.Contact.Number,
		}
	}
	if view.Quoted != nil {
		msg.QuotedMsg = messageJSON(view.Quoted)
	}
	return msg
}
