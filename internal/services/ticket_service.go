// Package services – TicketService
//
// This file implements the support-ticket subsystem: ticket creation with a
// seed message, threaded replies that drive the status machine, explicit
// status updates limited to the fixed set, deletion, and stats with every
// category/priority/status bucket pre-initialized. Tickets live as one raw
// JSON array in the backend (see internal/repo); every mutation is a
// read-modify-write of that collection.
package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/medunit/go-medic-portal/internal/domain"
	"github.com/medunit/go-medic-portal/internal/repo"
	"github.com/medunit/go-medic-portal/internal/store"
)

// AdminSender is the sender name the portal uses for admin/system replies.
// A reply from this sender marks the ticket answered; any other sender puts
// it back in review.
const AdminSender = "system-admin"

// TicketService manages the ticket collection.
type TicketService struct {
	Backend store.Backend

	// Activity optionally receives an entry per ticket mutation; nil
	// disables activity logging (e.g. in isolated tests).
	Activity *PortalService

	// now is a clock seam for tests; defaults to time.Now.
	now func() time.Time
}

// NewTicketService constructs a TicketService over backend, logging ticket
// activity through portal (which may be nil).
func NewTicketService(backend store.Backend, portal *PortalService) *TicketService {
	return &TicketService{Backend: backend, Activity: portal, now: time.Now}
}

func (s *TicketService) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

func (s *TicketService) logActivity(action string, data map[string]any) {
	if s.Activity != nil {
		s.Activity.LogActivity(action, data)
	}
}

// TicketInput is the caller-supplied portion of a new ticket.
type TicketInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Priority    string `json:"priority"`
	CreatedBy   string `json:"createdBy"`
}

// Create validates input, assigns a unique human-readable id, seeds the
// message thread with the description, and appends the ticket.
//
// Defaults: category falls back to the first fixed category, priority to the
// second (medium), creator to "anonymous". Title and description are both
// required (ErrTicketInvalid).
func (s *TicketService) Create(in TicketInput) (*domain.Ticket, error) {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Description) == "" {
		return nil, ErrTicketInvalid
	}

	category := in.Category
	if category == "" {
		category = domain.TicketCategories[0]
	}
	priority := in.Priority
	if priority == "" {
		priority = domain.TicketPriorities[1]
	}
	createdBy := strings.TrimSpace(in.CreatedBy)
	if createdBy == "" {
		createdBy = "anonymous"
	}

	tickets := repo.LoadTickets(s.Backend)
	now := s.clock()

	// The base-36 timestamp id collides for tickets created within the same
	// millisecond; bump the sequence until the id is unique in this store.
	var id string
	for seq := int64(0); ; seq++ {
		id = domain.NewTicketID(now, seq)
		if !ticketExists(tickets, id) {
			break
		}
	}

	ticket := domain.Ticket{
		ID:          id,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Category:    category,
		Priority:    priority,
		Status:      domain.TicketStatusOpen,
		CreatedBy:   createdBy,
		CreatedAt:   now.UTC(),
		UpdatedAt:   now.UTC(),
		Messages: []domain.TicketMessage{{
			ID:        "msg-1",
			Text:      in.Description,
			Sender:    createdBy,
			Timestamp: now.UTC(),
		}},
	}

	tickets = append(tickets, ticket)
	if err := repo.SaveTickets(s.Backend, tickets); err != nil {
		log.Error().Err(err).Msg("ticket not persisted")
		return nil, ErrStorageFailed
	}

	s.logActivity("ticket_created", map[string]any{"ticketId": ticket.ID})
	return &ticket, nil
}

// All returns every ticket, oldest first.
func (s *TicketService) All() []domain.Ticket {
	return repo.LoadTickets(s.Backend)
}

// Get returns the ticket with the given id, or ErrTicketNotFound.
func (s *TicketService) Get(id string) (*domain.Ticket, error) {
	for _, t := range repo.LoadTickets(s.Backend) {
		if t.ID == id {
			return &t, nil
		}
	}
	return nil, ErrTicketNotFound
}

// Reply appends a message to the ticket's thread and advances the status:
// answered when the sender is AdminSender, in-review otherwise. Message ids
// continue the "msg-N" sequence.
func (s *TicketService) Reply(id, text, sender string) (*domain.Ticket, error) {
	if sender == "" {
		sender = AdminSender
	}
	tickets := repo.LoadTickets(s.Backend)
	idx := ticketIndex(tickets, id)
	if idx < 0 {
		return nil, ErrTicketNotFound
	}

	now := s.clock()
	t := &tickets[idx]
	t.Messages = append(t.Messages, domain.TicketMessage{
		ID:        fmt.Sprintf("msg-%d", len(t.Messages)+1),
		Text:      text,
		Sender:    sender,
		Timestamp: now.UTC(),
	})
	t.UpdatedAt = now.UTC()
	if sender == AdminSender {
		t.Status = domain.TicketStatusAnswered
	} else {
		t.Status = domain.TicketStatusInReview
	}

	if err := repo.SaveTickets(s.Backend, tickets); err != nil {
		log.Error().Err(err).Str("ticket", id).Msg("ticket reply not persisted")
		return nil, ErrStorageFailed
	}
	return t, nil
}

// UpdateStatus assigns any status from the fixed set directly. Statuses
// outside the set fail with ErrInvalidTicketStatus and leave the stored
// ticket unchanged.
func (s *TicketService) UpdateStatus(id, status string) (*domain.Ticket, error) {
	if !domain.ValidTicketStatus(status) {
		return nil, ErrInvalidTicketStatus
	}
	tickets := repo.LoadTickets(s.Backend)
	idx := ticketIndex(tickets, id)
	if idx < 0 {
		return nil, ErrTicketNotFound
	}

	t := &tickets[idx]
	t.Status = status
	t.UpdatedAt = s.clock().UTC()

	if err := repo.SaveTickets(s.Backend, tickets); err != nil {
		log.Error().Err(err).Str("ticket", id).Msg("ticket status not persisted")
		return nil, ErrStorageFailed
	}
	return t, nil
}

// Delete removes the ticket with the given id unconditionally (no
// soft-delete). ErrTicketNotFound when no such ticket exists.
func (s *TicketService) Delete(id string) error {
	tickets := repo.LoadTickets(s.Backend)
	idx := ticketIndex(tickets, id)
	if idx < 0 {
		return ErrTicketNotFound
	}
	tickets = append(tickets[:idx], tickets[idx+1:]...)
	if err := repo.SaveTickets(s.Backend, tickets); err != nil {
		log.Error().Err(err).Str("ticket", id).Msg("ticket deletion not persisted")
		return ErrStorageFailed
	}
	s.logActivity("ticket_deleted", map[string]any{"ticketId": id})
	return nil
}

// TicketStats partitions tickets by status, category, and priority, plus an
// open/closed summary (open counts open and in-review; closed counts closed
// only). Every bucket of the fixed sets is present even when zero, so
// consumers can render complete tables without existence checks.
type TicketStats struct {
	Total      int            `json:"total"`
	ByStatus   map[string]int `json:"byStatus"`
	ByCategory map[string]int `json:"byCategory"`
	ByPriority map[string]int `json:"byPriority"`
	Open       int            `json:"open"`
	Closed     int            `json:"closed"`
}

// Stats computes TicketStats over the current collection.
func (s *TicketService) Stats() TicketStats {
	stats := TicketStats{
		ByStatus:   map[string]int{},
		ByCategory: map[string]int{},
		ByPriority: map[string]int{},
	}
	for _, v := range domain.TicketStatuses {
		stats.ByStatus[v] = 0
	}
	for _, v := range domain.TicketCategories {
		stats.ByCategory[v] = 0
	}
	for _, v := range domain.TicketPriorities {
		stats.ByPriority[v] = 0
	}

	for _, t := range repo.LoadTickets(s.Backend) {
		stats.Total++
		stats.ByStatus[t.Status]++
		stats.ByCategory[t.Category]++
		stats.ByPriority[t.Priority]++
		switch t.Status {
		case domain.TicketStatusOpen, domain.TicketStatusInReview:
			stats.Open++
		case domain.TicketStatusClosed:
			stats.Closed++
		}
	}
	return stats
}

func ticketIndex(tickets []domain.Ticket, id string) int {
	for i := range tickets {
		if tickets[i].ID == id {
			return i
		}
	}
	return -1
}

func ticketExists(tickets []domain.Ticket, id string) bool {
	return ticketIndex(tickets, id) >= 0
}
