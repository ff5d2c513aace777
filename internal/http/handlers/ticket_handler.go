// Support ticket endpoints:
//   - POST   /tickets              (create)
//   - GET    /tickets              (list)
//   - GET    /tickets/stats        (stats)
//   - GET    /tickets/:id          (fetch one)
//   - POST   /tickets/:id/replies  (append a message)
//   - PUT    /tickets/:id/status   (direct status assignment)
//   - DELETE /tickets/:id          (hard delete)
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medunit/go-medic-portal/internal/services"
)

// CreateTicket opens a new support ticket seeded with its description as the
// first thread message.
func (h *Handlers) CreateTicket(c *gin.Context) {
	var req services.TicketInput
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid ticket payload")
		return
	}

	ticket, err := h.tickets.Create(req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTicketInvalid):
			fail(c, http.StatusUnprocessableEntity, ErrCodeValidation, "ticket title and description are required")
		case errors.Is(err, services.ErrStorageFailed):
			fail(c, http.StatusServiceUnavailable, ErrCodeStorageFailed, "ticket could not be saved")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}

	ok(c, http.StatusCreated, gin.H{
		"success":  true,
		"ticketId": ticket.ID,
		"ticket":   ticket,
	})
}

// ListTickets returns every ticket, oldest first.
func (h *Handlers) ListTickets(c *gin.Context) {
	ok(c, http.StatusOK, h.tickets.All())
}

// GetTicket returns one ticket by id.
func (h *Handlers) GetTicket(c *gin.Context) {
	ticket, err := h.tickets.Get(c.Param("id"))
	if err != nil {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "ticket not found")
		return
	}
	ok(c, http.StatusOK, ticket)
}

// ReplyRequest is the JSON payload for replying to a ticket. An empty
// sender is attributed to the system admin, which marks the ticket answered;
// any other sender puts it back in review.
type ReplyRequest struct {
	Text   string `json:"text" binding:"required"`
	Sender string `json:"sender"`
}

// ReplyTicket appends a message to the ticket thread and advances its
// status.
func (h *Handlers) ReplyTicket(c *gin.Context) {
	var req ReplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "reply text is required")
		return
	}

	ticket, err := h.tickets.Reply(c.Param("id"), req.Text, req.Sender)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTicketNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "ticket not found")
		case errors.Is(err, services.ErrStorageFailed):
			fail(c, http.StatusServiceUnavailable, ErrCodeStorageFailed, "reply could not be saved")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, ticket)
}

// StatusRequest is the JSON payload for a direct status assignment.
type StatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateTicketStatus assigns any status from the fixed set
// (open, in-review, answered, closed).
func (h *Handlers) UpdateTicketStatus(c *gin.Context) {
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "status is required")
		return
	}

	ticket, err := h.tickets.UpdateStatus(c.Param("id"), req.Status)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidTicketStatus):
			fail(c, http.StatusUnprocessableEntity, ErrCodeInvalidStatus, "status must be one of: open, in-review, answered, closed")
		case errors.Is(err, services.ErrTicketNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "ticket not found")
		case errors.Is(err, services.ErrStorageFailed):
			fail(c, http.StatusServiceUnavailable, ErrCodeStorageFailed, "status could not be saved")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, ticket)
}

// DeleteTicket removes the ticket unconditionally.
func (h *Handlers) DeleteTicket(c *gin.Context) {
	if err := h.tickets.Delete(c.Param("id")); err != nil {
		switch {
		case errors.Is(err, services.ErrTicketNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "ticket not found")
		case errors.Is(err, services.ErrStorageFailed):
			fail(c, http.StatusServiceUnavailable, ErrCodeStorageFailed, "deletion could not be saved")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	noContent(c)
}

// TicketStats returns counts partitioned by status, category, and priority,
// with every bucket of the fixed sets present.
func (h *Handlers) TicketStats(c *gin.Context) {
	ok(c, http.StatusOK, h.tickets.Stats())
}
