package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/medunit/go-medic-portal/internal/domain"
)

func createTicket(t *testing.T, r *gin.Engine) domain.Ticket {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/tickets", map[string]string{
		"title":       "gallery broken",
		"description": "thumbnails 404",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp struct {
		Ticket domain.Ticket `json:"ticket"`
	}
	decode(t, w, &resp)
	return resp.Ticket
}

func TestCreateAndGetTicket(t *testing.T) {
	r, _ := newTestRouter(t)
	ticket := createTicket(t, r)

	if ticket.Status != domain.TicketStatusOpen {
		t.Fatalf("status = %q, want open", ticket.Status)
	}

	w := doJSON(t, r, http.MethodGet, "/tickets/"+ticket.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	var got domain.Ticket
	decode(t, w, &got)
	if got.ID != ticket.ID || len(got.Messages) != 1 {
		t.Fatalf("got = %+v", got)
	}
}

func TestCreateTicketValidationStatus(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/tickets", map[string]string{"title": "only title"})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}
}

func TestReplyTicketFlow(t *testing.T) {
	r, _ := newTestRouter(t)
	ticket := createTicket(t, r)

	// Admin reply (empty sender) answers the ticket.
	w := doJSON(t, r, http.MethodPost, "/tickets/"+ticket.ID+"/replies", map[string]string{"text": "on it"})
	if w.Code != http.StatusOK {
		t.Fatalf("reply status = %d, body = %s", w.Code, w.Body.String())
	}
	var updated domain.Ticket
	decode(t, w, &updated)
	if updated.Status != domain.TicketStatusAnswered || len(updated.Messages) != 2 {
		t.Fatalf("after admin reply: %+v", updated)
	}

	// Missing text is a bind error.
	w = doJSON(t, r, http.MethodPost, "/tickets/"+ticket.ID+"/replies", map[string]string{"sender": "reporter"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	// Unknown ticket.
	w = doJSON(t, r, http.MethodPost, "/tickets/TICKET-NOPE/replies", map[string]string{"text": "x"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestUpdateTicketStatusEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)
	ticket := createTicket(t, r)

	w := doJSON(t, r, http.MethodPut, "/tickets/"+ticket.ID+"/status", map[string]string{"status": "closed"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodPut, "/tickets/"+ticket.ID+"/status", map[string]string{"status": "escalated"})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}
	var resp ErrorResponse
	decode(t, w, &resp)
	if resp.Code != ErrCodeInvalidStatus {
		t.Fatalf("code = %q, want %q", resp.Code, ErrCodeInvalidStatus)
	}
}

func TestDeleteTicketEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)
	ticket := createTicket(t, r)

	w := doJSON(t, r, http.MethodDelete, "/tickets/"+ticket.ID, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}
	w = doJSON(t, r, http.MethodDelete, "/tickets/"+ticket.ID, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", w.Code)
	}
}

func TestTicketStatsEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)
	createTicket(t, r)

	w := doJSON(t, r, http.MethodGet, "/tickets/stats", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var stats struct {
		Total    int            `json:"total"`
		ByStatus map[string]int `json:"byStatus"`
		Open     int            `json:"open"`
	}
	decode(t, w, &stats)
	if stats.Total != 1 || stats.Open != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	if _, ok := stats.ByStatus[domain.TicketStatusClosed]; !ok {
		t.Fatalf("zero buckets missing: %+v", stats.ByStatus)
	}
}
