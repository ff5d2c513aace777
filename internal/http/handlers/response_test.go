package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/medunit/go-medic-portal/internal/services"
	"github.com/medunit/go-medic-portal/internal/store"
)

// newTestRouter builds a Gin engine with the full endpoint surface over an
// in-memory backend, without the middleware chain.
func newTestRouter(t *testing.T) (*gin.Engine, *store.MemoryBackend) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	b := store.NewMemoryBackend()
	st := store.New(b)
	portal := services.NewPortalService(b, st)
	h := New(portal, services.NewTicketService(b, portal), services.NewRatingService(b))

	r := gin.New()
	r.POST("/applications", h.SubmitApplication)
	r.GET("/applications", h.ListApplications)
	r.POST("/uploads", h.SubmitUpload)
	r.GET("/uploads", h.ListUploads)
	r.GET("/stats", h.Stats)
	r.GET("/search", h.Search)
	r.GET("/filter", h.Filter)
	r.GET("/activity", h.Activity)
	r.POST("/tickets", h.CreateTicket)
	r.GET("/tickets", h.ListTickets)
	r.GET("/tickets/stats", h.TicketStats)
	r.GET("/tickets/:id", h.GetTicket)
	r.POST("/tickets/:id/replies", h.ReplyTicket)
	r.PUT("/tickets/:id/status", h.UpdateTicketStatus)
	r.DELETE("/tickets/:id", h.DeleteTicket)
	r.POST("/ratings", h.RateTarget)
	r.GET("/ratings", h.ListRatings)
	r.GET("/ratings/:target/stats", h.RatingStats)
	r.GET("/theme", h.GetTheme)
	r.PUT("/theme", h.SetTheme)
	return r, b
}

// doJSON performs a request with an optional JSON body and returns the
// recorder.
func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// decode unmarshals the response body into out.
func decode(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}

func TestErrorEnvelopeShape(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/tickets/TICKET-NOPE", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	var resp ErrorResponse
	decode(t, w, &resp)
	if resp.Code != ErrCodeNotFound {
		t.Fatalf("code = %q, want %q", resp.Code, ErrCodeNotFound)
	}
	if resp.Message == "" {
		t.Fatalf("error message empty")
	}
}
