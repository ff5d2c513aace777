package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newRateLimitedRouter(rps float64, burst int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(NewRateLimiter(rps, burst).Handler())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return r
}

func get(r *gin.Engine, addr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = addr
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiterAllowsWithinBurst(t *testing.T) {
	r := newRateLimitedRouter(1, 3)

	for i := 0; i < 3; i++ {
		if w := get(r, "10.0.0.1:1234"); w.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i, w.Code)
		}
	}
}

func TestRateLimiterRejectsBeyondBurst(t *testing.T) {
	r := newRateLimitedRouter(0.001, 1)

	if w := get(r, "10.0.0.1:1234"); w.Code != http.StatusOK {
		t.Fatalf("first request status = %d", w.Code)
	}
	w := get(r, "10.0.0.1:1234")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Fatalf("Retry-After missing on 429")
	}
}

func TestRateLimiterIsolatesClients(t *testing.T) {
	r := newRateLimitedRouter(0.001, 1)

	get(r, "10.0.0.1:1234")
	if w := get(r, "10.0.0.2:1234"); w.Code != http.StatusOK {
		t.Fatalf("second client status = %d, want 200", w.Code)
	}
}

func TestNewRateLimiterCoercesBurst(t *testing.T) {
	rl := NewRateLimiter(1, 0)
	if rl.burst != 1 {
		t.Fatalf("burst = %d, want coerced 1", rl.burst)
	}
}
