// Replay protection for submissions, built on the expiring key-value store.
//
// Clients carrying an optional Idempotency-Key header get at-most-once
// semantics on mutating endpoints. The first successful request under a key
// writes an expiring marker; a repeat within the marker's TTL is rejected
// with 409 before reaching the handler. Markers live in the store namespace
// ("medic_idempotency_<key>") and age out with the configured TTL, so no
// sweep is needed.
package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/medunit/go-medic-portal/internal/store"
)

// HeaderIdempotencyKey is the request header carrying the client token.
const HeaderIdempotencyKey = "Idempotency-Key"

// maxIdempotencyKeyLen bounds stored key size.
const maxIdempotencyKeyLen = 200

// Idempotency returns a Gin middleware enforcing at-most-once semantics for
// requests carrying an Idempotency-Key header. Requests without the header
// pass through untouched.
func Idempotency(st *store.Store, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKeyLen {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"request_id": RequestIDFrom(c),
				"code":       "bad_request",
				"message":    "idempotency key too long",
			})
			return
		}

		storeKey := "idempotency_" + key
		var seenAt time.Time
		if st.Get(storeKey, &seenAt) {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"request_id": RequestIDFrom(c),
				"code":       "conflict",
				"message":    "request already processed",
			})
			return
		}

		c.Next()

		// Record the marker only for requests that succeeded, so a client
		// can retry a failed submission with the same key.
		if c.Writer.Status() < http.StatusBadRequest {
			st.Set(storeKey, time.Now().UTC(), ttl)
		}
	}
}
