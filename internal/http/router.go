// Package httpapi wires the HTTP transport (Gin) to the portal services,
// middleware, and route handlers. It centralizes cross-cutting concerns:
// tracing, correlation IDs, structured logging, panic recovery, metrics,
// compression, idempotent submissions, rate limiting, CORS, and security
// headers.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. AccessLogger: structured logs carrying the id
//  4. Recovery: capture panics after logging is in place
//  5. Body size limiter
//  6. Gzip compression
//  7. Metrics
//  8. Idempotency guard (store-backed replay markers)
//  9. Rate limiter, CORS, security headers
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/medunit/go-medic-portal/internal/app"
	"github.com/medunit/go-medic-portal/internal/http/handlers"
	"github.com/medunit/go-medic-portal/internal/http/middleware"
)

// RegisterRoutes attaches all middleware and endpoints to the given Gin
// engine, pulling services and configuration from the registry.
func RegisterRoutes(r *gin.Engine, reg *app.Registry) {
	cfg := reg.Config
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured access logging
	r.Use(middleware.AccessLogger())

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB); record payloads are small
	r.Use(limitBody(1 << 20))

	// 6) Response compression
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// 7) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 8) Replay markers in the expiring store guard duplicate submissions
	r.Use(middleware.Idempotency(reg.Store, cfg.IdempotencyTTL))

	// 9) Token-bucket rate limiter per client IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst)
	r.Use(rl.Handler())

	// CORS posture: allow-all when no origins are configured (single-user
	// local deployments), allowlist otherwise.
	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.HeaderIdempotencyKey},
		ExposeHeaders:    []string{middleware.HeaderRequestID, "Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.CORS.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	// Security headers (HSTS only when enabled and the request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS: cfg.Security.EnableHSTS,
		HSTSMaxAge: cfg.Security.HSTSMaxAge,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	h := handlers.New(reg.Portal, reg.Tickets, reg.Ratings)

	// Public API
	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		// Applications
		api.POST("/applications", h.SubmitApplication)
		api.GET("/applications", h.ListApplications)

		// Uploads
		api.POST("/uploads", h.SubmitUpload)
		api.GET("/uploads", h.ListUploads)

		// Cross-collection reads
		api.GET("/stats", h.Stats)
		api.GET("/search", h.Search)
		api.GET("/filter", h.Filter)
		api.GET("/activity", h.Activity)

		// Tickets
		api.POST("/tickets", h.CreateTicket)
		api.GET("/tickets", h.ListTickets)
		api.GET("/tickets/stats", h.TicketStats)
		api.GET("/tickets/:id", h.GetTicket)
		api.POST("/tickets/:id/replies", h.ReplyTicket)
		api.PUT("/tickets/:id/status", h.UpdateTicketStatus)
		api.DELETE("/tickets/:id", h.DeleteTicket)

		// Ratings
		api.POST("/ratings", h.RateTarget)
		api.GET("/ratings", h.ListRatings)
		api.GET("/ratings/:target/stats", h.RatingStats)

		// Theme preference
		api.GET("/theme", h.GetTheme)
		api.PUT("/theme", h.SetTheme)
	}
}

// limitBody caps the request body size for all endpoints using
// http.MaxBytesReader; reads beyond the cap error downstream.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
