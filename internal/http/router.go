// Package httpapi wires the HTTP transport (Gin) to the catalog and journal
// services, middleware, and route handlers. It centralizes cross-cutting
// concerns such as tracing, correlation IDs, logging/redaction, panic
// recovery, metrics, CORS, security headers, idempotency, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic router setup; all dependencies injected
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/go-error-catalog/internal/config"
	"github.com/tbourn/go-error-catalog/internal/domain"
	"github.com/tbourn/go-error-catalog/internal/errcat"
	"github.com/tbourn/go-error-catalog/internal/http/handlers"
	"github.com/tbourn/go-error-catalog/internal/http/middleware"
	"github.com/tbourn/go-error-catalog/internal/repo"
	"github.com/tbourn/go-error-catalog/internal/services"
)

// reportRepoShim adapts the repository free functions to the
// services.ReportRepo interface expected by the ReportService.
type reportRepoShim struct{}

// CreateReport proxies repo.CreateReport.
func (reportRepoShim) CreateReport(ctx context.Context, db *gorm.DB, r *domain.Report) error {
	return repo.CreateReport(ctx, db, r)
}

// GetReport proxies repo.GetReport.
func (reportRepoShim) GetReport(ctx context.Context, db *gorm.DB, id string) (*domain.Report, error) {
	return repo.GetReport(ctx, db, id)
}

// CountReports proxies repo.CountReports (pagination support).
func (reportRepoShim) CountReports(ctx context.Context, db *gorm.DB, key string) (int64, error) {
	return repo.CountReports(ctx, db, key)
}

// ListReportsPage proxies repo.ListReportsPage (pagination support).
func (reportRepoShim) ListReportsPage(ctx context.Context, db *gorm.DB, key string, offset, limit int) ([]domain.Report, error) {
	return repo.ListReportsPage(ctx, db, key, offset, limit)
}

// ReportsStats proxies repo.ReportsStats (ETag support).
func (reportRepoShim) ReportsStats(ctx context.Context, db *gorm.DB, key string) (int64, *time.Time, error) {
	return repo.ReportsStats(ctx, db, key)
}

// CountByKey proxies repo.CountByKey.
func (reportRepoShim) CountByKey(ctx context.Context, db *gorm.DB) ([]domain.KeyCount, error) {
	return repo.CountByKey(ctx, db)
}

// GetIdempotency proxies repo.GetIdempotency.
func (reportRepoShim) GetIdempotency(ctx context.Context, db *gorm.DB, scope, key string, now time.Time) (*domain.Idempotency, error) {
	return repo.GetIdempotency(ctx, db, scope, key, now)
}

// CreateIdempotency proxies repo.CreateIdempotency.
func (reportRepoShim) CreateIdempotency(ctx context.Context, db *gorm.DB, scope, key, reportID string, status int, ttl time.Duration) (*domain.Idempotency, error) {
	return repo.CreateIdempotency(ctx, db, scope, key, reportID, status, ttl)
}

var corsMethods = []string{"GET", "POST", "OPTIONS"}

var corsHeaders = []string{
	"Origin", "Content-Type", "Accept", "If-None-Match",
	middleware.HeaderClientID, middleware.HeaderIdempotencyKey,
}

var corsExpose = []string{"X-Request-ID", "Content-Length", "ETag", "Retry-After", middleware.HeaderIdempotencyReplayed}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. The catalog is process-wide (errcat.Default); db backs the failure
// journal and must already be migrated.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: access log with PII scrubbing
//  4. Logger: request-scoped logger for handlers
//  5. Recovery: capture panics after loggers
//  6. Body size limiter
//  7. Metrics
//  8. Idempotency validator (before rate limiter to allow bypass on replay)
//  9. Rate limiter (per client IP, bypass on replay)
//  10. CORS and Security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	cat := errcat.Default()
	catalogSvc := services.NewCatalogService(cat, cfg.SearchLimit)
	reportSvc := services.NewReportService(db, reportRepoShim{}, cat)
	if cfg.IdempotencyTTL > 0 {
		reportSvc.IdempotencyTTL = cfg.IdempotencyTTL
	}

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Access log with redaction
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		SkipPaths: []string{"/health", "/metrics"},
	}))

	// 4) Scoped logger for handlers
	r.Use(middleware.Logger())

	// 5) Panic recovery to the JSON envelope
	r.Use(middleware.Recovery())

	// 6) Global body size limit (1 MiB)
	r.Use(limitBody(1 << 20))

	// 7) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 8) Idempotency validation (before rate limiting)
	r.Use(middleware.IdempotencyValidator(middleware.IdempotencyOptions{MaxLen: 200}, reportSvc.Seen))

	// 9) Token-bucket rate limiter per client IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByIP())
	r.Use(rl.Handler())

	// 10) CORS posture (allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     corsMethods,
			AllowHeaders:     corsHeaders,
			ExposeHeaders:    corsExpose,
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     corsMethods,
			AllowHeaders:     corsHeaders,
			ExposeHeaders:    corsExpose,
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.KeyNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.KeyMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "catalog": catalogSvc.Fingerprint()})
	})

	h := handlers.New(catalogSvc, reportSvc)

	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		// Catalog
		api.GET("/errors", h.ListErrors)
		api.GET("/errors/codes/:code", h.GetErrorByCode)
		api.GET("/errors/:key", h.GetError)
		api.GET("/errors/:key/as/:kind", h.PreviewError)

		// Journal
		api.POST("/reports", h.CreateReport)
		api.GET("/reports", h.ListReports)
		api.GET("/reports/stats", h.ReportStats)
		api.GET("/reports/:id", h.GetReport)
	}
}

// limitBody caps the request body size for all endpoints to maxBytes using
// http.MaxBytesReader. Requests exceeding the cap fail on body read.
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
