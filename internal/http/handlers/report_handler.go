// Report HTTP handlers.
//
// This file exposes the failure journal:
//   - POST /reports          (journal an occurrence; Idempotency-Key aware)
//   - GET  /reports          (list, newest first, paginated, ETag support)
//   - GET  /reports/stats    (counts per key, ordered by code)
//   - GET  /reports/{id}     (one report)
//
// Idempotency:
// When the client sends an Idempotency-Key and a report was already stored
// for the same (scope, key), the first report is returned with
// `Idempotency-Replayed: true` and nothing new is written.
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tbourn/go-error-catalog/internal/domain"
	"github.com/tbourn/go-error-catalog/internal/errcat"
	"github.com/tbourn/go-error-catalog/internal/http/middleware"
	"github.com/tbourn/go-error-catalog/internal/services"
	"github.com/tbourn/go-error-catalog/internal/utils"
)

//
// DTOs
//

// CreateReportRequest is the JSON payload for journaling a failure.
type CreateReportRequest struct {
	// Key is the catalog key name; unknown keys are journaled as the meta-error.
	Key string `json:"key" example:"userNotFound"`
	// Kind is the failure kind the reporter raised.
	Kind string `json:"kind" binding:"required" example:"not_found" enums:"bad_request,not_found,internal_server,unauthorized"`
	// Source identifies the reporter (max 128 runes).
	Source string `json:"source" binding:"required" example:"billing-worker"`
	// Detail is optional context (max 2000 runes).
	Detail string `json:"detail" example:"customer 42 missing during nightly sync"`
}

// ReportResponse wraps one journaled report.
type ReportResponse struct {
	Report *domain.Report `json:"report"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListReportsResponse wraps a page of reports and pagination information.
type ListReportsResponse struct {
	Reports    []domain.Report `json:"reports"`
	Pagination Pagination      `json:"pagination"`
}

// ReportStatsResponse lists report counts per key.
type ReportStatsResponse struct {
	Stats []domain.KeyCount `json:"stats"`
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params.
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = max(utils.AtoiDefault(c.Query("page"), defaultPage), 1)
	pageSize = utils.Clamp(utils.AtoiDefault(c.Query("page_size"), defaultPageSize), 1, maxPageSize)
	return page, pageSize
}

// validation renders ValidationFailed with a detail line.
func (h *Handlers) validation(c *gin.Context, detail string) {
	failDetail(c, h.catalog.Raise(errcat.KindBadRequest, errcat.ValidationFailed), detail)
}

//
// Handlers
//

// CreateReport godoc
// @ID          createReport
// @Summary     Journal a catalog failure
// @Description Records one occurrence of a catalog error raised outside HTTP (batch jobs, workers).
// @Description Unknown keys are stored as the meta-error (9000) with requested_key set.
// @Description Supports idempotency via the Idempotency-Key header (same key → same report).
// @Tags        Reports
// @Accept      json
// @Produce     json
//
// @Param       Idempotency-Key  header  string                        false  "Idempotency key for safe retries"  example(7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab)
// @Param       X-Client-ID      header  string                        false  "Caller identity for idempotency scope"
// @Param       body             body    handlers.CreateReportRequest  true   "Report payload"
//
// @Success     201  {object}  handlers.ReportResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Validation failed (1100)"
// @Failure     429  {object}  handlers.ErrorResponse  "Rate limited"
// @Failure     500  {object}  handlers.ErrorResponse  "Journal unavailable (9000)"
// @Router      /reports [post]
func (h *Handlers) CreateReport(c *gin.Context) {
	ctx := c.Request.Context()

	var req CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.validation(c, "body must be JSON with kind and source")
		return
	}

	idemKey, hasKey := middleware.GetIdempotencyKey(c)
	scope := middleware.IdempotencyScope(c)
	if hasKey && middleware.IsReplay(c) {
		if prev, found := h.reports.Replay(ctx, scope, idemKey); found {
			c.Header(middleware.HeaderIdempotencyReplayed, "true")
			ok(c, http.StatusCreated, ReportResponse{Report: prev})
			return
		}
	}

	in := services.ReportInput{
		Key:       req.Key,
		Kind:      req.Kind,
		Source:    req.Source,
		Detail:    req.Detail,
		RequestID: middleware.GetRequestID(c),
	}
	var (
		r        *domain.Report
		replayed bool
		err      error
	)
	if hasKey {
		r, replayed, err = h.reports.RecordOnce(ctx, scope, idemKey, in)
	} else {
		r, err = h.reports.Record(ctx, in)
	}
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidKind),
			errors.Is(err, services.ErrEmptySource),
			errors.Is(err, services.ErrSourceTooLong),
			errors.Is(err, services.ErrDetailTooLong):
			h.validation(c, err.Error())
		default:
			// The journal itself failed: this is the catalog's meta case.
			middleware.LoggerFrom(c).Error().Err(err).Msg("record report")
			failWith(c, errcat.Meta())
		}
		return
	}

	if replayed {
		c.Header(middleware.HeaderIdempotencyReplayed, "true")
	}
	ok(c, http.StatusCreated, ReportResponse{Report: r})
}

// ListReports godoc
// @ID          listReports
// @Summary     List journaled failures
// @Description Newest first. Filter by catalog key; an unknown key yields the meta-error.
// @Tags        Reports
// @Produce     json
//
// @Param       key            query   string  false  "Catalog key filter"  example(userNotFound)
// @Param       page           query   int     false  "Page number"     minimum(1) default(1)
// @Param       page_size      query   int     false  "Items per page"  minimum(1) maximum(100) default(20)
// @Param       If-None-Match  header  string  false  "ETag from a previous response"
//
// @Success     200  {object}  handlers.ListReportsResponse
// @Success     304  "Not modified"
// @Failure     500  {object}  handlers.ErrorResponse  "Unknown key filter (9000)"
// @Router      /reports [get]
func (h *Handlers) ListReports(c *gin.Context) {
	ctx := c.Request.Context()
	key := strings.TrimSpace(c.Query("key"))
	page, pageSize := clampPagination(c)

	// ETag pre-check (best effort).
	count, latest, err := h.reports.Version(ctx, key)
	if f, isFailure := errcat.AsFailure(err); isFailure {
		failWith(c, f)
		return
	}
	if err == nil {
		var ts int64
		if latest != nil {
			ts = latest.UnixNano()
		}
		scope := key
		if scope == "" {
			scope = "*"
		}
		etag := fmt.Sprintf(`W/"reports:%s:%d:%d:%d:%d"`, scope, count, ts, page, pageSize)
		if notModified(c, etag) {
			return
		}
	}

	items, total, err := h.reports.ListPage(ctx, key, page, pageSize)
	if err != nil {
		h.failErr(c, err)
		return
	}

	totalPages := utils.PageCount(total, pageSize)
	ok(c, http.StatusOK, ListReportsResponse{
		Reports: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// ReportStats godoc
// @ID          reportStats
// @Summary     Report counts per key
// @Tags        Reports
// @Produce     json
//
// @Success     200  {object}  handlers.ReportStatsResponse
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /reports/stats [get]
func (h *Handlers) ReportStats(c *gin.Context) {
	rows, err := h.reports.Stats(c.Request.Context())
	if err != nil {
		h.failErr(c, err)
		return
	}
	ok(c, http.StatusOK, ReportStatsResponse{Stats: rows})
}

// GetReport godoc
// @ID          getReport
// @Summary     Get one journaled failure
// @Tags        Reports
// @Produce     json
//
// @Param       id  path  string  true  "Report ID (UUID)"  format(uuid)
//
// @Success     200  {object}  handlers.ReportResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Malformed ID (1100)"
// @Failure     404  {object}  handlers.ErrorResponse  "Report not found"
// @Router      /reports/{id} [get]
func (h *Handlers) GetReport(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		h.validation(c, "report id must be a UUID")
		return
	}
	r, err := h.reports.Get(c.Request.Context(), id)
	switch {
	case errors.Is(err, services.ErrReportNotFound):
		fail(c, http.StatusNotFound, KeyNotFound, "report not found")
	case err != nil:
		h.failErr(c, err)
	default:
		ok(c, http.StatusOK, ReportResponse{Report: r})
	}
}
