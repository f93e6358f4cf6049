// Catalog HTTP handlers.
//
// This file exposes the read-only catalog:
//   - GET /errors                  (list, or keyword search with ?q=; ETag support)
//   - GET /errors/{key}            (one entry; unknown key → meta-error)
//   - GET /errors/codes/{code}     (reverse lookup)
//   - GET /errors/{key}/as/{kind}  (render the failure a transport would emit)
//
// The catalog is compiled in, so its fingerprint is a valid ETag for the
// whole process lifetime.
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-error-catalog/internal/domain"
	"github.com/tbourn/go-error-catalog/internal/errcat"
	"github.com/tbourn/go-error-catalog/internal/services"
)

//
// Service contracts
//

// CatalogService is the catalog read side consumed by handlers.
type CatalogService interface {
	List() []errcat.Record
	Search(ctx context.Context, q string) []services.Hit
	Get(name string) (errcat.Record, error)
	ByCode(code int) (errcat.Record, error)
	Raise(kind errcat.Kind, key errcat.Key) *errcat.Failure
	Preview(keyName, kindName string) *errcat.Failure
	Fingerprint() string
}

// ReportService is the failure journal consumed by handlers. Implementations
// must honor ctx for cancellation.
type ReportService interface {
	Record(ctx context.Context, in services.ReportInput) (*domain.Report, error)
	Get(ctx context.Context, id string) (*domain.Report, error)
	ListPage(ctx context.Context, keyName string, page, pageSize int) ([]domain.Report, int64, error)
	Version(ctx context.Context, keyName string) (int64, *time.Time, error)
	Stats(ctx context.Context) ([]domain.KeyCount, error)
	Replay(ctx context.Context, scope, key string) (*domain.Report, bool)
	RecordOnce(ctx context.Context, scope, key string, in services.ReportInput) (*domain.Report, bool, error)
}

// Handlers groups the catalog and journal endpoints.
type Handlers struct {
	catalog CatalogService
	reports ReportService
}

// New constructs Handlers bound to the given services.
func New(catalog CatalogService, reports ReportService) *Handlers {
	return &Handlers{catalog: catalog, reports: reports}
}

//
// DTOs
//

// ListErrorsResponse carries either the full catalog or, when q was given,
// the ranked search hits.
type ListErrorsResponse struct {
	Errors      []errcat.Record `json:"errors,omitempty"`
	Query       string          `json:"query,omitempty" example:"session"`
	Hits        []services.Hit  `json:"hits,omitempty"`
	Fingerprint string          `json:"fingerprint" example:"9c1f0e5d2b7a3c44"`
}

// PreviewHeader marks rendered previews so clients and proxies can tell them
// from real failures.
const PreviewHeader = "X-Catalog-Preview"

//
// Handlers
//

// ListErrors godoc
// @ID          listErrors
// @Summary     List catalog errors
// @Description Returns every catalog entry sorted by code. With q, returns the best keyword matches over keys, codes and messages.
// @Tags        Catalog
// @Produce     json
//
// @Param       q              query   string  false  "Keyword query"  example(session expired)
// @Param       If-None-Match  header  string  false  "ETag from a previous response"
//
// @Success     200  {object}  handlers.ListErrorsResponse
// @Success     304  "Not modified"
// @Router      /errors [get]
func (h *Handlers) ListErrors(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	fp := h.catalog.Fingerprint()

	etag := fmt.Sprintf(`W/"errors:%s"`, fp)
	if q != "" {
		etag = fmt.Sprintf(`W/"errors:%s:%x"`, fp, xxhash.Sum64String(q))
	}
	if notModified(c, etag) {
		return
	}

	if q == "" {
		ok(c, http.StatusOK, ListErrorsResponse{Errors: h.catalog.List(), Fingerprint: fp})
		return
	}
	hits := h.catalog.Search(c.Request.Context(), q)
	ok(c, http.StatusOK, ListErrorsResponse{Query: q, Hits: hits, Fingerprint: fp})
}

// GetError godoc
// @ID          getError
// @Summary     Get one catalog error
// @Description Resolves a key name (case-insensitive). Unknown keys yield the meta-error (9000).
// @Tags        Catalog
// @Produce     json
//
// @Param       key  path  string  true  "Error key"  example(userNotFound)
//
// @Success     200  {object}  errcat.Record
// @Failure     500  {object}  handlers.ErrorResponse  "Unknown key (meta-error)"
// @Router      /errors/{key} [get]
func (h *Handlers) GetError(c *gin.Context) {
	rec, err := h.catalog.Get(c.Param("key"))
	if err != nil {
		h.failErr(c, err)
		return
	}
	if notModified(c, fmt.Sprintf(`W/"errors:%s:%s"`, h.catalog.Fingerprint(), rec.Key)) {
		return
	}
	ok(c, http.StatusOK, rec)
}

// GetErrorByCode godoc
// @ID          getErrorByCode
// @Summary     Reverse lookup by code
// @Tags        Catalog
// @Produce     json
//
// @Param       code  path  int  true  "Numeric code"  example(1102)
//
// @Success     200  {object}  errcat.Record
// @Failure     400  {object}  handlers.ErrorResponse  "Code is not a number"
// @Failure     404  {object}  handlers.ErrorResponse  "Code not registered"
// @Router      /errors/codes/{code} [get]
func (h *Handlers) GetErrorByCode(c *gin.Context) {
	code, err := strconv.Atoi(c.Param("code"))
	if err != nil {
		failDetail(c, h.catalog.Raise(errcat.KindBadRequest, errcat.ValidationFailed), "code must be an integer")
		return
	}
	rec, err := h.catalog.ByCode(code)
	if err != nil {
		fail(c, http.StatusNotFound, KeyNotFound, fmt.Sprintf("code %d is not registered", code))
		return
	}
	ok(c, http.StatusOK, rec)
}

// PreviewError godoc
// @ID          previewError
// @Summary     Preview a typed failure
// @Description Renders Raise(kind, key) exactly as a transport would: status from the kind, body in the error envelope.
// @Description Unknown keys or kinds render the meta-error. The response carries X-Catalog-Preview: true.
// @Tags        Catalog
// @Produce     json
//
// @Param       key   path  string  true  "Error key"  example(sessionExpired)
// @Param       kind  path  string  true  "Failure kind"  Enums(bad_request, not_found, internal_server, unauthorized)
//
// @Failure     400  {object}  handlers.ErrorResponse
// @Failure     401  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse
// @Failure     500  {object}  handlers.ErrorResponse
// @Router      /errors/{key}/as/{kind} [get]
func (h *Handlers) PreviewError(c *gin.Context) {
	f := h.catalog.Preview(c.Param("key"), c.Param("kind"))
	c.Header(PreviewHeader, "true")
	render(c, StatusFor(f.Kind), f, "")
}

// failErr renders err when it is a catalog failure and a generic 500
// otherwise.
func (h *Handlers) failErr(c *gin.Context, err error) {
	if f, isFailure := errcat.AsFailure(err); isFailure {
		failWith(c, f)
		return
	}
	fail(c, http.StatusInternalServerError, KeyInternal, "internal server error")
}
