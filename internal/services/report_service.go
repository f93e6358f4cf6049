// Package services – ReportService
//
// ReportService owns the failure journal: non-HTTP callers (batch jobs,
// workers, CLIs) report occurrences of catalog errors and operators page
// through them or read per-key counts.
//
// Submitted keys are untrusted. They go through errcat.ParseKey and a miss is
// journaled as the meta-error, keeping the raw input in RequestedKey, so a bad
// report is never lost.
package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-error-catalog/internal/domain"
	"github.com/tbourn/go-error-catalog/internal/errcat"
	"github.com/tbourn/go-error-catalog/internal/repo"
)

const (
	tracerReports = "services/ReportService"

	maxRequestedKeyRunes = 128
	defaultIdemTTL       = 24 * time.Hour
)

// ReportRepo is the persistence contract of ReportService.
type ReportRepo interface {
	CreateReport(ctx context.Context, db *gorm.DB, r *domain.Report) error
	GetReport(ctx context.Context, db *gorm.DB, id string) (*domain.Report, error)
	CountReports(ctx context.Context, db *gorm.DB, key string) (int64, error)
	ListReportsPage(ctx context.Context, db *gorm.DB, key string, offset, limit int) ([]domain.Report, error)
	ReportsStats(ctx context.Context, db *gorm.DB, key string) (int64, *time.Time, error)
	CountByKey(ctx context.Context, db *gorm.DB) ([]domain.KeyCount, error)

	GetIdempotency(ctx context.Context, db *gorm.DB, scope, key string, now time.Time) (*domain.Idempotency, error)
	CreateIdempotency(ctx context.Context, db *gorm.DB, scope, key, reportID string, status int, ttl time.Duration) (*domain.Idempotency, error)
}

// ReportInput is a report as submitted.
type ReportInput struct {
	Key       string
	Kind      string
	Source    string
	Detail    string
	RequestID string
}

// ReportService journals catalog failures.
type ReportService struct {
	DB      *gorm.DB
	Repo    ReportRepo
	Catalog *errcat.Catalog

	// Input guards, in runes. Zero disables a guard.
	MaxSourceRunes int
	MaxDetailRunes int

	// IdempotencyTTL is how long an Idempotency-Key replays the first report.
	IdempotencyTTL time.Duration
}

// NewReportService returns a ReportService with default guards.
func NewReportService(db *gorm.DB, r ReportRepo, c *errcat.Catalog) *ReportService {
	return &ReportService{
		DB:             db,
		Repo:           r,
		Catalog:        c,
		MaxSourceRunes: 128,
		MaxDetailRunes: 2000,
		IdempotencyTTL: defaultIdemTTL,
	}
}

// Record validates in, resolves its key and kind against the catalog and
// persists the occurrence.
func (s *ReportService) Record(ctx context.Context, in ReportInput) (*domain.Report, error) {
	return s.record(ctx, s.DB, in)
}

func (s *ReportService) record(ctx context.Context, db *gorm.DB, in ReportInput) (*domain.Report, error) {
	ctx, span := otel.Tracer(tracerReports).Start(ctx, "Record",
		trace.WithAttributes(
			attribute.String("report.key", in.Key),
			attribute.String("report.kind", in.Kind),
		),
	)
	defer span.End()

	source := strings.TrimSpace(in.Source)
	switch {
	case source == "":
		return nil, ErrEmptySource
	case s.MaxSourceRunes > 0 && utf8.RuneCountInString(source) > s.MaxSourceRunes:
		return nil, ErrSourceTooLong
	}
	detail := strings.TrimSpace(in.Detail)
	if s.MaxDetailRunes > 0 && utf8.RuneCountInString(detail) > s.MaxDetailRunes {
		return nil, ErrDetailTooLong
	}
	kind, err := errcat.ParseKind(in.Kind)
	if err != nil {
		return nil, ErrInvalidKind
	}

	requested := strings.TrimSpace(in.Key)
	f := errcat.Meta()
	if k, err := s.Catalog.ParseKey(requested); err == nil {
		f = s.Catalog.Raise(kind, k)
	}

	r := &domain.Report{
		Key:       f.Key.String(),
		Code:      f.Code,
		Kind:      f.Kind.String(),
		Message:   f.Message,
		Source:    source,
		Detail:    detail,
		RequestID: in.RequestID,
	}
	if f.IsMeta() && !strings.EqualFold(requested, r.Key) {
		r.RequestedKey = clipRunes(requested, maxRequestedKeyRunes)
		span.SetAttributes(attribute.Bool("report.meta", true))
	}

	if err := s.Repo.CreateReport(ctx, db, r); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create report")
		return nil, err
	}
	span.SetAttributes(attribute.String("report.id", r.ID))
	return r, nil
}

// Get returns one report.
func (s *ReportService) Get(ctx context.Context, id string) (*domain.Report, error) {
	r, err := s.Repo.GetReport(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrReportNotFound
	}
	return r, err
}

// ListPage returns a page of reports, newest first, optionally filtered by
// key name. An unknown key name returns the meta-error.
func (s *ReportService) ListPage(ctx context.Context, keyName string, page, pageSize int) ([]domain.Report, int64, error) {
	ctx, span := otel.Tracer(tracerReports).Start(ctx, "ListPage",
		trace.WithAttributes(
			attribute.String("report.key", keyName),
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		),
	)
	defer span.End()

	key, err := s.filterKey(keyName)
	if err != nil {
		return nil, 0, err
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := s.Repo.CountReports(ctx, s.DB, key)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Report{}, 0, nil
	}
	items, err := s.Repo.ListReportsPage(ctx, s.DB, key, offset, pageSize)
	return items, total, err
}

// Version returns the report count and newest timestamp for a key filter;
// handlers derive ETags from it.
func (s *ReportService) Version(ctx context.Context, keyName string) (int64, *time.Time, error) {
	key, err := s.filterKey(keyName)
	if err != nil {
		return 0, nil, err
	}
	return s.Repo.ReportsStats(ctx, s.DB, key)
}

// Stats returns report counts per key, ordered by code.
func (s *ReportService) Stats(ctx context.Context) ([]domain.KeyCount, error) {
	ctx, span := otel.Tracer(tracerReports).Start(ctx, "Stats")
	defer span.End()

	rows, err := s.Repo.CountByKey(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []domain.KeyCount{}
	}
	return rows, nil
}

// Seen reports whether (scope, key) still maps to a stored report.
// It has the shape of middleware.IdempotencyLookup.
func (s *ReportService) Seen(ctx context.Context, scope, key string, now time.Time) (bool, error) {
	_, err := s.Repo.GetIdempotency(ctx, s.DB, scope, key, now)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, repo.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

// Replay returns the report first stored under (scope, key), if any.
func (s *ReportService) Replay(ctx context.Context, scope, key string) (*domain.Report, bool) {
	rec, err := s.Repo.GetIdempotency(ctx, s.DB, scope, key, time.Now().UTC())
	if err != nil {
		return nil, false
	}
	r, err := s.Repo.GetReport(ctx, s.DB, rec.ReportID)
	if err != nil {
		return nil, false
	}
	return r, true
}

// RecordOnce journals in and binds it to (scope, key) in one transaction.
// When another request already holds (scope, key) the new report is rolled
// back and the holder's report is returned with replayed set.
//
// A binding that has expired but not yet been purged still occupies
// (scope, key); the report is then journaled without one.
func (s *ReportService) RecordOnce(ctx context.Context, scope, key string, in ReportInput) (r *domain.Report, replayed bool, err error) {
	ttl := s.IdempotencyTTL
	if ttl <= 0 {
		ttl = defaultIdemTTL
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rec, err := s.record(ctx, tx, in)
		if err != nil {
			return err
		}
		if _, err := s.Repo.CreateIdempotency(ctx, tx, scope, key, rec.ID, http.StatusCreated, ttl); err != nil {
			return err
		}
		r = rec
		return nil
	})
	if !errors.Is(err, repo.ErrDuplicate) {
		return r, false, err
	}

	if prev, ok := s.Replay(ctx, scope, key); ok {
		return prev, true, nil
	}
	trace.SpanFromContext(ctx).AddEvent("idempotency.stale", trace.WithAttributes(attribute.String("idem.scope", scope)))
	r, err = s.record(ctx, s.DB, in)
	return r, false, err
}

// filterKey maps a key name to its stored wire name; "" means no filter.
func (s *ReportService) filterKey(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", nil
	}
	k, err := s.Catalog.ParseKey(name)
	if err != nil {
		return "", err
	}
	return k.String(), nil
}

func clipRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
