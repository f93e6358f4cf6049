// Package services – CatalogService
//
// CatalogService is the read side of the error catalog as seen by the HTTP
// layer: listings, keyword search, key and code lookups, and failure
// previews. Every miss resolves to the catalog meta-error rather than an
// ad-hoc error value.
package services

import (
	"context"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-error-catalog/internal/errcat"
	"github.com/tbourn/go-error-catalog/internal/search"
)

const tracerCatalog = "services/CatalogService"

// Hit is one search result.
type Hit struct {
	errcat.Record
	// Score is the keyword overlap with the query, in (0, 1].
	Score float64 `json:"score" example:"0.5"`
}

// CatalogService serves catalog reads. It is immutable after construction
// and safe for concurrent use.
type CatalogService struct {
	Catalog *errcat.Catalog
	Index   search.Index

	// SearchLimit caps the number of hits returned by Search.
	SearchLimit int
}

// NewCatalogService indexes every record of c for keyword search. Each
// document holds the wire name, the code and the message, so a query can
// match any of them.
func NewCatalogService(c *errcat.Catalog, searchLimit int) *CatalogService {
	if searchLimit <= 0 {
		searchLimit = 5
	}
	recs := c.Entries()
	docs := make([]search.Document, 0, len(recs))
	for _, r := range recs {
		docs = append(docs, search.Document{
			ID:   r.Key.String(),
			Text: r.Key.String() + " " + strconv.Itoa(r.Code) + " " + r.Message,
		})
	}
	return &CatalogService{
		Catalog:     c,
		Index:       search.NewIndex(docs),
		SearchLimit: searchLimit,
	}
}

// List returns every record sorted by code.
func (s *CatalogService) List() []errcat.Record { return s.Catalog.Entries() }

// Fingerprint identifies the catalog contents; it changes only when the
// table does.
func (s *CatalogService) Fingerprint() string { return s.Catalog.Fingerprint() }

// Search returns up to SearchLimit records ranked by keyword overlap with q.
// A blank or unmatched query yields an empty slice.
func (s *CatalogService) Search(ctx context.Context, q string) []Hit {
	_, span := otel.Tracer(tracerCatalog).Start(ctx, "Search",
		trace.WithAttributes(attribute.String("query", q)),
	)
	defer span.End()

	q = strings.TrimSpace(q)
	if q == "" || s.Index == nil {
		return []Hit{}
	}

	results := s.Index.TopK(q, s.SearchLimit)
	hits := make([]Hit, 0, len(results))
	for _, r := range results {
		k, err := s.Catalog.ParseKey(r.ID)
		if err != nil {
			continue
		}
		e, _ := s.Catalog.Lookup(k)
		hits = append(hits, Hit{Record: errcat.Record{Key: k, Entry: e}, Score: r.Score})
	}
	span.SetAttributes(attribute.Int("hits", len(hits)))
	return hits
}

// Get resolves a key name. Unknown names return the meta-error as err.
func (s *CatalogService) Get(name string) (errcat.Record, error) {
	k, err := s.Catalog.ParseKey(name)
	if err != nil {
		return errcat.Record{}, err
	}
	e, _ := s.Catalog.Lookup(k)
	return errcat.Record{Key: k, Entry: e}, nil
}

// ByCode is the reverse lookup.
func (s *CatalogService) ByCode(code int) (errcat.Record, error) {
	k, ok := s.Catalog.ByCode(code)
	if !ok {
		return errcat.Record{}, ErrCodeNotRegistered
	}
	e, _ := s.Catalog.Lookup(k)
	return errcat.Record{Key: k, Entry: e}, nil
}

// Raise builds the failure for (kind, key); see errcat.Catalog.Raise.
func (s *CatalogService) Raise(kind errcat.Kind, key errcat.Key) *errcat.Failure {
	return s.Catalog.Raise(kind, key)
}

// Preview resolves untrusted key and kind names into the failure a
// transport would emit. An unknown key or kind yields the meta-error.
func (s *CatalogService) Preview(keyName, kindName string) *errcat.Failure {
	k, err := s.Catalog.ParseKey(keyName)
	if err != nil {
		return errcat.Meta()
	}
	kind, err := errcat.ParseKind(kindName)
	if err != nil {
		return errcat.Meta()
	}
	return s.Catalog.Raise(kind, k)
}
