// Package services holds the application logic behind the HTTP layer: catalog
// reads and search, and the failure journal.
//
// The sentinels below are returned for predictable input problems; handlers
// translate them into catalog failures. Catalog misses are not sentinels:
// they surface as the *errcat.Failure meta-error itself.
package services

import "errors"

var (
	// ErrInvalidKind is returned when a kind name is not one of the
	// catalog kinds.
	ErrInvalidKind = errors.New("unknown failure kind")

	// ErrEmptySource is returned when a report does not name its source.
	ErrEmptySource = errors.New("source is empty")

	// ErrSourceTooLong is returned when a report source exceeds
	// ReportService.MaxSourceRunes.
	ErrSourceTooLong = errors.New("source too long")

	// ErrDetailTooLong is returned when report detail exceeds
	// ReportService.MaxDetailRunes.
	ErrDetailTooLong = errors.New("detail too long")

	// ErrCodeNotRegistered is returned by reverse lookups of unknown codes.
	ErrCodeNotRegistered = errors.New("code not registered")

	// ErrReportNotFound is returned when a report ID does not exist.
	ErrReportNotFound = errors.New("report not found")
)
