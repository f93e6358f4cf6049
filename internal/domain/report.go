// Package domain defines the persistence models of the failure journal. The
// error catalog itself is compiled in (see internal/errcat); only reported
// occurrences of catalog errors are stored.
package domain

import "time"

// Report is one journaled occurrence of a catalog error, submitted by a
// non-HTTP caller (batch job, worker, CLI).
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - Key / Code / Message: the resolved catalog entry. When the submitted key
//     was unknown these hold the meta-error (errorWhileError, 9000).
//   - Kind: transport class requested by the reporter (bad_request, ...).
//   - RequestedKey: the raw key as submitted; differs from Key only when the
//     lookup missed.
//   - Source: free-form reporter identity, e.g. "billing-worker".
//   - Detail: optional context supplied by the reporter.
//   - RequestID: X-Request-ID of the submitting HTTP request.
type Report struct {
	ID           string    `json:"id"                      gorm:"type:char(36);primaryKey"`
	Key          string    `json:"key"                     gorm:"type:varchar(64);not null;index:idx_reports_key_created,priority:1"`
	Code         int       `json:"code"                    gorm:"not null;index"`
	Kind         string    `json:"kind"                    gorm:"type:varchar(32);not null"`
	Message      string    `json:"message"                 gorm:"type:text;not null"`
	RequestedKey string    `json:"requested_key,omitempty" gorm:"type:varchar(128)"`
	Source       string    `json:"source"                  gorm:"type:varchar(128);not null"`
	Detail       string    `json:"detail,omitempty"        gorm:"type:text"`
	RequestID    string    `json:"request_id,omitempty"    gorm:"type:varchar(64)"`
	CreatedAt    time.Time `json:"created_at"              gorm:"not null;index:idx_reports_key_created,priority:2"`
}

// TableName returns the database table name for Report.
func (Report) TableName() string { return "reports" }

// KeyCount is one row of the per-key report histogram.
type KeyCount struct {
	Key   string `json:"key"`
	Code  int    `json:"code"`
	Count int64  `json:"count"`
}
