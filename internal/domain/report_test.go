package domain

import (
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newDomainDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:domain_reports?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	return db
}

func TestTableNames(t *testing.T) {
	if (Report{}).TableName() != "reports" {
		t.Fatalf("Report.TableName() = %q; want %q", (Report{}).TableName(), "reports")
	}
	if (Idempotency{}).TableName() != "idempotency" {
		t.Fatalf("Idempotency.TableName() = %q; want %q", (Idempotency{}).TableName(), "idempotency")
	}
}

func TestReport_Migration_Indexes_AndNotNull(t *testing.T) {
	db := newDomainDB(t)
	if err := db.AutoMigrate(&Report{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	m := db.Migrator()
	if !m.HasTable(&Report{}) {
		t.Fatalf("expected reports table")
	}
	if !m.HasIndex(&Report{}, "idx_reports_key_created") {
		t.Fatalf("expected composite index idx_reports_key_created")
	}

	now := time.Now().UTC()
	ok := &Report{
		ID: "r1", Key: "userNotFound", Code: 1001, Kind: "not_found",
		Message: "User not found", Source: "billing", CreatedAt: now,
	}
	if err := db.Create(ok).Error; err != nil {
		t.Fatalf("insert: %v", err)
	}

	var got Report
	if err := db.First(&got, "id = ?", "r1").Error; err != nil {
		t.Fatalf("readback: %v", err)
	}
	if got.Key != "userNotFound" || got.Code != 1001 || got.Source != "billing" || got.RequestedKey != "" {
		t.Fatalf("unexpected row: %+v", got)
	}

	err := db.Exec(`INSERT INTO reports (id, key, code, kind, message, source, created_at) VALUES (?,?,?,?,?,?,?)`,
		"r2", nil, 1001, "not_found", "User not found", "billing", now).Error
	if err == nil {
		t.Fatalf("expected NOT NULL violation on key")
	}
}
