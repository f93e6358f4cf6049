package repo

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-error-catalog/internal/domain"
)

func newTestDB(t *testing.T, migrate ...any) *gorm.DB {
	t.Helper()
	// Unique DB per test to avoid schema leaking across tests.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if len(migrate) > 0 {
		if err := db.AutoMigrate(migrate...); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	return db
}

func seedReport(t *testing.T, db *gorm.DB, id, key string, code int, at time.Time) {
	t.Helper()
	r := &domain.Report{
		ID: id, Key: key, Code: code, Kind: "bad_request",
		Message: "m", Source: "test", CreatedAt: at,
	}
	if err := db.Create(r).Error; err != nil {
		t.Fatalf("seed %s: %v", id, err)
	}
}

func TestCreateReport_AssignsIDAndTimestamp(t *testing.T) {
	db := newTestDB(t, &domain.Report{})
	ctx := context.Background()

	r := &domain.Report{Key: "forbidden", Code: 1101, Kind: "unauthorized", Message: "User not authorized to make this call", Source: "cron"}
	before := time.Now().UTC()
	if err := CreateReport(ctx, db, r); err != nil {
		t.Fatalf("CreateReport: %v", err)
	}
	if r.ID == "" || r.CreatedAt.Before(before.Add(-time.Second)) {
		t.Fatalf("expected id and timestamp to be set: %+v", r)
	}

	got, err := GetReport(ctx, db, r.ID)
	if err != nil {
		t.Fatalf("GetReport: %v", err)
	}
	if got.Key != "forbidden" || got.Code != 1101 || got.Source != "cron" {
		t.Fatalf("unexpected readback: %+v", got)
	}
}

func TestCreateReport_KeepsExplicitFields(t *testing.T) {
	db := newTestDB(t, &domain.Report{})
	at := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	r := &domain.Report{ID: "fixed", Key: "userExists", Code: 1000, Kind: "bad_request", Message: "x", Source: "s", CreatedAt: at}
	if err := CreateReport(context.Background(), db, r); err != nil {
		t.Fatalf("CreateReport: %v", err)
	}
	if r.ID != "fixed" || !r.CreatedAt.Equal(at) {
		t.Fatalf("explicit fields overwritten: %+v", r)
	}
}

func TestGetReport_NotFound(t *testing.T) {
	db := newTestDB(t, &domain.Report{})
	_, err := GetReport(context.Background(), db, "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListReportsPage_NewestFirst_FilterAndPaging(t *testing.T) {
	db := newTestDB(t, &domain.Report{})
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	seedReport(t, db, "a", "userNotFound", 1001, base)
	seedReport(t, db, "b", "userNotFound", 1001, base.Add(time.Minute))
	seedReport(t, db, "c", "forbidden", 1101, base.Add(2*time.Minute))
	seedReport(t, db, "d", "userNotFound", 1001, base.Add(3*time.Minute))

	all, err := ListReportsPage(ctx, db, "", 0, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 4 || all[0].ID != "d" || all[3].ID != "a" {
		t.Fatalf("unexpected order: %+v", ids(all))
	}

	page2, err := ListReportsPage(ctx, db, "userNotFound", 1, 1)
	if err != nil {
		t.Fatalf("list filtered: %v", err)
	}
	if len(page2) != 1 || page2[0].ID != "b" {
		t.Fatalf("unexpected filtered page: %+v", ids(page2))
	}

	n, err := CountReports(ctx, db, "userNotFound")
	if err != nil || n != 3 {
		t.Fatalf("CountReports = %d, %v; want 3", n, err)
	}
	n, err = CountReports(ctx, db, "")
	if err != nil || n != 4 {
		t.Fatalf("CountReports(all) = %d, %v; want 4", n, err)
	}
}

func TestListReportsPage_TieBrokenByID(t *testing.T) {
	db := newTestDB(t, &domain.Report{})
	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	seedReport(t, db, "r1", "forbidden", 1101, at)
	seedReport(t, db, "r2", "forbidden", 1101, at)

	got, err := ListReportsPage(context.Background(), db, "", 0, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].ID != "r2" || got[1].ID != "r1" {
		t.Fatalf("unexpected tie order: %v", ids(got))
	}
}

func TestListReportsPage_ErrorWithoutTable(t *testing.T) {
	db := newTestDB(t)
	if _, err := ListReportsPage(context.Background(), db, "", 0, 10); err == nil {
		t.Fatalf("expected error due to missing reports table")
	}
}

func ids(rs []domain.Report) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.ID
	}
	return out
}
