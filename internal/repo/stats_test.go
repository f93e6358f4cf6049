package repo

import (
	"context"
	"testing"
	"time"

	"github.com/tbourn/go-error-catalog/internal/domain"
)

func TestReportsStats_CountError_NoTable(t *testing.T) {
	db := newTestDB(t /* no migrations */)
	_, _, err := ReportsStats(context.Background(), db, "")
	if err == nil {
		t.Fatalf("expected error due to missing reports table")
	}
}

func TestReportsStats_ZeroRows(t *testing.T) {
	db := newTestDB(t, &domain.Report{})
	count, latest, err := ReportsStats(context.Background(), db, "userExists")
	if err != nil {
		t.Fatalf("ReportsStats error: %v", err)
	}
	if count != 0 || latest != nil {
		t.Fatalf("expected (0, nil), got (%d, %v)", count, latest)
	}
}

func TestReportsStats_Success_FilterAndMax(t *testing.T) {
	db := newTestDB(t, &domain.Report{})

	t1 := time.Date(2025, 1, 2, 15, 0, 0, 0, time.UTC)
	t2 := time.Date(2025, 3, 4, 10, 30, 0, 0, time.UTC) // max for userNotFound
	t3 := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)   // max overall

	seedReport(t, db, "r1", "userNotFound", 1001, t1)
	seedReport(t, db, "r2", "userNotFound", 1001, t2)
	seedReport(t, db, "r3", "sessionExpired", 1103, t3)

	count, latest, err := ReportsStats(context.Background(), db, "userNotFound")
	if err != nil {
		t.Fatalf("ReportsStats error: %v", err)
	}
	if count != 2 || latest == nil || !latest.Equal(t2) {
		t.Fatalf("filtered stats = (%d, %v); want (2, %v)", count, latest, t2)
	}

	count, latest, err = ReportsStats(context.Background(), db, "")
	if err != nil {
		t.Fatalf("ReportsStats error: %v", err)
	}
	if count != 3 || latest == nil || !latest.Equal(t3) {
		t.Fatalf("overall stats = (%d, %v); want (3, %v)", count, latest, t3)
	}
}

func TestCountByKey_GroupsAndOrdersByCode(t *testing.T) {
	db := newTestDB(t, &domain.Report{})
	now := time.Now().UTC()

	seedReport(t, db, "a", "sessionExpired", 1103, now)
	seedReport(t, db, "b", "userExists", 1000, now)
	seedReport(t, db, "c", "sessionExpired", 1103, now)
	seedReport(t, db, "d", "errorWhileError", 9000, now)

	got, err := CountByKey(context.Background(), db)
	if err != nil {
		t.Fatalf("CountByKey: %v", err)
	}
	want := []domain.KeyCount{
		{Key: "userExists", Code: 1000, Count: 1},
		{Key: "sessionExpired", Code: 1103, Count: 2},
		{Key: "errorWhileError", Code: 9000, Count: 1},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d rows, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("row %d = %+v; want %+v", i, got[i], want[i])
		}
	}
}

func TestCountByKey_Empty(t *testing.T) {
	db := newTestDB(t, &domain.Report{})
	got, err := CountByKey(context.Background(), db)
	if err != nil || len(got) != 0 {
		t.Fatalf("expected empty histogram, got %+v, %v", got, err)
	}
}
