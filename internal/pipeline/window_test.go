package pipeline

import (
	"testing"
	"time"
)

func TestComputeWindow_CompletedDay(t *testing.T) {
	loc := Location(7)
	// 01:30 local on Aug 30 (18:30 UTC Aug 29).
	now := time.Date(2025, 8, 29, 18, 30, 0, 0, time.UTC)

	w := ComputeWindow(now, loc, false)
	if w.Mode != ModeCompletedDay {
		t.Errorf("expected completed-day mode, got %s", w.Mode)
	}
	if w.DateString() != "2025-08-29" {
		t.Errorf("expected window date 2025-08-29, got %s", w.DateString())
	}
	if w.Start.Hour() != 0 || w.Start.Minute() != 0 {
		t.Errorf("window must start at local midnight, got %s", w.Start)
	}
	if got := w.End.Sub(w.Start); got != 24*time.Hour-time.Microsecond {
		t.Errorf("expected window span of one day minus 1us, got %s", got)
	}
}

func TestComputeWindow_Incremental(t *testing.T) {
	loc := Location(7)
	now := time.Date(2025, 8, 30, 5, 0, 0, 0, time.UTC) // 12:00 local

	w := ComputeWindow(now, loc, true)
	if w.Mode != ModeIncremental {
		t.Errorf("expected incremental mode, got %s", w.Mode)
	}
	if w.DateString() != "2025-08-30" {
		t.Errorf("expected window date 2025-08-30, got %s", w.DateString())
	}
	if !w.End.Equal(now.In(loc)) {
		t.Errorf("incremental window must end at now, got %s", w.End)
	}
}

func TestLocation(t *testing.T) {
	loc := Location(7)
	utc := time.Date(2025, 8, 29, 22, 0, 0, 0, time.UTC)
	if got := utc.In(loc).Day(); got != 30 {
		t.Errorf("22:00 UTC must be the next day in UTC+7, got day %d", got)
	}
}
