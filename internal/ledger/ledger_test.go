package ledger

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xtxerr/siphon/internal/blob"
	"github.com/xtxerr/siphon/internal/partition"
)

func TestAppend_Accumulates(t *testing.T) {
	mem := blob.NewMemStore()
	l := New(mem, "user-actions")
	k := partition.KeyForDate(time.Date(2025, 8, 29, 0, 0, 0, 0, time.UTC))

	for i := 1; i <= 3; i++ {
		rec := RunRecord{
			RunTimestamp:            time.Date(2025, 8, 30, i, 0, 0, 0, time.UTC).Format(time.RFC3339),
			Date:                    k.DateString(),
			TotalRecordsInPartition: i * 100,
			NewRecordsProcessed:     100,
		}
		if err := l.Append(context.Background(), k, rec); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	data, ok := mem.Object(k.LedgerKey("user-actions"))
	if !ok {
		t.Fatal("expected ledger object to exist")
	}
	if got := bytes.Count(data, []byte("\n")); got != 3 {
		t.Errorf("expected 3 lines, got %d", got)
	}

	runs, err := l.Runs(context.Background(), k)
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(runs))
	}
	// Append order is preserved.
	for i, r := range runs {
		if r.TotalRecordsInPartition != (i+1)*100 {
			t.Errorf("run %d: expected total %d, got %d", i, (i+1)*100, r.TotalRecordsInPartition)
		}
	}
}

func TestAppend_PutFailure(t *testing.T) {
	mem := blob.NewMemStore()
	mem.PutErr = func(key string) error { return errors.New("injected") }
	l := New(mem, "user-actions")

	err := l.Append(context.Background(), partition.UnknownKey, RunRecord{Date: "unknown"})
	if err == nil {
		t.Fatal("expected error when put fails")
	}
}

func TestRuns_AbsentLedger(t *testing.T) {
	l := New(blob.NewMemStore(), "user-actions")
	runs, err := l.Runs(context.Background(), partition.UnknownKey)
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	if runs != nil {
		t.Errorf("expected empty history, got %v", runs)
	}
}

func TestRuns_SkipsBadLines(t *testing.T) {
	mem := blob.NewMemStore()
	k := partition.KeyForDate(time.Date(2025, 8, 29, 0, 0, 0, 0, time.UTC))
	raw := `{"runTimestamp":"2025-08-30T01:00:00Z","date":"2025-08-29","totalRecordsInPartition":10,"newRecordsProcessed":10}
garbage line
{"runTimestamp":"2025-08-30T02:00:00Z","date":"2025-08-29","totalRecordsInPartition":20,"newRecordsProcessed":10}
`
	mem.Put(context.Background(), k.LedgerKey("user-actions"), []byte(raw), "application/x-ndjson")

	l := New(mem, "user-actions")
	runs, err := l.Runs(context.Background(), k)
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 parseable runs, got %d", len(runs))
	}
}
