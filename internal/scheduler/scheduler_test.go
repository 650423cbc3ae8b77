package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/xtxerr/siphon/internal/pipeline"
)

type countingRunner struct {
	runs      atomic.Int64
	testModes chan bool
}

func (r *countingRunner) Run(ctx context.Context, testMode bool) pipeline.Result {
	r.runs.Add(1)
	if r.testModes != nil {
		r.testModes <- testMode
	}
	return pipeline.Result{StatusCode: 200, Body: pipeline.SuccessBody{}}
}

func TestUntilDaily(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*3600)
	s := New(Config{DailyAt: "00:30", Location: loc}, &countingRunner{})

	// 00:00 local: next run in 30 minutes.
	s.now = func() time.Time {
		return time.Date(2025, 8, 29, 17, 0, 0, 0, time.UTC) // 00:00 local Aug 30
	}
	if d := s.untilDaily(); d != 30*time.Minute {
		t.Errorf("expected 30m, got %s", d)
	}

	// 01:00 local: already past, next run tomorrow.
	s.now = func() time.Time {
		return time.Date(2025, 8, 29, 18, 0, 0, 0, time.UTC) // 01:00 local Aug 30
	}
	if d := s.untilDaily(); d != 23*time.Hour+30*time.Minute {
		t.Errorf("expected 23h30m, got %s", d)
	}
}

func TestRun_IncrementalFires(t *testing.T) {
	runner := &countingRunner{testModes: make(chan bool, 4)}
	s := New(Config{IncrementalEvery: 5 * time.Millisecond}, runner)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	// Incremental runs use the current-day window.
	if testMode := <-runner.testModes; !testMode {
		t.Error("incremental schedule must run in test (incremental) mode")
	}

	cancel()
	<-done

	if runner.runs.Load() == 0 {
		t.Error("expected at least one scheduled run")
	}
}

func TestRun_CancelStops(t *testing.T) {
	s := New(Config{}, &countingRunner{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.Run(ctx); err == nil {
		t.Error("expected context error on cancellation")
	}
}
