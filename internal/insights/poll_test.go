package insights

import (
	"context"
	"testing"
	"time"

	"github.com/xtxerr/siphon/internal/errors"
)

func TestAwait_CompletesAfterPending(t *testing.T) {
	fake := &FakeClient{
		Rows:         []Row{{Timestamp: "2025-08-29 10:00:00.000", Message: "{}"}},
		PendingPolls: 2,
	}

	rows, err := Await(context.Background(), fake, "q1", time.Millisecond, time.Second)
	if err != nil {
		t.Fatalf("await: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("expected 1 row, got %d", len(rows))
	}
}

func TestAwait_Timeout(t *testing.T) {
	fake := &FakeClient{PendingPolls: 1 << 30}

	_, err := Await(context.Background(), fake, "q1", time.Millisecond, 20*time.Millisecond)
	if !errors.Is(err, errors.ErrQueryTimeout) {
		t.Errorf("expected ErrQueryTimeout, got %v", err)
	}
}

func TestAwait_Failed(t *testing.T) {
	fake := &FakeClient{Fail: true}

	_, err := Await(context.Background(), fake, "q1", time.Millisecond, time.Second)
	if !errors.Is(err, errors.ErrQueryFailed) {
		t.Errorf("expected ErrQueryFailed, got %v", err)
	}
}

func TestAwait_ContextCancel(t *testing.T) {
	fake := &FakeClient{PendingPolls: 1 << 30}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Await(ctx, fake, "q1", time.Millisecond, time.Second)
	if err == nil {
		t.Error("expected error after context cancellation")
	}
}
