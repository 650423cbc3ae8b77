package insights

import (
	"context"
	"sync"
	"time"
)

// FakeClient is an in-memory Client for tests. It completes after
// PendingPolls observations, or fails permanently when Fail is set.
type FakeClient struct {
	mu sync.Mutex

	// Rows returned once the query completes.
	Rows []Row

	// PendingPolls is how many polls report Pending before completion.
	PendingPolls int

	// Fail makes every poll report Failed.
	Fail bool

	// StartErr, when set, is returned from StartQuery.
	StartErr error

	// Recorded calls.
	Started []StartedQuery
	polls   int
}

// StartedQuery records one StartQuery invocation.
type StartedQuery struct {
	LogGroup string
	Start    time.Time
	End      time.Time
	Query    string
}

func (f *FakeClient) StartQuery(ctx context.Context, logGroup string, start, end time.Time, query string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.StartErr != nil {
		return "", f.StartErr
	}
	f.Started = append(f.Started, StartedQuery{LogGroup: logGroup, Start: start, End: end, Query: query})
	return "fake-query-1", nil
}

func (f *FakeClient) QueryResults(ctx context.Context, queryID string) (*Poll, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.Fail {
		return &Poll{Status: StatusFailed}, nil
	}
	if f.polls < f.PendingPolls {
		f.polls++
		return &Poll{Status: StatusPending}, nil
	}
	return &Poll{Status: StatusComplete, Rows: f.Rows}, nil
}
