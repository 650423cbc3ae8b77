// Package insights is the boundary to the log store's query engine.
//
// A query is started against a log group for a time window, then polled
// until it completes, fails, or the hard timeout elapses. Rows come back
// as (timestamp, raw message) pairs; filtering and parsing happen in the
// pipeline.
package insights

import (
	"context"
	"time"
)

// Status is the state of a started query.
type Status string

const (
	StatusPending  Status = "Pending"
	StatusComplete Status = "Complete"
	StatusFailed   Status = "Failed"
)

// Row is one result row: the query engine's row timestamp and the raw
// log message.
type Row struct {
	Timestamp string
	Message   string
}

// Poll is one polling observation of a started query.
type Poll struct {
	Status Status
	Rows   []Row
}

// Client starts queries and polls their results.
type Client interface {
	// StartQuery starts a query over [start, end] and returns an opaque
	// query handle.
	StartQuery(ctx context.Context, logGroup string, start, end time.Time, query string) (string, error)

	// QueryResults returns the current status of a started query, with
	// rows populated once Status is Complete.
	QueryResults(ctx context.Context, queryID string) (*Poll, error)
}

// UserActionQuery selects user_action log lines in row-timestamp order.
// The coarse regex filter narrows server-side; the pipeline re-checks the
// parsed category field, since the regex can match inside string values.
const UserActionQuery = `fields @timestamp, @message
| filter @message like /"category":\s*"user_action"/
| sort @timestamp asc`
