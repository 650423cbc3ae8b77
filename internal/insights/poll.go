package insights

import (
	"context"
	"time"

	"github.com/xtxerr/siphon/internal/errors"
	"github.com/xtxerr/siphon/internal/logging"
)

var log = logging.Component("insights")

// Await polls a started query until completion, failure, or timeout.
//
// Polling is the pipeline's only suspension point; the timeout is a hard
// bound after which the run fails with ErrQueryTimeout.
func Await(ctx context.Context, c Client, queryID string, interval, timeout time.Duration) ([]Row, error) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		poll, err := c.QueryResults(ctx, queryID)
		if err != nil {
			return nil, errors.Wrapf(err, "poll query %s", queryID)
		}

		switch poll.Status {
		case StatusComplete:
			return poll.Rows, nil
		case StatusFailed:
			return nil, errors.Wrapf(errors.ErrQueryFailed, "query %s", queryID)
		}

		log.Debug("query pending", "query_id", queryID)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline.C:
			return nil, errors.Wrapf(errors.ErrQueryTimeout, "query %s after %s", queryID, timeout)
		case <-ticker.C:
		}
	}
}
