package insights

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"

	"github.com/xtxerr/siphon/internal/errors"
)

// CloudWatchClient implements Client against CloudWatch Logs Insights.
type CloudWatchClient struct {
	api *cloudwatchlogs.Client
}

// NewCloudWatchClient creates a client using the default AWS credential
// chain from the environment.
func NewCloudWatchClient(ctx context.Context) (*CloudWatchClient, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load aws config")
	}
	return &CloudWatchClient{api: cloudwatchlogs.NewFromConfig(cfg)}, nil
}

// StartQuery starts an Insights query over [start, end].
func (c *CloudWatchClient) StartQuery(ctx context.Context, logGroup string, start, end time.Time, query string) (string, error) {
	out, err := c.api.StartQuery(ctx, &cloudwatchlogs.StartQueryInput{
		LogGroupName: aws.String(logGroup),
		StartTime:    aws.Int64(start.Unix()),
		EndTime:      aws.Int64(end.Unix()),
		QueryString:  aws.String(query),
	})
	if err != nil {
		return "", errors.Wrap(err, "start query")
	}
	return aws.ToString(out.QueryId), nil
}

// QueryResults polls a started query once.
func (c *CloudWatchClient) QueryResults(ctx context.Context, queryID string) (*Poll, error) {
	out, err := c.api.GetQueryResults(ctx, &cloudwatchlogs.GetQueryResultsInput{
		QueryId: aws.String(queryID),
	})
	if err != nil {
		return nil, errors.Wrap(err, "get query results")
	}

	poll := &Poll{Status: mapStatus(out.Status)}
	if poll.Status != StatusComplete {
		return poll, nil
	}

	poll.Rows = make([]Row, 0, len(out.Results))
	for _, fields := range out.Results {
		var row Row
		for _, f := range fields {
			switch aws.ToString(f.Field) {
			case "@timestamp":
				row.Timestamp = aws.ToString(f.Value)
			case "@message":
				row.Message = aws.ToString(f.Value)
			}
		}
		if row.Timestamp == "" && row.Message == "" {
			continue
		}
		poll.Rows = append(poll.Rows, row)
	}
	return poll, nil
}

// mapStatus folds the engine's status set into the three states the
// pipeline distinguishes. Scheduled and Running are both Pending.
func mapStatus(s types.QueryStatus) Status {
	switch s {
	case types.QueryStatusComplete:
		return StatusComplete
	case types.QueryStatusFailed, types.QueryStatusCancelled, types.QueryStatusTimeout:
		return StatusFailed
	default:
		return StatusPending
	}
}
