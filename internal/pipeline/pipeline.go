// Package pipeline orchestrates one export invocation.
//
// Flow: compute window -> query -> group by local date -> per partition
// {read existing -> combine -> write -> append ledger}. Repeated runs
// over the same window converge: record identity makes the merge a set
// union, so a partition never accumulates duplicates.
//
// One invocation runs to completion synchronously; the only suspension
// point is polling the query engine. Concurrent invocations within one
// process are serialized by a run mutex; nothing serializes runs across
// processes (see the ledger package).
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/xtxerr/siphon/internal/blob"
	"github.com/xtxerr/siphon/internal/codec"
	"github.com/xtxerr/siphon/internal/errors"
	"github.com/xtxerr/siphon/internal/insights"
	"github.com/xtxerr/siphon/internal/ledger"
	"github.com/xtxerr/siphon/internal/logging"
	"github.com/xtxerr/siphon/internal/merge"
	"github.com/xtxerr/siphon/internal/partition"
	"github.com/xtxerr/siphon/internal/record"
)

// Config holds the pipeline's effective settings.
type Config struct {
	// LogGroup is the source log group queried for records.
	LogGroup string

	// Prefix is the object key prefix in the target bucket.
	Prefix string

	// Format is the partition object format.
	Format codec.Format

	// Category is the log category selected for export.
	Category string

	// TZOffsetHours is the fixed local timezone offset.
	TZOffsetHours int

	// QueryPollInterval and QueryTimeout bound the query poll loop.
	QueryPollInterval time.Duration
	QueryTimeout      time.Duration
}

// Pipeline drives one export invocation end to end.
type Pipeline struct {
	cfg   Config
	query insights.Client
	parts *partition.Store
	runs  *ledger.Ledger
	stats *Stats
	loc   *time.Location
	log   *slog.Logger

	// runMu serializes invocations: triggered and scheduled runs share
	// one pipeline, and an interleaved read-modify-write would lose
	// records.
	runMu sync.Mutex

	// now is injectable for tests.
	now func() time.Time
}

// New creates a pipeline over explicitly constructed collaborators.
// No hidden process-wide clients: the query client and blob store are
// passed in by the caller.
func New(cfg Config, query insights.Client, store blob.Store) *Pipeline {
	return &Pipeline{
		cfg:   cfg,
		query: query,
		parts: partition.NewStore(store, cfg.Prefix, cfg.Format),
		runs:  ledger.New(store, cfg.Prefix),
		stats: NewStats(),
		loc:   Location(cfg.TZOffsetHours),
		log:   logging.Component("pipeline"),
		now:   time.Now,
	}
}

// SetNow overrides the pipeline's clock. Tests only.
func (p *Pipeline) SetNow(now func() time.Time) {
	p.now = now
}

// Stats returns the pipeline's run statistics tracker.
func (p *Pipeline) Stats() *Stats {
	return p.stats
}

// Ledger returns the pipeline's run ledger.
func (p *Pipeline) Ledger() *ledger.Ledger {
	return p.runs
}

// Result is the invocation output, mirroring the trigger contract.
type Result struct {
	StatusCode int `json:"statusCode"`
	Body       any `json:"body"`
}

// SuccessBody is the body of a successful invocation.
type SuccessBody struct {
	Message       string   `json:"message"`
	FilesExported []string `json:"files_exported,omitempty"`
	Date          string   `json:"date,omitempty"`
	TotalLogs     int      `json:"total_logs"`
}

// Run executes one invocation. testMode selects the incremental window;
// otherwise the completed previous day is exported.
func (p *Pipeline) Run(ctx context.Context, testMode bool) Result {
	p.runMu.Lock()
	defer p.runMu.Unlock()

	runID := uuid.NewString()
	ctx = logging.ContextWithRunID(ctx, runID)

	window := ComputeWindow(p.now(), p.loc, testMode)
	p.log.Info("export starting",
		"run_id", runID,
		"mode", window.Mode,
		"log_group", p.cfg.LogGroup,
		"window_start", window.Start.Format(time.RFC3339),
		"window_end", window.End.Format(time.RFC3339),
		"format", p.cfg.Format)

	queryID, err := p.query.StartQuery(ctx, p.cfg.LogGroup, window.Start, window.End, insights.UserActionQuery)
	if err != nil {
		return p.fail(errors.Wrap(errors.ErrQueryFailed, err.Error()))
	}

	queryStart := time.Now()
	rows, err := insights.Await(ctx, p.query, queryID, p.cfg.QueryPollInterval, p.cfg.QueryTimeout)
	if err != nil {
		return p.fail(err)
	}
	p.stats.ObserveQueryLatency(time.Since(queryStart))

	records := p.parseRows(rows)
	if len(records) == 0 {
		p.log.Info("no matching records", "date", window.DateString())
		p.stats.RecordRun(0, false)
		return Result{
			StatusCode: 200,
			Body: SuccessBody{
				Message:   fmt.Sprintf("No %s logs found for %s", p.cfg.Category, window.DateString()),
				Date:      window.DateString(),
				TotalLogs: 0,
			},
		}
	}

	groups := p.groupByDate(records)

	keys := make([]partition.Key, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].DateString() < keys[j].DateString()
	})

	var files []string
	for _, k := range keys {
		objKey, err := p.exportPartition(ctx, k, groups[k])
		if err != nil {
			return p.fail(err)
		}
		files = append(files, objKey)
	}

	p.stats.RecordRun(len(records), false)
	return Result{
		StatusCode: 200,
		Body: SuccessBody{
			Message:       "Export completed successfully",
			FilesExported: files,
			TotalLogs:     len(records),
		},
	}
}

// parseRows filters and parses raw query rows. Malformed rows are
// skipped, never fatal; each surviving record gets its identity assigned.
func (p *Pipeline) parseRows(rows []insights.Row) []record.LogRecord {
	records := make([]record.LogRecord, 0, len(rows))
	skipped := 0

	for _, row := range rows {
		rec, err := record.ParseRaw(row.Message, row.Timestamp, p.cfg.Category)
		if err != nil {
			skipped++
			continue
		}
		if rec == nil {
			continue
		}
		record.AssignID(rec)
		records = append(records, *rec)
	}

	if skipped > 0 {
		p.log.Warn("skipped malformed rows", "count", skipped)
	}
	p.log.Info("records fetched", "total", len(records))
	return records
}

// groupByDate buckets records by their own local calendar date. The date
// is recomputed from each record's timestamp, not taken from the window:
// clock skew or late arrivals can place a record on a neighboring date.
// Unparseable timestamps go to the sentinel unknown partition.
func (p *Pipeline) groupByDate(records []record.LogRecord) map[partition.Key][]record.LogRecord {
	groups := make(map[partition.Key][]record.LogRecord)

	for _, rec := range records {
		key := partition.UnknownKey
		if date, err := rec.LocalDate(p.loc); err == nil {
			key = partition.KeyForDate(date)
		} else {
			p.log.Warn("routing record with unparseable timestamp to unknown partition",
				"timestamp", rec.Timestamp, "record_id", rec.RecordID)
		}
		groups[key] = append(groups[key], rec)
	}
	return groups
}

// exportPartition merges incoming records into one partition and records
// the run in the ledger.
func (p *Pipeline) exportPartition(ctx context.Context, k partition.Key, incoming []record.LogRecord) (string, error) {
	ctx = logging.ContextWithPartitionDate(ctx, k.DateString())
	log := logging.WithContext(ctx).With("component", "pipeline")

	existing, found, err := p.parts.Read(ctx, k)
	if err != nil {
		// A corrupt existing object fails the run: overwriting it would
		// destroy the prior record set along with the bytes an operator
		// could still repair. The next scheduled run is the retry.
		if errors.IsFatal(err) {
			return "", err
		}
		// Transient read errors are indistinguishable from absence here.
		// Treating them as absent risks dropping previously exported
		// records for this partition until a later run re-merges them.
		log.Warn("reading existing partition failed, treating as absent", "error", err)
		existing = nil
	}

	merged := merge.Combine(existing, incoming)

	objKey, err := p.parts.Write(ctx, k, merged)
	if err != nil {
		return "", err
	}
	p.stats.ObservePartitionSize(len(merged))

	runRec := ledger.RunRecord{
		RunTimestamp:            p.now().UTC().Format(time.RFC3339),
		Date:                    k.DateString(),
		TotalRecordsInPartition: len(merged),
		NewRecordsProcessed:     len(incoming),
	}
	if err := p.runs.Append(ctx, k, runRec); err != nil {
		// Partition write already committed; a lost ledger line does not
		// roll it back.
		log.Warn("ledger append failed", "error", err)
	}

	log.Info("partition exported",
		"records", len(merged),
		"incoming", len(incoming),
		"had_existing", found)
	return objKey, nil
}

// fail records and reports a fatal invocation error.
func (p *Pipeline) fail(err error) Result {
	p.log.Error("export failed", "error", err)
	p.stats.RecordRun(0, true)
	return Result{
		StatusCode: 500,
		Body:       fmt.Sprintf("Error: %s", err),
	}
}
