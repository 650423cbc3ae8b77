package pipeline

import (
	"sync"
	"time"

	"github.com/DataDog/sketches-go/ddsketch"
)

// Stats tracks export run statistics across the daemon's lifetime.
// Latency and partition-size distributions use DDSketch so the admin
// endpoint can report quantiles without retaining raw observations.
type Stats struct {
	mu sync.Mutex

	runs          int64
	failures      int64
	totalExported int64
	lastRun       time.Time

	queryLatency  *ddsketch.DDSketch // milliseconds
	partitionSize *ddsketch.DDSketch // records per written partition
}

// NewStats creates an empty stats tracker with 1% relative accuracy.
func NewStats() *Stats {
	s := &Stats{}
	if sk, err := ddsketch.NewDefaultDDSketch(0.01); err == nil {
		s.queryLatency = sk
	}
	if sk, err := ddsketch.NewDefaultDDSketch(0.01); err == nil {
		s.partitionSize = sk
	}
	return s
}

// ObserveQueryLatency records one query round trip.
func (s *Stats) ObserveQueryLatency(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.queryLatency != nil && d > 0 {
		// DDSketch rejects non-positive values; sub-millisecond round
		// trips clamp to 1ms.
		ms := float64(d.Milliseconds())
		if ms < 1 {
			ms = 1
		}
		s.queryLatency.Add(ms)
	}
}

// ObservePartitionSize records the record count of one written partition.
func (s *Stats) ObservePartitionSize(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.partitionSize != nil && n > 0 {
		s.partitionSize.Add(float64(n))
	}
}

// RecordRun records the outcome of one invocation.
func (s *Stats) RecordRun(exported int, failed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs++
	if failed {
		s.failures++
	}
	s.totalExported += int64(exported)
	s.lastRun = time.Now()
}

// Quantiles summarizes a distribution.
type Quantiles struct {
	P50 float64 `json:"p50"`
	P90 float64 `json:"p90"`
	P99 float64 `json:"p99"`
}

// Snapshot is a point-in-time view of the stats.
type Snapshot struct {
	Runs             int64     `json:"runs"`
	Failures         int64     `json:"failures"`
	TotalExported    int64     `json:"total_exported"`
	LastRun          string    `json:"last_run,omitempty"`
	QueryLatencyMs   Quantiles `json:"query_latency_ms"`
	PartitionRecords Quantiles `json:"partition_records"`
}

// Snapshot returns the current statistics.
func (s *Stats) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Runs:          s.runs,
		Failures:      s.failures,
		TotalExported: s.totalExported,
	}
	if !s.lastRun.IsZero() {
		snap.LastRun = s.lastRun.UTC().Format(time.RFC3339)
	}
	snap.QueryLatencyMs = quantiles(s.queryLatency)
	snap.PartitionRecords = quantiles(s.partitionSize)
	return snap
}

func quantiles(sk *ddsketch.DDSketch) Quantiles {
	var q Quantiles
	if sk == nil || sk.IsEmpty() {
		return q
	}
	if v, err := sk.GetValueAtQuantile(0.5); err == nil {
		q.P50 = v
	}
	if v, err := sk.GetValueAtQuantile(0.9); err == nil {
		q.P90 = v
	}
	if v, err := sk.GetValueAtQuantile(0.99); err == nil {
		q.P99 = v
	}
	return q
}
