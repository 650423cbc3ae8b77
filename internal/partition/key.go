// Package partition reads and writes the blob object holding one day's
// records.
//
// A partition is identified by its calendar date in the fixed local
// timezone. Records whose timestamp cannot be parsed go to the sentinel
// unknown partition instead of being dropped.
package partition

import (
	"fmt"
	"path"
	"time"

	"github.com/xtxerr/siphon/internal/codec"
)

// Key identifies one day partition, or the sentinel unknown partition.
type Key struct {
	Year  int
	Month int
	Day   int

	// Unknown marks the sentinel partition for records with unparseable
	// timestamps. Year/Month/Day are zero when set.
	Unknown bool
}

// UnknownKey is the sentinel partition key.
var UnknownKey = Key{Unknown: true}

// KeyForDate derives the partition key from a local calendar date.
func KeyForDate(t time.Time) Key {
	return Key{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}
}

// DateString returns "YYYY-MM-DD", or "unknown" for the sentinel key.
func (k Key) DateString() string {
	if k.Unknown {
		return "unknown"
	}
	return fmt.Sprintf("%04d-%02d-%02d", k.Year, k.Month, k.Day)
}

// datePath returns the hive-style date path segment.
func (k Key) datePath() string {
	if k.Unknown {
		return "unknown"
	}
	return fmt.Sprintf("year=%04d/month=%02d/day=%02d", k.Year, k.Month, k.Day)
}

// ObjectKey returns the partition object key for the given format:
// {prefix}/year=Y/month=M/day=D/user_actions.{ext}
func (k Key) ObjectKey(prefix string, f codec.Format) string {
	return path.Join(prefix, k.datePath(), "user_actions."+f.Ext())
}

// LedgerKey returns the run ledger object key for this partition:
// {prefix}/_metadata/year=Y/month=M/day=D/export_runs.jsonl
func (k Key) LedgerKey(prefix string) string {
	return path.Join(prefix, "_metadata", k.datePath(), "export_runs.jsonl")
}
