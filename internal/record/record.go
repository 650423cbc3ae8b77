// Package record defines the user-action log record and its content
// identity.
//
// A record is a JSON object emitted by application loggers. The recognized
// fields are typed explicitly; everything under metadata is carried opaquely.
// Unrecognized top-level fields are dropped on parse.
package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/valyala/fastjson"

	"github.com/xtxerr/siphon/internal/errors"
)

// LogRecord is one user-action log record.
//
// UserID holds either a string or a json.Number, matching whatever the
// source emitted. RecordID is derived, never part of the identity input.
type LogRecord struct {
	RecordID  string         `json:"recordId,omitempty"`
	Timestamp string         `json:"timestamp"`
	Level     string         `json:"level,omitempty"`
	Service   string         `json:"service,omitempty"`
	Category  string         `json:"category,omitempty"`
	Message   string         `json:"message,omitempty"`
	UserID    any            `json:"userId,omitempty"`
	UserName  string         `json:"userName,omitempty"`
	SessionID string         `json:"sessionId,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// UserIDString returns the stringified user ID, or "" if absent.
// Numbers keep their JSON literal form so the identity input is stable
// across decode/encode cycles.
func (r *LogRecord) UserIDString() string {
	switch v := r.UserID.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return fmt.Sprint(v)
	}
}

// CanonicalMetadata returns the metadata serialized as compact JSON with
// lexicographically sorted keys, or "{}" when absent.
func (r *LogRecord) CanonicalMetadata() string {
	if len(r.Metadata) == 0 {
		return "{}"
	}
	// encoding/json sorts map keys.
	data, err := json.Marshal(r.Metadata)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// timestampLayouts are the accepted timestamp shapes, tried in order.
// CloudWatch Insights emits "2006-01-02 15:04:05.000"; application loggers
// emit RFC 3339.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.000",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// ParseTimestamp parses a record timestamp.
func ParseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.ErrMalformedTimestamp
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.Wrapf(errors.ErrMalformedTimestamp, "parse timestamp %q", s)
}

// LocalDate returns the record's calendar date in the fixed local timezone.
func (r *LogRecord) LocalDate(loc *time.Location) (time.Time, error) {
	t, err := ParseTimestamp(r.Timestamp)
	if err != nil {
		return time.Time{}, err
	}
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc), nil
}

// parserPool amortizes fastjson allocations across rows.
var parserPool fastjson.ParserPool

// ParseRaw parses a raw log line into a LogRecord if its category matches.
//
// The fastjson probe rejects non-matching and malformed lines cheaply
// before the full decode. rowTimestamp, when non-empty, is the query
// engine's row timestamp and overrides the record's own timestamp field.
// Returns (nil, nil) for valid JSON of a different category.
func ParseRaw(raw string, rowTimestamp string, category string) (*LogRecord, error) {
	p := parserPool.Get()
	defer parserPool.Put(p)

	v, err := p.Parse(raw)
	if err != nil {
		return nil, errors.Wrap(errors.ErrMalformedRecord, "parse message")
	}
	if string(v.GetStringBytes("category")) != category {
		return nil, nil
	}

	var rec LogRecord
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	if err := dec.Decode(&rec); err != nil {
		return nil, errors.Wrap(errors.ErrMalformedRecord, "decode message")
	}

	if rowTimestamp != "" {
		rec.Timestamp = rowTimestamp
	}
	return &rec, nil
}
