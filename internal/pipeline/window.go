package pipeline

import (
	"fmt"
	"time"
)

// Mode selects the window strategy for a run.
type Mode string

const (
	// ModeIncremental exports today's records so far: [midnight, now]
	// in the fixed local timezone.
	ModeIncremental Mode = "incremental"

	// ModeCompletedDay exports all of yesterday: [midnight, 23:59:59.999999]
	// in the fixed local timezone.
	ModeCompletedDay Mode = "completed-day"
)

// Window is the query time window of one run.
type Window struct {
	Start time.Time
	End   time.Time
	Mode  Mode
}

// DateString returns the window's nominal local date.
func (w Window) DateString() string {
	return w.Start.Format("2006-01-02")
}

// Location builds the fixed local timezone from an hour offset.
func Location(offsetHours int) *time.Location {
	return time.FixedZone(fmt.Sprintf("UTC%+d", offsetHours), offsetHours*3600)
}

// ComputeWindow derives the query window from the invocation time. The
// two modes are mutually exclusive; testMode selects incremental.
func ComputeWindow(now time.Time, loc *time.Location, testMode bool) Window {
	local := now.In(loc)

	if testMode {
		midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
		return Window{Start: midnight, End: local, Mode: ModeIncremental}
	}

	yesterday := local.AddDate(0, 0, -1)
	start := time.Date(yesterday.Year(), yesterday.Month(), yesterday.Day(), 0, 0, 0, 0, loc)
	end := start.Add(24*time.Hour - time.Microsecond)
	return Window{Start: start, End: end, Mode: ModeCompletedDay}
}
