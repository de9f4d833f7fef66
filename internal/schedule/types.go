package schedule

import (
	"errors"
	"time"
)

// Schedule errors.
var (
	// ErrInvalidDate indicates a date that is not a valid YYYY-MM-DD calendar date.
	ErrInvalidDate = errors.New("invalid date")
	// ErrInvalidTime indicates a wall-clock time that is not valid HH:mm.
	ErrInvalidTime = errors.New("invalid time")
	// ErrInvalidDuration indicates a non-positive appointment duration.
	ErrInvalidDuration = errors.New("duration must be a positive number of minutes")
	// ErrSlotConflict indicates a requested slot overlaps existing busy time.
	ErrSlotConflict = errors.New("slot no longer available")
)

// SlotStep is the fixed interval between candidate start times.
const SlotStep = 15 * time.Minute

// Interval represents a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Window is the absolute work window for a single date. Start and End carry
// the configured location, so formatting times within the window yields
// local wall-clock values.
type Window struct {
	Start time.Time
	End   time.Time
}

// Duration returns the length of the window.
func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}
