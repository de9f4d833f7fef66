package schedule

import (
	"fmt"
	"time"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

// ResolveWindow combines a YYYY-MM-DD date with the configured work-start and
// work-end wall-clock times to produce the absolute work window for that day.
//
// The conversion goes through time.Date in the given location rather than a
// fixed offset, so windows on daylight-saving transition days resolve to the
// correct instants.
func ResolveWindow(date, workStart, workEnd string, loc *time.Location) (Window, error) {
	day, err := time.ParseInLocation(dateLayout, date, loc)
	if err != nil {
		return Window{}, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}

	start, err := atClock(day, workStart, loc)
	if err != nil {
		return Window{}, fmt.Errorf("work start: %w", err)
	}
	end, err := atClock(day, workEnd, loc)
	if err != nil {
		return Window{}, fmt.Errorf("work end: %w", err)
	}
	if !start.Before(end) {
		return Window{}, fmt.Errorf("work window %s-%s is empty", workStart, workEnd)
	}

	return Window{Start: start, End: end}, nil
}

// ResolveStart resolves a date and HH:mm wall-clock time into the absolute
// instant a booking would begin. Any wall-clock time is accepted; the start
// does not have to fall on a slot boundary.
func ResolveStart(date, clock string, loc *time.Location) (time.Time, error) {
	day, err := time.ParseInLocation(dateLayout, date, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return atClock(day, clock, loc)
}

// atClock anchors an HH:mm wall-clock time onto the given day.
func atClock(day time.Time, clock string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse(clockLayout, clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTime, clock)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, loc), nil
}
