package schedule

import "time"

// ValidateBooking re-runs the conflict test for a single requested interval
// at booking time, closing the gap between listing slots and booking one.
// It applies exactly the predicate the slot generator uses, so a slot that
// was offered remains bookable as long as the busy set has not changed.
//
// Returns ErrInvalidDuration for a non-positive duration and ErrSlotConflict
// when the requested interval collides with busy time; nil means the caller
// may proceed to create the event.
func ValidateBooking(requested Interval, buffer time.Duration, busy []Interval) error {
	if !requested.Start.Before(requested.End) {
		return ErrInvalidDuration
	}
	if Conflicts(requested, busy, buffer) {
		return ErrSlotConflict
	}
	return nil
}
