package schedule

import "time"

// Slots walks the work window in SlotStep increments and returns the
// wall-clock start times (HH:mm, in the window's location) at which an
// appointment of the given duration can be booked without violating the
// buffer around any busy interval.
//
// A slot whose buffered end lands exactly on the window end is still
// bookable, so the loop condition is inclusive. The cursor advances by
// SlotStep whether or not the candidate conflicted; the busy set is never
// mutated and the result is a pure function of the inputs.
func Slots(window Window, duration, buffer time.Duration, busy []Interval) ([]string, error) {
	if duration <= 0 {
		return nil, ErrInvalidDuration
	}

	slots := []string{}
	for cursor := window.Start; !cursor.Add(duration + buffer).After(window.End); cursor = cursor.Add(SlotStep) {
		candidate := Interval{Start: cursor, End: cursor.Add(duration)}
		if !Conflicts(candidate, busy, buffer) {
			slots = append(slots, cursor.Format(clockLayout))
		}
	}
	return slots, nil
}
