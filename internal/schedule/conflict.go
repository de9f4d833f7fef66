package schedule

import "time"

// Conflicts reports whether the candidate interval collides with any busy
// interval once the buffer is applied. A candidate conflicts with busy b iff
//
//	candidate.Start < b.End+buffer  &&  candidate.End+buffer > b.Start
//
// The buffer extends the busy interval's end and the candidate's end, which
// keeps a gap of at least buffer on both sides of every existing event. The
// busy set may be unordered and intervals may overlap each other; the result
// is independent of ordering.
func Conflicts(candidate Interval, busy []Interval, buffer time.Duration) bool {
	for _, b := range busy {
		if candidate.Start.Before(b.End.Add(buffer)) && candidate.End.Add(buffer).After(b.Start) {
			return true
		}
	}
	return false
}
