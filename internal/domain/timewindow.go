package domain

import "time"

// TimeRange is a half-open interval [Start, End)
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// AddMinutes shifts t by m minutes (m may be negative). No zone conversion happens.
func AddMinutes(t time.Time, m int) time.Time {
	return t.Add(time.Duration(m) * time.Minute)
}

// RangesOverlap reports whether [startA, endA) and [startB, endB) intersect.
// Ranges that only touch at an endpoint do not overlap.
func RangesOverlap(startA, endA, startB, endB time.Time) bool {
	return startA.Before(endB) && startB.Before(endA)
}

// BufferedWindow expands a booking by its buffer times. All conflict
// comparisons use this effective window.
func BufferedWindow(start, end time.Time, before, after int) (effectiveStart, effectiveEnd time.Time) {
	return AddMinutes(start, -before), AddMinutes(end, after)
}

// HoursUntil returns the fractional number of hours from now until t.
// Negative when t is in the past.
func HoursUntil(t, now time.Time) float64 {
	return t.Sub(now).Hours()
}

// SameDate reports whether a and b fall on the same calendar date,
// each evaluated in its own location.
func SameDate(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// StartOfDay returns midnight of t's calendar date in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
