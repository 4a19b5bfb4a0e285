package scheduling

import "time"

// Overlaps uses half-open semantics: intervals that only touch do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// IsAvailable reports whether candidate clears every booking. Each booking
// [bs, be) excludes [bs-bufferAfter, be+bufferBefore): bufferAfter is the gap
// a new slot must leave before an existing booking starts, bufferBefore the
// gap it must leave after one ends. bookings must contain active bookings only.
func IsAvailable(candidate Slot, bookings []Slot, bufferBefore, bufferAfter time.Duration) bool {
	for _, b := range bookings {
		if Overlaps(candidate.Start, candidate.End, b.Start.Add(-bufferAfter), b.End.Add(bufferBefore)) {
			return false
		}
	}
	return true
}

// FilterAvailable keeps, in order, the candidates that IsAvailable accepts.
func FilterAvailable(candidates, bookings []Slot, bufferBefore, bufferAfter time.Duration) []Slot {
	available := make([]Slot, 0, len(candidates))
	for _, c := range candidates {
		if IsAvailable(c, bookings, bufferBefore, bufferAfter) {
			available = append(available, c)
		}
	}
	return available
}
