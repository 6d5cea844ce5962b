package domain

// Overlaps is the shared half-open interval overlap test: [aStart,aEnd) and
// [bStart,bEnd) overlap iff aStart < bEnd && bStart < aEnd. Both availability
// creation and booking conflict detection go through this single primitive.
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}

// CoversInterval reports whether [start,end) lies entirely inside at least
// one availability window for the given weekday. Containment is inclusive on
// both ends: a slot touching a window boundary is allowed. Entries are
// scanned linearly; per-service availability counts are small.
func CoversInterval(entries []Availability, weekday, start, end int) bool {
	for _, e := range entries {
		if e.DayOfWeek != weekday {
			continue
		}
		if e.StartMinutes <= start && e.EndMinutes >= end {
			return true
		}
	}
	return false
}

// HasOverlap reports whether [start,end) overlaps any existing window for the
// given weekday. Used when adding availability, not when booking.
func HasOverlap(entries []Availability, weekday, start, end int) bool {
	for _, e := range entries {
		if e.DayOfWeek != weekday {
			continue
		}
		if Overlaps(e.StartMinutes, e.EndMinutes, start, end) {
			return true
		}
	}
	return false
}

// FindConflict returns the first appointment whose interval overlaps
// [start,end), or nil. Callers pass appointments already scoped to one
// service, date and BOOKED status.
func FindConflict(appts []Appointment, start, end int) *Appointment {
	for i := range appts {
		if Overlaps(appts[i].StartMinutes, appts[i].EndMinutes, start, end) {
			return &appts[i]
		}
	}
	return nil
}
