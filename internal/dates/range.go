package dates

// DateRange is an optional inclusive start/end boundary. A nil bound imposes
// no constraint on that side. The end bound covers the entire calendar day.
//
// The range is not validated: a start after the end simply yields a filter
// that matches nothing. Callers own that check.
type DateRange struct {
	Start *NormalizedDate
	End   *NormalizedDate
}

// Empty reports whether the range has no bounds at all.
func (r DateRange) Empty() bool { return r.Start == nil && r.End == nil }

// Contains reports whether the given date falls inside the range.
func (r DateRange) Contains(d NormalizedDate) bool {
	if r.Start != nil && d.Before(*r.Start) {
		return false
	}
	if r.End != nil && d.After(*r.End) {
		return false
	}
	return true
}

// InRange reports whether the raw date string falls inside the range. An
// unparseable string is excluded (false), never an error - a record with a
// malformed date cannot match any bounded or unbounded filter pass except
// that parseable strings always match an empty range.
func InRange(dateStr string, r DateRange) bool {
	d, ok := Normalize(dateStr)
	if !ok {
		return false
	}
	return r.Contains(d)
}

// ParseRange builds a DateRange from optional ISO date strings. An empty
// string leaves that side unbounded; an unparseable non-empty string also
// leaves it unbounded, matching how the query layer tolerates malformed
// filter input.
func ParseRange(start, end string) DateRange {
	var r DateRange
	if start != "" {
		if d, ok := Normalize(start); ok {
			r.Start = &d
		}
	}
	if end != "" {
		if d, ok := Normalize(end); ok {
			r.End = &d
		}
	}
	return r
}
