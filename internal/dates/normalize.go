// Package dates normalizes the loosely formatted date strings found across
// the five incident datasets and applies inclusive date-range filtering.
//
// The source collections mix several encodings in the same column: epoch
// milliseconds, M/D/YYYY, YYYY-M-D, YYYY/M/D, D-M-YYYY, and free-text month
// names, sometimes with a trailing time or AM/PM suffix. Everything funnels
// through the single Normalize path here; no other package may interpret a
// raw date string.
package dates

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// NormalizedDate is a calendar date with no time-of-day component. Once
// normalized, two dates compare by calendar order regardless of the source
// format.
type NormalizedDate struct {
	Year  int
	Month time.Month
	Day   int
}

// Time returns the date at 00:00:00 UTC.
func (d NormalizedDate) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Compare returns -1, 0, or +1 as d is before, equal to, or after other.
func (d NormalizedDate) Compare(other NormalizedDate) int {
	switch {
	case d.Year != other.Year:
		return cmp(d.Year, other.Year)
	case d.Month != other.Month:
		return cmp(int(d.Month), int(other.Month))
	default:
		return cmp(d.Day, other.Day)
	}
}

// Before reports whether d is strictly before other.
func (d NormalizedDate) Before(other NormalizedDate) bool { return d.Compare(other) < 0 }

// After reports whether d is strictly after other.
func (d NormalizedDate) After(other NormalizedDate) bool { return d.Compare(other) > 0 }

// String returns the date in ISO form (YYYY-MM-DD).
func (d NormalizedDate) String() string {
	return d.Time().Format("2006-01-02")
}

func cmp(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// FromTime converts a time.Time to its UTC calendar date.
func FromTime(t time.Time) NormalizedDate {
	t = t.UTC()
	return NormalizedDate{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// Structured date patterns. Separator choice is meaningful and preserved
// from how the data was ingested: slashes are month-day-year, dashes with a
// trailing 4-digit year are day-month-year.
var (
	digitsOnlyRe = regexp.MustCompile(`^\d+$`)
	slashMDYRe   = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
	isoDashRe    = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)
	isoSlashRe   = regexp.MustCompile(`^(\d{4})/(\d{1,2})/(\d{1,2})$`)
	dashDMYRe    = regexp.MustCompile(`^(\d{1,2})-(\d{1,2})-(\d{4})$`)
)

// Free-text layouts tried against the full input, covering month-name forms
// such as "March 4, 2023".
var monthNameLayouts = []string{
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"2 January 2006",
	"2 Jan 2006",
}

// Layouts for the generic fallback pass.
var fallbackLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC1123,
	time.RFC822,
	time.ANSIC,
}

// epochDigitThreshold: a pure-digit token longer than this is read as an
// epoch-millisecond timestamp rather than a degenerate date.
const epochDigitThreshold = 8

// Normalize parses an arbitrary date string into a NormalizedDate. The
// second return value is false when the string cannot be interpreted; this
// is an expected outcome for dirty records, never an error. Empty input is
// unparseable, not a failure.
func Normalize(s string) (NormalizedDate, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return NormalizedDate{}, false
	}

	// Drop any trailing time / AM-PM suffix before trying the structured
	// patterns. The full string is kept for the free-text passes.
	token := s
	if i := strings.IndexByte(s, ' '); i > 0 {
		token = s[:i]
	}

	if digitsOnlyRe.MatchString(token) && len(token) > epochDigitThreshold {
		if ms, err := strconv.ParseInt(token, 10, 64); err == nil {
			return FromTime(time.UnixMilli(ms)), true
		}
	}

	if m := slashMDYRe.FindStringSubmatch(token); m != nil {
		if d, ok := makeDate(m[3], m[1], m[2]); ok {
			return d, true
		}
	}
	if m := isoDashRe.FindStringSubmatch(token); m != nil {
		if d, ok := makeDate(m[1], m[2], m[3]); ok {
			return d, true
		}
	}
	if m := isoSlashRe.FindStringSubmatch(token); m != nil {
		if d, ok := makeDate(m[1], m[2], m[3]); ok {
			return d, true
		}
	}
	// Dash with trailing year is day-month-year, unlike the slash form.
	if m := dashDMYRe.FindStringSubmatch(token); m != nil {
		if d, ok := makeDate(m[3], m[2], m[1]); ok {
			return d, true
		}
	}

	for _, layout := range monthNameLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return FromTime(t), true
		}
	}

	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return FromTime(t), true
		}
		if t, err := time.Parse(layout, token); err == nil {
			return FromTime(t), true
		}
	}

	return NormalizedDate{}, false
}

// makeDate builds a NormalizedDate from year/month/day strings, rejecting
// out-of-range components so that inputs like "13/2/2023" fall through to
// the later passes instead of silently rolling over.
func makeDate(year, month, day string) (NormalizedDate, bool) {
	y, _ := strconv.Atoi(year)
	mo, _ := strconv.Atoi(month)
	da, _ := strconv.Atoi(day)
	if mo < 1 || mo > 12 || da < 1 || da > 31 {
		return NormalizedDate{}, false
	}
	// Reject day overflow for the month (Feb 30 etc.) via round trip.
	t := time.Date(y, time.Month(mo), da, 0, 0, 0, 0, time.UTC)
	if t.Year() != y || t.Month() != time.Month(mo) || t.Day() != da {
		return NormalizedDate{}, false
	}
	return NormalizedDate{Year: y, Month: time.Month(mo), Day: da}, true
}
