package shared

import (
	"fmt"
	"time"
)

// NextBusinessDay returns the next working day after the given date.
// Friday rolls over the weekend to Monday; Saturday also lands on Monday.
// All other days advance by one calendar day.
func NextBusinessDay(d time.Time) time.Time {
	switch d.Weekday() {
	case time.Friday:
		return d.AddDate(0, 0, 3)
	case time.Saturday:
		return d.AddDate(0, 0, 2)
	default:
		return d.AddDate(0, 0, 1)
	}
}

// SameDate reports whether two times fall on the same calendar day.
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// MinuteOfDay represents a time of day as minutes since midnight.
type MinuteOfDay int

// ParseMinuteOfDay parses a "HH:MM" clock string.
func ParseMinuteOfDay(s string) (MinuteOfDay, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid clock time %q: %w", s, err)
	}
	if h < 0 || h > 24 || m < 0 || m > 59 {
		return 0, fmt.Errorf("clock time %q out of range", s)
	}
	return MinuteOfDay(h*60 + m), nil
}

// String renders the minute-of-day back as "HH:MM".
func (m MinuteOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(m)/60, int(m)%60)
}

// Hours converts a minute span to fractional hours.
func (m MinuteOfDay) Hours() float64 {
	return float64(m) / 60.0
}

// BreakWindow is the midday break inside a shift.
// A shift that fully contains the window loses one hour of working time.
type BreakWindow struct {
	Start MinuteOfDay
	End   MinuteOfDay
}

// DefaultBreakWindow is the plant-wide 12:15-13:00 lunch break.
func DefaultBreakWindow() BreakWindow {
	return BreakWindow{Start: 12*60 + 15, End: 13 * 60}
}

// ContainedIn reports whether the whole break window lies inside [start, end].
func (b BreakWindow) ContainedIn(start, end MinuteOfDay) bool {
	return start <= b.Start && b.End <= end
}
