package inspection

import (
	"strings"
	"time"
)

// VacationEntry marks one inspector absent on one date. The absence code is an
// opaque string from the vacation sheet; any non-empty code means unavailable.
type VacationEntry struct {
	InspectorIDOrName string
	Date              time.Time
	AbsenceCode       string
}

// VacationCalendar answers absence queries for a run date.
type VacationCalendar struct {
	entries map[string]map[string]string // date -> inspector key -> code
}

// NewVacationCalendar indexes entries by date. Entries with a blank code are
// ignored.
func NewVacationCalendar(entries []VacationEntry) *VacationCalendar {
	c := &VacationCalendar{entries: make(map[string]map[string]string)}
	for _, e := range entries {
		code := strings.TrimSpace(e.AbsenceCode)
		who := strings.TrimSpace(e.InspectorIDOrName)
		if code == "" || who == "" || e.Date.IsZero() {
			continue
		}
		day := e.Date.Format("2006-01-02")
		if c.entries[day] == nil {
			c.entries[day] = make(map[string]string)
		}
		c.entries[day][who] = code
	}
	return c
}

// IsAbsent reports whether the inspector (referenced by ID or name) has any
// absence code on the given date.
func (c *VacationCalendar) IsAbsent(inspector Inspector, date time.Time) bool {
	day, ok := c.entries[date.Format("2006-01-02")]
	if !ok {
		return false
	}
	if _, found := day[inspector.ID]; found {
		return true
	}
	if inspector.Name != "" {
		if _, found := day[inspector.Name]; found {
			return true
		}
	}
	return false
}
