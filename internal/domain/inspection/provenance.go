package inspection

import (
	"strings"
	"time"

	"github.com/tmurata/inspection-dispatch/internal/domain/shared"
)

// Provenance identifies which feed a lot was resolved from.
// It is fixed at resolution time and never changes afterwards.
type Provenance string

const (
	// ProvenanceNormal - lot derived from a shipment shortage
	ProvenanceNormal Provenance = "NORMAL"

	// ProvenanceCleaning - lot derived from the cleaning-request feed
	ProvenanceCleaning Provenance = "CLEANING"

	// ProvenanceAdvance - manually registered advance-inspection lot
	ProvenanceAdvance Provenance = "ADVANCE"
)

// Sentinel shipping-date labels for lots that do not ship on a calendar date.
const (
	ShippingLabelAdvance  = "advance-inspection"
	ShippingLabelCleaning = "same-day-cleaning"
)

// ShippingDateKind distinguishes calendar dates from the sentinel labels.
type ShippingDateKind int

const (
	// ShippingKindDate - a parsable calendar date
	ShippingKindDate ShippingDateKind = iota

	// ShippingKindCleaning - the "same-day-cleaning" label
	ShippingKindCleaning

	// ShippingKindAdvance - the "advance-inspection" label
	ShippingKindAdvance

	// ShippingKindInvalid - blank or unparsable
	ShippingKindInvalid
)

// Shipping-date class priorities for deduplication and ordering.
// Lower value = kept in preference to higher values.
const (
	ClassToday           = 0
	ClassCleaning        = 1
	ClassAdvance         = 2
	ClassNextBusinessDay = 3
	ClassOtherDate       = 4
	ClassInvalid         = 5
)

var shippingDateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006/1/2",
	time.RFC3339,
}

// ShippingDate is the tagged shipping-date value of a lot: either a calendar
// date or one of the two sentinel labels.
type ShippingDate struct {
	kind ShippingDateKind
	date time.Time
	raw  string
}

// ParseShippingDate classifies a raw shipping-date cell.
func ParseShippingDate(raw string) ShippingDate {
	trimmed := strings.TrimSpace(raw)
	switch trimmed {
	case ShippingLabelCleaning:
		return ShippingDate{kind: ShippingKindCleaning, raw: trimmed}
	case ShippingLabelAdvance:
		return ShippingDate{kind: ShippingKindAdvance, raw: trimmed}
	case "":
		return ShippingDate{kind: ShippingKindInvalid, raw: trimmed}
	}
	for _, layout := range shippingDateLayouts {
		if d, err := time.Parse(layout, trimmed); err == nil {
			return ShippingDate{kind: ShippingKindDate, date: d, raw: trimmed}
		}
	}
	return ShippingDate{kind: ShippingKindInvalid, raw: trimmed}
}

// DateShipping builds a ShippingDate from a calendar date.
func DateShipping(d time.Time) ShippingDate {
	return ShippingDate{kind: ShippingKindDate, date: d, raw: d.Format("2006-01-02")}
}

// CleaningShipping returns the same-day-cleaning sentinel.
func CleaningShipping() ShippingDate {
	return ShippingDate{kind: ShippingKindCleaning, raw: ShippingLabelCleaning}
}

// AdvanceShipping returns the advance-inspection sentinel.
func AdvanceShipping() ShippingDate {
	return ShippingDate{kind: ShippingKindAdvance, raw: ShippingLabelAdvance}
}

// Kind returns the tag of this shipping date.
func (s ShippingDate) Kind() ShippingDateKind { return s.kind }

// Date returns the calendar date; zero unless Kind() == ShippingKindDate.
func (s ShippingDate) Date() time.Time { return s.date }

// String returns the raw cell value ("" for a missing date).
func (s ShippingDate) String() string { return s.raw }

// IsZeroValue reports whether this is the uninitialized ShippingDate.
func (s ShippingDate) IsZeroValue() bool {
	return s.raw == "" && s.kind == ShippingKindDate
}

// Class buckets the shipping date into a dedup priority class relative to the
// run date: today beats same-day-cleaning beats advance-inspection beats the
// next business day beats any other parsable date beats unparsable values.
func (s ShippingDate) Class(today time.Time) int {
	switch s.kind {
	case ShippingKindCleaning:
		return ClassCleaning
	case ShippingKindAdvance:
		return ClassAdvance
	case ShippingKindDate:
		if shared.SameDate(s.date, today) {
			return ClassToday
		}
		if shared.SameDate(s.date, shared.NextBusinessDay(today)) {
			return ClassNextBusinessDay
		}
		return ClassOtherDate
	default:
		return ClassInvalid
	}
}

// Before orders two shipping dates for lot processing: earliest calendar
// dates first, with the sentinel classes folded in by their dedup class so
// today's work and same-day cleaning get first pick.
func (s ShippingDate) Before(other ShippingDate, today time.Time) bool {
	sc, oc := s.Class(today), other.Class(today)
	if sc != oc {
		return sc < oc
	}
	if s.kind == ShippingKindDate && other.kind == ShippingKindDate {
		return s.date.Before(other.date)
	}
	return false
}
