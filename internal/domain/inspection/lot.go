package inspection

import (
	"fmt"
	"strings"
	"time"
)

// EmptyKeyPart is the sentinel used when a key column is blank, so that blank
// values group together instead of vanishing from composite keys.
const EmptyKeyPart = "__EMPTY__"

// Lot is the unit of inspection work: one production batch that must be
// inspected by one crew on the run date.
type Lot struct {
	ProductionLotID        string
	ProductNumber          string
	ProductName            string
	Customer               string
	ShippingDate           ShippingDate
	LotQuantity            int
	InstructionDate        time.Time // zero when the source cell is blank
	Machine                string
	CurrentProcessNumber   string
	CurrentProcessName     string
	SecondaryProcess       string
	ProcessName            string
	CleaningInstructionRow string
	Provenance             Provenance

	// ShortageAfter is the remaining shortage once this lot is counted,
	// carried for NORMAL lots only (negative = still unmet demand).
	ShortageAfter int
}

// HasLotID reports whether the lot carries a production lot number.
func (l *Lot) HasLotID() bool {
	return strings.TrimSpace(l.ProductionLotID) != ""
}

// InstructionDateString renders the instruction date for keys and output rows.
func (l *Lot) InstructionDateString() string {
	if l.InstructionDate.IsZero() {
		return ""
	}
	return l.InstructionDate.Format("2006-01-02")
}

// Key returns the lot's identity: the production lot number when present,
// otherwise the (product, machine, instruction date, cleaning row) tuple.
func (l *Lot) Key() string {
	if l.HasLotID() {
		return l.ProductionLotID
	}
	return l.FallbackKey()
}

// FallbackKey is the identity tuple used to dedup rows without a lot number.
func (l *Lot) FallbackKey() string {
	return strings.Join([]string{
		keyPart(l.ProductNumber),
		keyPart(l.Machine),
		keyPart(l.InstructionDateString()),
		keyPart(l.CleaningInstructionRow),
	}, "|")
}

// DistinguishingKey is the (machine, instruction date, lot number) tuple used
// by the final per-product dedup stage. Blank columns become EmptyKeyPart.
func (l *Lot) DistinguishingKey() string {
	return strings.Join([]string{
		keyPart(l.Machine),
		keyPart(l.InstructionDateString()),
		keyPart(l.ProductionLotID),
	}, "|")
}

// DistinguishingKeyBlank reports whether every distinguishing column is blank.
func (l *Lot) DistinguishingKeyBlank() bool {
	return strings.TrimSpace(l.Machine) == "" &&
		l.InstructionDate.IsZero() &&
		strings.TrimSpace(l.ProductionLotID) == ""
}

func keyPart(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return EmptyKeyPart
	}
	return v
}

// String provides a short human-readable representation for diagnostics.
func (l *Lot) String() string {
	return fmt.Sprintf("Lot[%s, product=%s, ship=%s, qty=%d, prov=%s]",
		l.Key(), l.ProductNumber, l.ShippingDate, l.LotQuantity, l.Provenance)
}

// NonInspectionLot is the side channel for lots whose current process does not
// match any inspection-target keyword. They are not assignable but are
// reported through chat notifications.
type NonInspectionLot struct {
	ShippingDate       ShippingDate
	ProductNumber      string
	ProductionLotID    string
	InstructionDate    time.Time
	CurrentProcessName string
}

// ShipmentRow is one row of the shipment aggregate consumed from the
// relational store. Shortage is authoritative and never recomputed.
type ShipmentRow struct {
	ProductNumber          string
	ProductName            string
	Customer               string
	ShippingDate           time.Time
	ShippingQuantity       int
	StockQuantity          int
	ShortageQuantity       int
	PackagedCompletedTotal int
}

// InventoryLot is one physical lot from the inventory feed.
type InventoryLot struct {
	ProductNumber        string
	ProductName          string
	Customer             string
	Quantity             int
	LotQuantity          int
	InstructionDate      time.Time
	Machine              string
	CurrentProcessNumber string
	CurrentProcessName   string
	SecondaryProcess     string
	ProcessName          string
	ProductionLotID      string
}

// CleaningRequest is one row of the same-day cleaning instruction feed.
type CleaningRequest struct {
	ProductNumber          string
	ProductName            string
	Quantity               int
	InstructionDate        time.Time
	Machine                string
	CleaningInstructionRow string
	CurrentProcessNumber   string
	CurrentProcessName     string
	ProductionLotID        string
}

// AdvanceRegistration is a manually registered advance-inspection entry:
// inspect up to MaxLotsPerDay lots of the product ahead of demand.
type AdvanceRegistration struct {
	ProductNumber string
	MaxLotsPerDay int

	// ProcessFilter optionally restricts candidate lots by process-name
	// keywords, separated by "/" (ASCII or full-width).
	ProcessFilter string

	// FixedInspectors optionally forces these inspectors onto every lot
	// produced by this registration.
	FixedInspectors []string
}
