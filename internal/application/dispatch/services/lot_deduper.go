package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tmurata/inspection-dispatch/internal/application/common"
	"github.com/tmurata/inspection-dispatch/internal/domain/inspection"
)

// LotDeduper removes duplicates from the merged lot set under the strict
// shipping-date class priority: today beats same-day-cleaning beats
// advance-inspection beats next-business-day beats other dates beats
// unparsable values.
type LotDeduper struct {
	// blankWildcard switches the final stage to treat blank distinguishing
	// columns as wildcards matching any value.
	blankWildcard bool
}

// NewLotDeduper creates a deduper. blankWildcard selects the final-stage
// blank-column behavior (see Params.Stage3BlankWildcard).
func NewLotDeduper(blankWildcard bool) *LotDeduper {
	return &LotDeduper{blankWildcard: blankWildcard}
}

// Dedupe applies the three dedup stages in order and returns the surviving
// lots in their original relative order.
func (d *LotDeduper) Dedupe(ctx context.Context, lots []inspection.Lot, today time.Time) []inspection.Lot {
	logger := common.LoggerFromContext(ctx)

	stage1 := d.dedupeByLotID(lots, today)
	stage2 := d.dedupeByTuple(stage1, today)
	stage3 := d.dedupeByProduct(stage2, today)

	logger.Log("INFO", fmt.Sprintf("Dedup %d -> %d -> %d -> %d lots", len(lots), len(stage1), len(stage2), len(stage3)), nil)
	return stage3
}

// dedupeByLotID keeps, per production lot number, only the highest-priority
// row. Rows without a lot number pass through untouched.
func (d *LotDeduper) dedupeByLotID(lots []inspection.Lot, today time.Time) []inspection.Lot {
	best := make(map[string]int) // lot ID -> index into lots
	var out []inspection.Lot
	for i := range lots {
		lot := &lots[i]
		if !lot.HasLotID() {
			continue
		}
		id := strings.TrimSpace(lot.ProductionLotID)
		if prev, ok := best[id]; !ok || lot.ShippingDate.Class(today) < lots[prev].ShippingDate.Class(today) {
			best[id] = i
		}
	}
	kept := make(map[int]bool, len(best))
	for _, i := range best {
		kept[i] = true
	}
	for i := range lots {
		if !lots[i].HasLotID() || kept[i] {
			out = append(out, lots[i])
		}
	}
	return out
}

// dedupeByTuple buckets rows without a lot number by the fallback identity
// tuple and applies the mixed-pair rule within each bucket.
func (d *LotDeduper) dedupeByTuple(lots []inspection.Lot, today time.Time) []inspection.Lot {
	buckets := make(map[string][]int)
	for i := range lots {
		if lots[i].HasLotID() {
			continue
		}
		key := lots[i].FallbackKey()
		buckets[key] = append(buckets[key], i)
	}

	drop := make(map[int]bool)
	for _, idxs := range buckets {
		markMixedPairLosers(lots, idxs, today, drop)
	}

	var out []inspection.Lot
	for i := range lots {
		if !drop[i] {
			out = append(out, lots[i])
		}
	}
	return out
}

// dedupeByProduct is the final stage: survivors are bucketed by product and
// partitioned by the (machine, instruction date, lot number) distinguishing
// key; the mixed-pair rule applies inside each partition. Rows with different
// non-blank keys are never deduped against each other.
func (d *LotDeduper) dedupeByProduct(lots []inspection.Lot, today time.Time) []inspection.Lot {
	byProduct := make(map[string][]int)
	for i := range lots {
		byProduct[strings.TrimSpace(lots[i].ProductNumber)] = append(byProduct[strings.TrimSpace(lots[i].ProductNumber)], i)
	}

	drop := make(map[int]bool)
	for _, idxs := range byProduct {
		for _, part := range d.partitionByDistinguishingKey(lots, idxs) {
			markMixedPairLosers(lots, part, today, drop)
		}
	}

	var out []inspection.Lot
	for i := range lots {
		if !drop[i] {
			out = append(out, lots[i])
		}
	}
	return out
}

// partitionByDistinguishingKey splits one product's rows into partitions. In
// exact mode partitions are keyed on the sentinel-filled tuple; in wildcard
// mode blank components are compatible with anything, and compatible rows are
// unioned into one partition.
func (d *LotDeduper) partitionByDistinguishingKey(lots []inspection.Lot, idxs []int) [][]int {
	if !d.blankWildcard {
		parts := make(map[string][]int)
		order := make([]string, 0)
		for _, i := range idxs {
			key := lots[i].DistinguishingKey()
			if _, ok := parts[key]; !ok {
				order = append(order, key)
			}
			parts[key] = append(parts[key], i)
		}
		out := make([][]int, 0, len(order))
		for _, key := range order {
			out = append(out, parts[key])
		}
		return out
	}

	// Wildcard mode: union-find over pairwise key compatibility.
	parent := make([]int, len(idxs))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}
	union := func(a, b int) { parent[find(a)] = find(b) }

	for a := 0; a < len(idxs); a++ {
		for b := a + 1; b < len(idxs); b++ {
			if keysCompatible(&lots[idxs[a]], &lots[idxs[b]]) {
				union(a, b)
			}
		}
	}

	groups := make(map[int][]int)
	order := make([]int, 0)
	for i, idx := range idxs {
		root := find(i)
		if _, ok := groups[root]; !ok {
			order = append(order, root)
		}
		groups[root] = append(groups[root], idx)
	}
	out := make([][]int, 0, len(order))
	for _, root := range order {
		out = append(out, groups[root])
	}
	return out
}

// keysCompatible reports whether two distinguishing keys match component-wise
// when blank components are wildcards.
func keysCompatible(a, b *inspection.Lot) bool {
	pairs := [][2]string{
		{a.Machine, b.Machine},
		{a.InstructionDateString(), b.InstructionDateString()},
		{a.ProductionLotID, b.ProductionLotID},
	}
	for _, p := range pairs {
		av, bv := strings.TrimSpace(p[0]), strings.TrimSpace(p[1])
		if av == "" || bv == "" {
			continue
		}
		if av != bv {
			return false
		}
	}
	return true
}

// pairClass collapses shipping-date classes into the three categories of the
// mixed-pair rule; -1 means the row never participates in a pair.
func pairClass(lot *inspection.Lot, today time.Time) int {
	switch lot.ShippingDate.Class(today) {
	case inspection.ClassCleaning:
		return 0
	case inspection.ClassAdvance:
		return 1
	case inspection.ClassToday, inspection.ClassNextBusinessDay, inspection.ClassOtherDate:
		return 2 // NORMAL-date
	default:
		return -1
	}
}

// markMixedPairLosers applies the mixed-pair rule to one group: when the group
// mixes at least two of {CLEANING, ADVANCE, NORMAL-date}, only the
// highest-priority row survives.
func markMixedPairLosers(lots []inspection.Lot, idxs []int, today time.Time, drop map[int]bool) {
	if len(idxs) < 2 {
		return
	}
	categories := make(map[int]bool)
	for _, i := range idxs {
		if c := pairClass(&lots[i], today); c >= 0 {
			categories[c] = true
		}
	}
	if len(categories) < 2 {
		return
	}
	best := idxs[0]
	for _, i := range idxs[1:] {
		if lots[i].ShippingDate.Class(today) < lots[best].ShippingDate.Class(today) {
			best = i
		}
	}
	for _, i := range idxs {
		if i != best {
			drop[i] = true
		}
	}
}
