package services

import (
	"github.com/tmurata/inspection-dispatch/internal/application/common"
	"github.com/tmurata/inspection-dispatch/internal/domain/inspection"
)

// rebalance is Phase 3: when the spread between the most and least loaded
// active inspectors exceeds the imbalance threshold, move work from
// overloaded to under-loaded inspectors. Rows are never reordered and every
// cap still holds; a move that would violate a cap is simply not made.
func (r *engineRun) rebalance(logger common.RunLogger) {
	r.state = inspection.RebuildDailyState(r.rows, r.today)

	for r.rebalanceMoves < r.params.RebalanceCap {
		active := r.activeInspectors()
		if len(active) < 2 {
			return
		}
		mean, min, max := r.loadSpread(active)
		if mean <= 0 || max-min <= r.params.ImbalanceRatio*mean {
			return
		}
		if !r.moveOneAssignment(active, mean) {
			return
		}
		r.rebalanceMoves++
	}
	if r.rebalanceMoves > 0 {
		logger.Log("INFO", "fairness rebalance applied", map[string]interface{}{
			"moves": r.rebalanceMoves,
		})
	}
}

// activeInspectors returns everyone who could work today: positive shift
// capacity and not on vacation.
func (r *engineRun) activeInspectors() []inspection.Inspector {
	var active []inspection.Inspector
	for _, ins := range r.masters.Roster.All() {
		if r.maxHours[ins.ID] <= 0 {
			continue
		}
		if r.masters.Vacations.IsAbsent(ins, r.today) {
			continue
		}
		active = append(active, ins)
	}
	return active
}

func (r *engineRun) loadSpread(active []inspection.Inspector) (mean, min, max float64) {
	min = -1
	for _, ins := range active {
		h := r.state.DailyHours[ins.ID]
		mean += h
		if min < 0 || h < min {
			min = h
		}
		if h > max {
			max = h
		}
	}
	mean /= float64(len(active))
	return mean, min, max
}

// moveOneAssignment walks the rows in ship-date order and performs the first
// legal overloaded-to-under-loaded swap it finds.
func (r *engineRun) moveOneAssignment(active []inspection.Inspector, mean float64) bool {
	underloaded := make(map[string]bool)
	for _, ins := range active {
		if r.state.DailyHours[ins.ID] < rebalanceUnderloadedRatio*mean {
			underloaded[ins.ID] = true
		}
	}
	if len(underloaded) == 0 {
		return false
	}

	for _, row := range r.rows {
		if row.Status != inspection.StatusAssigned {
			continue
		}
		for _, x := range row.Members() {
			if r.state.DailyHours[x] <= rebalanceOverloadedRatio*mean {
				continue
			}
			exclude := make(map[string]bool)
			for _, id := range row.Members() {
				exclude[id] = true
			}
			pool := r.candidatesFor(row, row.DividedTime, exclude)
			r.sortLeastLoaded(pool)
			for _, y := range pool {
				if !underloaded[y.ID] {
					continue
				}
				if !row.ReplaceMember(x, y.ID) {
					break
				}
				r.state.Release(x, row.Lot.ProductNumber, row.DividedTime)
				r.state.Charge(y.ID, row.Lot.ProductNumber, row.DividedTime)
				r.recordCleaningIfNeeded(row, y.ID)
				row.RecomputeTeamInfo(r.masters.Roster)
				r.diag("rebalance: lot %s moved %s -> %s", row.Lot.Key(), x, y.ID)
				return true
			}
		}
	}
	return false
}
