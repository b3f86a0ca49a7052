package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/tmurata/inspection-dispatch/internal/application/common"
	"github.com/tmurata/inspection-dispatch/internal/domain/inspection"
)

// ProgressFunc receives phase-boundary progress events.
type ProgressFunc func(phase string)

// Engine phases, in pipeline order.
const (
	PhaseSizing    = "sizing"
	PhaseFirstPass = "first-pass"
	PhaseRepair    = "repair"
	PhaseRebalance = "rebalance"
	PhaseSweep     = "final-sweep"
)

// EngineResult is the structured outcome of one engine run: rows with per-row
// status plus the diagnostic stream. Nothing in here is persisted by the
// engine itself.
type EngineResult struct {
	Rows        []*inspection.AssignmentRow
	State       *inspection.DailyState
	Diagnostics []string

	// PinDrops lists fixed-pin inspectors that failed a filter and were
	// dropped from a crew.
	PinDrops []string

	RepairIterations int
	RebalanceMoves   int
}

// AssignmentEngine selects inspection crews for the day's lots. All DailyState
// mutations happen on the calling goroutine; the engine never does I/O.
type AssignmentEngine struct {
	params   Params
	progress ProgressFunc
}

// NewAssignmentEngine creates an engine with the given parameters.
func NewAssignmentEngine(params Params) *AssignmentEngine {
	return &AssignmentEngine{params: params}
}

// SetProgress installs an optional phase-boundary progress callback.
func (e *AssignmentEngine) SetProgress(fn ProgressFunc) {
	e.progress = fn
}

// engineRun holds the state of one run. Created per run, never reused.
type engineRun struct {
	params   Params
	masters  *inspection.MasterBundle
	today    time.Time
	rows     []*inspection.AssignmentRow
	state    *inspection.DailyState
	maxHours map[string]float64
	diags    []string
	pinDrops []string

	repairIterations int
	rebalanceMoves   int
}

// Run executes all engine phases over the deduplicated lot set.
// The run is cancellable at phase boundaries; mid-phase cancellation is not
// observed because phases only mutate run-local state.
func (e *AssignmentEngine) Run(
	ctx context.Context,
	lots []inspection.Lot,
	masters *inspection.MasterBundle,
	today time.Time,
) (*EngineResult, error) {
	logger := common.LoggerFromContext(ctx)

	run := &engineRun{
		params:   e.params,
		masters:  masters,
		today:    today,
		state:    inspection.NewDailyState(),
		maxHours: make(map[string]float64),
	}
	for _, ins := range masters.Roster.All() {
		run.maxHours[ins.ID] = ins.MaxDailyHours(e.params.Break)
	}

	phases := []struct {
		name string
		fn   func()
	}{
		{PhaseSizing, func() { run.sizeLots(lots) }},
		{PhaseFirstPass, func() { run.firstPass() }},
		{PhaseRepair, func() { run.repairLoop(logger) }},
		{PhaseRebalance, func() { run.rebalance(logger) }},
		{PhaseSweep, func() { run.finalSweep(logger) }},
	}
	result := &EngineResult{}
	for _, phase := range phases {
		if err := checkCancelled(ctx, phase.name); err != nil {
			return nil, err
		}
		phase.fn()
		if e.progress != nil {
			e.progress(phase.name)
		}
	}

	result.Rows = run.rows
	result.State = run.state
	result.Diagnostics = run.diags
	result.PinDrops = run.pinDrops
	result.RepairIterations = run.repairIterations
	result.RebalanceMoves = run.rebalanceMoves

	logger.Log("INFO", fmt.Sprintf("Engine assigned %d/%d rows", countAssigned(run.rows), len(run.rows)), nil)
	return result, nil
}

func checkCancelled(ctx context.Context, phase string) error {
	select {
	case <-ctx.Done():
		return &inspection.ErrRunCancelled{Phase: phase}
	default:
		return nil
	}
}

func countAssigned(rows []*inspection.AssignmentRow) int {
	n := 0
	for _, r := range rows {
		if r.Status == inspection.StatusAssigned {
			n++
		}
	}
	return n
}

// sizeLots is Phase 0: compute inspection time, required crew size, and the
// per-member share for every lot. Zero-quantity lots and lots without a
// resolvable rate keep their row but never get a crew.
func (r *engineRun) sizeLots(lots []inspection.Lot) {
	for _, lot := range lots {
		row := &inspection.AssignmentRow{Lot: lot, Status: inspection.StatusAssigned}

		if lot.LotQuantity <= 0 {
			row.MarkUnassigned(inspection.StatusUnassignedRule, "lot quantity is zero")
			r.rows = append(r.rows, row)
			continue
		}
		spu, ok := r.masters.Products.SecondsPerUnit(lot.ProductNumber, lot.CurrentProcessNumber)
		if !ok || spu <= 0 {
			row.MarkUnassigned(inspection.StatusUnassignedRule, "no seconds-per-unit rate for product")
			r.rows = append(r.rows, row)
			continue
		}

		row.SecondsPerUnit = spu
		row.InspectionTime = spu * float64(lot.LotQuantity) / 3600.0
		row.RequiredCrewSize = requiredCrewSize(row.InspectionTime, r.params.RequiredPivotHours)
		row.DividedTime = row.InspectionTime / float64(row.RequiredCrewSize)
		r.rows = append(r.rows, row)
	}

	// Phase 1 processing order: earliest ship dates first, new-product lots
	// ahead of same-date peers.
	sort.SliceStable(r.rows, func(i, j int) bool {
		a, b := r.rows[i], r.rows[j]
		if a.Lot.ShippingDate.Before(b.Lot.ShippingDate, r.today) {
			return true
		}
		if b.Lot.ShippingDate.Before(a.Lot.ShippingDate, r.today) {
			return false
		}
		return r.isNewProduct(&a.Lot) && !r.isNewProduct(&b.Lot)
	})
	for i, row := range r.rows {
		row.Index = i
	}
}

// requiredCrewSize implements the sizing pivot: one inspector at or under the
// pivot, otherwise the smallest crew whose per-member share stays at or under
// the pivot, with a floor of two and capped at the slot limit.
func requiredCrewSize(inspectionTime, pivot float64) int {
	if inspectionTime <= pivot {
		return 1
	}
	size := int(math.Ceil(inspectionTime / pivot))
	if size < 2 {
		size = 2
	}
	if size > inspection.MaxCrewSlots {
		size = inspection.MaxCrewSlots
	}
	return size
}

func (r *engineRun) isNewProduct(lot *inspection.Lot) bool {
	return !r.masters.Skills.HasProduct(lot.ProductNumber)
}

// firstPass is Phase 1: walk the ordered rows and pick a crew for each.
func (r *engineRun) firstPass() {
	for _, row := range r.rows {
		if row.Status != inspection.StatusAssigned {
			continue
		}
		r.assignCrew(row)
	}
}

// finalSweep is Phase 4: re-verify every invariant, release residual
// violators, and recompute team info from the final slot contents.
func (r *engineRun) finalSweep(logger common.RunLogger) {
	// Provisional rows that repair could not fill to the required size
	// are released as capacity failures.
	for _, row := range r.rows {
		if row.Provisional && row.CrewSize() < row.RequiredCrewSize {
			row.MarkUnassigned(inspection.StatusUnassignedCapacity,
				fmt.Sprintf("only %d of %d required inspectors available", row.CrewSize(), row.RequiredCrewSize))
			row.Provisional = false
		}
	}

	r.state = inspection.RebuildDailyState(r.rows, r.today)
	for _, v := range r.scanViolations() {
		row := r.rows[v.rowIndex]
		r.releaseRow(row)
		row.MarkUnassigned(inspection.StatusUnassignedRule, v.describe())
		logger.Log("WARN", "released row with residual violation", map[string]interface{}{
			"lot":       row.Lot.Key(),
			"violation": v.describe(),
		})
		r.state = inspection.RebuildDailyState(r.rows, r.today)
	}

	for _, row := range r.rows {
		row.RecomputeTeamInfo(r.masters.Roster)
		if row.Status == inspection.StatusAssigned && row.CrewSize() > 0 {
			row.RecomputeDividedTime()
		}
	}
	r.state = inspection.RebuildDailyState(r.rows, r.today)
}

// releaseRow returns a row's reserved time to the state tables.
func (r *engineRun) releaseRow(row *inspection.AssignmentRow) {
	for _, id := range row.Members() {
		r.state.Release(id, row.Lot.ProductNumber, row.DividedTime)
	}
}

func (r *engineRun) diag(format string, args ...interface{}) {
	r.diags = append(r.diags, fmt.Sprintf(format, args...))
}
