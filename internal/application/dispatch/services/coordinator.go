package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tmurata/inspection-dispatch/internal/application/common"
	"github.com/tmurata/inspection-dispatch/internal/domain/inspection"
	"github.com/tmurata/inspection-dispatch/internal/domain/shared"
)

// InputSource provides the pre-loaded collaborator frames for a run date:
// shipment aggregate, inventory lots, cleaning feed, and advance
// registrations. The engine never reads the relational store itself.
type InputSource interface {
	LoadInputs(ctx context.Context, runDate time.Time) (ResolverInputs, error)
}

// RunMetrics records run outcomes for monitoring. Implementations must not
// block the pipeline.
type RunMetrics interface {
	RecordRun(duration time.Duration, assigned, unassigned, repairIterations, rebalanceMoves int)
}

// RunResult is the publishable outcome of one extraction run.
type RunResult struct {
	RunID         string
	RunDate       time.Time
	StartedAt     time.Time
	FinishedAt    time.Time
	Rows          []*inspection.AssignmentRow
	NonInspection []inspection.NonInspectionLot
	State         *inspection.DailyState
	Diagnostics   []string
	PinDrops      []string
}

// ExtractionCoordinator drives the extraction pipeline:
// resolve shortages -> dedup lots -> assign crews -> publish.
// Each run is cancellable at phase boundaries; nothing is persisted until the
// engine finishes, so cancellation discards all in-progress state.
type ExtractionCoordinator struct {
	params   Params
	masters  inspection.MasterSource
	inputs   InputSource
	resolver *ShortageResolver
	deduper  *LotDeduper
	engine   *AssignmentEngine
	clock    shared.Clock

	// Optional collaborators
	runRepo  inspection.RunRepository
	notifier inspection.Notifier
	metrics  RunMetrics
	progress ProgressFunc
}

// NewExtractionCoordinator wires the pipeline.
func NewExtractionCoordinator(
	params Params,
	masters inspection.MasterSource,
	inputs InputSource,
	clock shared.Clock,
) *ExtractionCoordinator {
	return &ExtractionCoordinator{
		params:   params,
		masters:  masters,
		inputs:   inputs,
		resolver: NewShortageResolver(),
		deduper:  NewLotDeduper(params.Stage3BlankWildcard),
		engine:   NewAssignmentEngine(params),
		clock:    clock,
	}
}

// SetRunRepository installs optional run persistence.
func (c *ExtractionCoordinator) SetRunRepository(repo inspection.RunRepository) {
	c.runRepo = repo
}

// SetNotifier installs the optional chat notifier.
func (c *ExtractionCoordinator) SetNotifier(n inspection.Notifier) {
	c.notifier = n
}

// SetMetrics installs the optional metrics recorder.
func (c *ExtractionCoordinator) SetMetrics(m RunMetrics) {
	c.metrics = m
}

// SetProgress installs a phase-boundary progress callback covering both the
// pipeline stages and the engine phases.
func (c *ExtractionCoordinator) SetProgress(fn ProgressFunc) {
	c.progress = fn
	c.engine.SetProgress(fn)
}

func (c *ExtractionCoordinator) report(phase string) {
	if c.progress != nil {
		c.progress(phase)
	}
}

// RunExtraction executes one full extraction run for the given date.
func (c *ExtractionCoordinator) RunExtraction(ctx context.Context, runDate time.Time) (*RunResult, error) {
	logger := common.LoggerFromContext(ctx)
	startedAt := c.clock.Now()

	if err := checkCancelled(ctx, "load-masters"); err != nil {
		return nil, err
	}
	bundle, err := c.masters.LoadBundle(ctx, runDate)
	if err != nil {
		return nil, fmt.Errorf("loading masters: %w", err)
	}
	c.report("load-masters")

	if err := checkCancelled(ctx, "load-inputs"); err != nil {
		return nil, err
	}
	inputs, err := c.inputs.LoadInputs(ctx, runDate)
	if err != nil {
		return nil, fmt.Errorf("loading input frames: %w", err)
	}
	c.report("load-inputs")

	if err := checkCancelled(ctx, "resolve"); err != nil {
		return nil, err
	}
	resolved, err := c.resolver.Resolve(ctx, inputs)
	if err != nil {
		return nil, fmt.Errorf("resolving lots: %w", err)
	}
	c.report("resolve")

	if err := checkCancelled(ctx, "dedup"); err != nil {
		return nil, err
	}
	lots := c.deduper.Dedupe(ctx, resolved.Lots, runDate)
	c.report("dedup")

	// Advance registrations may pin inspectors; merge into a run-local pin
	// table so the shared master snapshot stays immutable.
	runBundle := *bundle
	if len(resolved.AdvancePins) > 0 {
		runBundle.Pins = inspection.NewFixedPinTable(append(bundle.Pins.Rules(), resolved.AdvancePins...))
	}

	engineResult, err := c.engine.Run(ctx, lots, &runBundle, runDate)
	if err != nil {
		return nil, err
	}

	finishedAt := c.clock.Now()
	result := &RunResult{
		RunID:         uuid.New().String(),
		RunDate:       runDate,
		StartedAt:     startedAt,
		FinishedAt:    finishedAt,
		Rows:          engineResult.Rows,
		NonInspection: resolved.NonInspection,
		State:         engineResult.State,
		Diagnostics:   engineResult.Diagnostics,
		PinDrops:      engineResult.PinDrops,
	}

	if c.metrics != nil {
		assigned := countAssigned(result.Rows)
		c.metrics.RecordRun(finishedAt.Sub(startedAt), assigned, len(result.Rows)-assigned,
			engineResult.RepairIterations, engineResult.RebalanceMoves)
	}

	c.persistRun(ctx, result, logger)
	c.notifyNonInspection(ctx, result, logger)
	return result, nil
}

// persistRun stores the run for auditing. Persistence failures are reported
// but never invalidate the computed assignment.
func (c *ExtractionCoordinator) persistRun(ctx context.Context, result *RunResult, logger common.RunLogger) {
	if c.runRepo == nil {
		return
	}
	record := &inspection.RunRecord{
		RunID:         result.RunID,
		RunDate:       result.RunDate,
		StartedAt:     result.StartedAt,
		FinishedAt:    result.FinishedAt,
		Rows:          result.Rows,
		NonInspection: result.NonInspection,
		Diagnostics:   result.Diagnostics,
	}
	if err := c.runRepo.SaveRun(ctx, record); err != nil {
		logger.Log("ERROR", fmt.Sprintf("Failed to persist run: %v", err), map[string]interface{}{
			"run_id": result.RunID,
		})
	}
}

// notifyNonInspection publishes the side list. External I/O stays isolated
// from the assignment result.
func (c *ExtractionCoordinator) notifyNonInspection(ctx context.Context, result *RunResult, logger common.RunLogger) {
	if c.notifier == nil || len(result.NonInspection) == 0 {
		return
	}
	if err := c.notifier.PublishNonInspection(ctx, result.RunDate, result.NonInspection); err != nil {
		logger.Log("ERROR", fmt.Sprintf("Failed to publish non-inspection list: %v", err), nil)
	}
}
