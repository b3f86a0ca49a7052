package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmurata/inspection-dispatch/internal/application/dispatch/services"
	"github.com/tmurata/inspection-dispatch/internal/domain/inspection"
	"github.com/tmurata/inspection-dispatch/internal/domain/shared"
)

type stubMasterSource struct {
	bundle *inspection.MasterBundle
	err    error
}

func (s *stubMasterSource) LoadBundle(ctx context.Context, runDate time.Time) (*inspection.MasterBundle, error) {
	return s.bundle, s.err
}

type stubInputSource struct {
	inputs services.ResolverInputs
	err    error
}

func (s *stubInputSource) LoadInputs(ctx context.Context, runDate time.Time) (services.ResolverInputs, error) {
	return s.inputs, s.err
}

type recordingRunRepo struct {
	saved *inspection.RunRecord
	err   error
}

func (r *recordingRunRepo) SaveRun(ctx context.Context, run *inspection.RunRecord) error {
	r.saved = run
	return r.err
}

func (r *recordingRunRepo) FindRun(ctx context.Context, runID string) (*inspection.RunRecord, error) {
	return nil, nil
}

func (r *recordingRunRepo) ListRunsByDate(ctx context.Context, date time.Time) ([]*inspection.RunRecord, error) {
	return nil, nil
}

type recordingNotifier struct {
	lots []inspection.NonInspectionLot
	err  error
}

func (n *recordingNotifier) PublishNonInspection(ctx context.Context, runDate time.Time, lots []inspection.NonInspectionLot) error {
	n.lots = lots
	return n.err
}

func coordinatorBundle() *inspection.MasterBundle {
	return newBundle(bundleSpec{
		rates:  []inspection.ProductRate{{ProductNumber: "P", ProcessNumber: "10", SecondsPerUnit: 60}},
		roster: []inspection.Inspector{fullShift("A", "Aoki"), fullShift("B", "Banda")},
		skills: []inspection.SkillRow{skillRow("P", "10", map[string]inspection.SkillLevel{
			"A": inspection.SkillLevelExpert,
			"B": inspection.SkillLevelBeginner,
		})},
	})
}

func coordinatorInputs() services.ResolverInputs {
	return services.ResolverInputs{
		Shipments: []inspection.ShipmentRow{
			{ProductNumber: "P", ShippingDate: testToday, ShortageQuantity: -200},
		},
		Inventory: []inspection.InventoryLot{
			{
				ProductNumber:        "P",
				Quantity:             180,
				LotQuantity:          180,
				InstructionDate:      testToday.AddDate(0, 0, -2),
				CurrentProcessNumber: "10",
				CurrentProcessName:   "VISUAL",
				ProductionLotID:      "L1",
			},
			{
				ProductNumber:      "P",
				Quantity:           60,
				LotQuantity:        60,
				InstructionDate:    testToday.AddDate(0, 0, -1),
				CurrentProcessName: "PACKING",
				ProductionLotID:    "L2",
			},
		},
		TargetKeywords: []string{"VISUAL"},
	}
}

func TestCoordinator_RunExtractionEndToEnd(t *testing.T) {
	clock := shared.NewMockClock(testToday.Add(7 * time.Hour))
	repo := &recordingRunRepo{}
	notifier := &recordingNotifier{}

	coordinator := services.NewExtractionCoordinator(
		services.DefaultParams(),
		&stubMasterSource{bundle: coordinatorBundle()},
		&stubInputSource{inputs: coordinatorInputs()},
		clock,
	)
	coordinator.SetRunRepository(repo)
	coordinator.SetNotifier(notifier)

	var phases []string
	coordinator.SetProgress(func(phase string) { phases = append(phases, phase) })

	result, err := coordinator.RunExtraction(context.Background(), testToday)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.NotEmpty(t, result.RunID)

	// L1 qualifies for inspection; L2's process fails the keyword filter.
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "L1", result.Rows[0].Lot.ProductionLotID)
	assert.Equal(t, inspection.StatusAssigned, result.Rows[0].Status)
	require.Len(t, result.NonInspection, 1)
	assert.Equal(t, "L2", result.NonInspection[0].ProductionLotID)

	// The run was persisted and the side list published.
	require.NotNil(t, repo.saved)
	assert.Equal(t, result.RunID, repo.saved.RunID)
	assert.Equal(t, result.NonInspection, notifier.lots)

	assert.Contains(t, phases, "load-masters")
	assert.Contains(t, phases, "resolve")
	assert.Contains(t, phases, "final-sweep")
}

func TestCoordinator_PersistenceFailureDoesNotFailTheRun(t *testing.T) {
	coordinator := services.NewExtractionCoordinator(
		services.DefaultParams(),
		&stubMasterSource{bundle: coordinatorBundle()},
		&stubInputSource{inputs: coordinatorInputs()},
		shared.NewMockClock(testToday),
	)
	coordinator.SetRunRepository(&recordingRunRepo{err: errors.New("disk full")})
	coordinator.SetNotifier(&recordingNotifier{err: errors.New("broker down")})

	result, err := coordinator.RunExtraction(context.Background(), testToday)
	require.NoError(t, err)
	assert.NotEmpty(t, result.Rows)
}

func TestCoordinator_MasterLoadFailureAbortsTheRun(t *testing.T) {
	loadErr := &inspection.ErrMasterInputMissing{Master: "products", Path: "products.csv"}
	coordinator := services.NewExtractionCoordinator(
		services.DefaultParams(),
		&stubMasterSource{err: loadErr},
		&stubInputSource{inputs: coordinatorInputs()},
		shared.NewMockClock(testToday),
	)

	_, err := coordinator.RunExtraction(context.Background(), testToday)
	require.Error(t, err)

	var missing *inspection.ErrMasterInputMissing
	assert.ErrorAs(t, err, &missing)
}

func TestCoordinator_AdvancePinsApplyToTheRunOnly(t *testing.T) {
	bundle := coordinatorBundle()
	inputs := services.ResolverInputs{
		Inventory: []inspection.InventoryLot{{
			ProductNumber:        "P",
			Quantity:             60,
			LotQuantity:          60,
			InstructionDate:      testToday.AddDate(0, 0, -1),
			CurrentProcessNumber: "10",
			CurrentProcessName:   "VISUAL",
			ProductionLotID:      "L1",
		}},
		AdvanceEntries: []inspection.AdvanceRegistration{{
			ProductNumber:   "P",
			MaxLotsPerDay:   1,
			FixedInspectors: []string{"B"},
		}},
	}

	coordinator := services.NewExtractionCoordinator(
		services.DefaultParams(),
		&stubMasterSource{bundle: bundle},
		&stubInputSource{inputs: inputs},
		shared.NewMockClock(testToday),
	)

	result, err := coordinator.RunExtraction(context.Background(), testToday)
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)

	// The registration's fixed inspector is pinned onto the advance lot.
	assert.Equal(t, []string{"B"}, result.Rows[0].Members())

	// The shared master snapshot stays free of run-local pins.
	assert.Empty(t, bundle.Pins.Match("P", "VISUAL"))
}
