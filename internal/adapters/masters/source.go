package masters

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tmurata/inspection-dispatch/internal/application/common"
	"github.com/tmurata/inspection-dispatch/internal/domain/inspection"
)

// Paths names the file-backed master inputs.
type Paths struct {
	ProductMaster   string
	InspectorMaster string
	SkillMatrix     string
	VacationSheet   string
}

// FileMasterSource loads the master bundle from CSV files through the
// snapshot store. Fixed-pin rules come from configuration, not a file, and
// are passed in at construction.
type FileMasterSource struct {
	store *Store
	paths Paths
	pins  []inspection.FixedPinRule
}

// NewFileMasterSource wires a source over a snapshot store.
func NewFileMasterSource(store *Store, paths Paths, pins []inspection.FixedPinRule) *FileMasterSource {
	return &FileMasterSource{store: store, paths: paths, pins: pins}
}

// LoadBundle loads the four file-backed masters in parallel. If the parallel
// load fails it retries each master sequentially once; transient contention
// on a sheet being re-exported usually clears between the two attempts.
func (s *FileMasterSource) LoadBundle(ctx context.Context, runDate time.Time) (*inspection.MasterBundle, error) {
	logger := common.LoggerFromContext(ctx)

	bundle, err := s.loadParallel(ctx)
	if err != nil {
		logger.Log("WARN", fmt.Sprintf("Parallel master load failed, retrying sequentially: %v", err), nil)
		bundle, err = s.loadSequential(ctx)
		if err != nil {
			return nil, err
		}
	}
	return bundle, nil
}

func (s *FileMasterSource) loadParallel(ctx context.Context) (*inspection.MasterBundle, error) {
	var (
		rates      []inspection.ProductRate
		inspectors []inspection.Inspector
		skills     []inspection.SkillRow
		vacations  []inspection.VacationEntry
	)

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rates, err = s.store.ProductRates(s.paths.ProductMaster)
		return err
	})
	g.Go(func() error {
		var err error
		inspectors, err = s.store.Inspectors(s.paths.InspectorMaster)
		return err
	})
	g.Go(func() error {
		var err error
		skills, err = s.store.SkillRows(s.paths.SkillMatrix)
		return err
	})
	g.Go(func() error {
		var err error
		vacations, err = s.store.VacationEntries(s.paths.VacationSheet)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return s.assemble(rates, inspectors, skills, vacations), nil
}

func (s *FileMasterSource) loadSequential(ctx context.Context) (*inspection.MasterBundle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rates, err := s.store.ProductRates(s.paths.ProductMaster)
	if err != nil {
		return nil, err
	}
	inspectors, err := s.store.Inspectors(s.paths.InspectorMaster)
	if err != nil {
		return nil, err
	}
	skills, err := s.store.SkillRows(s.paths.SkillMatrix)
	if err != nil {
		return nil, err
	}
	vacations, err := s.store.VacationEntries(s.paths.VacationSheet)
	if err != nil {
		return nil, err
	}
	return s.assemble(rates, inspectors, skills, vacations), nil
}

func (s *FileMasterSource) assemble(
	rates []inspection.ProductRate,
	inspectors []inspection.Inspector,
	skills []inspection.SkillRow,
	vacations []inspection.VacationEntry,
) *inspection.MasterBundle {
	return &inspection.MasterBundle{
		Products:  inspection.NewProductMaster(rates),
		Roster:    inspection.NewRoster(inspectors),
		Skills:    inspection.NewSkillMatrix(skills),
		Vacations: inspection.NewVacationCalendar(vacations),
		Pins:      inspection.NewFixedPinTable(s.pins),
	}
}
