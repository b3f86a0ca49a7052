package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"gorm.io/gorm"

	"github.com/tmurata/inspection-dispatch/internal/adapters/feeds"
	"github.com/tmurata/inspection-dispatch/internal/adapters/masters"
	"github.com/tmurata/inspection-dispatch/internal/adapters/notify"
	"github.com/tmurata/inspection-dispatch/internal/adapters/persistence"
	"github.com/tmurata/inspection-dispatch/internal/application/common"
	"github.com/tmurata/inspection-dispatch/internal/application/dispatch/services"
	"github.com/tmurata/inspection-dispatch/internal/domain/inspection"
	"github.com/tmurata/inspection-dispatch/internal/domain/shared"
	"github.com/tmurata/inspection-dispatch/internal/infrastructure/config"
	"github.com/tmurata/inspection-dispatch/internal/infrastructure/database"
)

// runtime bundles everything a command needs once the config is loaded.
type runtime struct {
	cfg         *config.Config
	db          *gorm.DB
	coordinator *services.ExtractionCoordinator
	masters     *masters.FileMasterSource
	notifier    *notify.NATSNotifier
}

// buildRuntime wires the full pipeline from configuration. The caller must
// invoke close when done.
func buildRuntime() (*runtime, func(), error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, nil, err
	}

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		database.Close(db)
		return nil, nil, fmt.Errorf("migrating database: %w", err)
	}

	params, err := cfg.Engine.ToParams()
	if err != nil {
		database.Close(db)
		return nil, nil, err
	}

	clock := shared.NewRealClock()
	store := masters.NewStore(cfg.Masters.CacheTTL, cfg.Masters.CacheDir, clock)
	source := masters.NewFileMasterSource(store, masters.Paths{
		ProductMaster:   cfg.Masters.ProductMaster,
		InspectorMaster: cfg.Masters.InspectorMaster,
		SkillMatrix:     cfg.Masters.SkillMatrix,
		VacationSheet:   cfg.Masters.VacationSheet,
	}, cfg.Masters.PinRules())

	shipments := persistence.NewGormShipmentRepository(db)
	inputs := feeds.NewSource(shipments, feeds.Paths{
		Inventory: cfg.Feeds.Inventory,
		Cleaning:  cfg.Feeds.Cleaning,
		Advance:   cfg.Feeds.Advance,
	}, feeds.Filters{
		ExcludedProducts:   cfg.Feeds.ExcludedProducts,
		TargetKeywords:     cfg.Feeds.TargetKeywords,
		CompletionKeywords: cfg.Feeds.CompletionKeywords,
	}, cfg.Feeds.HorizonDays)

	coordinator := services.NewExtractionCoordinator(params, source, inputs, clock)
	runRepo := persistence.NewGormRunRepository(db)
	coordinator.SetRunRepository(runRepo)

	rt := &runtime{
		cfg:         cfg,
		db:          db,
		coordinator: coordinator,
		masters:     source,
	}

	if cfg.Notify.Enabled {
		notifier, err := notify.NewNATSNotifier(cfg.Notify.URL, cfg.Notify.Subject, cfg.Notify.RatePerSecond)
		if err != nil {
			database.Close(db)
			return nil, nil, err
		}
		coordinator.SetNotifier(notifier)
		rt.notifier = notifier
	}

	close := func() {
		if rt.notifier != nil {
			rt.notifier.Close()
		}
		database.Close(db)
	}
	return rt, close, nil
}

// runRepository returns a repository for commands that only read stored runs.
func (rt *runtime) runRepository() *persistence.GormRunRepository {
	return persistence.NewGormRunRepository(rt.db)
}

// loggerContext builds the command context with the configured stdout logger.
func (rt *runtime) loggerContext() context.Context {
	level := rt.cfg.Logging.Level
	if verbose {
		level = "debug"
	}
	return common.WithLogger(context.Background(), &common.StdoutLogger{MinLevel: level})
}

// parseRunDate resolves the --date flag; empty means today.
func parseRunDate(flag string) (time.Time, error) {
	if flag == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local), nil
	}
	d, err := time.Parse("2006-01-02", flag)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date %q, expected YYYY-MM-DD", flag)
	}
	return d, nil
}

// printAssignmentTable renders the assignment rows as a fixed-width table.
func printAssignmentTable(rows []*inspection.AssignmentRow) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SHIP DATE\tPRODUCT\tLOT\tQTY\tTIME(H)\tCREW\tSHARE(H)\tTEAM\tSTATUS")
	for _, row := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.2f\t%d\t%.2f\t%s\t%s\n",
			row.Lot.ShippingDate.String(),
			row.Lot.ProductNumber,
			row.Lot.ProductionLotID,
			row.Lot.LotQuantity,
			row.InspectionTime,
			row.CrewSize(),
			row.DividedTime,
			row.TeamInfo,
			row.Status,
		)
	}
	w.Flush()
}

// printDiagnostics renders the diagnostic stream when verbose is on.
func printDiagnostics(diags []string) {
	if !verbose || len(diags) == 0 {
		return
	}
	fmt.Println("\nDiagnostics:")
	for _, d := range diags {
		fmt.Println("  - " + d)
	}
}

func summarize(rows []*inspection.AssignmentRow) string {
	assigned := 0
	for _, row := range rows {
		if row.Status == inspection.StatusAssigned {
			assigned++
		}
	}
	return fmt.Sprintf("%d lots, %d assigned, %d unassigned", len(rows), assigned, len(rows)-assigned)
}
