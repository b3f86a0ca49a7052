package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tmurata/inspection-dispatch/internal/adapters/feeds"
	"github.com/tmurata/inspection-dispatch/internal/adapters/masters"
	"github.com/tmurata/inspection-dispatch/internal/adapters/metrics"
	"github.com/tmurata/inspection-dispatch/internal/adapters/notify"
	"github.com/tmurata/inspection-dispatch/internal/adapters/persistence"
	"github.com/tmurata/inspection-dispatch/internal/application/common"
	"github.com/tmurata/inspection-dispatch/internal/application/dispatch/services"
	"github.com/tmurata/inspection-dispatch/internal/domain/inspection"
	"github.com/tmurata/inspection-dispatch/internal/domain/shared"
	"github.com/tmurata/inspection-dispatch/internal/infrastructure/config"
	"github.com/tmurata/inspection-dispatch/internal/infrastructure/database"
	"github.com/tmurata/inspection-dispatch/internal/infrastructure/pidfile"
)

func main() {
	fmt.Println("Inspection Dispatch Daemon v0.1.0")
	fmt.Println("=================================")

	// Load configuration
	fmt.Println("Loading configuration...")
	cfg := config.MustLoadConfig("") // Empty string = search default paths

	// Acquire PID file lock to prevent multiple instances
	pf := pidfile.New(cfg.Daemon.PIDFile)
	if err := pf.Acquire(); err != nil {
		log.Fatalf("Failed to acquire PID file: %v", err)
	}
	defer pf.Release()

	// Connect to the database
	fmt.Println("Connecting to database...")
	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	params, err := cfg.Engine.ToParams()
	if err != nil {
		log.Fatalf("Invalid engine configuration: %v", err)
	}

	// Master snapshots with optional file watching
	clock := shared.NewRealClock()
	store := masters.NewStore(cfg.Masters.CacheTTL, cfg.Masters.CacheDir, clock)
	masterPaths := masters.Paths{
		ProductMaster:   cfg.Masters.ProductMaster,
		InspectorMaster: cfg.Masters.InspectorMaster,
		SkillMatrix:     cfg.Masters.SkillMatrix,
		VacationSheet:   cfg.Masters.VacationSheet,
	}
	source := masters.NewFileMasterSource(store, masterPaths, cfg.Masters.PinRules())

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
	coordinator.SetRunRepository(persistence.NewGormRunRepository(db))

	// Daemon-wide context, cancelled on SIGINT/SIGTERM
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	logger := &common.StdoutLogger{MinLevel: cfg.Logging.Level}
	ctx = common.WithLogger(ctx, logger)

	if cfg.Masters.Watch {
		watcher, err := masters.NewWatcher(store, masterPaths)
		if err != nil {
			log.Fatalf("Failed to start master watcher: %v", err)
		}
		go watcher.Run(ctx)
		fmt.Println("Master file watcher started")
	}

	// Metrics endpoint
	if cfg.Daemon.MetricsEnabled {
		metrics.InitRegistry()
		collector := metrics.NewRunMetricsCollector()
		if err := collector.Register(metrics.GetRegistry()); err != nil {
			log.Fatalf("Failed to register metrics: %v", err)
		}
		coordinator.SetMetrics(collector)

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
		server := &http.Server{Addr: cfg.Daemon.MetricsAddress, Handler: mux}
		go func() {
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("Metrics server error: %v", err)
			}
		}()
		defer server.Shutdown(context.Background())
		fmt.Printf("Metrics listening on %s\n", cfg.Daemon.MetricsAddress)
	}

	// Chat notifier
	if cfg.Notify.Enabled {
		notifier, err := notify.NewNATSNotifier(cfg.Notify.URL, cfg.Notify.Subject, cfg.Notify.RatePerSecond)
		if err != nil {
			log.Fatalf("Failed to connect to NATS: %v", err)
		}
		defer notifier.Close()
		coordinator.SetNotifier(notifier)
		fmt.Printf("NATS notifier connected (%s)\n", cfg.Notify.URL)
	}

	// Weekday extraction schedule
	runAt, err := shared.ParseMinuteOfDay(cfg.Daemon.RunAt)
	if err != nil {
		log.Fatalf("Invalid daemon.run_at: %v", err)
	}
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}
	cronExpr := fmt.Sprintf("%d %d * * 1-5", int(runAt)%60, int(runAt)/60)
	_, err = scheduler.NewJob(
		gocron.CronJob(cronExpr, false),
		gocron.NewTask(func() {
			runExtraction(ctx, coordinator, logger)
		}),
		gocron.WithName("daily-extraction"),
	)
	if err != nil {
		log.Fatalf("Failed to schedule extraction: %v", err)
	}
	scheduler.Start()
	defer scheduler.Shutdown()
	fmt.Printf("Extraction scheduled at %s on weekdays (cron %q)\n", cfg.Daemon.RunAt, cronExpr)

	// Wait for shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	fmt.Println("\nShutting down...")
}

func runExtraction(ctx context.Context, coordinator *services.ExtractionCoordinator, logger common.RunLogger) {
	now := time.Now()
	runDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)

	result, err := coordinator.RunExtraction(ctx, runDate)
	if err != nil {
		logger.Log("ERROR", fmt.Sprintf("Extraction run failed: %v", err), nil)
		return
	}
	assigned := 0
	for _, row := range result.Rows {
		if row.Status == inspection.StatusAssigned {
			assigned++
		}
	}
	logger.Log("INFO", "Extraction run finished", map[string]interface{}{
		"run_id":     result.RunID,
		"lots":       len(result.Rows),
		"assigned":   assigned,
		"unassigned": len(result.Rows) - assigned,
	})
}
