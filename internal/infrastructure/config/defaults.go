package config

import (
	"time"

	"github.com/tmurata/inspection-dispatch/internal/application/dispatch/services"
)

// SetDefaults sets default values for all configuration fields
func SetDefaults(cfg *Config) {
	// Database defaults
	if cfg.Database.Type == "" {
		cfg.Database.Type = "sqlite"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "dispatch"
	}
	if cfg.Database.Name == "" {
		cfg.Database.Name = "dispatch"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "dispatch.db"
	}
	if cfg.Database.Pool.MaxOpen == 0 {
		cfg.Database.Pool.MaxOpen = 25
	}
	if cfg.Database.Pool.MaxIdle == 0 {
		cfg.Database.Pool.MaxIdle = 5
	}
	if cfg.Database.Pool.MaxLifetime == 0 {
		cfg.Database.Pool.MaxLifetime = 5 * time.Minute
	}

	// Engine defaults match the documented floor practice
	if cfg.Engine.ProductCapHours == 0 {
		cfg.Engine.ProductCapHours = services.DefaultProductCapHours
	}
	if cfg.Engine.RequiredPivotHours == 0 {
		cfg.Engine.RequiredPivotHours = services.DefaultRequiredPivotHours
	}
	if cfg.Engine.Epsilon == 0 {
		cfg.Engine.Epsilon = services.DefaultEpsilonHours
	}
	if cfg.Engine.ImbalanceRatio == 0 {
		cfg.Engine.ImbalanceRatio = services.DefaultImbalanceRatio
	}
	if cfg.Engine.RepairIterationCap == 0 {
		cfg.Engine.RepairIterationCap = services.DefaultRepairIterationCap
	}
	if cfg.Engine.RebalanceCap == 0 {
		cfg.Engine.RebalanceCap = services.DefaultRebalanceCap
	}
	if cfg.Engine.BreakStart == "" {
		cfg.Engine.BreakStart = "12:15"
	}
	if cfg.Engine.BreakEnd == "" {
		cfg.Engine.BreakEnd = "13:00"
	}

	// Masters defaults
	if cfg.Masters.CacheTTL == 0 {
		cfg.Masters.CacheTTL = 5 * time.Minute
	}

	// Notify defaults
	if cfg.Notify.URL == "" {
		cfg.Notify.URL = "nats://localhost:4222"
	}
	if cfg.Notify.Subject == "" {
		cfg.Notify.Subject = "dispatch.non-inspection"
	}
	if cfg.Notify.RatePerSecond == 0 {
		cfg.Notify.RatePerSecond = 5
	}

	// Daemon defaults
	if cfg.Daemon.RunAt == "" {
		cfg.Daemon.RunAt = "07:30"
	}
	if cfg.Daemon.MetricsAddress == "" {
		cfg.Daemon.MetricsAddress = ":9090"
	}
	if cfg.Daemon.PIDFile == "" {
		cfg.Daemon.PIDFile = "/tmp/dispatchd.pid"
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}
