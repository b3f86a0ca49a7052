package config

// NotifyConfig holds the NATS chat-bridge settings
type NotifyConfig struct {
	// Enable publishing of the non-inspection side list
	Enabled bool `mapstructure:"enabled"`

	// NATS server URL, e.g. nats://localhost:4222
	URL string `mapstructure:"url"`

	// Subject the chat bridge subscribes to
	Subject string `mapstructure:"subject"`

	// Messages per second towards the bridge
	RatePerSecond float64 `mapstructure:"rate_per_second" validate:"gte=0"`
}

// DaemonConfig holds the scheduling daemon settings
type DaemonConfig struct {
	// Extraction run time on weekdays, HH:MM
	RunAt string `mapstructure:"run_at"`

	// Prometheus exposition address, e.g. :9090
	MetricsAddress string `mapstructure:"metrics_address"`

	// Enable the metrics endpoint
	MetricsEnabled bool `mapstructure:"metrics_enabled"`

	// PID file enforcing a single daemon instance
	PIDFile string `mapstructure:"pid_file"`
}
