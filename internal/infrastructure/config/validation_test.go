package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmurata/inspection-dispatch/internal/infrastructure/config"
)

func TestValidatorClockTimeRule(t *testing.T) {
	type window struct {
		Start string `validate:"omitempty,hhmm"`
	}
	v := config.NewValidator()

	require.NoError(t, v.Validate(window{Start: "12:15"}))
	require.NoError(t, v.Validate(window{}))
	assert.Error(t, v.Validate(window{Start: "not-a-time"}))
}

func TestEngineConfigRejectsBadBreakWindow(t *testing.T) {
	cfg := config.EngineConfig{
		ProductCapHours:    4.0,
		RequiredPivotHours: 3.0,
		Epsilon:            0.05,
		ImbalanceRatio:     0.15,
		RepairIterationCap: 10,
		RebalanceCap:       50,
		BreakStart:         "12:15",
		BreakEnd:           "13:00",
	}
	v := config.NewValidator()
	require.NoError(t, v.Validate(cfg))

	cfg.BreakEnd = "13h00"
	assert.Error(t, v.Validate(cfg))
}
