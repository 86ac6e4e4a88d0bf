package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUsageEventTotalTokens(t *testing.T) {
	tests := []struct {
		name     string
		event    UsageEvent
		expected int
	}{
		{
			name:     "all zero",
			event:    UsageEvent{},
			expected: 0,
		},
		{
			name: "input and output only",
			event: UsageEvent{
				InputTokens:  120,
				OutputTokens: 340,
			},
			expected: 460,
		},
		{
			name: "all four fields",
			event: UsageEvent{
				InputTokens:         100,
				OutputTokens:        200,
				CacheCreationTokens: 300,
				CacheReadTokens:     400,
			},
			expected: 1000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.event.TotalTokens())
		})
	}
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "OK", StatusOK.String())
	assert.Equal(t, "Warning", StatusWarning.String())
	assert.Equal(t, "Critical", StatusCritical.String())
}

func TestDefaultWindowConfig(t *testing.T) {
	cfg := DefaultWindowConfig()
	assert.Equal(t, 5*time.Hour, cfg.Duration)
	assert.Equal(t, 90.0, cfg.WarningThresholdPct)
	assert.Equal(t, 15*time.Minute, cfg.NotificationCooldown)
}
