package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/quotatray/quotatray/internal/core/alert"
	"github.com/quotatray/quotatray/internal/core/model"
)

func TestTitleFor(t *testing.T) {
	tests := []struct {
		name     string
		level    alert.Level
		expected string
	}{
		{name: "warning", level: alert.LevelWarning, expected: "Claude Code Usage Warning"},
		{name: "critical", level: alert.LevelCritical, expected: "Claude Code CRITICAL Warning"},
		{name: "none falls back to plain title", level: alert.LevelNone, expected: "Claude Code Usage"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TitleFor(tt.level))
		})
	}
}

func TestMessageFor(t *testing.T) {
	snap := model.UsageSnapshot{
		TotalTokens:   81400000,
		Limit:         88000000,
		Percentage:    92.5,
		TimeRemaining: 2*time.Hour + 30*time.Minute,
		Status:        model.StatusWarning,
	}
	plan, _ := model.FindPlan(model.PlanMax5)

	message := MessageFor(snap, plan)
	assert.Equal(t,
		"Usage at 92.5% of Max 5x (81,400,000 / 88,000,000 tokens). Resets in 2h 30m.",
		message)
}

func TestNotifierImplementations(t *testing.T) {
	var _ Notifier = NewDesktopNotifier()
	var _ Notifier = NewLogNotifier()
}
