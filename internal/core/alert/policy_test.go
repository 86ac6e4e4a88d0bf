package alert

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/quotatray/quotatray/internal/core/model"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func snapWith(status model.Status) model.UsageSnapshot {
	return model.UsageSnapshot{Status: status}
}

func cooldownConfig() model.WindowConfig {
	return model.WindowConfig{
		Duration:             5 * time.Hour,
		WarningThresholdPct:  90,
		NotificationCooldown: 15 * time.Minute,
	}
}

func TestDecideUpwardTransitionsNotify(t *testing.T) {
	tests := []struct {
		name   string
		prev   State
		status model.Status
		level  Level
	}{
		{
			name:   "ok to warning",
			prev:   State{},
			status: model.StatusWarning,
			level:  LevelWarning,
		},
		{
			name:   "ok to critical",
			prev:   State{},
			status: model.StatusCritical,
			level:  LevelCritical,
		},
		{
			name:   "warning to critical",
			prev:   State{LastNotifiedLevel: LevelWarning, LastNotificationTime: t0.Add(-time.Minute)},
			status: model.StatusCritical,
			level:  LevelCritical,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notify, next := Decide(tt.prev, snapWith(tt.status), cooldownConfig(), t0)
			assert.True(t, notify)
			assert.Equal(t, tt.level, next.LastNotifiedLevel)
			assert.Equal(t, t0, next.LastNotificationTime)
		})
	}
}

func TestDecideCooldownSuppressesRepeat(t *testing.T) {
	cfg := cooldownConfig()

	// first cycle at critical notifies
	notify, state := Decide(State{}, snapWith(model.StatusCritical), cfg, t0)
	assert.True(t, notify)

	// second cycle 30s later, still critical, stays quiet
	notify, state = Decide(state, snapWith(model.StatusCritical), cfg, t0.Add(30*time.Second))
	assert.False(t, notify)
	assert.Equal(t, t0, state.LastNotificationTime, "suppressed cycle keeps the old clock")

	// still inside the cooldown
	notify, state = Decide(state, snapWith(model.StatusCritical), cfg, t0.Add(14*time.Minute))
	assert.False(t, notify)

	// cooldown elapsed, re-alerts
	notify, state = Decide(state, snapWith(model.StatusCritical), cfg, t0.Add(15*time.Minute))
	assert.True(t, notify)
	assert.Equal(t, t0.Add(15*time.Minute), state.LastNotificationTime)
}

func TestDecideCooldownBoundaryIsInclusive(t *testing.T) {
	cfg := cooldownConfig()
	state := State{LastNotifiedLevel: LevelWarning, LastNotificationTime: t0}

	notify, _ := Decide(state, snapWith(model.StatusWarning), cfg, t0.Add(cfg.NotificationCooldown))
	assert.True(t, notify, "elapsed == cooldown re-alerts")

	notify, _ = Decide(state, snapWith(model.StatusWarning), cfg, t0.Add(cfg.NotificationCooldown-time.Second))
	assert.False(t, notify)
}

func TestDecideDownwardToWarningStaysSilentAndKeepsLevel(t *testing.T) {
	state := State{LastNotifiedLevel: LevelCritical, LastNotificationTime: t0}

	notify, next := Decide(state, snapWith(model.StatusWarning), cooldownConfig(), t0.Add(time.Minute))

	assert.False(t, notify)
	assert.Equal(t, LevelCritical, next.LastNotifiedLevel, "critical mark survives the dip")
	assert.Equal(t, t0, next.LastNotificationTime)
}

func TestDecideReEscalationInsideCooldownStaysSuppressed(t *testing.T) {
	cfg := cooldownConfig()
	state := State{LastNotifiedLevel: LevelCritical, LastNotificationTime: t0}

	// dip to warning, then back to critical two minutes later
	_, state = Decide(state, snapWith(model.StatusWarning), cfg, t0.Add(time.Minute))
	notify, state := Decide(state, snapWith(model.StatusCritical), cfg, t0.Add(2*time.Minute))

	assert.False(t, notify, "bouncing across the critical threshold must not re-alert")
	assert.Equal(t, LevelCritical, state.LastNotifiedLevel)
}

func TestDecideRecoveryResetsLadder(t *testing.T) {
	cfg := cooldownConfig()
	state := State{LastNotifiedLevel: LevelCritical, LastNotificationTime: t0}

	// drop all the way to OK: silent reset
	notify, state := Decide(state, snapWith(model.StatusOK), cfg, t0.Add(time.Minute))
	assert.False(t, notify)
	assert.Equal(t, LevelNone, state.LastNotifiedLevel)
	assert.True(t, state.LastNotificationTime.IsZero())

	// fresh warning right after recovery notifies immediately
	notify, state = Decide(state, snapWith(model.StatusWarning), cfg, t0.Add(2*time.Minute))
	assert.True(t, notify)
	assert.Equal(t, LevelWarning, state.LastNotifiedLevel)
}

func TestDecideQuietWhileOK(t *testing.T) {
	notify, next := Decide(State{}, snapWith(model.StatusOK), cooldownConfig(), t0)
	assert.False(t, notify)
	assert.Equal(t, State{}, next)
}

func TestLevelFor(t *testing.T) {
	assert.Equal(t, LevelNone, LevelFor(model.StatusOK))
	assert.Equal(t, LevelWarning, LevelFor(model.StatusWarning))
	assert.Equal(t, LevelCritical, LevelFor(model.StatusCritical))
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "none", LevelNone.String())
	assert.Equal(t, "warning", LevelWarning.String())
	assert.Equal(t, "critical", LevelCritical.String())
}
