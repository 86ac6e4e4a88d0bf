package monitor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quotatray/quotatray/internal/config"
	"github.com/quotatray/quotatray/internal/core/alert"
	"github.com/quotatray/quotatray/internal/core/model"
	"github.com/quotatray/quotatray/internal/data/tracker"
)

type fakeIndicator struct {
	mu       sync.Mutex
	statuses []model.Status
	pcts     []float64
	tooltips []string
}

func (f *fakeIndicator) SetUsage(status model.Status, percentage float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses = append(f.statuses, status)
	f.pcts = append(f.pcts, percentage)
}

func (f *fakeIndicator) SetTooltip(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tooltips = append(f.tooltips, text)
}

func (f *fakeIndicator) lastStatus() model.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statuses[len(f.statuses)-1]
}

func (f *fakeIndicator) lastTooltip() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tooltips[len(f.tooltips)-1]
}

type fakeNotifier struct {
	mu     sync.Mutex
	titles []string
	levels []alert.Level
}

func (f *fakeNotifier) Notify(title, message string, level alert.Level) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.titles = append(f.titles, title)
	f.levels = append(f.levels, level)
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.levels)
}

var testBase = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func usageLine(id string, ts time.Time, tokens int) string {
	return fmt.Sprintf(`{"type":"assistant","timestamp":%q,"requestId":"req_%s",`+
		`"message":{"id":"msg_%s","model":"claude-sonnet-4","usage":{"input_tokens":%d,"output_tokens":0}}}`,
		ts.Format(time.RFC3339), id, id, tokens)
}

func writeLog(t *testing.T, dir string, lines ...string) {
	t.Helper()
	content := ""
	for _, line := range lines {
		content += line + "\n"
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "usage.jsonl"), []byte(content), 0644))
}

type harness struct {
	monitor   *Monitor
	indicator *fakeIndicator
	notifier  *fakeNotifier
	now       *time.Time
}

func newHarness(t *testing.T, dir, plan, configPath string) *harness {
	t.Helper()
	cfg := config.Default()
	cfg.Plan = plan
	cfg.ClaudeDir = dir

	indicator := &fakeIndicator{}
	notifier := &fakeNotifier{}
	now := testBase.Add(time.Hour)

	h := &harness{indicator: indicator, notifier: notifier, now: &now}
	m, err := New(Options{
		Config:     cfg,
		ConfigPath: configPath,
		Tracker:    tracker.New(dir),
		Indicator:  indicator,
		Notifier:   notifier,
		Now:        func() time.Time { return *h.now },
	})
	require.NoError(t, err)
	h.monitor = m
	return h
}

func TestNew_RequiresCollaborators(t *testing.T) {
	dir := t.TempDir()
	base := Options{
		Config:    config.Default(),
		Tracker:   tracker.New(dir),
		Indicator: &fakeIndicator{},
		Notifier:  &fakeNotifier{},
	}

	missingTracker := base
	missingTracker.Tracker = nil
	_, err := New(missingTracker)
	assert.Error(t, err)

	missingIndicator := base
	missingIndicator.Indicator = nil
	_, err = New(missingIndicator)
	assert.Error(t, err)

	missingNotifier := base
	missingNotifier.Notifier = nil
	_, err = New(missingNotifier)
	assert.Error(t, err)
}

func TestMonitor_PublishesSnapshotOnFirstPass(t *testing.T) {
	dir := t.TempDir()
	writeLog(t, dir,
		usageLine("1", testBase, 100),
		usageLine("2", testBase.Add(5*time.Minute), 200),
	)

	h := newHarness(t, dir, model.PlanMax5, "")
	h.monitor.runPass(true)

	assert.Equal(t, model.StatusOK, h.indicator.lastStatus())
	tooltip := h.indicator.lastTooltip()
	assert.Contains(t, tooltip, "Used: 300 / 88,000,000 tokens")
	assert.Contains(t, tooltip, "Plan: Max 5x")
	assert.Zero(t, h.notifier.count())
}

func TestMonitor_NotifiesOnceWithinCooldown(t *testing.T) {
	dir := t.TempDir()
	// 16M of 17.6M on pro is 90.9%, over the warning threshold.
	writeLog(t, dir, usageLine("1", testBase, 16000000))

	h := newHarness(t, dir, model.PlanPro, "")
	h.monitor.runPass(true)

	require.Equal(t, 1, h.notifier.count())
	assert.Equal(t, alert.LevelWarning, h.notifier.levels[0])
	assert.Equal(t, "Claude Code Usage Warning", h.notifier.titles[0])

	// A minute later nothing changed; the cooldown keeps it quiet.
	*h.now = h.now.Add(time.Minute)
	h.monitor.runPass(false)
	assert.Equal(t, 1, h.notifier.count())
}

func TestMonitor_EventsAgeOutOfWindow(t *testing.T) {
	dir := t.TempDir()
	writeLog(t, dir, usageLine("1", testBase, 500))

	h := newHarness(t, dir, model.PlanMax5, "")
	h.monitor.runPass(true)
	assert.Contains(t, h.indicator.lastTooltip(), "Used: 500")

	// Six hours later the event no longer counts, even with no file change.
	*h.now = testBase.Add(6 * time.Hour)
	h.monitor.runPass(false)
	assert.Equal(t, model.StatusOK, h.indicator.lastStatus())
	assert.Contains(t, h.indicator.lastTooltip(), "No usage in the last 5h 0m")
}

func TestMonitor_PlanSwitchPersistsAndRecomputes(t *testing.T) {
	dir := t.TempDir()
	writeLog(t, dir, usageLine("1", testBase, 45920000))
	configPath := filepath.Join(t.TempDir(), "config.json")

	h := newHarness(t, dir, model.PlanMax5, configPath)
	h.monitor.runPass(true)
	assert.Equal(t, model.StatusOK, h.indicator.lastStatus())

	// 45.92M against pro's 17.6M is far over the critical threshold.
	h.monitor.handleCommand(Command{Kind: CommandPlanChange, Plan: model.PlanPro})

	assert.Equal(t, model.StatusCritical, h.indicator.lastStatus())
	require.Equal(t, 1, h.notifier.count())
	assert.Equal(t, alert.LevelCritical, h.notifier.levels[0])

	persisted, err := config.Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, model.PlanPro, persisted.Plan)
}

func TestMonitor_UnknownPlanIgnored(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(t.TempDir(), "config.json")

	h := newHarness(t, dir, model.PlanMax5, configPath)
	h.monitor.handleCommand(Command{Kind: CommandPlanChange, Plan: "enterprise"})

	assert.Equal(t, model.PlanMax5, h.monitor.plan.Name)
	_, err := os.Stat(configPath)
	assert.True(t, os.IsNotExist(err), "nothing to persist for a rejected switch")
}

func TestMonitor_SamePlanSwitchIsNoop(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(t.TempDir(), "config.json")

	h := newHarness(t, dir, model.PlanMax5, configPath)
	h.monitor.runPass(true)
	passes := len(h.indicator.tooltips)

	h.monitor.handleCommand(Command{Kind: CommandPlanChange, Plan: model.PlanMax5})
	assert.Len(t, h.indicator.tooltips, passes, "no extra pass for a no-op switch")
	_, err := os.Stat(configPath)
	assert.True(t, os.IsNotExist(err))
}

func TestMonitor_PlanCycleWalksDisplayOrder(t *testing.T) {
	dir := t.TempDir()
	h := newHarness(t, dir, model.PlanMax5, "")
	h.monitor.runPass(true)

	h.monitor.handleCommand(Command{Kind: CommandPlanCycle})
	assert.Equal(t, model.PlanMax20, h.monitor.plan.Name)

	h.monitor.handleCommand(Command{Kind: CommandPlanCycle})
	assert.Equal(t, model.PlanPro, h.monitor.plan.Name, "cycle wraps around")
}

func TestMonitor_RefreshCommandRescansImmediately(t *testing.T) {
	dir := t.TempDir()
	h := newHarness(t, dir, model.PlanMax5, "")
	h.monitor.runPass(true)
	assert.Contains(t, h.indicator.lastTooltip(), "No usage")

	writeLog(t, dir, usageLine("1", testBase, 700))
	h.monitor.handleCommand(Command{Kind: CommandRefresh})
	assert.Contains(t, h.indicator.lastTooltip(), "Used: 700")
}

func TestMonitor_RunStopsOnCancel(t *testing.T) {
	dir := t.TempDir()
	h := newHarness(t, dir, model.PlanMax5, "")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.monitor.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("monitor did not stop after cancel")
	}
}
