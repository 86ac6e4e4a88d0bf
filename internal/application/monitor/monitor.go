package monitor

import (
	"context"
	"errors"
	"time"

	"github.com/quotatray/quotatray/internal/config"
	"github.com/quotatray/quotatray/internal/core/alert"
	"github.com/quotatray/quotatray/internal/core/model"
	"github.com/quotatray/quotatray/internal/core/window"
	"github.com/quotatray/quotatray/internal/data/tracker"
	"github.com/quotatray/quotatray/internal/notify"
	"github.com/quotatray/quotatray/internal/util"
)

// CommandKind selects what a Command asks the loop to do.
type CommandKind int

const (
	CommandRefresh CommandKind = iota
	CommandPlanChange
	CommandPlanCycle
)

// Command is a request handed to the monitor loop from the outside, tray
// menu clicks mostly.
type Command struct {
	Kind CommandKind
	Plan string
}

// Indicator receives usage updates. The system tray and the terminal status
// line both satisfy it. SetUsage always arrives before SetTooltip within a
// pass.
type Indicator interface {
	SetUsage(status model.Status, percentage float64)
	SetTooltip(text string)
}

// Options wires a Monitor together.
type Options struct {
	Config     config.Config
	ConfigPath string // plan switches are persisted here; empty disables persistence
	Tracker    *tracker.Tracker
	Indicator  Indicator
	Notifier   notify.Notifier

	// WatchSignal, when set, triggers a pass outside the regular tick.
	WatchSignal <-chan struct{}

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Monitor owns the scan-aggregate-publish cycle. All state lives on the
// loop goroutine; the outside world talks to it through Commands and the
// context.
type Monitor struct {
	cfg        config.Config
	configPath string
	tracker    *tracker.Tracker
	indicator  Indicator
	notifier   notify.Notifier
	watch      <-chan struct{}
	now        func() time.Time

	plan       model.PlanDefinition
	windowCfg  model.WindowConfig
	events     []model.UsageEvent
	alertState alert.State
	commands   chan Command
}

func New(opts Options) (*Monitor, error) {
	if opts.Tracker == nil {
		return nil, errors.New("monitor: tracker is required")
	}
	if opts.Indicator == nil {
		return nil, errors.New("monitor: indicator is required")
	}
	if opts.Notifier == nil {
		return nil, errors.New("monitor: notifier is required")
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Monitor{
		cfg:        opts.Config,
		configPath: opts.ConfigPath,
		tracker:    opts.Tracker,
		indicator:  opts.Indicator,
		notifier:   opts.Notifier,
		watch:      opts.WatchSignal,
		now:        now,
		plan:       opts.Config.PlanDefinition(),
		windowCfg:  opts.Config.WindowConfig(),
		commands:   make(chan Command, 8),
	}, nil
}

// Refresh asks the loop for an immediate rescan.
func (m *Monitor) Refresh() {
	m.send(Command{Kind: CommandRefresh})
}

// SwitchPlan asks the loop to change the active plan.
func (m *Monitor) SwitchPlan(name string) {
	m.send(Command{Kind: CommandPlanChange, Plan: name})
}

// CyclePlan asks the loop to move to the next plan in display order.
func (m *Monitor) CyclePlan() {
	m.send(Command{Kind: CommandPlanCycle})
}

// send never blocks; tray callbacks must not stall on a busy loop.
func (m *Monitor) send(cmd Command) {
	select {
	case m.commands <- cmd:
	default:
		util.LogWarnf("Command dropped, monitor loop busy: kind=%d", cmd.Kind)
	}
}

// Run executes the monitor loop until the context is cancelled. The first
// pass happens immediately so the indicator never shows stale nothing.
func (m *Monitor) Run(ctx context.Context) error {
	util.LogInfof("Monitor started: plan=%s window=%s refresh=%s dir=%s",
		m.plan.Name, m.windowCfg.Duration, m.cfg.RefreshInterval(), m.tracker.Root())

	ticker := time.NewTicker(m.cfg.RefreshInterval())
	defer ticker.Stop()

	m.runPass(true)

	for {
		select {
		case <-ctx.Done():
			util.LogInfo("Monitor stopped")
			return nil

		case <-ticker.C:
			m.runPass(false)

		case <-m.watch:
			m.runPass(false)

		case cmd := <-m.commands:
			m.handleCommand(cmd)
		}
	}
}

// runPass is one scan-aggregate-publish cycle. Aggregation always runs even
// when no file changed: events age out of the window as time passes.
func (m *Monitor) runPass(force bool) {
	if force || m.tracker.HasChanges() {
		m.events = append(m.events, m.tracker.Scan()...)
	}

	now := m.now()
	m.events = window.Prune(m.events, m.windowCfg, now)
	snap := window.Aggregate(m.events, m.plan, m.windowCfg, now)
	m.publish(snap)

	notified, state := alert.Decide(m.alertState, snap, m.windowCfg, now)
	m.alertState = state
	if notified {
		level := alert.LevelFor(snap.Status)
		m.notifier.Notify(notify.TitleFor(level), notify.MessageFor(snap, m.plan), level)
	}
}

func (m *Monitor) publish(snap model.UsageSnapshot) {
	m.indicator.SetUsage(snap.Status, snap.Percentage)
	m.indicator.SetTooltip(BuildTooltip(snap, m.plan, m.tracker.Stats()))
}

func (m *Monitor) handleCommand(cmd Command) {
	switch cmd.Kind {
	case CommandRefresh:
		util.LogDebug("Manual refresh requested")
		m.runPass(true)
	case CommandPlanChange:
		m.switchPlan(cmd.Plan)
	case CommandPlanCycle:
		m.switchPlan(model.PlanAfter(m.plan.Name).Name)
	}
}

func (m *Monitor) switchPlan(name string) {
	plan, ok := model.FindPlan(name)
	if !ok {
		util.LogWarnf("Ignoring unknown plan: %q", name)
		return
	}
	if plan.Name == m.plan.Name {
		return
	}

	m.plan = plan
	m.cfg.Plan = plan.Name
	if m.configPath != "" {
		if err := config.Save(m.configPath, m.cfg); err != nil {
			util.LogWarnf("Failed to persist plan change: %v", err)
		}
	}

	// Thresholds mean something different against the new limit; alert
	// history from the old plan no longer applies.
	m.alertState = alert.State{}
	util.LogInfof("Plan switched to %s (%s tokens)", plan.DisplayName, util.FormatCount(plan.TokenLimit))
	m.runPass(false)
}
