package ui

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"fyne.io/systray"
	"github.com/quotatray/quotatray/internal/core/model"
)

// TrayOptions carries the callbacks fired by menu clicks plus the settings
// shown in the read-only Settings submenu. All callbacks run on tray-owned
// goroutines and must hand work off instead of blocking.
type TrayOptions struct {
	ActivePlan       string
	WarningThreshold float64
	RefreshInterval  time.Duration

	OnRefresh    func()
	OnPlanChange func(plan string)
	OnQuit       func()
}

// Tray is the system tray presence: icon, tooltip, and menu. Usage updates
// arriving before the tray loop is up are buffered and applied once it is.
type Tray struct {
	opts TrayOptions

	mu      sync.Mutex
	ready   bool
	icon    []byte
	tooltip string

	usageItem *systray.MenuItem
	planItems map[string]*systray.MenuItem
}

func NewTray(opts TrayOptions) *Tray {
	return &Tray{
		opts:      opts,
		planItems: make(map[string]*systray.MenuItem),
	}
}

// Run hands the calling goroutine to the system tray event loop and blocks
// until Quit. Most platforms require this to be the main goroutine.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit asks the tray loop to exit. Safe to call from any goroutine.
func (t *Tray) Quit() {
	systray.Quit()
}

// SetUsage recolors the tray icon for the given status and fill percentage.
func (t *Tray) SetUsage(status model.Status, percentage float64) {
	icon := Render(status, percentage)
	if icon == nil {
		return
	}

	t.mu.Lock()
	t.icon = icon
	ready := t.ready
	t.mu.Unlock()

	if ready {
		systray.SetIcon(icon)
	}
}

// SetTooltip updates the hover text and mirrors its first line into the
// disabled usage row at the top of the menu.
func (t *Tray) SetTooltip(text string) {
	t.mu.Lock()
	t.tooltip = text
	ready := t.ready
	t.mu.Unlock()

	if !ready {
		return
	}
	systray.SetTooltip(text)
	t.usageItem.SetTitle(firstLine(text))
}

func (t *Tray) onReady() {
	systray.SetTooltip("Claude usage monitor")

	t.usageItem = systray.AddMenuItem("No usage data yet", "Current window usage")
	t.usageItem.Disable()
	systray.AddSeparator()

	refresh := systray.AddMenuItem("Refresh", "Rescan the log directory")

	planMenu := systray.AddMenuItem("Plan", "Switch subscription plan")
	for _, plan := range model.Plans() {
		item := planMenu.AddSubMenuItemCheckbox(plan.DisplayName, "", plan.Name == t.opts.ActivePlan)
		t.planItems[plan.Name] = item
	}

	settings := systray.AddMenuItem("Settings", "Effective configuration")
	threshold := settings.AddSubMenuItem(fmt.Sprintf("Threshold: %.0f%%", t.opts.WarningThreshold), "")
	threshold.Disable()
	interval := settings.AddSubMenuItem(fmt.Sprintf("Interval: %s", t.opts.RefreshInterval), "")
	interval.Disable()
	systray.AddSeparator()

	quit := systray.AddMenuItem("Quit", "Stop monitoring and exit")

	for name, item := range t.planItems {
		go t.watchPlanItem(name, item)
	}
	go func() {
		for {
			select {
			case <-refresh.ClickedCh:
				if t.opts.OnRefresh != nil {
					t.opts.OnRefresh()
				}
			case <-quit.ClickedCh:
				systray.Quit()
				return
			}
		}
	}()

	// Apply whatever the monitor published while the tray was starting.
	t.mu.Lock()
	icon, tooltip := t.icon, t.tooltip
	t.ready = true
	t.mu.Unlock()

	if icon != nil {
		systray.SetIcon(icon)
	}
	if tooltip != "" {
		systray.SetTooltip(tooltip)
		t.usageItem.SetTitle(firstLine(tooltip))
	}
}

func (t *Tray) onExit() {
	if t.opts.OnQuit != nil {
		t.opts.OnQuit()
	}
}

func (t *Tray) watchPlanItem(name string, item *systray.MenuItem) {
	for range item.ClickedCh {
		t.markPlan(name)
		if t.opts.OnPlanChange != nil {
			t.opts.OnPlanChange(name)
		}
	}
}

// markPlan moves the checkmark. The monitor confirms the switch separately;
// the optimistic update just keeps the menu snappy.
func (t *Tray) markPlan(name string) {
	for planName, item := range t.planItems {
		if planName == name {
			item.Check()
		} else {
			item.Uncheck()
		}
	}
}

func firstLine(text string) string {
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		return text[:i]
	}
	return text
}
