package notify

import (
	"fmt"

	"github.com/gen2brain/beeep"
	"github.com/quotatray/quotatray/internal/core/alert"
	"github.com/quotatray/quotatray/internal/core/model"
	"github.com/quotatray/quotatray/internal/util"
)

// Notifier delivers a threshold alert to the user. Implementations must not
// block the monitor loop for long and must never panic on delivery failure.
type Notifier interface {
	Notify(title, message string, level alert.Level)
}

// DesktopNotifier shows native desktop notifications. Critical alerts use
// the platform's alert variant, which plays a sound where the OS supports
// it.
type DesktopNotifier struct{}

func NewDesktopNotifier() *DesktopNotifier {
	return &DesktopNotifier{}
}

func (n *DesktopNotifier) Notify(title, message string, level alert.Level) {
	var err error
	if level == alert.LevelCritical {
		err = beeep.Alert(title, message, "")
	} else {
		err = beeep.Notify(title, message, "")
	}
	if err != nil {
		// A broken notification daemon must not take the monitor down.
		util.LogWarnf("Desktop notification failed: %v", err)
	}
}

// LogNotifier writes alerts to the log instead of the desktop. Used in
// headless mode and anywhere a notification daemon is unavailable.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Notify(title, message string, level alert.Level) {
	util.LogWarnf("[%s] %s: %s", level, title, message)
}

// TitleFor returns the notification headline for an alert level.
func TitleFor(level alert.Level) string {
	switch level {
	case alert.LevelCritical:
		return "Claude Code CRITICAL Warning"
	case alert.LevelWarning:
		return "Claude Code Usage Warning"
	default:
		return "Claude Code Usage"
	}
}

// MessageFor renders the notification body for a snapshot.
func MessageFor(snap model.UsageSnapshot, plan model.PlanDefinition) string {
	return fmt.Sprintf("Usage at %s of %s (%s / %s tokens). Resets in %s.",
		util.FormatPercent(snap.Percentage),
		plan.DisplayName,
		util.FormatCount(snap.TotalTokens),
		util.FormatCount(snap.Limit),
		util.FormatDuration(snap.TimeRemaining))
}
