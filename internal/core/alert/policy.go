package alert

import (
	"time"

	"github.com/quotatray/quotatray/internal/core/model"
)

// Level is the notification severity ladder. Ordering matters: a transition
// to a numerically higher level is an escalation.
type Level int

const (
	LevelNone Level = iota
	LevelWarning
	LevelCritical
)

func (l Level) String() string {
	switch l {
	case LevelWarning:
		return "warning"
	case LevelCritical:
		return "critical"
	default:
		return "none"
	}
}

// LevelFor maps a snapshot status to its notification level
func LevelFor(status model.Status) Level {
	switch status {
	case model.StatusCritical:
		return LevelCritical
	case model.StatusWarning:
		return LevelWarning
	default:
		return LevelNone
	}
}

// State is the process-wide alert bookkeeping. It lives for the process
// lifetime and is reset only on restart or an explicit plan/config change.
type State struct {
	LastNotifiedLevel    Level
	LastNotificationTime time.Time
}

// Decide reports whether a notification should fire for the given snapshot
// and returns the successor state. Pure function; the caller owns the state.
//
// A notification fires on an upward level transition, or when usage is still
// at the last notified elevated level after the cooldown has elapsed. A drop
// from Critical to Warning stays silent and keeps the Critical mark, so
// bouncing around the critical threshold cannot re-alert inside the
// cooldown. Only a return to OK resets the ladder; the next Warning crossing
// after a recovery notifies immediately.
func Decide(prev State, snap model.UsageSnapshot, cfg model.WindowConfig, now time.Time) (bool, State) {
	level := LevelFor(snap.Status)

	switch {
	case level > prev.LastNotifiedLevel:
		return true, State{LastNotifiedLevel: level, LastNotificationTime: now}

	case level == prev.LastNotifiedLevel && level > LevelNone:
		if now.Sub(prev.LastNotificationTime) >= cfg.NotificationCooldown {
			return true, State{LastNotifiedLevel: level, LastNotificationTime: now}
		}
		return false, prev

	case level == LevelNone && prev.LastNotifiedLevel > LevelNone:
		return false, State{}

	default:
		return false, prev
	}
}
