package window

import (
	"time"

	"github.com/samber/lo"

	"github.com/quotatray/quotatray/internal/core/model"
)

// Aggregate computes a fresh UsageSnapshot from the retained event set.
//
// The window is a strictly rolling interval [now-duration, now] anchored to
// the clock, not to a calendar slot: an event is counted when its timestamp
// falls inside the interval, after de-duplication by RecordID. Events with
// timestamps after now (clock skew between writers) are not counted.
//
// TimeRemaining is anchored to traffic: it is the time until the earliest
// counted event ages out of the window, i.e. when usage starts decreasing
// again. An empty window reports the full duration.
//
// Deterministic and idempotent: the same inputs always produce a
// bit-identical snapshot.
func Aggregate(events []model.UsageEvent, plan model.PlanDefinition, cfg model.WindowConfig, now time.Time) model.UsageSnapshot {
	windowStart := now.Add(-cfg.Duration)

	counted := lo.Filter(dedupe(events), func(e model.UsageEvent, _ int) bool {
		return !e.Timestamp.Before(windowStart) && !e.Timestamp.After(now)
	})

	snapshot := model.UsageSnapshot{
		WindowStart:   windowStart,
		WindowEnd:     now,
		Limit:         plan.TokenLimit,
		TimeRemaining: cfg.Duration,
		Status:        model.StatusOK,
	}
	if len(counted) == 0 {
		return snapshot
	}

	snapshot.TotalTokens = lo.SumBy(counted, func(e model.UsageEvent) int {
		return e.TotalTokens()
	})
	if plan.TokenLimit > 0 {
		snapshot.Percentage = 100 * float64(snapshot.TotalTokens) / float64(plan.TokenLimit)
	}
	snapshot.Status = statusFor(snapshot.Percentage, cfg.WarningThresholdPct)

	earliest := lo.MinBy(counted, func(a, b model.UsageEvent) bool {
		return a.Timestamp.Before(b.Timestamp)
	})
	latest := lo.MaxBy(counted, func(a, b model.UsageEvent) bool {
		return a.Timestamp.After(b.Timestamp)
	})

	snapshot.WindowEnd = latest.Timestamp
	remaining := earliest.Timestamp.Add(cfg.Duration).Sub(now)
	if remaining < 0 {
		remaining = 0
	}
	snapshot.TimeRemaining = remaining

	return snapshot
}

// Prune drops events that have aged past twice the window duration. Bounds
// retained memory without affecting any countable event.
func Prune(events []model.UsageEvent, cfg model.WindowConfig, now time.Time) []model.UsageEvent {
	horizon := now.Add(-2 * cfg.Duration)
	return lo.Filter(events, func(e model.UsageEvent, _ int) bool {
		return !e.Timestamp.Before(horizon)
	})
}

// statusFor maps a percentage to its severity tier. Comparisons are >=, so
// landing exactly on a threshold already escalates.
func statusFor(percentage, warningThreshold float64) model.Status {
	switch {
	case percentage >= model.CriticalThresholdPct:
		return model.StatusCritical
	case percentage >= warningThreshold:
		return model.StatusWarning
	default:
		return model.StatusOK
	}
}

// dedupe collapses events sharing a RecordID. Last write wins for the value
// while the first occurrence keeps its position, so output order is stable
// for identical input.
func dedupe(events []model.UsageEvent) []model.UsageEvent {
	out := make([]model.UsageEvent, 0, len(events))
	index := make(map[string]int, len(events))
	for _, e := range events {
		if i, seen := index[e.RecordID]; seen {
			out[i] = e
			continue
		}
		index[e.RecordID] = len(out)
		out = append(out, e)
	}
	return out
}
