package monitor

import (
	"fmt"
	"strings"

	"github.com/quotatray/quotatray/internal/core/model"
	"github.com/quotatray/quotatray/internal/data/tracker"
	"github.com/quotatray/quotatray/internal/util"
)

// BuildTooltip renders the hover text shown by the tray icon. The first
// line doubles as the usage row at the top of the tray menu, so it carries
// the numbers that matter most.
func BuildTooltip(snap model.UsageSnapshot, plan model.PlanDefinition, stats tracker.Stats) string {
	var b strings.Builder

	if snap.TotalTokens == 0 {
		fmt.Fprintf(&b, "No usage in the last %s\n", util.FormatDuration(snap.WindowEnd.Sub(snap.WindowStart)))
		fmt.Fprintf(&b, "Plan: %s (%s tokens)", plan.DisplayName, util.FormatCount(plan.TokenLimit))
		if stats.FilesDiscovered == 0 {
			b.WriteString("\nNo log files found")
		}
		return b.String()
	}

	fmt.Fprintf(&b, "Used: %s / %s tokens (%s)\n",
		util.FormatCount(snap.TotalTokens), util.FormatCount(snap.Limit), util.FormatPercent(snap.Percentage))
	fmt.Fprintf(&b, "Resets in: %s\n", util.FormatDuration(snap.TimeRemaining))
	fmt.Fprintf(&b, "Status: %s\n", snap.Status)
	fmt.Fprintf(&b, "Plan: %s", plan.DisplayName)
	return b.String()
}
