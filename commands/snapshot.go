package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/quotatray/quotatray/internal/core/window"
	"github.com/quotatray/quotatray/internal/data/tracker"
	"github.com/quotatray/quotatray/internal/util"
)

var snapshotFormat string

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Print current window usage once and exit",
	Long: `Scans the log directory, aggregates the rolling window, prints the
result, and exits. Useful from scripts and shell prompts.

Examples:
  quotatray snapshot
  quotatray snapshot --plan pro
  quotatray snapshot --output json | jq .percentage`,
	RunE: runSnapshot,
}

func init() {
	rootCmd.AddCommand(snapshotCmd)

	snapshotCmd.Flags().StringVarP(&snapshotFormat, "output", "o", "table",
		"Output format (table, json)")
}

// snapshotReport is the machine-readable form of one aggregation pass.
type snapshotReport struct {
	Plan             string  `json:"plan"`
	Limit            int     `json:"limit"`
	TotalTokens      int     `json:"total_tokens"`
	Percentage       float64 `json:"percentage"`
	Status           string  `json:"status"`
	WindowStart      string  `json:"window_start"`
	WindowEnd        string  `json:"window_end"`
	RemainingSeconds int     `json:"remaining_seconds"`
	Files            int     `json:"files"`
	Records          int     `json:"records"`
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	if snapshotFormat != "table" && snapshotFormat != "json" {
		return fmt.Errorf("invalid output format %q: must be 'table' or 'json'", snapshotFormat)
	}

	cfg, _, err := setup()
	if err != nil {
		return err
	}

	tr := tracker.New(cfg.ClaudeDir)
	events := tr.Scan()
	plan := cfg.PlanDefinition()
	snap := window.Aggregate(events, plan, cfg.WindowConfig(), time.Now())
	stats := tr.Stats()

	if snapshotFormat == "json" {
		report := snapshotReport{
			Plan:             plan.Name,
			Limit:            snap.Limit,
			TotalTokens:      snap.TotalTokens,
			Percentage:       snap.Percentage,
			Status:           strings.ToLower(snap.Status.String()),
			WindowStart:      snap.WindowStart.UTC().Format(time.RFC3339),
			WindowEnd:        snap.WindowEnd.UTC().Format(time.RFC3339),
			RemainingSeconds: int(snap.TimeRemaining.Seconds()),
			Files:            stats.FilesDiscovered,
			Records:          stats.EventsEmitted,
		}
		data, err := sonic.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("encode snapshot: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	if snap.TotalTokens == 0 {
		fmt.Printf("No usage in the last %s\n", util.FormatDuration(snap.WindowEnd.Sub(snap.WindowStart)))
		fmt.Printf("Plan:    %s (%s tokens)\n", plan.DisplayName, util.FormatCount(plan.TokenLimit))
		if stats.FilesDiscovered == 0 {
			fmt.Printf("No log files found under %s\n", cfg.ClaudeDir)
		}
		return nil
	}

	fmt.Printf("Usage:   %s / %s tokens (%s)\n",
		util.FormatCount(snap.TotalTokens), util.FormatCount(snap.Limit), util.FormatPercent(snap.Percentage))
	fmt.Printf("         %s\n", util.CreateProgressBar(snap.Percentage, 32))
	fmt.Printf("Status:  %s\n", snap.Status)
	fmt.Printf("Plan:    %s\n", plan.DisplayName)
	fmt.Printf("Window:  %s to %s\n",
		snap.WindowStart.Local().Format("2006-01-02 15:04"), snap.WindowEnd.Local().Format("2006-01-02 15:04"))
	fmt.Printf("Resets:  %s\n", util.FormatDuration(snap.TimeRemaining))
	fmt.Printf("Files:   %d log files, %d usage records\n", stats.FilesDiscovered, stats.EventsEmitted)
	return nil
}
