package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/quotatray/quotatray/internal/application/monitor"
	"github.com/quotatray/quotatray/internal/config"
	"github.com/quotatray/quotatray/internal/core/model"
	"github.com/quotatray/quotatray/internal/data/tracker"
	"github.com/quotatray/quotatray/internal/data/watch"
	"github.com/quotatray/quotatray/internal/notify"
	"github.com/quotatray/quotatray/internal/ui"
	"github.com/quotatray/quotatray/internal/util"
)

var (
	// Configuration
	configPath string
	claudeDir  string
	planName   string
	interval   int

	// Logging
	logLevel string
	debug    bool

	rootCmd = &cobra.Command{
		Use:   "quotatray",
		Short: "System tray monitor for Claude Code token usage",
		Long: `quotatray watches the Claude Code log directory and shows how much of
the rolling 5-hour token window is used, as a colored system tray icon
with desktop notifications at the warning and critical thresholds.

Examples:
  quotatray                         # Run in the system tray
  quotatray --plan pro              # Monitor against the Pro limit
  quotatray watch                   # Headless single-line terminal mode
  quotatray snapshot                # Print current usage and exit
  quotatray snapshot --output json  # Same, machine-readable`,
		RunE: runTray,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Config file path (default ~/.quotatray/config.json)")
	rootCmd.PersistentFlags().StringVar(&claudeDir, "dir", "",
		"Claude project directory path (default ~/.claude/projects)")
	rootCmd.PersistentFlags().StringVar(&planName, "plan", "",
		"Plan type (pro, max5, max20)")
	rootCmd.PersistentFlags().IntVar(&interval, "interval", 0,
		"Refresh interval in seconds")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"Enable debug mode (implies --log-level debug and console logging)")
}

func Execute() error {
	return rootCmd.Execute()
}

// setup resolves the effective configuration: stored config first, then
// flag overrides, then validation. It also initializes logging, so callers
// can log immediately after it returns.
func setup() (config.Config, string, error) {
	path := configPath
	if path == "" {
		defaultPath, err := config.DefaultPath()
		if err != nil {
			return config.Config{}, "", fmt.Errorf("resolve config path: %w", err)
		}
		path = defaultPath
	}
	path = expandPath(path)

	cfg, loadErr := config.Load(path)

	if claudeDir != "" {
		cfg.ClaudeDir = claudeDir
	}
	if planName != "" {
		cfg.Plan = planName
	}
	if interval != 0 {
		cfg.RefreshIntervalSeconds = interval
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if debug {
		cfg.LogLevel = "debug"
	}

	logFile, err := config.DefaultLogFile()
	if err != nil {
		return config.Config{}, "", fmt.Errorf("resolve log path: %w", err)
	}
	if err := ensureDir(filepath.Dir(logFile)); err != nil {
		return config.Config{}, "", fmt.Errorf("create log directory: %w", err)
	}
	util.InitLogger(cfg.LogLevel, logFile, debug)

	if loadErr != nil {
		util.LogWarnf("Config problem, continuing with defaults: %v", loadErr)
	}

	if err := validate(cfg); err != nil {
		return config.Config{}, "", err
	}
	cfg.ClaudeDir = expandPath(cfg.ClaudeDir)
	return cfg, path, nil
}

// validate rejects flag values the stored-config normalizer never sees.
func validate(cfg config.Config) error {
	if _, ok := model.FindPlan(cfg.Plan); !ok {
		return fmt.Errorf("unknown plan %q: must be one of pro, max5, max20", cfg.Plan)
	}
	if cfg.RefreshIntervalSeconds < 5 {
		return fmt.Errorf("interval must be at least 5 seconds, got %d", cfg.RefreshIntervalSeconds)
	}
	return nil
}

func runTray(cmd *cobra.Command, args []string) error {
	cfg, cfgPath, err := setup()
	if err != nil {
		return err
	}

	tr := tracker.New(cfg.ClaudeDir)

	var watchCh <-chan struct{}
	watcher, err := watch.New(cfg.ClaudeDir, watch.DefaultDebounce)
	if err != nil {
		util.LogWarnf("File watching unavailable, falling back to polling: %v", err)
	} else {
		watchCh = watcher.Signal()
		defer watcher.Close()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var m *monitor.Monitor
	tray := ui.NewTray(ui.TrayOptions{
		ActivePlan:       cfg.PlanDefinition().Name,
		WarningThreshold: cfg.WarningThreshold,
		RefreshInterval:  cfg.RefreshInterval(),
		OnRefresh:        func() { m.Refresh() },
		OnPlanChange:     func(plan string) { m.SwitchPlan(plan) },
		OnQuit:           cancel,
	})

	m, err = monitor.New(monitor.Options{
		Config:      cfg,
		ConfigPath:  cfgPath,
		Tracker:     tr,
		Indicator:   tray,
		Notifier:    notify.NewDesktopNotifier(),
		WatchSignal: watchCh,
	})
	if err != nil {
		return err
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigChan:
			tray.Quit()
		case <-ctx.Done():
			tray.Quit()
		}
	}()

	go func() {
		_ = m.Run(ctx)
	}()

	// The tray owns the main goroutine until Quit, as the platform requires.
	tray.Run()
	return nil
}

// Helper functions

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return absPath
}

func ensureDir(dir string) error {
	return os.MkdirAll(dir, 0755)
}
