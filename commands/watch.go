package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/quotatray/quotatray/internal/application/monitor"
	"github.com/quotatray/quotatray/internal/data/tracker"
	"github.com/quotatray/quotatray/internal/data/watch"
	"github.com/quotatray/quotatray/internal/notify"
	"github.com/quotatray/quotatray/internal/ui"
	"github.com/quotatray/quotatray/internal/util"
)

var watchNotifyDesktop bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Monitor usage as a single terminal line, no system tray",
	Long: `Runs the same monitor as the tray mode but renders usage as one
colored line in the terminal, redrawn in place.

Keys:
  q       quit
  r       refresh now
  p       cycle plan (pro, max5, max20)
  Esc     quit`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().BoolVar(&watchNotifyDesktop, "desktop-notifications", false,
		"Send desktop notifications in addition to log alerts")
}

func runWatch(cmd *cobra.Command, args []string) error {
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

	line := ui.NewStatusLine(os.Stdout)
	defer line.Finish()

	var notifier notify.Notifier = notify.NewLogNotifier()
	if watchNotifyDesktop {
		notifier = notify.NewDesktopNotifier()
	}

	m, err := monitor.New(monitor.Options{
		Config:      cfg,
		ConfigPath:  cfgPath,
		Tracker:     tr,
		Indicator:   line,
		Notifier:    notifier,
		WatchSignal: watchCh,
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	// Keyboard control is best-effort: piped stdin just means signal-only.
	keyboard, err := ui.NewKeyboardReader()
	if err != nil {
		util.LogDebugf("Keyboard input unavailable: %v", err)
	} else {
		defer keyboard.Close()
		go func() {
			for event := range keyboard.Events() {
				switch {
				case event.Type == ui.KeyEscape:
					cancel()
					return
				case event.Key == 'q' || event.Key == 'Q':
					cancel()
					return
				case event.Key == 'r' || event.Key == 'R':
					m.Refresh()
				case event.Key == 'p' || event.Key == 'P':
					m.CyclePlan()
				}
			}
		}()
	}

	return m.Run(ctx)
}
