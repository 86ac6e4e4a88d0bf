package ui

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"

	"github.com/quotatray/quotatray/internal/core/model"
	"github.com/quotatray/quotatray/internal/util"
)

const statusBarWidth = 22

// StatusLine renders usage as a single terminal line, redrawn in place when
// the output is a TTY and appended as plain lines otherwise. It accepts the
// same updates as the tray, so headless mode swaps in transparently.
type StatusLine struct {
	mu         sync.Mutex
	out        *os.File
	tty        bool
	status     model.Status
	percentage float64
}

func NewStatusLine(out *os.File) *StatusLine {
	return &StatusLine{
		out: out,
		tty: term.IsTerminal(int(out.Fd())),
	}
}

// SetUsage records the status and fill level used to color the next redraw.
func (s *StatusLine) SetUsage(status model.Status, percentage float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
	s.percentage = percentage
}

// SetTooltip redraws the line. Multi-line tooltip text is condensed with
// separators so everything stays on one row.
func (s *StatusLine) SetTooltip(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	line := util.CreateProgressBar(s.percentage, statusBarWidth) + " " +
		strings.ReplaceAll(text, "\n", " | ")

	if !s.tty {
		fmt.Fprintln(s.out, line)
		return
	}

	width, _, err := term.GetSize(int(s.out.Fd()))
	if err != nil || width <= 0 {
		width = 100
	}
	fmt.Fprintf(s.out, "\r%s%s%s%s",
		util.ClearLine, statusColor(s.status), util.TruncateToWidth(line, width), util.ColorReset)
}

// Finish terminates the in-place line so the shell prompt lands cleanly.
func (s *StatusLine) Finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tty {
		fmt.Fprintln(s.out)
	}
}

func statusColor(status model.Status) string {
	switch status {
	case model.StatusCritical:
		return util.ColorBold + util.ColorRed
	case model.StatusWarning:
		return util.ColorYellow
	default:
		return util.ColorGreen
	}
}
