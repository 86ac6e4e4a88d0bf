package ui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quotatray/quotatray/internal/core/model"
	"github.com/quotatray/quotatray/internal/util"
)

// statusLineOutput runs updates against a regular file, which exercises the
// non-TTY path, and returns what was written.
func statusLineOutput(t *testing.T, update func(s *StatusLine)) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "out")
	f, err := os.Create(path)
	require.NoError(t, err)

	s := NewStatusLine(f)
	update(s)
	s.Finish()
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestStatusLine_PlainLinesWhenNotATTY(t *testing.T) {
	out := statusLineOutput(t, func(s *StatusLine) {
		s.SetUsage(model.StatusWarning, 92.5)
		s.SetTooltip("Used: 81,400,000 / 88,000,000 tokens\nResets in: 2h 30m")
	})

	assert.Contains(t, out, "Used: 81,400,000 / 88,000,000 tokens | Resets in: 2h 30m")
	assert.Contains(t, out, "[")
	assert.True(t, strings.HasSuffix(out, "\n"))
	assert.NotContains(t, out, "\r", "no in-place redraws without a TTY")
	assert.NotContains(t, out, util.ColorReset, "no color codes without a TTY")
}

func TestStatusLine_EachUpdateIsItsOwnLine(t *testing.T) {
	out := statusLineOutput(t, func(s *StatusLine) {
		s.SetTooltip("first")
		s.SetTooltip("second")
	})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "first")
	assert.Contains(t, lines[1], "second")
}

func TestStatusLine_BarReflectsUsage(t *testing.T) {
	empty := statusLineOutput(t, func(s *StatusLine) {
		s.SetUsage(model.StatusOK, 0)
		s.SetTooltip("idle")
	})
	full := statusLineOutput(t, func(s *StatusLine) {
		s.SetUsage(model.StatusCritical, 100)
		s.SetTooltip("full")
	})

	assert.NotContains(t, empty, "█")
	assert.NotContains(t, full, "░")
}

func TestStatusColor(t *testing.T) {
	assert.Equal(t, util.ColorGreen, statusColor(model.StatusOK))
	assert.Equal(t, util.ColorYellow, statusColor(model.StatusWarning))
	assert.Equal(t, util.ColorBold+util.ColorRed, statusColor(model.StatusCritical))
}
