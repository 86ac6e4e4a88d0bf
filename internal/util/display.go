package util

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Terminal control sequences
const (
	ColorReset  = "\033[0m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorRed    = "\033[31m"
	ColorBold   = "\033[1m"

	ClearLine  = "\033[2K" // Clear entire line
	HideCursor = "\033[?25l"
	ShowCursor = "\033[?25h"
)

// GetDisplayWidth calculates the actual display width of a string, accounting
// for wide runes and emoji
func GetDisplayWidth(text string) int {
	return runewidth.StringWidth(text)
}

// TruncateToWidth shortens text to fit within width display cells, appending
// an ellipsis when truncation happens
func TruncateToWidth(text string, width int) string {
	if runewidth.StringWidth(text) <= width {
		return text
	}
	return runewidth.Truncate(text, width, "…")
}

// CreateProgressBar creates a fixed-width progress bar. Percentages outside
// [0,100] are clamped for display only.
func CreateProgressBar(percentage float64, width int) string {
	if width < 4 {
		width = 4
	}
	barWidth := width - 2
	filled := int((percentage / 100) * float64(barWidth))
	if filled > barWidth {
		filled = barWidth
	}
	if filled < 0 {
		filled = 0
	}

	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled) + "]"
}
