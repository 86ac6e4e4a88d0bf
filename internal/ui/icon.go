package ui

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"

	"github.com/quotatray/quotatray/internal/core/model"
	"github.com/quotatray/quotatray/internal/util"
)

const (
	iconSize = 64

	// approachingPct is where an OK icon stops being green: the window is
	// filling up even though no threshold has tripped yet.
	approachingPct = 70.0
)

var (
	colorGreen  = color.RGBA{R: 52, G: 199, B: 89, A: 255}
	colorYellow = color.RGBA{R: 255, G: 204, B: 0, A: 255}
	colorOrange = color.RGBA{R: 255, G: 149, B: 0, A: 255}
	colorRed    = color.RGBA{R: 255, G: 59, B: 48, A: 255}
	colorTrack  = color.RGBA{R: 88, G: 88, B: 88, A: 255}
)

// TierColor picks the icon fill color for a status and fill percentage.
func TierColor(status model.Status, percentage float64) color.RGBA {
	switch {
	case status == model.StatusCritical:
		return colorRed
	case status == model.StatusWarning:
		return colorOrange
	case percentage >= approachingPct:
		return colorYellow
	default:
		return colorGreen
	}
}

// Render draws the tray icon as a PNG: a disc that fills clockwise from
// twelve o'clock as the window fills up, colored by threshold tier.
// Percentages outside [0,100] draw as an empty or full disc.
func Render(status model.Status, percentage float64) []byte {
	fill := TierColor(status, percentage)
	frac := percentage / 100
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}

	img := image.NewRGBA(image.Rect(0, 0, iconSize, iconSize))
	center := float64(iconSize) / 2
	radius := center - 2

	for y := 0; y < iconSize; y++ {
		for x := 0; x < iconSize; x++ {
			dx := float64(x) + 0.5 - center
			dy := float64(y) + 0.5 - center
			if dx*dx+dy*dy > radius*radius {
				continue // transparent outside the disc
			}
			img.SetRGBA(x, y, pieColor(dx, dy, frac, fill))
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		util.LogErrorf("Icon encode failed: %v", err)
		return nil
	}
	return buf.Bytes()
}

// pieColor returns the fill color for pixels inside the swept arc and the
// track color for the rest. The sweep starts at twelve o'clock and runs
// clockwise.
func pieColor(dx, dy, frac float64, fill color.RGBA) color.RGBA {
	if frac >= 1 {
		return fill
	}
	if frac <= 0 {
		return colorTrack
	}
	angle := math.Atan2(dx, -dy)
	if angle < 0 {
		angle += 2 * math.Pi
	}
	if angle <= frac*2*math.Pi {
		return fill
	}
	return colorTrack
}
