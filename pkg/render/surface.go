package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Shared plot geometry for both charts.
const (
	// PlotPadding is the uniform margin around the plot rectangle, leaving
	// room for axis labels.
	PlotPadding = 40
	// GridLines is the number of grid cells per axis.
	GridLines = 10
	// AxisTicks is the number of tick labels per axis (GridLines + 1).
	AxisTicks = GridLines + 1
	// MinDisplayDb and MaxDisplayDb bound the magnitude axis; data outside
	// is clamped, never scaled.
	MinDisplayDb = -100.0
	MaxDisplayDb = 0.0
	// MaxPlotPoints bounds the number of spectrum points drawn per frame,
	// independent of FFT size.
	MaxPlotPoints = 800
)

var (
	colorBackground = color.RGBA{R: 0x1a, G: 0x1a, B: 0x2e, A: 0xff}
	colorGrid       = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0x1a}
	colorAxisText   = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xb3}
	colorSpectrum   = color.RGBA{R: 0x00, G: 0xff, B: 0x88, A: 0xff}
	colorPeakMarker = color.RGBA{R: 0xff, G: 0x44, B: 0x44, A: 0xff}
	colorPeakLabel  = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

// plotRect is the padded inner rectangle data is drawn into.
type plotRect struct {
	x, y          int
	width, height int
}

func plotRectFor(d Dimensions) plotRect {
	return plotRect{
		x:      PlotPadding,
		y:      PlotPadding,
		width:  d.Width - 2*PlotPadding,
		height: d.Height - 2*PlotPadding,
	}
}

// NewSurface allocates an RGBA raster for the given dimensions.
func NewSurface(d Dimensions) *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, d.Width, d.Height))
}

// binToKHz maps a bin index to its center frequency in kHz. Bins are
// linearly spaced from 0 Hz to Nyquist.
func binToKHz(binIndex int, sampleRateHz float64, binCount int) float64 {
	if binCount <= 0 {
		return 0
	}
	return float64(binIndex) * (sampleRateHz / 2) / float64(binCount) / 1000
}

// binWindow inverts binToKHz for a frequency window, returning the half-open
// bin range [minIdx, maxIdx) clamped to the data.
func binWindow(rng Settings, sampleRateHz float64, binCount int) (minIdx, maxIdx int) {
	if binCount <= 0 || sampleRateHz <= 0 {
		return 0, 0
	}
	binsPerKHz := float64(binCount) / (sampleRateHz / 2 / 1000)
	minIdx = int(math.Floor(rng.MinKHz * binsPerKHz))
	maxIdx = int(math.Ceil(rng.MaxKHz * binsPerKHz))
	if minIdx < 0 {
		minIdx = 0
	}
	if maxIdx > binCount {
		maxIdx = binCount
	}
	if minIdx > maxIdx {
		minIdx = maxIdx
	}
	return minIdx, maxIdx
}

// SliceBins restricts a magnitude array to the bins inside the window,
// returning a copy the caller owns. Used to build waterfall rows.
func SliceBins(magnitudes []float32, sampleRateHz float64, rng Settings) []float32 {
	minIdx, maxIdx := binWindow(rng, sampleRateHz, len(magnitudes))
	out := make([]float32, maxIdx-minIdx)
	copy(out, magnitudes[minIdx:maxIdx])
	return out
}

// freqToX maps a frequency (kHz) linearly from the window onto the plot width.
func freqToX(freqKHz float64, rng Settings, pr plotRect) int {
	span := rng.SpanKHz()
	if span <= 0 {
		return pr.x
	}
	return pr.x + int(math.Round((freqKHz-rng.MinKHz)/span*float64(pr.width)))
}

// dbToY maps a magnitude to a y coordinate, clamped to the display range and
// inverted so higher dB sits higher on screen.
func dbToY(db float64, pr plotRect) int {
	if db < MinDisplayDb {
		db = MinDisplayDb
	}
	if db > MaxDisplayDb {
		db = MaxDisplayDb
	}
	t := (db - MinDisplayDb) / (MaxDisplayDb - MinDisplayDb)
	return pr.y + pr.height - int(math.Round(t*float64(pr.height)))
}

func fillRect(dst *image.RGBA, r image.Rectangle, c color.RGBA) {
	draw.Draw(dst, r, image.NewUniform(c), image.Point{}, draw.Src)
}

func drawHLine(dst *image.RGBA, y, x0, x1 int, c color.RGBA) {
	for x := x0; x <= x1; x++ {
		dst.SetRGBA(x, y, c)
	}
}

func drawVLine(dst *image.RGBA, x, y0, y1 int, c color.RGBA) {
	for y := y0; y <= y1; y++ {
		dst.SetRGBA(x, y, c)
	}
}

func drawDashedVLine(dst *image.RGBA, x, y0, y1, dash, gap int, c color.RGBA) {
	step := dash + gap
	if step <= 0 {
		drawVLine(dst, x, y0, y1, c)
		return
	}
	for y := y0; y <= y1; y++ {
		if (y-y0)%step < dash {
			dst.SetRGBA(x, y, c)
		}
	}
}

// drawLine is a Bresenham segment between two plot points.
func drawLine(dst *image.RGBA, x0, y0, x1, y1 int, c color.RGBA) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		dst.SetRGBA(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// drawDot paints a small filled disc, used for the data-derived peak.
func drawDot(dst *image.RGBA, cx, cy, radius int, c color.RGBA) {
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy <= radius*radius {
				dst.SetRGBA(cx+dx, cy+dy, c)
			}
		}
	}
}

// Text alignment for tick and marker labels.
type textAlign int

const (
	alignLeft textAlign = iota
	alignCenter
	alignRight
)

// drawText renders a label with the fixed 7x13 raster font. The y coordinate
// is the text baseline.
func drawText(dst *image.RGBA, x, y int, s string, align textAlign, c color.RGBA) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
	}
	w := d.MeasureString(s).Ceil()
	switch align {
	case alignCenter:
		x -= w / 2
	case alignRight:
		x -= w
	}
	d.Dot = fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)}
	d.DrawString(s)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
