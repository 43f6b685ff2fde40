package render

import (
	"fmt"
	"image"

	"gonum.org/v1/gonum/floats"

	"github.com/zmk5566/Crowd-Sonic/pkg/logging"
	"github.com/zmk5566/Crowd-Sonic/pkg/stream/common"
)

// SpectrumRenderer draws one decoded frame as a magnitude line chart over a
// bounded frequency window. The whole surface is redrawn per frame.
type SpectrumRenderer struct {
	logger logging.Logger
}

// NewSpectrumRenderer creates a spectrum renderer.
func NewSpectrumRenderer() *SpectrumRenderer {
	return &SpectrumRenderer{
		logger: logging.WithFields(logging.Fields{
			"component": "spectrum_renderer",
		}),
	}
}

// RenderBackground clears the surface and draws the grid and axis labels
// without a data line. Used directly when the frame's payload failed to
// decode upstream.
func (r *SpectrumRenderer) RenderBackground(dst *image.RGBA, rng Settings) {
	b := dst.Bounds()
	dims := Dimensions{Width: b.Dx(), Height: b.Dy()}
	pr := plotRectFor(dims)

	fillRect(dst, b, colorBackground)
	drawGrid(dst, pr)
	drawFrequencyTicks(dst, pr, rng)
	r.drawMagnitudeTicks(dst, pr)
}

// Render draws a full frame: background, data polyline, peak markers and
// axis labels.
func (r *SpectrumRenderer) Render(dst *image.RGBA, frame *common.DecodedFrame, rng Settings) {
	r.RenderBackground(dst, rng)

	b := dst.Bounds()
	pr := plotRectFor(Dimensions{Width: b.Dx(), Height: b.Dy()})

	binCount := frame.BinCount()
	minIdx, maxIdx := binWindow(rng, frame.SampleRate, binCount)
	window := maxIdx - minIdx
	if window < 2 {
		r.logger.Debug("frequency window too narrow to plot", logging.Fields{
			"bin_count": binCount,
			"min_idx":   minIdx,
			"max_idx":   maxIdx,
		})
		return
	}

	// Integer-stride decimation keeps rendering cost bounded regardless of
	// FFT size.
	stride := (window + MaxPlotPoints - 1) / MaxPlotPoints
	if stride < 1 {
		stride = 1
	}

	xs := make([]int, 0, window/stride+1)
	ks := make([]float64, 0, window/stride+1)
	ys := make([]float64, 0, window/stride+1)
	for i := minIdx; i < maxIdx; i += stride {
		freqKHz := binToKHz(i, frame.SampleRate, binCount)
		xs = append(xs, freqToX(freqKHz, rng, pr))
		ks = append(ks, freqKHz)
		ys = append(ys, float64(frame.Magnitudes[i]))
	}

	prevX, prevY := xs[0], dbToY(ys[0], pr)
	for i := 1; i < len(xs); i++ {
		x, y := xs[i], dbToY(ys[i], pr)
		drawLine(dst, prevX, prevY, x, y, colorSpectrum)
		prevX, prevY = x, y
	}

	r.drawDataPeak(dst, pr, xs, ks, ys)
	r.drawHeaderPeakMarker(dst, pr, frame, rng)
}

// drawDataPeak marks the loudest plotted point with a dot and a kHz label.
func (r *SpectrumRenderer) drawDataPeak(dst *image.RGBA, pr plotRect, xs []int, ks, ys []float64) {
	if len(ys) == 0 {
		return
	}
	idx := floats.MaxIdx(ys)
	if ys[idx] <= MinDisplayDb {
		return
	}
	x := xs[idx]
	y := dbToY(ys[idx], pr)
	drawDot(dst, x, y, 3, colorPeakMarker)
	drawText(dst, x, y-10, fmt.Sprintf("%.1fkHz", ks[idx]), alignCenter, colorPeakLabel)
}

// drawHeaderPeakMarker draws the dashed vertical marker for the peak the
// analyzer reported in the frame header, when it falls inside the window.
func (r *SpectrumRenderer) drawHeaderPeakMarker(dst *image.RGBA, pr plotRect, frame *common.DecodedFrame, rng Settings) {
	peakKHz := frame.PeakFrequencyHz / 1000
	if !rng.Contains(peakKHz) {
		return
	}
	x := freqToX(peakKHz, rng, pr)
	drawDashedVLine(dst, x, pr.y, pr.y+pr.height, 4, 3, colorPeakMarker)

	label := fmt.Sprintf("%.1fkHz", peakKHz)
	drawText(dst, x, pr.y-6, label, alignCenter, colorPeakLabel)
}

func (r *SpectrumRenderer) drawMagnitudeTicks(dst *image.RGBA, pr plotRect) {
	for i := 0; i < AxisTicks; i++ {
		y := pr.y + i*pr.height/GridLines
		db := MaxDisplayDb - float64(i)/float64(GridLines)*(MaxDisplayDb-MinDisplayDb)
		drawText(dst, pr.x-6, y+4, common.FormatMagnitudeDb(db), alignRight, colorAxisText)
	}
}

// drawGrid draws the fixed N x N grid over the plot rectangle.
func drawGrid(dst *image.RGBA, pr plotRect) {
	for i := 0; i <= GridLines; i++ {
		x := pr.x + i*pr.width/GridLines
		drawVLine(dst, x, pr.y, pr.y+pr.height, colorGrid)
	}
	for i := 0; i <= GridLines; i++ {
		y := pr.y + i*pr.height/GridLines
		drawHLine(dst, y, pr.x, pr.x+pr.width, colorGrid)
	}
}

// drawFrequencyTicks labels the x axis with kHz ticks across the window.
// Shared with the waterfall, whose frequency axis is identical in spirit.
func drawFrequencyTicks(dst *image.RGBA, pr plotRect, rng Settings) {
	for i := 0; i < AxisTicks; i++ {
		x := pr.x + i*pr.width/GridLines
		khz := rng.MinKHz + float64(i)/float64(GridLines)*rng.SpanKHz()
		drawText(dst, x, pr.y+pr.height+16, common.FormatFrequencyKHz(khz*1000), alignCenter, colorAxisText)
	}
}
