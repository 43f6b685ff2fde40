package render

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zmk5566/Crowd-Sonic/pkg/stream/common"
)

func testFrame(sampleRate float64, binCount int, peakHz float64) *common.DecodedFrame {
	magnitudes := make([]float32, binCount)
	for i := range magnitudes {
		magnitudes[i] = -80
	}
	return &common.DecodedFrame{
		FFTFrame: common.FFTFrame{
			SampleRate:      sampleRate,
			FFTSize:         binCount * 2,
			PeakFrequencyHz: peakHz,
			PeakMagnitudeDb: -30,
		},
		Magnitudes: magnitudes,
	}
}

func TestBinToKHzMapping(t *testing.T) {
	// 2048 bins spanning 0..96 kHz (sample rate 192 kHz).
	assert.Equal(t, 0.0, binToKHz(0, 192_000, 2048))
	assert.InDelta(t, 48.0, binToKHz(1024, 192_000, 2048), 1e-9)
	assert.InDelta(t, 96.0, binToKHz(2048, 192_000, 2048), 1e-9)
}

func TestBinWindowInvertsMapping(t *testing.T) {
	sampleRate := 192_000.0
	binCount := 2048

	minIdx, maxIdx := binWindow(Settings{MinKHz: 0, MaxKHz: 96}, sampleRate, binCount)
	assert.Equal(t, 0, minIdx)
	assert.Equal(t, binCount, maxIdx)

	minIdx, maxIdx = binWindow(Settings{MinKHz: 24, MaxKHz: 48}, sampleRate, binCount)
	assert.Equal(t, 512, minIdx)
	assert.Equal(t, 1024, maxIdx)

	// Every bin inside the window maps back into the window.
	for i := minIdx; i < maxIdx; i++ {
		khz := binToKHz(i, sampleRate, binCount)
		assert.GreaterOrEqual(t, khz, 24.0)
		assert.Less(t, khz, 48.0)
	}

	// Degenerate inputs yield an empty window instead of a panic.
	minIdx, maxIdx = binWindow(DefaultSettings(), 0, binCount)
	assert.Equal(t, minIdx, maxIdx)
}

func TestDbToYClampsAndInverts(t *testing.T) {
	pr := plotRect{x: 40, y: 40, width: 760, height: 270}

	assert.Equal(t, pr.y, dbToY(0, pr), "0 dB sits at the top of the plot")
	assert.Equal(t, pr.y+pr.height, dbToY(-100, pr), "floor sits at the bottom")
	assert.Equal(t, pr.y, dbToY(25, pr), "above-ceiling values clamp")
	assert.Equal(t, pr.y+pr.height, dbToY(-180, pr), "below-floor values clamp")
	assert.Equal(t, pr.y+pr.height/2, dbToY(-50, pr))
}

func TestPeakMarkerPosition(t *testing.T) {
	dims := Dimensions{Width: 840, Height: 350}
	dst := NewSurface(dims)
	r := NewSpectrumRenderer()
	rng := Settings{MinKHz: 0, MaxKHz: 100}

	frame := testFrame(200_000, 1024, 45_000)
	r.Render(dst, frame, rng)

	pr := plotRectFor(dims)
	wantX := pr.x + int(math.Round(0.45*float64(pr.width)))

	// The dashed marker starts at the top edge of the plot.
	got := dst.RGBAAt(wantX, pr.y)
	assert.Equal(t, colorPeakMarker, got, "marker expected at padding + 0.45*plotWidth")

	// No marker column anywhere else along the top edge.
	for x := pr.x; x <= pr.x+pr.width; x++ {
		if x == wantX {
			continue
		}
		assert.NotEqual(t, colorPeakMarker, dst.RGBAAt(x, pr.y), "unexpected marker at x=%d", x)
	}
}

func TestPeakMarkerOutsideRange(t *testing.T) {
	dims := Dimensions{Width: 840, Height: 350}
	dst := NewSurface(dims)
	r := NewSpectrumRenderer()
	rng := Settings{MinKHz: 50, MaxKHz: 100}

	frame := testFrame(200_000, 1024, 45_000)
	r.Render(dst, frame, rng)

	pr := plotRectFor(dims)
	for x := pr.x; x <= pr.x+pr.width; x++ {
		assert.NotEqual(t, colorPeakMarker, dst.RGBAAt(x, pr.y),
			"45 kHz peak must not render a marker in the [50,100] window")
	}
}

func TestDataPeakLabel(t *testing.T) {
	dims := Dimensions{Width: 840, Height: 350}
	dst := NewSurface(dims)
	r := NewSpectrumRenderer()
	rng := Settings{MinKHz: 0, MaxKHz: 100}

	// Loudest bin at 50 kHz; the header peak sits outside the window so the
	// only label pixels come from the data-derived peak.
	frame := testFrame(200_000, 1024, 150_000)
	frame.Magnitudes[512] = -10
	r.Render(dst, frame, rng)

	pr := plotRectFor(dims)
	wantX := pr.x + pr.width/2
	dotY := dbToY(-10, pr)

	found := 0
	b := dst.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if dst.RGBAAt(x, y) != colorPeakLabel {
				continue
			}
			found++
			assert.InDelta(t, wantX, x, 30, "label pixel x=%d far from the peak column", x)
			assert.Less(t, y, dotY, "label pixel y=%d must sit above the peak dot", y)
			assert.Greater(t, y, dotY-30, "label pixel y=%d too far above the peak dot", y)
		}
	}
	assert.Greater(t, found, 0, "data-derived peak should carry a kHz label")
}

func TestRenderDrawsDataLine(t *testing.T) {
	dims := Dimensions{Width: 600, Height: 300}
	dst := NewSurface(dims)
	r := NewSpectrumRenderer()
	rng := DefaultSettings()

	frame := testFrame(200_000, 4096, 0)
	r.Render(dst, frame, rng)

	// A flat -80 dB line crosses the whole plot at the mapped y.
	pr := plotRectFor(dims)
	y := dbToY(-80, pr)
	found := 0
	for x := pr.x; x <= pr.x+pr.width; x++ {
		if dst.RGBAAt(x, y) == colorSpectrum {
			found++
		}
	}
	assert.Greater(t, found, pr.width/2, "expected a contiguous data line")
}

func TestRenderBackgroundHasNoDataLine(t *testing.T) {
	dims := Dimensions{Width: 600, Height: 300}
	dst := NewSurface(dims)
	r := NewSpectrumRenderer()

	r.RenderBackground(dst, DefaultSettings())

	b := dst.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := dst.RGBAAt(x, y)
			require.NotEqual(t, colorSpectrum, c, "background render must not contain data pixels")
		}
	}
}

func TestRenderHandlesHugeFFTSizes(t *testing.T) {
	dims := Dimensions{Width: 600, Height: 300}
	dst := NewSurface(dims)
	r := NewSpectrumRenderer()

	// 65536 bins decimate down to at most MaxPlotPoints samples; this just
	// has to complete and draw inside the plot.
	frame := testFrame(200_000, 65536, 10_000)
	r.Render(dst, frame, DefaultSettings())

	pr := plotRectFor(dims)
	y := dbToY(-80, pr)
	assert.Equal(t, colorSpectrum, dst.RGBAAt(pr.x+pr.width/2, y))
}

func TestRenderNarrowWindowNoPanic(t *testing.T) {
	dims := Dimensions{Width: 600, Height: 300}
	dst := NewSurface(dims)
	r := NewSpectrumRenderer()

	// A window narrower than one bin produces a grid-only chart.
	frame := testFrame(200_000, 16, 0)
	r.Render(dst, frame, Settings{MinKHz: 40, MaxKHz: 41})
}
