package render

import (
	"image"

	"github.com/zmk5566/Crowd-Sonic/pkg/logging"
)

// DefaultWaterfallDepth is the number of history rows a waterfall keeps.
const DefaultWaterfallDepth = 200

// WaterfallBuffer holds a fixed-depth history of frequency slices. Row 0 is
// always the oldest slice, row depth-1 the newest. Exclusively owned and
// mutated by the component that pushes frames into it.
type WaterfallBuffer struct {
	depth  int
	width  int
	rows   [][]float32
	ready  bool
	logger logging.Logger
}

// NewWaterfallBuffer creates an uninitialized buffer with the given history
// depth. The first pushed slice fixes the row width.
func NewWaterfallBuffer(depth int) *WaterfallBuffer {
	if depth <= 0 {
		depth = DefaultWaterfallDepth
	}
	return &WaterfallBuffer{
		depth: depth,
		logger: logging.WithFields(logging.Fields{
			"component": "waterfall_buffer",
		}),
	}
}

// Ready reports whether history rows have been allocated.
func (b *WaterfallBuffer) Ready() bool { return b.ready }

// Depth returns the fixed number of history rows.
func (b *WaterfallBuffer) Depth() int { return b.depth }

// Width returns the bin count of each row, zero before initialization.
func (b *WaterfallBuffer) Width() int { return b.width }

// Row returns one history row. The slice is owned by the buffer and only
// valid until the next Push.
func (b *WaterfallBuffer) Row(i int) []float32 { return b.rows[i] }

// Push appends a frequency slice as the newest row, scrolling history toward
// index 0. When the slice width differs from the buffer's recorded width
// (a range or sample-rate change) the buffer reallocates at the new width,
// fills with the display floor, and drops the triggering slice, since no
// history exists yet for the new shape. Returns true when the slice was
// written.
func (b *WaterfallBuffer) Push(slice []float32) bool {
	if len(slice) == 0 {
		return false
	}

	if !b.ready || b.width != len(slice) {
		b.reallocate(len(slice))
		return false
	}

	// Shift rows toward index 0, reusing the evicted oldest row's storage
	// for the newest slice.
	oldest := b.rows[0]
	copy(b.rows, b.rows[1:])
	copy(oldest, slice)
	b.rows[b.depth-1] = oldest
	return true
}

// Reset returns the buffer to the uninitialized state, releasing history.
func (b *WaterfallBuffer) Reset() {
	b.rows = nil
	b.width = 0
	b.ready = false
}

func (b *WaterfallBuffer) reallocate(width int) {
	b.logger.Debug("waterfall history reallocated", logging.Fields{
		"old_width": b.width,
		"new_width": width,
		"depth":     b.depth,
	})

	b.rows = make([][]float32, b.depth)
	for i := range b.rows {
		row := make([]float32, width)
		for j := range row {
			row[j] = float32(MinDisplayDb)
		}
		b.rows[i] = row
	}
	b.width = width
	b.ready = true
}

// WaterfallRenderer rasterizes a waterfall buffer with the color ramp.
type WaterfallRenderer struct {
	logger logging.Logger
}

// NewWaterfallRenderer creates a waterfall renderer.
func NewWaterfallRenderer() *WaterfallRenderer {
	return &WaterfallRenderer{
		logger: logging.WithFields(logging.Fields{
			"component": "waterfall_renderer",
		}),
	}
}

// Render assembles the full time-frequency raster: every destination pixel
// nearest-neighbor samples its buffer row and bin, normalized dB mapped
// through the color ramp. The newest row is drawn at the bottom.
func (r *WaterfallRenderer) Render(dst *image.RGBA, buf *WaterfallBuffer, rng Settings) {
	b := dst.Bounds()
	dims := Dimensions{Width: b.Dx(), Height: b.Dy()}
	pr := plotRectFor(dims)

	fillRect(dst, b, colorBackground)

	if buf.Ready() && buf.Width() > 0 && pr.width > 0 && pr.height > 0 {
		r.blit(dst, buf, pr)
	}

	drawFrequencyTicks(dst, pr, rng)
	r.drawTimeLabels(dst, pr)
}

func (r *WaterfallRenderer) blit(dst *image.RGBA, buf *WaterfallBuffer, pr plotRect) {
	depth := buf.Depth()
	width := buf.Width()

	for py := 0; py < pr.height; py++ {
		rowIdx := py * depth / pr.height
		if rowIdx >= depth {
			rowIdx = depth - 1
		}
		row := buf.Row(rowIdx)
		for px := 0; px < pr.width; px++ {
			binIdx := px * width / pr.width
			if binIdx >= width {
				binIdx = width - 1
			}
			t := NormalizeDb(float64(row[binIdx]))
			cr, cg, cb := RampToRGB(t)
			off := dst.PixOffset(pr.x+px, pr.y+py)
			dst.Pix[off] = cr
			dst.Pix[off+1] = cg
			dst.Pix[off+2] = cb
			dst.Pix[off+3] = 0xff
		}
	}
}

// drawTimeLabels marks the scroll direction inside the top and bottom edges
// of the plot. There is no numeric time scale because frame arrival rate is
// variable.
func (r *WaterfallRenderer) drawTimeLabels(dst *image.RGBA, pr plotRect) {
	drawText(dst, pr.x+4, pr.y+12, "oldest", alignLeft, colorPeakLabel)
	drawText(dst, pr.x+4, pr.y+pr.height-4, "newest", alignLeft, colorPeakLabel)
}
