package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sliceOf(value float32, width int) []float32 {
	s := make([]float32, width)
	for i := range s {
		s[i] = value
	}
	return s
}

func TestWaterfallFirstFrameAllocatesAndDrops(t *testing.T) {
	buf := NewWaterfallBuffer(8)
	assert.False(t, buf.Ready())

	written := buf.Push(sliceOf(-20, 100))
	assert.False(t, written, "the allocating frame must be dropped")
	assert.True(t, buf.Ready())
	assert.Equal(t, 100, buf.Width())
	assert.Equal(t, 8, buf.Depth())

	// Every cell starts at the display floor.
	for i := 0; i < buf.Depth(); i++ {
		row := buf.Row(i)
		require.Len(t, row, 100)
		for _, v := range row {
			assert.Equal(t, float32(MinDisplayDb), v)
		}
	}
}

func TestWaterfallRowCountInvariant(t *testing.T) {
	buf := NewWaterfallBuffer(8)

	for seq := 0; seq < 30; seq++ {
		buf.Push(sliceOf(float32(-seq), 64))
		if buf.Ready() {
			count := 0
			for i := 0; i < buf.Depth(); i++ {
				require.Len(t, buf.Row(i), 64)
				count++
			}
			assert.Equal(t, 8, count)
		}
	}
}

func TestWaterfallArrivalOrder(t *testing.T) {
	buf := NewWaterfallBuffer(4)

	// Frame 1 allocates and is dropped; frames 2..3 shift and write.
	assert.False(t, buf.Push(sliceOf(-1, 100)))
	assert.True(t, buf.Push(sliceOf(-2, 100)))
	assert.True(t, buf.Push(sliceOf(-3, 100)))

	// Newest at depth-1, previous directly above it.
	assert.Equal(t, float32(-3), buf.Row(3)[0])
	assert.Equal(t, float32(-2), buf.Row(2)[0])
	assert.Equal(t, float32(MinDisplayDb), buf.Row(1)[0])

	// Push past capacity: oldest values fall off index 0 first.
	for seq := 4; seq <= 10; seq++ {
		assert.True(t, buf.Push(sliceOf(float32(-seq), 100)))
	}
	assert.Equal(t, float32(-10), buf.Row(3)[0])
	assert.Equal(t, float32(-9), buf.Row(2)[0])
	assert.Equal(t, float32(-8), buf.Row(1)[0])
	assert.Equal(t, float32(-7), buf.Row(0)[0])
}

func TestWaterfallShapeChangeResets(t *testing.T) {
	buf := NewWaterfallBuffer(4)

	buf.Push(sliceOf(-1, 100))
	buf.Push(sliceOf(-2, 100))
	require.Equal(t, 100, buf.Width())

	// Bin count changed (range or sample-rate change): reallocate, drop frame.
	written := buf.Push(sliceOf(-3, 50))
	assert.False(t, written)
	assert.Equal(t, 50, buf.Width())
	assert.True(t, buf.Ready())
	for i := 0; i < buf.Depth(); i++ {
		for _, v := range buf.Row(i) {
			assert.Equal(t, float32(MinDisplayDb), v)
		}
	}

	// Next same-shape frame streams normally again.
	assert.True(t, buf.Push(sliceOf(-4, 50)))
	assert.Equal(t, float32(-4), buf.Row(3)[0])
}

func TestWaterfallEmptySliceIgnored(t *testing.T) {
	buf := NewWaterfallBuffer(4)
	assert.False(t, buf.Push(nil))
	assert.False(t, buf.Ready())
}

func TestWaterfallReset(t *testing.T) {
	buf := NewWaterfallBuffer(4)
	buf.Push(sliceOf(-1, 10))
	require.True(t, buf.Ready())

	buf.Reset()
	assert.False(t, buf.Ready())
	assert.Zero(t, buf.Width())
}

func TestWaterfallRenderPixels(t *testing.T) {
	buf := NewWaterfallBuffer(4)
	buf.Push(sliceOf(MinDisplayDb, 10)) // allocate
	buf.Push(sliceOf(MaxDisplayDb, 10)) // newest row saturated

	dims := Dimensions{Width: 400, Height: 300}
	dst := NewSurface(dims)
	r := NewWaterfallRenderer()
	rng := DefaultSettings()

	r.Render(dst, buf, rng)

	pr := plotRectFor(dims)

	// Bottom plot row maps to the newest (0 dB) slice: ramp top color.
	wantR, wantG, wantB := RampToRGB(1)
	got := dst.RGBAAt(pr.x+pr.width/2, pr.y+pr.height-1)
	assert.Equal(t, wantR, got.R)
	assert.Equal(t, wantG, got.G)
	assert.Equal(t, wantB, got.B)
	assert.EqualValues(t, 0xff, got.A)

	// Top plot row maps to floor history: ramp bottom color.
	wantR, wantG, wantB = RampToRGB(0)
	got = dst.RGBAAt(pr.x+pr.width/2, pr.y)
	assert.Equal(t, wantR, got.R)
	assert.Equal(t, wantG, got.G)
	assert.Equal(t, wantB, got.B)
}

func TestWaterfallRenderUninitializedBuffer(t *testing.T) {
	dims := Dimensions{Width: 400, Height: 300}
	dst := NewSurface(dims)
	r := NewWaterfallRenderer()

	// Must not panic and must leave the plot as background.
	r.Render(dst, NewWaterfallBuffer(4), DefaultSettings())

	pr := plotRectFor(dims)
	got := dst.RGBAAt(pr.x+pr.width/2, pr.y+pr.height/2)
	assert.Equal(t, colorBackground.R, got.R)
	assert.Equal(t, colorBackground.B, got.B)
}

func TestSliceBins(t *testing.T) {
	// 200 bins over 0..100 kHz (sample rate 200 kHz).
	magnitudes := make([]float32, 200)
	for i := range magnitudes {
		magnitudes[i] = float32(i)
	}
	sampleRate := 200_000.0

	full := SliceBins(magnitudes, sampleRate, Settings{MinKHz: 0, MaxKHz: 100})
	assert.Len(t, full, 200)

	upper := SliceBins(magnitudes, sampleRate, Settings{MinKHz: 50, MaxKHz: 100})
	require.Len(t, upper, 100)
	assert.Equal(t, float32(100), upper[0])

	// Window wider than the data clamps to the data.
	wide := SliceBins(magnitudes, sampleRate, Settings{MinKHz: 0, MaxKHz: 200})
	assert.Len(t, wide, 200)
}
