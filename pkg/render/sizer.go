package render

import (
	"sync"
	"time"

	"github.com/zmk5566/Crowd-Sonic/pkg/logging"
)

// Floor dimensions below which a raster is never allocated. A zero-size
// host report must not produce a zero-area surface.
const (
	MinCanvasWidth  = 200
	MinCanvasHeight = 150
)

// DefaultDebounce coalesces bursts of layout notifications into one
// recompute, roughly one display frame.
const DefaultDebounce = 16 * time.Millisecond

// Dimensions is a canvas size in device pixels, shared read-only by both
// renderers.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Sizer turns noisy host-size notifications into stable, floor-clamped
// pixel dimensions. Size changes are debounced; the callback fires on the
// sizer's own timer goroutine, one invocation at a time.
type Sizer struct {
	mu       sync.Mutex
	debounce time.Duration
	timer    *time.Timer
	pending  Dimensions
	current  Dimensions
	onResize func(Dimensions)
	stopped  bool
	logger   logging.Logger
}

// NewSizer creates a sizer that reports sizes through onResize. The callback
// never sees dimensions below the configured floor.
func NewSizer(onResize func(Dimensions)) *Sizer {
	return NewSizerWithDebounce(onResize, DefaultDebounce)
}

// NewSizerWithDebounce creates a sizer with a custom debounce interval.
// Tests use a short interval to avoid real-time waits.
func NewSizerWithDebounce(onResize func(Dimensions), debounce time.Duration) *Sizer {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Sizer{
		debounce: debounce,
		pending:  Dimensions{Width: MinCanvasWidth, Height: MinCanvasHeight},
		onResize: onResize,
		logger: logging.WithFields(logging.Fields{
			"component": "canvas_sizer",
		}),
	}
}

// Start schedules one recompute shortly after mount, to capture post-layout
// dimensions that are not available synchronously at construction time.
func (s *Sizer) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scheduleLocked()
}

// Observe records a host size report. Bursts are coalesced: only the most
// recent report within the debounce window is applied.
func (s *Sizer) Observe(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.pending = clampToFloor(Dimensions{Width: width, Height: height})
	s.scheduleLocked()
}

// Current returns the most recently applied dimensions. Before the first
// recompute fires it returns the floor.
func (s *Sizer) Current() Dimensions {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == (Dimensions{}) {
		return Dimensions{Width: MinCanvasWidth, Height: MinCanvasHeight}
	}
	return s.current
}

// Stop cancels any pending recompute. Safe to call more than once.
func (s *Sizer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Sizer) scheduleLocked() {
	if s.stopped {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, s.apply)
}

func (s *Sizer) apply() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	next := s.pending
	changed := next != s.current
	s.current = next
	cb := s.onResize
	s.mu.Unlock()

	if !changed {
		return
	}

	s.logger.Debug("canvas dimensions recomputed", logging.Fields{
		"width":  next.Width,
		"height": next.Height,
	})

	if cb != nil {
		cb(next)
	}
}

func clampToFloor(d Dimensions) Dimensions {
	if d.Width < MinCanvasWidth {
		d.Width = MinCanvasWidth
	}
	if d.Height < MinCanvasHeight {
		d.Height = MinCanvasHeight
	}
	return d
}
