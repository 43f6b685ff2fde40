package app

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sync"

	"github.com/zmk5566/Crowd-Sonic/configs"
	"github.com/zmk5566/Crowd-Sonic/pkg/logging"
	"github.com/zmk5566/Crowd-Sonic/pkg/render"
	"github.com/zmk5566/Crowd-Sonic/pkg/stream/common"
)

// view owns the two chart surfaces and everything that draws on them.
// Frames arrive on the session dispatch goroutine and resizes on the sizer's
// timer goroutine, so surface access is guarded by a mutex.
type view struct {
	mu sync.Mutex

	spectrumRange  render.Settings
	waterfallRange render.Settings

	spectrum     *render.SpectrumRenderer
	waterfall    *render.WaterfallRenderer
	buffer       *render.WaterfallBuffer
	sizer        *render.Sizer
	spectrumImg  *image.RGBA
	waterfallImg *image.RGBA

	lastFrame *common.DecodedFrame
	logger    logging.Logger
}

func newView(config *configs.Config, logger logging.Logger) (*view, error) {
	spectrumRange, err := render.Propose(config.Display.Spectrum.MinKHz, config.Display.Spectrum.MaxKHz)
	if err != nil {
		return nil, fmt.Errorf("spectrum range: %w", err)
	}
	waterfallRange, err := render.Propose(config.Display.Waterfall.MinKHz, config.Display.Waterfall.MaxKHz)
	if err != nil {
		return nil, fmt.Errorf("waterfall range: %w", err)
	}

	v := &view{
		spectrumRange:  spectrumRange,
		waterfallRange: waterfallRange,
		spectrum:       render.NewSpectrumRenderer(),
		waterfall:      render.NewWaterfallRenderer(),
		buffer:         render.NewWaterfallBuffer(config.Display.WaterfallDepth),
		logger:         logger.WithFields(logging.Fields{"component": "view"}),
	}
	v.sizer = render.NewSizerWithDebounce(v.onResize, config.Display.ResizeDebounce)
	v.sizer.Observe(config.Display.CanvasWidth, config.Display.CanvasHeight)

	return v, nil
}

// onResize reallocates both surfaces and repaints them from current state.
func (v *view) onResize(d render.Dimensions) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.spectrumImg = render.NewSurface(d)
	v.waterfallImg = render.NewSurface(d)
	v.logger.Debug("Canvas resized", logging.Fields{
		"width":  d.Width,
		"height": d.Height,
	})
	v.repaintLocked()
}

// onFrame redraws both charts for an accepted frame.
func (v *view) onFrame(frame *common.DecodedFrame) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.lastFrame = frame
	slice := render.SliceBins(frame.Magnitudes, frame.SampleRate, v.waterfallRange)
	v.buffer.Push(slice)
	v.repaintLocked()
}

func (v *view) repaintLocked() {
	if v.spectrumImg == nil || v.waterfallImg == nil {
		return
	}
	if v.lastFrame != nil {
		v.spectrum.Render(v.spectrumImg, v.lastFrame, v.spectrumRange)
	} else {
		v.spectrum.RenderBackground(v.spectrumImg, v.spectrumRange)
	}
	v.waterfall.Render(v.waterfallImg, v.buffer, v.waterfallRange)
}

// writeSnapshots encodes both surfaces as PNG files and returns their paths.
func (v *view) writeSnapshots(cfg configs.SnapshotConfig) ([]string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	targets := []struct {
		suffix string
		img    *image.RGBA
	}{
		{"spectrum", v.spectrumImg},
		{"waterfall", v.waterfallImg},
	}

	var paths []string
	for _, t := range targets {
		if t.img == nil {
			continue
		}
		path := filepath.Join(cfg.Dir, fmt.Sprintf("%s-%s.png", cfg.Prefix, t.suffix))
		if err := writePNG(path, t.img); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return f.Close()
}
