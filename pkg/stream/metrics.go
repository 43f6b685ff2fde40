package stream

import (
	"time"

	"github.com/zmk5566/Crowd-Sonic/pkg/stream/common"
)

// metricsWindow accumulates frame arrivals over one rolling interval.
// It lives entirely on the session dispatch goroutine; no locking.
type metricsWindow struct {
	frames  int
	bytes   int64
	last    common.FFTFrame
	hasLast bool
}

// observe counts a structurally valid frame, whether or not its payload
// later decodes. Metrics are a side channel and must not depend on the
// rendering path.
func (w *metricsWindow) observe(f *common.FFTFrame) {
	w.frames++
	w.bytes += int64(f.DataSizeBytes)
	w.last = *f
	w.hasLast = true
}

// rollup returns the summary for the window just ended and resets the
// counters. The second return is false when no frame arrived at all, in
// which case nothing should be emitted.
func (w *metricsWindow) rollup(elapsed time.Duration) (common.MetricsSummary, bool) {
	if !w.hasLast {
		return common.MetricsSummary{}, false
	}
	fps := float64(w.frames)
	if secs := elapsed.Seconds(); secs > 0 {
		fps = float64(w.frames) / secs
	}
	summary := common.MetricsSummary{
		FPS:             fps,
		PeakFrequencyHz: w.last.PeakFrequencyHz,
		PeakMagnitudeDb: w.last.PeakMagnitudeDb,
		DataRateBytes:   w.bytes,
	}
	w.frames = 0
	w.bytes = 0
	w.hasLast = false
	return summary, true
}
