// Package stream owns the client side of the analyzer's SSE frame stream:
// connection lifecycle, frame filtering and decode, and the 1 Hz metrics
// rollup. At most one connection is active per session at any time.
package stream

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/zmk5566/Crowd-Sonic/pkg/logging"
	"github.com/zmk5566/Crowd-Sonic/pkg/stream/codec"
	"github.com/zmk5566/Crowd-Sonic/pkg/stream/common"
)

// MetricsInterval is the rolling window for the fps/peak/rate summary.
const MetricsInterval = time.Second

// Default sizing for the reader-to-dispatch handoff.
const (
	DefaultBufferFrames  = 64
	DefaultMaxEventBytes = 4 * 1024 * 1024
)

// Options tunes a session. Zero values fall back to the defaults.
type Options struct {
	// BufferFrames caps how many parsed frames may queue for dispatch.
	BufferFrames int
	// MaxEventBytes bounds a single SSE line.
	MaxEventBytes int
	// MetricsInterval overrides the rollup window.
	MetricsInterval time.Duration
	// HTTPClient overrides the streaming HTTP client.
	HTTPClient *http.Client
}

func (o Options) withDefaults() Options {
	if o.BufferFrames <= 0 {
		o.BufferFrames = DefaultBufferFrames
	}
	if o.MaxEventBytes <= 0 {
		o.MaxEventBytes = DefaultMaxEventBytes
	}
	if o.MetricsInterval <= 0 {
		o.MetricsInterval = MetricsInterval
	}
	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{
			Timeout: 0, // long-lived streaming connection
			Transport: &http.Transport{
				MaxIdleConns:      1,
				IdleConnTimeout:   30 * time.Second,
				DisableKeepAlives: false,
			},
		}
	}
	return o
}

// Callbacks receive session events. All of them are invoked serially on the
// session's dispatch goroutine; a nil callback is skipped.
type Callbacks struct {
	// OnFrame receives each decoded frame that survived filtering,
	// coalesced to the latest pending frame per dispatch pass.
	OnFrame func(*common.DecodedFrame)
	// OnMetrics receives the rolling-window summary once per interval.
	OnMetrics func(common.MetricsSummary)
	// OnError is called once when the transport fails. The session is back
	// in the idle state by then; reconnecting is the caller's decision.
	OnError func(error)
}

// Target selects which stream endpoint variant to consume.
type Target struct {
	BaseURL  string
	Type     common.StreamType
	DeviceID string
}

// GlobalTarget addresses the server-wide stream.
func GlobalTarget(baseURL string) Target {
	return Target{BaseURL: strings.TrimSuffix(baseURL, "/"), Type: common.StreamTypeGlobal}
}

// DeviceTarget addresses one device's stream.
func DeviceTarget(baseURL, deviceID string) Target {
	return Target{
		BaseURL:  strings.TrimSuffix(baseURL, "/"),
		Type:     common.StreamTypeDevice,
		DeviceID: deviceID,
	}
}

// StreamURL returns the SSE endpoint for the target.
func (t Target) StreamURL() string {
	if t.Type == common.StreamTypeDevice {
		return fmt.Sprintf("%s/api/devices/%s/stream", t.BaseURL, t.DeviceID)
	}
	return t.BaseURL + "/api/stream"
}

// Session owns exactly one server-push connection. Connecting while already
// streaming closes the previous connection first; switching devices is a
// disconnect plus reconnect, never a parallel stream.
type Session struct {
	mu     sync.Mutex
	opts   Options
	logger logging.Logger

	state  common.ConnectionState
	cancel context.CancelFunc
	done   chan struct{}
	stats  common.StreamStats
}

// NewSession creates a session with default options and a
// streaming-friendly HTTP client.
func NewSession() *Session {
	return NewSessionWithOptions(Options{})
}

// NewSessionWithOptions creates a session with the given tuning.
func NewSessionWithOptions(opts Options) *Session {
	return &Session{
		opts:  opts.withDefaults(),
		state: common.StateIdle,
		logger: logging.WithFields(logging.Fields{
			"component": "stream_session",
		}),
	}
}

// State returns the current lifecycle state.
func (s *Session) State() common.ConnectionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Stats returns a snapshot of the session counters.
func (s *Session) Stats() common.StreamStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Connect closes any existing connection, then opens a stream to the target
// and starts dispatching frames to the callbacks. It returns once the
// connection is established (or failed); dispatch continues in the
// background until Disconnect, context cancellation, or transport failure.
func (s *Session) Connect(ctx context.Context, target Target, cb Callbacks) error {
	// Single-flight: at most one active stream per session.
	s.Disconnect()

	logger := s.logger.WithFields(logging.Fields{
		"target": target.StreamURL(),
		"type":   string(target.Type),
	})

	s.mu.Lock()
	s.state = common.StateConnecting
	s.stats = common.StreamStats{}
	s.mu.Unlock()

	streamCtx, cancel := context.WithCancel(ctx)

	req, err := http.NewRequestWithContext(streamCtx, http.MethodGet, target.StreamURL(), nil)
	if err != nil {
		cancel()
		s.setIdle()
		return common.NewStreamError(target.Type, target.StreamURL(),
			common.ErrCodeConnection, "failed to create request", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	logger.Info("Connecting to frame stream")

	resp, err := s.opts.HTTPClient.Do(req)
	if err != nil {
		cancel()
		s.setIdle()
		return common.NewStreamError(target.Type, target.StreamURL(),
			common.ErrCodeConnection, "connection failed", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		cancel()
		s.setIdle()
		return common.NewStreamError(target.Type, target.StreamURL(),
			common.ErrCodeConnection,
			fmt.Sprintf("HTTP %d: %s", resp.StatusCode, resp.Status), nil)
	}

	done := make(chan struct{})

	s.mu.Lock()
	s.state = common.StateStreaming
	s.stats.ConnectedAt = time.Now()
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	logger.Info("Frame stream connected", logging.Fields{
		"status_code":  resp.StatusCode,
		"content_type": resp.Header.Get("Content-Type"),
	})

	frames := make(chan *common.FFTFrame, s.opts.BufferFrames)
	readErr := make(chan error, 1)

	go s.readLoop(streamCtx, resp, frames, readErr)
	go s.dispatchLoop(streamCtx, target, cb, frames, readErr, done)

	return nil
}

// Disconnect stops the active stream, if any, and waits for the dispatch
// goroutine to observe the cancellation before returning. Idempotent.
func (s *Session) Disconnect() {
	s.mu.Lock()
	cancel := s.cancel
	done := s.done
	s.cancel = nil
	s.done = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
	s.setIdle()
}

func (s *Session) setIdle() {
	s.mu.Lock()
	s.state = common.StateIdle
	s.mu.Unlock()
}

// readLoop parses SSE lines into wire frames. It does no rendering work so
// a slow consumer never stalls the socket reads beyond the channel buffer.
func (s *Session) readLoop(ctx context.Context, resp *http.Response, frames chan<- *common.FFTFrame, readErr chan<- error) {
	defer resp.Body.Close()
	defer close(frames)

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), s.opts.MaxEventBytes)

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || !strings.HasPrefix(line, "data: ") {
			continue
		}
		payload := strings.TrimPrefix(line, "data: ")

		frame, isFrame := classifyEvent([]byte(payload))
		if !isFrame {
			s.mu.Lock()
			s.stats.ControlMessages++
			s.mu.Unlock()
			continue
		}

		select {
		case frames <- frame:
		case <-ctx.Done():
			return
		}
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		readErr <- err
	}
}

// dispatchLoop is the session's single logical thread: frame callbacks,
// metric ticks, and terminal transitions all happen here, serially.
func (s *Session) dispatchLoop(ctx context.Context, target Target, cb Callbacks, frames <-chan *common.FFTFrame, readErr <-chan error, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.opts.MetricsInterval)
	defer ticker.Stop()

	var window metricsWindow
	lastRollup := time.Now()

	for {
		select {
		case <-ctx.Done():
			s.setIdle()
			s.logger.Debug("Stream dispatch stopped")
			return

		case err := <-readErr:
			s.setIdle()
			s.logger.Error(err, "Frame stream transport failure")
			if cb.OnError != nil {
				cb.OnError(common.NewStreamError(target.Type, target.StreamURL(),
					common.ErrCodeTransport, "stream read failed", err))
			}
			return

		case frame, ok := <-frames:
			if !ok {
				s.setIdle()
				// The reader parks its error before closing the frame
				// channel, so when this select observed the close first a
				// non-blocking receive still recovers the real cause.
				select {
				case err := <-readErr:
					s.logger.Error(err, "Frame stream transport failure")
					if cb.OnError != nil {
						cb.OnError(common.NewStreamError(target.Type, target.StreamURL(),
							common.ErrCodeTransport, "stream read failed", err))
					}
				default:
					// Clean EOF from the server side.
					if cb.OnError != nil {
						cb.OnError(common.NewStreamError(target.Type, target.StreamURL(),
							common.ErrCodeTransport, "stream closed by server", nil))
					}
				}
				return
			}
			latest := s.observeFrame(frame, &window)
			// Coalesce: render only the newest pending frame, but count
			// every arrival in the metrics window.
			for drained := false; !drained; {
				select {
				case next, more := <-frames:
					if !more {
						drained = true
						break
					}
					latest = s.observeFrame(next, &window)
				default:
					drained = true
				}
			}
			s.renderFrame(latest, cb)

		case now := <-ticker.C:
			summary, ok := window.rollup(now.Sub(lastRollup))
			lastRollup = now
			if ok && cb.OnMetrics != nil {
				cb.OnMetrics(summary)
			}
		}
	}
}

// observeFrame updates counters for a structurally valid frame and returns
// it for possible rendering.
func (s *Session) observeFrame(frame *common.FFTFrame, window *metricsWindow) *common.FFTFrame {
	window.observe(frame)
	s.mu.Lock()
	s.stats.FramesReceived++
	s.stats.BytesReceived += int64(frame.DataSizeBytes)
	s.stats.LastSequenceID = frame.SequenceID
	s.mu.Unlock()
	return frame
}

// renderFrame inflates the payload and hands the decoded frame to the
// consumer. A decode failure drops the frame and keeps the stream open.
func (s *Session) renderFrame(frame *common.FFTFrame, cb Callbacks) {
	magnitudes, err := codec.Decode(frame.DataCompressed, frame.CompressionMethod)
	if err != nil {
		s.mu.Lock()
		s.stats.DecodeFailures++
		s.stats.FramesDropped++
		s.mu.Unlock()
		s.logger.Warn("Dropping frame with undecodable payload", logging.Fields{
			"sequence_id": frame.SequenceID,
			"error":       err.Error(),
		})
		return
	}

	if cb.OnFrame != nil {
		cb.OnFrame(&common.DecodedFrame{FFTFrame: *frame, Magnitudes: magnitudes})
	}
}

// eventProbe checks the structural shape of an incoming event without
// committing to a full frame parse.
type eventProbe struct {
	Type            *string  `json:"type"`
	DataCompressed  *string  `json:"data_compressed"`
	PeakFrequencyHz *float64 `json:"peak_frequency_hz"`
}

// classifyEvent separates frame records from control messages. An event is
// a frame only when it carries a non-empty compressed payload and a numeric
// peak-frequency field. Everything else (connected/heartbeat markers,
// unknown shapes, malformed JSON) is ignored as control traffic.
func classifyEvent(payload []byte) (*common.FFTFrame, bool) {
	var probe eventProbe
	if err := json.Unmarshal(payload, &probe); err != nil {
		return nil, false
	}
	if probe.Type != nil {
		return nil, false
	}
	if probe.DataCompressed == nil || *probe.DataCompressed == "" || probe.PeakFrequencyHz == nil {
		return nil, false
	}

	var frame common.FFTFrame
	if err := json.Unmarshal(payload, &frame); err != nil {
		return nil, false
	}
	return &frame, true
}
