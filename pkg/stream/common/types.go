package common

import "time"

// StreamType identifies which SSE endpoint variant a session is consuming.
type StreamType string

const (
	// StreamTypeGlobal is the server-wide FFT stream at /api/stream.
	StreamTypeGlobal StreamType = "global"
	// StreamTypeDevice is a per-device stream at /api/devices/{id}/stream.
	StreamTypeDevice StreamType = "device"
)

// ConnectionState tracks the stream session lifecycle.
type ConnectionState string

const (
	StateIdle       ConnectionState = "idle"
	StateConnecting ConnectionState = "connecting"
	StateStreaming  ConnectionState = "streaming"
)

// FFTFrame is one frequency-domain analysis result as pushed by the server.
// Field names are the wire schema and must not change.
type FFTFrame struct {
	Timestamp         float64 `json:"timestamp"`
	SequenceID        int64   `json:"sequence_id"`
	SampleRate        float64 `json:"sample_rate"`
	FFTSize           int     `json:"fft_size"`
	DataCompressed    string  `json:"data_compressed"`
	CompressionMethod string  `json:"compression_method"`
	DataSizeBytes     int     `json:"data_size_bytes"`
	OriginalSizeBytes int     `json:"original_size_bytes"`
	PeakFrequencyHz   float64 `json:"peak_frequency_hz"`
	PeakMagnitudeDb   float64 `json:"peak_magnitude_db"`
	SplDb             float64 `json:"spl_db"`
	FPS               float64 `json:"fps"`
}

// NyquistHz returns the highest frequency representable in the frame's data.
func (f *FFTFrame) NyquistHz() float64 {
	return f.SampleRate / 2
}

// DecodedFrame pairs a wire frame with its inflated magnitude array.
// Magnitudes holds dB values for linearly spaced bins from 0 Hz to Nyquist.
type DecodedFrame struct {
	FFTFrame
	Magnitudes []float32
}

// BinCount returns the number of frequency bins in the decoded data.
func (f *DecodedFrame) BinCount() int {
	return len(f.Magnitudes)
}

// StreamStats accumulates per-session counters. Updated only on the
// session dispatch goroutine.
type StreamStats struct {
	ConnectedAt     time.Time `json:"connected_at"`
	FramesReceived  int64     `json:"frames_received"`
	FramesDropped   int64     `json:"frames_dropped"`
	ControlMessages int64     `json:"control_messages"`
	DecodeFailures  int64     `json:"decode_failures"`
	BytesReceived   int64     `json:"bytes_received"`
	LastSequenceID  int64     `json:"last_sequence_id"`
}

// MetricsSummary is the 1 Hz rollup emitted by a streaming session. Values
// other than FPS and DataRateBytes come from the most recently counted frame.
type MetricsSummary struct {
	FPS             float64 `json:"fps"`
	PeakFrequencyHz float64 `json:"peak_frequency_hz"`
	PeakMagnitudeDb float64 `json:"peak_magnitude_db"`
	DataRateBytes   int64   `json:"data_rate_bytes"`
}
