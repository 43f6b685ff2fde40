package render

import "fmt"

// Frequency bounds accepted for a chart window, in kHz. The upper limit is
// the highest Nyquist frequency the capture hardware can produce.
const (
	MinFrequencyKHz = 0.0
	MaxFrequencyKHz = 200.0
)

// Settings is a committed per-chart frequency window. Always passed by
// value into render calls; renderers never share or mutate it.
type Settings struct {
	MinKHz float64 `json:"min_khz"`
	MaxKHz float64 `json:"max_khz"`
}

// DefaultSettings covers the audible-through-ultrasonic band shown on a
// fresh chart.
func DefaultSettings() Settings {
	return Settings{MinKHz: 0, MaxKHz: 100}
}

// Propose validates a candidate frequency window. On violation the caller's
// committed settings remain authoritative and the error carries a
// human-readable reason.
func Propose(minKHz, maxKHz float64) (Settings, error) {
	if minKHz < MinFrequencyKHz || minKHz > MaxFrequencyKHz {
		return Settings{}, fmt.Errorf("minimum frequency %.1f kHz is outside [%.0f, %.0f] kHz",
			minKHz, MinFrequencyKHz, MaxFrequencyKHz)
	}
	if maxKHz < MinFrequencyKHz || maxKHz > MaxFrequencyKHz {
		return Settings{}, fmt.Errorf("maximum frequency %.1f kHz is outside [%.0f, %.0f] kHz",
			maxKHz, MinFrequencyKHz, MaxFrequencyKHz)
	}
	if minKHz >= maxKHz {
		return Settings{}, fmt.Errorf("minimum frequency %.1f kHz must be strictly below maximum %.1f kHz",
			minKHz, maxKHz)
	}
	return Settings{MinKHz: minKHz, MaxKHz: maxKHz}, nil
}

// SpanKHz returns the width of the window.
func (s Settings) SpanKHz() float64 {
	return s.MaxKHz - s.MinKHz
}

// Contains reports whether a frequency (kHz) falls inside the window.
func (s Settings) Contains(freqKHz float64) bool {
	return freqKHz >= s.MinKHz && freqKHz <= s.MaxKHz
}

// EditSession stages changes to a chart's range settings. Edits are applied
// only on an explicit Apply; Cancel restores the exact values captured when
// editing began, insulated from commits made elsewhere in the meantime.
type EditSession struct {
	snapshot  Settings
	stagedMin float64
	stagedMax float64
}

// BeginEdit captures the committed settings at the moment editing starts.
func BeginEdit(current Settings) *EditSession {
	return &EditSession{
		snapshot:  current,
		stagedMin: current.MinKHz,
		stagedMax: current.MaxKHz,
	}
}

// SetMin stages a new minimum without validating or committing it.
func (e *EditSession) SetMin(khz float64) { e.stagedMin = khz }

// SetMax stages a new maximum without validating or committing it.
func (e *EditSession) SetMax(khz float64) { e.stagedMax = khz }

// Staged returns the current uncommitted values.
func (e *EditSession) Staged() (minKHz, maxKHz float64) {
	return e.stagedMin, e.stagedMax
}

// Apply validates the staged values and returns them as the new committed
// settings. On rejection the previously committed settings stay active and
// the staged values are left in place for correction.
func (e *EditSession) Apply() (Settings, error) {
	settings, err := Propose(e.stagedMin, e.stagedMax)
	if err != nil {
		return e.snapshot, err
	}
	return settings, nil
}

// Cancel discards all staged edits and returns the settings captured at
// BeginEdit, regardless of any commits made elsewhere while editing.
func (e *EditSession) Cancel() Settings {
	e.stagedMin = e.snapshot.MinKHz
	e.stagedMax = e.snapshot.MaxKHz
	return e.snapshot
}
