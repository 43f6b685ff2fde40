package common

import (
	"strconv"
	"strings"
	"time"
)

// FormatFrequencyKHz formats a frequency in Hz as a kHz label for axis ticks.
func FormatFrequencyKHz(hz float64) string {
	khz := hz / 1000
	if khz == float64(int64(khz)) {
		return strconv.FormatInt(int64(khz), 10) + "k"
	}
	return strconv.FormatFloat(khz, 'f', 1, 64) + "k"
}

// FormatMagnitudeDb formats a dB magnitude for axis ticks.
func FormatMagnitudeDb(db float64) string {
	return strconv.FormatFloat(db, 'f', 0, 64) + "dB"
}

// IsValidURL performs basic URL validation
func IsValidURL(url string) bool {
	url = strings.TrimSpace(url)
	return strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://")
}

// FormatDuration formats duration for display
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return d.String()
	}

	seconds := int(d.Seconds())
	if seconds < 60 {
		return strconv.Itoa(seconds) + "s"
	}

	minutes := seconds / 60
	remainingSeconds := seconds % 60

	if remainingSeconds == 0 {
		return strconv.Itoa(minutes) + "m"
	}

	return strconv.Itoa(minutes) + "m" + strconv.Itoa(remainingSeconds) + "s"
}

// FormatBytes formats a byte count for status output.
func FormatBytes(bytes int64) string {
	switch {
	case bytes >= 1<<20:
		return strconv.FormatFloat(float64(bytes)/(1<<20), 'f', 1, 64) + " MB"
	case bytes >= 1<<10:
		return strconv.FormatFloat(float64(bytes)/(1<<10), 'f', 1, 64) + " KB"
	default:
		return strconv.FormatInt(bytes, 10) + " B"
	}
}

// FormatDataRate formats a bytes-per-second rate for status output.
func FormatDataRate(bytesPerSec int64) string {
	switch {
	case bytesPerSec >= 1<<20:
		return strconv.FormatFloat(float64(bytesPerSec)/(1<<20), 'f', 1, 64) + " MB/s"
	case bytesPerSec >= 1<<10:
		return strconv.FormatFloat(float64(bytesPerSec)/(1<<10), 'f', 1, 64) + " KB/s"
	default:
		return strconv.FormatInt(bytesPerSec, 10) + " B/s"
	}
}
