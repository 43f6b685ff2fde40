package configs

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/zmk5566/Crowd-Sonic/pkg/render"
)

// SetDefaults sets default configuration values for all components
func SetDefaults(v *viper.Viper) {
	// Server defaults
	if !v.IsSet("server.url") {
		v.SetDefault("server.url", "http://localhost:8380")
	}
	if !v.IsSet("server.device") {
		v.SetDefault("server.device", "")
	}
	if !v.IsSet("server.control_timeout") {
		v.SetDefault("server.control_timeout", 10*time.Second)
	}

	// Stream defaults
	if !v.IsSet("stream.buffer_frames") {
		v.SetDefault("stream.buffer_frames", 64)
	}
	if !v.IsSet("stream.max_event_bytes") {
		v.SetDefault("stream.max_event_bytes", 4*1024*1024)
	}
	if !v.IsSet("stream.metrics_interval") {
		v.SetDefault("stream.metrics_interval", 1*time.Second)
	}

	// Display defaults
	if !v.IsSet("display.spectrum.min_khz") {
		v.SetDefault("display.spectrum.min_khz", 0.0)
	}
	if !v.IsSet("display.spectrum.max_khz") {
		v.SetDefault("display.spectrum.max_khz", 100.0)
	}
	if !v.IsSet("display.waterfall.min_khz") {
		v.SetDefault("display.waterfall.min_khz", 0.0)
	}
	if !v.IsSet("display.waterfall.max_khz") {
		v.SetDefault("display.waterfall.max_khz", 100.0)
	}
	if !v.IsSet("display.waterfall_depth") {
		v.SetDefault("display.waterfall_depth", render.DefaultWaterfallDepth)
	}
	if !v.IsSet("display.canvas_width") {
		v.SetDefault("display.canvas_width", 960)
	}
	if !v.IsSet("display.canvas_height") {
		v.SetDefault("display.canvas_height", 400)
	}
	if !v.IsSet("display.resize_debounce") {
		v.SetDefault("display.resize_debounce", render.DefaultDebounce)
	}

	// Snapshot defaults
	if !v.IsSet("snapshot.dir") {
		v.SetDefault("snapshot.dir", ".")
	}
	if !v.IsSet("snapshot.prefix") {
		v.SetDefault("snapshot.prefix", "crowd-sonic")
	}

	// Application defaults
	if !v.IsSet("verbose") {
		v.SetDefault("verbose", false)
	}
	if !v.IsSet("log_level") {
		v.SetDefault("log_level", "info")
	}
}

// GetDefaultConfig returns a Config struct with all default values set
func GetDefaultConfig() *Config {
	home, _ := os.UserHomeDir()

	return &Config{
		Verbose:   false,
		LogLevel:  "info",
		ConfigDir: filepath.Join(home, ".config", "crowd-sonic"),
		DataDir:   filepath.Join(home, ".local", "share", "crowd-sonic"),

		Server:   GetDefaultServerConfig(),
		Stream:   GetDefaultStreamConfig(),
		Display:  GetDefaultDisplayConfig(),
		Snapshot: GetDefaultSnapshotConfig(),
	}
}

// GetDefaultServerConfig returns default analyzer server settings
func GetDefaultServerConfig() ServerConfig {
	return ServerConfig{
		URL:            "http://localhost:8380",
		Device:         "",
		ControlTimeout: 10 * time.Second,
	}
}

// GetDefaultStreamConfig returns default frame stream settings
func GetDefaultStreamConfig() StreamConfig {
	return StreamConfig{
		BufferFrames:    64,
		MaxEventBytes:   4 * 1024 * 1024,
		MetricsInterval: 1 * time.Second,
	}
}

// GetDefaultDisplayConfig returns default chart display settings
func GetDefaultDisplayConfig() DisplayConfig {
	return DisplayConfig{
		Spectrum:       RangeConfig{MinKHz: 0, MaxKHz: 100},
		Waterfall:      RangeConfig{MinKHz: 0, MaxKHz: 100},
		WaterfallDepth: render.DefaultWaterfallDepth,
		CanvasWidth:    960,
		CanvasHeight:   400,
		ResizeDebounce: render.DefaultDebounce,
	}
}

// GetDefaultSnapshotConfig returns default snapshot output settings
func GetDefaultSnapshotConfig() SnapshotConfig {
	return SnapshotConfig{
		Dir:    ".",
		Prefix: "crowd-sonic",
	}
}
