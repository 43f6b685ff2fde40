package configs

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/zmk5566/Crowd-Sonic/pkg/render"
)

// Config represents the application configuration
type Config struct {
	// Application settings
	Verbose   bool   `mapstructure:"verbose"`
	LogLevel  string `mapstructure:"log_level"`
	ConfigDir string `mapstructure:"config_dir"`
	DataDir   string `mapstructure:"data_dir"`

	// Analyzer server connection
	Server ServerConfig `mapstructure:"server"`

	// Frame stream handling
	Stream StreamConfig `mapstructure:"stream"`

	// Chart display settings
	Display DisplayConfig `mapstructure:"display"`

	// Snapshot output settings
	Snapshot SnapshotConfig `mapstructure:"snapshot"`
}

// ServerConfig identifies the analyzer server to connect to
type ServerConfig struct {
	URL            string        `mapstructure:"url"`
	Device         string        `mapstructure:"device"`
	ControlTimeout time.Duration `mapstructure:"control_timeout"`
}

// StreamConfig contains frame stream handling settings
type StreamConfig struct {
	BufferFrames    int           `mapstructure:"buffer_frames"`
	MaxEventBytes   int           `mapstructure:"max_event_bytes"`
	MetricsInterval time.Duration `mapstructure:"metrics_interval"`
}

// RangeConfig is one chart's frequency window in kHz
type RangeConfig struct {
	MinKHz float64 `mapstructure:"min_khz"`
	MaxKHz float64 `mapstructure:"max_khz"`
}

// DisplayConfig contains chart layout and range settings
type DisplayConfig struct {
	Spectrum       RangeConfig   `mapstructure:"spectrum"`
	Waterfall      RangeConfig   `mapstructure:"waterfall"`
	WaterfallDepth int           `mapstructure:"waterfall_depth"`
	CanvasWidth    int           `mapstructure:"canvas_width"`
	CanvasHeight   int           `mapstructure:"canvas_height"`
	ResizeDebounce time.Duration `mapstructure:"resize_debounce"`
}

// SnapshotConfig contains PNG snapshot output settings
type SnapshotConfig struct {
	Dir    string `mapstructure:"dir"`
	Prefix string `mapstructure:"prefix"`
}

// LoadConfig loads configuration from viper
func LoadConfig() (*Config, error) {
	config := &Config{}

	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode configuration: %w", err)
	}

	return config, nil
}

// ValidateConfig validates the configuration
func ValidateConfig(config *Config) error {
	if config.Server.URL == "" {
		return fmt.Errorf("server URL must be set")
	}

	if config.Stream.BufferFrames <= 0 {
		return fmt.Errorf("stream buffer size must be positive")
	}

	if config.Display.WaterfallDepth <= 0 {
		return fmt.Errorf("waterfall depth must be positive")
	}

	if _, err := render.Propose(config.Display.Spectrum.MinKHz, config.Display.Spectrum.MaxKHz); err != nil {
		return fmt.Errorf("invalid spectrum range: %w", err)
	}

	if _, err := render.Propose(config.Display.Waterfall.MinKHz, config.Display.Waterfall.MaxKHz); err != nil {
		return fmt.Errorf("invalid waterfall range: %w", err)
	}

	return nil
}
