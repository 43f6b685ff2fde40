package app

import (
	"fmt"

	"github.com/zmk5566/Crowd-Sonic/configs"
)

// loadAndMergeConfig loads the base configuration and applies CLI overrides
func loadAndMergeConfig(ctx *Context) (*configs.Config, error) {
	baseConfig, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load base configuration: %w", err)
	}

	mergedConfig := mergeViewerConfig(baseConfig, ctx)

	if err := configs.ValidateConfig(mergedConfig); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return mergedConfig, nil
}

// mergeViewerConfig applies CLI flag values over the base configuration.
// Only flags the user actually set (non-zero) override.
func mergeViewerConfig(baseConfig *configs.Config, ctx *Context) *configs.Config {
	config := *baseConfig

	if ctx.ServerURL != "" {
		config.Server.URL = ctx.ServerURL
	}
	if ctx.Device != "" {
		config.Server.Device = ctx.Device
	}
	if ctx.Width > 0 {
		config.Display.CanvasWidth = ctx.Width
	}
	if ctx.Height > 0 {
		config.Display.CanvasHeight = ctx.Height
	}
	if ctx.WaterfallDepth > 0 {
		config.Display.WaterfallDepth = ctx.WaterfallDepth
	}
	if ctx.SpectrumMinKHz != 0 || ctx.SpectrumMaxKHz != 0 {
		window := configs.RangeConfig{
			MinKHz: ctx.SpectrumMinKHz,
			MaxKHz: ctx.SpectrumMaxKHz,
		}
		if window.MaxKHz == 0 {
			window.MaxKHz = config.Display.Spectrum.MaxKHz
		}
		// The waterfall follows the spectrum window unless configured apart.
		config.Display.Spectrum = window
		config.Display.Waterfall = window
	}
	if ctx.SnapshotDir != "" {
		config.Snapshot.Dir = ctx.SnapshotDir
	}
	if ctx.SnapshotPrefix != "" {
		config.Snapshot.Prefix = ctx.SnapshotPrefix
	}
	if ctx.Verbose {
		config.Verbose = true
		config.LogLevel = "debug"
	}

	return &config
}
