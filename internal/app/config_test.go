package app

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zmk5566/Crowd-Sonic/configs"
)

func TestMergeViewerConfig(t *testing.T) {
	tests := []struct {
		name  string
		ctx   Context
		check func(t *testing.T, c *configs.Config)
	}{
		{
			name: "no overrides keeps defaults",
			ctx:  Context{},
			check: func(t *testing.T, c *configs.Config) {
				assert.Equal(t, "http://localhost:8380", c.Server.URL)
				assert.Equal(t, 960, c.Display.CanvasWidth)
			},
		},
		{
			name: "server and device override",
			ctx:  Context{ServerURL: "http://10.0.0.5:8380", Device: "usb-mic-0"},
			check: func(t *testing.T, c *configs.Config) {
				assert.Equal(t, "http://10.0.0.5:8380", c.Server.URL)
				assert.Equal(t, "usb-mic-0", c.Server.Device)
			},
		},
		{
			name: "canvas override",
			ctx:  Context{Width: 1280, Height: 720},
			check: func(t *testing.T, c *configs.Config) {
				assert.Equal(t, 1280, c.Display.CanvasWidth)
				assert.Equal(t, 720, c.Display.CanvasHeight)
			},
		},
		{
			name: "range override carries to waterfall",
			ctx:  Context{SpectrumMinKHz: 20, SpectrumMaxKHz: 80},
			check: func(t *testing.T, c *configs.Config) {
				assert.Equal(t, configs.RangeConfig{MinKHz: 20, MaxKHz: 80}, c.Display.Spectrum)
				assert.Equal(t, configs.RangeConfig{MinKHz: 20, MaxKHz: 80}, c.Display.Waterfall)
			},
		},
		{
			name: "verbose raises log level",
			ctx:  Context{Verbose: true},
			check: func(t *testing.T, c *configs.Config) {
				assert.True(t, c.Verbose)
				assert.Equal(t, "debug", c.LogLevel)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := configs.GetDefaultConfig()
			merged := mergeViewerConfig(base, &tt.ctx)
			tt.check(t, merged)
			// The base configuration is never mutated by a merge.
			assert.Equal(t, configs.GetDefaultConfig().Server.URL, base.Server.URL)
		})
	}
}

func TestMergeViewerConfigRejectsBadRange(t *testing.T) {
	base := configs.GetDefaultConfig()
	merged := mergeViewerConfig(base, &Context{SpectrumMinKHz: 90, SpectrumMaxKHz: 10})
	err := configs.ValidateConfig(merged)
	assert.Error(t, err)
}
