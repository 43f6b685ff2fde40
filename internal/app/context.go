// Package app wires the stream session, decoders, and renderers into the
// viewer application driven by the CLI.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/zmk5566/Crowd-Sonic/configs"
	"github.com/zmk5566/Crowd-Sonic/pkg/logging"
	"github.com/zmk5566/Crowd-Sonic/pkg/stream"
	"github.com/zmk5566/Crowd-Sonic/pkg/stream/common"
)

// Context holds the application context and configuration
type Context struct {
	// CLI arguments
	ServerURL      string
	Device         string
	Duration       time.Duration // 0 means stream until interrupted
	SnapshotDir    string
	SnapshotPrefix string
	Width          int
	Height         int
	SpectrumMinKHz float64
	SpectrumMaxKHz float64
	WaterfallDepth int
	Verbose        bool
	Quiet          bool

	// Runtime context
	Logger logging.Logger
	Config *configs.Config
}

// ViewerApp handles the viewer application lifecycle
type ViewerApp struct {
	ctx    *Context
	config *configs.Config
	logger logging.Logger

	session *stream.Session
	view    *view
}

// NewViewerApp creates a new viewer application
func NewViewerApp(ctx *Context) (*ViewerApp, error) {
	logger := setupLogging(ctx)
	ctx.Logger = logger

	config, err := loadAndMergeConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	ctx.Config = config

	view, err := newView(config, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to set up rendering: %w", err)
	}

	session := stream.NewSessionWithOptions(stream.Options{
		BufferFrames:    config.Stream.BufferFrames,
		MaxEventBytes:   config.Stream.MaxEventBytes,
		MetricsInterval: config.Stream.MetricsInterval,
	})

	logger.Debug("Viewer application initialized", logging.Fields{
		"server":          config.Server.URL,
		"device":          config.Server.Device,
		"canvas_width":    config.Display.CanvasWidth,
		"canvas_height":   config.Display.CanvasHeight,
		"waterfall_depth": config.Display.WaterfallDepth,
	})

	return &ViewerApp{
		ctx:     ctx,
		config:  config,
		logger:  logger,
		session: session,
		view:    view,
	}, nil
}

// Run connects to the analyzer server and streams frames into the charts
// until the context is cancelled, the configured duration elapses, or the
// transport fails. On a clean stop it writes PNG snapshots if configured.
func (app *ViewerApp) Run(ctx context.Context) error {
	target := app.target()

	app.view.sizer.Start()
	defer app.view.sizer.Stop()

	transportErr := make(chan error, 1)

	err := app.session.Connect(ctx, target, stream.Callbacks{
		OnFrame: app.view.onFrame,
		OnMetrics: func(summary common.MetricsSummary) {
			if app.ctx.Quiet {
				return
			}
			app.logger.Info("Stream status", logging.Fields{
				"fps":          fmt.Sprintf("%.1f", summary.FPS),
				"peak_khz":     fmt.Sprintf("%.1f", summary.PeakFrequencyHz/1000),
				"peak_db":      fmt.Sprintf("%.1f", summary.PeakMagnitudeDb),
				"rate_bytes_s": summary.DataRateBytes,
			})
		},
		OnError: func(err error) {
			select {
			case transportErr <- err:
			default:
			}
		},
	})
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", target.StreamURL(), err)
	}
	defer app.session.Disconnect()

	var timeout <-chan time.Time
	if app.ctx.Duration > 0 {
		timer := time.NewTimer(app.ctx.Duration)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case <-ctx.Done():
		app.logger.Info("Viewer interrupted")
	case <-timeout:
		app.logger.Info("Viewer duration elapsed", logging.Fields{
			"duration": app.ctx.Duration.String(),
		})
	case err := <-transportErr:
		return fmt.Errorf("stream failed: %w", err)
	}

	app.session.Disconnect()

	stats := app.session.Stats()
	app.logger.Info("Stream closed", logging.Fields{
		"frames_received":  stats.FramesReceived,
		"frames_dropped":   stats.FramesDropped,
		"control_messages": stats.ControlMessages,
		"bytes_received":   stats.BytesReceived,
	})

	if app.config.Snapshot.Dir != "" {
		paths, err := app.view.writeSnapshots(app.config.Snapshot)
		if err != nil {
			return fmt.Errorf("failed to write snapshots: %w", err)
		}
		for _, path := range paths {
			app.logger.Info("Snapshot written", logging.Fields{"path": path})
		}
	}

	if stats.FramesReceived == 0 {
		return fmt.Errorf("no frames received from %s", target.StreamURL())
	}
	return nil
}

// Resize forwards a layout change to the canvas sizer.
func (app *ViewerApp) Resize(width, height int) {
	app.view.sizer.Observe(width, height)
}

func (app *ViewerApp) target() stream.Target {
	if app.config.Server.Device != "" {
		return stream.DeviceTarget(app.config.Server.URL, app.config.Server.Device)
	}
	return stream.GlobalTarget(app.config.Server.URL)
}

// setupLogging configures logging based on context
func setupLogging(ctx *Context) logging.Logger {
	logger := logging.NewDefaultLogger()
	if ctx.Verbose {
		logging.SetLevel("debug")
	}
	return logger
}
