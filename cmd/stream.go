package cmd

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/zmk5566/Crowd-Sonic/internal/app"
)

var (
	// Stream command flags
	streamDuration       time.Duration
	streamWidth          int
	streamHeight         int
	streamMinKHz         float64
	streamMaxKHz         float64
	streamWaterfallDepth int
	streamSnapshotDir    string
	streamSnapshotPrefix string
	streamQuiet          bool
)

// streamCmd represents the stream command
var streamCmd = &cobra.Command{
	Use:   "stream",
	Short: "View the live FFT frame stream",
	Long: `Connect to the analyzer server's frame stream and render the live
magnitude spectrum and scrolling waterfall.

The viewer logs a one-line status summary (fps, peak frequency, peak level,
data rate) every second while streaming. On exit it writes both charts as
PNG snapshots.

Examples:
  # View the global stream of a local server
  crowd-sonic stream

  # View one device on a remote server, for 30 seconds
  crowd-sonic stream --server http://10.0.0.5:8380 --device usb-mic-0 --duration 30s

  # Zoom into the 20-80 kHz band on a larger canvas
  crowd-sonic stream --min-khz 20 --max-khz 80 --width 1280 --height 720

  # Write snapshots somewhere specific
  crowd-sonic stream --duration 10s --snapshot-dir ./captures --snapshot-prefix lab-run`,
	RunE: runStream,
}

func init() {
	rootCmd.AddCommand(streamCmd)

	streamCmd.Flags().DurationVar(&streamDuration, "duration", 0,
		"how long to stream (0 streams until interrupted)")
	streamCmd.Flags().IntVar(&streamWidth, "width", 0,
		"canvas width in pixels (minimum 200)")
	streamCmd.Flags().IntVar(&streamHeight, "height", 0,
		"canvas height in pixels (minimum 150)")
	streamCmd.Flags().Float64Var(&streamMinKHz, "min-khz", 0,
		"lower edge of the displayed frequency window")
	streamCmd.Flags().Float64Var(&streamMaxKHz, "max-khz", 0,
		"upper edge of the displayed frequency window (at most 200)")
	streamCmd.Flags().IntVar(&streamWaterfallDepth, "waterfall-depth", 0,
		"number of history rows in the waterfall")
	streamCmd.Flags().StringVar(&streamSnapshotDir, "snapshot-dir", "",
		"directory for PNG snapshots written on exit")
	streamCmd.Flags().StringVar(&streamSnapshotPrefix, "snapshot-prefix", "",
		"filename prefix for PNG snapshots")
	streamCmd.Flags().BoolVarP(&streamQuiet, "quiet", "q", false,
		"suppress the per-second status summary")
}

func runStream(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	appCtx := &app.Context{
		ServerURL:      serverURL,
		Device:         deviceID,
		Duration:       streamDuration,
		Width:          streamWidth,
		Height:         streamHeight,
		SpectrumMinKHz: streamMinKHz,
		SpectrumMaxKHz: streamMaxKHz,
		WaterfallDepth: streamWaterfallDepth,
		SnapshotDir:    streamSnapshotDir,
		SnapshotPrefix: streamSnapshotPrefix,
		Verbose:        verbose,
		Quiet:          streamQuiet,
	}

	viewer, err := app.NewViewerApp(appCtx)
	if err != nil {
		return err
	}

	return viewer.Run(ctx)
}
