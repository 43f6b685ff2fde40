package cmd

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/zmk5566/Crowd-Sonic/pkg/control"
	"github.com/zmk5566/Crowd-Sonic/pkg/stream/common"
)

var controlTimeout time.Duration

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the analyzer server's system status",
	Long: `Query the analyzer server's status endpoint and print capture state,
stream throughput, and the active audio device.

Examples:
  # Status of a local server
  crowd-sonic status

  # Status of a remote server
  crowd-sonic status --server http://10.0.0.5:8380`,
	RunE: runStatus,
}

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start audio capture on the analyzer server",
	RunE:  runStart,
}

// stopCmd represents the stop command
var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop audio capture on the analyzer server",
	RunE:  runStop,
}

// fpsCmd represents the fps command
var fpsCmd = &cobra.Command{
	Use:   "fps <rate>",
	Short: "Set the server's target frame rate",
	Long: fmt.Sprintf(`Change how many FFT frames per second the server pushes to stream
clients. The server accepts rates between %d and %d.

Examples:
  crowd-sonic fps 30
  crowd-sonic fps 10 --server http://10.0.0.5:8380`, control.MinFPS, control.MaxFPS),
	Args: cobra.ExactArgs(1),
	RunE: runSetFPS,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(fpsCmd)

	for _, cmd := range []*cobra.Command{statusCmd, startCmd, stopCmd, fpsCmd} {
		cmd.Flags().DurationVar(&controlTimeout, "timeout", control.DefaultTimeout,
			"control request timeout")
	}
}

func runStatus(cmd *cobra.Command, args []string) error {
	baseURL := serverBaseURL()
	printHeader("Analyzer Server Status", baseURL)

	ctx, cancel := context.WithTimeout(context.Background(), controlTimeout)
	defer cancel()

	status, err := control.NewClient(baseURL).Status(ctx)
	if err != nil {
		printError("Status request failed: %v", err)
		return fmt.Errorf("status request failed: %w", err)
	}

	if status.IsRunning {
		printSuccess("Capture running")
	} else {
		printWarning("Capture stopped")
	}
	printInfo("Current FPS: %.1f", status.CurrentFPS)
	printInfo("Connected clients: %d", status.ConnectedClients)
	printInfo("Frames sent: %d", status.TotalFramesSent)
	printInfo("Data sent: %s", common.FormatBytes(status.TotalBytesSent))
	printInfo("Uptime: %s", common.FormatDuration(time.Duration(status.UptimeSeconds*float64(time.Second))))
	if status.AudioDeviceName != "" {
		printInfo("Audio device: %s", status.AudioDeviceName)
	}
	if status.LastError != "" {
		printWarning("Last error: %s", status.LastError)
	}

	return nil
}

func runStart(cmd *cobra.Command, args []string) error {
	return runCommand("start capture", func(ctx context.Context, c *control.Client) (*control.CommandResult, error) {
		return c.Start(ctx)
	})
}

func runStop(cmd *cobra.Command, args []string) error {
	return runCommand("stop capture", func(ctx context.Context, c *control.Client) (*control.CommandResult, error) {
		return c.Stop(ctx)
	})
}

func runSetFPS(cmd *cobra.Command, args []string) error {
	fps, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid rate %q: %w", args[0], err)
	}

	return runCommand(fmt.Sprintf("set fps to %d", fps), func(ctx context.Context, c *control.Client) (*control.CommandResult, error) {
		return c.SetFPS(ctx, fps)
	})
}

// runCommand issues one control call against the configured server and
// prints the acknowledgement.
func runCommand(action string, call func(context.Context, *control.Client) (*control.CommandResult, error)) error {
	baseURL := serverBaseURL()

	ctx, cancel := context.WithTimeout(context.Background(), controlTimeout)
	defer cancel()

	result, err := call(ctx, control.NewClient(baseURL))
	if err != nil {
		printError("Failed to %s: %v", action, err)
		return fmt.Errorf("failed to %s: %w", action, err)
	}

	printSuccess("%s", result.Message)
	return nil
}
