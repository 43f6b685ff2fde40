package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zmk5566/Crowd-Sonic/pkg/control"
)

// devicesCmd represents the devices command
var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List the analyzer server's capture devices",
	Long: `Query the analyzer server for its available audio capture devices.

The listed device IDs can be passed to "stream --device" to consume a
per-device frame stream.

Examples:
  crowd-sonic devices
  crowd-sonic devices --server http://10.0.0.5:8380`,
	RunE: runDevices,
}

func init() {
	rootCmd.AddCommand(devicesCmd)

	devicesCmd.Flags().DurationVar(&controlTimeout, "timeout", control.DefaultTimeout,
		"control request timeout")
}

func runDevices(cmd *cobra.Command, args []string) error {
	baseURL := serverBaseURL()
	printHeader("Capture Devices", baseURL)

	ctx, cancel := context.WithTimeout(context.Background(), controlTimeout)
	defer cancel()

	devices, err := control.NewClient(baseURL).Devices(ctx)
	if err != nil {
		printError("Device query failed: %v", err)
		return fmt.Errorf("device query failed: %w", err)
	}

	if len(devices) == 0 {
		printWarning("No capture devices reported")
		return nil
	}

	for _, device := range devices {
		marker := ""
		if device.IsDefault {
			marker = " (default)"
		}
		printInfo("[%d] %s%s", device.ID, device.Name, marker)
		fmt.Printf("      Channels: %d, Sample rate: %.0f Hz\n",
			device.MaxChannels, device.DefaultSampleRate)
	}

	return nil
}
