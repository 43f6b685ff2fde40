package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/zmk5566/Crowd-Sonic/configs"
)

var (
	configFile string
	verbose    bool
	logLevel   string
	configDir  string
	dataDir    string
	serverURL  string
	deviceID   string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "crowd-sonic",
	Short: "Ultrasonic spectrum viewer for the Crowd-Sonic analyzer server",
	Long: `A headless client for the Crowd-Sonic ultrasonic analyzer server.
It consumes the server's FFT frame stream, renders a magnitude spectrum and
a scrolling waterfall, and exposes the server's control endpoints.

Key features:
- Live SSE frame stream consumption (global or per-device)
- Magnitude spectrum line chart and waterfall renders with PNG snapshots
- Per-second stream metrics (fps, peak, data rate)
- Capture start/stop and device discovery via the control API`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeConfig(cmd)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "",
		"config directory (default is $HOME/.config/crowd-sonic)")

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"config file (default is $HOME/.config/crowd-sonic/crowd-sonic.yaml)")

	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "",
		"data directory (default is $HOME/.local/share/crowd-sonic)")

	// Server selection flags
	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", "",
		"analyzer server base URL (default is http://localhost:8380)")
	rootCmd.PersistentFlags().StringVarP(&deviceID, "device", "d", "",
		"device ID for a per-device stream (default is the global stream)")

	// Output and logging flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"verbose output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"log level (debug, info, error)")

	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("config_dir", rootCmd.PersistentFlags().Lookup("config-dir"))
	viper.BindPFlag("data_dir", rootCmd.PersistentFlags().Lookup("data-dir"))
	viper.BindPFlag("server.url", rootCmd.PersistentFlags().Lookup("server"))
	viper.BindPFlag("server.device", rootCmd.PersistentFlags().Lookup("device"))
}

// initConfig reads in config file and ENV variables if set
func initConfig() {
	if configFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(configFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			os.Exit(1)
		}

		// Search config in home directory and /etc
		viper.AddConfigPath(home)
		viper.AddConfigPath(filepath.Join(home, ".config", "crowd-sonic"))
		viper.AddConfigPath("/etc/crowd-sonic")
		viper.AddConfigPath("./configs")
		viper.SetConfigName("crowd-sonic")
		viper.SetConfigType("yaml")
	}

	// Environment variable support
	viper.SetEnvPrefix("CROWD_SONIC")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	// Set default values
	configs.SetDefaults(viper.GetViper())

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
		}
	}
}

// initializeConfig initializes configuration after flags are parsed
func initializeConfig(cmd *cobra.Command) error {
	// Bind all flags to viper
	return bindFlags(cmd, viper.GetViper())
}

// flagConfigKeys maps flag names onto nested config keys where the two
// differ. Binding these flags under their bare name would collide with the
// config section of the same name.
var flagConfigKeys = map[string]string{
	"server": "server.url",
	"device": "server.device",
}

// bindFlags binds each cobra flag to its associated viper configuration
func bindFlags(cmd *cobra.Command, v *viper.Viper) error {
	var lastErr error

	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		configKey := f.Name
		if key, ok := flagConfigKeys[f.Name]; ok {
			configKey = key
		}

		// Environment variable name
		envVarSuffix := strings.ToUpper(strings.ReplaceAll(configKey, "-", "_"))
		envVarSuffix = strings.ReplaceAll(envVarSuffix, ".", "_")

		// Apply the viper config value to the flag when the flag is not set and viper has a value
		if !f.Changed && v.IsSet(configKey) {
			val := v.Get(configKey)
			if err := cmd.Flags().Set(f.Name, fmt.Sprintf("%v", val)); err != nil {
				lastErr = err
			}
		}

		// Bind the flag to viper
		if err := v.BindPFlag(configKey, f); err != nil {
			lastErr = err
		}

		// Bind to environment variable
		if err := v.BindEnv(configKey, "CROWD_SONIC_"+envVarSuffix); err != nil {
			lastErr = err
		}
	})

	return lastErr
}

// serverBaseURL resolves the server URL from flags, config, and defaults.
func serverBaseURL() string {
	if serverURL != "" {
		return serverURL
	}
	if url := viper.GetString("server.url"); url != "" {
		return url
	}
	return configs.GetDefaultServerConfig().URL
}

// GetConfig returns the current viper instance
func GetConfig() *viper.Viper {
	return viper.GetViper()
}
