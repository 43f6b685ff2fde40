package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zmk5566/Crowd-Sonic/configs"
)

var serversAddDevice string

// serversCmd represents the servers command
var serversCmd = &cobra.Command{
	Use:   "servers",
	Short: "Manage saved analyzer servers",
	Long: `Manage the list of saved analyzer servers in the config directory.

Saved servers can be connected to by name:
  crowd-sonic stream --server "$(crowd-sonic servers url lab)"`,
}

var serversListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved servers, most recently used first",
	RunE:  runServersList,
}

var serversAddCmd = &cobra.Command{
	Use:   "add <name> <url>",
	Short: "Save a server under a name",
	Args:  cobra.ExactArgs(2),
	RunE:  runServersAdd,
}

var serversURLCmd = &cobra.Command{
	Use:   "url <name>",
	Short: "Print a saved server's URL",
	Args:  cobra.ExactArgs(1),
	RunE:  runServersURL,
}

func init() {
	rootCmd.AddCommand(serversCmd)
	serversCmd.AddCommand(serversListCmd)
	serversCmd.AddCommand(serversAddCmd)
	serversCmd.AddCommand(serversURLCmd)

	serversAddCmd.Flags().StringVar(&serversAddDevice, "device", "",
		"device ID to associate with the server")
}

// serversConfigDir resolves where the server list lives.
func serversConfigDir() string {
	if dir := viper.GetString("config_dir"); dir != "" {
		return dir
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "crowd-sonic")
}

func runServersList(cmd *cobra.Command, args []string) error {
	list, err := configs.LoadServerList(serversConfigDir())
	if err != nil {
		return err
	}

	if len(list.Servers) == 0 {
		printWarning("No saved servers")
		return nil
	}

	for _, entry := range list.Sorted() {
		device := ""
		if entry.Device != "" {
			device = fmt.Sprintf(" device=%s", entry.Device)
		}
		printInfo("%-16s %s%s", entry.Name, entry.URL, device)
	}
	return nil
}

func runServersAdd(cmd *cobra.Command, args []string) error {
	name, url := args[0], args[1]

	dir := serversConfigDir()
	list, err := configs.LoadServerList(dir)
	if err != nil {
		return err
	}

	list.Remember(name, url, serversAddDevice)
	if err := list.Save(dir); err != nil {
		return err
	}

	printSuccess("Saved %s as %s", url, name)
	return nil
}

func runServersURL(cmd *cobra.Command, args []string) error {
	list, err := configs.LoadServerList(serversConfigDir())
	if err != nil {
		return err
	}

	entry, ok := list.Lookup(args[0])
	if !ok {
		return fmt.Errorf("no saved server named %q", args[0])
	}

	fmt.Println(entry.URL)
	return nil
}
