package tools

import (
	"github.com/Manu343726/asmdiff/pkg/harness"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// ToolsCmd groups the helpers to inspect a harness setup without running a session
var ToolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "asmdiff miscellaneous tools",
}

func init() {
	ToolsCmd.AddCommand(listCmd, configCmd, compareCmd)
}

func loadConfig() (*harness.Config, error) {
	return harness.LoadConfig(viper.GetViper())
}
