package tools

import (
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configOutput string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Dumps the configuration a session would run with, after defaults, config file,
environment variables and flags are merged and every path is resolved.
The output is valid YAML and can be used as a starting point for asmdiff.yaml.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := loadConfig()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if configOutput != "" {
			file, err := os.Create(configOutput)
			if err != nil {
				return err
			}
			defer file.Close()
			out = file
		}

		encoder := yaml.NewEncoder(out)
		encoder.SetIndent(2)
		if err := encoder.Encode(config); err != nil {
			return err
		}
		return encoder.Close()
	},
}

func init() {
	configCmd.Flags().StringVarP(&configOutput, "output", "o", "", "Output file. If not specified, the configuration is dumped to stdout.")
}
