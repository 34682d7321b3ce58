package tools

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the configured assemblers",
	Long: `Lists every configured assembler in run order with its role, executable path and
output directory, and whether the executable was found.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := loadConfig()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tROLE\tFOUND\tPATH\tOUTPUT\tFLAGS")

		for _, tool := range config.Tools {
			found := "no"
			if info, err := os.Stat(tool.Path); err == nil && !info.IsDir() {
				found = "yes"
			}

			var flags []string
			if tool.DismissWindow {
				flags = append(flags, fmt.Sprintf("dismiss-window=%q", tool.WindowTitle))
			}
			if len(tool.Byproducts) > 0 {
				flags = append(flags, "discard="+strings.Join(tool.Byproducts, ","))
			}

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", tool.Name, tool.Role, found, tool.Path, tool.OutputDir, strings.Join(flags, " "))
		}

		return w.Flush()
	},
}
