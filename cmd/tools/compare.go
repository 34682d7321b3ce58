package tools

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Manu343726/asmdiff/pkg/harness"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// ErrMismatch is returned by the compare command when the artifacts differ
var ErrMismatch = errors.New("artifacts differ")

var compareCmd = &cobra.Command{
	Use:   "compare <dir1> <dir2> <name>",
	Short: "Compare two collected artifacts",
	Long: `Compares <dir1>/<name>.hex with <dir2>/<name>.hex byte by byte, the same way a
session does. <name> may be given with or without the source extension.

Useful to re-check a single case from the output directories of a previous session.
Exits with status 0 if both files exist and are identical, 1 otherwise.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ext := viper.GetString("artifact.extension")
		name := strings.TrimSuffix(args[2], filepath.Ext(args[2]))

		if harness.CompareArtifacts(args[0], args[1], name, ext) {
			fmt.Fprintf(cmd.OutOrStdout(), " OK %s\n", name+ext)
			return nil
		}

		fmt.Fprintf(cmd.OutOrStdout(), " X %s\n", name+ext)
		return ErrMismatch
	},
}
