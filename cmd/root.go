package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/Manu343726/asmdiff/cmd/tools"
	"github.com/Manu343726/asmdiff/pkg/harness"
	"github.com/Manu343726/asmdiff/pkg/logging"
	"github.com/Manu343726/asmdiff/pkg/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// errTestsFailed signals a session that ran but had failing cases. The report
// already told the user, so nothing else is printed.
var errTestsFailed = errors.New("tests failed")

// RootCmd runs a comparison session when called without subcommands
var RootCmd = &cobra.Command{
	Use:   "asmdiff",
	Short: "Compare the output of two assemblers over a corpus of test files",
	Long: `asmdiff runs a candidate assembler and a trusted reference assembler over every
.asm file of the test corpus and checks that both produce byte-identical .hex files.

Without a config file everything is found next to the asmdiff executable:

  testFiles/          the test corpus (*.asm)
  assembler.exe       the candidate assembler
  Dsm51Ass.exe        the reference assembler
  output_assembler/   collected .hex files of the candidate (recreated every run)
  output_dsm51/       collected .hex files of the reference (recreated every run)

The exit status is 0 if every test file passed and 1 otherwise.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runSession,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if code := exitStatus(RootCmd.Execute(), os.Stderr); code != 0 {
		os.Exit(code)
	}
}

// exitStatus maps the result of a command to the process exit status, printing the
// error to w unless the command output already reported it
func exitStatus(err error, w io.Writer) int {
	if err == nil {
		return 0
	}

	if !errors.Is(err, errTestsFailed) && !errors.Is(err, tools.ErrMismatch) {
		fmt.Fprintln(w, "Error:", err)
	}
	return 1
}

func init() {
	RootCmd.AddCommand(tools.ToolsCmd)
	cobra.OnInitialize(initConfig)

	harness.SetDefaults(viper.GetViper())

	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: asmdiff.yaml next to the executable or in the working directory)")
	RootCmd.PersistentFlags().String("root", "", "Directory the default tool, corpus and output paths are relative to (default: executable directory)")
	RootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log every tool run to stderr")
	RootCmd.PersistentFlags().String("log-file", "", "Also write JSON logs to this file")

	cobra.CheckErr(viper.BindPFlag("root", RootCmd.PersistentFlags().Lookup("root")))
	cobra.CheckErr(viper.BindPFlag("log.file", RootCmd.PersistentFlags().Lookup("log-file")))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Search config next to the executable, then in the working directory
		if exe, err := os.Executable(); err == nil {
			viper.AddConfigPath(filepath.Dir(exe))
		}
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("asmdiff")
	}

	viper.SetEnvPrefix("asmdiff")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		cobra.CheckErr(err)
	}

	if verbose, _ := RootCmd.PersistentFlags().GetBool("verbose"); verbose {
		viper.Set("log.level", "debug")
	}
}

func runSession(cmd *cobra.Command, args []string) error {
	config, err := harness.LoadConfig(viper.GetViper())
	if err != nil {
		return err
	}

	logger, closer, err := logging.New(config.Log)
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	session := harness.NewSession(config, logger)
	session.Reporter = harness.NewConsoleReporter(cmd.OutOrStdout())

	report, err := session.Run(ctx)
	if err != nil {
		if utils.IsAnyOf(err, harness.ErrCorpusNotFound, harness.ErrCorpusEmpty) {
			printCorpusError(cmd, config, err)
			return errTestsFailed
		}
		return err
	}

	if report.ExitCode() != 0 {
		return errTestsFailed
	}

	return nil
}

func printCorpusError(cmd *cobra.Command, config *harness.Config, err error) {
	dir := filepath.Base(config.Corpus.Dir)

	if errors.Is(err, harness.ErrCorpusNotFound) {
		fmt.Fprintf(cmd.OutOrStdout(), "Error: %s folder not found\n", dir)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "No %s files found in %s folder\n", config.Corpus.Extension, dir)
	}
}
