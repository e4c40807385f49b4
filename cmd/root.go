// Package cmd implements the modelseat command line interface.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/calderlane/modelseat/logger"
)

var (
	debugMode             bool
	version, commit, date string
)

// SetVersionInfo sets version information from ldflags
func SetVersionInfo(v, c, d string) {
	version, commit, date = v, c, d
}

var rootCmd = &cobra.Command{
	Use:   "modelseat",
	Short: "Supervisor for CLI model subprocesses",
	Long: `Modelseat spawns, talks to, and recycles subprocesses running a
command-line AI model tool. Seats are defined in seats.yaml; each seat
runs either one process per prompt or a long-lived streaming session
that is recycled once its token budget is spent.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initLogging)
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
}

func initLogging() {
	if debugMode {
		logger.SetDebug(true)
	}
}

// Execute runs the root command
func Execute() error {
	defer logger.Close()
	rootCmd.Version = version
	rootCmd.SetVersionTemplate(versionTemplate())
	return rootCmd.Execute()
}

func versionTemplate() string {
	if commit != "none" && commit != "" {
		return fmt.Sprintf("modelseat %s\n  commit: %s\n  built:  %s\n", version, commit, date)
	}
	return fmt.Sprintf("modelseat %s\n", version)
}
