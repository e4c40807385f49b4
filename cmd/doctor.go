package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/calderlane/modelseat/cli"
	"github.com/calderlane/modelseat/config"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check CLI prerequisites and configuration",
	Long: `Verifies that the model CLI and supporting tools are installed, and
that seats.yaml parses cleanly.`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	prereqs := cli.DefaultPrerequisites()
	results := cli.CheckAll(prereqs)
	fmt.Fprint(cmd.OutOrStdout(), cli.FormatCheckResults(results))

	cfg, err := config.LoadDefault()
	if err != nil {
		return fmt.Errorf("seats config: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\nSeats configured: %d\n", len(cfg.Seats))
	for name := range cfg.Seats {
		fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", name)
	}

	return cli.ValidateRequired(prereqs)
}
