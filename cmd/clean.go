package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/calderlane/modelseat/logger"
	"github.com/calderlane/modelseat/process"
)

var skipConfirm bool

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Kill orphaned seat processes and remove log files",
	Long: `Finds model CLI processes left behind by crashed supervisors, kills
them, and removes modelseat log files.

It will prompt for confirmation before proceeding unless the --yes
flag is used.`,
	RunE: runClean,
}

func init() {
	cleanCmd.Flags().BoolVarP(&skipConfirm, "yes", "y", false, "Skip confirmation prompt")
	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, args []string) error {
	return runCleanWithReader(os.Stdin)
}

// runCleanWithReader allows injecting a reader for testing
func runCleanWithReader(input io.Reader) error {
	// No supervisor is running when this command executes, so every
	// matching process is an orphan.
	orphans, err := process.FindOrphanedSeatProcesses(nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: error finding orphaned processes: %v\n", err)
	}

	if len(orphans) == 0 {
		fmt.Println("No orphaned seat processes found.")
	} else {
		fmt.Printf("Found %d orphaned process(es):\n", len(orphans))
		for _, proc := range orphans {
			fmt.Printf("  - PID %d\n", proc.PID)
		}
	}
	fmt.Println("Log files will be removed.")

	if !skipConfirm {
		if !confirm(input, "Continue?") {
			fmt.Println("Aborted.")
			return nil
		}
	}

	killed, err := process.CleanupOrphanedProcesses(nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: error killing orphaned processes: %v\n", err)
	}

	logsCleared, err := logger.ClearLogs()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: error clearing logs: %v\n", err)
	}

	fmt.Println()
	fmt.Println("Cleaned:")
	if killed > 0 {
		fmt.Printf("  - %d orphaned process(es) killed\n", killed)
	}
	if logsCleared > 0 {
		fmt.Printf("  - %d log file(s) removed\n", logsCleared)
	}
	if killed == 0 && logsCleared == 0 {
		fmt.Println("  - nothing to do")
	}

	return nil
}

// confirm prompts the user for y/n confirmation
func confirm(input io.Reader, prompt string) bool {
	reader := bufio.NewReader(input)
	fmt.Printf("%s [y/N]: ", prompt)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes"
}
