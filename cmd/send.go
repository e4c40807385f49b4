package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/calderlane/modelseat/config"
	"github.com/calderlane/modelseat/seat"
)

var (
	sendConfigPath string
	sendModel      string
	sendStream     bool
	sendTimeout    time.Duration
)

var sendCmd = &cobra.Command{
	Use:   "send <seat> [prompt]",
	Short: "Send a prompt to a seat and print the result",
	Long: `Sends one prompt to the named seat and prints the model's result text
to stdout. The seat's configuration is read from seats.yaml; a seat
that is not defined there runs with defaults.

When the prompt argument is omitted, the prompt is read from stdin.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSend,
}

func init() {
	sendCmd.Flags().StringVar(&sendConfigPath, "config", "", "Path to seats.yaml (defaults to the resolved config directory)")
	sendCmd.Flags().StringVar(&sendModel, "model", "", "Override the seat's model")
	sendCmd.Flags().BoolVar(&sendStream, "stream", false, "Use a persistent streaming session for this call")
	sendCmd.Flags().DurationVar(&sendTimeout, "timeout", 0, "Per-call timeout (e.g. 90s, 5m)")
	rootCmd.AddCommand(sendCmd)
}

func runSend(cmd *cobra.Command, args []string) error {
	seatName := args[0]

	prompt, err := resolvePrompt(args, cmd.InOrStdin())
	if err != nil {
		return err
	}

	sc, err := loadSeatConfig(seatName)
	if err != nil {
		return err
	}

	flags := sc.Flags()
	if sendModel != "" {
		flags.Model = sendModel
	}

	opts := sc.Options()
	if sendStream {
		opts.Streaming = true
	}
	if sendTimeout > 0 {
		opts.Timeout = sendTimeout
	}

	s := seat.New(seatName, flags, opts)
	if err := s.Start(); err != nil {
		return fmt.Errorf("failed to start seat %s: %w", seatName, err)
	}
	defer s.Close()

	msg, err := s.Send(prompt)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), msg.Result)
	return nil
}

// resolvePrompt takes the prompt from the second argument, or from
// stdin when only the seat name was given.
func resolvePrompt(args []string, in io.Reader) (string, error) {
	if len(args) > 1 {
		return args[1], nil
	}

	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("failed to read prompt from stdin: %w", err)
	}
	prompt := strings.TrimSpace(string(data))
	if prompt == "" {
		return "", fmt.Errorf("empty prompt")
	}
	return prompt, nil
}

// loadSeatConfig loads the seats file and looks up the named seat. An
// undefined seat gets a zero config so ad-hoc seats work without a
// seats.yaml entry.
func loadSeatConfig(name string) (*config.SeatConfig, error) {
	var cfg *config.Config
	var err error
	if sendConfigPath != "" {
		cfg, err = config.Load(sendConfigPath)
		if err != nil {
			return nil, err
		}
		if cfg == nil {
			return nil, fmt.Errorf("seats config not found: %s", sendConfigPath)
		}
	} else {
		cfg, err = config.LoadDefault()
		if err != nil {
			return nil, err
		}
	}

	if sc, ok := cfg.Seats[name]; ok {
		return sc, nil
	}
	fmt.Fprintf(os.Stderr, "Note: seat %q not defined in seats.yaml, using defaults\n", name)
	return &config.SeatConfig{}, nil
}
