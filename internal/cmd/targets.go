package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/agentwatch/internal/capture"
	"github.com/Iron-Ham/agentwatch/internal/config"
)

var targetsSocket string

var targetsCmd = &cobra.Command{
	Use:   "targets [pattern]",
	Short: "List monitorable tmux sessions",
	Long: `Targets lists tmux sessions on the configured socket whose names match
the glob pattern (default "*").`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTargets,
}

func init() {
	targetsCmd.Flags().StringVar(&targetsSocket, "socket", "", "tmux socket name (default from config)")
	rootCmd.AddCommand(targetsCmd)
}

func runTargets(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	socket := targetsSocket
	if socket == "" {
		socket = cfg.Capture.Socket
	}

	pattern := "*"
	if len(args) == 1 {
		pattern = args[0]
	}

	provider := capture.NewTmuxProviderWithSocket(socket)
	targets, err := provider.ListTargets(pattern)
	if err != nil {
		return err
	}

	if len(targets) == 0 {
		fmt.Printf("No sessions match %q on socket %q\n", pattern, socket)
		return nil
	}
	for _, t := range targets {
		fmt.Println(t)
	}
	return nil
}
