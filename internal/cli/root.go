package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var configPath string

// NewRootCmd builds the command tree. Without a subcommand the server runs.
func NewRootCmd() *cobra.Command {
	serve := newServeCmd()

	rootCmd := &cobra.Command{
		Use:   "tictactoe",
		Short: "Tic-tac-toe game server",
		Long: `tictactoe serves two-player and AI tic-tac-toe sessions over HTTP,
with a matchmaking queue that pairs waiting players.`,
		RunE:         serve.RunE,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "./config.yml", "Path to the yaml config, empty to read the environment only")

	rootCmd.AddCommand(serve)
	rootCmd.AddCommand(newSimulateCmd())

	return rootCmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
