package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rocketscienceinc/tictactoe-arena/internal/entity"
	"github.com/rocketscienceinc/tictactoe-arena/internal/service"
)

func newSimulateCmd() *cobra.Command {
	var (
		x, o   string
		games  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Play the AI against itself and print the tally",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			xDifficulty, err := entity.ParseDifficulty(x)
			if err != nil {
				return fmt.Errorf("--x: %w", err)
			}

			oDifficulty, err := entity.ParseDifficulty(o)
			if err != nil {
				return fmt.Errorf("--o: %w", err)
			}

			result, err := service.Simulate(service.NewBotService(nil), xDifficulty, oDifficulty, games)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return json.NewEncoder(out).Encode(result)
			}

			_, err = fmt.Fprintf(out, "%s (X) vs %s (O), %d games: X won %d, O won %d, %d draws\n",
				xDifficulty, oDifficulty, result.Games, result.XWins, result.OWins, result.Draws)

			return err
		},
	}

	cmd.Flags().StringVar(&x, "x", string(entity.DifficultyHard), "Difficulty of the X player")
	cmd.Flags().StringVar(&o, "o", string(entity.DifficultyHard), "Difficulty of the O player")
	cmd.Flags().IntVarP(&games, "games", "n", 100, "Number of games to play")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the tally as JSON")

	return cmd
}
