package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-arena/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-arena/internal/service"
)

func runCmd(args ...string) (string, error) {
	cmd := NewRootCmd()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)

	err := cmd.Execute()

	return out.String(), err
}

func TestSimulateCmd(t *testing.T) {
	t.Run("Prints a JSON tally", func(t *testing.T) {
		// When: hard plays itself ten times
		out, err := runCmd("simulate", "--x", "hard", "--o", "hard", "--games", "10", "--json")

		// Then: every game is a draw
		require.NoError(t, err)

		var result service.SimulationResult
		require.NoError(t, json.Unmarshal([]byte(out), &result))
		assert.Equal(t, service.SimulationResult{Games: 10, Draws: 10}, result)
	})

	t.Run("Prints a text summary", func(t *testing.T) {
		out, err := runCmd("simulate", "-n", "3")

		require.NoError(t, err)
		assert.Equal(t, "hard (X) vs hard (O), 3 games: X won 0, O won 0, 3 draws\n", out)
	})

	t.Run("Rejects an unknown difficulty", func(t *testing.T) {
		_, err := runCmd("simulate", "--x", "grandmaster")

		assert.ErrorIs(t, err, apperror.ErrInvalidDifficulty)
	})
}
