package entity

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoard_Winner(t *testing.T) {
	t.Run("Returns the symbol and line of a completed row", func(t *testing.T) {
		// Given: a board with a completed middle row for O
		board := Board{
			PlayerX, EmptyCell, PlayerX,
			PlayerO, PlayerO, PlayerO,
			PlayerX, EmptyCell, EmptyCell,
		}

		// When: the winner is determined
		winner, line := board.Winner()

		// Then: O wins on cells 3, 4 and 5
		assert.Equal(t, PlayerO, winner)
		assert.Equal(t, []int{3, 4, 5}, line)
	})

	t.Run("Detects every column and diagonal", func(t *testing.T) {
		for _, combo := range WinCombos {
			// Given: a board where only this combo is filled with X
			var board Board
			for _, cell := range combo {
				board[cell] = PlayerX
			}

			// When: the winner is determined
			winner, line := board.Winner()

			// Then: the combo is reported
			assert.Equal(t, PlayerX, winner)
			assert.Equal(t, []int{combo[0], combo[1], combo[2]}, line)
		}
	})

	t.Run("Returns nothing when no line is complete", func(t *testing.T) {
		// Given: a full board without a line
		board := Board{
			PlayerX, PlayerO, PlayerX,
			PlayerX, PlayerO, PlayerO,
			PlayerO, PlayerX, PlayerX,
		}

		// When: the winner is determined
		winner, line := board.Winner()

		// Then: no winner and no line
		assert.Equal(t, EmptyCell, winner)
		assert.Nil(t, line)
		assert.True(t, board.IsFull())
	})
}

func TestBoard_EmptyCells(t *testing.T) {
	// Given: a board with two occupied cells
	board := Board{PlayerX, EmptyCell, EmptyCell, EmptyCell, PlayerO}

	// When: empty cells are listed
	cells := board.EmptyCells()

	// Then: they come in index order
	assert.Equal(t, []int{1, 2, 3, 5, 6, 7, 8}, cells)
	assert.Equal(t, "X...O....", board.String())
}

func TestBoard_AlternatingPlayNeverYieldsTwoWinners(t *testing.T) {
	rnd := rand.New(rand.NewPCG(7, 11))

	for range 2000 {
		// Given: a random game played with alternating symbols until a line or a full board
		var board Board
		symbol := PlayerX
		for !board.IsFull() {
			cells := board.EmptyCells()
			board[cells[rnd.IntN(len(cells))]] = symbol
			require.True(t, board.IsBalanced())

			if winner, _ := board.Winner(); winner != EmptyCell {
				break
			}
			symbol = Opponent(symbol)
		}

		// When: all completed lines are collected
		lines := board.Lines()

		// Then: at most one symbol owns lines
		assert.LessOrEqual(t, len(lines), 1, board.String())
	}
}

func TestIsValidPosition(t *testing.T) {
	assert.True(t, IsValidPosition(0))
	assert.True(t, IsValidPosition(8))
	assert.False(t, IsValidPosition(-1))
	assert.False(t, IsValidPosition(9))
}

func TestNormalizeName(t *testing.T) {
	t.Run("Accepts and trims valid names", func(t *testing.T) {
		for _, name := range []string{"Al", "Alice", " Bob_1 ", "x-y z", "ABCDEFGHIJKLMNO"} {
			normalized, err := NormalizeName(name)

			require.NoError(t, err, name)
			assert.NotEmpty(t, normalized)
		}

		normalized, err := NormalizeName("  Bob  ")
		require.NoError(t, err)
		assert.Equal(t, "Bob", normalized)
	})

	t.Run("Rejects names outside the length or charset", func(t *testing.T) {
		for _, name := range []string{"", "A", "   ", "ABCDEFGHIJKLMNOP", "Bob!", "<script>", "Zoë"} {
			_, err := NormalizeName(name)

			assert.Error(t, err, name)
		}
	})
}
