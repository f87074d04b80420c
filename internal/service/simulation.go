package service

import (
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-arena/internal/entity"
)

var ErrNoGames = errors.New("number of games must be positive")

type SimulationResult struct {
	Games int `json:"games"`
	XWins int `json:"x_wins"`
	OWins int `json:"o_wins"`
	Draws int `json:"draws"`
}

// Simulate plays bot against bot, x always opening.
func Simulate(bot BotService, x, o entity.Difficulty, games int) (SimulationResult, error) {
	if games <= 0 {
		return SimulationResult{}, ErrNoGames
	}

	result := SimulationResult{Games: games}
	for range games {
		winner, err := playOut(bot, x, o)
		if err != nil {
			return result, err
		}

		switch winner {
		case entity.PlayerX:
			result.XWins++
		case entity.PlayerO:
			result.OWins++
		default:
			result.Draws++
		}
	}

	return result, nil
}

func playOut(bot BotService, x, o entity.Difficulty) (string, error) {
	var board entity.Board
	turn := entity.PlayerX

	for {
		difficulty := x
		if turn == entity.PlayerO {
			difficulty = o
		}

		cell, err := bot.ChooseMove(board, turn, difficulty)
		if err != nil {
			return "", fmt.Errorf("failed to choose move for %s: %w", turn, err)
		}
		board[cell] = turn

		if winner, _ := board.Winner(); winner != entity.EmptyCell {
			return winner, nil
		}

		if board.IsFull() {
			return entity.EmptyCell, nil
		}

		turn = entity.Opponent(turn)
	}
}
