package service

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/rocketscienceinc/tictactoe-arena/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-arena/internal/entity"
)

var ErrBotNotFound = errors.New("bot player not found")

const (
	scoreWin  = 10
	scoreLoss = -10
	scoreDraw = 0

	centerCell = 4
)

var (
	cornerCells = []int{0, 2, 6, 8}
	edgeCells   = []int{1, 3, 5, 7}
)

// Random is the source of the easy and medium tiers' choices.
type Random interface {
	IntN(n int) int
}

type globalRandom struct{}

func (globalRandom) IntN(n int) int {
	return rand.IntN(n) //nolint: gosec // move choice, not a secret
}

type BotService interface {
	ChooseMove(board entity.Board, symbol string, difficulty entity.Difficulty) (int, error)
	MakeTurn(session *entity.Session) (int, error)
}

type botService struct {
	random Random
}

// NewBotService returns a strategist. A nil random uses the global source.
func NewBotService(random Random) BotService {
	if random == nil {
		random = globalRandom{}
	}

	return &botService{
		random: random,
	}
}

// MakeTurn plays the synthetic player's move and returns the chosen cell.
func (that *botService) MakeTurn(session *entity.Session) (int, error) {
	botPlayer := session.BotPlayer()
	if botPlayer == nil || session.AI == nil {
		return 0, ErrBotNotFound
	}

	if session.Status != entity.StatusPlaying {
		return 0, apperror.ErrNotPlaying
	}

	if session.Turn != botPlayer.Symbol {
		return 0, apperror.ErrNotYourTurn
	}

	cell, err := that.ChooseMove(session.Board, botPlayer.Symbol, session.AI.Difficulty)
	if err != nil {
		return 0, err
	}

	if err = session.Move(botPlayer.ID, cell); err != nil {
		return 0, fmt.Errorf("bot failed to make turn: %w", err)
	}

	return cell, nil
}

// ChooseMove picks a cell for symbol. The board is passed by value and never
// written back.
func (that *botService) ChooseMove(board entity.Board, symbol string, difficulty entity.Difficulty) (int, error) {
	if winner, _ := board.Winner(); winner != entity.EmptyCell {
		return 0, apperror.ErrNoAvailableMoves
	}

	available := board.EmptyCells()
	if len(available) == 0 {
		return 0, apperror.ErrNoAvailableMoves
	}

	switch difficulty {
	case entity.DifficultyEasy:
		return that.pick(available), nil
	case entity.DifficultyMedium:
		return that.mediumMove(board, symbol), nil
	case entity.DifficultyHard:
		return hardMove(board, symbol), nil
	default:
		return 0, fmt.Errorf("%w: %q", apperror.ErrInvalidDifficulty, difficulty)
	}
}

func (that *botService) pick(cells []int) int {
	return cells[that.random.IntN(len(cells))]
}

// mediumMove: win, block, center, corner, edge, anything.
func (that *botService) mediumMove(board entity.Board, symbol string) int {
	if cell, ok := winningCell(board, symbol); ok {
		return cell
	}

	if cell, ok := winningCell(board, entity.Opponent(symbol)); ok {
		return cell
	}

	if board[centerCell] == entity.EmptyCell {
		return centerCell
	}

	if corners := emptyOf(board, cornerCells); len(corners) > 0 {
		return that.pick(corners)
	}

	if edges := emptyOf(board, edgeCells); len(edges) > 0 {
		return that.pick(edges)
	}

	return that.pick(board.EmptyCells())
}

// winningCell returns the lowest empty cell that completes a line for symbol.
func winningCell(board entity.Board, symbol string) (int, bool) {
	for _, cell := range board.EmptyCells() {
		next := board
		next[cell] = symbol
		if winner, _ := next.Winner(); winner == symbol {
			return cell, true
		}
	}

	return 0, false
}

func emptyOf(board entity.Board, cells []int) []int {
	empty := make([]int, 0, len(cells))
	for _, cell := range cells {
		if board[cell] == entity.EmptyCell {
			empty = append(empty, cell)
		}
	}

	return empty
}

// hardMove returns the first cell, in index order, with the best minimax score.
func hardMove(board entity.Board, symbol string) int {
	bestCell, bestScore := -1, math.MinInt
	alpha, beta := math.MinInt, math.MaxInt

	for _, cell := range board.EmptyCells() {
		next := board
		next[cell] = symbol

		score := minimax(next, entity.Opponent(symbol), symbol, alpha, beta)
		if score > bestScore {
			bestCell, bestScore = cell, score
		}

		alpha = max(alpha, bestScore)
	}

	return bestCell
}

func minimax(board entity.Board, toMove, self string, alpha, beta int) int {
	if winner, _ := board.Winner(); winner != entity.EmptyCell {
		if winner == self {
			return scoreWin
		}
		return scoreLoss
	}

	if board.IsFull() {
		return scoreDraw
	}

	maximizing := toMove == self

	best := math.MaxInt
	if maximizing {
		best = math.MinInt
	}

	for _, cell := range board.EmptyCells() {
		next := board
		next[cell] = toMove

		score := minimax(next, entity.Opponent(toMove), self, alpha, beta)
		if maximizing {
			best = max(best, score)
			alpha = max(alpha, best)
		} else {
			best = min(best, score)
			beta = min(beta, best)
		}

		if beta <= alpha {
			break
		}
	}

	return best
}
