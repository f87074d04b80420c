package entity

import (
	"slices"

	"github.com/rocketscienceinc/tictactoe-arena/internal/apperror"
)

// Snapshot is the externally visible state of a session.
type Snapshot struct {
	ID           string       `json:"id"`
	Board        Board        `json:"board"`
	Turn         string       `json:"turn"`
	Status       string       `json:"status"`
	Winner       string       `json:"winner"`
	WinningLine  []int        `json:"winning_line"`
	Players      []PlayerView `json:"players"`
	PlayerCount  int          `json:"player_count"`
	RematchVotes int          `json:"rematch_votes"`
	AI           *AIConfig    `json:"ai,omitempty"`
	You          *Viewer      `json:"you,omitempty"`
}

type PlayerView struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	IsSynthetic bool   `json:"is_synthetic"`
}

// Viewer is the part of a snapshot scoped to the requesting player.
type Viewer struct {
	Symbol       string `json:"symbol"`
	YourTurn     bool   `json:"your_turn"`
	RematchVoted bool   `json:"rematch_voted"`
}

// Snapshot builds a read-only view. With a non-empty playerID the view also
// carries that player's seat.
func (that *Session) Snapshot(playerID string) (*Snapshot, error) {
	snapshot := &Snapshot{
		ID:           that.ID,
		Board:        that.Board,
		Turn:         that.Turn,
		Status:       that.Status,
		Winner:       that.Winner,
		WinningLine:  slices.Clone(that.WinningLine),
		Players:      make([]PlayerView, 0, len(that.Players)),
		PlayerCount:  len(that.Players),
		RematchVotes: len(that.RematchVotes),
	}

	for _, player := range that.Players {
		snapshot.Players = append(snapshot.Players, PlayerView{
			Name:        player.Name,
			Symbol:      player.Symbol,
			IsSynthetic: player.IsSynthetic,
		})
	}

	if that.AI != nil {
		ai := *that.AI
		snapshot.AI = &ai
	}

	if playerID == "" {
		return snapshot, nil
	}

	player := that.Player(playerID)
	if player == nil {
		return nil, apperror.ErrUnknownPlayer
	}

	snapshot.You = &Viewer{
		Symbol:       player.Symbol,
		YourTurn:     that.Status == StatusPlaying && that.Turn == player.Symbol,
		RematchVoted: that.HasVoted(playerID),
	}

	return snapshot, nil
}
