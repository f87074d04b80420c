package entity

import (
	"slices"
	"time"

	"github.com/rocketscienceinc/tictactoe-arena/internal/apperror"
)

const (
	StatusWaiting = "waiting"
	StatusPlaying = "playing"
	StatusPaused  = "paused"
	StatusWon     = "won"
	StatusDraw    = "draw"

	MaxPlayers = 2
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

func ParseDifficulty(value string) (Difficulty, error) {
	switch difficulty := Difficulty(value); difficulty {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return difficulty, nil
	default:
		return "", apperror.ErrInvalidDifficulty
	}
}

type AIConfig struct {
	Difficulty Difficulty `json:"difficulty"`
}

// Session is one game between two seats. The zero value is not usable, use NewSession.
type Session struct {
	ID           string    `json:"id"`
	Board        Board     `json:"board"`
	Turn         string    `json:"turn"`
	Status       string    `json:"status"`
	Winner       string    `json:"winner,omitempty"`
	WinningLine  []int     `json:"winning_line,omitempty"`
	Players      []*Player `json:"players"`
	RematchVotes []string  `json:"rematch_votes,omitempty"`
	PausedBy     string    `json:"paused_by,omitempty"`
	AI           *AIConfig `json:"ai,omitempty"`
	JoinCount    int       `json:"join_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewSession creates a waiting session. With an AI config the synthetic
// player takes the O seat right away.
func NewSession(id string, ai *AIConfig, now time.Time) *Session {
	session := &Session{
		ID:        id,
		Turn:      PlayerX,
		Status:    StatusWaiting,
		Players:   make([]*Player, 0, MaxPlayers),
		AI:        ai,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if ai != nil {
		bot := NewBotPlayer(ai.Difficulty)
		bot.Symbol = PlayerO
		session.seat(bot)
	}

	return session
}

// Join seats a player in the free symbol. The second seated player starts
// or resumes the round.
func (that *Session) Join(playerID, name string) (*Player, error) {
	if len(that.Players) >= MaxPlayers {
		return nil, apperror.ErrGameFull
	}

	name, err := NormalizeName(name)
	if err != nil {
		return nil, err
	}

	player := &Player{
		ID:     playerID,
		Name:   name,
		Symbol: that.freeSymbol(),
	}
	that.seat(player)

	if len(that.Players) == MaxPlayers && (that.Status == StatusWaiting || that.Status == StatusPaused) {
		that.Status = StatusPlaying
		that.PausedBy = ""
	}

	return player, nil
}

func (that *Session) seat(player *Player) {
	that.JoinCount++
	player.JoinOrder = that.JoinCount
	that.Players = append(that.Players, player)
}

func (that *Session) freeSymbol() string {
	if that.PlayerBySymbol(PlayerX) == nil {
		return PlayerX
	}

	return PlayerO
}

// Move places the player's symbol and settles the round. A rejected move
// leaves the session untouched.
func (that *Session) Move(playerID string, position int) error {
	if that.Status != StatusPlaying {
		return apperror.ErrNotPlaying
	}

	if !IsValidPosition(position) {
		return apperror.ErrOutOfRange
	}

	if that.Board[position] != EmptyCell {
		return apperror.ErrCellOccupied
	}

	player := that.Player(playerID)
	if player == nil {
		return apperror.ErrUnknownPlayer
	}

	if player.Symbol != that.Turn {
		return apperror.ErrNotYourTurn
	}

	that.Board[position] = player.Symbol

	// a line on the last empty cell is a win, not a draw
	if winner, line := that.Board.Winner(); winner != EmptyCell {
		that.Status = StatusWon
		that.Winner = winner
		that.WinningLine = line
		return nil
	}

	if that.Board.IsFull() {
		that.Status = StatusDraw
		return nil
	}

	that.Turn = Opponent(that.Turn)

	return nil
}

// Leave removes the player. It reports false when the player was not seated.
func (that *Session) Leave(playerID string) bool {
	idx := slices.IndexFunc(that.Players, func(p *Player) bool { return p.ID == playerID })
	if idx < 0 {
		return false
	}

	that.Players = slices.Delete(that.Players, idx, idx+1)
	that.RematchVotes = slices.DeleteFunc(that.RematchVotes, func(id string) bool { return id == playerID })

	if that.Status == StatusPlaying && len(that.Players) < MaxPlayers {
		that.Status = StatusPaused
		that.PausedBy = playerID
	}

	return true
}

type RematchResult struct {
	Started    bool `json:"started"`
	WaitingFor int  `json:"waiting_for"`
}

// RequestRematch records the player's vote. Synthetic players always agree.
func (that *Session) RequestRematch(playerID string) (RematchResult, error) {
	if !that.IsRoundOver() {
		return RematchResult{}, apperror.ErrRematchInProgress
	}

	if that.Player(playerID) == nil {
		return RematchResult{}, apperror.ErrUnknownPlayer
	}

	if !slices.Contains(that.RematchVotes, playerID) {
		that.RematchVotes = append(that.RematchVotes, playerID)
	}

	votes := 0
	for _, player := range that.Players {
		if player.IsBot() || slices.Contains(that.RematchVotes, player.ID) {
			votes++
		}
	}

	if votes < len(that.Players) {
		return RematchResult{WaitingFor: len(that.Players) - votes}, nil
	}

	that.Reset()

	return RematchResult{Started: true}, nil
}

// Reset clears the round. Seats and symbols are kept.
func (that *Session) Reset() {
	that.Board = Board{}
	that.Turn = PlayerX
	that.Winner = ""
	that.WinningLine = nil
	that.RematchVotes = nil
	that.PausedBy = ""

	if len(that.Players) == MaxPlayers {
		that.Status = StatusPlaying
	} else {
		that.Status = StatusWaiting
	}
}

func (that *Session) Touch(now time.Time) {
	that.UpdatedAt = now
}

func (that *Session) Player(playerID string) *Player {
	for _, player := range that.Players {
		if player.ID == playerID {
			return player
		}
	}

	return nil
}

func (that *Session) PlayerBySymbol(symbol string) *Player {
	for _, player := range that.Players {
		if player.Symbol == symbol {
			return player
		}
	}

	return nil
}

func (that *Session) BotPlayer() *Player {
	for _, player := range that.Players {
		if player.IsBot() {
			return player
		}
	}

	return nil
}

func (that *Session) HumanCount() int {
	count := 0
	for _, player := range that.Players {
		if !player.IsBot() {
			count++
		}
	}

	return count
}

// IsBotTurn reports whether the synthetic player is due to move.
func (that *Session) IsBotTurn() bool {
	bot := that.BotPlayer()

	return bot != nil && that.Status == StatusPlaying && that.Turn == bot.Symbol
}

func (that *Session) IsRoundOver() bool {
	return that.Status == StatusWon || that.Status == StatusDraw
}

func (that *Session) IsWithBot() bool {
	return that.AI != nil
}

func (that *Session) HasVoted(playerID string) bool {
	return slices.Contains(that.RematchVotes, playerID)
}

// Clone returns a deep copy.
func (that *Session) Clone() *Session {
	clone := *that

	clone.WinningLine = slices.Clone(that.WinningLine)
	clone.RematchVotes = slices.Clone(that.RematchVotes)

	clone.Players = make([]*Player, 0, len(that.Players))
	for _, player := range that.Players {
		p := *player
		clone.Players = append(clone.Players, &p)
	}

	if that.AI != nil {
		ai := *that.AI
		clone.AI = &ai
	}

	return &clone
}
