package entity

import "time"

const EstimatedWaitPerPlayer = 30 * time.Second

type QueueEntry struct {
	PlayerID   string    `json:"player_id"`
	Name       string    `json:"name"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// Match is a pairing waiting to be picked up by one of its players.
type Match struct {
	PlayerID     string    `json:"player_id"`
	SessionID    string    `json:"session_id"`
	OpponentName string    `json:"opponent_name"`
	Symbol       string    `json:"symbol"`
	MatchedAt    time.Time `json:"matched_at"`
}

type MatchResult struct {
	Matched      bool   `json:"matched"`
	SessionID    string `json:"session_id,omitempty"`
	OpponentName string `json:"opponent_name,omitempty"`
	Symbol       string `json:"symbol,omitempty"`
}

type QueueStatus struct {
	Position             int `json:"position"`
	TotalWaiting         int `json:"total_waiting"`
	EstimatedWaitSeconds int `json:"estimated_wait_seconds"`
}

func NewQueueStatus(position, total int) QueueStatus {
	return QueueStatus{
		Position:             position,
		TotalWaiting:         total,
		EstimatedWaitSeconds: total * int(EstimatedWaitPerPlayer/time.Second),
	}
}
