package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-arena/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-arena/internal/entity"
	"github.com/rocketscienceinc/tictactoe-arena/internal/pkg"
)

const pairSize = 2

type queueRepo interface {
	Push(ctx context.Context, entry *entity.QueueEntry) error
	List(ctx context.Context) ([]*entity.QueueEntry, error)
	PopFront(ctx context.Context, count int) ([]*entity.QueueEntry, error)
	Remove(ctx context.Context, playerID string) error

	SaveMatch(ctx context.Context, match *entity.Match, ttl time.Duration) error
	TakeMatch(ctx context.Context, playerID string) (*entity.Match, error)
}

// PairFunc seats a matched pair in a new session and returns its id.
// first arrived earlier than second.
type PairFunc func(ctx context.Context, first, second *entity.QueueEntry) (string, error)

// MatchmakingService is a FIFO queue that always pairs its two oldest entries.
type MatchmakingService struct {
	logger   *slog.Logger
	queue    queueRepo
	clock    pkg.Clock
	matchTTL time.Duration

	// serializes dequeue-pair-create
	mu sync.Mutex
}

func NewMatchmakingService(logger *slog.Logger, queue queueRepo, clock pkg.Clock, matchTTL time.Duration) *MatchmakingService {
	return &MatchmakingService{
		logger:   logger.With("component", "matchmaking"),
		queue:    queue,
		clock:    clock,
		matchTTL: matchTTL,
	}
}

func (that *MatchmakingService) Enqueue(ctx context.Context, name string) (*entity.QueueEntry, error) {
	name, err := entity.NormalizeName(name)
	if err != nil {
		return nil, err
	}

	entry := &entity.QueueEntry{
		PlayerID:   pkg.GeneratePlayerID(),
		Name:       name,
		EnqueuedAt: that.clock.Now(),
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	if err = that.queue.Push(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to enqueue player: %w", err)
	}

	that.logger.Debug("player enqueued", "player_id", entry.PlayerID)

	return entry, nil
}

// TryMatch pairs the head of the queue when at least two players wait. The
// caller only learns about a match it is part of; the other paired player
// gets it on their next call.
func (that *MatchmakingService) TryMatch(ctx context.Context, playerID string, pair PairFunc) (*entity.MatchResult, error) {
	log := that.logger.With("method", "TryMatch", "player_id", playerID)

	that.mu.Lock()
	defer that.mu.Unlock()

	match, err := that.queue.TakeMatch(ctx, playerID)
	if err == nil {
		return matchResult(match), nil
	}

	if !errors.Is(err, apperror.ErrMatchNotFound) {
		return nil, fmt.Errorf("failed to take match: %w", err)
	}

	entries, err := that.queue.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list queue: %w", err)
	}

	if !slices.ContainsFunc(entries, func(entry *entity.QueueEntry) bool { return entry.PlayerID == playerID }) {
		return nil, apperror.ErrNotQueued
	}

	if len(entries) < pairSize {
		return &entity.MatchResult{}, nil
	}

	first, second := entries[0], entries[1]

	sessionID, err := pair(ctx, first, second)
	if err != nil {
		return nil, fmt.Errorf("failed to create matched session: %w", err)
	}

	if _, err = that.queue.PopFront(ctx, pairSize); err != nil {
		return nil, fmt.Errorf("failed to dequeue matched pair: %w", err)
	}

	log.Info("players matched", "session_id", sessionID, "x", first.PlayerID, "o", second.PlayerID)

	now := that.clock.Now()
	matches := []*entity.Match{
		{PlayerID: first.PlayerID, SessionID: sessionID, OpponentName: second.Name, Symbol: entity.PlayerX, MatchedAt: now},
		{PlayerID: second.PlayerID, SessionID: sessionID, OpponentName: first.Name, Symbol: entity.PlayerO, MatchedAt: now},
	}

	result := &entity.MatchResult{}
	for _, m := range matches {
		if m.PlayerID == playerID {
			result = matchResult(m)
			continue
		}

		if err = that.queue.SaveMatch(ctx, m, that.matchTTL); err != nil {
			return nil, fmt.Errorf("failed to save match: %w", err)
		}
	}

	return result, nil
}

func matchResult(match *entity.Match) *entity.MatchResult {
	return &entity.MatchResult{
		Matched:      true,
		SessionID:    match.SessionID,
		OpponentName: match.OpponentName,
		Symbol:       match.Symbol,
	}
}

func (that *MatchmakingService) Status(ctx context.Context, playerID string) (entity.QueueStatus, error) {
	entries, err := that.queue.List(ctx)
	if err != nil {
		return entity.QueueStatus{}, fmt.Errorf("failed to list queue: %w", err)
	}

	idx := slices.IndexFunc(entries, func(entry *entity.QueueEntry) bool { return entry.PlayerID == playerID })
	if idx < 0 {
		return entity.QueueStatus{}, apperror.ErrNotQueued
	}

	return entity.NewQueueStatus(idx+1, len(entries)), nil
}

// Leave drops a waiting player. Unknown players are ignored.
func (that *MatchmakingService) Leave(ctx context.Context, playerID string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if err := that.queue.Remove(ctx, playerID); err != nil {
		return fmt.Errorf("failed to leave queue: %w", err)
	}

	return nil
}

func (that *MatchmakingService) Len(ctx context.Context) (int, error) {
	entries, err := that.queue.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list queue: %w", err)
	}

	return len(entries), nil
}

// Sweep removes entries enqueued more than maxAge before now.
func (that *MatchmakingService) Sweep(ctx context.Context, now time.Time, maxAge time.Duration) (int, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	entries, err := that.queue.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list queue: %w", err)
	}

	evicted := 0
	for _, entry := range entries {
		if now.Sub(entry.EnqueuedAt) <= maxAge {
			continue
		}

		if err = that.queue.Remove(ctx, entry.PlayerID); err != nil {
			return evicted, fmt.Errorf("failed to evict queue entry: %w", err)
		}
		evicted++
	}

	if evicted > 0 {
		that.logger.Info("stale queue entries evicted", "count", evicted)
	}

	return evicted, nil
}
