package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-arena/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-arena/internal/entity"
	"github.com/rocketscienceinc/tictactoe-arena/internal/metrics"
	"github.com/rocketscienceinc/tictactoe-arena/internal/pkg"
)

const botTurnTimeout = 5 * time.Second

type sessionRepo interface {
	CreateOrUpdate(ctx context.Context, session *entity.Session) error
	GetByID(ctx context.Context, id string) (*entity.Session, error)
	DeleteByID(ctx context.Context, id string) error
	List(ctx context.Context) ([]*entity.Session, error)
}

type botService interface {
	MakeTurn(session *entity.Session) (int, error)
}

type recorder interface {
	SessionCreated(mode string)
	MoveApplied(actor string)
	RoundFinished(result string)
	Evicted(kind string, count int)
}

type Options struct {
	// AIMoveDelay is how long the synthetic player waits before answering.
	AIMoveDelay time.Duration
	// SessionTTL is how long a session may go untouched before Sweep removes it.
	SessionTTL time.Duration
}

// GameManager runs every session operation under that session's lock and
// schedules the AI's replies.
type GameManager struct {
	logger   *slog.Logger
	sessions sessionRepo
	bot      botService
	clock    pkg.Clock
	metrics  recorder
	opts     Options

	locks *sessionLocks

	mu     sync.Mutex
	closed bool
	done   chan struct{}
	wg     sync.WaitGroup
}

func NewGameManager(logger *slog.Logger, sessions sessionRepo, bot botService, clock pkg.Clock, metrics recorder, opts Options) *GameManager {
	return &GameManager{
		logger:   logger.With("component", "game_manager"),
		sessions: sessions,
		bot:      bot,
		clock:    clock,
		metrics:  metrics,
		opts:     opts,
		locks:    newSessionLocks(),
		done:     make(chan struct{}),
	}
}

func (that *GameManager) CreateSession(ctx context.Context, ai *entity.AIConfig) (*entity.Snapshot, error) {
	mode := metrics.ModeHuman
	if ai != nil {
		if _, err := entity.ParseDifficulty(string(ai.Difficulty)); err != nil {
			return nil, err
		}
		mode = metrics.ModeAI
	}

	session := entity.NewSession(pkg.GenerateSessionID(), ai, that.clock.Now())
	if err := that.sessions.CreateOrUpdate(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	that.metrics.SessionCreated(mode)
	that.logger.Info("session created", "session_id", session.ID, "mode", mode)

	return session.Snapshot("")
}

// CreateMatchedSession seats a matchmaking pair, first as X and second as O.
func (that *GameManager) CreateMatchedSession(ctx context.Context, first, second *entity.QueueEntry) (string, error) {
	session := entity.NewSession(pkg.GenerateSessionID(), nil, that.clock.Now())

	for _, entry := range []*entity.QueueEntry{first, second} {
		if _, err := session.Join(entry.PlayerID, entry.Name); err != nil {
			return "", fmt.Errorf("failed to seat %s: %w", entry.PlayerID, err)
		}
	}

	if err := that.sessions.CreateOrUpdate(ctx, session); err != nil {
		return "", fmt.Errorf("failed to create matched session: %w", err)
	}

	that.metrics.SessionCreated(metrics.ModeMatchmaking)

	return session.ID, nil
}

func (that *GameManager) Join(ctx context.Context, sessionID, name string) (*entity.Player, *entity.Snapshot, error) {
	log := that.logger.With("method", "Join", "session_id", sessionID)

	unlock := that.locks.Lock(sessionID)
	defer unlock()

	session, err := that.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get session: %w", err)
	}

	player, err := session.Join(pkg.GeneratePlayerID(), name)
	if err != nil {
		return nil, nil, err
	}

	if err = that.save(ctx, session); err != nil {
		return nil, nil, err
	}

	log.Info("player joined", "player_id", player.ID, "symbol", player.Symbol, "status", session.Status)

	snapshot, err := session.Snapshot(player.ID)
	if err != nil {
		return nil, nil, err
	}

	return player, snapshot, nil
}

func (that *GameManager) Move(ctx context.Context, sessionID, playerID string, position int) (*entity.Snapshot, error) {
	log := that.logger.With("method", "Move", "session_id", sessionID)

	unlock := that.locks.Lock(sessionID)
	defer unlock()

	session, err := that.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if err = session.Move(playerID, position); err != nil {
		return nil, err
	}

	if err = that.save(ctx, session); err != nil {
		return nil, err
	}

	that.metrics.MoveApplied(metrics.ActorHuman)
	if session.IsRoundOver() {
		that.metrics.RoundFinished(session.Status)
		log.Info("round finished", "status", session.Status, "winner", session.Winner)
	}

	if session.IsBotTurn() {
		that.scheduleBotTurn(sessionID)
	}

	return session.Snapshot(playerID)
}

// Leave is a no-op for unknown sessions or players. A session left without
// humans is deleted.
func (that *GameManager) Leave(ctx context.Context, sessionID, playerID string) error {
	log := that.logger.With("method", "Leave", "session_id", sessionID)

	unlock := that.locks.Lock(sessionID)
	defer unlock()

	session, err := that.sessions.GetByID(ctx, sessionID)
	if errors.Is(err, apperror.ErrSessionNotFound) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}

	if !session.Leave(playerID) {
		return nil
	}

	if session.HumanCount() == 0 {
		if err = that.sessions.DeleteByID(ctx, sessionID); err != nil && !errors.Is(err, apperror.ErrSessionNotFound) {
			return fmt.Errorf("failed to delete session: %w", err)
		}

		log.Info("last player left, session deleted")
		return nil
	}

	if err = that.save(ctx, session); err != nil {
		return err
	}

	log.Info("player left", "player_id", playerID, "status", session.Status)

	return nil
}

func (that *GameManager) RequestRematch(ctx context.Context, sessionID, playerID string) (entity.RematchResult, *entity.Snapshot, error) {
	unlock := that.locks.Lock(sessionID)
	defer unlock()

	session, err := that.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return entity.RematchResult{}, nil, fmt.Errorf("failed to get session: %w", err)
	}

	result, err := session.RequestRematch(playerID)
	if err != nil {
		return entity.RematchResult{}, nil, err
	}

	if err = that.save(ctx, session); err != nil {
		return entity.RematchResult{}, nil, err
	}

	if result.Started && session.IsBotTurn() {
		that.scheduleBotTurn(sessionID)
	}

	snapshot, err := session.Snapshot(playerID)
	if err != nil {
		return entity.RematchResult{}, nil, err
	}

	return result, snapshot, nil
}

// Snapshot reads the session. playerID may be empty for an anonymous view.
func (that *GameManager) Snapshot(ctx context.Context, sessionID, playerID string) (*entity.Snapshot, error) {
	session, err := that.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return session.Snapshot(playerID)
}

func (that *GameManager) DeleteSession(ctx context.Context, sessionID string) error {
	unlock := that.locks.Lock(sessionID)
	defer unlock()

	if err := that.sessions.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	that.logger.Info("session deleted", "session_id", sessionID)

	return nil
}

func (that *GameManager) Count(ctx context.Context) (int, error) {
	sessions, err := that.sessions.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list sessions: %w", err)
	}

	return len(sessions), nil
}

// Sweep deletes sessions not touched within the session TTL before now.
func (that *GameManager) Sweep(ctx context.Context, now time.Time) (int, error) {
	sessions, err := that.sessions.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list sessions: %w", err)
	}

	evicted := 0
	for _, session := range sessions {
		if !that.isExpired(session, now) {
			continue
		}

		ok, err := that.evict(ctx, session.ID, now)
		if err != nil {
			return evicted, err
		}
		if ok {
			evicted++
		}
	}

	that.metrics.Evicted(metrics.EvictedSession, evicted)
	if evicted > 0 {
		that.logger.Info("expired sessions evicted", "count", evicted)
	}

	return evicted, nil
}

func (that *GameManager) isExpired(session *entity.Session, now time.Time) bool {
	return now.Sub(session.UpdatedAt) > that.opts.SessionTTL
}

// evict re-reads the session under its lock so a session touched since the
// listing survives.
func (that *GameManager) evict(ctx context.Context, sessionID string, now time.Time) (bool, error) {
	unlock := that.locks.Lock(sessionID)
	defer unlock()

	session, err := that.sessions.GetByID(ctx, sessionID)
	if errors.Is(err, apperror.ErrSessionNotFound) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("failed to get session: %w", err)
	}

	if !that.isExpired(session, now) {
		return false, nil
	}

	if err = that.sessions.DeleteByID(ctx, sessionID); err != nil && !errors.Is(err, apperror.ErrSessionNotFound) {
		return false, fmt.Errorf("failed to delete session: %w", err)
	}

	return true, nil
}

// Close stops pending AI turns and waits for running ones.
func (that *GameManager) Close() {
	that.mu.Lock()
	if !that.closed {
		that.closed = true
		close(that.done)
	}
	that.mu.Unlock()

	that.wg.Wait()
}

func (that *GameManager) save(ctx context.Context, session *entity.Session) error {
	session.Touch(that.clock.Now())

	if err := that.sessions.CreateOrUpdate(ctx, session); err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	return nil
}

// scheduleBotTurn answers for the synthetic player after the configured delay,
// without holding up the caller.
func (that *GameManager) scheduleBotTurn(sessionID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.closed {
		return
	}

	that.wg.Add(1)
	go func() {
		defer that.wg.Done()

		timer := time.NewTimer(that.opts.AIMoveDelay)
		defer timer.Stop()

		select {
		case <-that.done:
			return
		case <-timer.C:
		}

		ctx, cancel := context.WithTimeout(context.Background(), botTurnTimeout)
		defer cancel()

		if err := that.playBotTurn(ctx, sessionID); err != nil {
			that.logger.Error("bot turn failed", "session_id", sessionID, "error", err)
		}
	}()
}

func (that *GameManager) playBotTurn(ctx context.Context, sessionID string) error {
	unlock := that.locks.Lock(sessionID)
	defer unlock()

	session, err := that.sessions.GetByID(ctx, sessionID)
	if errors.Is(err, apperror.ErrSessionNotFound) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}

	// the human may have left or the round may have been reset meanwhile
	if !session.IsBotTurn() {
		return nil
	}

	cell, err := that.bot.MakeTurn(session)
	if err != nil {
		return fmt.Errorf("failed to make bot turn: %w", err)
	}

	if err = that.save(ctx, session); err != nil {
		return err
	}

	that.metrics.MoveApplied(metrics.ActorAI)
	if session.IsRoundOver() {
		that.metrics.RoundFinished(session.Status)
	}

	that.logger.Debug("bot moved", "session_id", sessionID, "cell", cell)

	return nil
}
