package usecase

import (
	"context"
	"time"

	"github.com/rocketscienceinc/tictactoe-arena/internal/entity"
	"github.com/rocketscienceinc/tictactoe-arena/internal/metrics"
	"github.com/rocketscienceinc/tictactoe-arena/internal/service"
)

type matchmakingService interface {
	Enqueue(ctx context.Context, name string) (*entity.QueueEntry, error)
	TryMatch(ctx context.Context, playerID string, pair service.PairFunc) (*entity.MatchResult, error)
	Status(ctx context.Context, playerID string) (entity.QueueStatus, error)
	Leave(ctx context.Context, playerID string) error
	Len(ctx context.Context) (int, error)
	Sweep(ctx context.Context, now time.Time, maxAge time.Duration) (int, error)
}

type sessionCreator interface {
	CreateMatchedSession(ctx context.Context, first, second *entity.QueueEntry) (string, error)
}

type matchRecorder interface {
	Matched()
	Evicted(kind string, count int)
	QueueLength(length int)
}

// Matchmaker pairs queued players into fresh two-player sessions.
type Matchmaker struct {
	queue    matchmakingService
	sessions sessionCreator
	metrics  matchRecorder
	queueTTL time.Duration
}

func NewMatchmaker(queue matchmakingService, sessions sessionCreator, metrics matchRecorder, queueTTL time.Duration) *Matchmaker {
	return &Matchmaker{
		queue:    queue,
		sessions: sessions,
		metrics:  metrics,
		queueTTL: queueTTL,
	}
}

func (that *Matchmaker) Enqueue(ctx context.Context, name string) (*entity.QueueEntry, error) {
	return that.queue.Enqueue(ctx, name)
}

func (that *Matchmaker) TryMatch(ctx context.Context, playerID string) (*entity.MatchResult, error) {
	return that.queue.TryMatch(ctx, playerID, that.pair)
}

func (that *Matchmaker) Status(ctx context.Context, playerID string) (entity.QueueStatus, error) {
	return that.queue.Status(ctx, playerID)
}

func (that *Matchmaker) Leave(ctx context.Context, playerID string) error {
	return that.queue.Leave(ctx, playerID)
}

func (that *Matchmaker) Waiting(ctx context.Context) (int, error) {
	return that.queue.Len(ctx)
}

// Sweep drops queue entries older than the queue TTL and reports the queue length.
func (that *Matchmaker) Sweep(ctx context.Context, now time.Time) (int, error) {
	evicted, err := that.queue.Sweep(ctx, now, that.queueTTL)
	if err != nil {
		return 0, err
	}

	that.metrics.Evicted(metrics.EvictedQueueEntry, evicted)

	if waiting, err := that.queue.Len(ctx); err == nil {
		that.metrics.QueueLength(waiting)
	}

	return evicted, nil
}

func (that *Matchmaker) pair(ctx context.Context, first, second *entity.QueueEntry) (string, error) {
	sessionID, err := that.sessions.CreateMatchedSession(ctx, first, second)
	if err != nil {
		return "", err
	}

	that.metrics.Matched()

	return sessionID, nil
}
