package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-arena/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-arena/internal/entity"
	"github.com/rocketscienceinc/tictactoe-arena/internal/repository"
	"github.com/rocketscienceinc/tictactoe-arena/internal/service"
)

func newMatchmaker(t *testing.T) (*Matchmaker, *GameManager, *fakeClock) {
	t.Helper()

	manager, clock := newGameManager(t, repository.NewMemorySessionRepository(), 0)
	queue := service.NewMatchmakingService(discardLogger(), repository.NewMemoryQueueRepository(), clock, time.Minute)

	return NewMatchmaker(queue, manager, newTestMetrics(), 5*time.Minute), manager, clock
}

func TestMatchmaker_TryMatch(t *testing.T) {
	ctx := context.Background()

	t.Run("Pairs two queued players into a playing session", func(t *testing.T) {
		// Given: A and B in the queue
		matchmaker, manager, _ := newMatchmaker(t)
		a, err := matchmaker.Enqueue(ctx, "Alice")
		require.NoError(t, err)
		b, err := matchmaker.Enqueue(ctx, "Bob")
		require.NoError(t, err)

		// When: A polls
		result, err := matchmaker.TryMatch(ctx, a.PlayerID)

		// Then: A plays X against B in a session that is already on
		require.NoError(t, err)
		assert.True(t, result.Matched)
		assert.Equal(t, entity.PlayerX, result.Symbol)
		assert.Equal(t, "Bob", result.OpponentName)

		snapshot, err := manager.Snapshot(ctx, result.SessionID, a.PlayerID)
		require.NoError(t, err)
		assert.Equal(t, entity.StatusPlaying, snapshot.Status)
		assert.True(t, snapshot.You.YourTurn)

		// When: B polls
		other, err := matchmaker.TryMatch(ctx, b.PlayerID)

		// Then: B lands in the same session as O, and can move once A has
		require.NoError(t, err)
		assert.Equal(t, result.SessionID, other.SessionID)
		assert.Equal(t, entity.PlayerO, other.Symbol)

		_, err = manager.Move(ctx, result.SessionID, a.PlayerID, 4)
		require.NoError(t, err)
		_, err = manager.Move(ctx, result.SessionID, b.PlayerID, 0)
		require.NoError(t, err)

		waiting, err := matchmaker.Waiting(ctx)
		require.NoError(t, err)
		assert.Zero(t, waiting)
	})

	t.Run("A lone player keeps waiting", func(t *testing.T) {
		matchmaker, _, _ := newMatchmaker(t)
		a, err := matchmaker.Enqueue(ctx, "Alice")
		require.NoError(t, err)

		result, err := matchmaker.TryMatch(ctx, a.PlayerID)

		require.NoError(t, err)
		assert.False(t, result.Matched)

		status, err := matchmaker.Status(ctx, a.PlayerID)
		require.NoError(t, err)
		assert.Equal(t, entity.QueueStatus{Position: 1, TotalWaiting: 1, EstimatedWaitSeconds: 30}, status)
	})
}

func TestMatchmaker_Leave(t *testing.T) {
	ctx := context.Background()
	matchmaker, _, _ := newMatchmaker(t)
	a, err := matchmaker.Enqueue(ctx, "Alice")
	require.NoError(t, err)

	require.NoError(t, matchmaker.Leave(ctx, a.PlayerID))

	_, err = matchmaker.TryMatch(ctx, a.PlayerID)
	assert.ErrorIs(t, err, apperror.ErrNotQueued)
}

func TestMatchmaker_Sweep(t *testing.T) {
	ctx := context.Background()

	// Given: a player who has waited longer than the queue TTL
	matchmaker, _, clock := newMatchmaker(t)
	stale, err := matchmaker.Enqueue(ctx, "Alice")
	require.NoError(t, err)
	clock.Advance(6 * time.Minute)
	fresh, err := matchmaker.Enqueue(ctx, "Bob")
	require.NoError(t, err)

	// When: the queue is swept
	evicted, err := matchmaker.Sweep(ctx, clock.Now())

	// Then: only the stale entry is dropped
	require.NoError(t, err)
	assert.Equal(t, 1, evicted)

	_, err = matchmaker.Status(ctx, stale.PlayerID)
	require.ErrorIs(t, err, apperror.ErrNotQueued)
	status, err := matchmaker.Status(ctx, fresh.PlayerID)
	require.NoError(t, err)
	assert.Equal(t, 1, status.Position)
}
