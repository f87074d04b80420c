package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/rocketscienceinc/tictactoe-arena/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-arena/internal/entity"
	"github.com/rocketscienceinc/tictactoe-arena/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errPairFailed = errors.New("pair failed")

type fakeClock struct {
	now time.Time
}

func (that *fakeClock) Now() time.Time {
	return that.now
}

// pairRecorder creates numbered sessions and remembers who was paired.
type pairRecorder struct {
	pairs [][2]string
}

func (that *pairRecorder) pair(_ context.Context, first, second *entity.QueueEntry) (string, error) {
	that.pairs = append(that.pairs, [2]string{first.Name, second.Name})
	return fmt.Sprintf("session-%d", len(that.pairs)), nil
}

func newMatchmaking(t *testing.T) (*MatchmakingService, *fakeClock) {
	t.Helper()

	clock := &fakeClock{now: createdAt}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	return NewMatchmakingService(logger, repository.NewMemoryQueueRepository(), clock, time.Minute), clock
}

func enqueueAll(ctx context.Context, t *testing.T, matchmaking *MatchmakingService, names ...string) map[string]string {
	t.Helper()

	ids := make(map[string]string, len(names))
	for _, name := range names {
		entry, err := matchmaking.Enqueue(ctx, name)
		require.NoError(t, err)
		ids[name] = entry.PlayerID
	}

	return ids
}

func TestMatchmakingService_Enqueue(t *testing.T) {
	ctx := context.Background()

	t.Run("Assigns an id and the enqueue time", func(t *testing.T) {
		// Given: an empty queue
		matchmaking, clock := newMatchmaking(t)

		// When: a player enqueues
		entry, err := matchmaking.Enqueue(ctx, " Alice ")

		// Then: the entry is stored with a trimmed name
		require.NoError(t, err)
		assert.NotEmpty(t, entry.PlayerID)
		assert.Equal(t, "Alice", entry.Name)
		assert.Equal(t, clock.now, entry.EnqueuedAt)
	})

	t.Run("Rejects invalid names", func(t *testing.T) {
		// Given: an empty queue
		matchmaking, _ := newMatchmaking(t)

		// When: a player enqueues with an invalid name
		_, err := matchmaking.Enqueue(ctx, "!")

		// Then: nothing is queued
		require.ErrorIs(t, err, apperror.ErrInvalidName)
		total, err := matchmaking.Len(ctx)
		require.NoError(t, err)
		assert.Zero(t, total)
	})
}

func TestMatchmakingService_TryMatch(t *testing.T) {
	ctx := context.Background()

	t.Run("Two players are paired with X for the earlier arrival", func(t *testing.T) {
		// Given: A and B queued in that order
		matchmaking, _ := newMatchmaking(t)
		recorder := &pairRecorder{}
		ids := enqueueAll(ctx, t, matchmaking, "A1", "B1")

		// When: A polls
		result, err := matchmaking.TryMatch(ctx, ids["A1"], recorder.pair)

		// Then: A is matched as X against B
		require.NoError(t, err)
		assert.True(t, result.Matched)
		assert.Equal(t, "session-1", result.SessionID)
		assert.Equal(t, "B1", result.OpponentName)
		assert.Equal(t, entity.PlayerX, result.Symbol)

		// When: B polls
		result, err = matchmaking.TryMatch(ctx, ids["B1"], recorder.pair)

		// Then: B picks up the same session as O, and no new pair is made
		require.NoError(t, err)
		assert.True(t, result.Matched)
		assert.Equal(t, "session-1", result.SessionID)
		assert.Equal(t, "A1", result.OpponentName)
		assert.Equal(t, entity.PlayerO, result.Symbol)
		assert.Len(t, recorder.pairs, 1)
	})

	t.Run("A lone player is not matched", func(t *testing.T) {
		// Given: one queued player
		matchmaking, _ := newMatchmaking(t)
		ids := enqueueAll(ctx, t, matchmaking, "A1")

		// When: they poll
		result, err := matchmaking.TryMatch(ctx, ids["A1"], (&pairRecorder{}).pair)

		// Then: they keep waiting
		require.NoError(t, err)
		assert.False(t, result.Matched)
	})

	t.Run("Unknown players get ErrNotQueued", func(t *testing.T) {
		matchmaking, _ := newMatchmaking(t)

		_, err := matchmaking.TryMatch(ctx, "nobody", (&pairRecorder{}).pair)

		assert.ErrorIs(t, err, apperror.ErrNotQueued)
	})

	t.Run("The head pair is matched even when a later player polls", func(t *testing.T) {
		// Given: three queued players
		matchmaking, _ := newMatchmaking(t)
		recorder := &pairRecorder{}
		ids := enqueueAll(ctx, t, matchmaking, "A1", "B1", "C1")

		// When: the third player polls
		result, err := matchmaking.TryMatch(ctx, ids["C1"], recorder.pair)

		// Then: the first two are paired and the caller moves to the head
		require.NoError(t, err)
		assert.False(t, result.Matched)
		assert.Equal(t, [][2]string{{"A1", "B1"}}, recorder.pairs)

		status, err := matchmaking.Status(ctx, ids["C1"])
		require.NoError(t, err)
		assert.Equal(t, 1, status.Position)

		first, err := matchmaking.TryMatch(ctx, ids["A1"], recorder.pair)
		require.NoError(t, err)
		assert.True(t, first.Matched)
	})

	t.Run("Pairs come out in arrival order", func(t *testing.T) {
		// Given: six players queued in order
		matchmaking, _ := newMatchmaking(t)
		recorder := &pairRecorder{}
		names := []string{"P1", "P2", "P3", "P4", "P5", "P6"}
		ids := enqueueAll(ctx, t, matchmaking, names...)

		// When: each player polls in order
		for _, name := range names {
			_, err := matchmaking.TryMatch(ctx, ids[name], recorder.pair)
			require.NoError(t, err)
		}

		// Then: (P1,P2), (P3,P4), (P5,P6)
		assert.Equal(t, [][2]string{{"P1", "P2"}, {"P3", "P4"}, {"P5", "P6"}}, recorder.pairs)
	})

	t.Run("Every queued player is eventually paired", func(t *testing.T) {
		rnd := rand.New(rand.NewPCG(3, 4))

		// Given: twenty players queued in order
		matchmaking, _ := newMatchmaking(t)
		recorder := &pairRecorder{}
		names := make([]string, 0, 20)
		for i := range 20 {
			names = append(names, fmt.Sprintf("P%02d", i))
		}
		ids := enqueueAll(ctx, t, matchmaking, names...)

		// When: random unmatched players poll until everyone has a session
		sessions := make(map[string]string, len(names))
		for polls := 0; len(sessions) < len(names); polls++ {
			require.Less(t, polls, 10000, "players starved")

			name := names[rnd.IntN(len(names))]
			if _, done := sessions[name]; done {
				continue
			}

			result, err := matchmaking.TryMatch(ctx, ids[name], recorder.pair)
			require.NoError(t, err)
			if result.Matched {
				sessions[name] = result.SessionID
			}
		}

		// Then: pairs follow arrival order and partners share a session
		require.Len(t, recorder.pairs, 10)
		for i, pair := range recorder.pairs {
			assert.Equal(t, [2]string{names[2*i], names[2*i+1]}, pair)
			assert.Equal(t, sessions[pair[0]], sessions[pair[1]])
		}
	})

	t.Run("A failed session creation keeps both players queued", func(t *testing.T) {
		// Given: two queued players and a failing pair function
		matchmaking, _ := newMatchmaking(t)
		ids := enqueueAll(ctx, t, matchmaking, "A1", "B1")
		failing := func(context.Context, *entity.QueueEntry, *entity.QueueEntry) (string, error) {
			return "", errPairFailed
		}

		// When: A polls
		_, err := matchmaking.TryMatch(ctx, ids["A1"], failing)

		// Then: the error surfaces and the queue is unchanged
		require.ErrorIs(t, err, errPairFailed)
		total, err := matchmaking.Len(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, total)
	})
}

func TestMatchmakingService_Status(t *testing.T) {
	ctx := context.Background()

	// Given: three queued players
	matchmaking, _ := newMatchmaking(t)
	ids := enqueueAll(ctx, t, matchmaking, "A1", "B1", "C1")

	// When: the last one asks for its status
	status, err := matchmaking.Status(ctx, ids["C1"])

	// Then: position is 1-indexed and the wait is 30 seconds per waiting player
	require.NoError(t, err)
	assert.Equal(t, entity.QueueStatus{Position: 3, TotalWaiting: 3, EstimatedWaitSeconds: 90}, status)

	_, err = matchmaking.Status(ctx, "nobody")
	assert.ErrorIs(t, err, apperror.ErrNotQueued)
}

func TestMatchmakingService_Leave(t *testing.T) {
	ctx := context.Background()

	// Given: two queued players
	matchmaking, _ := newMatchmaking(t)
	ids := enqueueAll(ctx, t, matchmaking, "A1", "B1")

	// When: the first leaves, twice
	require.NoError(t, matchmaking.Leave(ctx, ids["A1"]))
	require.NoError(t, matchmaking.Leave(ctx, ids["A1"]))

	// Then: they are no longer queued and the other moves up
	_, err := matchmaking.Status(ctx, ids["A1"])
	require.ErrorIs(t, err, apperror.ErrNotQueued)

	status, err := matchmaking.Status(ctx, ids["B1"])
	require.NoError(t, err)
	assert.Equal(t, 1, status.Position)
}

func TestMatchmakingService_Sweep(t *testing.T) {
	ctx := context.Background()

	// Given: one player queued long ago and one queued recently
	matchmaking, clock := newMatchmaking(t)
	old := enqueueAll(ctx, t, matchmaking, "Old")
	clock.now = clock.now.Add(10 * time.Minute)
	fresh := enqueueAll(ctx, t, matchmaking, "Fresh")

	// When: entries older than five minutes are swept
	evicted, err := matchmaking.Sweep(ctx, clock.now, 5*time.Minute)

	// Then: only the old entry is gone
	require.NoError(t, err)
	assert.Equal(t, 1, evicted)
	_, err = matchmaking.Status(ctx, old["Old"])
	require.ErrorIs(t, err, apperror.ErrNotQueued)
	_, err = matchmaking.Status(ctx, fresh["Fresh"])
	require.NoError(t, err)
}
