package repository

import (
	"context"
	"testing"
	"time"

	"github.com/rocketscienceinc/tictactoe-arena/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-arena/internal/entity"
	"github.com/rocketscienceinc/tictactoe-arena/testing/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func queueRepositories(t *testing.T) map[string]func(t *testing.T) (context.Context, QueueRepository) {
	t.Helper()

	return map[string]func(t *testing.T) (context.Context, QueueRepository){
		"redis": func(t *testing.T) (context.Context, QueueRepository) {
			ctx, st := suite.New(t)
			return ctx, NewQueueRepository(st.Storage)
		},
		"memory": func(_ *testing.T) (context.Context, QueueRepository) {
			return context.Background(), NewMemoryQueueRepository()
		},
	}
}

func pushAll(ctx context.Context, t *testing.T, queueRepo QueueRepository, ids ...string) {
	t.Helper()

	for i, id := range ids {
		require.NoError(t, queueRepo.Push(ctx, &entity.QueueEntry{
			PlayerID:   id,
			Name:       "Player " + id,
			EnqueuedAt: createdAt.Add(time.Duration(i) * time.Second),
		}))
	}
}

func playerIDs(entries []*entity.QueueEntry) []string {
	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		ids = append(ids, entry.PlayerID)
	}

	return ids
}

func TestQueueRepository_PushAndList(t *testing.T) {
	for name, newRepo := range queueRepositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx, queueRepo := newRepo(t)

			// Given: three players pushed in order
			pushAll(ctx, t, queueRepo, "p1", "p2", "p3")

			// When: the queue is listed
			entries, err := queueRepo.List(ctx)

			// Then: arrival order is kept
			require.NoError(t, err)
			assert.Equal(t, []string{"p1", "p2", "p3"}, playerIDs(entries))
			assert.Equal(t, "Player p2", entries[1].Name)
			assert.True(t, createdAt.Add(time.Second).Equal(entries[1].EnqueuedAt))
		})
	}
}

func TestQueueRepository_PopFront(t *testing.T) {
	for name, newRepo := range queueRepositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx, queueRepo := newRepo(t)

			// Given: three queued players
			pushAll(ctx, t, queueRepo, "p1", "p2", "p3")

			// When: the head pair is popped
			popped, err := queueRepo.PopFront(ctx, 2)
			require.NoError(t, err)

			// Then: the two oldest leave and the third stays
			assert.Equal(t, []string{"p1", "p2"}, playerIDs(popped))
			rest, err := queueRepo.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"p3"}, playerIDs(rest))

			// When: more entries are popped than remain
			popped, err = queueRepo.PopFront(ctx, 2)
			require.NoError(t, err)
			assert.Equal(t, []string{"p3"}, playerIDs(popped))

			// Then: an empty queue pops nothing
			popped, err = queueRepo.PopFront(ctx, 2)
			require.NoError(t, err)
			assert.Empty(t, popped)
		})
	}
}

func TestQueueRepository_Remove(t *testing.T) {
	for name, newRepo := range queueRepositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx, queueRepo := newRepo(t)

			// Given: three queued players
			pushAll(ctx, t, queueRepo, "p1", "p2", "p3")

			// When: the middle one is removed, twice
			require.NoError(t, queueRepo.Remove(ctx, "p2"))
			require.NoError(t, queueRepo.Remove(ctx, "p2"))

			// Then: order of the others is kept
			entries, err := queueRepo.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"p1", "p3"}, playerIDs(entries))
		})
	}
}

func TestQueueRepository_Matches(t *testing.T) {
	for name, newRepo := range queueRepositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx, queueRepo := newRepo(t)

			// Given: a saved match
			match := &entity.Match{
				PlayerID:     "p2",
				SessionID:    "s1",
				OpponentName: "Alice",
				Symbol:       entity.PlayerO,
				MatchedAt:    createdAt,
			}
			require.NoError(t, queueRepo.SaveMatch(ctx, match, time.Minute))

			// When: the match is taken twice
			taken, err := queueRepo.TakeMatch(ctx, "p2")
			require.NoError(t, err)
			_, err = queueRepo.TakeMatch(ctx, "p2")

			// Then: it is delivered once
			assert.Equal(t, "s1", taken.SessionID)
			assert.Equal(t, "Alice", taken.OpponentName)
			assert.Equal(t, entity.PlayerO, taken.Symbol)
			assert.ErrorIs(t, err, apperror.ErrMatchNotFound)
		})
	}
}

func TestQueueRepository_MatchExpires(t *testing.T) {
	ctx, st := suite.New(t)
	if st.Mini == nil {
		t.Skip("needs the in-process redis clock")
	}
	queueRepo := NewQueueRepository(st.Storage)

	// Given: a match saved with a one minute ttl
	require.NoError(t, queueRepo.SaveMatch(ctx, &entity.Match{PlayerID: "p2", SessionID: "s1"}, time.Minute))

	// When: two minutes pass
	st.Mini.FastForward(2 * time.Minute)

	// Then: the match is gone
	_, err := queueRepo.TakeMatch(ctx, "p2")
	assert.ErrorIs(t, err, apperror.ErrMatchNotFound)
}

func TestMemoryQueue_SaveMatchDropsExpired(t *testing.T) {
	ctx := context.Background()
	queueRepo := NewMemoryQueueRepository()

	// Given: an old match with a short ttl
	require.NoError(t, queueRepo.SaveMatch(ctx, &entity.Match{PlayerID: "old", MatchedAt: createdAt}, time.Minute))

	// When: a newer match is saved after the old one expired
	require.NoError(t, queueRepo.SaveMatch(ctx, &entity.Match{PlayerID: "new", MatchedAt: createdAt.Add(time.Hour)}, time.Minute))

	// Then: only the newer match remains
	_, err := queueRepo.TakeMatch(ctx, "old")
	require.ErrorIs(t, err, apperror.ErrMatchNotFound)
	_, err = queueRepo.TakeMatch(ctx, "new")
	require.NoError(t, err)
}
