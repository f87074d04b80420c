package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/tictactoe-arena/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-arena/internal/entity"
)

const (
	queueKey         = "matchmaking:queue"
	queueEntryPrefix = "matchmaking:entry:"
	queueMatchPrefix = "matchmaking:match:"
)

// QueueRepository keeps matchmaking entries in arrival order, plus the
// matches that have not been picked up yet.
type QueueRepository interface {
	Push(ctx context.Context, entry *entity.QueueEntry) error
	List(ctx context.Context) ([]*entity.QueueEntry, error)
	PopFront(ctx context.Context, count int) ([]*entity.QueueEntry, error)
	Remove(ctx context.Context, playerID string) error

	SaveMatch(ctx context.Context, match *entity.Match, ttl time.Duration) error
	TakeMatch(ctx context.Context, playerID string) (*entity.Match, error)
}

type dbQueue struct {
	client *redis.Client
}

func NewQueueRepository(client *redis.Client) QueueRepository {
	return &dbQueue{
		client: client,
	}
}

func queueEntryKey(playerID string) string {
	return queueEntryPrefix + playerID
}

func queueMatchKey(playerID string) string {
	return queueMatchPrefix + playerID
}

func (that *dbQueue) Push(ctx context.Context, entry *entity.QueueEntry) error {
	entryJSON, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("could not marshal queue entry: %w", err)
	}

	_, err = that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, queueEntryKey(entry.PlayerID), entryJSON, 0)
		pipe.RPush(ctx, queueKey, entry.PlayerID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to push queue entry: %w", err)
	}

	return nil
}

func (that *dbQueue) List(ctx context.Context) ([]*entity.QueueEntry, error) {
	ids, err := that.client.LRange(ctx, queueKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list queue: %w", err)
	}

	return that.entries(ctx, ids)
}

func (that *dbQueue) PopFront(ctx context.Context, count int) ([]*entity.QueueEntry, error) {
	ids, err := that.client.LPopCount(ctx, queueKey, count).Result()
	if errors.Is(err, redis.Nil) {
		return []*entity.QueueEntry{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to pop queue: %w", err)
	}

	entries, err := that.entries(ctx, ids)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, queueEntryKey(id))
	}

	if err = that.client.Del(ctx, keys...).Err(); err != nil {
		return nil, fmt.Errorf("failed to delete popped entries: %w", err)
	}

	return entries, nil
}

func (that *dbQueue) Remove(ctx context.Context, playerID string) error {
	_, err := that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LRem(ctx, queueKey, 0, playerID)
		pipe.Del(ctx, queueEntryKey(playerID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to remove queue entry: %w", err)
	}

	return nil
}

func (that *dbQueue) SaveMatch(ctx context.Context, match *entity.Match, ttl time.Duration) error {
	matchJSON, err := json.Marshal(match)
	if err != nil {
		return fmt.Errorf("could not marshal match: %w", err)
	}

	if err = that.client.Set(ctx, queueMatchKey(match.PlayerID), matchJSON, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set match: %w", err)
	}

	return nil
}

func (that *dbQueue) TakeMatch(ctx context.Context, playerID string) (*entity.Match, error) {
	response, err := that.client.GetDel(ctx, queueMatchKey(playerID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, apperror.ErrMatchNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to take match: %w", err)
	}

	var match entity.Match
	if err = json.Unmarshal([]byte(response), &match); err != nil {
		return nil, fmt.Errorf("failed to unmarshal match: %w", err)
	}

	return &match, nil
}

func (that *dbQueue) entries(ctx context.Context, ids []string) ([]*entity.QueueEntry, error) {
	if len(ids) == 0 {
		return []*entity.QueueEntry{}, nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, queueEntryKey(id))
	}

	values, err := that.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get queue entries: %w", err)
	}

	entries := make([]*entity.QueueEntry, 0, len(values))
	for _, value := range values {
		raw, ok := value.(string)
		if !ok {
			continue
		}

		var entry entity.QueueEntry
		if err = json.Unmarshal([]byte(raw), &entry); err != nil {
			return nil, fmt.Errorf("failed to unmarshal queue entry: %w", err)
		}
		entries = append(entries, &entry)
	}

	return entries, nil
}
