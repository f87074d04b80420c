package repository

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-arena/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-arena/internal/entity"
)

type memorySession struct {
	mu       sync.RWMutex
	sessions map[string]*entity.Session
}

// NewMemorySessionRepository keeps sessions in process. Values are cloned on
// the way in and out, like a round trip through Redis.
func NewMemorySessionRepository() SessionRepository {
	return &memorySession{
		sessions: make(map[string]*entity.Session),
	}
}

func (that *memorySession) CreateOrUpdate(_ context.Context, session *entity.Session) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.sessions[session.ID] = session.Clone()

	return nil
}

func (that *memorySession) GetByID(_ context.Context, id string) (*entity.Session, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	session, ok := that.sessions[id]
	if !ok {
		return nil, apperror.ErrSessionNotFound
	}

	return session.Clone(), nil
}

func (that *memorySession) DeleteByID(_ context.Context, id string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.sessions[id]; !ok {
		return apperror.ErrSessionNotFound
	}

	delete(that.sessions, id)

	return nil
}

func (that *memorySession) List(_ context.Context) ([]*entity.Session, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	sessions := make([]*entity.Session, 0, len(that.sessions))
	for _, session := range that.sessions {
		sessions = append(sessions, session.Clone())
	}

	return sessions, nil
}

type storedMatch struct {
	match     entity.Match
	expiresAt time.Time
}

type memoryQueue struct {
	mu      sync.Mutex
	entries []entity.QueueEntry
	matches map[string]storedMatch
}

func NewMemoryQueueRepository() QueueRepository {
	return &memoryQueue{
		matches: make(map[string]storedMatch),
	}
}

func (that *memoryQueue) Push(_ context.Context, entry *entity.QueueEntry) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.entries = append(that.entries, *entry)

	return nil
}

func (that *memoryQueue) List(_ context.Context) ([]*entity.QueueEntry, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	return copyEntries(that.entries), nil
}

func (that *memoryQueue) PopFront(_ context.Context, count int) ([]*entity.QueueEntry, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	count = min(count, len(that.entries))
	popped := copyEntries(that.entries[:count])
	that.entries = slices.Delete(that.entries, 0, count)

	return popped, nil
}

func (that *memoryQueue) Remove(_ context.Context, playerID string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.entries = slices.DeleteFunc(that.entries, func(entry entity.QueueEntry) bool {
		return entry.PlayerID == playerID
	})

	return nil
}

// SaveMatch also drops matches that expired before this one was made.
func (that *memoryQueue) SaveMatch(_ context.Context, match *entity.Match, ttl time.Duration) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	for id, stored := range that.matches {
		if !stored.expiresAt.IsZero() && stored.expiresAt.Before(match.MatchedAt) {
			delete(that.matches, id)
		}
	}

	stored := storedMatch{match: *match}
	if ttl > 0 {
		stored.expiresAt = match.MatchedAt.Add(ttl)
	}
	that.matches[match.PlayerID] = stored

	return nil
}

func (that *memoryQueue) TakeMatch(_ context.Context, playerID string) (*entity.Match, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	stored, ok := that.matches[playerID]
	if !ok {
		return nil, apperror.ErrMatchNotFound
	}

	delete(that.matches, playerID)
	match := stored.match

	return &match, nil
}

func copyEntries(entries []entity.QueueEntry) []*entity.QueueEntry {
	out := make([]*entity.QueueEntry, 0, len(entries))
	for _, entry := range entries {
		out = append(out, &entry)
	}

	return out
}
