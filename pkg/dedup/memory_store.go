package dedup

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// MemoryStore scopes cursors to the current process, which is exactly the
// lifetime of one operator console tab. Cursors expire with inactivity;
// duplicate notifications across tabs are acceptable, duplicates within one
// tab are not.
type MemoryStore struct {
	cache *cache.Cache
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cache: cache.New(12*time.Hour, 30*time.Minute),
	}
}

func (s *MemoryStore) Last(ctx context.Context, sessionId uuid.UUID, viewer string) (int64, error) {
	if x, found := s.cache.Get(cursorKey(sessionId, viewer)); found {
		return x.(int64), nil
	}
	return 0, nil
}

func (s *MemoryStore) Advance(ctx context.Context, sessionId uuid.UUID, viewer string, seq int64) error {
	key := cursorKey(sessionId, viewer)
	if x, found := s.cache.Get(key); found && x.(int64) >= seq {
		return nil
	}
	s.cache.Set(key, seq, cache.DefaultExpiration)
	return nil
}
