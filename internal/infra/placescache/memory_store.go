package placescache

import (
	"context"
	"sync"
	"time"

	"github.com/medtrack/medtrack-service/internal/domain/pharmacy"
)

type memoryEntry struct {
	places    []pharmacy.Place
	expiresAt time.Time
}

// MemoryStore caches places-query results in process for tests/dev.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryStore constructs a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]pharmacy.Place, bool, error) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !entry.expiresAt.IsZero() && s.now().After(entry.expiresAt) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return nil, false, nil
	}
	return append([]pharmacy.Place(nil), entry.places...), true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, places []pharmacy.Place, ttl time.Duration) error {
	entry := memoryEntry{places: append([]pharmacy.Place(nil), places...)}
	if ttl > 0 {
		entry.expiresAt = s.now().Add(ttl)
	}
	s.mu.Lock()
	s.entries[key] = entry
	s.mu.Unlock()
	return nil
}

var _ pharmacy.Cache = (*MemoryStore)(nil)
