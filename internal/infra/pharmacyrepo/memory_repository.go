package pharmacyrepo

import (
	"context"
	"sync"

	"github.com/medtrack/medtrack-service/internal/domain/pharmacy"
)

// MemoryRepository provides an in-memory preferred-pharmacy store for
// tests/dev.
type MemoryRepository struct {
	mu        sync.RWMutex
	preferred map[int64]pharmacy.Place
}

// NewMemoryRepository constructs a new in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{preferred: make(map[int64]pharmacy.Place)}
}

// GetPreferred returns the user's preferred pharmacy when one is set.
func (r *MemoryRepository) GetPreferred(_ context.Context, userID int64) (pharmacy.Place, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	place, ok := r.preferred[userID]
	return place, ok, nil
}

// SavePreferred replaces the user's preferred pharmacy snapshot.
func (r *MemoryRepository) SavePreferred(_ context.Context, userID int64, place pharmacy.Place) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.preferred[userID] = place
	return nil
}

var _ pharmacy.Repository = (*MemoryRepository)(nil)
