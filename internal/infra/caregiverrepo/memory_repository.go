package caregiverrepo

import (
	"context"
	"sync"

	"github.com/medtrack/medtrack-service/internal/domain/caregiver"
)

// MemoryRepository provides an in-memory caregiver store for tests/dev.
type MemoryRepository struct {
	mu       sync.RWMutex
	contacts map[int64]caregiver.Contact
}

// NewMemoryRepository constructs a new in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{contacts: make(map[int64]caregiver.Contact)}
}

// Get returns the user's caregiver record when one exists.
func (r *MemoryRepository) Get(_ context.Context, userID int64) (caregiver.Contact, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	contact, ok := r.contacts[userID]
	return contact, ok, nil
}

// Upsert create-or-replaces the user's caregiver record.
func (r *MemoryRepository) Upsert(_ context.Context, userID int64, contact caregiver.Contact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contacts[userID] = contact
	return nil
}

var _ caregiver.Repository = (*MemoryRepository)(nil)
