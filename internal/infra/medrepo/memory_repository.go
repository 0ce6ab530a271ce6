package medrepo

import (
	"context"
	"sort"
	"sync"

	"github.com/medtrack/medtrack-service/internal/domain/medication"
)

// MemoryRepository provides an in-memory medication store for tests/dev.
type MemoryRepository struct {
	mu   sync.RWMutex
	meds map[int64]map[string]medication.Medication
}

// NewMemoryRepository constructs a new in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{meds: make(map[int64]map[string]medication.Medication)}
}

// List returns the user's medications ordered by dose time.
func (r *MemoryRepository) List(_ context.Context, userID int64) ([]medication.Medication, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]medication.Medication, 0, len(r.meds[userID]))
	for _, med := range r.meds[userID] {
		out = append(out, cloneMedication(med))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Time != out[j].Time {
			return out[i].Time < out[j].Time
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// Get fetches one medication by ID.
func (r *MemoryRepository) Get(_ context.Context, userID int64, id string) (medication.Medication, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	med, ok := r.meds[userID][id]
	if !ok {
		return medication.Medication{}, false, nil
	}
	return cloneMedication(med), true, nil
}

// Create stores a new medication.
func (r *MemoryRepository) Create(_ context.Context, userID int64, med medication.Medication) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.meds[userID] == nil {
		r.meds[userID] = make(map[string]medication.Medication)
	}
	r.meds[userID][med.ID] = cloneMedication(med)
	return nil
}

// Update replaces an existing medication.
func (r *MemoryRepository) Update(_ context.Context, userID int64, med medication.Medication) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.meds[userID] == nil {
		r.meds[userID] = make(map[string]medication.Medication)
	}
	r.meds[userID][med.ID] = cloneMedication(med)
	return nil
}

// UpdateAdherence writes only the adherence log and inventory counter.
func (r *MemoryRepository) UpdateAdherence(_ context.Context, userID int64, id string, takenLog map[string]bool, pillsRemaining int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	med, ok := r.meds[userID][id]
	if !ok {
		return nil
	}
	med.TakenLog = cloneLog(takenLog)
	med.PillsRemaining = pillsRemaining
	r.meds[userID][id] = med
	return nil
}

// Delete removes a medication, reporting whether it existed.
func (r *MemoryRepository) Delete(_ context.Context, userID int64, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.meds[userID][id]; !ok {
		return false, nil
	}
	delete(r.meds[userID], id)
	return true, nil
}

func cloneMedication(med medication.Medication) medication.Medication {
	out := med
	out.Days = append([]string(nil), med.Days...)
	out.TakenLog = cloneLog(med.TakenLog)
	return out
}

func cloneLog(log map[string]bool) map[string]bool {
	out := make(map[string]bool, len(log))
	for k, v := range log {
		out[k] = v
	}
	return out
}

var _ medication.Repository = (*MemoryRepository)(nil)
