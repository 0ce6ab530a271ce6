package medication

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/medtrack/medtrack-service/pkg/errors"
)

// Service exposes the adherence and refill workflows.
type Service interface {
	List(ctx context.Context, userID int64) ([]Medication, error)
	DueToday(ctx context.Context, userID int64) ([]Medication, error)
	WeekSchedule(ctx context.Context, userID int64) (WeekSchedule, error)
	Save(ctx context.Context, userID int64, id string, draft Draft) (Medication, error)
	Toggle(ctx context.Context, userID int64, id, dateKey string) (ToggleResult, error)
	Delete(ctx context.Context, userID int64, id string) error
}

// WeekSchedule is the weekly adherence grid for the current week.
type WeekSchedule struct {
	DateKeys []string  `json:"dateKeys"`
	Rows     []WeekRow `json:"rows"`
}

// WeekRow pairs a medication with its taken flags, one per week date key.
type WeekRow struct {
	Medication Medication `json:"medication"`
	Taken      []bool     `json:"taken"`
}

// ToggleResult carries the optimistically updated medication. Persisted is
// false when the follow-up write failed; the returned state is kept either
// way and the failure is only reported.
type ToggleResult struct {
	Medication Medication `json:"medication"`
	Persisted  bool       `json:"persisted"`
}

type service struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

// NewService wires up the medication domain.
func NewService(repo Repository, logger *slog.Logger) Service {
	return &service{
		repo:   repo,
		logger: logger.With("component", "medication.service"),
		now:    time.Now,
	}
}

// List returns the user's medications, seeding the default set the first
// time an empty collection is read.
func (s *service) List(ctx context.Context, userID int64) ([]Medication, error) {
	meds, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap("store_error", "failed to load medications", err)
	}
	if len(meds) > 0 {
		return meds, nil
	}

	for _, m := range DefaultMedications() {
		if err := s.repo.Create(ctx, userID, m); err != nil {
			return nil, apperrors.Wrap("store_error", "failed to seed default medications", err)
		}
	}
	s.logger.Info("seeded default medications", "user_id", userID)

	meds, err = s.repo.List(ctx, userID)
	if err != nil {
		return nil, apperrors.Wrap("store_error", "failed to load medications", err)
	}
	return meds, nil
}

func (s *service) DueToday(ctx context.Context, userID int64) ([]Medication, error) {
	meds, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	return DueToday(meds, s.now()), nil
}

func (s *service) WeekSchedule(ctx context.Context, userID int64) (WeekSchedule, error) {
	meds, err := s.List(ctx, userID)
	if err != nil {
		return WeekSchedule{}, err
	}

	keys := WeekDateKeys(s.now())
	rows := make([]WeekRow, 0, len(meds))
	for _, m := range meds {
		taken := make([]bool, len(keys))
		for i, key := range keys {
			taken[i] = m.TakenOn(key)
		}
		rows = append(rows, WeekRow{Medication: m, Taken: taken})
	}
	return WeekSchedule{DateKeys: keys, Rows: rows}, nil
}

// Save normalizes the draft and either appends a new medication or replaces
// the editable fields of an existing one, preserving its id and taken log.
func (s *service) Save(ctx context.Context, userID int64, id string, draft Draft) (Medication, error) {
	normalized, err := Normalize(draft)
	if err != nil {
		return Medication{}, err
	}

	if id == "" {
		normalized.ID = uuid.NewString()
		normalized.TakenLog = map[string]bool{}
		if err := s.repo.Create(ctx, userID, normalized); err != nil {
			return Medication{}, apperrors.Wrap("store_error", "failed to create medication", err)
		}
		return normalized, nil
	}

	existing, found, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return Medication{}, apperrors.Wrap("store_error", "failed to load medication", err)
	}
	if !found {
		return Medication{}, apperrors.Wrap("not_found", "medication not found", nil)
	}

	normalized.ID = existing.ID
	normalized.TakenLog = existing.TakenLog
	if err := s.repo.Update(ctx, userID, normalized); err != nil {
		return Medication{}, apperrors.Wrap("store_error", "failed to update medication", err)
	}
	return normalized, nil
}

// Toggle computes the new log and inventory from the latest stored state and
// then issues the persistence write. The write is best effort: a failure is
// logged and reported without discarding the computed state.
func (s *service) Toggle(ctx context.Context, userID int64, id, dateKey string) (ToggleResult, error) {
	if dateKey == "" {
		dateKey = DateKey(s.now())
	}

	current, found, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return ToggleResult{}, apperrors.Wrap("store_error", "failed to load medication", err)
	}
	if !found {
		return ToggleResult{}, apperrors.Wrap("not_found", "medication not found", nil)
	}

	updated := Toggle(current, dateKey)
	result := ToggleResult{Medication: updated, Persisted: true}

	if err := s.repo.UpdateAdherence(ctx, userID, id, updated.TakenLog, updated.PillsRemaining); err != nil {
		s.logger.Warn("adherence write failed", "user_id", userID, "medication_id", id, "error", err)
		result.Persisted = false
	}
	return result, nil
}

func (s *service) Delete(ctx context.Context, userID int64, id string) error {
	deleted, err := s.repo.Delete(ctx, userID, id)
	if err != nil {
		return apperrors.Wrap("store_error", "failed to delete medication", err)
	}
	if !deleted {
		return apperrors.Wrap("not_found", "medication not found", nil)
	}
	return nil
}
