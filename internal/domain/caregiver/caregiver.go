package caregiver

import (
	"context"
	"log/slog"
	"strings"

	apperrors "github.com/medtrack/medtrack-service/pkg/errors"
)

// Contact is the single caregiver record per user.
type Contact struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	Notes        string `json:"notes"`
}

// Repository persists the singleton caregiver document per user.
type Repository interface {
	Get(ctx context.Context, userID int64) (Contact, bool, error)
	Upsert(ctx context.Context, userID int64, contact Contact) error
}

// Service exposes the caregiver contact workflows.
type Service interface {
	Get(ctx context.Context, userID int64) (Contact, bool, error)
	Save(ctx context.Context, userID int64, contact Contact) (Contact, error)
}

type service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService wires up the caregiver domain.
func NewService(repo Repository, logger *slog.Logger) Service {
	return &service{repo: repo, logger: logger.With("component", "caregiver.service")}
}

func (s *service) Get(ctx context.Context, userID int64) (Contact, bool, error) {
	contact, found, err := s.repo.Get(ctx, userID)
	if err != nil {
		return Contact{}, false, apperrors.Wrap("store_error", "failed to load caregiver", err)
	}
	return contact, found, nil
}

// Save trims the payload and create-or-replaces the user's caregiver record.
// Name and phone are required.
func (s *service) Save(ctx context.Context, userID int64, contact Contact) (Contact, error) {
	trimmed := Contact{
		Name:         strings.TrimSpace(contact.Name),
		Relationship: strings.TrimSpace(contact.Relationship),
		Phone:        strings.TrimSpace(contact.Phone),
		Email:        strings.TrimSpace(contact.Email),
		Notes:        strings.TrimSpace(contact.Notes),
	}
	if trimmed.Name == "" || trimmed.Phone == "" {
		return Contact{}, apperrors.Wrap("invalid_input", "caregiver name and phone are required", nil)
	}

	if err := s.repo.Upsert(ctx, userID, trimmed); err != nil {
		return Contact{}, apperrors.Wrap("store_error", "failed to save caregiver", err)
	}
	return trimmed, nil
}
