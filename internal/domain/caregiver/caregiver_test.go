package caregiver

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/medtrack/medtrack-service/pkg/errors"
)

type stubRepo struct {
	contact *Contact
}

func (s *stubRepo) Get(_ context.Context, _ int64) (Contact, bool, error) {
	if s.contact == nil {
		return Contact{}, false, nil
	}
	return *s.contact, true, nil
}

func (s *stubRepo) Upsert(_ context.Context, _ int64, contact Contact) error {
	s.contact = &contact
	return nil
}

func newServiceUnderTest(repo Repository) Service {
	return NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestSaveTrimsAndUpserts(t *testing.T) {
	repo := &stubRepo{}
	svc := newServiceUnderTest(repo)

	saved, err := svc.Save(context.Background(), 7, Contact{
		Name:  "  Jane Doe ",
		Phone: " 555-0100 ",
		Notes: " allergic to penicillin ",
	})
	require.NoError(t, err)
	require.Equal(t, "Jane Doe", saved.Name)
	require.Equal(t, "555-0100", saved.Phone)
	require.Equal(t, "allergic to penicillin", saved.Notes)

	// Upsert replaces rather than appends.
	_, err = svc.Save(context.Background(), 7, Contact{Name: "John Doe", Phone: "555-0101"})
	require.NoError(t, err)

	got, found, err := svc.Get(context.Background(), 7)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "John Doe", got.Name)
}

func TestSaveRequiresNameAndPhone(t *testing.T) {
	svc := newServiceUnderTest(&stubRepo{})

	_, err := svc.Save(context.Background(), 7, Contact{Name: "Jane"})
	require.True(t, apperrors.IsCode(err, "invalid_input"))

	_, err = svc.Save(context.Background(), 7, Contact{Phone: "555-0100"})
	require.True(t, apperrors.IsCode(err, "invalid_input"))

	_, err = svc.Save(context.Background(), 7, Contact{Name: "  ", Phone: "555-0100"})
	require.True(t, apperrors.IsCode(err, "invalid_input"))
}

func TestGetAbsentContact(t *testing.T) {
	svc := newServiceUnderTest(&stubRepo{})

	_, found, err := svc.Get(context.Background(), 7)
	require.NoError(t, err)
	require.False(t, found)
}
