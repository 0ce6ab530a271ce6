package medication

import "context"

// Repository abstracts per-user medication persistence. List returns
// medications ordered ascending by dose time.
type Repository interface {
	List(ctx context.Context, userID int64) ([]Medication, error)
	Get(ctx context.Context, userID int64, id string) (Medication, bool, error)
	Create(ctx context.Context, userID int64, med Medication) error
	Update(ctx context.Context, userID int64, med Medication) error
	UpdateAdherence(ctx context.Context, userID int64, id string, takenLog map[string]bool, pillsRemaining int) error
	Delete(ctx context.Context, userID int64, id string) (bool, error)
}
