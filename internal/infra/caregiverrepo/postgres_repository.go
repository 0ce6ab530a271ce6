package caregiverrepo

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medtrack/medtrack-service/internal/domain/caregiver"
)

// PostgresRepository persists the singleton caregiver record per user.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Get returns the user's caregiver record when one exists.
func (r *PostgresRepository) Get(ctx context.Context, userID int64) (caregiver.Contact, bool, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT name, relationship, phone, email, notes
		FROM caregivers
		WHERE user_id = $1
		LIMIT 1
	`, userID)
	if err != nil {
		return caregiver.Contact{}, false, err
	}
	defer rows.Close()
	if !rows.Next() {
		return caregiver.Contact{}, false, rows.Err()
	}
	var contact caregiver.Contact
	if err := rows.Scan(&contact.Name, &contact.Relationship, &contact.Phone, &contact.Email, &contact.Notes); err != nil {
		return caregiver.Contact{}, false, err
	}
	return contact, true, rows.Err()
}

// Upsert create-or-replaces the user's caregiver record.
func (r *PostgresRepository) Upsert(ctx context.Context, userID int64, contact caregiver.Contact) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO caregivers (user_id, name, relationship, phone, email, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			name = EXCLUDED.name,
			relationship = EXCLUDED.relationship,
			phone = EXCLUDED.phone,
			email = EXCLUDED.email,
			notes = EXCLUDED.notes,
			updated_at = now()
	`, userID, contact.Name, contact.Relationship, contact.Phone, contact.Email, contact.Notes)
	return err
}

var _ caregiver.Repository = (*PostgresRepository)(nil)
