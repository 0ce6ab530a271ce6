package pharmacyrepo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medtrack/medtrack-service/internal/domain/pharmacy"
)

// PostgresRepository persists the preferred-pharmacy snapshot per user as a
// JSONB document. The snapshot is an external record, not a row we own, so a
// document column keeps it schema-free.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// GetPreferred returns the user's preferred pharmacy when one is set.
func (r *PostgresRepository) GetPreferred(ctx context.Context, userID int64) (pharmacy.Place, bool, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT snapshot
		FROM preferred_pharmacies
		WHERE user_id = $1
		LIMIT 1
	`, userID)
	if err != nil {
		return pharmacy.Place{}, false, err
	}
	defer rows.Close()
	if !rows.Next() {
		return pharmacy.Place{}, false, rows.Err()
	}
	var payload []byte
	if err := rows.Scan(&payload); err != nil {
		return pharmacy.Place{}, false, err
	}
	var place pharmacy.Place
	if err := json.Unmarshal(payload, &place); err != nil {
		return pharmacy.Place{}, false, fmt.Errorf("decode preferred pharmacy: %w", err)
	}
	return place, true, rows.Err()
}

// SavePreferred replaces the user's preferred pharmacy snapshot.
func (r *PostgresRepository) SavePreferred(ctx context.Context, userID int64, place pharmacy.Place) error {
	payload, err := json.Marshal(place)
	if err != nil {
		return fmt.Errorf("encode preferred pharmacy: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO preferred_pharmacies (user_id, snapshot)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET
			snapshot = EXCLUDED.snapshot,
			updated_at = now()
	`, userID, payload)
	return err
}

var _ pharmacy.Repository = (*PostgresRepository)(nil)
