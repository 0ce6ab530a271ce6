package medrepo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medtrack/medtrack-service/internal/domain/medication"
)

// PostgresRepository persists medications in Postgres. Weekday schedules and
// adherence logs are stored as JSONB documents.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// List returns the user's medications ordered by dose time.
func (r *PostgresRepository) List(ctx context.Context, userID int64) ([]medication.Medication, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, dosage, dose_time, frequency, days, taken_log,
		       pills_remaining, pills_per_dose, refill_threshold
		FROM medications
		WHERE user_id = $1
		ORDER BY dose_time ASC, name ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	meds := make([]medication.Medication, 0, 8)
	for rows.Next() {
		med, err := scanMedication(rows)
		if err != nil {
			return nil, err
		}
		meds = append(meds, med)
	}
	return meds, rows.Err()
}

// Get fetches one medication by ID.
func (r *PostgresRepository) Get(ctx context.Context, userID int64, id string) (medication.Medication, bool, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, dosage, dose_time, frequency, days, taken_log,
		       pills_remaining, pills_per_dose, refill_threshold
		FROM medications
		WHERE user_id = $1 AND id = $2
		LIMIT 1
	`, userID, id)
	if err != nil {
		return medication.Medication{}, false, err
	}
	defer rows.Close()
	if !rows.Next() {
		return medication.Medication{}, false, rows.Err()
	}
	med, err := scanMedication(rows)
	if err != nil {
		return medication.Medication{}, false, err
	}
	return med, true, rows.Err()
}

// Create inserts a new medication row.
func (r *PostgresRepository) Create(ctx context.Context, userID int64, med medication.Medication) error {
	days, takenLog, err := encodeDocs(med)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO medications (id, user_id, name, dosage, dose_time, frequency, days, taken_log,
		                         pills_remaining, pills_per_dose, refill_threshold)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, med.ID, userID, med.Name, med.Dosage, med.Time, med.Frequency, days, takenLog,
		med.PillsRemaining, med.PillsPerDose, med.RefillThreshold)
	return err
}

// Update replaces an existing medication row.
func (r *PostgresRepository) Update(ctx context.Context, userID int64, med medication.Medication) error {
	days, takenLog, err := encodeDocs(med)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		UPDATE medications
		SET name = $3, dosage = $4, dose_time = $5, frequency = $6, days = $7, taken_log = $8,
		    pills_remaining = $9, pills_per_dose = $10, refill_threshold = $11, updated_at = now()
		WHERE user_id = $1 AND id = $2
	`, userID, med.ID, med.Name, med.Dosage, med.Time, med.Frequency, days, takenLog,
		med.PillsRemaining, med.PillsPerDose, med.RefillThreshold)
	return err
}

// UpdateAdherence writes only the adherence log and inventory counter.
func (r *PostgresRepository) UpdateAdherence(ctx context.Context, userID int64, id string, takenLog map[string]bool, pillsRemaining int) error {
	payload, err := json.Marshal(takenLog)
	if err != nil {
		return fmt.Errorf("encode taken log: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		UPDATE medications
		SET taken_log = $3, pills_remaining = $4, updated_at = now()
		WHERE user_id = $1 AND id = $2
	`, userID, id, payload, pillsRemaining)
	return err
}

// Delete removes a medication, reporting whether a row was deleted.
func (r *PostgresRepository) Delete(ctx context.Context, userID int64, id string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM medications
		WHERE user_id = $1 AND id = $2
	`, userID, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMedication(row rowScanner) (medication.Medication, error) {
	var (
		med      medication.Medication
		days     []byte
		takenLog []byte
	)
	if err := row.Scan(
		&med.ID, &med.Name, &med.Dosage, &med.Time, &med.Frequency, &days, &takenLog,
		&med.PillsRemaining, &med.PillsPerDose, &med.RefillThreshold,
	); err != nil {
		return medication.Medication{}, err
	}
	if len(days) > 0 {
		if err := json.Unmarshal(days, &med.Days); err != nil {
			return medication.Medication{}, fmt.Errorf("decode days: %w", err)
		}
	}
	med.TakenLog = map[string]bool{}
	if len(takenLog) > 0 {
		if err := json.Unmarshal(takenLog, &med.TakenLog); err != nil {
			return medication.Medication{}, fmt.Errorf("decode taken log: %w", err)
		}
	}
	return med, nil
}

func encodeDocs(med medication.Medication) (days, takenLog []byte, err error) {
	if days, err = json.Marshal(med.Days); err != nil {
		return nil, nil, fmt.Errorf("encode days: %w", err)
	}
	log := med.TakenLog
	if log == nil {
		log = map[string]bool{}
	}
	if takenLog, err = json.Marshal(log); err != nil {
		return nil, nil, fmt.Errorf("encode taken log: %w", err)
	}
	return days, takenLog, nil
}

var _ medication.Repository = (*PostgresRepository)(nil)
