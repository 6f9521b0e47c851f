package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/absensigeo/absensi-backend-go/internal/domain/evidence"
	"github.com/absensigeo/absensi-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const evidenceColumns = `id, user_id, work_date, file_name, file_path, topic, description, created_at, updated_at`

type evidenceRepositoryImpl struct {
	db *database.DB
}

func NewEvidenceRepository(db *database.DB) evidence.EvidenceRepository {
	return &evidenceRepositoryImpl{db: db}
}

func scanEvidence(row pgx.Row) (evidence.TeachingEvidence, error) {
	var e evidence.TeachingEvidence
	err := row.Scan(
		&e.ID, &e.UserID, &e.WorkDate, &e.FileName, &e.FilePath,
		&e.Topic, &e.Description, &e.CreatedAt, &e.UpdatedAt,
	)
	return e, err
}

func (r *evidenceRepositoryImpl) LockUserDay(ctx context.Context, userID string, day time.Time) error {
	q := GetQuerier(ctx, r.db)

	_, err := q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, "evidence|"+userID+"|"+dateParam(day))
	if err != nil {
		return fmt.Errorf("failed to lock evidence day: %w", err)
	}
	return nil
}

func (r *evidenceRepositoryImpl) GetByUserDay(ctx context.Context, userID string, day time.Time) (evidence.TeachingEvidence, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + evidenceColumns + ` FROM teaching_evidence WHERE user_id = $1 AND work_date = $2`
	e, err := scanEvidence(q.QueryRow(ctx, query, userID, dateParam(day)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return evidence.TeachingEvidence{}, evidence.ErrEvidenceNotFound
		}
		return evidence.TeachingEvidence{}, fmt.Errorf("failed to get teaching evidence: %w", err)
	}
	return e, nil
}

func (r *evidenceRepositoryImpl) Upsert(ctx context.Context, e evidence.TeachingEvidence) (evidence.TeachingEvidence, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO teaching_evidence (user_id, work_date, file_name, file_path, topic, description)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, work_date) DO UPDATE
		SET file_name = EXCLUDED.file_name,
			file_path = EXCLUDED.file_path,
			topic = EXCLUDED.topic,
			description = EXCLUDED.description,
			updated_at = NOW()
		RETURNING ` + evidenceColumns

	saved, err := scanEvidence(q.QueryRow(ctx, query,
		e.UserID, dateParam(e.WorkDate), e.FileName, e.FilePath, e.Topic, e.Description,
	))
	if err != nil {
		return evidence.TeachingEvidence{}, fmt.Errorf("failed to save teaching evidence: %w", err)
	}
	return saved, nil
}

func (r *evidenceRepositoryImpl) ListForUser(ctx context.Context, userID string, from, to time.Time) ([]evidence.TeachingEvidence, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + evidenceColumns + `
		FROM teaching_evidence
		WHERE user_id = $1 AND work_date BETWEEN $2 AND $3
		ORDER BY work_date DESC`

	rows, err := q.Query(ctx, query, userID, dateParam(from), dateParam(to))
	if err != nil {
		return nil, fmt.Errorf("failed to query teaching evidence: %w", err)
	}
	defer rows.Close()

	var list []evidence.TeachingEvidence
	for rows.Next() {
		e, err := scanEvidence(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan teaching evidence: %w", err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}
