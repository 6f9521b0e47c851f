package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/absensigeo/absensi-backend-go/internal/domain/letter"
	"github.com/absensigeo/absensi-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type letterRepositoryImpl struct {
	db *database.DB
}

func NewLetterRepository(db *database.DB) letter.LetterRepository {
	return &letterRepositoryImpl{db: db}
}

func (r *letterRepositoryImpl) Create(ctx context.Context, t letter.LetterTemplate) (letter.LetterTemplate, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO letter_templates (title, file_name, file_path, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	if err := q.QueryRow(ctx, query, t.Title, t.FileName, t.FilePath, t.CreatedBy).Scan(&t.ID, &t.CreatedAt); err != nil {
		return letter.LetterTemplate{}, fmt.Errorf("failed to create letter template: %w", err)
	}
	return t, nil
}

func (r *letterRepositoryImpl) GetByID(ctx context.Context, id string) (letter.LetterTemplate, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT id, title, file_name, file_path, COALESCE(created_by::text, ''), created_at FROM letter_templates WHERE id = $1`
	rows, err := q.Query(ctx, query, id)
	if err != nil {
		return letter.LetterTemplate{}, fmt.Errorf("failed to get letter template: %w", err)
	}
	t, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByPos[letter.LetterTemplate])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return letter.LetterTemplate{}, letter.ErrLetterTemplateNotFound
		}
		return letter.LetterTemplate{}, fmt.Errorf("failed to get letter template: %w", err)
	}
	return t, nil
}

func (r *letterRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM letter_templates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete letter template: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return letter.ErrLetterTemplateNotFound
	}
	return nil
}

func (r *letterRepositoryImpl) List(ctx context.Context) ([]letter.LetterTemplate, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT id, title, file_name, file_path, COALESCE(created_by::text, ''), created_at
		FROM letter_templates
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query letter templates: %w", err)
	}
	templates, err := pgx.CollectRows(rows, pgx.RowToStructByPos[letter.LetterTemplate])
	if err != nil {
		return nil, fmt.Errorf("failed to collect letter templates: %w", err)
	}
	return templates, nil
}
