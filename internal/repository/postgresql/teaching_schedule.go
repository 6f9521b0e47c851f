package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/absensigeo/absensi-backend-go/internal/domain/schedule"
	"github.com/absensigeo/absensi-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const scheduleColumns = `id, teacher_name, class_name, day, to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'), subject, created_at, updated_at`

type scheduleRepositoryImpl struct {
	db *database.DB
}

func NewScheduleRepository(db *database.DB) schedule.ScheduleRepository {
	return &scheduleRepositoryImpl{db: db}
}

func scanSchedule(row pgx.Row) (schedule.TeachingSchedule, error) {
	var s schedule.TeachingSchedule
	err := row.Scan(
		&s.ID,
		&s.TeacherName,
		&s.ClassName,
		&s.Day,
		&s.StartTime,
		&s.EndTime,
		&s.Subject,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	return s, err
}

func (r *scheduleRepositoryImpl) Create(ctx context.Context, entry schedule.TeachingSchedule) (schedule.TeachingSchedule, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO teaching_schedules (teacher_name, class_name, day, start_time, end_time, subject)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + scheduleColumns

	created, err := scanSchedule(q.QueryRow(ctx, query,
		entry.TeacherName, entry.ClassName, entry.Day, entry.StartTime, entry.EndTime, entry.Subject,
	))
	if err != nil {
		return schedule.TeachingSchedule{}, fmt.Errorf("failed to create teaching schedule: %w", err)
	}
	return created, nil
}

func (r *scheduleRepositoryImpl) GetByID(ctx context.Context, id string) (schedule.TeachingSchedule, error) {
	q := GetQuerier(ctx, r.db)

	s, err := scanSchedule(q.QueryRow(ctx, `SELECT `+scheduleColumns+` FROM teaching_schedules WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return schedule.TeachingSchedule{}, schedule.ErrScheduleNotFound
		}
		return schedule.TeachingSchedule{}, fmt.Errorf("failed to get teaching schedule: %w", err)
	}
	return s, nil
}

func (r *scheduleRepositoryImpl) Update(ctx context.Context, entry schedule.TeachingSchedule) (schedule.TeachingSchedule, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE teaching_schedules
		SET teacher_name = $1, class_name = $2, day = $3, start_time = $4, end_time = $5, subject = $6,
			updated_at = NOW()
		WHERE id = $7
		RETURNING ` + scheduleColumns

	updated, err := scanSchedule(q.QueryRow(ctx, query,
		entry.TeacherName, entry.ClassName, entry.Day, entry.StartTime, entry.EndTime, entry.Subject, entry.ID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return schedule.TeachingSchedule{}, schedule.ErrScheduleNotFound
		}
		return schedule.TeachingSchedule{}, fmt.Errorf("failed to update teaching schedule: %w", err)
	}
	return updated, nil
}

func (r *scheduleRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM teaching_schedules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete teaching schedule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return schedule.ErrScheduleNotFound
	}
	return nil
}

func (r *scheduleRepositoryImpl) List(ctx context.Context, filter schedule.ScheduleFilter) ([]schedule.TeachingSchedule, error) {
	q := GetQuerier(ctx, r.db)

	baseWhere := "1=1"
	args := []interface{}{}
	argIdx := 1

	if filter.TeacherName != nil && *filter.TeacherName != "" {
		baseWhere += fmt.Sprintf(" AND lower(teacher_name) = lower($%d)", argIdx)
		args = append(args, *filter.TeacherName)
		argIdx++
	}
	if filter.Day != nil && *filter.Day != "" {
		baseWhere += fmt.Sprintf(" AND day = $%d", argIdx)
		args = append(args, *filter.Day)
	}

	query := `
		SELECT ` + scheduleColumns + `
		FROM teaching_schedules
		WHERE ` + baseWhere + `
		ORDER BY array_position(ARRAY['monday','tuesday','wednesday','thursday','friday','saturday','sunday'], day),
			start_time, class_name`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query teaching schedules: %w", err)
	}
	defer rows.Close()

	var entries []schedule.TeachingSchedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan teaching schedule: %w", err)
		}
		entries = append(entries, s)
	}
	return entries, rows.Err()
}
