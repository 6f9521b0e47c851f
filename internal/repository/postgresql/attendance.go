package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/absensigeo/absensi-backend-go/internal/domain/attendance"
	"github.com/absensigeo/absensi-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

const attendanceColumns = `
	a.id, a.user_id, a.kind, a.status, a.work_date, a.recorded_at, a.reason,
	a.latitude, a.longitude, a.photo_path, a.document_path,
	a.created_at, a.updated_at,
	u.name, u.nip, u.role`

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

// dateParam formats a calendar day for a DATE column without timezone conversion.
func dateParam(t time.Time) string {
	return t.Format("2006-01-02")
}

func scanAttendance(row pgx.Row) (attendance.Attendance, error) {
	var att attendance.Attendance
	err := row.Scan(
		&att.ID, &att.UserID, &att.Kind, &att.Status, &att.WorkDate, &att.RecordedAt, &att.Reason,
		&att.Latitude, &att.Longitude, &att.PhotoPath, &att.DocumentPath,
		&att.CreatedAt, &att.UpdatedAt,
		&att.UserName, &att.UserNIP, &att.UserRole,
	)
	return att, err
}

func collectAttendances(rows pgx.Rows) ([]attendance.Attendance, error) {
	defer rows.Close()

	var records []attendance.Attendance
	for rows.Next() {
		att, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		records = append(records, att)
	}
	return records, rows.Err()
}

// LockUserDay implements attendance.AttendanceRepository.
func (a *attendanceRepository) LockUserDay(ctx context.Context, userID string, day time.Time) error {
	q := GetQuerier(ctx, a.db)

	_, err := q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, userID+"|"+dateParam(day))
	if err != nil {
		return fmt.Errorf("failed to lock attendance day: %w", err)
	}
	return nil
}

// KindsOnDay implements attendance.AttendanceRepository.
func (a *attendanceRepository) KindsOnDay(ctx context.Context, userID string, day time.Time) ([]attendance.Kind, error) {
	q := GetQuerier(ctx, a.db)

	rows, err := q.Query(ctx, `SELECT kind FROM attendances WHERE user_id = $1 AND work_date = $2`, userID, dateParam(day))
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance kinds: %w", err)
	}
	kinds, err := pgx.CollectRows(rows, pgx.RowTo[attendance.Kind])
	if err != nil {
		return nil, fmt.Errorf("failed to collect attendance kinds: %w", err)
	}
	return kinds, nil
}

// Create implements attendance.AttendanceRepository.
func (a *attendanceRepository) Create(ctx context.Context, record attendance.Attendance) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO attendances (
			user_id, kind, status, work_date, recorded_at, reason,
			latitude, longitude, photo_path, document_path
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
		) RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		record.UserID,
		record.Kind,
		record.Status,
		dateParam(record.WorkDate),
		record.RecordedAt,
		record.Reason,
		record.Latitude,
		record.Longitude,
		record.PhotoPath,
		record.DocumentPath,
	).Scan(&record.ID, &record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return attendance.Attendance{}, attendance.ErrDuplicateRecord
		}
		return attendance.Attendance{}, fmt.Errorf("failed to create attendance: %w", err)
	}

	return record, nil
}

// GetByID implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendances a
		JOIN users u ON u.id = a.user_id
		WHERE a.id = $1`

	att, err := scanAttendance(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get attendance: %w", err)
	}
	return att, nil
}

// UpdatePhoto implements attendance.AttendanceRepository.
func (a *attendanceRepository) UpdatePhoto(ctx context.Context, id string, photoPath string) error {
	q := GetQuerier(ctx, a.db)

	tag, err := q.Exec(ctx, `UPDATE attendances SET photo_path = $1, updated_at = NOW() WHERE id = $2`, photoPath, id)
	if err != nil {
		return fmt.Errorf("failed to update attendance photo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrAttendanceNotFound
	}
	return nil
}

// List implements attendance.AttendanceRepository.
func (a *attendanceRepository) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, int64, error) {
	q := GetQuerier(ctx, a.db)

	// Build WHERE clause
	baseWhere := "1=1"
	args := []interface{}{}
	argIdx := 1

	if filter.UserID != nil && *filter.UserID != "" {
		baseWhere += fmt.Sprintf(" AND a.user_id = $%d", argIdx)
		args = append(args, *filter.UserID)
		argIdx++
	}
	if filter.Kind != nil && *filter.Kind != "" {
		baseWhere += fmt.Sprintf(" AND a.kind = $%d", argIdx)
		args = append(args, *filter.Kind)
		argIdx++
	}
	if filter.Status != nil && *filter.Status != "" {
		baseWhere += fmt.Sprintf(" AND a.status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}

	// Date range filters
	if filter.StartDate != nil && *filter.StartDate != "" {
		baseWhere += fmt.Sprintf(" AND a.work_date >= $%d", argIdx)
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		baseWhere += fmt.Sprintf(" AND a.work_date <= $%d", argIdx)
		args = append(args, *filter.EndDate)
		argIdx++
	}

	countQuery := `SELECT COUNT(*) FROM attendances a WHERE ` + baseWhere
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendances: %w", err)
	}

	sortOrder := "DESC"
	if strings.ToLower(filter.SortOrder) == "asc" {
		sortOrder = "ASC"
	}

	selectQuery := fmt.Sprintf(`
		SELECT %s
		FROM attendances a
		JOIN users u ON u.id = a.user_id
		WHERE %s
		ORDER BY a.recorded_at %s
		LIMIT $%d OFFSET $%d
	`, attendanceColumns, baseWhere, sortOrder, argIdx, argIdx+1)

	limit := filter.Limit
	if limit == 0 {
		limit = 20
	}
	page := filter.Page
	if page == 0 {
		page = 1
	}
	args = append(args, limit, (page-1)*limit)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query attendances: %w", err)
	}
	records, err := collectAttendances(rows)
	if err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

// ListDays implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListDays(ctx context.Context, userID string, filter attendance.MyAttendanceFilter) ([]attendance.Attendance, int64, error) {
	q := GetQuerier(ctx, a.db)

	baseWhere := "a.user_id = $1"
	args := []interface{}{userID}
	argIdx := 2

	if filter.StartDate != nil && *filter.StartDate != "" {
		baseWhere += fmt.Sprintf(" AND a.work_date >= $%d", argIdx)
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		baseWhere += fmt.Sprintf(" AND a.work_date <= $%d", argIdx)
		args = append(args, *filter.EndDate)
		argIdx++
	}

	var total int64
	countQuery := `SELECT COUNT(DISTINCT a.work_date) FROM attendances a WHERE ` + baseWhere
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendance days: %w", err)
	}

	selectQuery := fmt.Sprintf(`
		WITH page_days AS (
			SELECT DISTINCT a.work_date
			FROM attendances a
			WHERE %s
			ORDER BY a.work_date DESC
			LIMIT $%d OFFSET $%d
		)
		SELECT %s
		FROM attendances a
		JOIN users u ON u.id = a.user_id
		JOIN page_days d ON d.work_date = a.work_date
		WHERE a.user_id = $1
		ORDER BY a.work_date DESC, a.recorded_at ASC
	`, baseWhere, argIdx, argIdx+1, attendanceColumns)

	limit := filter.Limit
	if limit == 0 {
		limit = 20
	}
	page := filter.Page
	if page == 0 {
		page = 1
	}
	args = append(args, limit, (page-1)*limit)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query attendance days: %w", err)
	}
	records, err := collectAttendances(rows)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// ListBetween implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListBetween(ctx context.Context, start, end time.Time) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendances a
		JOIN users u ON u.id = a.user_id
		WHERE a.work_date BETWEEN $1 AND $2
		ORDER BY a.work_date ASC, u.name ASC, a.recorded_at ASC`

	rows, err := q.Query(ctx, query, dateParam(start), dateParam(end))
	if err != nil {
		return nil, fmt.Errorf("failed to query attendances: %w", err)
	}
	return collectAttendances(rows)
}

// CountByStatus implements attendance.AttendanceRepository. A user who checked
// in and out counts once, with the check-in status.
func (a *attendanceRepository) CountByStatus(ctx context.Context, day time.Time) (map[attendance.Status]int, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT status, COUNT(DISTINCT user_id)
		FROM attendances
		WHERE work_date = $1 AND kind <> 'check_out'
		GROUP BY status
	`
	rows, err := q.Query(ctx, query, dateParam(day))
	if err != nil {
		return nil, fmt.Errorf("failed to count attendance statuses: %w", err)
	}
	defer rows.Close()

	counts := map[attendance.Status]int{}
	for rows.Next() {
		var status attendance.Status
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// ListAbsentees implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListAbsentees(ctx context.Context, day time.Time, roles []string) ([]attendance.Absentee, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT u.id::text, u.name, u.nip, u.role
		FROM users u
		WHERE u.role = ANY($1)
		  AND NOT EXISTS (
			SELECT 1 FROM attendances a
			WHERE a.user_id = u.id AND a.work_date = $2
		  )
		ORDER BY u.name
	`
	rows, err := q.Query(ctx, query, roles, dateParam(day))
	if err != nil {
		return nil, fmt.Errorf("failed to query absentees: %w", err)
	}
	absentees, err := pgx.CollectRows(rows, pgx.RowToStructByPos[attendance.Absentee])
	if err != nil {
		return nil, fmt.Errorf("failed to collect absentees: %w", err)
	}
	return absentees, nil
}
