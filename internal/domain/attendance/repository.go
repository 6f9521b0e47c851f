package attendance

import (
	"context"
	"time"
)

// AttendanceRepository defines data access methods for attendance records.
type AttendanceRepository interface {
	// LockUserDay serializes writers for one user and day until the
	// surrounding transaction ends.
	LockUserDay(ctx context.Context, userID string, day time.Time) error

	// KindsOnDay returns the kinds already recorded by a user on a day
	KindsOnDay(ctx context.Context, userID string, day time.Time) ([]Kind, error)

	Create(ctx context.Context, record Attendance) (Attendance, error)
	GetByID(ctx context.Context, id string) (Attendance, error)
	UpdatePhoto(ctx context.Context, id string, photoPath string) error

	// List retrieves records with filters and pagination
	List(ctx context.Context, filter AttendanceFilter) ([]Attendance, int64, error)

	// ListDays pages a user's history by calendar day, newest day first. It
	// returns every record on the selected days and the number of distinct days.
	ListDays(ctx context.Context, userID string, filter MyAttendanceFilter) ([]Attendance, int64, error)

	// ListBetween returns every record in the date range for export
	ListBetween(ctx context.Context, start, end time.Time) ([]Attendance, error)

	// CountByStatus counts the day's records per status
	CountByStatus(ctx context.Context, day time.Time) (map[Status]int, error)

	// ListAbsentees returns attendance-taking users with no record on day
	ListAbsentees(ctx context.Context, day time.Time, roles []string) ([]Absentee, error)
}
