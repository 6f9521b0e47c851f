package schedule

import "context"

type ScheduleRepository interface {
	Create(ctx context.Context, entry TeachingSchedule) (TeachingSchedule, error)
	GetByID(ctx context.Context, id string) (TeachingSchedule, error)
	Update(ctx context.Context, entry TeachingSchedule) (TeachingSchedule, error)
	Delete(ctx context.Context, id string) error

	// List returns entries ordered by weekday then start time
	List(ctx context.Context, filter ScheduleFilter) ([]TeachingSchedule, error)
}
