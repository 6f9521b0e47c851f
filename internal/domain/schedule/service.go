package schedule

import "context"

type ScheduleService interface {
	Create(ctx context.Context, req UpsertScheduleRequest) (ScheduleResponse, error)
	Update(ctx context.Context, req UpsertScheduleRequest) (ScheduleResponse, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (ScheduleResponse, error)

	// List shows every entry to schedule.view_all holders and only the
	// caller's own entries to everyone else
	List(ctx context.Context, filter ScheduleFilter) (ListScheduleResponse, error)
}
