package schedule

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/absensigeo/absensi-backend-go/internal/domain/schedule"
	"github.com/absensigeo/absensi-backend-go/internal/domain/user"
	"github.com/absensigeo/absensi-backend-go/internal/pkg/jwt"
)

type scheduleServiceImpl struct {
	schedule.ScheduleRepository
}

func NewScheduleService(scheduleRepository schedule.ScheduleRepository) schedule.ScheduleService {
	return &scheduleServiceImpl{ScheduleRepository: scheduleRepository}
}

func manager(ctx context.Context) error {
	claims, err := jwt.FromContext(ctx)
	if err != nil {
		return err
	}
	if !claims.Has(user.PermissionScheduleManage) {
		return schedule.ErrScheduleForbidden
	}
	return nil
}

// ownsEntry reports whether the entry belongs to the caller. Entries are
// matched on the teacher's display name.
func ownsEntry(claims jwt.Claims, entry schedule.TeachingSchedule) bool {
	return strings.EqualFold(strings.TrimSpace(entry.TeacherName), strings.TrimSpace(claims.Name))
}

// Create implements schedule.ScheduleService.
func (s *scheduleServiceImpl) Create(ctx context.Context, req schedule.UpsertScheduleRequest) (schedule.ScheduleResponse, error) {
	if err := manager(ctx); err != nil {
		return schedule.ScheduleResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return schedule.ScheduleResponse{}, err
	}

	created, err := s.ScheduleRepository.Create(ctx, fromRequest(req))
	if err != nil {
		return schedule.ScheduleResponse{}, fmt.Errorf("failed to create teaching schedule: %w", err)
	}
	return toResponse(created), nil
}

// Update implements schedule.ScheduleService.
func (s *scheduleServiceImpl) Update(ctx context.Context, req schedule.UpsertScheduleRequest) (schedule.ScheduleResponse, error) {
	if err := manager(ctx); err != nil {
		return schedule.ScheduleResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return schedule.ScheduleResponse{}, err
	}

	updated, err := s.ScheduleRepository.Update(ctx, fromRequest(req))
	if err != nil {
		return schedule.ScheduleResponse{}, err
	}
	return toResponse(updated), nil
}

// Delete implements schedule.ScheduleService.
func (s *scheduleServiceImpl) Delete(ctx context.Context, id string) error {
	if err := manager(ctx); err != nil {
		return err
	}
	return s.ScheduleRepository.Delete(ctx, id)
}

// Get implements schedule.ScheduleService.
func (s *scheduleServiceImpl) Get(ctx context.Context, id string) (schedule.ScheduleResponse, error) {
	claims, err := jwt.FromContext(ctx)
	if err != nil {
		return schedule.ScheduleResponse{}, err
	}
	if !claims.Has(user.PermissionScheduleView) {
		return schedule.ScheduleResponse{}, schedule.ErrScheduleForbidden
	}

	entry, err := s.GetByID(ctx, id)
	if err != nil {
		return schedule.ScheduleResponse{}, err
	}
	if !claims.Has(user.PermissionScheduleViewAll) && !ownsEntry(claims, entry) {
		// hide other teachers' entries
		return schedule.ScheduleResponse{}, schedule.ErrScheduleNotFound
	}
	return toResponse(entry), nil
}

// List implements schedule.ScheduleService.
func (s *scheduleServiceImpl) List(ctx context.Context, filter schedule.ScheduleFilter) (schedule.ListScheduleResponse, error) {
	claims, err := jwt.FromContext(ctx)
	if err != nil {
		return schedule.ListScheduleResponse{}, err
	}
	if !claims.Has(user.PermissionScheduleView) {
		return schedule.ListScheduleResponse{}, schedule.ErrScheduleForbidden
	}
	if err := filter.Validate(); err != nil {
		return schedule.ListScheduleResponse{}, err
	}
	if !claims.Has(user.PermissionScheduleViewAll) {
		name := claims.Name
		filter.TeacherName = &name
	}

	entries, err := s.ScheduleRepository.List(ctx, filter)
	if err != nil {
		return schedule.ListScheduleResponse{}, fmt.Errorf("failed to list teaching schedules: %w", err)
	}

	resp := schedule.ListScheduleResponse{
		TotalCount: len(entries),
		Schedules:  make([]schedule.ScheduleResponse, 0, len(entries)),
	}
	for _, e := range entries {
		resp.Schedules = append(resp.Schedules, toResponse(e))
	}
	return resp, nil
}

func fromRequest(req schedule.UpsertScheduleRequest) schedule.TeachingSchedule {
	return schedule.TeachingSchedule{
		ID:          req.ID,
		TeacherName: req.TeacherName,
		ClassName:   req.ClassName,
		Day:         schedule.Weekday(req.Day),
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Subject:     req.Subject,
	}
}

func toResponse(e schedule.TeachingSchedule) schedule.ScheduleResponse {
	return schedule.ScheduleResponse{
		ID:          e.ID,
		TeacherName: e.TeacherName,
		ClassName:   e.ClassName,
		Day:         string(e.Day),
		StartTime:   e.StartTime,
		EndTime:     e.EndTime,
		Subject:     e.Subject,
		CreatedAt:   e.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   e.UpdatedAt.Format(time.RFC3339),
	}
}
