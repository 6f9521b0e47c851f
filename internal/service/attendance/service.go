package attendance

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/absensigeo/absensi-backend-go/internal/domain/attendance"
	"github.com/absensigeo/absensi-backend-go/internal/domain/user"
	"github.com/absensigeo/absensi-backend-go/internal/pkg/database"
	"github.com/absensigeo/absensi-backend-go/internal/pkg/event"
	"github.com/absensigeo/absensi-backend-go/internal/pkg/jwt"
	"github.com/absensigeo/absensi-backend-go/internal/pkg/utils"
	"github.com/absensigeo/absensi-backend-go/internal/service/file"
)

type AttendanceServiceImpl struct {
	db database.Transactor
	attendance.AttendanceRepository
	fileService file.FileService
	events      event.Publisher
	report      attendance.ReportWriter
	rules       attendance.Rules
	now         func() time.Time
}

func NewAttendanceService(
	db database.Transactor,
	attendanceRepository attendance.AttendanceRepository,
	fileService file.FileService,
	events event.Publisher,
	report attendance.ReportWriter,
	rules attendance.Rules,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		db:                   db,
		AttendanceRepository: attendanceRepository,
		fileService:          fileService,
		events:               events,
		report:               report,
		rules:                rules,
		now:                  time.Now,
	}
}

// attendanceRoles are the roles expected to record attendance every day.
func attendanceRoles() []string {
	var roles []string
	for _, r := range []user.Role{user.RoleTeacher, user.RoleStaff, user.RoleHead, user.RoleAdmin} {
		if user.HasPermission(r, user.PermissionAttendanceCreate) {
			roles = append(roles, string(r))
		}
	}
	return roles
}

func (a *AttendanceServiceImpl) attendee(ctx context.Context) (jwt.Claims, error) {
	claims, err := jwt.FromContext(ctx)
	if err != nil {
		return jwt.Claims{}, err
	}
	if !claims.Has(user.PermissionAttendanceCreate) {
		return jwt.Claims{}, attendance.ErrAttendanceForbidden
	}
	return claims, nil
}

// record runs decide and inserts the result while holding the user-day lock.
func (a *AttendanceServiceImpl) record(ctx context.Context, rec attendance.Attendance, decide func(attendance.DayState) (attendance.Status, error)) (attendance.Attendance, error) {
	var created attendance.Attendance
	err := a.db.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := a.LockUserDay(txCtx, rec.UserID, rec.WorkDate); err != nil {
			return err
		}
		kinds, err := a.KindsOnDay(txCtx, rec.UserID, rec.WorkDate)
		if err != nil {
			return err
		}
		status, err := decide(attendance.NewDayState(kinds))
		if err != nil {
			return err
		}
		rec.Status = status
		created, err = a.AttendanceRepository.Create(txCtx, rec)
		return err
	})
	return created, err
}

// storePhoto uploads an optional photo. It returns nil when there is none.
func (a *AttendanceServiceImpl) storePhoto(ctx context.Context, userID string, day time.Time, kind attendance.Kind, f io.Reader, filename string) (*string, error) {
	if f == nil {
		return nil, nil
	}
	key, err := a.fileService.UploadAttendancePhoto(ctx, userID, day, string(kind), f, filename)
	if err != nil {
		return nil, err
	}
	return &key, nil
}

func (a *AttendanceServiceImpl) discard(ctx context.Context, key *string) {
	if key == nil {
		return
	}
	if err := a.fileService.DeleteFile(ctx, *key); err != nil {
		slog.Warn("Failed to delete orphaned upload", "key", *key, "error", err)
	}
}

func (a *AttendanceServiceImpl) publish(ctx context.Context, claims jwt.Claims, resp attendance.AttendanceResponse) {
	payload := event.AttendanceRecorded{
		RecordID:   resp.ID,
		UserID:     claims.UserID,
		UserName:   claims.Name,
		NIP:        claims.NIP,
		Kind:       resp.Kind,
		Status:     resp.Status,
		WorkDate:   resp.WorkDate,
		RecordedAt: a.now(),
	}
	if resp.Reason != nil {
		payload.Reason = *resp.Reason
	}
	if resp.DocumentURL != nil {
		payload.DocumentURL = *resp.DocumentURL
	}
	if err := a.events.Publish(ctx, event.TopicAttendanceRecorded, payload); err != nil {
		slog.Error("Failed to publish attendance event", "record_id", resp.ID, "error", err)
	}
}

// CheckIn implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) CheckIn(ctx context.Context, req attendance.CheckInRequest) (attendance.AttendanceResponse, error) {
	claims, err := a.attendee(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	now := a.now()
	day := a.rules.Day(now)

	distance, err := a.rules.CheckFence(utils.Point{Latitude: *req.Latitude, Longitude: *req.Longitude})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	rec := attendance.Attendance{
		UserID:     claims.UserID,
		Kind:       attendance.KindCheckIn,
		WorkDate:   day,
		RecordedAt: now,
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
	}
	if req.Reason != "" {
		rec.Reason = &req.Reason
	}

	var name string
	if req.FileHeader != nil {
		name = req.FileHeader.Filename
	}
	if rec.PhotoPath, err = a.storePhoto(ctx, claims.UserID, day, rec.Kind, req.File, name); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	created, err := a.record(ctx, rec, func(state attendance.DayState) (attendance.Status, error) {
		return a.rules.DecideCheckIn(state, now, req.Reason)
	})
	if err != nil {
		a.discard(ctx, rec.PhotoPath)
		return attendance.AttendanceResponse{}, err
	}

	resp := a.toResponse(ctx, created)
	resp.Distance = &distance
	a.publish(ctx, claims, resp)
	return resp, nil
}

// CheckOut implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) CheckOut(ctx context.Context, req attendance.CheckOutRequest) (attendance.AttendanceResponse, error) {
	claims, err := a.attendee(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	now := a.now()
	day := a.rules.Day(now)

	distance, err := a.rules.CheckFence(utils.Point{Latitude: *req.Latitude, Longitude: *req.Longitude})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if !a.rules.CheckOutOpen(now) {
		return attendance.AttendanceResponse{}, attendance.ErrCheckOutNotOpen
	}

	rec := attendance.Attendance{
		UserID:     claims.UserID,
		Kind:       attendance.KindCheckOut,
		WorkDate:   day,
		RecordedAt: now,
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
	}

	var name string
	if req.FileHeader != nil {
		name = req.FileHeader.Filename
	}
	if rec.PhotoPath, err = a.storePhoto(ctx, claims.UserID, day, rec.Kind, req.File, name); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	created, err := a.record(ctx, rec, func(state attendance.DayState) (attendance.Status, error) {
		return a.rules.DecideCheckOut(state, now)
	})
	if err != nil {
		a.discard(ctx, rec.PhotoPath)
		return attendance.AttendanceResponse{}, err
	}

	resp := a.toResponse(ctx, created)
	resp.Distance = &distance
	a.publish(ctx, claims, resp)
	return resp, nil
}

// RequestLeave implements attendance.AttendanceService. Leave is not
// geofenced.
func (a *AttendanceServiceImpl) RequestLeave(ctx context.Context, req attendance.LeaveRequest) (attendance.AttendanceResponse, error) {
	claims, err := a.attendee(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	now := a.now()
	rec := attendance.Attendance{
		UserID:     claims.UserID,
		Kind:       attendance.Kind(req.Kind),
		WorkDate:   a.rules.Day(now),
		RecordedAt: now,
		Reason:     &req.Description,
	}

	if req.File != nil && req.FileHeader != nil {
		key, err := a.fileService.UploadLeaveDocument(ctx, claims.UserID, req.File, req.FileHeader.Filename)
		if err != nil {
			return attendance.AttendanceResponse{}, err
		}
		rec.DocumentPath = &key
	}

	created, err := a.record(ctx, rec, a.rules.DecideLeave)
	if err != nil {
		a.discard(ctx, rec.DocumentPath)
		return attendance.AttendanceResponse{}, err
	}

	resp := a.toResponse(ctx, created)
	a.publish(ctx, claims, resp)
	return resp, nil
}

// AttachPhoto implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) AttachPhoto(ctx context.Context, req attendance.AttachPhotoRequest) (attendance.AttendanceResponse, error) {
	claims, err := a.attendee(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	rec, err := a.AttendanceRepository.GetByID(ctx, req.ID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if rec.UserID != claims.UserID {
		return attendance.AttendanceResponse{}, attendance.ErrUnauthorized
	}
	today := a.rules.Day(a.now())
	if rec.Kind.IsLeave() || rec.WorkDate.Format("2006-01-02") != today.Format("2006-01-02") {
		return attendance.AttendanceResponse{}, attendance.ErrPhotoNotAllowed
	}

	key, err := a.storePhoto(ctx, claims.UserID, today, rec.Kind, req.File, req.FileHeader.Filename)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if err := a.UpdatePhoto(ctx, rec.ID, *key); err != nil {
		a.discard(ctx, key)
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to attach photo: %w", err)
	}

	if rec.PhotoPath != nil && *rec.PhotoPath != *key {
		a.discard(ctx, rec.PhotoPath)
	}
	rec.PhotoPath = key
	return a.toResponse(ctx, rec), nil
}

// Today implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) Today(ctx context.Context) (attendance.TodayResponse, error) {
	claims, err := jwt.FromContext(ctx)
	if err != nil {
		return attendance.TodayResponse{}, err
	}

	now := a.now()
	today := a.rules.Day(now).Format("2006-01-02")

	records, _, err := a.List(ctx, attendance.AttendanceFilter{
		UserID:    &claims.UserID,
		StartDate: &today,
		EndDate:   &today,
		Page:      1,
		Limit:     10,
		SortOrder: "asc",
	})
	if err != nil {
		return attendance.TodayResponse{}, fmt.Errorf("failed to get today's attendance: %w", err)
	}

	kinds := make([]attendance.Kind, 0, len(records))
	for _, r := range records {
		kinds = append(kinds, r.Kind)
	}

	resp := a.rules.Today(attendance.NewDayState(kinds), now)
	if !claims.Has(user.PermissionAttendanceCreate) {
		resp.CanCheckIn, resp.CanCheckOut, resp.CanRequestLeave = false, false, false
		resp.Message = attendance.ErrAttendanceForbidden.Error()
	}
	resp.Records = a.toResponses(ctx, records)
	return resp, nil
}

// GetMyAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetMyAttendance(ctx context.Context, filter attendance.MyAttendanceFilter) (attendance.MyAttendanceResponse, error) {
	claims, err := jwt.FromContext(ctx)
	if err != nil {
		return attendance.MyAttendanceResponse{}, err
	}
	if err := filter.Validate(); err != nil {
		return attendance.MyAttendanceResponse{}, err
	}

	records, total, err := a.ListDays(ctx, claims.UserID, filter)
	if err != nil {
		return attendance.MyAttendanceResponse{}, fmt.Errorf("failed to get attendance history: %w", err)
	}

	days := []attendance.DayGroup{}
	for _, resp := range a.toResponses(ctx, records) {
		if n := len(days); n > 0 && days[n-1].Date == resp.WorkDate {
			days[n-1].Records = append(days[n-1].Records, resp)
			continue
		}
		days = append(days, attendance.DayGroup{Date: resp.WorkDate, Records: []attendance.AttendanceResponse{resp}})
	}

	totalPages, showing := paging(total, filter.Page, filter.Limit)
	return attendance.MyAttendanceResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
		Showing:    showing,
		Days:       days,
	}, nil
}

// ListAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ListAttendance(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	claims, err := jwt.FromContext(ctx)
	if err != nil {
		return attendance.ListAttendanceResponse{}, err
	}
	if !claims.Has(user.PermissionAttendanceViewAll) {
		return attendance.ListAttendanceResponse{}, attendance.ErrUnauthorized
	}
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	records, total, err := a.List(ctx, filter)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to list attendance: %w", err)
	}

	totalPages, showing := paging(total, filter.Page, filter.Limit)
	return attendance.ListAttendanceResponse{
		TotalCount:  total,
		Page:        filter.Page,
		Limit:       filter.Limit,
		TotalPages:  totalPages,
		Showing:     showing,
		Attendances: a.toResponses(ctx, records),
	}, nil
}

// GetAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetAttendance(ctx context.Context, id string) (attendance.AttendanceResponse, error) {
	claims, err := jwt.FromContext(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	rec, err := a.AttendanceRepository.GetByID(ctx, id)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if rec.UserID != claims.UserID && !claims.Has(user.PermissionAttendanceViewAll) {
		return attendance.AttendanceResponse{}, attendance.ErrUnauthorized
	}
	return a.toResponse(ctx, rec), nil
}

// Export implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) Export(ctx context.Context, req attendance.ExportRequest, w io.Writer) error {
	claims, err := jwt.FromContext(ctx)
	if err != nil {
		return err
	}
	if !claims.Has(user.PermissionAttendanceExport) {
		return attendance.ErrUnauthorized
	}
	if err := req.Validate(); err != nil {
		return err
	}

	start, _ := time.ParseInLocation("2006-01-02", req.StartDate, a.rules.Location)
	end, _ := time.ParseInLocation("2006-01-02", req.EndDate, a.rules.Location)

	records, err := a.ListBetween(ctx, start, end)
	if err != nil {
		return fmt.Errorf("failed to load attendance for export: %w", err)
	}

	return a.report.WriteAttendance(w, req.StartDate, req.EndDate, a.toResponses(ctx, records))
}

// DailySummary implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) DailySummary(ctx context.Context, day time.Time) (attendance.DailySummaryResponse, error) {
	day = a.rules.Day(day)

	counts, err := a.CountByStatus(ctx, day)
	if err != nil {
		return attendance.DailySummaryResponse{}, fmt.Errorf("failed to count attendance: %w", err)
	}
	absentees, err := a.ListAbsentees(ctx, day, attendanceRoles())
	if err != nil {
		return attendance.DailySummaryResponse{}, fmt.Errorf("failed to list absentees: %w", err)
	}

	resp := attendance.DailySummaryResponse{
		Date:      day.Format("2006-01-02"),
		Present:   counts[attendance.StatusPresent],
		Late:      counts[attendance.StatusLate],
		Leave:     counts[attendance.StatusLeave],
		Absent:    len(absentees),
		Absentees: make([]attendance.AbsenteeResponse, 0, len(absentees)),
	}
	for _, ab := range absentees {
		resp.Absentees = append(resp.Absentees, attendance.AbsenteeResponse{
			UserID: ab.UserID,
			Name:   ab.Name,
			NIP:    ab.NIP,
			Role:   ab.Role,
		})
	}
	return resp, nil
}

// SummaryForDate implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) SummaryForDate(ctx context.Context, req attendance.SummaryRequest) (attendance.DailySummaryResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.DailySummaryResponse{}, err
	}
	day := a.now()
	if req.Date != "" {
		day, _ = time.ParseInLocation("2006-01-02", req.Date, a.rules.Location)
	}
	return a.DailySummary(ctx, day)
}

func paging(total int64, page, limit int) (int, string) {
	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	showing := fmt.Sprintf("%d-%d of %d", (page-1)*limit+1, min(page*limit, int(total)), total)
	if total == 0 {
		showing = "0 of 0"
	}
	return totalPages, showing
}

func (a *AttendanceServiceImpl) toResponses(ctx context.Context, records []attendance.Attendance) []attendance.AttendanceResponse {
	responses := make([]attendance.AttendanceResponse, 0, len(records))
	for _, r := range records {
		responses = append(responses, a.toResponse(ctx, r))
	}
	return responses
}

func (a *AttendanceServiceImpl) toResponse(ctx context.Context, att attendance.Attendance) attendance.AttendanceResponse {
	local := a.rules.Local(att.RecordedAt)
	resp := attendance.AttendanceResponse{
		ID:         att.ID,
		UserID:     att.UserID,
		UserName:   att.UserName,
		NIP:        att.UserNIP,
		Kind:       string(att.Kind),
		Status:     string(att.Status),
		WorkDate:   att.WorkDate.Format("2006-01-02"),
		Time:       local.Format("15:04:05"),
		RecordedAt: local.Format(time.RFC3339),
		Reason:     att.Reason,
		Latitude:   att.Latitude,
		Longitude:  att.Longitude,
	}
	if att.PhotoPath != nil {
		if url := a.fileService.URL(ctx, *att.PhotoPath); url != "" {
			resp.PhotoURL = &url
		}
	}
	if att.DocumentPath != nil {
		if url := a.fileService.URL(ctx, *att.DocumentPath); url != "" {
			resp.DocumentURL = &url
		}
	}
	if att.Reason != nil && strings.TrimSpace(*att.Reason) == "" {
		resp.Reason = nil
	}
	return resp
}
