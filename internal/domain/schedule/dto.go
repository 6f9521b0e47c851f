package schedule

import (
	"strings"

	"github.com/absensigeo/absensi-backend-go/internal/pkg/validator"
)

// UpsertScheduleRequest creates an entry, or replaces one when ID is set.
type UpsertScheduleRequest struct {
	ID          string `json:"-"`
	TeacherName string `json:"teacher_name" validate:"notblank,max=100"`
	ClassName   string `json:"class_name" validate:"notblank,max=50"`
	Day         string `json:"day" validate:"required,oneof=monday tuesday wednesday thursday friday saturday sunday"`
	StartTime   string `json:"start_time" validate:"clock"`
	EndTime     string `json:"end_time" validate:"clock"`
	Subject     string `json:"subject" validate:"notblank,max=100"`
}

func (r *UpsertScheduleRequest) Validate() error {
	r.TeacherName = strings.TrimSpace(r.TeacherName)
	r.ClassName = strings.TrimSpace(r.ClassName)
	r.Day = strings.ToLower(strings.TrimSpace(r.Day))
	r.StartTime = strings.TrimSpace(r.StartTime)
	r.EndTime = strings.TrimSpace(r.EndTime)
	r.Subject = strings.TrimSpace(r.Subject)

	errs := validator.Struct(r)

	start, startOK := validator.IsValidClock(r.StartTime)
	end, endOK := validator.IsValidClock(r.EndTime)
	if startOK && endOK && !start.Before(end) {
		errs.Add("end_time", "end_time must be after start_time")
	}

	return errs.Err()
}

type ScheduleFilter struct {
	TeacherName *string `json:"teacher_name,omitempty"`
	Day         *string `json:"day,omitempty"`
}

func (f *ScheduleFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.TeacherName != nil {
		name := strings.TrimSpace(*f.TeacherName)
		if name == "" {
			f.TeacherName = nil
		} else {
			f.TeacherName = &name
		}
	}
	if f.Day != nil {
		day := strings.ToLower(strings.TrimSpace(*f.Day))
		f.Day = &day
		if !Weekday(day).IsValid() {
			errs.Add("day", "day must be one of: "+strings.Join(WeekdayValues, ", "))
		}
	}

	return errs.Err()
}

type ScheduleResponse struct {
	ID          string `json:"id"`
	TeacherName string `json:"teacher_name"`
	ClassName   string `json:"class_name"`
	Day         string `json:"day"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Subject     string `json:"subject"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

type ListScheduleResponse struct {
	TotalCount int                `json:"total_count"`
	Schedules  []ScheduleResponse `json:"schedules"`
}
