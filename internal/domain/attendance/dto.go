package attendance

import (
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/absensigeo/absensi-backend-go/internal/pkg/validator"
)

const maxUploadSize = 10 << 20 // 10MB

var (
	photoExts    = []string{".jpg", ".jpeg", ".png", ".webp"}
	documentExts = []string{".jpg", ".jpeg", ".png", ".pdf"}
)

func validateFile(errs *validator.ValidationErrors, field string, header *multipart.FileHeader, allowed []string) {
	if header == nil {
		return
	}
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !validator.IsInSlice(ext, allowed) {
		errs.Add(field, "invalid file type: only "+strings.Join(allowed, ", ")+" allowed")
	} else if header.Size > maxUploadSize {
		errs.Add(field, field+" size must not exceed 10MB")
	}
}

// ========================================
// ATTENDANCE DTOs
// ========================================

type CheckInRequest struct {
	Latitude   *float64              `json:"latitude" validate:"required,latitude"`
	Longitude  *float64              `json:"longitude" validate:"required,longitude"`
	Reason     string                `json:"reason" validate:"max=500"`
	File       multipart.File        `json:"-"`
	FileHeader *multipart.FileHeader `json:"-"`
}

func (r *CheckInRequest) Validate() error {
	r.Reason = strings.TrimSpace(r.Reason)
	errs := validator.Struct(r)
	validateFile(&errs, "photo", r.FileHeader, photoExts)
	return errs.Err()
}

type CheckOutRequest struct {
	Latitude   *float64              `json:"latitude" validate:"required,latitude"`
	Longitude  *float64              `json:"longitude" validate:"required,longitude"`
	File       multipart.File        `json:"-"`
	FileHeader *multipart.FileHeader `json:"-"`
}

func (r *CheckOutRequest) Validate() error {
	errs := validator.Struct(r)
	validateFile(&errs, "photo", r.FileHeader, photoExts)
	return errs.Err()
}

// LeaveRequest is an "Izin" (leave) or "Cuti" (furlough) request for today.
type LeaveRequest struct {
	Kind        string                `json:"kind" validate:"required,oneof=leave furlough"`
	Description string                `json:"description" validate:"notblank,max=1000"`
	File        multipart.File        `json:"-"`
	FileHeader  *multipart.FileHeader `json:"-"`
}

func (r *LeaveRequest) Validate() error {
	r.Kind = strings.ToLower(strings.TrimSpace(r.Kind))
	r.Description = strings.TrimSpace(r.Description)
	errs := validator.Struct(r)
	validateFile(&errs, "document", r.FileHeader, documentExts)
	return errs.Err()
}

type AttachPhotoRequest struct {
	ID         string                `json:"-"`
	File       multipart.File        `json:"-"`
	FileHeader *multipart.FileHeader `json:"-"`
}

func (r *AttachPhotoRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs.Add("id", "id is required")
	}
	if r.FileHeader == nil || r.File == nil {
		errs.Add("photo", "photo is required")
	} else {
		validateFile(&errs, "photo", r.FileHeader, photoExts)
	}

	return errs.Err()
}

type AttendanceResponse struct {
	ID          string   `json:"id"`
	UserID      string   `json:"user_id"`
	UserName    string   `json:"user_name,omitempty"`
	NIP         string   `json:"nip,omitempty"`
	Kind        string   `json:"kind"`
	Status      string   `json:"status"`
	WorkDate    string   `json:"work_date"`
	Time        string   `json:"time"`
	RecordedAt  string   `json:"recorded_at"`
	Reason      *string  `json:"reason,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	Distance    *float64 `json:"distance_meters,omitempty"`
	PhotoURL    *string  `json:"photo_url,omitempty"`
	DocumentURL *string  `json:"document_url,omitempty"`
}

// TodayResponse drives which attendance actions the client enables.
type TodayResponse struct {
	Date            string               `json:"date"`
	ServerTime      string               `json:"server_time"`
	CheckedIn       bool                 `json:"checked_in"`
	CheckedOut      bool                 `json:"checked_out"`
	OnLeave         bool                 `json:"on_leave"`
	CanCheckIn      bool                 `json:"can_check_in"`
	CanCheckOut     bool                 `json:"can_check_out"`
	CanRequestLeave bool                 `json:"can_request_leave"`
	IsLateNow       bool                 `json:"is_late_now"`
	LateAfter       string               `json:"late_after"`
	CheckOutFrom    string               `json:"check_out_from"`
	Message         string               `json:"message"`
	Records         []AttendanceResponse `json:"records"`
}

type AttendanceFilter struct {
	// Search & Filter
	UserID    *string `json:"user_id,omitempty"`
	Kind      *string `json:"kind,omitempty"`
	Status    *string `json:"status,omitempty"`
	StartDate *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate   *string `json:"end_date,omitempty"`   // YYYY-MM-DD

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`

	// Sorting
	SortOrder string `json:"sort_order"` // asc, desc
}

func (f *AttendanceFilter) Validate() error {
	var errs validator.ValidationErrors

	validatePaging(&errs, &f.Page, &f.Limit)

	if f.Kind != nil && !Kind(*f.Kind).IsValid() {
		errs.Add("kind", "kind must be one of: check_in, check_out, leave, furlough")
	}

	if f.Status != nil && !Status(*f.Status).IsValid() {
		errs.Add("status", "status must be one of: present, late, leave")
	}

	validateDateRange(&errs, f.StartDate, f.EndDate)

	if f.SortOrder != "" {
		f.SortOrder = strings.ToLower(f.SortOrder)
		if !validator.IsInSlice(f.SortOrder, []string{"asc", "desc"}) {
			errs.Add("sort_order", "sort_order must be one of: asc, desc")
		}
	} else {
		f.SortOrder = "desc" // newest first
	}

	return errs.Err()
}

type MyAttendanceFilter struct {
	StartDate *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate   *string `json:"end_date,omitempty"`   // YYYY-MM-DD

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *MyAttendanceFilter) Validate() error {
	var errs validator.ValidationErrors

	validatePaging(&errs, &f.Page, &f.Limit)
	validateDateRange(&errs, f.StartDate, f.EndDate)

	return errs.Err()
}

func validatePaging(errs *validator.ValidationErrors, page, limit *int) {
	if *page < 0 {
		errs.Add("page", "page must be a positive number")
	}
	if *page == 0 {
		*page = 1
	}

	if *limit < 0 {
		errs.Add("limit", "limit must be a positive number")
	}
	if *limit == 0 {
		*limit = 20
	}
	if *limit > 100 {
		errs.Add("limit", "limit must not exceed 100")
	}
}

func validateDateRange(errs *validator.ValidationErrors, start, end *string) {
	startOK, endOK := true, true
	if start != nil && *start != "" {
		if _, startOK = validator.IsValidDate(*start); !startOK {
			errs.Add("start_date", "start_date must be in YYYY-MM-DD format")
		}
	}
	if end != nil && *end != "" {
		if _, endOK = validator.IsValidDate(*end); !endOK {
			errs.Add("end_date", "end_date must be in YYYY-MM-DD format")
		}
	}
	if startOK && endOK && start != nil && end != nil && *start != "" && *end != "" && *start > *end {
		errs.Add("start_date", ErrInvalidDateRange.Error())
	}
}

type ListAttendanceResponse struct {
	TotalCount  int64                `json:"total_count"`
	Page        int                  `json:"page"`
	Limit       int                  `json:"limit"`
	TotalPages  int                  `json:"total_pages"`
	Showing     string               `json:"showing"`
	Attendances []AttendanceResponse `json:"attendances"`
}

// DayGroup holds one calendar day of a user's history.
type DayGroup struct {
	Date    string               `json:"date"`
	Records []AttendanceResponse `json:"records"`
}

// MyAttendanceResponse pages by day: TotalCount and Limit count days, not records.
type MyAttendanceResponse struct {
	TotalCount int64      `json:"total_count"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
	TotalPages int        `json:"total_pages"`
	Showing    string     `json:"showing"`
	Days       []DayGroup `json:"days"`
}

type ExportRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

func (r *ExportRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.StartDate) {
		errs.Add("start_date", "start_date is required")
	}
	if validator.IsEmpty(r.EndDate) {
		errs.Add("end_date", "end_date is required")
	}
	if len(errs) > 0 {
		return errs
	}

	validateDateRange(&errs, &r.StartDate, &r.EndDate)
	if len(errs) == 0 {
		start, _ := validator.IsValidDate(r.StartDate)
		end, _ := validator.IsValidDate(r.EndDate)
		if end.Sub(start).Hours() > 366*24 {
			errs.Add("end_date", "export range must not exceed one year")
		}
	}

	return errs.Err()
}

// SummaryRequest selects the recap day as a school-local calendar date.
// An empty Date means today.
type SummaryRequest struct {
	Date string `json:"date"`
}

func (r *SummaryRequest) Validate() error {
	var errs validator.ValidationErrors
	if r.Date != "" {
		if _, ok := validator.IsValidDate(r.Date); !ok {
			errs.Add("date", "date must be in YYYY-MM-DD format")
		}
	}
	return errs.Err()
}

type AbsenteeResponse struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	NIP    string `json:"nip"`
	Role   string `json:"role"`
}

type DailySummaryResponse struct {
	Date      string             `json:"date"`
	Present   int                `json:"present"`
	Late      int                `json:"late"`
	Leave     int                `json:"leave"`
	Absent    int                `json:"absent"`
	Absentees []AbsenteeResponse `json:"absentees"`
}
