package attendance

import (
	"context"
	"io"
	"time"
)

// AttendanceService defines business logic for attendance operations
type AttendanceService interface {
	CheckIn(ctx context.Context, req CheckInRequest) (AttendanceResponse, error)
	CheckOut(ctx context.Context, req CheckOutRequest) (AttendanceResponse, error)
	RequestLeave(ctx context.Context, req LeaveRequest) (AttendanceResponse, error)

	// AttachPhoto stores the photo taken right after a check-in or check-out
	AttachPhoto(ctx context.Context, req AttachPhotoRequest) (AttendanceResponse, error)

	Today(ctx context.Context) (TodayResponse, error)
	GetMyAttendance(ctx context.Context, filter MyAttendanceFilter) (MyAttendanceResponse, error)
	ListAttendance(ctx context.Context, filter AttendanceFilter) (ListAttendanceResponse, error)
	GetAttendance(ctx context.Context, id string) (AttendanceResponse, error)

	// Export writes an XLSX workbook with every record between start and end
	Export(ctx context.Context, req ExportRequest, w io.Writer) error

	DailySummary(ctx context.Context, day time.Time) (DailySummaryResponse, error)
	SummaryForDate(ctx context.Context, req SummaryRequest) (DailySummaryResponse, error)
}

// ReportWriter renders exported records into a spreadsheet.
type ReportWriter interface {
	WriteAttendance(w io.Writer, startDate, endDate string, records []AttendanceResponse) error
}
