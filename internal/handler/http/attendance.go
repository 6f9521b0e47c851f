package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/absensigeo/absensi-backend-go/internal/domain/attendance"
	"github.com/absensigeo/absensi-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type AttendanceHandler interface {
	CheckIn(w http.ResponseWriter, r *http.Request)
	CheckOut(w http.ResponseWriter, r *http.Request)
	RequestLeave(w http.ResponseWriter, r *http.Request)
	AttachPhoto(w http.ResponseWriter, r *http.Request)
	Today(w http.ResponseWriter, r *http.Request)
	GetMyAttendance(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Export(w http.ResponseWriter, r *http.Request)
	Summary(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

// CheckIn implements AttendanceHandler. The photo is optional here and may
// be attached afterwards.
func (h *attendanceHandlerImpl) CheckIn(w http.ResponseWriter, r *http.Request) {
	var req attendance.CheckInRequest
	if !decodeMultipart(w, r, &req) {
		return
	}

	file, header, ok := formFile(w, r, "photo")
	if !ok {
		return
	}
	defer closeFile(file)
	req.File, req.FileHeader = file, header

	result, err := h.attendanceService.CheckIn(r.Context(), req)
	if err != nil {
		slog.Error("CheckIn service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Check in successful", result)
}

// CheckOut implements AttendanceHandler.
func (h *attendanceHandlerImpl) CheckOut(w http.ResponseWriter, r *http.Request) {
	var req attendance.CheckOutRequest
	if !decodeMultipart(w, r, &req) {
		return
	}

	file, header, ok := formFile(w, r, "photo")
	if !ok {
		return
	}
	defer closeFile(file)
	req.File, req.FileHeader = file, header

	result, err := h.attendanceService.CheckOut(r.Context(), req)
	if err != nil {
		slog.Error("CheckOut service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Check out successful", result)
}

// RequestLeave implements AttendanceHandler.
func (h *attendanceHandlerImpl) RequestLeave(w http.ResponseWriter, r *http.Request) {
	var req attendance.LeaveRequest
	if !decodeMultipart(w, r, &req) {
		return
	}

	file, header, ok := formFile(w, r, "document")
	if !ok {
		return
	}
	defer closeFile(file)
	req.File, req.FileHeader = file, header

	result, err := h.attendanceService.RequestLeave(r.Context(), req)
	if err != nil {
		slog.Error("RequestLeave service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Leave request recorded", result)
}

// AttachPhoto implements AttendanceHandler.
func (h *attendanceHandlerImpl) AttachPhoto(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		response.BadRequest(w, "Failed to parse form data", nil)
		return
	}

	file, header, ok := formFile(w, r, "photo")
	if !ok {
		return
	}
	defer closeFile(file)

	req := attendance.AttachPhotoRequest{
		ID:         chi.URLParam(r, "id"),
		File:       file,
		FileHeader: header,
	}
	result, err := h.attendanceService.AttachPhoto(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *attendanceHandlerImpl) Today(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.Today(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func (h *attendanceHandlerImpl) GetMyAttendance(w http.ResponseWriter, r *http.Request) {
	filter := attendance.MyAttendanceFilter{
		StartDate: queryString(r, "start_date"),
		EndDate:   queryString(r, "end_date"),
		Page:      queryInt(r, "page"),
		Limit:     queryInt(r, "limit"),
	}

	results, err := h.attendanceService.GetMyAttendance(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, results)
}

func (h *attendanceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := attendance.AttendanceFilter{
		UserID:    queryString(r, "user_id"),
		Kind:      queryString(r, "kind"),
		Status:    queryString(r, "status"),
		StartDate: queryString(r, "start_date"),
		EndDate:   queryString(r, "end_date"),
		Page:      queryInt(r, "page"),
		Limit:     queryInt(r, "limit"),
		SortOrder: r.URL.Query().Get("sort_order"),
	}

	results, err := h.attendanceService.ListAttendance(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, results)
}

func (h *attendanceHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.GetAttendance(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// Export streams an XLSX workbook for start_date..end_date.
func (h *attendanceHandlerImpl) Export(w http.ResponseWriter, r *http.Request) {
	req := attendance.ExportRequest{
		StartDate: r.URL.Query().Get("start_date"),
		EndDate:   r.URL.Query().Get("end_date"),
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="absensi_%s_%s.xlsx"`, req.StartDate, req.EndDate))

	buf := &deferredWriter{w: w}
	if err := h.attendanceService.Export(r.Context(), req, buf); err != nil {
		slog.Error("Export service error", "error", err)
		if !buf.started {
			w.Header().Del("Content-Disposition")
			response.HandleError(w, err)
		}
		return
	}
}

// Summary returns the recap of ?date=YYYY-MM-DD, today by default.
func (h *attendanceHandlerImpl) Summary(w http.ResponseWriter, r *http.Request) {
	req := attendance.SummaryRequest{Date: r.URL.Query().Get("date")}

	result, err := h.attendanceService.SummaryForDate(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// deferredWriter records whether any body bytes were sent, so a failure
// before the first write can still be reported as JSON.
type deferredWriter struct {
	w       http.ResponseWriter
	started bool
}

func (d *deferredWriter) Write(p []byte) (int, error) {
	d.started = true
	return d.w.Write(p)
}
