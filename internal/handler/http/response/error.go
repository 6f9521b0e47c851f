package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/absensigeo/absensi-backend-go/internal/domain/attendance"
	"github.com/absensigeo/absensi-backend-go/internal/domain/auth"
	"github.com/absensigeo/absensi-backend-go/internal/domain/evidence"
	"github.com/absensigeo/absensi-backend-go/internal/domain/letter"
	"github.com/absensigeo/absensi-backend-go/internal/domain/schedule"
	"github.com/absensigeo/absensi-backend-go/internal/domain/user"
	"github.com/absensigeo/absensi-backend-go/internal/pkg/jwt"
	"github.com/absensigeo/absensi-backend-go/internal/pkg/storage"
	"github.com/absensigeo/absensi-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, jwt.ErrNoIdentity):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, auth.ErrRefreshTokenRevoked):
		Unauthorized(w, "Refresh token revoked")
	case errors.Is(err, auth.ErrWrongPassword):
		BadRequest(w, err.Error(), nil)

	// User
	case errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, user.ErrUserNIPExists):
		Conflict(w, "NIP already registered")
	case errors.Is(err, user.ErrUserEmailExists):
		Conflict(w, "Email already registered")
	case errors.Is(err, user.ErrPhotoNotFound):
		NotFound(w, "Photo not found")
	case errors.Is(err, user.ErrPhotoTooLarge):
		RequestEntityTooLarge(w, err.Error())
	case errors.Is(err, user.ErrInvalidPhoto), errors.Is(err, storage.ErrUnsupportedFile):
		UnsupportedMediaType(w, err.Error())
	case errors.Is(err, user.ErrInvalidRole):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, user.ErrCannotChangeOwnRole), errors.Is(err, user.ErrCannotDeleteSelf):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, user.ErrInsufficientPermissions):
		Forbidden(w, err.Error())

	// Attendance
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance record not found")
	case errors.Is(err, attendance.ErrOutsideGeofence):
		Forbidden(w, err.Error())
	case errors.Is(err, attendance.ErrAttendanceForbidden), errors.Is(err, attendance.ErrUnauthorized):
		Forbidden(w, err.Error())
	case errors.Is(err, attendance.ErrAlreadyCheckedIn),
		errors.Is(err, attendance.ErrAlreadyCheckedOut),
		errors.Is(err, attendance.ErrOnLeaveToday),
		errors.Is(err, attendance.ErrAlreadyAttended),
		errors.Is(err, attendance.ErrDuplicateRecord):
		Conflict(w, err.Error())
	case errors.Is(err, attendance.ErrNotCheckedIn),
		errors.Is(err, attendance.ErrCheckOutNotOpen),
		errors.Is(err, attendance.ErrLateReasonRequired),
		errors.Is(err, attendance.ErrPhotoNotAllowed),
		errors.Is(err, attendance.ErrInvalidDateRange):
		BadRequest(w, err.Error(), nil)

	// Schedule
	case errors.Is(err, schedule.ErrScheduleNotFound):
		NotFound(w, "Teaching schedule not found")
	case errors.Is(err, schedule.ErrScheduleForbidden):
		Forbidden(w, err.Error())

	// Evidence
	case errors.Is(err, evidence.ErrEvidenceNotFound):
		NotFound(w, "Teaching evidence not found")
	case errors.Is(err, evidence.ErrEvidenceClosed):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, evidence.ErrEvidenceForbidden):
		Forbidden(w, err.Error())

	// Letter
	case errors.Is(err, letter.ErrLetterTemplateNotFound):
		NotFound(w, "Letter template not found")
	case errors.Is(err, letter.ErrLetterForbidden):
		Forbidden(w, err.Error())

	// Storage
	case errors.Is(err, storage.ErrFileNotFound):
		NotFound(w, "File not found")
	case errors.Is(err, storage.ErrInvalidPath):
		BadRequest(w, err.Error(), nil)

	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
