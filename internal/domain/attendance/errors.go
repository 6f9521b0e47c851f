package attendance

import "errors"

// Attendance domain errors
var (
	// Check-in / check-out errors
	ErrAlreadyCheckedIn    = errors.New("you have already checked in today")
	ErrNotCheckedIn        = errors.New("you have not checked in yet")
	ErrAlreadyCheckedOut   = errors.New("you have already checked out today")
	ErrCheckOutNotOpen     = errors.New("check-out is not open yet")
	ErrOutsideGeofence     = errors.New("you are outside the school area")
	ErrLateReasonRequired  = errors.New("a reason is required when checking in late")
	ErrOnLeaveToday        = errors.New("you already requested leave today")
	ErrAlreadyAttended     = errors.New("cannot request leave after checking in or out today")
	ErrAttendanceForbidden = errors.New("this role does not take attendance")

	// Photo errors
	ErrPhotoNotAllowed = errors.New("photos can only be attached to today's check-in or check-out")

	// General errors
	ErrAttendanceNotFound = errors.New("attendance record not found")
	ErrDuplicateRecord    = errors.New("attendance already recorded for today")
	ErrUnauthorized       = errors.New("unauthorized to access this attendance record")
	ErrInvalidDateRange   = errors.New("start_date must not be after end_date")
)
