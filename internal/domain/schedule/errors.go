package schedule

import "errors"

var (
	ErrScheduleNotFound  = errors.New("teaching schedule not found")
	ErrScheduleForbidden = errors.New("you can only view your own teaching schedule")
)
