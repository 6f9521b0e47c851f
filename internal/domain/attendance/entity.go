package attendance

import (
	"time"
)

type Kind string

const (
	KindCheckIn  Kind = "check_in"
	KindCheckOut Kind = "check_out"
	KindLeave    Kind = "leave"    // Izin
	KindFurlough Kind = "furlough" // Cuti
)

// IsLeave reports whether the kind is a leave or furlough request.
func (k Kind) IsLeave() bool {
	return k == KindLeave || k == KindFurlough
}

func (k Kind) IsValid() bool {
	switch k {
	case KindCheckIn, KindCheckOut, KindLeave, KindFurlough:
		return true
	}
	return false
}

type Status string

const (
	StatusPresent Status = "present"
	StatusLate    Status = "late"
	StatusLeave   Status = "leave"
)

func (s Status) IsValid() bool {
	return s == StatusPresent || s == StatusLate || s == StatusLeave
}

type Attendance struct {
	ID           string
	UserID       string
	Kind         Kind
	Status       Status
	WorkDate     time.Time // local calendar day, midnight in the school timezone
	RecordedAt   time.Time
	Reason       *string // late reason or leave description
	Latitude     *float64
	Longitude    *float64
	PhotoPath    *string
	DocumentPath *string
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// DTO / Join
	UserName string
	UserNIP  string
	UserRole string
}

// Absentee is a user without any record on a given day.
type Absentee struct {
	UserID string
	Name   string
	NIP    string
	Role   string
}
