package user

import "time"

type Role string

const (
	RoleTeacher Role = "teacher" // Guru
	RoleStaff   Role = "staff"   // Tenaga kependidikan
	RoleHead    Role = "head"    // Kepala sekolah
	RoleAdmin   Role = "admin"   // Operator, manages accounts and schedules
)

// AssignableRoles are the roles an admin may register or a head may assign.
var AssignableRoles = []string{string(RoleTeacher), string(RoleStaff), string(RoleHead)}

func (r Role) IsValid() bool {
	switch r {
	case RoleTeacher, RoleStaff, RoleHead, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID           string
	Name         string
	NIP          string
	Email        string
	PasswordHash string
	Role         Role
	HasPhoto     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Photo is the profile picture stored with the user row.
type Photo struct {
	ContentType string
	Data        []byte
}

// IsAdmin checks if user is an operator account
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanRecordAttendance reports whether the user takes part in daily attendance.
func (u *User) CanRecordAttendance() bool {
	return HasPermission(u.Role, PermissionAttendanceCreate)
}
