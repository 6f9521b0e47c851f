package user

type Permission string

const (
	// Self Management
	PermissionViewOwnProfile Permission = "profile.view_own"
	PermissionEditOwnProfile Permission = "profile.edit_own"

	// Attendance
	PermissionAttendanceCreate  Permission = "attendance.create"
	PermissionAttendanceViewOwn Permission = "attendance.view_own"
	PermissionAttendanceViewAll Permission = "attendance.view_all"
	PermissionAttendanceExport  Permission = "attendance.export"

	// User Management
	PermissionUserList       Permission = "user.list"
	PermissionUserManage     Permission = "user.manage"
	PermissionUserChangeRole Permission = "user.change_role"

	// Teaching schedule
	PermissionScheduleView    Permission = "schedule.view"
	PermissionScheduleViewAll Permission = "schedule.view_all"
	PermissionScheduleManage  Permission = "schedule.manage"

	// Teaching evidence
	PermissionEvidenceCreate  Permission = "evidence.create"
	PermissionEvidenceViewAll Permission = "evidence.view_all"

	// Letter templates
	PermissionLetterView   Permission = "letter.view"
	PermissionLetterManage Permission = "letter.manage"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleTeacher: {
		PermissionViewOwnProfile,
		PermissionEditOwnProfile,
		PermissionAttendanceCreate,
		PermissionAttendanceViewOwn,
		PermissionScheduleView,
		PermissionEvidenceCreate,
		PermissionLetterView,
	},
	RoleStaff: {
		PermissionViewOwnProfile,
		PermissionEditOwnProfile,
		PermissionAttendanceCreate,
		PermissionAttendanceViewOwn,
		PermissionEvidenceCreate,
		PermissionLetterView,
		PermissionLetterManage,
	},
	RoleHead: {
		PermissionViewOwnProfile,
		PermissionEditOwnProfile,
		PermissionAttendanceCreate,
		PermissionAttendanceViewOwn,
		PermissionAttendanceViewAll,
		PermissionAttendanceExport,
		PermissionUserList,
		PermissionUserChangeRole,
		PermissionScheduleView,
		PermissionScheduleViewAll,
		PermissionEvidenceCreate,
		PermissionEvidenceViewAll,
		PermissionLetterView,
	},
	RoleAdmin: {
		// Admin operates the school data but does not take attendance
		PermissionViewOwnProfile,
		PermissionEditOwnProfile,
		PermissionUserList,
		PermissionUserManage,
		PermissionScheduleView,
		PermissionScheduleViewAll,
		PermissionScheduleManage,
		PermissionEvidenceViewAll,
		PermissionLetterView,
		PermissionLetterManage,
	},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}

	return false
}
