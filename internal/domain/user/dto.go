package user

import (
	"strings"

	"github.com/absensigeo/absensi-backend-go/internal/pkg/validator"
)

// UserResponse represents user data in API responses
type UserResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	NIP       string  `json:"nip"`
	Email     string  `json:"email"`
	Role      string  `json:"role"`
	PhotoURL  *string `json:"photo_url,omitempty"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

// RegisterUserRequest is used by an admin to provision an account.
type RegisterUserRequest struct {
	Name     string `json:"name" validate:"notblank,max=100"`
	NIP      string `json:"nip" validate:"nip"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=255"`
	Role     string `json:"role"`
}

func (r *RegisterUserRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.NIP = strings.TrimSpace(r.NIP)
	r.Email = strings.TrimSpace(strings.ToLower(r.Email))

	errs := validator.Struct(r)

	if validator.IsEmpty(r.Role) {
		errs.Add("role", "role is required")
	} else if !validator.IsInSlice(r.Role, AssignableRoles) {
		errs.Add("role", "role must be one of: teacher, staff, head")
	}

	return errs.Err()
}

// UpdateProfileRequest represents a self-service profile edit
type UpdateProfileRequest struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
}

func (r *UpdateProfileRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Name == nil && r.Email == nil {
		errs.Add("_", "nothing to update")
	}

	if r.Name != nil {
		trimmed := strings.TrimSpace(*r.Name)
		r.Name = &trimmed
		if validator.IsEmpty(trimmed) {
			errs.Add("name", "name must not be empty")
		} else if len(trimmed) > 100 {
			errs.Add("name", "name must not exceed 100 characters")
		}
	}

	if r.Email != nil {
		trimmed := strings.TrimSpace(strings.ToLower(*r.Email))
		r.Email = &trimmed
		if validator.IsEmpty(trimmed) {
			errs.Add("email", "email must not be empty")
		} else if !validator.IsValidEmail(trimmed) {
			errs.Add("email", "invalid email format")
		}
	}

	return errs.Err()
}

// ChangeRoleRequest represents request to update user role
type ChangeRoleRequest struct {
	ID   string `json:"-"`
	Role string `json:"role"`
}

func (r *ChangeRoleRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs.Add("id", "id is required")
	}

	if validator.IsEmpty(r.Role) {
		errs.Add("role", "role is required")
	} else if !validator.IsInSlice(r.Role, AssignableRoles) {
		errs.Add("role", "role must be one of: teacher, staff, head")
	}

	return errs.Err()
}

type ListUserFilter struct {
	Role   *string `json:"role,omitempty"`
	Search *string `json:"search,omitempty"` // name or NIP

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *ListUserFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs.Add("page", "page must be a positive number")
	}
	if f.Page == 0 {
		f.Page = 1
	}

	if f.Limit < 0 {
		errs.Add("limit", "limit must be a positive number")
	}
	if f.Limit == 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		errs.Add("limit", "limit must not exceed 100")
	}

	if f.Role != nil && !Role(*f.Role).IsValid() {
		errs.Add("role", "role must be one of: teacher, staff, head, admin")
	}

	return errs.Err()
}

type ListUserResponse struct {
	TotalCount int64          `json:"total_count"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"total_pages"`
	Showing    string         `json:"showing"`
	Users      []UserResponse `json:"users"`
}
