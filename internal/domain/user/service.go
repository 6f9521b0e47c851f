package user

import (
	"context"
	"io"
)

type UserService interface {
	Register(ctx context.Context, req RegisterUserRequest) (UserResponse, error)
	GetProfile(ctx context.Context) (UserResponse, error)
	UpdateProfile(ctx context.Context, req UpdateProfileRequest) (UserResponse, error)
	UploadPhoto(ctx context.Context, file io.Reader) error
	GetPhoto(ctx context.Context, userID string) (Photo, error)
	ChangeRole(ctx context.Context, req ChangeRoleRequest) (UserResponse, error)
	List(ctx context.Context, filter ListUserFilter) (ListUserResponse, error)
	Delete(ctx context.Context, userID string) error
	TeacherNames(ctx context.Context) ([]string, error)
	HeadIDs(ctx context.Context) ([]string, error)
}
