package user

import (
	"context"
)

type UserRepository interface {
	GetByNIP(ctx context.Context, nip string) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
	Create(ctx context.Context, newUser User) (User, error)
	Update(ctx context.Context, id string, req UpdateProfileRequest) error
	UpdateRole(ctx context.Context, id string, role Role) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdatePhoto(ctx context.Context, id string, photo Photo) error
	GetPhoto(ctx context.Context, id string) (Photo, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListUserFilter) ([]User, int64, error)
	ListNamesByRole(ctx context.Context, role Role) ([]string, error)
	ListIDsByRole(ctx context.Context, role Role) ([]string, error)
	ListByRoles(ctx context.Context, roles []Role) ([]User, error)
}
