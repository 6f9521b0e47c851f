package user

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/absensigeo/absensi-backend-go/internal/domain/user"
	"github.com/absensigeo/absensi-backend-go/internal/pkg/cache"
	"github.com/absensigeo/absensi-backend-go/internal/pkg/jwt"
	"github.com/absensigeo/absensi-backend-go/internal/service/file"
	"golang.org/x/crypto/bcrypt"
)

const (
	keyTeacherNames = "user:teacher-names"
	keyHeadIDs      = "user:head-ids"
)

func profileKey(id string) string {
	return "user:profile:" + id
}

type UserServiceImpl struct {
	user.UserRepository
	cache *cache.CacheHelper

	// maxPhotoEncoded is the largest base64-encoded photo size accepted, in bytes.
	maxPhotoEncoded int
	bcryptCost      int
}

// NewUserService wires the user service. maxPhotoKB is the base64-encoded
// size limit for profile photos.
func NewUserService(userRepository user.UserRepository, cacheHelper *cache.CacheHelper, maxPhotoKB int) user.UserService {
	return &UserServiceImpl{
		UserRepository:  userRepository,
		cache:           cacheHelper,
		maxPhotoEncoded: maxPhotoKB * 1024,
		bcryptCost:      bcrypt.DefaultCost,
	}
}

func toResponse(u user.User) user.UserResponse {
	resp := user.UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		NIP:       u.NIP,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
		UpdatedAt: u.UpdatedAt.Format(time.RFC3339),
	}
	if u.HasPhoto {
		url := fmt.Sprintf("/api/v1/users/%s/photo", u.ID)
		resp.PhotoURL = &url
	}
	return resp
}

func (s *UserServiceImpl) invalidate(ctx context.Context, keys ...string) {
	if err := s.cache.Delete(ctx, keys...); err != nil {
		slog.Warn("Failed to invalidate user cache", "keys", keys, "error", err)
	}
}

// Register implements user.UserService.
func (s *UserServiceImpl) Register(ctx context.Context, req user.RegisterUserRequest) (user.UserResponse, error) {
	if err := req.Validate(); err != nil {
		return user.UserResponse{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return user.UserResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}

	created, err := s.UserRepository.Create(ctx, user.User{
		Name:         req.Name,
		NIP:          req.NIP,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         user.Role(req.Role),
	})
	if err != nil {
		return user.UserResponse{}, fmt.Errorf("failed to create user: %w", err)
	}

	s.invalidate(ctx, keyTeacherNames, keyHeadIDs)
	return toResponse(created), nil
}

// GetProfile implements user.UserService.
func (s *UserServiceImpl) GetProfile(ctx context.Context) (user.UserResponse, error) {
	claims, err := jwt.FromContext(ctx)
	if err != nil {
		return user.UserResponse{}, err
	}

	return cache.GetOrLoad(ctx, s.cache, profileKey(claims.UserID), func(ctx context.Context) (user.UserResponse, error) {
		u, err := s.UserRepository.GetByID(ctx, claims.UserID)
		if err != nil {
			return user.UserResponse{}, fmt.Errorf("failed to get user: %w", err)
		}
		return toResponse(u), nil
	})
}

// UpdateProfile implements user.UserService.
func (s *UserServiceImpl) UpdateProfile(ctx context.Context, req user.UpdateProfileRequest) (user.UserResponse, error) {
	claims, err := jwt.FromContext(ctx)
	if err != nil {
		return user.UserResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return user.UserResponse{}, err
	}

	if err := s.UserRepository.Update(ctx, claims.UserID, req); err != nil {
		return user.UserResponse{}, fmt.Errorf("failed to update profile: %w", err)
	}
	s.invalidate(ctx, profileKey(claims.UserID), keyTeacherNames)

	u, err := s.UserRepository.GetByID(ctx, claims.UserID)
	if err != nil {
		return user.UserResponse{}, fmt.Errorf("failed to get user: %w", err)
	}
	return toResponse(u), nil
}

// UploadPhoto implements user.UserService. The photo is stored as-is; its
// base64-encoded size must not exceed the configured limit.
func (s *UserServiceImpl) UploadPhoto(ctx context.Context, r io.Reader) error {
	claims, err := jwt.FromContext(ctx)
	if err != nil {
		return err
	}

	maxRaw := base64.StdEncoding.DecodedLen(s.maxPhotoEncoded)
	data, err := io.ReadAll(io.LimitReader(r, int64(maxRaw)+4))
	if err != nil {
		return fmt.Errorf("failed to read photo: %w", err)
	}
	if len(data) == 0 {
		return user.ErrInvalidPhoto
	}
	if base64.StdEncoding.EncodedLen(len(data)) > s.maxPhotoEncoded {
		return user.ErrPhotoTooLarge
	}

	format, err := file.DetectImage(data)
	if err != nil {
		return user.ErrInvalidPhoto
	}

	photo := user.Photo{ContentType: "image/" + format, Data: data}
	if err := s.UserRepository.UpdatePhoto(ctx, claims.UserID, photo); err != nil {
		return fmt.Errorf("failed to save photo: %w", err)
	}
	s.invalidate(ctx, profileKey(claims.UserID))
	return nil
}

// GetPhoto implements user.UserService.
func (s *UserServiceImpl) GetPhoto(ctx context.Context, userID string) (user.Photo, error) {
	if _, err := jwt.FromContext(ctx); err != nil {
		return user.Photo{}, err
	}
	return s.UserRepository.GetPhoto(ctx, userID)
}

// ChangeRole implements user.UserService.
func (s *UserServiceImpl) ChangeRole(ctx context.Context, req user.ChangeRoleRequest) (user.UserResponse, error) {
	claims, err := jwt.FromContext(ctx)
	if err != nil {
		return user.UserResponse{}, err
	}
	if !claims.Has(user.PermissionUserChangeRole) {
		return user.UserResponse{}, user.ErrInsufficientPermissions
	}
	if err := req.Validate(); err != nil {
		return user.UserResponse{}, err
	}
	if req.ID == claims.UserID {
		return user.UserResponse{}, user.ErrCannotChangeOwnRole
	}

	target, err := s.UserRepository.GetByID(ctx, req.ID)
	if err != nil {
		return user.UserResponse{}, fmt.Errorf("failed to get user: %w", err)
	}
	if target.IsAdmin() {
		return user.UserResponse{}, user.ErrInsufficientPermissions
	}

	if err := s.UserRepository.UpdateRole(ctx, target.ID, user.Role(req.Role)); err != nil {
		return user.UserResponse{}, fmt.Errorf("failed to update role: %w", err)
	}
	s.invalidate(ctx, profileKey(target.ID), keyTeacherNames, keyHeadIDs)

	target.Role = user.Role(req.Role)
	return toResponse(target), nil
}

// List implements user.UserService.
func (s *UserServiceImpl) List(ctx context.Context, filter user.ListUserFilter) (user.ListUserResponse, error) {
	if err := filter.Validate(); err != nil {
		return user.ListUserResponse{}, err
	}

	users, total, err := s.UserRepository.List(ctx, filter)
	if err != nil {
		return user.ListUserResponse{}, fmt.Errorf("failed to list users: %w", err)
	}

	responses := make([]user.UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, toResponse(u))
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))
	showing := fmt.Sprintf("%d-%d of %d", (filter.Page-1)*filter.Limit+1, min(filter.Page*filter.Limit, int(total)), total)
	if total == 0 {
		showing = "0 of 0"
	}

	return user.ListUserResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages,
		Showing:    showing,
		Users:      responses,
	}, nil
}

// Delete implements user.UserService.
func (s *UserServiceImpl) Delete(ctx context.Context, userID string) error {
	claims, err := jwt.FromContext(ctx)
	if err != nil {
		return err
	}
	if userID == claims.UserID {
		return user.ErrCannotDeleteSelf
	}

	if err := s.UserRepository.Delete(ctx, userID); err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}
	s.invalidate(ctx, profileKey(userID), keyTeacherNames, keyHeadIDs)
	return nil
}

// TeacherNames implements user.UserService.
func (s *UserServiceImpl) TeacherNames(ctx context.Context) ([]string, error) {
	return cache.GetOrLoad(ctx, s.cache, keyTeacherNames, func(ctx context.Context) ([]string, error) {
		names, err := s.UserRepository.ListNamesByRole(ctx, user.RoleTeacher)
		if err != nil {
			return nil, fmt.Errorf("failed to list teacher names: %w", err)
		}
		if names == nil {
			names = []string{}
		}
		return names, nil
	})
}

// HeadIDs implements user.UserService.
func (s *UserServiceImpl) HeadIDs(ctx context.Context) ([]string, error) {
	return cache.GetOrLoad(ctx, s.cache, keyHeadIDs, func(ctx context.Context) ([]string, error) {
		ids, err := s.UserRepository.ListIDsByRole(ctx, user.RoleHead)
		if err != nil {
			return nil, fmt.Errorf("failed to list head ids: %w", err)
		}
		if ids == nil {
			ids = []string{}
		}
		return ids, nil
	})
}
