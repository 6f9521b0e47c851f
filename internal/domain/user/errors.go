package user

import "errors"

var (
	ErrUserNotFound            = errors.New("user not found")
	ErrUserEmailExists         = errors.New("email already registered")
	ErrUserNIPExists           = errors.New("nip already registered")
	ErrInvalidRole             = errors.New("invalid role")
	ErrPhotoNotFound           = errors.New("user has no photo")
	ErrPhotoTooLarge           = errors.New("photo exceeds the allowed size")
	ErrInvalidPhoto            = errors.New("photo must be a jpeg, png or webp image")
	ErrCannotChangeOwnRole     = errors.New("cannot change your own role")
	ErrCannotDeleteSelf        = errors.New("cannot delete your own account")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
)
