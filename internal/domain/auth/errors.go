package auth

import "errors"

var (
	ErrInvalidCredentials  = errors.New("invalid nip or password")
	ErrWrongPassword       = errors.New("current password is incorrect")
	ErrInvalidToken        = errors.New("invalid or expired token")
	ErrRefreshTokenRevoked = errors.New("refresh token has been revoked")
)
