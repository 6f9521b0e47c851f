package auth

import (
	"context"
	"testing"

	"github.com/absensigeo/absensi-backend-go/internal/domain/auth"
	"github.com/absensigeo/absensi-backend-go/internal/domain/user"
	"github.com/absensigeo/absensi-backend-go/internal/pkg/jwt"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	testAccessExp  = "1h"
	testRefreshExp = "24h"
	testSecret     = "test-secret-key-for-jwt"
)

type noopTransactor struct{}

func (noopTransactor) WithinTransaction(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

type fakeUsers struct {
	user.UserRepository
	byID map[string]user.User
}

func (f *fakeUsers) GetByNIP(ctx context.Context, nip string) (user.User, error) {
	for _, u := range f.byID {
		if u.NIP == nip {
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (f *fakeUsers) GetByID(ctx context.Context, id string) (user.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUsers) UpdatePassword(ctx context.Context, id, hash string) error {
	u := f.byID[id]
	u.PasswordHash = hash
	f.byID[id] = u
	return nil
}

type fakeTokens struct {
	owner   map[string]string
	revoked map[string]bool
}

func newFakeTokens() *fakeTokens {
	return &fakeTokens{owner: map[string]string{}, revoked: map[string]bool{}}
}

func (f *fakeTokens) CreateRefreshToken(ctx context.Context, userID, token string, expiresAt int64, s auth.SessionTrackingRequest) error {
	f.owner[token] = userID
	return nil
}

func (f *fakeTokens) IsRefreshTokenRevoked(ctx context.Context, token string) (string, bool, error) {
	userID, ok := f.owner[token]
	if !ok {
		return "", true, nil
	}
	return userID, f.revoked[token], nil
}

func (f *fakeTokens) RevokeRefreshToken(ctx context.Context, token string) error {
	f.revoked[token] = true
	return nil
}

func (f *fakeTokens) RevokeAllForUser(ctx context.Context, userID string) error {
	for token, owner := range f.owner {
		if owner == userID {
			f.revoked[token] = true
		}
	}
	return nil
}

func (f *fakeTokens) DeleteExpired(ctx context.Context) (int64, error) { return 0, nil }

func newTestService(t *testing.T) (*AuthServiceImpl, *fakeUsers, *fakeTokens) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	users := &fakeUsers{byID: map[string]user.User{
		"u-1": {ID: "u-1", Name: "Sari", NIP: "198706152010011002", PasswordHash: string(hash), Role: user.RoleTeacher},
	}}
	tokens := newFakeTokens()
	svc := NewAuthService(noopTransactor{}, users, jwt.NewJWTService(testSecret, testAccessExp, testRefreshExp), tokens)
	return svc.(*AuthServiceImpl), users, tokens
}

func TestAuthService_Login_Success(t *testing.T) {
	svc, _, tokens := newTestService(t)
	ctx := context.Background()

	resp, err := svc.Login(ctx,
		auth.LoginRequest{NIP: "198706152010011002", Password: "password123"},
		auth.SessionTrackingRequest{IPAddress: "127.0.0.1", UserAgent: "Mozilla/5.0"},
	)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Greater(t, resp.AccessTokenExpiresIn, int64(0))
	assert.Equal(t, "u-1", tokens.owner[resp.RefreshToken])

	token, err := jwtauth.VerifyToken(svc.JWTAuth(), resp.AccessToken)
	require.NoError(t, err)
	role, _ := token.Get("role")
	nip, _ := token.Get("nip")
	typ, _ := token.Get("type")
	assert.Equal(t, "teacher", role)
	assert.Equal(t, "198706152010011002", nip)
	assert.Equal(t, "access", typ)
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Login(ctx, auth.LoginRequest{NIP: "198706152010011002", Password: "wrong"}, auth.SessionTrackingRequest{})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = svc.Login(ctx, auth.LoginRequest{NIP: "99999", Password: "password123"}, auth.SessionTrackingRequest{})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestAuthService_RefreshToken(t *testing.T) {
	svc, users, _ := newTestService(t)
	ctx := context.Background()

	login, err := svc.Login(ctx, auth.LoginRequest{NIP: "198706152010011002", Password: "password123"}, auth.SessionTrackingRequest{})
	require.NoError(t, err)

	// a role change is picked up on refresh
	u := users.byID["u-1"]
	u.Role = user.RoleHead
	users.byID["u-1"] = u

	resp, err := svc.RefreshToken(ctx, auth.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	token, err := jwtauth.VerifyToken(svc.JWTAuth(), resp.AccessToken)
	require.NoError(t, err)
	role, _ := token.Get("role")
	assert.Equal(t, "head", role)
}

func TestAuthService_RefreshToken_Rejects(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.RefreshToken(ctx, auth.RefreshTokenRequest{RefreshToken: "not-a-jwt"})
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	// an access token is not a refresh token
	login, err := svc.Login(ctx, auth.LoginRequest{NIP: "198706152010011002", Password: "password123"}, auth.SessionTrackingRequest{})
	require.NoError(t, err)
	_, err = svc.RefreshToken(ctx, auth.RefreshTokenRequest{RefreshToken: login.AccessToken})
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	require.NoError(t, svc.Logout(ctx, login.RefreshToken))
	_, err = svc.RefreshToken(ctx, auth.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	assert.ErrorIs(t, err, auth.ErrRefreshTokenRevoked)

	// logging out twice is fine
	assert.NoError(t, svc.Logout(ctx, login.RefreshToken))
}

func TestAuthService_ChangePassword(t *testing.T) {
	svc, users, tokens := newTestService(t)

	login, err := svc.Login(context.Background(), auth.LoginRequest{NIP: "198706152010011002", Password: "password123"}, auth.SessionTrackingRequest{})
	require.NoError(t, err)

	ctx, err := jwt.NewContext(context.Background(), svc.JWTAuth(), jwt.Claims{UserID: "u-1", NIP: "198706152010011002", Role: user.RoleTeacher})
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, auth.ChangePasswordRequest{CurrentPassword: "nope", NewPassword: "newpassword1", ConfirmPassword: "newpassword1"})
	assert.ErrorIs(t, err, auth.ErrWrongPassword)

	err = svc.ChangePassword(ctx, auth.ChangePasswordRequest{CurrentPassword: "password123", NewPassword: "newpassword1", ConfirmPassword: "newpassword1"})
	require.NoError(t, err)

	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(users.byID["u-1"].PasswordHash), []byte("newpassword1")))
	assert.True(t, tokens.revoked[login.RefreshToken])

	assert.ErrorIs(t, svc.ChangePassword(context.Background(), auth.ChangePasswordRequest{}), jwt.ErrNoIdentity)
}
