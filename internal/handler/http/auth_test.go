package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/absensigeo/absensi-backend-go/internal/domain/auth"
	"github.com/absensigeo/absensi-backend-go/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuthService struct {
	auth.AuthService
	loginErr     error
	session      auth.SessionTrackingRequest
	loggedOut    string
	refreshedFor string
}

func (f *fakeAuthService) Login(ctx context.Context, req auth.LoginRequest, session auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	f.session = session
	if f.loginErr != nil {
		return auth.TokenResponse{}, f.loginErr
	}
	return auth.TokenResponse{
		AccessToken:           "access-" + req.NIP,
		AccessTokenExpiresIn:  time.Now().Add(time.Hour).Unix(),
		RefreshToken:          "refresh-" + req.NIP,
		RefreshTokenExpiresIn: time.Now().Add(24 * time.Hour).Unix(),
	}, nil
}

func (f *fakeAuthService) Logout(ctx context.Context, refreshToken string) error {
	f.loggedOut = refreshToken
	return nil
}

func (f *fakeAuthService) RefreshToken(ctx context.Context, req auth.RefreshTokenRequest) (auth.AccessTokenResponse, error) {
	f.refreshedFor = req.RefreshToken
	if req.RefreshToken == "revoked" {
		return auth.AccessTokenResponse{}, auth.ErrRefreshTokenRevoked
	}
	return auth.AccessTokenResponse{AccessToken: "new-access"}, nil
}

func TestAuthHandler_Login(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		strings.NewReader(`{"nip":"198706152010011002","password":"rahasia123"}`))
	req.Header.Set("User-Agent", "absensi-android/1.0")
	rec := env.do(t, req, "")

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decodeEnvelope(t, rec)
	assert.True(t, body.Success)
	assert.Contains(t, string(body.Data), `"access_token":"access-198706152010011002"`)
	assert.Equal(t, "absensi-android/1.0", env.auth.session.UserAgent)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "refresh_token", cookies[0].Name)
	assert.Equal(t, "refresh-198706152010011002", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestAuthHandler_Login_Errors(t *testing.T) {
	t.Run("malformed body", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.do(t, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{`)), "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("validation", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.do(t, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
			strings.NewReader(`{"nip":"12","password":""}`)), "")
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		body := decodeEnvelope(t, rec)
		assert.Equal(t, "nip must be 5-20 digits", body.Error.Details["nip"])
		assert.Equal(t, "password is required", body.Error.Details["password"])
	})

	t.Run("bad credentials", func(t *testing.T) {
		env := newTestEnv(t)
		env.auth.loginErr = auth.ErrInvalidCredentials
		rec := env.do(t, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
			strings.NewReader(`{"nip":"198706152010011002","password":"salah"}`)), "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAuthHandler_Refresh_PrefersCookie(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", strings.NewReader(`{"refresh_token":"from-body"}`))
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: "from-cookie"})
	rec := env.do(t, req, "")

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "from-cookie", env.auth.refreshedFor)

	rec = env.do(t, httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", strings.NewReader(`{"refresh_token":"revoked"}`)), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthHandler_Logout_RevokesAccessToken(t *testing.T) {
	env := newTestEnv(t)
	access := env.token(t, user.RoleTeacher)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", strings.NewReader(`{"refresh_token":"r-1"}`))
	rec := env.do(t, req, access)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "r-1", env.auth.loggedOut)
	assert.True(t, env.jwt.IsTokenRevoked(access))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)

	rec = env.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil), access)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
