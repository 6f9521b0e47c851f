package user

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"testing"
	"time"

	"github.com/absensigeo/absensi-backend-go/internal/domain/user"
	"github.com/absensigeo/absensi-backend-go/internal/pkg/cache"
	"github.com/absensigeo/absensi-backend-go/internal/pkg/jwt"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/jwtauth/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeRepo struct {
	user.UserRepository
	users     map[string]user.User
	photos    map[string]user.Photo
	nameCalls int
}

func newFakeRepo(users ...user.User) *fakeRepo {
	r := &fakeRepo{users: map[string]user.User{}, photos: map[string]user.Photo{}}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	u, ok := r.users[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

func (r *fakeRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	for _, existing := range r.users {
		if existing.NIP == u.NIP {
			return user.User{}, user.ErrUserNIPExists
		}
	}
	u.ID = "u-new"
	r.users[u.ID] = u
	return u, nil
}

func (r *fakeRepo) Update(ctx context.Context, id string, req user.UpdateProfileRequest) error {
	u := r.users[id]
	if req.Name != nil {
		u.Name = *req.Name
	}
	if req.Email != nil {
		u.Email = *req.Email
	}
	r.users[id] = u
	return nil
}

func (r *fakeRepo) UpdateRole(ctx context.Context, id string, role user.Role) error {
	u := r.users[id]
	u.Role = role
	r.users[id] = u
	return nil
}

func (r *fakeRepo) UpdatePhoto(ctx context.Context, id string, photo user.Photo) error {
	r.photos[id] = photo
	u := r.users[id]
	u.HasPhoto = true
	r.users[id] = u
	return nil
}

func (r *fakeRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return user.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *fakeRepo) List(ctx context.Context, filter user.ListUserFilter) ([]user.User, int64, error) {
	var list []user.User
	for _, u := range r.users {
		list = append(list, u)
	}
	return list, int64(len(list)), nil
}

func (r *fakeRepo) ListNamesByRole(ctx context.Context, role user.Role) ([]string, error) {
	r.nameCalls++
	var names []string
	for _, u := range r.users {
		if u.Role == role {
			names = append(names, u.Name)
		}
	}
	return names, nil
}

var ja = jwtauth.New("HS256", []byte("test-secret"), nil)

func asUser(t *testing.T, id string, role user.Role) context.Context {
	t.Helper()
	ctx, err := jwt.NewContext(context.Background(), ja, jwt.Claims{UserID: id, Role: role})
	require.NoError(t, err)
	return ctx
}

func newTestService(t *testing.T, repo *fakeRepo) (*UserServiceImpl, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	svc := NewUserService(repo, cache.NewCacheHelper(client, "", time.Minute), 800).(*UserServiceImpl)
	svc.bcryptCost = bcrypt.MinCost
	return svc, mr
}

func TestUserService_Register(t *testing.T) {
	repo := newFakeRepo()
	svc, mr := newTestService(t, repo)
	ctx := asUser(t, "admin", user.RoleAdmin)
	mr.Set(keyTeacherNames, `["stale"]`)

	resp, err := svc.Register(ctx, user.RegisterUserRequest{
		Name: "Sari", NIP: "198706152010011002", Email: " Sari@Sekolah.sch.id ", Password: "password123", Role: "teacher",
	})
	require.NoError(t, err)
	assert.Equal(t, "sari@sekolah.sch.id", resp.Email)
	assert.Equal(t, "teacher", resp.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.users["u-new"].PasswordHash), []byte("password123")))
	assert.False(t, mr.Exists(keyTeacherNames))

	_, err = svc.Register(ctx, user.RegisterUserRequest{
		Name: "Other", NIP: "198706152010011002", Email: "o@sekolah.sch.id", Password: "password123", Role: "staff",
	})
	assert.ErrorIs(t, err, user.ErrUserNIPExists)

	_, err = svc.Register(ctx, user.RegisterUserRequest{
		Name: "Root", NIP: "123456", Email: "r@sekolah.sch.id", Password: "password123", Role: "admin",
	})
	assert.Error(t, err)
}

func TestUserService_GetProfile_Cached(t *testing.T) {
	repo := newFakeRepo(user.User{ID: "u-1", Name: "Sari", Role: user.RoleTeacher})
	svc, mr := newTestService(t, repo)
	ctx := asUser(t, "u-1", user.RoleTeacher)

	resp, err := svc.GetProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Sari", resp.Name)
	assert.Nil(t, resp.PhotoURL)
	assert.True(t, mr.Exists(profileKey("u-1")))

	// served from cache even though the row changed underneath
	u := repo.users["u-1"]
	u.Name = "Sari W."
	repo.users["u-1"] = u
	resp, err = svc.GetProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Sari", resp.Name)

	name := "Sari Wulandari"
	resp, err = svc.UpdateProfile(ctx, user.UpdateProfileRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Sari Wulandari", resp.Name)
	assert.False(t, mr.Exists(profileKey("u-1")))
}

func pngOfSize(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = byte(i*7919 + i/3)
	}
	var buf bytes.Buffer
	require.NoError(t, (&png.Encoder{CompressionLevel: png.NoCompression}).Encode(&buf, img))
	return buf.Bytes()
}

func TestUserService_UploadPhoto(t *testing.T) {
	repo := newFakeRepo(user.User{ID: "u-1", Name: "Sari", Role: user.RoleTeacher})
	svc, _ := newTestService(t, repo)
	ctx := asUser(t, "u-1", user.RoleTeacher)

	small := pngOfSize(t, 16, 16)
	require.NoError(t, svc.UploadPhoto(ctx, bytes.NewReader(small)))
	assert.Equal(t, "image/png", repo.photos["u-1"].ContentType)
	assert.Equal(t, small, repo.photos["u-1"].Data)

	resp, err := svc.GetProfile(ctx)
	require.NoError(t, err)
	require.NotNil(t, resp.PhotoURL)
	assert.Equal(t, "/api/v1/users/u-1/photo", *resp.PhotoURL)

	// 400x400 RGBA uncompressed is ~640KB raw, ~853KB once base64 encoded
	large := pngOfSize(t, 400, 400)
	assert.ErrorIs(t, svc.UploadPhoto(ctx, bytes.NewReader(large)), user.ErrPhotoTooLarge)

	assert.ErrorIs(t, svc.UploadPhoto(ctx, bytes.NewReader([]byte("not an image"))), user.ErrInvalidPhoto)
	assert.ErrorIs(t, svc.UploadPhoto(ctx, bytes.NewReader(nil)), user.ErrInvalidPhoto)
}

func TestUserService_ChangeRole(t *testing.T) {
	repo := newFakeRepo(
		user.User{ID: "head", Name: "Kepala", Role: user.RoleHead},
		user.User{ID: "u-1", Name: "Sari", Role: user.RoleTeacher},
		user.User{ID: "admin", Name: "Operator", Role: user.RoleAdmin},
	)
	svc, _ := newTestService(t, repo)
	ctx := asUser(t, "head", user.RoleHead)

	resp, err := svc.ChangeRole(ctx, user.ChangeRoleRequest{ID: "u-1", Role: "staff"})
	require.NoError(t, err)
	assert.Equal(t, "staff", resp.Role)
	assert.Equal(t, user.RoleStaff, repo.users["u-1"].Role)

	_, err = svc.ChangeRole(ctx, user.ChangeRoleRequest{ID: "head", Role: "teacher"})
	assert.ErrorIs(t, err, user.ErrCannotChangeOwnRole)

	_, err = svc.ChangeRole(ctx, user.ChangeRoleRequest{ID: "admin", Role: "teacher"})
	assert.ErrorIs(t, err, user.ErrInsufficientPermissions)

	_, err = svc.ChangeRole(ctx, user.ChangeRoleRequest{ID: "missing", Role: "teacher"})
	assert.ErrorIs(t, err, user.ErrUserNotFound)

	teacherCtx := asUser(t, "u-1", user.RoleTeacher)
	_, err = svc.ChangeRole(teacherCtx, user.ChangeRoleRequest{ID: "head", Role: "teacher"})
	assert.ErrorIs(t, err, user.ErrInsufficientPermissions)
}

func TestUserService_Delete(t *testing.T) {
	repo := newFakeRepo(user.User{ID: "admin", Role: user.RoleAdmin}, user.User{ID: "u-1", Role: user.RoleTeacher})
	svc, _ := newTestService(t, repo)
	ctx := asUser(t, "admin", user.RoleAdmin)

	assert.ErrorIs(t, svc.Delete(ctx, "admin"), user.ErrCannotDeleteSelf)
	require.NoError(t, svc.Delete(ctx, "u-1"))
	assert.ErrorIs(t, svc.Delete(ctx, "u-1"), user.ErrUserNotFound)
}

func TestUserService_TeacherNames(t *testing.T) {
	repo := newFakeRepo(
		user.User{ID: "1", Name: "Budi", Role: user.RoleTeacher},
		user.User{ID: "2", Name: "Tata Usaha", Role: user.RoleStaff},
	)
	svc, _ := newTestService(t, repo)
	ctx := context.Background()

	names, err := svc.TeacherNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Budi"}, names)

	_, err = svc.TeacherNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.nameCalls)
}

func TestUserService_List(t *testing.T) {
	repo := newFakeRepo(user.User{ID: "1", Name: "Budi", Role: user.RoleTeacher})
	svc, _ := newTestService(t, repo)

	resp, err := svc.List(context.Background(), user.ListUserFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.TotalCount)
	assert.Equal(t, 1, resp.TotalPages)
	assert.Equal(t, "1-1 of 1", resp.Showing)
}
