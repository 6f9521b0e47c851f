package letter

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"testing"
	"time"

	"github.com/absensigeo/absensi-backend-go/internal/domain/letter"
	"github.com/absensigeo/absensi-backend-go/internal/domain/user"
	"github.com/absensigeo/absensi-backend-go/internal/pkg/jwt"
	"github.com/absensigeo/absensi-backend-go/internal/service/file"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	letter.LetterRepository
	templates []letter.LetterTemplate
	failNext  bool
}

func (r *fakeRepo) Create(ctx context.Context, t letter.LetterTemplate) (letter.LetterTemplate, error) {
	if r.failNext {
		return letter.LetterTemplate{}, errors.New("insert failed")
	}
	t.ID = "lt-1"
	t.CreatedAt = time.Date(2025, 1, 6, 1, 0, 0, 0, time.UTC)
	r.templates = append(r.templates, t)
	return t, nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id string) (letter.LetterTemplate, error) {
	for _, t := range r.templates {
		if t.ID == id {
			return t, nil
		}
	}
	return letter.LetterTemplate{}, letter.ErrLetterTemplateNotFound
}

func (r *fakeRepo) Delete(ctx context.Context, id string) error {
	for i, t := range r.templates {
		if t.ID == id {
			r.templates = append(r.templates[:i], r.templates[i+1:]...)
			return nil
		}
	}
	return letter.ErrLetterTemplateNotFound
}

func (r *fakeRepo) List(ctx context.Context) ([]letter.LetterTemplate, error) {
	return r.templates, nil
}

type fakeFiles struct {
	file.FileService
	deleted []string
}

func (f *fakeFiles) UploadLetterTemplate(ctx context.Context, r io.Reader, filename string) (string, error) {
	return "letters/abc.docx", nil
}

func (f *fakeFiles) DeleteFile(ctx context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeFiles) URL(ctx context.Context, key string) string { return "/uploads/" + key }

type nopFile struct{ *bytes.Reader }

func (nopFile) Close() error { return nil }

func ctxAs(t *testing.T, role user.Role) context.Context {
	t.Helper()
	ja := jwtauth.New("HS256", []byte("test-secret"), nil)
	ctx, err := jwt.NewContext(context.Background(), ja, jwt.Claims{UserID: "u-" + string(role), NIP: "12345", Name: "Tester", Role: role})
	require.NoError(t, err)
	return ctx
}

func uploadRequest() letter.UploadLetterRequest {
	return letter.UploadLetterRequest{
		Title:      "Surat Izin",
		File:       nopFile{bytes.NewReader([]byte("doc"))},
		FileHeader: &multipart.FileHeader{Filename: "izin.docx", Size: 3},
	}
}

func TestUploadListDelete(t *testing.T) {
	repo, files := &fakeRepo{}, &fakeFiles{}
	svc := NewLetterService(repo, files)

	_, err := svc.Upload(ctxAs(t, user.RoleTeacher), uploadRequest())
	assert.ErrorIs(t, err, letter.ErrLetterForbidden)

	created, err := svc.Upload(ctxAs(t, user.RoleStaff), uploadRequest())
	require.NoError(t, err)
	assert.Equal(t, "Surat Izin", created.Title)
	assert.Equal(t, "/uploads/letters/abc.docx", created.URL)
	assert.Equal(t, "u-staff", repo.templates[0].CreatedBy)

	list, err := svc.List(ctxAs(t, user.RoleTeacher))
	require.NoError(t, err)
	assert.Len(t, list, 1)

	assert.ErrorIs(t, svc.Delete(ctxAs(t, user.RoleHead), "lt-1"), letter.ErrLetterForbidden)
	require.NoError(t, svc.Delete(ctxAs(t, user.RoleAdmin), "lt-1"))
	assert.Equal(t, []string{"letters/abc.docx"}, files.deleted)
	assert.ErrorIs(t, svc.Delete(ctxAs(t, user.RoleAdmin), "lt-1"), letter.ErrLetterTemplateNotFound)
}

func TestUpload_InsertFailureRemovesFile(t *testing.T) {
	repo, files := &fakeRepo{failNext: true}, &fakeFiles{}
	svc := NewLetterService(repo, files)

	_, err := svc.Upload(ctxAs(t, user.RoleAdmin), uploadRequest())
	assert.Error(t, err)
	assert.Equal(t, []string{"letters/abc.docx"}, files.deleted)
}

func TestUpload_InvalidFile(t *testing.T) {
	svc := NewLetterService(&fakeRepo{}, &fakeFiles{})
	req := uploadRequest()
	req.FileHeader.Filename = "virus.exe"
	_, err := svc.Upload(ctxAs(t, user.RoleAdmin), req)
	assert.Error(t, err)
}
