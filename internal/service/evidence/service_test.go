package evidence

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"testing"
	"time"

	"github.com/absensigeo/absensi-backend-go/internal/domain/attendance"
	"github.com/absensigeo/absensi-backend-go/internal/domain/evidence"
	"github.com/absensigeo/absensi-backend-go/internal/domain/user"
	"github.com/absensigeo/absensi-backend-go/internal/pkg/jwt"
	"github.com/absensigeo/absensi-backend-go/internal/service/file"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var wib = time.FixedZone("WIB", 7*3600)

type fakeRepo struct {
	evidence.EvidenceRepository
	entries   map[string]evidence.TeachingEvidence
	from, to  time.Time
	steps     []string
	upsertErr error
}

// fakeTx runs fn inline and records the transaction boundaries in the repo log.
type fakeTx struct {
	repo *fakeRepo
}

func (tx fakeTx) WithinTransaction(ctx context.Context, fn func(txCtx context.Context) error) error {
	tx.repo.steps = append(tx.repo.steps, "begin")
	if err := fn(ctx); err != nil {
		tx.repo.steps = append(tx.repo.steps, "rollback")
		return err
	}
	tx.repo.steps = append(tx.repo.steps, "commit")
	return nil
}

func (r *fakeRepo) LockUserDay(ctx context.Context, userID string, day time.Time) error {
	r.steps = append(r.steps, "lock "+key(userID, day))
	return nil
}

func key(userID string, day time.Time) string {
	return userID + "|" + day.Format("2006-01-02")
}

func (r *fakeRepo) GetByUserDay(ctx context.Context, userID string, day time.Time) (evidence.TeachingEvidence, error) {
	r.steps = append(r.steps, "get")
	e, ok := r.entries[key(userID, day)]
	if !ok {
		return evidence.TeachingEvidence{}, evidence.ErrEvidenceNotFound
	}
	return e, nil
}

func (r *fakeRepo) Upsert(ctx context.Context, e evidence.TeachingEvidence) (evidence.TeachingEvidence, error) {
	r.steps = append(r.steps, "upsert")
	if r.upsertErr != nil {
		return evidence.TeachingEvidence{}, r.upsertErr
	}
	k := key(e.UserID, e.WorkDate)
	if existing, ok := r.entries[k]; ok {
		e.ID = existing.ID
	} else {
		e.ID = fmt.Sprintf("ev-%d", len(r.entries)+1)
	}
	e.UpdatedAt = time.Date(2025, 1, 6, 3, 0, 0, 0, time.UTC)
	r.entries[k] = e
	return e, nil
}

func (r *fakeRepo) ListForUser(ctx context.Context, userID string, from, to time.Time) ([]evidence.TeachingEvidence, error) {
	r.from, r.to = from, to
	var out []evidence.TeachingEvidence
	for _, e := range r.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeFiles struct {
	file.FileService
	n       int
	deleted []string
}

func (f *fakeFiles) UploadEvidence(ctx context.Context, userID string, day time.Time, r io.Reader, filename string) (string, error) {
	f.n++
	return fmt.Sprintf("evidence/%s/%s-%d.pdf", userID, day.Format("2006-01-02"), f.n), nil
}

func (f *fakeFiles) DeleteFile(ctx context.Context, key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeFiles) URL(ctx context.Context, key string) string { return "/uploads/" + key }

type nopFile struct{ *bytes.Reader }

func (nopFile) Close() error { return nil }

func upload(topic string) evidence.UploadEvidenceRequest {
	return evidence.UploadEvidenceRequest{
		Topic:       topic,
		Description: "Chapter 3 exercises",
		File:        nopFile{bytes.NewReader([]byte("%PDF"))},
		FileHeader:  &multipart.FileHeader{Filename: "jurnal.pdf", Size: 4},
	}
}

func ctxAs(t *testing.T, id string, role user.Role) context.Context {
	t.Helper()
	ja := jwtauth.New("HS256", []byte("test-secret"), nil)
	ctx, err := jwt.NewContext(context.Background(), ja, jwt.Claims{UserID: id, NIP: "12345", Name: id, Role: role})
	require.NoError(t, err)
	return ctx
}

func newService(now time.Time) (*evidenceServiceImpl, *fakeRepo, *fakeFiles) {
	repo := &fakeRepo{entries: map[string]evidence.TeachingEvidence{}}
	files := &fakeFiles{}
	svc := NewEvidenceService(fakeTx{repo: repo}, repo, files, Window{
		Location: wib,
		Until:    attendance.Clock{Hour: 16},
		MaxDays:  31,
	}).(*evidenceServiceImpl)
	svc.now = func() time.Time { return now }
	return svc, repo, files
}

func TestUpload(t *testing.T) {
	svc, repo, files := newService(time.Date(2025, 1, 6, 10, 0, 0, 0, wib))
	ctx := ctxAs(t, "u1", user.RoleTeacher)

	first, err := svc.Upload(ctx, upload("Algebra"))
	require.NoError(t, err)
	assert.Equal(t, "2025-01-06", first.Date)
	assert.Equal(t, "jurnal.pdf", first.FileName)
	assert.Equal(t, "/uploads/evidence/u1/2025-01-06-1.pdf", first.URL)
	assert.Equal(t, "2025-01-06T10:00:00+07:00", first.UploadedAt)

	second, err := svc.Upload(ctx, upload("Geometry"))
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Geometry", second.Topic)
	assert.Len(t, repo.entries, 1)
	assert.Equal(t, []string{"evidence/u1/2025-01-06-1.pdf"}, files.deleted)
}

func TestUpload_ReplacesUnderDayLock(t *testing.T) {
	svc, repo, files := newService(time.Date(2025, 1, 6, 10, 0, 0, 0, wib))
	ctx := ctxAs(t, "u1", user.RoleTeacher)

	_, err := svc.Upload(ctx, upload("Algebra"))
	require.NoError(t, err)
	repo.steps = nil

	_, err = svc.Upload(ctx, upload("Geometry"))
	require.NoError(t, err)
	assert.Equal(t, []string{"begin", "lock u1|2025-01-06", "get", "upsert", "commit"}, repo.steps)
	assert.Equal(t, []string{"evidence/u1/2025-01-06-1.pdf"}, files.deleted)
	assert.Equal(t, "evidence/u1/2025-01-06-2.pdf", repo.entries["u1|2025-01-06"].FilePath)
}

func TestUpload_SaveFailureKeepsPrevious(t *testing.T) {
	svc, repo, files := newService(time.Date(2025, 1, 6, 10, 0, 0, 0, wib))
	ctx := ctxAs(t, "u1", user.RoleTeacher)

	_, err := svc.Upload(ctx, upload("Algebra"))
	require.NoError(t, err)

	repo.upsertErr = errors.New("db down")
	_, err = svc.Upload(ctx, upload("Geometry"))
	assert.Error(t, err)
	assert.Equal(t, []string{"evidence/u1/2025-01-06-2.pdf"}, files.deleted)
	assert.Equal(t, "evidence/u1/2025-01-06-1.pdf", repo.entries["u1|2025-01-06"].FilePath)
}

func TestUpload_Cutoff(t *testing.T) {
	svc, _, _ := newService(time.Date(2025, 1, 6, 15, 59, 59, 0, wib))
	_, err := svc.Upload(ctxAs(t, "u1", user.RoleTeacher), upload("Algebra"))
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Date(2025, 1, 6, 16, 0, 0, 0, wib) }
	_, err = svc.Upload(ctxAs(t, "u1", user.RoleTeacher), upload("Algebra"))
	assert.ErrorIs(t, err, evidence.ErrEvidenceClosed)
}

func TestUpload_Rejections(t *testing.T) {
	svc, _, _ := newService(time.Date(2025, 1, 6, 9, 0, 0, 0, wib))

	_, err := svc.Upload(ctxAs(t, "a1", user.RoleAdmin), upload("Algebra"))
	assert.ErrorIs(t, err, evidence.ErrEvidenceForbidden)

	req := upload("Algebra")
	req.File, req.FileHeader = nil, nil
	_, err = svc.Upload(ctxAs(t, "u1", user.RoleTeacher), req)
	assert.Error(t, err)
}

func TestHistory(t *testing.T) {
	svc, repo, _ := newService(time.Date(2025, 1, 6, 9, 0, 0, 0, wib))
	ctx := ctxAs(t, "u1", user.RoleTeacher)

	resp, err := svc.MyHistory(ctx, evidence.HistoryFilter{})
	require.NoError(t, err)
	assert.Equal(t, "2024-12-31", resp.From)
	assert.Equal(t, "2025-01-06", resp.To)
	assert.NotNil(t, resp.Evidence)

	resp, err = svc.MyHistory(ctx, evidence.HistoryFilter{Days: 90})
	require.NoError(t, err)
	assert.Equal(t, "2024-12-07", resp.From)
	assert.Equal(t, "2024-12-07", repo.from.Format("2006-01-02"))
}

func TestListForUser(t *testing.T) {
	svc, _, _ := newService(time.Date(2025, 1, 6, 9, 0, 0, 0, wib))

	_, err := svc.ListForUser(ctxAs(t, "u2", user.RoleTeacher), "u1", evidence.HistoryFilter{})
	assert.ErrorIs(t, err, evidence.ErrEvidenceForbidden)

	_, err = svc.ListForUser(ctxAs(t, "h1", user.RoleHead), "u1", evidence.HistoryFilter{})
	assert.NoError(t, err)
}
