package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/absensigeo/absensi-backend-go/internal/domain/letter"
	"github.com/absensigeo/absensi-backend-go/internal/domain/schedule"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeScheduleService struct {
	schedule.ScheduleService
	updated schedule.UpsertScheduleRequest
	filter  schedule.ScheduleFilter
}

func (f *fakeScheduleService) Update(ctx context.Context, req schedule.UpsertScheduleRequest) (schedule.ScheduleResponse, error) {
	f.updated = req
	if req.ID == "missing" {
		return schedule.ScheduleResponse{}, schedule.ErrScheduleNotFound
	}
	return schedule.ScheduleResponse{ID: req.ID, TeacherName: req.TeacherName}, nil
}

func (f *fakeScheduleService) List(ctx context.Context, filter schedule.ScheduleFilter) (schedule.ListScheduleResponse, error) {
	f.filter = filter
	return schedule.ListScheduleResponse{}, nil
}

type fakeLetterService struct {
	letter.LetterService
	deleted string
}

func (f *fakeLetterService) Delete(ctx context.Context, id string) error {
	f.deleted = id
	return nil
}

func TestScheduleHandler_Update(t *testing.T) {
	svc := &fakeScheduleService{}
	h := NewScheduleHandler(svc)
	r := chi.NewRouter()
	r.Put("/schedules/{id}", h.Update)

	body := `{"teacher_name":"Budi","class_name":"VII A","day":"monday","start_time":"07:30","end_time":"09:00","subject":"IPA"}`
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/schedules/s-1", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "s-1", svc.updated.ID)
	assert.Equal(t, "Budi", svc.updated.TeacherName)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/schedules/missing", strings.NewReader(body)))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestScheduleHandler_ListFilters(t *testing.T) {
	svc := &fakeScheduleService{}
	h := NewScheduleHandler(svc)

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/schedules?day=friday", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.filter.Day)
	assert.Equal(t, "friday", *svc.filter.Day)
	assert.Nil(t, svc.filter.TeacherName)
}

func TestLetterHandler_Delete(t *testing.T) {
	svc := &fakeLetterService{}
	r := chi.NewRouter()
	r.Delete("/letter-templates/{id}", NewLetterHandler(svc).Delete)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/letter-templates/l-9", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "l-9", svc.deleted)
}
