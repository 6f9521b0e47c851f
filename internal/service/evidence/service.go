package evidence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/absensigeo/absensi-backend-go/internal/domain/attendance"
	"github.com/absensigeo/absensi-backend-go/internal/domain/evidence"
	"github.com/absensigeo/absensi-backend-go/internal/domain/user"
	"github.com/absensigeo/absensi-backend-go/internal/pkg/database"
	"github.com/absensigeo/absensi-backend-go/internal/pkg/jwt"
	"github.com/absensigeo/absensi-backend-go/internal/service/file"
)

// Window is the daily upload window for teaching evidence.
type Window struct {
	Location *time.Location
	Until    attendance.Clock
	MaxDays  int
}

type evidenceServiceImpl struct {
	db database.Transactor
	evidence.EvidenceRepository
	fileService file.FileService
	window      Window
	now         func() time.Time
}

func NewEvidenceService(db database.Transactor, repo evidence.EvidenceRepository, fileService file.FileService, window Window) evidence.EvidenceService {
	if window.Location == nil {
		window.Location = time.Local
	}
	return &evidenceServiceImpl{
		db:                 db,
		EvidenceRepository: repo,
		fileService:        fileService,
		window:             window,
		now:                time.Now,
	}
}

func (s *evidenceServiceImpl) today() (time.Time, time.Time) {
	now := s.now().In(s.window.Location)
	return now, time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.window.Location)
}

// Upload implements evidence.EvidenceService. A second upload on the same
// day replaces the first one.
func (s *evidenceServiceImpl) Upload(ctx context.Context, req evidence.UploadEvidenceRequest) (evidence.EvidenceResponse, error) {
	claims, err := jwt.FromContext(ctx)
	if err != nil {
		return evidence.EvidenceResponse{}, err
	}
	if !claims.Has(user.PermissionEvidenceCreate) {
		return evidence.EvidenceResponse{}, evidence.ErrEvidenceForbidden
	}

	now, day := s.today()
	if !now.Before(s.window.Until.On(now)) {
		return evidence.EvidenceResponse{}, evidence.ErrEvidenceClosed
	}
	if err := req.Validate(); err != nil {
		return evidence.EvidenceResponse{}, err
	}

	key, err := s.fileService.UploadEvidence(ctx, claims.UserID, day, req.File, req.FileHeader.Filename)
	if err != nil {
		return evidence.EvidenceResponse{}, err
	}

	var (
		saved    evidence.TeachingEvidence
		previous string
	)
	err = s.db.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.LockUserDay(txCtx, claims.UserID, day); err != nil {
			return err
		}

		old, err := s.GetByUserDay(txCtx, claims.UserID, day)
		switch {
		case err == nil:
			previous = old.FilePath
		case !errors.Is(err, evidence.ErrEvidenceNotFound):
			return fmt.Errorf("failed to load today's evidence: %w", err)
		}

		saved, err = s.Upsert(txCtx, evidence.TeachingEvidence{
			UserID:      claims.UserID,
			WorkDate:    day,
			FileName:    req.FileHeader.Filename,
			FilePath:    key,
			Topic:       req.Topic,
			Description: req.Description,
		})
		return err
	})
	if err != nil {
		s.remove(ctx, key)
		return evidence.EvidenceResponse{}, fmt.Errorf("failed to save teaching evidence: %w", err)
	}

	if previous != "" && previous != key {
		s.remove(ctx, previous)
	}
	return s.toResponse(ctx, saved), nil
}

func (s *evidenceServiceImpl) remove(ctx context.Context, key string) {
	if err := s.fileService.DeleteFile(ctx, key); err != nil {
		slog.Warn("Failed to delete evidence file", "key", key, "error", err)
	}
}

// MyHistory implements evidence.EvidenceService.
func (s *evidenceServiceImpl) MyHistory(ctx context.Context, filter evidence.HistoryFilter) (evidence.ListEvidenceResponse, error) {
	claims, err := jwt.FromContext(ctx)
	if err != nil {
		return evidence.ListEvidenceResponse{}, err
	}
	return s.history(ctx, claims.UserID, filter)
}

// ListForUser implements evidence.EvidenceService.
func (s *evidenceServiceImpl) ListForUser(ctx context.Context, userID string, filter evidence.HistoryFilter) (evidence.ListEvidenceResponse, error) {
	claims, err := jwt.FromContext(ctx)
	if err != nil {
		return evidence.ListEvidenceResponse{}, err
	}
	if claims.UserID != userID && !claims.Has(user.PermissionEvidenceViewAll) {
		return evidence.ListEvidenceResponse{}, evidence.ErrEvidenceForbidden
	}
	return s.history(ctx, userID, filter)
}

func (s *evidenceServiceImpl) history(ctx context.Context, userID string, filter evidence.HistoryFilter) (evidence.ListEvidenceResponse, error) {
	if err := filter.Validate(s.window.MaxDays); err != nil {
		return evidence.ListEvidenceResponse{}, err
	}

	_, to := s.today()
	from := to.AddDate(0, 0, -(filter.Days - 1))

	entries, err := s.EvidenceRepository.ListForUser(ctx, userID, from, to)
	if err != nil {
		return evidence.ListEvidenceResponse{}, fmt.Errorf("failed to list teaching evidence: %w", err)
	}

	resp := evidence.ListEvidenceResponse{
		From:     from.Format("2006-01-02"),
		To:       to.Format("2006-01-02"),
		Evidence: make([]evidence.EvidenceResponse, 0, len(entries)),
	}
	for _, e := range entries {
		resp.Evidence = append(resp.Evidence, s.toResponse(ctx, e))
	}
	return resp, nil
}

func (s *evidenceServiceImpl) toResponse(ctx context.Context, e evidence.TeachingEvidence) evidence.EvidenceResponse {
	return evidence.EvidenceResponse{
		ID:          e.ID,
		UserID:      e.UserID,
		Date:        e.WorkDate.Format("2006-01-02"),
		FileName:    e.FileName,
		URL:         s.fileService.URL(ctx, e.FilePath),
		Topic:       e.Topic,
		Description: e.Description,
		UploadedAt:  e.UpdatedAt.In(s.window.Location).Format(time.RFC3339),
	}
}
