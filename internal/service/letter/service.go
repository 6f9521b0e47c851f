package letter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/absensigeo/absensi-backend-go/internal/domain/letter"
	"github.com/absensigeo/absensi-backend-go/internal/domain/user"
	"github.com/absensigeo/absensi-backend-go/internal/pkg/jwt"
	"github.com/absensigeo/absensi-backend-go/internal/service/file"
)

type letterServiceImpl struct {
	letter.LetterRepository
	fileService file.FileService
}

func NewLetterService(repo letter.LetterRepository, fileService file.FileService) letter.LetterService {
	return &letterServiceImpl{LetterRepository: repo, fileService: fileService}
}

func authorize(ctx context.Context, permission user.Permission) (jwt.Claims, error) {
	claims, err := jwt.FromContext(ctx)
	if err != nil {
		return jwt.Claims{}, err
	}
	if !claims.Has(permission) {
		return jwt.Claims{}, letter.ErrLetterForbidden
	}
	return claims, nil
}

// Upload implements letter.LetterService.
func (s *letterServiceImpl) Upload(ctx context.Context, req letter.UploadLetterRequest) (letter.LetterTemplateResponse, error) {
	claims, err := authorize(ctx, user.PermissionLetterManage)
	if err != nil {
		return letter.LetterTemplateResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return letter.LetterTemplateResponse{}, err
	}

	key, err := s.fileService.UploadLetterTemplate(ctx, req.File, req.FileHeader.Filename)
	if err != nil {
		return letter.LetterTemplateResponse{}, err
	}

	created, err := s.Create(ctx, letter.LetterTemplate{
		Title:     req.Title,
		FileName:  req.FileHeader.Filename,
		FilePath:  key,
		CreatedBy: claims.UserID,
	})
	if err != nil {
		if delErr := s.fileService.DeleteFile(ctx, key); delErr != nil {
			slog.Warn("Failed to delete orphaned letter template", "key", key, "error", delErr)
		}
		return letter.LetterTemplateResponse{}, err
	}
	return s.toResponse(ctx, created), nil
}

// List implements letter.LetterService.
func (s *letterServiceImpl) List(ctx context.Context) ([]letter.LetterTemplateResponse, error) {
	if _, err := authorize(ctx, user.PermissionLetterView); err != nil {
		return nil, err
	}

	templates, err := s.LetterRepository.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list letter templates: %w", err)
	}

	resp := make([]letter.LetterTemplateResponse, 0, len(templates))
	for _, t := range templates {
		resp = append(resp, s.toResponse(ctx, t))
	}
	return resp, nil
}

// Delete implements letter.LetterService.
func (s *letterServiceImpl) Delete(ctx context.Context, id string) error {
	if _, err := authorize(ctx, user.PermissionLetterManage); err != nil {
		return err
	}

	t, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.LetterRepository.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.fileService.DeleteFile(ctx, t.FilePath); err != nil {
		slog.Warn("Failed to delete letter template file", "key", t.FilePath, "error", err)
	}
	return nil
}

func (s *letterServiceImpl) toResponse(ctx context.Context, t letter.LetterTemplate) letter.LetterTemplateResponse {
	return letter.LetterTemplateResponse{
		ID:        t.ID,
		Title:     t.Title,
		FileName:  t.FileName,
		URL:       s.fileService.URL(ctx, t.FilePath),
		CreatedAt: t.CreatedAt.Format(time.RFC3339),
	}
}
