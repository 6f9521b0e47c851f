package file

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg" // Import for JPEG decoding support
	_ "image/png"  // Import for PNG decoding support
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/absensigeo/absensi-backend-go/internal/pkg/storage"
	"github.com/google/uuid"
	_ "golang.org/x/image/webp" // Import for WebP decoding support
)

// maxImageBytes bounds how much of an uploaded image is buffered for sniffing.
const maxImageBytes = 10 << 20

var contentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".ppt":  "application/vnd.ms-powerpoint",
	".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
}

type FileService interface {
	// UploadAttendancePhoto stores a check-in or check-out photo. The content
	// must decode as JPEG, PNG or WebP.
	UploadAttendancePhoto(ctx context.Context, userID string, day time.Time, kind string, file io.Reader, filename string) (string, error)

	UploadLeaveDocument(ctx context.Context, userID string, file io.Reader, filename string) (string, error)
	UploadEvidence(ctx context.Context, userID string, day time.Time, file io.Reader, filename string) (string, error)
	UploadLetterTemplate(ctx context.Context, file io.Reader, filename string) (string, error)

	// Generic operations
	DeleteFile(ctx context.Context, key string) error
	URL(ctx context.Context, key string) string
}

type fileServiceImpl struct {
	storage storage.FileStorage
}

func NewFileService(storage storage.FileStorage) FileService {
	return &fileServiceImpl{
		storage: storage,
	}
}

// DetectImage returns the image format ("jpeg", "png", "webp") of data.
func DetectImage(data []byte) (string, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: not a jpeg, png or webp image", storage.ErrUnsupportedFile)
	}
	return format, nil
}

func contentTypeFor(ext string) string {
	if ct, ok := contentTypes[ext]; ok {
		return ct
	}
	return "application/octet-stream"
}

func (s *fileServiceImpl) upload(ctx context.Context, file io.Reader, key, label string) (string, error) {
	uploaded, err := s.storage.Upload(ctx, file, key, contentTypeFor(path.Ext(key)))
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", label, err)
	}
	return uploaded, nil
}

// UploadAttendancePhoto implements FileService.
func (s *fileServiceImpl) UploadAttendancePhoto(ctx context.Context, userID string, day time.Time, kind string, file io.Reader, filename string) (string, error) {
	buffer, err := io.ReadAll(io.LimitReader(file, maxImageBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}
	if len(buffer) > maxImageBytes {
		return "", fmt.Errorf("%w: image exceeds 10MB", storage.ErrUnsupportedFile)
	}
	format, err := DetectImage(buffer)
	if err != nil {
		return "", err
	}

	// attendance/{date}/{userID}-{kind}-{timestamp}-{uuid}.{format}
	ext := "." + format
	if format == "jpeg" {
		ext = ".jpg"
	}
	newFilename := fmt.Sprintf("%s-%s-%d-%s%s", userID, kind, time.Now().Unix(), uuid.NewString(), ext)
	key := path.Join("attendance", day.Format("2006-01-02"), newFilename)

	return s.upload(ctx, bytes.NewReader(buffer), key, "attendance photo")
}

// UploadLeaveDocument implements FileService.
func (s *fileServiceImpl) UploadLeaveDocument(ctx context.Context, userID string, file io.Reader, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	key := path.Join("leave", userID, fmt.Sprintf("%s-%d%s", uuid.NewString(), time.Now().Unix(), ext))
	return s.upload(ctx, file, key, "leave document")
}

// UploadEvidence implements FileService.
func (s *fileServiceImpl) UploadEvidence(ctx context.Context, userID string, day time.Time, file io.Reader, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	key := path.Join("evidence", userID, fmt.Sprintf("%s-%s%s", day.Format("2006-01-02"), uuid.NewString(), ext))
	return s.upload(ctx, file, key, "teaching evidence")
}

// UploadLetterTemplate implements FileService.
func (s *fileServiceImpl) UploadLetterTemplate(ctx context.Context, file io.Reader, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	key := path.Join("letters", uuid.NewString()+ext)
	return s.upload(ctx, file, key, "letter template")
}

// DeleteFile deletes a file
func (s *fileServiceImpl) DeleteFile(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	return s.storage.Delete(ctx, key)
}

// URL returns the public URL of a stored key, or "" when key is empty or invalid.
func (s *fileServiceImpl) URL(ctx context.Context, key string) string {
	if key == "" {
		return ""
	}
	url, err := s.storage.GetURL(ctx, key, 0)
	if err != nil {
		return ""
	}
	return url
}
