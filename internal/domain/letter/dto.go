package letter

import (
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/absensigeo/absensi-backend-go/internal/pkg/validator"
)

const maxFileSize = 10 << 20 // 10MB

var allowedExts = []string{".pdf", ".doc", ".docx"}

type UploadLetterRequest struct {
	Title      string                `json:"title" validate:"notblank,max=200"`
	File       multipart.File        `json:"-"`
	FileHeader *multipart.FileHeader `json:"-"`
}

func (r *UploadLetterRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)

	errs := validator.Struct(r)

	if r.File == nil || r.FileHeader == nil {
		errs.Add("file", "file is required")
	} else {
		ext := strings.ToLower(filepath.Ext(r.FileHeader.Filename))
		if !validator.IsInSlice(ext, allowedExts) {
			errs.Add("file", "invalid file type: only "+strings.Join(allowedExts, ", ")+" allowed")
		} else if r.FileHeader.Size > maxFileSize {
			errs.Add("file", "file size must not exceed 10MB")
		}
	}

	return errs.Err()
}

type LetterTemplateResponse struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	FileName  string `json:"file_name"`
	URL       string `json:"url"`
	CreatedAt string `json:"created_at"`
}
