package evidence

import (
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/absensigeo/absensi-backend-go/internal/pkg/validator"
)

const (
	maxFileSize    = 10 << 20 // 10MB
	DefaultDays    = 7
	DefaultMaxDays = 31
)

var allowedExts = []string{".jpg", ".jpeg", ".png", ".pdf", ".doc", ".docx", ".ppt", ".pptx"}

type UploadEvidenceRequest struct {
	Topic       string                `json:"topic" validate:"notblank,max=200"`
	Description string                `json:"description" validate:"notblank,max=2000"`
	File        multipart.File        `json:"-"`
	FileHeader  *multipart.FileHeader `json:"-"`
}

func (r *UploadEvidenceRequest) Validate() error {
	r.Topic = strings.TrimSpace(r.Topic)
	r.Description = strings.TrimSpace(r.Description)

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

// HistoryFilter selects the last Days calendar days including today.
type HistoryFilter struct {
	Days int `json:"days"`
}

func (f *HistoryFilter) Validate(maxDays int) error {
	var errs validator.ValidationErrors

	if maxDays <= 0 {
		maxDays = DefaultMaxDays
	}
	if f.Days < 0 {
		errs.Add("days", "days must be a positive number")
	}
	if f.Days == 0 {
		f.Days = DefaultDays
	}
	if f.Days > maxDays {
		f.Days = maxDays
	}

	return errs.Err()
}

type EvidenceResponse struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	Date        string `json:"date"`
	FileName    string `json:"file_name"`
	URL         string `json:"url"`
	Topic       string `json:"topic"`
	Description string `json:"description"`
	UploadedAt  string `json:"uploaded_at"`
}

type ListEvidenceResponse struct {
	From     string             `json:"from"`
	To       string             `json:"to"`
	Evidence []EvidenceResponse `json:"evidence"`
}
