package evidence

import "errors"

var (
	ErrEvidenceClosed    = errors.New("teaching evidence can only be uploaded before the daily cutoff")
	ErrEvidenceNotFound  = errors.New("teaching evidence not found")
	ErrEvidenceForbidden = errors.New("you are not allowed to upload teaching evidence")
)
