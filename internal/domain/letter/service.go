package letter

import "context"

type LetterService interface {
	Upload(ctx context.Context, req UploadLetterRequest) (LetterTemplateResponse, error)
	List(ctx context.Context) ([]LetterTemplateResponse, error)

	// Delete removes the template and its stored file
	Delete(ctx context.Context, id string) error
}
