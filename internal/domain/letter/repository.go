package letter

import "context"

type LetterRepository interface {
	Create(ctx context.Context, t LetterTemplate) (LetterTemplate, error)
	GetByID(ctx context.Context, id string) (LetterTemplate, error)
	Delete(ctx context.Context, id string) error

	// List returns every template, newest first
	List(ctx context.Context) ([]LetterTemplate, error)
}
