package letter

import "time"

// LetterTemplate is a shared document template such as a permit letter form.
type LetterTemplate struct {
	ID        string
	Title     string
	FileName  string
	FilePath  string // storage key
	CreatedBy string
	CreatedAt time.Time
}
