package evidence

import "time"

// TeachingEvidence is the proof of teaching a user uploads once per day.
type TeachingEvidence struct {
	ID          string
	UserID      string
	WorkDate    time.Time
	FileName    string
	FilePath    string // storage key
	Topic       string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
