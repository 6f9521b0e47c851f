package event

import "time"

const (
	TopicAttendanceRecorded = "attendance.recorded"
	TopicDailySummary       = "attendance.summary"
)

// AttendanceRecorded is published after a check-in, check-out or leave
// request is committed.
type AttendanceRecorded struct {
	RecordID    string    `json:"record_id"`
	UserID      string    `json:"user_id"`
	UserName    string    `json:"user_name"`
	NIP         string    `json:"nip"`
	Kind        string    `json:"kind"`
	Status      string    `json:"status"`
	WorkDate    string    `json:"work_date"`
	RecordedAt  time.Time `json:"recorded_at"`
	Reason      string    `json:"reason,omitempty"`
	DocumentURL string    `json:"document_url,omitempty"`
}

// DailySummaryReady is published by the end-of-day job.
type DailySummaryReady struct {
	Date    string       `json:"date"`
	Present int          `json:"present"`
	Late    int          `json:"late"`
	Leave   int          `json:"leave"`
	Absent  []AbsentUser `json:"absent"`
}

type AbsentUser struct {
	Name string `json:"name"`
	NIP  string `json:"nip"`
	Role string `json:"role"`
}
