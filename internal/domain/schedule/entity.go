package schedule

import "time"

type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
)

// Weekdays lists the days in school-week order.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

var WeekdayValues = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

func (d Weekday) IsValid() bool {
	return d.Order() > 0
}

// Order returns 1 for monday through 7 for sunday, 0 for unknown values.
func (d Weekday) Order() int {
	for i, w := range Weekdays {
		if w == d {
			return i + 1
		}
	}
	return 0
}

// TeachingSchedule is one weekly lesson slot.
type TeachingSchedule struct {
	ID          string
	TeacherName string
	ClassName   string
	Day         Weekday
	StartTime   string // HH:MM
	EndTime     string // HH:MM
	Subject     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
