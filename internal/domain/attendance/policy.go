package attendance

import (
	"fmt"
	"strings"
	"time"

	"github.com/absensigeo/absensi-backend-go/internal/pkg/utils"
)

// Clock is a local wall-clock time of day.
type Clock struct {
	Hour   int
	Minute int
}

func ParseClock(s string) (Clock, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return Clock{}, fmt.Errorf("invalid clock %q: %w", s, err)
	}
	return Clock{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// On returns the instant of c on the calendar day of t, in t's location.
func (c Clock) On(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), c.Hour, c.Minute, 0, 0, t.Location())
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// Rules are the school's attendance windows and geofence.
type Rules struct {
	Location     *time.Location
	LateAfter    Clock
	CheckOutFrom Clock
	Fence        utils.Geofence
}

// Local converts t to the school timezone.
func (r Rules) Local(t time.Time) time.Time {
	return t.In(r.Location)
}

// Day returns local midnight of the calendar day containing t.
func (r Rules) Day(t time.Time) time.Time {
	l := r.Local(t)
	return time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, r.Location)
}

// IsLate reports whether a check-in at t is strictly after the late threshold.
func (r Rules) IsLate(t time.Time) bool {
	l := r.Local(t)
	return l.After(r.LateAfter.On(l))
}

// CheckOutOpen reports whether check-out is allowed at t. The threshold itself is open.
func (r Rules) CheckOutOpen(t time.Time) bool {
	l := r.Local(t)
	return !l.Before(r.CheckOutFrom.On(l))
}

// CheckFence returns the distance to the school and ErrOutsideGeofence when
// p is farther than the radius.
func (r Rules) CheckFence(p utils.Point) (float64, error) {
	d := r.Fence.Distance(p)
	if !r.Fence.Contains(p) {
		return d, ErrOutsideGeofence
	}
	return d, nil
}

// DayState summarizes what a user already recorded on one day.
type DayState struct {
	CheckedIn  bool
	CheckedOut bool
	OnLeave    bool
}

func NewDayState(kinds []Kind) DayState {
	var s DayState
	for _, k := range kinds {
		switch {
		case k == KindCheckIn:
			s.CheckedIn = true
		case k == KindCheckOut:
			s.CheckedOut = true
		case k.IsLeave():
			s.OnLeave = true
		}
	}
	return s
}

// DecideCheckIn returns the status for a check-in at t, or why it is refused.
func (r Rules) DecideCheckIn(state DayState, t time.Time, reason string) (Status, error) {
	if state.OnLeave {
		return "", ErrOnLeaveToday
	}
	if state.CheckedIn {
		return "", ErrAlreadyCheckedIn
	}
	if r.IsLate(t) {
		if strings.TrimSpace(reason) == "" {
			return "", ErrLateReasonRequired
		}
		return StatusLate, nil
	}
	return StatusPresent, nil
}

// DecideCheckOut returns the status for a check-out at t, or why it is refused.
func (r Rules) DecideCheckOut(state DayState, t time.Time) (Status, error) {
	if !r.CheckOutOpen(t) {
		return "", ErrCheckOutNotOpen
	}
	if state.OnLeave {
		return "", ErrOnLeaveToday
	}
	if !state.CheckedIn {
		return "", ErrNotCheckedIn
	}
	if state.CheckedOut {
		return "", ErrAlreadyCheckedOut
	}
	return StatusPresent, nil
}

// DecideLeave checks that a leave or furlough request can be recorded.
func (r Rules) DecideLeave(state DayState) (Status, error) {
	if state.OnLeave {
		return "", ErrOnLeaveToday
	}
	if state.CheckedIn || state.CheckedOut {
		return "", ErrAlreadyAttended
	}
	return StatusLeave, nil
}

// Today computes the action flags shown to the client at t.
func (r Rules) Today(state DayState, t time.Time) TodayResponse {
	l := r.Local(t)
	resp := TodayResponse{
		Date:         l.Format("2006-01-02"),
		ServerTime:   l.Format(time.RFC3339),
		CheckedIn:    state.CheckedIn,
		CheckedOut:   state.CheckedOut,
		OnLeave:      state.OnLeave,
		IsLateNow:    r.IsLate(t),
		LateAfter:    r.LateAfter.String(),
		CheckOutFrom: r.CheckOutFrom.String(),
	}

	_, inErr := r.DecideCheckIn(state, t, "reason")
	_, outErr := r.DecideCheckOut(state, t)
	_, leaveErr := r.DecideLeave(state)
	resp.CanCheckIn = inErr == nil
	resp.CanCheckOut = outErr == nil
	resp.CanRequestLeave = leaveErr == nil

	switch {
	case state.OnLeave:
		resp.Message = ErrOnLeaveToday.Error()
	case state.CheckedOut:
		resp.Message = "attendance complete for today"
	case state.CheckedIn && !resp.CanCheckOut:
		resp.Message = fmt.Sprintf("check-out opens at %s", r.CheckOutFrom)
	case state.CheckedIn:
		resp.Message = "check-out is open"
	case resp.IsLateNow:
		resp.Message = "checking in now counts as late, a reason is required"
	default:
		resp.Message = "check-in is open"
	}
	return resp
}
