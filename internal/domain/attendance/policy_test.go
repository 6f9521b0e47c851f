package attendance

import (
	"testing"
	"time"

	"github.com/absensigeo/absensi-backend-go/internal/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var school = utils.Point{Latitude: -1.8522909597985264, Longitude: 106.1316275965487}

func testRules(t *testing.T) Rules {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Jakarta")
	require.NoError(t, err)
	return Rules{
		Location:     loc,
		LateAfter:    Clock{Hour: 7, Minute: 15},
		CheckOutFrom: Clock{Hour: 16},
		Fence:        utils.Geofence{Center: school, RadiusMeters: 1000},
	}
}

func at(r Rules, hour, min, sec int) time.Time {
	return time.Date(2025, 1, 6, hour, min, sec, 0, r.Location)
}

func TestParseClock(t *testing.T) {
	c, err := ParseClock("07:15")
	require.NoError(t, err)
	assert.Equal(t, Clock{Hour: 7, Minute: 15}, c)
	assert.Equal(t, "07:15", c.String())

	_, err = ParseClock("7.15")
	assert.Error(t, err)
}

func TestRules_IsLate(t *testing.T) {
	r := testRules(t)

	assert.False(t, r.IsLate(at(r, 6, 59, 0)))
	assert.False(t, r.IsLate(at(r, 7, 15, 0)), "exactly at the threshold is on time")
	assert.True(t, r.IsLate(at(r, 7, 15, 1)))
	assert.True(t, r.IsLate(at(r, 10, 0, 0)))

	// 00:30 UTC is 07:30 in Jakarta
	assert.True(t, r.IsLate(time.Date(2025, 1, 6, 0, 30, 0, 0, time.UTC)))
}

func TestRules_CheckOutOpen(t *testing.T) {
	r := testRules(t)

	assert.False(t, r.CheckOutOpen(at(r, 15, 59, 59)))
	assert.True(t, r.CheckOutOpen(at(r, 16, 0, 0)))
	assert.True(t, r.CheckOutOpen(at(r, 21, 0, 0)))
}

func TestRules_Day(t *testing.T) {
	r := testRules(t)

	// 18:00 UTC on the 5th is already the 6th in Jakarta
	day := r.Day(time.Date(2025, 1, 5, 18, 0, 0, 0, time.UTC))
	assert.Equal(t, "2025-01-06", day.Format("2006-01-02"))
	assert.Equal(t, 0, day.Hour())
}

func TestRules_CheckFence(t *testing.T) {
	r := testRules(t)

	d, err := r.CheckFence(school)
	require.NoError(t, err)
	assert.Equal(t, 0.0, d)

	_, err = r.CheckFence(utils.Point{Latitude: school.Latitude + 0.0045, Longitude: school.Longitude})
	assert.NoError(t, err)

	d, err = r.CheckFence(utils.Point{Latitude: -6.2, Longitude: 106.8})
	assert.ErrorIs(t, err, ErrOutsideGeofence)
	assert.Greater(t, d, 1000.0)

	edge := utils.Point{Latitude: school.Latitude + 0.005, Longitude: school.Longitude}
	r.Fence.RadiusMeters = r.Fence.Distance(edge)
	_, err = r.CheckFence(edge)
	assert.NoError(t, err, "the boundary counts as inside")
}

func TestNewDayState(t *testing.T) {
	assert.Equal(t, DayState{}, NewDayState(nil))
	assert.Equal(t, DayState{CheckedIn: true, CheckedOut: true}, NewDayState([]Kind{KindCheckIn, KindCheckOut}))
	assert.Equal(t, DayState{OnLeave: true}, NewDayState([]Kind{KindFurlough}))
}

func TestRules_DecideCheckIn(t *testing.T) {
	r := testRules(t)

	tests := []struct {
		name    string
		state   DayState
		time    time.Time
		reason  string
		want    Status
		wantErr error
	}{
		{"on time", DayState{}, at(r, 7, 0, 0), "", StatusPresent, nil},
		{"on the threshold", DayState{}, at(r, 7, 15, 0), "", StatusPresent, nil},
		{"late with reason", DayState{}, at(r, 7, 16, 0), "ban bocor", StatusLate, nil},
		{"late without reason", DayState{}, at(r, 7, 16, 0), "", "", ErrLateReasonRequired},
		{"late with blank reason", DayState{}, at(r, 8, 0, 0), "   ", "", ErrLateReasonRequired},
		{"already checked in", DayState{CheckedIn: true}, at(r, 7, 0, 0), "", "", ErrAlreadyCheckedIn},
		{"on leave", DayState{OnLeave: true}, at(r, 7, 0, 0), "", "", ErrOnLeaveToday},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.DecideCheckIn(tt.state, tt.time, tt.reason)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRules_DecideCheckOut(t *testing.T) {
	r := testRules(t)
	in := DayState{CheckedIn: true}

	tests := []struct {
		name    string
		state   DayState
		time    time.Time
		wantErr error
	}{
		{"open", in, at(r, 16, 0, 0), nil},
		{"too early", in, at(r, 15, 59, 0), ErrCheckOutNotOpen},
		{"no check-in", DayState{}, at(r, 16, 30, 0), ErrNotCheckedIn},
		{"already out", DayState{CheckedIn: true, CheckedOut: true}, at(r, 17, 0, 0), ErrAlreadyCheckedOut},
		{"on leave", DayState{OnLeave: true}, at(r, 17, 0, 0), ErrOnLeaveToday},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, err := r.DecideCheckOut(tt.state, tt.time)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, StatusPresent, status)
		})
	}
}

func TestRules_DecideLeave(t *testing.T) {
	r := testRules(t)

	status, err := r.DecideLeave(DayState{})
	require.NoError(t, err)
	assert.Equal(t, StatusLeave, status)

	_, err = r.DecideLeave(DayState{CheckedIn: true})
	assert.ErrorIs(t, err, ErrAlreadyAttended)

	_, err = r.DecideLeave(DayState{CheckedOut: true})
	assert.ErrorIs(t, err, ErrAlreadyAttended)

	_, err = r.DecideLeave(DayState{OnLeave: true})
	assert.ErrorIs(t, err, ErrOnLeaveToday)
}

func TestRules_Today(t *testing.T) {
	r := testRules(t)

	morning := r.Today(DayState{}, at(r, 7, 0, 0))
	assert.True(t, morning.CanCheckIn)
	assert.False(t, morning.CanCheckOut)
	assert.True(t, morning.CanRequestLeave)
	assert.False(t, morning.IsLateNow)
	assert.Equal(t, "2025-01-06", morning.Date)
	assert.Equal(t, "07:15", morning.LateAfter)

	midday := r.Today(DayState{CheckedIn: true}, at(r, 12, 0, 0))
	assert.False(t, midday.CanCheckIn)
	assert.False(t, midday.CanCheckOut)
	assert.False(t, midday.CanRequestLeave)
	assert.Equal(t, "check-out opens at 16:00", midday.Message)

	evening := r.Today(DayState{CheckedIn: true}, at(r, 16, 5, 0))
	assert.True(t, evening.CanCheckOut)

	leave := r.Today(DayState{OnLeave: true}, at(r, 16, 5, 0))
	assert.False(t, leave.CanCheckIn)
	assert.False(t, leave.CanCheckOut)
	assert.False(t, leave.CanRequestLeave)
}
