package schedule

import (
	"testing"

	"github.com/absensigeo/absensi-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertScheduleRequest_Validate(t *testing.T) {
	tests := []struct {
		name       string
		req        UpsertScheduleRequest
		wantFields []string
	}{
		{
			name: "valid",
			req:  UpsertScheduleRequest{TeacherName: " Budi ", ClassName: "X IPA 1", Day: "Monday", StartTime: "07:30", EndTime: "09:00", Subject: "Matematika"},
		},
		{
			name:       "all blank",
			req:        UpsertScheduleRequest{},
			wantFields: []string{"teacher_name", "class_name", "day", "start_time", "end_time", "subject"},
		},
		{
			name:       "end before start",
			req:        UpsertScheduleRequest{TeacherName: "Budi", ClassName: "X", Day: "friday", StartTime: "10:00", EndTime: "09:00", Subject: "Fisika"},
			wantFields: []string{"end_time"},
		},
		{
			name:       "same start and end",
			req:        UpsertScheduleRequest{TeacherName: "Budi", ClassName: "X", Day: "friday", StartTime: "10:00", EndTime: "10:00", Subject: "Fisika"},
			wantFields: []string{"end_time"},
		},
		{
			name:       "unknown day",
			req:        UpsertScheduleRequest{TeacherName: "Budi", ClassName: "X", Day: "senin", StartTime: "07:00", EndTime: "08:00", Subject: "Fisika"},
			wantFields: []string{"day"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if len(tt.wantFields) == 0 {
				require.NoError(t, err)
				return
			}
			var errs validator.ValidationErrors
			require.ErrorAs(t, err, &errs)
			got := errs.ToMap()
			for _, f := range tt.wantFields {
				assert.Contains(t, got, f)
			}
		})
	}
}

func TestUpsertScheduleRequest_Normalizes(t *testing.T) {
	req := UpsertScheduleRequest{TeacherName: " Budi ", ClassName: " XI ", Day: " TUESDAY ", StartTime: "07:00", EndTime: "08:00", Subject: " Biologi "}
	require.NoError(t, req.Validate())
	assert.Equal(t, "Budi", req.TeacherName)
	assert.Equal(t, "XI", req.ClassName)
	assert.Equal(t, "tuesday", req.Day)
	assert.Equal(t, "Biologi", req.Subject)
}

func TestScheduleFilter_Validate(t *testing.T) {
	blank := "  "
	day := "Wednesday"
	f := ScheduleFilter{TeacherName: &blank, Day: &day}
	require.NoError(t, f.Validate())
	assert.Nil(t, f.TeacherName)
	assert.Equal(t, "wednesday", *f.Day)

	bad := "rabu"
	assert.Error(t, (&ScheduleFilter{Day: &bad}).Validate())
}

func TestWeekday_Order(t *testing.T) {
	assert.Equal(t, 1, Monday.Order())
	assert.Equal(t, 7, Sunday.Order())
	assert.Equal(t, 0, Weekday("holiday").Order())
	assert.False(t, Weekday("").IsValid())
}
