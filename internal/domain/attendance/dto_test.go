package attendance

import (
	"mime/multipart"
	"testing"

	"github.com/absensigeo/absensi-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	require.Error(t, err)
	var errs validator.ValidationErrors
	require.ErrorAs(t, err, &errs)
	return errs.ToMap()
}

func TestCheckInRequest_Validate(t *testing.T) {
	ok := CheckInRequest{Latitude: ptr(-1.85), Longitude: ptr(106.13)}
	assert.NoError(t, ok.Validate())

	missing := CheckInRequest{}
	got := fieldErrors(t, missing.Validate())
	assert.Equal(t, "latitude is required", got["latitude"])
	assert.Equal(t, "longitude is required", got["longitude"])

	bad := CheckInRequest{
		Latitude:   ptr(95.0),
		Longitude:  ptr(106.13),
		FileHeader: &multipart.FileHeader{Filename: "selfie.gif", Size: 10},
	}
	got = fieldErrors(t, bad.Validate())
	assert.Contains(t, got, "latitude")
	assert.Contains(t, got["photo"], "invalid file type")
}

func TestCheckOutRequest_Validate_FileTooLarge(t *testing.T) {
	req := CheckOutRequest{
		Latitude:   ptr(-1.85),
		Longitude:  ptr(106.13),
		FileHeader: &multipart.FileHeader{Filename: "selfie.JPG", Size: 11 << 20},
	}
	got := fieldErrors(t, req.Validate())
	assert.Equal(t, "photo size must not exceed 10MB", got["photo"])
}

func TestLeaveRequest_Validate(t *testing.T) {
	req := LeaveRequest{Kind: " Furlough ", Description: " Acara keluarga "}
	require.NoError(t, req.Validate())
	assert.Equal(t, "furlough", req.Kind)
	assert.Equal(t, "Acara keluarga", req.Description)

	bad := LeaveRequest{Kind: "sick", Description: "  "}
	got := fieldErrors(t, bad.Validate())
	assert.Equal(t, "kind must be one of: leave, furlough", got["kind"])
	assert.Equal(t, "description is required", got["description"])

	doc := LeaveRequest{
		Kind:        "leave",
		Description: "sakit",
		FileHeader:  &multipart.FileHeader{Filename: "surat.pdf", Size: 1024},
	}
	assert.NoError(t, doc.Validate())
}

func TestAttachPhotoRequest_Validate(t *testing.T) {
	got := fieldErrors(t, (&AttachPhotoRequest{}).Validate())
	assert.Equal(t, "id is required", got["id"])
	assert.Equal(t, "photo is required", got["photo"])
}

func TestAttendanceFilter_Validate(t *testing.T) {
	f := AttendanceFilter{}
	require.NoError(t, f.Validate())
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 20, f.Limit)
	assert.Equal(t, "desc", f.SortOrder)

	bad := AttendanceFilter{
		Kind:      ptr("masuk"),
		Status:    ptr("absent"),
		StartDate: ptr("2025-02-01"),
		EndDate:   ptr("2025-01-01"),
		Limit:     500,
	}
	got := fieldErrors(t, bad.Validate())
	assert.Contains(t, got, "kind")
	assert.Contains(t, got, "status")
	assert.Contains(t, got, "limit")
	assert.Equal(t, ErrInvalidDateRange.Error(), got["start_date"])
}

func TestExportRequest_Validate(t *testing.T) {
	assert.NoError(t, (&ExportRequest{StartDate: "2025-01-01", EndDate: "2025-01-31"}).Validate())

	got := fieldErrors(t, (&ExportRequest{}).Validate())
	assert.Contains(t, got, "start_date")
	assert.Contains(t, got, "end_date")

	got = fieldErrors(t, (&ExportRequest{StartDate: "2023-01-01", EndDate: "2025-01-01"}).Validate())
	assert.Contains(t, got, "end_date")
}
