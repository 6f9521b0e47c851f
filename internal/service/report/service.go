package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/absensigeo/absensi-backend-go/internal/domain/attendance"
	"github.com/xuri/excelize/v2"
)

const (
	recordsSheet = "Absensi"
	summarySheet = "Rekap"
)

var recordHeaders = []string{"Date", "Time", "NIP", "Name", "Kind", "Status", "Reason", "Latitude", "Longitude", "Photo", "Document"}

var summaryHeaders = []string{"NIP", "Name", "Present", "Late", "Leave", "Furlough"}

// XLSXWriter renders attendance exports as an Excel workbook with one sheet
// of raw records and one per-person recap sheet.
type XLSXWriter struct{}

func NewXLSXWriter() *XLSXWriter {
	return &XLSXWriter{}
}

// WriteAttendance implements attendance.ReportWriter.
func (x *XLSXWriter) WriteAttendance(w io.Writer, startDate, endDate string, records []attendance.AttendanceResponse) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", recordsSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetCellValue(recordsSheet, "A1", fmt.Sprintf("Attendance %s - %s", startDate, endDate)); err != nil {
		return err
	}
	if err := writeRow(f, recordsSheet, 2, toCells(recordHeaders), headerStyle); err != nil {
		return err
	}
	for i, r := range records {
		if err := writeRow(f, recordsSheet, i+3, recordRow(r), 0); err != nil {
			return err
		}
	}

	if err := writeRow(f, summarySheet, 1, toCells(summaryHeaders), headerStyle); err != nil {
		return err
	}
	for i, line := range recap(records) {
		row := []interface{}{line.nip, line.name, line.present, line.late, line.leave, line.furlough}
		if err := writeRow(f, summarySheet, i+2, row, 0); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(recordsSheet, "A", "F", 14); err != nil {
		return err
	}
	if err := f.SetColWidth(recordsSheet, "G", "G", 40); err != nil {
		return err
	}
	if err := f.SetColWidth(summarySheet, "A", "B", 24); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}, style int) error {
	start, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, start, &values); err != nil {
		return fmt.Errorf("failed to write row %d of %s: %w", row, sheet, err)
	}
	if style == 0 {
		return nil
	}
	end, err := excelize.CoordinatesToCellName(len(values), row)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, start, end, style)
}

func toCells(headers []string) []interface{} {
	cells := make([]interface{}, len(headers))
	for i, h := range headers {
		cells[i] = h
	}
	return cells
}

func deref[T any](p *T) interface{} {
	if p == nil {
		return ""
	}
	return *p
}

func recordRow(r attendance.AttendanceResponse) []interface{} {
	return []interface{}{
		r.WorkDate,
		r.Time,
		r.NIP,
		r.UserName,
		r.Kind,
		r.Status,
		deref(r.Reason),
		deref(r.Latitude),
		deref(r.Longitude),
		deref(r.PhotoURL),
		deref(r.DocumentURL),
	}
}

type recapLine struct {
	nip, name                      string
	present, late, leave, furlough int
}

// recap counts one status per person per day. Check-outs are not counted.
func recap(records []attendance.AttendanceResponse) []recapLine {
	byUser := map[string]*recapLine{}
	for _, r := range records {
		line, ok := byUser[r.UserID]
		if !ok {
			line = &recapLine{nip: r.NIP, name: r.UserName}
			byUser[r.UserID] = line
		}
		switch attendance.Kind(r.Kind) {
		case attendance.KindCheckIn:
			if r.Status == string(attendance.StatusLate) {
				line.late++
			} else {
				line.present++
			}
		case attendance.KindLeave:
			line.leave++
		case attendance.KindFurlough:
			line.furlough++
		}
	}

	lines := make([]recapLine, 0, len(byUser))
	for _, l := range byUser {
		lines = append(lines, *l)
	}
	sort.Slice(lines, func(i, j int) bool {
		if lines[i].name != lines[j].name {
			return lines[i].name < lines[j].name
		}
		return lines[i].nip < lines[j].nip
	})
	return lines
}
