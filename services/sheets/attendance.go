package sheetsvc

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/ecurie/core/training"
)

const (
	AttendanceSheet = "Attendance"
	SummarySheet    = "Summary"

	// Attendance cell values
	Attended = "yes"
	Absent   = "no"
)

var (
	attendanceHeader = []interface{}{"Trainee", "Horse", "Status"}
	summaryHeader    = []interface{}{"Trainee", "Horse", "Status", "Recorded", "Attended", "Rate"}
)

// WriteAttendance writes the class attendance workbook to w.
// The Attendance sheet has one row per enrollment and one column per session.
// A blank cell means no record for that trainee in that session.
func WriteAttendance(w io.Writer, tc training.TrainingClass) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = errors.Wrap(cerr, "closing workbook")
		}
	}()

	if err = f.SetSheetName(f.GetSheetName(0), AttendanceSheet); err != nil {
		return errors.Wrap(err, "renaming sheet")
	}
	if _, err = f.NewSheet(SummarySheet); err != nil {
		return errors.Wrap(err, "creating summary sheet")
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return errors.Wrap(err, "creating header style")
	}

	if err = writeAttendanceSheet(f, tc, bold); err != nil {
		return err
	}
	if err = writeSummarySheet(f, tc, bold); err != nil {
		return err
	}
	f.SetActiveSheet(0)

	return errors.Wrap(f.Write(w), "writing workbook")
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func boldRow(f *excelize.File, sheet string, width, style int) error {
	last, err := excelize.CoordinatesToCellName(width, 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, style)
}

func writeAttendanceSheet(f *excelize.File, tc training.TrainingClass, style int) error {
	header := append([]interface{}(nil), attendanceHeader...)
	for _, s := range tc.Sessions {
		header = append(header, fmt.Sprintf("%s %s", s.Date, s.StartTime))
	}
	if err := setRow(f, AttendanceSheet, 1, header); err != nil {
		return errors.Wrap(err, "writing attendance header")
	}
	if err := boldRow(f, AttendanceSheet, len(header), style); err != nil {
		return errors.Wrap(err, "styling attendance header")
	}

	for i, e := range tc.EnrolledTrainees {
		row := []interface{}{e.Trainee, e.Horse, e.Status}
		for _, s := range tc.Sessions {
			row = append(row, attendanceCell(s, e.Trainee))
		}
		if err := setRow(f, AttendanceSheet, i+2, row); err != nil {
			return errors.Wrapf(err, "writing attendance row for %s", e.Trainee)
		}
	}
	return errors.Wrap(f.SetColWidth(AttendanceSheet, "A", "B", 24), "sizing attendance columns")
}

func attendanceCell(s training.Session, traineeID string) string {
	for _, r := range s.Attendance {
		if r.Trainee == traineeID {
			if r.Attended {
				return Attended
			}
			return Absent
		}
	}
	return ""
}

func writeSummarySheet(f *excelize.File, tc training.TrainingClass, style int) error {
	if err := setRow(f, SummarySheet, 1, summaryHeader); err != nil {
		return errors.Wrap(err, "writing summary header")
	}
	if err := boldRow(f, SummarySheet, len(summaryHeader), style); err != nil {
		return errors.Wrap(err, "styling summary header")
	}

	for i, e := range tc.EnrolledTrainees {
		var recorded, attended int
		for _, s := range tc.Sessions {
			switch attendanceCell(s, e.Trainee) {
			case Attended:
				recorded++
				attended++
			case Absent:
				recorded++
			}
		}
		row := []interface{}{e.Trainee, e.Horse, e.Status, recorded, attended}
		if recorded > 0 {
			row = append(row, float64(attended)/float64(recorded))
		}
		if err := setRow(f, SummarySheet, i+2, row); err != nil {
			return errors.Wrapf(err, "writing summary row for %s", e.Trainee)
		}
	}
	return errors.Wrap(f.SetColWidth(SummarySheet, "A", "B", 24), "sizing summary columns")
}
