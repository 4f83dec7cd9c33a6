package sheetsvc_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/ecurie/core/training"
	sheetsvc "github.com/trezcool/ecurie/services/sheets"
)

func TestWriteAttendance(t *testing.T) {
	tc := training.TrainingClass{
		Name: "Dressage Basics",
		Sessions: []training.Session{
			{
				ID:        "s1",
				Date:      training.NewDate(2024, 1, 1),
				StartTime: "09:00",
				Attendance: []training.AttendanceRecord{
					{Trainee: "amy", Horse: "bolt", Attended: true, Performance: null.StringFrom("good")},
					{Trainee: "ben", Horse: "star", Attended: false},
				},
			},
			{
				ID:        "s2",
				Date:      training.NewDate(2024, 1, 3),
				StartTime: "09:00",
				Attendance: []training.AttendanceRecord{
					{Trainee: "amy", Horse: "bolt", Attended: false},
				},
			},
		},
		EnrolledTrainees: []training.Enrollment{
			{Trainee: "amy", Horse: "bolt", Status: training.StatusActive},
			{Trainee: "ben", Horse: "star", Status: training.StatusWithdrawn},
			{Trainee: "cam", Horse: "moon", Status: training.StatusActive},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, sheetsvc.WriteAttendance(&buf, tc))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{sheetsvc.AttendanceSheet, sheetsvc.SummarySheet}, f.GetSheetList())

	rows, err := f.GetRows(sheetsvc.AttendanceSheet)
	require.NoError(t, err)
	if assert.Len(t, rows, 4) {
		assert.Equal(t, []string{"Trainee", "Horse", "Status", "2024-01-01 09:00", "2024-01-03 09:00"}, rows[0])
		assert.Equal(t, []string{"amy", "bolt", "active", "yes", "no"}, rows[1])
		assert.Equal(t, []string{"ben", "star", "withdrawn", "no"}, rows[2][:4])
		assert.Equal(t, []string{"cam", "moon", "active"}, rows[3][:3])
	}
	// no record in the session
	for _, cell := range []string{"E3", "D4", "E4"} {
		val, err := f.GetCellValue(sheetsvc.AttendanceSheet, cell)
		require.NoError(t, err)
		assert.Empty(t, val, cell)
	}

	rows, err = f.GetRows(sheetsvc.SummarySheet)
	require.NoError(t, err)
	if assert.Len(t, rows, 4) {
		assert.Equal(t, []string{"Trainee", "Horse", "Status", "Recorded", "Attended", "Rate"}, rows[0])
		assert.Equal(t, []string{"amy", "bolt", "active", "2", "1", "0.5"}, rows[1])
		assert.Equal(t, []string{"ben", "star", "withdrawn", "1", "0", "0"}, rows[2])
		assert.Equal(t, []string{"cam", "moon", "active", "0", "0"}, rows[3][:5])
	}
}

func TestWriteAttendance_noSessions(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sheetsvc.WriteAttendance(&buf, training.TrainingClass{}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetsvc.AttendanceSheet)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Trainee", "Horse", "Status"}}, rows)
}
