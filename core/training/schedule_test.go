package training

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/ecurie/core"
)

func mockIDs(t *testing.T) {
	var n int
	orig := newID
	newID = func() string {
		n++
		return fmt.Sprintf("session-%d", n)
	}
	t.Cleanup(func() { newID = orig })
}

func TestMaterializeSessions(t *testing.T) {
	mockIDs(t)

	sessions, err := MaterializeSessions(Schedule{
		StartDate:     NewDate(2024, 1, 1),
		EndDate:       NewDate(2024, 1, 14),
		RecurringDays: []string{"monday", "wednesday"},
		Time:          "09:00",
	})
	require.NoError(t, err)

	want := []Session{
		{ID: "session-1", Date: NewDate(2024, 1, 1), StartTime: "09:00", EndTime: "10:00", Attendance: []AttendanceRecord{}, Objectives: []string{}},
		{ID: "session-2", Date: NewDate(2024, 1, 3), StartTime: "09:00", EndTime: "10:00", Attendance: []AttendanceRecord{}, Objectives: []string{}},
		{ID: "session-3", Date: NewDate(2024, 1, 8), StartTime: "09:00", EndTime: "10:00", Attendance: []AttendanceRecord{}, Objectives: []string{}},
		{ID: "session-4", Date: NewDate(2024, 1, 10), StartTime: "09:00", EndTime: "10:00", Attendance: []AttendanceRecord{}, Objectives: []string{}},
	}
	assert.Equal(t, want, sessions)
}

func TestMaterializeSessions_properties(t *testing.T) {
	tests := []struct {
		name      string
		schedule  Schedule
		wantCount int
	}{
		{
			name:      "single day range on a matching weekday",
			schedule:  Schedule{StartDate: NewDate(2024, 1, 1), EndDate: NewDate(2024, 1, 1), RecurringDays: []string{"monday"}, Time: "08:15"},
			wantCount: 1,
		},
		{
			name:      "single day range on another weekday",
			schedule:  Schedule{StartDate: NewDate(2024, 1, 2), EndDate: NewDate(2024, 1, 2), RecurringDays: []string{"monday"}, Time: "08:15"},
			wantCount: 0,
		},
		{
			name:      "every day of a leap february",
			schedule:  Schedule{StartDate: NewDate(2024, 2, 1), EndDate: NewDate(2024, 2, 29), RecurringDays: []string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}, Time: "12:00"},
			wantCount: 29,
		},
		{
			name:      "duplicate days count once",
			schedule:  Schedule{StartDate: NewDate(2024, 1, 1), EndDate: NewDate(2024, 1, 31), RecurringDays: []string{"friday", "friday"}, Time: "18:00"},
			wantCount: 4,
		},
		{
			name:      "no recurring days",
			schedule:  Schedule{StartDate: NewDate(2024, 1, 1), EndDate: NewDate(2024, 12, 31), RecurringDays: nil, Time: "18:00"},
			wantCount: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, err := MaterializeSessions(tt.schedule)
			require.NoError(t, err)
			second, err := MaterializeSessions(tt.schedule)
			require.NoError(t, err)

			assert.NotNil(t, first)
			assert.Len(t, first, tt.wantCount)
			require.Len(t, second, len(first))

			days := make(map[string]bool)
			for _, d := range tt.schedule.RecurringDays {
				days[d] = true
			}
			ids := make(map[string]bool)
			for i, s := range first {
				// same dates & times on every run
				assert.Equal(t, s.Date, second[i].Date)
				assert.Equal(t, s.StartTime, second[i].StartTime)
				assert.Equal(t, s.EndTime, second[i].EndTime)

				assert.True(t, days[weekdayName(s)], s.Date.String())
				assert.False(t, s.Date.Before(tt.schedule.StartDate.Time))
				assert.False(t, s.Date.After(tt.schedule.EndDate.Time))
				if i > 0 {
					assert.True(t, first[i-1].Date.Before(s.Date.Time), "sessions must be ordered by date")
				}
				assert.False(t, ids[s.ID], "session IDs must be unique")
				ids[s.ID] = true
			}
		})
	}
}

func weekdayName(s Session) string {
	for name, wd := range weekdays {
		if wd == s.Date.Weekday() {
			return name
		}
	}
	return ""
}

func TestMaterializeSessions_validation(t *testing.T) {
	valid := Schedule{StartDate: NewDate(2024, 1, 1), EndDate: NewDate(2024, 1, 14), RecurringDays: []string{"monday"}, Time: "09:00"}

	tests := []struct {
		name      string
		mutate    func(s *Schedule)
		wantField string
	}{
		{name: "missing start", mutate: func(s *Schedule) { s.StartDate = Date{} }, wantField: "startDate"},
		{name: "missing end", mutate: func(s *Schedule) { s.EndDate = Date{} }, wantField: "endDate"},
		{name: "end before start", mutate: func(s *Schedule) { s.EndDate = NewDate(2023, 12, 31) }, wantField: "endDate"},
		{name: "hour out of range", mutate: func(s *Schedule) { s.Time = "24:00" }, wantField: "time"},
		{name: "minutes out of range", mutate: func(s *Schedule) { s.Time = "09:60" }, wantField: "time"},
		{name: "not a time", mutate: func(s *Schedule) { s.Time = "9am" }, wantField: "time"},
		{name: "unknown weekday", mutate: func(s *Schedule) { s.RecurringDays = []string{"monday", "funday"} }, wantField: "recurringDays"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid
			s.RecurringDays = append([]string(nil), valid.RecurringDays...)
			tt.mutate(&s)

			sessions, err := MaterializeSessions(s)
			assert.Nil(t, sessions)
			var vErr *core.ValidationError
			if assert.True(t, errors.As(err, &vErr), "got %v", err) && assert.NotEmpty(t, vErr.Fields) {
				assert.Equal(t, tt.wantField, vErr.Fields[0].Field)
			}
		})
	}
}

func Test_endTime(t *testing.T) {
	tests := []struct {
		start string
		want  string
	}{
		{start: "00:00", want: "01:00"},
		{start: "09:00", want: "10:00"},
		{start: "09:45", want: "10:45"},
		{start: "22:59", want: "23:59"},
		{start: "23:30", want: "24:30"}, // no wrap past midnight
	}
	for _, tt := range tests {
		t.Run(tt.start, func(t *testing.T) {
			got, err := endTime(tt.start)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := endTime("25:00")
	assert.Error(t, err)
}

func TestPreviewSessions(t *testing.T) {
	days := []string{" Monday ", "WEDNESDAY"}
	sessions, err := PreviewSessions(Schedule{
		StartDate:     NewDate(2024, 1, 1),
		EndDate:       NewDate(2024, 1, 7),
		RecurringDays: days,
		Time:          " 07:30 ",
	})
	require.NoError(t, err)
	if assert.Len(t, sessions, 2) {
		assert.Equal(t, "07:30", sessions[0].StartTime)
		assert.Equal(t, "08:30", sessions[0].EndTime)
	}
	assert.Equal(t, []string{" Monday ", "WEDNESDAY"}, days, "input must not be modified")
}

func TestDate_JSON(t *testing.T) {
	var d Date
	require.NoError(t, d.UnmarshalJSON([]byte(`"2024-01-08"`)))
	assert.Equal(t, NewDate(2024, 1, 8), d)

	require.NoError(t, d.UnmarshalJSON([]byte(`"2024-01-08T23:30:00-02:00"`)))
	assert.Equal(t, NewDate(2024, 1, 9), d, "timestamps are truncated to their UTC day")

	require.NoError(t, d.UnmarshalJSON([]byte(`null`)))
	assert.True(t, d.IsZero())

	assert.Error(t, d.UnmarshalJSON([]byte(`"08/01/2024"`)))

	data, err := NewDate(2024, 1, 8).MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"2024-01-08"`, string(data))
}

func TestSchedule_ValidateBounded(t *testing.T) {
	s := Schedule{
		StartDate:     NewDate(2024, 1, 1),
		EndDate:       NewDate(2026, 1, 1),
		RecurringDays: []string{"monday"},
		Time:          "09:00",
	}
	assert.NoError(t, s.ValidateBounded())

	s.EndDate = NewDate(2026, 1, 2)
	err := s.ValidateBounded()
	var vErr *core.ValidationError
	if assert.True(t, errors.As(err, &vErr), "got %v", err) && assert.NotEmpty(t, vErr.Fields) {
		assert.Equal(t, "endDate", vErr.Fields[0].Field)
	}

	days := []string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}
	sessions, err := PreviewSessions(Schedule{
		StartDate:     NewDate(2, 1, 1),
		EndDate:       NewDate(9999, 12, 31),
		RecurringDays: days,
		Time:          "09:00",
	})
	assert.Nil(t, sessions)
	assert.True(t, errors.As(err, &vErr), "got %v", err)
}

func TestMaterializeSessions_weekdayCase(t *testing.T) {
	_, err := MaterializeSessions(Schedule{
		StartDate:     NewDate(2024, 1, 1),
		EndDate:       NewDate(2024, 1, 14),
		RecurringDays: []string{"Monday"},
		Time:          "09:00",
	})
	var vErr *core.ValidationError
	assert.True(t, errors.As(err, &vErr), "weekday names are matched as given; requests are normalized beforehand")
}
