package training

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/ecurie/core"
)

const (
	sessionDuration  = 60 // minutes
	maxScheduleYears = 2
)

var (
	clockRegex = regexp.MustCompile(`^([01][0-9]|2[0-3]):([0-5][0-9])$`)

	weekdays = map[string]time.Weekday{
		"sunday":    time.Sunday,
		"monday":    time.Monday,
		"tuesday":   time.Tuesday,
		"wednesday": time.Wednesday,
		"thursday":  time.Thursday,
		"friday":    time.Friday,
		"saturday":  time.Saturday,
	}

	newID = func() string { return uuid.New().String() } // mockable
)

// IsWeekday reports whether name is one of "monday".."sunday".
func IsWeekday(name string) bool {
	_, ok := weekdays[name]
	return ok
}

// IsClockTime reports whether s is a 24-hour "HH:MM" time.
func IsClockTime(s string) bool {
	return clockRegex.MatchString(s)
}

// parseClock splits a "HH:MM" time into hours and minutes.
func parseClock(s string) (int, int, error) {
	m := clockRegex.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, fmt.Errorf("invalid time %q", s)
	}
	h, _ := strconv.Atoi(m[1])
	mins, _ := strconv.Atoi(m[2])
	return h, mins, nil
}

// endTime adds the session duration to a "HH:MM" start.
// The hour is not wrapped: "23:30" ends at "24:30".
func endTime(start string) (string, error) {
	h, m, err := parseClock(start)
	if err != nil {
		return "", err
	}
	total := h*60 + m + sessionDuration
	return fmt.Sprintf("%02d:%02d", total/60, total%60), nil
}

func (s *Schedule) clean() {
	s.Time = core.CleanString(s.Time)
	for i, day := range s.RecurringDays {
		s.RecurringDays[i] = core.CleanString(day, true /* lower */)
	}
}

// Validate checks the schedule without a validator instance.
func (s Schedule) Validate() error {
	var flds []core.FieldError
	if s.StartDate.IsZero() {
		flds = append(flds, core.FieldError{Field: "startDate", Error: "this field is required"})
	}
	if s.EndDate.IsZero() {
		flds = append(flds, core.FieldError{Field: "endDate", Error: "this field is required"})
	}
	if !s.StartDate.IsZero() && !s.EndDate.IsZero() && s.EndDate.Before(s.StartDate.Time) {
		flds = append(flds, core.FieldError{Field: "endDate", Error: "endDate must not be before startDate"})
	}
	if !IsClockTime(s.Time) {
		flds = append(flds, core.FieldError{Field: "time", Error: "time must be a 24-hour HH:MM time"})
	}
	for _, day := range s.RecurringDays {
		if !IsWeekday(day) {
			flds = append(flds, core.FieldError{Field: "recurringDays", Error: fmt.Sprintf("unknown weekday %q", day)})
			break
		}
	}
	if len(flds) > 0 {
		return core.NewValidationError(nil, flds...)
	}
	return nil
}

// ValidateBounded checks the schedule like Validate and rejects ranges longer than
// maxScheduleYears. Schedules coming from requests go through it before being materialized.
func (s Schedule) ValidateBounded() error {
	if err := s.Validate(); err != nil {
		return err
	}
	if s.EndDate.After(s.StartDate.AddDate(maxScheduleYears, 0, 0)) {
		return core.NewFieldValidationError("endDate", fmt.Sprintf("a schedule cannot span more than %d years", maxScheduleYears))
	}
	return nil
}

// MaterializeSessions returns one Session per date in [StartDate, EndDate]
// whose weekday is in RecurringDays, ordered by date.
func MaterializeSessions(s Schedule) ([]Session, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	end, err := endTime(s.Time)
	if err != nil {
		return nil, core.NewFieldValidationError("time", err.Error())
	}

	days := make(map[time.Weekday]bool, len(s.RecurringDays))
	for _, name := range s.RecurringDays {
		days[weekdays[name]] = true
	}

	sessions := make([]Session, 0)
	if len(days) == 0 {
		return sessions, nil
	}
	first, last := DateOf(s.StartDate.Time), DateOf(s.EndDate.Time)
	for d := first; !d.After(last.Time); d = d.AddDays(1) {
		if !days[d.Weekday()] {
			continue
		}
		sessions = append(sessions, Session{
			ID:         newID(),
			Date:       d,
			StartTime:  s.Time,
			EndTime:    end,
			Attendance: []AttendanceRecord{},
			Objectives: []string{},
		})
	}
	return sessions, nil
}

// PreviewSessions normalizes the schedule, then materializes it without storing anything.
func PreviewSessions(s Schedule) ([]Session, error) {
	s.RecurringDays = append([]string(nil), s.RecurringDays...)
	s.clean()
	if err := s.ValidateBounded(); err != nil {
		return nil, err
	}
	return MaterializeSessions(s)
}
