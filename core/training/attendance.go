package training

import (
	"time"

	"github.com/trezcool/ecurie/core"
)

func IsPerformance(p string) bool {
	for _, perf := range Performances {
		if perf == p {
			return true
		}
	}
	return false
}

func validatePerformances(updates []AttendanceUpdate) error {
	for _, u := range updates {
		if u.Performance.Valid && !IsPerformance(u.Performance.String) {
			return core.NewFieldValidationError("performance", "performance must be one of excellent, good, satisfactory or needs_improvement")
		}
	}
	return nil
}

// recordAttendance applies updates, in order, to one session.
//
// An empty roster is first seeded with every active participant.
// Updates for trainees with neither a record nor an enrollment are skipped.
// Attended, Performance and Notes are overwritten, not merged.
func (tc *TrainingClass) recordAttendance(sessionID string, updates []AttendanceUpdate, now time.Time) error {
	s, ok := tc.Session(sessionID)
	if !ok {
		return ErrNotFound
	}

	if len(s.Attendance) == 0 {
		for _, e := range tc.EnrolledTrainees {
			if e.Status == StatusActive {
				s.Attendance = append(s.Attendance, AttendanceRecord{Trainee: e.Trainee, Horse: e.Horse})
			}
		}
	}

	for _, u := range updates {
		idx := s.record(u.Trainee)
		if idx < 0 {
			e, ok := tc.enrollmentOf(u.Trainee)
			if !ok {
				continue
			}
			s.Attendance = append(s.Attendance, AttendanceRecord{Trainee: e.Trainee, Horse: e.Horse})
			idx = len(s.Attendance) - 1
		}
		rec := &s.Attendance[idx]
		rec.Attended = u.Attended
		rec.Performance = u.Performance
		rec.Notes = u.Notes
	}

	if s.Date.Before(now) {
		s.Completed = true
	}
	return nil
}
