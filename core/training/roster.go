package training

import "time"

// enroll appends an active enrollment and adds the participant to every
// session that has not started yet (date >= now). Past sessions are left untouched.
func (tc *TrainingClass) enroll(traineeID, horseID string, now time.Time) error {
	if tc.ActiveCount() >= tc.MaxParticipants {
		return ErrCapacityExceeded
	}
	if tc.activeEnrollment(traineeID) >= 0 {
		return ErrDuplicateEnrollment
	}

	tc.EnrolledTrainees = append(tc.EnrolledTrainees, Enrollment{
		Trainee:        traineeID,
		Horse:          horseID,
		EnrollmentDate: now,
		Status:         StatusActive,
	})
	for i := range tc.Sessions {
		s := &tc.Sessions[i]
		if s.Date.Before(now) {
			continue
		}
		s.Attendance = append(s.Attendance, AttendanceRecord{
			Trainee: traineeID,
			Horse:   horseID,
		})
	}
	return nil
}

// withdraw ends the trainee's active enrollment and drops them from the rosters
// of sessions that have not started yet. Past attendance is kept.
func (tc *TrainingClass) withdraw(traineeID string, now time.Time) error {
	idx := tc.activeEnrollment(traineeID)
	if idx < 0 {
		return ErrNotFound
	}
	tc.EnrolledTrainees[idx].Status = StatusWithdrawn

	for i := range tc.Sessions {
		s := &tc.Sessions[i]
		if s.Date.Before(now) {
			continue
		}
		kept := s.Attendance[:0]
		for _, r := range s.Attendance {
			if r.Trainee != traineeID {
				kept = append(kept, r)
			}
		}
		s.Attendance = kept
	}
	return nil
}
