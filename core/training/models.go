package training

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/ecurie/core"
)

// Enrollment statuses
const (
	StatusActive    = "active"
	StatusWithdrawn = "withdrawn"
	StatusCompleted = "completed"
)

// Performance levels
const (
	PerformanceExcellent        = "excellent"
	PerformanceGood             = "good"
	PerformanceSatisfactory     = "satisfactory"
	PerformanceNeedsImprovement = "needs_improvement"
)

// Class levels
const (
	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
)

var Performances = []string{
	PerformanceExcellent,
	PerformanceGood,
	PerformanceSatisfactory,
	PerformanceNeedsImprovement,
}

type (
	// Schedule is the recurrence rule sessions are materialized from.
	Schedule struct {
		StartDate     Date     `json:"startDate"`
		EndDate       Date     `json:"endDate"`
		RecurringDays []string `json:"recurringDays" validate:"dive,weekday"`
		Time          string   `json:"time" validate:"required,clocktime"` // HH:MM
	}

	AttendanceRecord struct {
		Trainee     string      `json:"trainee"`
		Horse       string      `json:"horse"`
		Attended    bool        `json:"attended"`
		Performance null.String `json:"performance"`
		Notes       null.String `json:"notes"`
	}

	// Session is one concrete calendar occurrence of a TrainingClass.
	Session struct {
		ID         string             `json:"id"`
		Date       Date               `json:"date"`
		StartTime  string             `json:"startTime"`
		EndTime    string             `json:"endTime"`
		Attendance []AttendanceRecord `json:"attendance"`
		Objectives []string           `json:"objectives"`
		Completed  bool               `json:"completed"`
	}

	Enrollment struct {
		Trainee        string    `json:"trainee"`
		Horse          string    `json:"horse"`
		EnrollmentDate time.Time `json:"enrollmentDate"` // UTC
		Status         string    `json:"status"`
	}

	TrainingClass struct {
		ID               string       `json:"id"`
		Name             string       `json:"name"`
		Type             string       `json:"type"`
		Level            string       `json:"level"`
		Location         string       `json:"location"`
		Price            float64      `json:"price"`
		Trainer          string       `json:"trainer"`
		Schedule         Schedule     `json:"schedule"`
		Sessions         []Session    `json:"sessions"`
		EnrolledTrainees []Enrollment `json:"enrolledTrainees"`
		MaxParticipants  int          `json:"maxParticipants"`
		Version          int          `json:"version"`
		CreatedAt        time.Time    `json:"createdAt"` // UTC
		UpdatedAt        time.Time    `json:"updatedAt"` // UTC
	}
)

// ActiveCount returns the number of active enrollments.
func (tc *TrainingClass) ActiveCount() int {
	var n int
	for _, e := range tc.EnrolledTrainees {
		if e.Status == StatusActive {
			n++
		}
	}
	return n
}

// activeEnrollment returns the index of the trainee's active enrollment or -1.
func (tc *TrainingClass) activeEnrollment(traineeID string) int {
	for i, e := range tc.EnrolledTrainees {
		if e.Trainee == traineeID && e.Status == StatusActive {
			return i
		}
	}
	return -1
}

// enrollmentOf returns the trainee's active enrollment, or else their latest one.
func (tc *TrainingClass) enrollmentOf(traineeID string) (Enrollment, bool) {
	if i := tc.activeEnrollment(traineeID); i >= 0 {
		return tc.EnrolledTrainees[i], true
	}
	for i := len(tc.EnrolledTrainees) - 1; i >= 0; i-- {
		if tc.EnrolledTrainees[i].Trainee == traineeID {
			return tc.EnrolledTrainees[i], true
		}
	}
	return Enrollment{}, false
}

// Session returns the session with the given id.
func (tc *TrainingClass) Session(id string) (*Session, bool) {
	for i := range tc.Sessions {
		if tc.Sessions[i].ID == id {
			return &tc.Sessions[i], true
		}
	}
	return nil, false
}

// Clone returns a deep copy of the class.
func (tc TrainingClass) Clone() TrainingClass {
	c := tc
	c.Schedule.RecurringDays = cloneSlice(tc.Schedule.RecurringDays)
	c.EnrolledTrainees = cloneSlice(tc.EnrolledTrainees)
	c.Sessions = cloneSlice(tc.Sessions)
	for i := range c.Sessions {
		c.Sessions[i].Attendance = cloneSlice(c.Sessions[i].Attendance)
		c.Sessions[i].Objectives = cloneSlice(c.Sessions[i].Objectives)
	}
	return c
}

// cloneSlice copies s, keeping nil and empty slices apart.
func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append(make([]T, 0, len(s)), s...)
}

func (s *Session) record(traineeID string) int {
	for i, r := range s.Attendance {
		if r.Trainee == traineeID {
			return i
		}
	}
	return -1
}

// NewClass contains information needed to create a new TrainingClass.
type NewClass struct {
	Name            string   `json:"name" validate:"required,notblank"`
	Type            string   `json:"type"`
	Level           string   `json:"level" validate:"omitempty,oneof=beginner intermediate advanced"`
	Location        string   `json:"location"`
	Price           float64  `json:"price" validate:"gte=0"`
	Trainer         string   `json:"trainer"`
	Schedule        Schedule `json:"schedule"`
	MaxParticipants int      `json:"maxParticipants" validate:"required,gte=1"`
}

func (nc *NewClass) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Type = core.CleanString(nc.Type)
	nc.Level = core.CleanString(nc.Level, true /* lower */)
	nc.Location = core.CleanString(nc.Location)
	nc.Trainer = core.CleanString(nc.Trainer)
	nc.Schedule.clean()

	if err := validate.Struct(nc); err != nil {
		return err
	}
	return nc.Schedule.ValidateBounded()
}

// UpdateClass defines what information may be provided to modify an existing TrainingClass.
// Nil fields are left unchanged; a non-nil Schedule regenerates every session.
type UpdateClass struct {
	Name            *string   `json:"name" validate:"omitempty,notblank"`
	Type            *string   `json:"type"`
	Level           *string   `json:"level" validate:"omitempty,oneof=beginner intermediate advanced"`
	Location        *string   `json:"location"`
	Price           *float64  `json:"price" validate:"omitempty,gte=0"`
	Trainer         *string   `json:"trainer"`
	Schedule        *Schedule `json:"schedule"`
	MaxParticipants *int      `json:"maxParticipants" validate:"omitempty,gte=1"`
}

func (uc *UpdateClass) Validate(validate *validator.Validate) error {
	if uc.Level != nil {
		lvl := core.CleanString(*uc.Level, true /* lower */)
		uc.Level = &lvl
	}
	if uc.Schedule != nil {
		uc.Schedule.clean()
	}
	if err := validate.Struct(uc); err != nil {
		return err
	}
	if uc.Schedule != nil {
		return uc.Schedule.ValidateBounded()
	}
	return nil
}

// AttendanceUpdate overwrites one participant's record in a session.
// Omitted performance or notes clear the stored value.
type AttendanceUpdate struct {
	Trainee     string      `json:"trainee" validate:"required"`
	Attended    bool        `json:"attended"`
	Performance null.String `json:"performance" validate:"omitempty,performance"`
	Notes       null.String `json:"notes"`
}

type EnrollRequest struct {
	Trainee string `json:"trainee" validate:"required"`
	Horse   string `json:"horse" validate:"required"`
}

func (er *EnrollRequest) Validate(validate *validator.Validate) error {
	er.Trainee = core.CleanString(er.Trainee)
	er.Horse = core.CleanString(er.Horse)
	return validate.Struct(er)
}

type AttendanceRequest struct {
	Updates []AttendanceUpdate `json:"updates" validate:"required,dive"`
}

func (ar *AttendanceRequest) Validate(validate *validator.Validate) error {
	for i := range ar.Updates {
		ar.Updates[i].Trainee = core.CleanString(ar.Updates[i].Trainee)
	}
	return validate.Struct(ar)
}

type QueryFilter struct {
	Search  string `query:"search"`
	Trainer string `query:"trainer"`
	Level   string `query:"level"`
	Type    string `query:"type"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Trainer == "" && qf.Level == "" && qf.Type == ""
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Trainer = core.CleanString(qf.Trainer)
	qf.Level = core.CleanString(qf.Level, true /* lower */)
	qf.Type = core.CleanString(qf.Type)
}
