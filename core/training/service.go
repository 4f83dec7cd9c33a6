package training

import (
	"context"
	"time"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/ecurie/core"
)

var (
	// errors
	ErrNotFound            = errors.New("training class not found")
	ErrForbidden           = errors.New("permission denied")
	ErrCapacityExceeded    = errors.New("training class is full")
	ErrDuplicateEnrollment = errors.New("trainee is already enrolled in this training class")
	ErrConflict            = errors.New("training class was modified concurrently")
)

type (
	// Repository stores TrainingClass aggregates as whole documents.
	Repository interface {
		// CreateClass assigns the class ID and sets Version to 1.
		CreateClass(ctx context.Context, tc TrainingClass) (TrainingClass, error)
		// GetClass returns ErrNotFound when no class has this id.
		GetClass(ctx context.Context, id string) (TrainingClass, error)
		QueryClasses(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]TrainingClass, error)
		// SaveClass replaces the stored document if its version still equals tc.Version,
		// then increments it. A stale version yields ErrConflict.
		SaveClass(ctx context.Context, tc TrainingClass) (TrainingClass, error)
		DeleteClass(ctx context.Context, id string) error
	}

	Service interface {
		CreateClass(ctx context.Context, actor Actor, nc NewClass) (TrainingClass, error)
		GetClass(ctx context.Context, id string) (TrainingClass, error)
		QueryClasses(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]TrainingClass, error)
		UpdateClass(ctx context.Context, actor Actor, id string, uc UpdateClass) (TrainingClass, error)
		DeleteClass(ctx context.Context, actor Actor, id string) error
		Enroll(ctx context.Context, actor Actor, classID, traineeID, horseID string) (TrainingClass, error)
		Withdraw(ctx context.Context, actor Actor, classID, traineeID string) (TrainingClass, error)
		RecordAttendance(ctx context.Context, actor Actor, classID, sessionID string, updates []AttendanceUpdate) (TrainingClass, error)
	}

	service struct {
		repo        Repository
		saveRetries int
		now         func() time.Time
	}
)

var _ Service = (*service)(nil) // interface compliance check

func NewService(repo Repository, saveRetries int) Service {
	vala.BeginValidation().Validate(
		vala.IsNotNil(repo, "repo"),
		vala.GreaterThan(saveRetries, -1, "saveRetries"),
	).CheckAndPanic()

	return &service{
		repo:        repo,
		saveRetries: saveRetries,
		now:         time.Now,
	}
}

func (svc *service) CreateClass(ctx context.Context, actor Actor, nc NewClass) (TrainingClass, error) {
	switch {
	case actor.IsAdmin():
		if nc.Trainer == "" {
			return TrainingClass{}, core.NewFieldValidationError("trainer", "this field is required")
		}
	case actor.IsTrainer():
		if nc.Trainer == "" {
			nc.Trainer = actor.ID
		} else if nc.Trainer != actor.ID {
			return TrainingClass{}, ErrForbidden
		}
	default:
		return TrainingClass{}, ErrForbidden
	}

	if nc.MaxParticipants < 1 {
		return TrainingClass{}, core.NewFieldValidationError("maxParticipants", "maxParticipants must be 1 or greater")
	}
	if err := nc.Schedule.ValidateBounded(); err != nil {
		return TrainingClass{}, err
	}
	sessions, err := MaterializeSessions(nc.Schedule)
	if err != nil {
		return TrainingClass{}, err
	}

	now := svc.now().UTC()
	tc := TrainingClass{
		Name:             nc.Name,
		Type:             nc.Type,
		Level:            nc.Level,
		Location:         nc.Location,
		Price:            nc.Price,
		Trainer:          nc.Trainer,
		Schedule:         nc.Schedule,
		Sessions:         sessions,
		EnrolledTrainees: []Enrollment{},
		MaxParticipants:  nc.MaxParticipants,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	tc, err = svc.repo.CreateClass(ctx, tc)
	return tc, errors.Wrap(err, "creating training class")
}

func (svc *service) GetClass(ctx context.Context, id string) (TrainingClass, error) {
	return svc.repo.GetClass(ctx, id)
}

func (svc *service) QueryClasses(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]TrainingClass, error) {
	return svc.repo.QueryClasses(ctx, filter, ordering)
}

func (svc *service) UpdateClass(ctx context.Context, actor Actor, id string, uc UpdateClass) (TrainingClass, error) {
	return svc.modify(ctx, id, func(tc *TrainingClass, _ time.Time) error {
		if !actor.CanManage(*tc) {
			return ErrForbidden
		}
		if uc.Trainer != nil && *uc.Trainer != tc.Trainer {
			if !actor.IsAdmin() {
				return ErrForbidden
			}
			tc.Trainer = *uc.Trainer
		}
		if uc.MaxParticipants != nil {
			if *uc.MaxParticipants < tc.ActiveCount() {
				return core.NewFieldValidationError("maxParticipants", "maxParticipants cannot be lower than the number of active enrollments")
			}
			tc.MaxParticipants = *uc.MaxParticipants
		}
		if uc.Name != nil {
			tc.Name = core.CleanString(*uc.Name)
		}
		if uc.Type != nil {
			tc.Type = core.CleanString(*uc.Type)
		}
		if uc.Level != nil {
			tc.Level = *uc.Level
		}
		if uc.Location != nil {
			tc.Location = core.CleanString(*uc.Location)
		}
		if uc.Price != nil {
			tc.Price = *uc.Price
		}
		if uc.Schedule != nil {
			// regenerate: attendance recorded on the previous sessions is discarded
			if err := uc.Schedule.ValidateBounded(); err != nil {
				return err
			}
			sessions, err := MaterializeSessions(*uc.Schedule)
			if err != nil {
				return err
			}
			tc.Schedule = *uc.Schedule
			tc.Sessions = sessions
		}
		return nil
	})
}

func (svc *service) DeleteClass(ctx context.Context, actor Actor, id string) error {
	tc, err := svc.repo.GetClass(ctx, id)
	if err != nil {
		return err
	}
	if !actor.CanManage(tc) {
		return ErrForbidden
	}
	return svc.repo.DeleteClass(ctx, id)
}

func (svc *service) Enroll(ctx context.Context, actor Actor, classID, traineeID, horseID string) (TrainingClass, error) {
	return svc.modify(ctx, classID, func(tc *TrainingClass, now time.Time) error {
		if !actor.CanEnroll(*tc, traineeID) {
			return ErrForbidden
		}
		return tc.enroll(traineeID, horseID, now)
	})
}

func (svc *service) Withdraw(ctx context.Context, actor Actor, classID, traineeID string) (TrainingClass, error) {
	return svc.modify(ctx, classID, func(tc *TrainingClass, now time.Time) error {
		if !actor.CanEnroll(*tc, traineeID) {
			return ErrForbidden
		}
		return tc.withdraw(traineeID, now)
	})
}

func (svc *service) RecordAttendance(
	ctx context.Context,
	actor Actor,
	classID, sessionID string,
	updates []AttendanceUpdate,
) (TrainingClass, error) {
	if err := validatePerformances(updates); err != nil {
		return TrainingClass{}, err
	}
	return svc.modify(ctx, classID, func(tc *TrainingClass, now time.Time) error {
		if _, ok := tc.Session(sessionID); !ok {
			return ErrNotFound
		}
		if !actor.CanManage(*tc) {
			return ErrForbidden
		}
		return tc.recordAttendance(sessionID, updates, now)
	})
}

// modify runs a read-modify-write cycle on one class document.
// The cycle is re-run from a fresh read when the write is stale.
func (svc *service) modify(ctx context.Context, id string, mutate func(tc *TrainingClass, now time.Time) error) (TrainingClass, error) {
	var err error
	for attempt := 0; attempt <= svc.saveRetries; attempt++ {
		var tc TrainingClass
		if tc, err = svc.repo.GetClass(ctx, id); err != nil {
			return TrainingClass{}, err
		}

		now := svc.now().UTC()
		if err = mutate(&tc, now); err != nil {
			return TrainingClass{}, err
		}
		tc.UpdatedAt = now

		tc, err = svc.repo.SaveClass(ctx, tc)
		if err == nil {
			return tc, nil
		}
		if errors.Cause(err) != ErrConflict {
			return TrainingClass{}, errors.Wrap(err, "saving training class")
		}
	}
	return TrainingClass{}, err
}
