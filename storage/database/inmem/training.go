package inmemdb

import (
	"context"

	"github.com/google/uuid"

	"github.com/trezcool/ecurie/core"
	"github.com/trezcool/ecurie/core/training"
)

type trainingRepository struct {
	db *classTable
}

var _ training.Repository = (*trainingRepository)(nil) // interface compliance check

func NewTrainingRepository(db *DB) training.Repository {
	return &trainingRepository{db: db.class}
}

func (repo *trainingRepository) query() []training.TrainingClass {
	classes := make([]training.TrainingClass, 0, len(repo.db.table))
	for _, tc := range repo.db.table {
		classes = append(classes, tc.Clone())
	}
	return classes
}

func (repo *trainingRepository) CreateClass(_ context.Context, tc training.TrainingClass) (training.TrainingClass, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	tc.ID = uuid.New().String()
	tc.Version = 1
	stored := tc.Clone()
	repo.db.table[tc.ID] = &stored
	return tc, nil
}

func (repo *trainingRepository) GetClass(_ context.Context, id string) (training.TrainingClass, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if tc, ok := repo.db.table[id]; ok {
		return tc.Clone(), nil
	}
	return training.TrainingClass{}, training.ErrNotFound
}

func (repo *trainingRepository) QueryClasses(
	_ context.Context,
	filter *training.QueryFilter,
	ordering []core.DBOrdering,
) ([]training.TrainingClass, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	classes := training.FilterClasses(repo.query(), filter)
	training.SortClasses(classes, ordering)
	return classes, nil
}

func (repo *trainingRepository) SaveClass(_ context.Context, tc training.TrainingClass) (training.TrainingClass, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[tc.ID]
	if !ok {
		return training.TrainingClass{}, training.ErrNotFound
	}
	if orig.Version != tc.Version {
		return training.TrainingClass{}, training.ErrConflict
	}
	tc.Version++
	stored := tc.Clone()
	repo.db.table[tc.ID] = &stored
	return tc, nil
}

func (repo *trainingRepository) DeleteClass(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return training.ErrNotFound
	}
	delete(repo.db.table, id)
	return nil
}
