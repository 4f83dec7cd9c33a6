package inmemdb_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/ecurie/core/training"
	"github.com/trezcool/ecurie/storage/database/dbtest"
	"github.com/trezcool/ecurie/storage/database/inmem"
)

func newRepo(t *testing.T) training.Repository {
	db, err := inmemdb.Open()
	require.NoError(t, err)
	return inmemdb.NewTrainingRepository(db)
}

func TestTrainingRepository(t *testing.T) {
	dbtest.RunRepositoryTests(t, newRepo)
}

func TestTrainingRepository_returnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	tc := dbtest.CreateClass(t, repo, "Dressage Basics", training.LevelBeginner, "trainer-1", 40)

	got, err := repo.GetClass(ctx, tc.ID)
	require.NoError(t, err)
	got.Sessions[0].Attendance = append(got.Sessions[0].Attendance, training.AttendanceRecord{Trainee: "amy"})
	got.Schedule.RecurringDays[0] = "sunday"

	again, err := repo.GetClass(ctx, tc.ID)
	require.NoError(t, err)
	assert.Empty(t, again.Sessions[0].Attendance)
	assert.Equal(t, []string{"monday", "wednesday"}, again.Schedule.RecurringDays)
}

func TestTrainingRepository_concurrentSaves(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t)
	tc := dbtest.CreateClass(t, repo, "Dressage Basics", training.LevelBeginner, "trainer-1", 40)

	const writers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		saved     int
		conflicts int
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.SaveClass(ctx, tc) // every writer read version 1
			mu.Lock()
			defer mu.Unlock()
			switch err {
			case nil:
				saved++
			case training.ErrConflict:
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, saved)
	assert.Equal(t, writers-1, conflicts)
}

func TestDB_Reset(t *testing.T) {
	db, err := inmemdb.Open()
	require.NoError(t, err)
	repo := inmemdb.NewTrainingRepository(db)
	dbtest.CreateClass(t, repo, "Dressage Basics", training.LevelBeginner, "trainer-1", 40)

	db.Reset()
	classes, err := repo.QueryClasses(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, classes)
}
