package dbtest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/ecurie/core"
	"github.com/trezcool/ecurie/core/training"
)

// RunRepositoryTests checks the behaviour every training.Repository must share.
// newRepo must return an empty repository.
func RunRepositoryTests(t *testing.T, newRepo func(t *testing.T) training.Repository) {
	ctx := context.Background()

	t.Run("create & get", func(t *testing.T) {
		repo := newRepo(t)
		tc := CreateClass(t, repo, "Dressage Basics", training.LevelBeginner, "trainer-1", 40)

		assert.NotEmpty(t, tc.ID)
		assert.Equal(t, 1, tc.Version)

		got, err := repo.GetClass(ctx, tc.ID)
		require.NoError(t, err)
		assert.Equal(t, tc, got)

		_, err = repo.GetClass(ctx, uuid.New().String())
		assert.Equal(t, training.ErrNotFound, err)
	})

	t.Run("save is version checked", func(t *testing.T) {
		repo := newRepo(t)
		tc := CreateClass(t, repo, "Dressage Basics", training.LevelBeginner, "trainer-1", 40)

		mod := tc
		mod.Name = "Dressage II"
		mod.EnrolledTrainees = []training.Enrollment{{
			Trainee:        "amy",
			Horse:          "bolt",
			EnrollmentDate: time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC),
			Status:         training.StatusActive,
		}}
		saved, err := repo.SaveClass(ctx, mod)
		require.NoError(t, err)
		assert.Equal(t, 2, saved.Version)

		got, err := repo.GetClass(ctx, tc.ID)
		require.NoError(t, err)
		assert.Equal(t, saved, got)

		// tc still carries version 1
		tc.Name = "Stale"
		_, err = repo.SaveClass(ctx, tc)
		assert.Equal(t, training.ErrConflict, err)

		got, err = repo.GetClass(ctx, tc.ID)
		require.NoError(t, err)
		assert.Equal(t, "Dressage II", got.Name)

		unknown := tc
		unknown.ID = uuid.New().String()
		_, err = repo.SaveClass(ctx, unknown)
		assert.Equal(t, training.ErrNotFound, err)
	})

	t.Run("query", func(t *testing.T) {
		repo := newRepo(t)
		now := time.Now().UTC().Truncate(time.Second)
		basics := CreateClass(t, repo, "Dressage Basics", training.LevelBeginner, "trainer-1", 40, now.Add(-2*time.Hour))
		jumping := CreateClass(t, repo, "Show Jumping", training.LevelAdvanced, "trainer-2", 80, now.Add(-1*time.Hour))
		trail := CreateClass(t, repo, "Trail Riding", training.LevelBeginner, "trainer-2", 25, now)

		ids := func(classes []training.TrainingClass) []string {
			res := make([]string, len(classes))
			for i, tc := range classes {
				res[i] = tc.ID
			}
			return res
		}
		tests := []struct {
			name     string
			filter   *training.QueryFilter
			ordering []core.DBOrdering
			want     []string
		}{
			{name: "all (newest first)", want: []string{trail.ID, jumping.ID, basics.ID}},
			{name: "trainer", filter: &training.QueryFilter{Trainer: "trainer-2"}, want: []string{trail.ID, jumping.ID}},
			{name: "level", filter: &training.QueryFilter{Level: training.LevelBeginner}, want: []string{trail.ID, basics.ID}},
			{name: "search", filter: &training.QueryFilter{Search: "JUMP"}, want: []string{jumping.ID}},
			{name: "search (unknown)", filter: &training.QueryFilter{Search: "polo"}, want: []string{}},
			{
				name: "price asc", ordering: []core.DBOrdering{{Field: "price", Ascending: true}},
				want: []string{trail.ID, basics.ID, jumping.ID},
			},
			{
				name: "level asc, name desc", ordering: []core.DBOrdering{{Field: "level", Ascending: true}, {Field: "name"}},
				want: []string{jumping.ID, trail.ID, basics.ID},
			},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				classes, err := repo.QueryClasses(ctx, tt.filter, tt.ordering)
				require.NoError(t, err)
				assert.Equal(t, tt.want, ids(classes))
			})
		}
	})

	t.Run("delete", func(t *testing.T) {
		repo := newRepo(t)
		tc := CreateClass(t, repo, "Dressage Basics", training.LevelBeginner, "trainer-1", 40)

		require.NoError(t, repo.DeleteClass(ctx, tc.ID))
		_, err := repo.GetClass(ctx, tc.ID)
		assert.Equal(t, training.ErrNotFound, err)
		assert.Equal(t, training.ErrNotFound, repo.DeleteClass(ctx, tc.ID))

		classes, err := repo.QueryClasses(ctx, nil, nil)
		require.NoError(t, err)
		assert.Empty(t, classes)
	})
}
