// Package dbtest provides helpers shared by the repository tests.
package dbtest

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/trezcool/ecurie/core/training"
	"github.com/trezcool/ecurie/storage/database"
)

// PrepareDB opens the postgres database named by TEST_DATABASE_URL,
// migrates it and empties it. The test is skipped when the variable is unset.
func PrepareDB(t *testing.T) *sqlx.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("PrepareDB(): %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err = database.Migrate(db.DB); err != nil {
		t.Fatalf("PrepareDB(): %v", err)
	}
	if _, err = db.Exec("TRUNCATE training_class"); err != nil {
		t.Fatalf("PrepareDB(): %v", err)
	}
	return db
}

// PrepareRedis connects to the redis server at TEST_REDIS_ADDR and flushes its DB.
// The test is skipped when the variable is unset.
func PrepareRedis(t *testing.T) *redis.Client {
	t.Helper()

	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	if err := client.FlushDB(context.Background()).Err(); err != nil {
		t.Fatalf("PrepareRedis(): %v", err)
	}
	return client
}

// CreateClass stores a two-session class (Mon 2024-01-01 and Wed 2024-01-03).
func CreateClass(
	t *testing.T,
	repo training.Repository,
	name, level, trainer string,
	price float64,
	createdAt ...time.Time,
) training.TrainingClass {
	t.Helper()

	tstamp := time.Now().UTC().Truncate(time.Microsecond)
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	sched := training.Schedule{
		StartDate:     training.NewDate(2024, 1, 1),
		EndDate:       training.NewDate(2024, 1, 3),
		RecurringDays: []string{"monday", "wednesday"},
		Time:          "09:00",
	}
	sessions, err := training.MaterializeSessions(sched)
	if err != nil {
		t.Fatalf("CreateClass(): %v", err)
	}

	tc, err := repo.CreateClass(context.Background(), training.TrainingClass{
		Name:             name,
		Type:             "Dressage",
		Level:            level,
		Location:         "Arena 1",
		Price:            price,
		Trainer:          trainer,
		Schedule:         sched,
		Sessions:         sessions,
		EnrolledTrainees: []training.Enrollment{},
		MaxParticipants:  4,
		CreatedAt:        tstamp,
		UpdatedAt:        tstamp,
	})
	if err != nil {
		t.Fatalf("CreateClass(): %v", err)
	}
	return tc
}
