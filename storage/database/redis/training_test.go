package redisrepos_test

import (
	"testing"

	"github.com/trezcool/ecurie/core/training"
	"github.com/trezcool/ecurie/storage/database/dbtest"
	"github.com/trezcool/ecurie/storage/database/redis"
)

func TestTrainingRepository(t *testing.T) {
	dbtest.RunRepositoryTests(t, func(t *testing.T) training.Repository {
		return redisrepos.NewTrainingRepository(dbtest.PrepareRedis(t))
	})
}
