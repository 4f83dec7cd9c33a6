package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("ENV", "")

		conf, err := NewConfig()
		require.NoError(t, err)
		assert.Equal(t, "DEV", conf.Env)
		assert.Equal(t, "Ecurie", conf.AppName)
		assert.True(t, conf.Debug)
		assert.False(t, conf.TestMode)
		assert.Equal(t, ":8000", conf.Server.Address)
		assert.Equal(t, 5*time.Second, conf.Server.ShutdownTimeout)
		assert.Equal(t, "localhost:5432", conf.Database.Address())
		assert.Equal(t, StoragePostgres, conf.Storage.Engine)
		assert.Equal(t, 3, conf.Training.SaveRetries)
	})

	t.Run("env prefixed overrides", func(t *testing.T) {
		t.Setenv("ENV", "test")
		t.Setenv("TEST_DEBUG", "false")
		t.Setenv("TEST_STORAGE_ENGINE", "Redis")
		t.Setenv("TEST_REDIS_ADDRESS", "cache:6380")
		t.Setenv("TEST_TRAINING_SAVERETRIES", "7")
		t.Setenv("TEST_SERVER_SHUTDOWNTIMEOUT", "10s")
		t.Setenv("DEV_DATABASE_NAME", "ignored")

		conf, err := NewConfig()
		require.NoError(t, err)
		assert.Equal(t, "TEST", conf.Env)
		assert.True(t, conf.TestMode)
		assert.False(t, conf.Debug)
		assert.Equal(t, StorageRedis, conf.Storage.Engine)
		assert.Equal(t, "cache:6380", conf.Redis.Address)
		assert.Equal(t, 7, conf.Training.SaveRetries)
		assert.Equal(t, 10*time.Second, conf.Server.ShutdownTimeout)
		assert.Equal(t, "ecurie", conf.Database.Name)
	})

	t.Run("unknown storage engine", func(t *testing.T) {
		t.Setenv("ENV", "test")
		t.Setenv("TEST_STORAGE_ENGINE", "mongo")

		_, err := NewConfig()
		assert.EqualError(t, err, `unknown storage engine "mongo"`)
	})
}

func TestCleanString(t *testing.T) {
	assert.Equal(t, "Arena 1", CleanString("  Arena 1\t"))
	assert.Equal(t, "monday", CleanString(" Monday ", true))
	assert.Equal(t, "", CleanString("   "))
}
