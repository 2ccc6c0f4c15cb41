package database_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"npr-price-bot/internal/database"
)

func openTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "bot.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db
}

func TestUpsertSubscriber(t *testing.T) {
	t.Run("creates record on first call", func(t *testing.T) {
		db := openTestDB(t)

		require.NoError(t, db.UpsertSubscriber(42, 120))

		subs, err := db.GetAllSubscribers()
		require.NoError(t, err)
		require.Len(t, subs, 1)
		assert.Equal(t, int64(42), subs[0].ChatID)
		assert.Equal(t, float64(120), subs[0].TargetPrice)
		assert.Equal(t, "telegram", subs[0].NotificationMethod)
	})

	t.Run("is idempotent on chat id", func(t *testing.T) {
		db := openTestDB(t)

		require.NoError(t, db.UpsertSubscriber(42, 120))
		require.NoError(t, db.UpsertSubscriber(42, 130))

		subs, err := db.GetAllSubscribers()
		require.NoError(t, err)
		require.Len(t, subs, 1)
		assert.Equal(t, int64(42), subs[0].ChatID)
		assert.Equal(t, float64(130), subs[0].TargetPrice)
	})

	t.Run("keeps one record per chat id", func(t *testing.T) {
		db := openTestDB(t)

		require.NoError(t, db.UpsertSubscriber(42, 120))
		require.NoError(t, db.UpsertSubscriber(43, 95.5))
		require.NoError(t, db.UpsertSubscriber(42, 110))

		subs, err := db.GetAllSubscribers()
		require.NoError(t, err)
		require.Len(t, subs, 2)

		targets := map[int64]float64{}
		for _, sub := range subs {
			targets[sub.ChatID] = sub.TargetPrice
		}
		assert.Equal(t, map[int64]float64{42: 110, 43: 95.5}, targets)
	})
}

func TestGetAllSubscribers_Empty(t *testing.T) {
	db := openTestDB(t)

	subs, err := db.GetAllSubscribers()
	require.NoError(t, err)
	assert.Empty(t, subs)
}

func TestMetrics(t *testing.T) {
	t.Run("missing metric defaults to zero", func(t *testing.T) {
		db := openTestDB(t)

		value, err := db.GetMetric("commands_processed")
		require.NoError(t, err)
		assert.Zero(t, value)
	})

	t.Run("save and reload", func(t *testing.T) {
		db := openTestDB(t)

		require.NoError(t, db.SaveMetric("commands_processed", 7))
		require.NoError(t, db.SaveMetric("commands_processed", 12))

		value, err := db.GetMetric("commands_processed")
		require.NoError(t, err)
		assert.Equal(t, float64(12), value)
	})
}
