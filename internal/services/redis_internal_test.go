package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"typing-trainer-backend/internal/config"
	"typing-trainer-backend/internal/models"
)

func TestHistoryCacheRecentLogsUndecodableEntries(t *testing.T) {
	cfg := &config.Config{
		RedisURL:         "localhost:6379",
		RedisDB:          15,
		HistoryCacheSize: 10,
	}

	core, logs := observer.New(zap.WarnLevel)
	ctx := context.Background()
	cache, err := NewHistoryCache(ctx, cfg, zap.New(core))
	if err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	defer cache.Close()

	require.NoError(t, cache.Clear(ctx))
	defer cache.Clear(ctx)

	require.NoError(t, cache.Push(ctx, &models.HistoryEntry{
		Timestamp:  models.FormatTimestamp(time.Now()),
		Difficulty: json.RawMessage(`"easy"`),
	}))
	require.NoError(t, cache.client.LPush(ctx, KeyRecentHistory, "{not json").Err())

	entries, err := cache.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	skipped := logs.FilterMessage("Skipping undecodable history entry").All()
	require.Len(t, skipped, 1)
	assert.EqualValues(t, 0, skipped[0].ContextMap()["index"])
}
