package services_test

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"typing-trainer-backend/internal/services"
)

func TestFileStoreAppendCreatesDirectories(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := services.NewFileStore(zap.NewNop())
	defer store.Close()

	path := filepath.Join(t.TempDir(), "logs", "nested", "history.jsonl")
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, path, map[string]int{"n": 1}))
	require.NoError(t, store.Append(ctx, path, map[string]int{"n": 2}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\"n\":1}\n{\"n\":2}\n", string(data))
}

func TestFileStoreConcurrentAppendsDoNotInterleave(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := services.NewFileStore(zap.NewNop())
	defer store.Close()

	path := filepath.Join(t.TempDir(), "history.jsonl")
	payload := strings.Repeat("x", 16*1024)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := store.Append(context.Background(), path, map[string]interface{}{"i": i, "payload": payload})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 64*1024)

	seen := make(map[int]bool)
	for scanner.Scan() {
		var rec struct {
			I       int    `json:"i"`
			Payload string `json:"payload"`
		}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec))
		assert.Equal(t, payload, rec.Payload)
		seen[rec.I] = true
	}
	require.NoError(t, scanner.Err())
	assert.Len(t, seen, 50)
}

func TestFileStoreReplaceOverwrites(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := services.NewFileStore(zap.NewNop())
	defer store.Close()

	path := filepath.Join(t.TempDir(), "game_data.json")
	ctx := context.Background()

	require.NoError(t, store.Replace(ctx, path, []byte(`{"score": 100, "extra": "longer first body"}`)))
	require.NoError(t, store.Replace(ctx, path, []byte(`{"score": 7}`)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"score": 7}`, string(data))
}

func TestFileStoreWriteFailure(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := services.NewFileStore(zap.NewNop())
	defer store.Close()

	dir := t.TempDir()
	assert.Error(t, store.Replace(context.Background(), dir, []byte(`{}`)))
}

func TestFileStoreClosed(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := services.NewFileStore(zap.NewNop())
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())

	err := store.Append(context.Background(), filepath.Join(t.TempDir(), "x.jsonl"), map[string]int{})
	assert.ErrorIs(t, err, services.ErrStoreClosed)
}
