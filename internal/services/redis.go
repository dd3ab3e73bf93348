package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"typing-trainer-backend/internal/config"
	"typing-trainer-backend/internal/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// HistoryCache mirrors the newest input history entries in Redis so pages
// can show recent runs without reading the log file.
type HistoryCache struct {
	client *redis.Client
	size   int64
	logger *zap.Logger
}

func NewHistoryCache(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*HistoryCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &HistoryCache{
		client: client,
		size:   int64(cfg.HistoryCacheSize),
		logger: logger,
	}, nil
}

func (c *HistoryCache) Push(ctx context.Context, entry *models.HistoryEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal history entry: %w", err)
	}

	tx := c.client.TxPipeline()
	tx.LPush(ctx, KeyRecentHistory, data)
	tx.LTrim(ctx, KeyRecentHistory, 0, c.size-1)
	tx.Incr(ctx, KeyHistoryTotal)
	tx.HIncrBy(ctx, KeyHistoryByDifficulty, entry.DifficultyLabel(), 1)

	if _, err := tx.Exec(ctx); err != nil {
		return fmt.Errorf("failed to push history entry: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first. Out of range limits
// fall back to DefaultRecentLimit, capped at the cache size.
func (c *HistoryCache) Recent(ctx context.Context, limit int64) ([]*models.HistoryEntry, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	if limit > c.size {
		limit = c.size
	}

	items, err := c.client.LRange(ctx, KeyRecentHistory, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get recent history: %w", err)
	}

	entries := make([]*models.HistoryEntry, 0, len(items))
	for i, item := range items {
		var entry models.HistoryEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			c.logger.Warn("Skipping undecodable history entry",
				zap.Int("index", i),
				zap.Int("bytes", len(item)),
				zap.Error(err),
			)
			continue
		}
		entries = append(entries, &entry)
	}

	return entries, nil
}

// Total is the number of entries pushed since the counter was created.
func (c *HistoryCache) Total(ctx context.Context) (int64, error) {
	n, err := c.client.Get(ctx, KeyHistoryTotal).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get history total: %w", err)
	}
	return n, nil
}

// DifficultyCounts returns how many entries were pushed per difficulty.
func (c *HistoryCache) DifficultyCounts(ctx context.Context) (map[string]int64, error) {
	raw, err := c.client.HGetAll(ctx, KeyHistoryByDifficulty).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get difficulty counts: %w", err)
	}

	counts := make(map[string]int64, len(raw))
	for label, v := range raw {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid count for difficulty %q: %w", label, err)
		}
		counts[label] = n
	}
	return counts, nil
}

func (c *HistoryCache) Clear(ctx context.Context) error {
	return c.client.Del(ctx, KeyRecentHistory, KeyHistoryTotal, KeyHistoryByDifficulty).Err()
}

func (c *HistoryCache) Close() error {
	return c.client.Close()
}
