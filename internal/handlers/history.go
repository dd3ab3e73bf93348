package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"typing-trainer-backend/internal/models"
	"typing-trainer-backend/internal/services"
)

type RecordStore interface {
	Append(ctx context.Context, path string, record interface{}) error
	Replace(ctx context.Context, path string, data []byte) error
}

type HistoryFeed interface {
	Push(ctx context.Context, entry *models.HistoryEntry) error
	Recent(ctx context.Context, limit int64) ([]*models.HistoryEntry, error)
	Total(ctx context.Context) (int64, error)
	DifficultyCounts(ctx context.Context) (map[string]int64, error)
}

type HistoryHandler struct {
	store        RecordStore
	historyFile  string
	gameDataFile string
	feed         HistoryFeed
	broadcaster  services.Broadcaster
	logger       *zap.Logger
	now          func() time.Time
}

// NewHistoryHandler wires the history and snapshot endpoints. feed may be
// nil, in which case entries only go to the log file.
func NewHistoryHandler(store RecordStore, historyFile, gameDataFile string, feed HistoryFeed, broadcaster services.Broadcaster, logger *zap.Logger) *HistoryHandler {
	return &HistoryHandler{
		store:        store,
		historyFile:  historyFile,
		gameDataFile: gameDataFile,
		feed:         feed,
		broadcaster:  broadcaster,
		logger:       logger,
		now:          time.Now,
	}
}

func (h *HistoryHandler) SaveInputHistory(c *gin.Context) {
	var req models.HistoryRequest
	if !bindBody(c, &req) {
		return
	}

	entry := models.NewHistoryEntry(&req, h.now())

	if err := h.store.Append(c.Request.Context(), h.historyFile, entry); err != nil {
		h.logger.Error("Error saving input history", zap.String("path", h.historyFile), zap.Error(err))
		c.String(http.StatusInternalServerError, "Error saving input history")
		return
	}

	if h.feed != nil {
		if err := h.feed.Push(c.Request.Context(), entry); err != nil {
			h.logger.Warn("Failed to cache input history", zap.Error(err))
		}
	}

	h.broadcaster.BroadcastEvent(models.EventHistorySaved, gin.H{
		"timestamp":  entry.Timestamp,
		"difficulty": entry.Difficulty,
	})

	c.String(http.StatusOK, "Input history saved successfully")
}

func (h *HistoryHandler) SaveGameData(c *gin.Context) {
	body, err := readJSONBody(c)
	if err != nil {
		respondBodyError(c, err)
		return
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err != nil {
		c.String(http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.store.Replace(c.Request.Context(), h.gameDataFile, pretty.Bytes()); err != nil {
		h.logger.Error("Error saving game data", zap.String("path", h.gameDataFile), zap.Error(err))
		c.String(http.StatusInternalServerError, "Error saving game data")
		return
	}

	h.broadcaster.BroadcastEvent(models.EventGameDataSaved, nil)

	c.String(http.StatusOK, "Game data saved successfully")
}

func (h *HistoryHandler) GetRecentHistory(c *gin.Context) {
	limit, err := strconv.ParseInt(c.DefaultQuery("limit", "0"), 10, 64)
	if err != nil {
		limit = 0
	}

	entries, err := h.feed.Recent(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("Failed to get recent history", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get recent history"})
		return
	}

	total, err := h.feed.Total(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to get history total", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get recent history"})
		return
	}

	difficulties, err := h.feed.DifficultyCounts(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to get difficulty counts", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get recent history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"entries":      entries,
		"count":        len(entries),
		"total":        total,
		"difficulties": difficulties,
	})
}
