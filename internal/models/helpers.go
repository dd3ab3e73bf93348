package models

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TimestampLayout is ISO-8601 in UTC with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

func GenerateRequestID() string {
	return uuid.NewString()
}

func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

func NewHistoryEntry(req *HistoryRequest, now time.Time) *HistoryEntry {
	return &HistoryEntry{
		Timestamp:  FormatTimestamp(now),
		Difficulty: req.Difficulty,
		History:    req.History,
	}
}

// DifficultyLabel returns the difficulty as a plain string for counters:
// JSON strings are unquoted, other values keep their JSON text.
func (e *HistoryEntry) DifficultyLabel() string {
	return rawText(e.Difficulty, "unknown")
}

// Arg returns the value handed to the processor script. A missing or null
// data field becomes an empty argument.
func (r *ProcessRequest) Arg() string {
	return rawText(r.Data, "")
}

func rawText(raw json.RawMessage, fallback string) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return fallback
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
