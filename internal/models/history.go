package models

import "encoding/json"

// HistoryRequest is the body of POST /save-input-history. Both fields are
// optional and kept as raw JSON so they are logged exactly as sent.
type HistoryRequest struct {
	History    json.RawMessage `json:"history"`
	Difficulty json.RawMessage `json:"difficulty"`
}

// HistoryEntry is one line of the append-only input history log.
type HistoryEntry struct {
	Timestamp  string          `json:"timestamp"`
	Difficulty json.RawMessage `json:"difficulty"`
	History    json.RawMessage `json:"history"`
}

// ProcessRequest is the body of POST /process.
type ProcessRequest struct {
	Data json.RawMessage `json:"data"`
}

// SentenceResponse is what the processor script prints for get_sentence.
type SentenceResponse struct {
	Sentence *string `json:"sentence"`
}
