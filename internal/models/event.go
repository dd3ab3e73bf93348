package models

const (
	EventHistorySaved        = "HISTORY_SAVED"
	EventGameDataSaved       = "GAME_DATA_SAVED"
	EventStatisticsGenerated = "STATISTICS_GENERATED"
	EventPing                = "PING"
	EventPong                = "PONG"
)

type Event struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}
