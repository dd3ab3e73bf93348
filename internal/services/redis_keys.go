package services

const (
	KeyRecentHistory = "history:recent"
	KeyHistoryTotal  = "history:total"

	KeyHistoryByDifficulty = "history:difficulty"

	DefaultRecentLimit = 20
)
