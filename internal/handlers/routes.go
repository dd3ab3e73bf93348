package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"typing-trainer-backend/internal/middleware"
	"typing-trainer-backend/internal/services"
)

type RouterConfig struct {
	PublicDir        string
	OutputDir        string
	ProcessorScript  string
	StatisticsScript string
	HistoryFile      string
	GameDataFile     string
}

// Dependencies are the collaborators the routes are built from. Feed and
// Hub are optional; leaving them nil disables /history/recent and /ws.
type Dependencies struct {
	Runner services.ScriptExecutor
	Store  RecordStore
	Feed   HistoryFeed
	Hub    *WebSocketHub
	Logger *zap.Logger
}

func NewRouter(cfg RouterConfig, deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.Logger(deps.Logger),
		middleware.Recovery(deps.Logger),
	)

	var broadcaster services.Broadcaster = services.NopBroadcaster{}
	if deps.Hub != nil {
		broadcaster = deps.Hub
	}

	pageHandler := NewPageHandler(cfg.PublicDir, cfg.OutputDir)
	scriptHandler := NewScriptHandler(deps.Runner, cfg.ProcessorScript, cfg.StatisticsScript, broadcaster, deps.Logger)
	historyHandler := NewHistoryHandler(deps.Store, cfg.HistoryFile, cfg.GameDataFile, deps.Feed, broadcaster, deps.Logger)

	router.GET("/", pageHandler.Page("index.html"))
	router.GET("/game", pageHandler.Page("game.html"))
	router.GET("/result", pageHandler.Page("result.html"))
	router.GET("/health", pageHandler.Health)
	router.GET("/output/*filepath", pageHandler.Output)
	router.HEAD("/output/*filepath", pageHandler.Output)

	router.GET("/get-sentence", scriptHandler.GetSentence)
	router.POST("/process", scriptHandler.Process)
	router.GET("/generate-statistics", scriptHandler.GenerateStatistics)

	router.POST("/save-input-history", historyHandler.SaveInputHistory)
	router.POST("/save-game-data", historyHandler.SaveGameData)

	if deps.Feed != nil {
		router.GET("/history/recent", historyHandler.GetRecentHistory)
	}

	if deps.Hub != nil {
		wsHandler := NewWebSocketHandler(deps.Hub, deps.Logger)
		router.GET("/ws", wsHandler.HandleWebSocket)
	}

	router.NoRoute(pageHandler.Public)

	return router
}
