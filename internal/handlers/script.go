package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"typing-trainer-backend/internal/models"
	"typing-trainer-backend/internal/services"
)

const argGetSentence = "get_sentence"

type ScriptHandler struct {
	runner           services.ScriptExecutor
	processorScript  string
	statisticsScript string
	broadcaster      services.Broadcaster
	logger           *zap.Logger
}

func NewScriptHandler(runner services.ScriptExecutor, processorScript, statisticsScript string, broadcaster services.Broadcaster, logger *zap.Logger) *ScriptHandler {
	return &ScriptHandler{
		runner:           runner,
		processorScript:  processorScript,
		statisticsScript: statisticsScript,
		broadcaster:      broadcaster,
		logger:           logger,
	}
}

func (h *ScriptHandler) GetSentence(c *gin.Context) {
	result := h.runner.Run(c.Request.Context(), h.processorScript, argGetSentence)
	if !h.checkResult(c, result, "Error fetching sentence") {
		return
	}

	var resp models.SentenceResponse
	if err := result.DecodeJSON(&resp); err != nil || resp.Sentence == nil {
		h.logger.Error("Failed to parse sentence from script output",
			zap.String("script", result.Script),
			zap.ByteString("stdout", result.Stdout),
			zap.Error(err),
		)
		c.String(http.StatusInternalServerError, "Error parsing sentence")
		return
	}

	c.JSON(http.StatusOK, gin.H{"sentence": *resp.Sentence})
}

func (h *ScriptHandler) Process(c *gin.Context) {
	var req models.ProcessRequest
	if !bindBody(c, &req) {
		return
	}

	result := h.runner.Run(c.Request.Context(), h.processorScript, req.Arg())
	if !h.checkResult(c, result, "Error processing data") {
		return
	}

	out, err := result.JSON()
	if err != nil {
		h.logger.Error("Failed to parse processed data from script output",
			zap.String("script", result.Script),
			zap.ByteString("stdout", result.Stdout),
			zap.Error(err),
		)
		c.String(http.StatusInternalServerError, "Error parsing processed data")
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", out)
}

// GenerateStatistics runs the statistics script for its side effects on the
// output directory. Its stdout is not forwarded.
func (h *ScriptHandler) GenerateStatistics(c *gin.Context) {
	result := h.runner.Run(c.Request.Context(), h.statisticsScript)
	if !h.checkResult(c, result, "Error generating statistics") {
		return
	}

	h.broadcaster.BroadcastEvent(models.EventStatisticsGenerated, gin.H{
		"image": "/output/statistics.png",
		"data":  "/output/statistics.json",
	})

	c.String(http.StatusOK, "Statistics generated successfully")
}

func (h *ScriptHandler) checkResult(c *gin.Context, result *services.ScriptResult, invocationMsg string) bool {
	err := result.Err()
	if err == nil {
		return true
	}

	if errors.Is(err, services.ErrScriptStderr) {
		h.logger.Error("Script wrote to stderr",
			zap.String("script", result.Script),
			zap.ByteString("stderr", result.Stderr),
		)
		c.String(http.StatusInternalServerError, "Error in Python script")
		return false
	}

	h.logger.Error("Error executing script",
		zap.String("script", result.Script),
		zap.ByteString("stderr", result.Stderr),
		zap.Error(err),
	)
	c.String(http.StatusInternalServerError, invocationMsg)
	return false
}
