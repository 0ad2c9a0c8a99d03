package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/leadforge/leadforge/pkg/dispatch"
)

type DispatchHandler struct {
	orchestrator *dispatch.Orchestrator
	logger       *zap.Logger
}

func NewDispatchHandler(orchestrator *dispatch.Orchestrator, logger *zap.Logger) *DispatchHandler {
	return &DispatchHandler{orchestrator: orchestrator, logger: logger}
}

type dispatchResponse struct {
	Success           bool `json:"success"`
	WorkflowsExecuted int  `json:"workflowsExecuted"`
	Sent              int  `json:"sent"`
	Failed            int  `json:"failed"`
}

// Run executes one dispatch pass. The limit query parameter bounds the
// email drain batch; it is clamped inside the orchestrator.
func (h *DispatchHandler) Run(c *gin.Context) {
	limit := parseLimit(c.Query("limit"), 0)

	result, err := h.orchestrator.RunPass(c.Request.Context(), limit)
	if err != nil {
		if errors.Is(err, dispatch.ErrPassInProgress) {
			c.JSON(http.StatusConflict, gin.H{"error": "dispatch already running"})
			return
		}
		h.logger.Error("dispatch pass failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "dispatch failed"})
		return
	}

	c.JSON(http.StatusOK, dispatchResponse{
		Success:           true,
		WorkflowsExecuted: result.WorkflowsExecuted,
		Sent:              result.Sent,
		Failed:            result.Failed,
	})
}
