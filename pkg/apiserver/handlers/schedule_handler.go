package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/leadforge/leadforge/pkg/model"
	"github.com/leadforge/leadforge/pkg/scraper"
	"github.com/leadforge/leadforge/pkg/store/postgres"
)

type ScheduleHandler struct {
	schedules *postgres.ScheduleRepository
	logger    *zap.Logger
}

func NewScheduleHandler(schedules *postgres.ScheduleRepository, logger *zap.Logger) *ScheduleHandler {
	return &ScheduleHandler{schedules: schedules, logger: logger}
}

type scheduleCreateRequest struct {
	IntervalMinutes int                    `json:"interval_minutes" binding:"required,min=1"`
	Metadata        map[string]interface{} `json:"metadata" binding:"required"`
}

type scheduleResponse struct {
	ID              string      `json:"id"`
	Type            string      `json:"type"`
	Active          bool        `json:"active"`
	IntervalMinutes int         `json:"interval_minutes"`
	LastRunAt       *string     `json:"last_run_at,omitempty"`
	Metadata        model.JSONB `json:"metadata"`
}

func (h *ScheduleHandler) Create(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token subject"})
		return
	}

	var req scheduleCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	// Reject unknown job types at the edge instead of discovering them
	// during a dispatch pass.
	metadata := model.JSONB(req.Metadata)
	if _, err := scraper.ParseJob(metadata); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid metadata", "details": err.Error()})
		return
	}

	schedule := &model.Schedule{
		UserID:          userID,
		Type:            model.ScheduleScrape,
		Active:          true,
		IntervalMinutes: req.IntervalMinutes,
		Metadata:        metadata,
	}

	if err := h.schedules.Create(c.Request.Context(), schedule); err != nil {
		h.logger.Error("failed to create schedule", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create schedule"})
		return
	}

	c.JSON(http.StatusCreated, toScheduleResponse(schedule))
}

func (h *ScheduleHandler) List(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token subject"})
		return
	}

	schedules, err := h.schedules.ListByUser(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list schedules", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list schedules"})
		return
	}

	items := make([]scheduleResponse, 0, len(schedules))
	for i := range schedules {
		items = append(items, toScheduleResponse(&schedules[i]))
	}

	c.JSON(http.StatusOK, gin.H{"schedules": items})
}

func toScheduleResponse(schedule *model.Schedule) scheduleResponse {
	return scheduleResponse{
		ID:              schedule.ID.String(),
		Type:            string(schedule.Type),
		Active:          schedule.Active,
		IntervalMinutes: schedule.IntervalMinutes,
		LastRunAt:       formatTime(schedule.LastRunAt),
		Metadata:        schedule.Metadata,
	}
}
