package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/leadforge/leadforge/pkg/model"
	"github.com/leadforge/leadforge/pkg/store/postgres"
	"github.com/leadforge/leadforge/pkg/workflow"
)

type DealHandler struct {
	deals      *postgres.DealRepository
	activities *postgres.ActivityRepository
	workflows  *postgres.WorkflowRepository
	runner     *workflow.Runner
	logger     *zap.Logger
}

func NewDealHandler(deals *postgres.DealRepository, activities *postgres.ActivityRepository, workflows *postgres.WorkflowRepository, runner *workflow.Runner, logger *zap.Logger) *DealHandler {
	return &DealHandler{
		deals:      deals,
		activities: activities,
		workflows:  workflows,
		runner:     runner,
		logger:     logger,
	}
}

type dealUpdateRequest struct {
	StageID *string `json:"stage_id"`
	Status  *string `json:"status"`
}

type dealResponse struct {
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	Value   float64 `json:"value"`
	StageID string  `json:"stage_id"`
	Status  string  `json:"status"`
}

// Update mutates a deal's stage or status and fires matching workflows.
// Workflow execution is best effort: it runs off the request path and its
// failure never fails the update.
func (h *DealHandler) Update(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token subject"})
		return
	}

	var req dealUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}
	if req.StageID == nil && req.Status == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to update"})
		return
	}

	ctx := c.Request.Context()

	deal, err := h.deals.GetByID(ctx, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "deal not found"})
		return
	}
	if deal.UserID != userID {
		c.JSON(http.StatusNotFound, gin.H{"error": "deal not found"})
		return
	}

	if req.StageID != nil {
		stageID, err := uuid.Parse(*req.StageID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid stage_id"})
			return
		}
		if err := h.deals.UpdateStage(ctx, deal.ID, stageID); err != nil {
			h.logger.Error("failed to update deal stage", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update deal"})
			return
		}
		h.recordActivity(ctx, deal, userID, "stage_changed", model.JSONB{
			"from": deal.StageID.String(),
			"to":   stageID.String(),
		})
		deal.StageID = stageID
		h.fireWorkflows(ctx, model.TriggerDealStageChanged, deal)
	}

	if req.Status != nil {
		status := model.DealStatus(*req.Status)
		switch status {
		case model.DealOpen, model.DealWon, model.DealLost:
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
		if err := h.deals.UpdateStatus(ctx, deal.ID, status); err != nil {
			h.logger.Error("failed to update deal status", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update deal"})
			return
		}
		h.recordActivity(ctx, deal, userID, "status_changed", model.JSONB{
			"from": string(deal.Status),
			"to":   string(status),
		})
		deal.Status = status
		h.fireWorkflows(ctx, model.TriggerDealStatusChanged, deal)
	}

	c.JSON(http.StatusOK, dealResponse{
		ID:      deal.ID.String(),
		Title:   deal.Title,
		Value:   deal.Value,
		StageID: deal.StageID.String(),
		Status:  string(deal.Status),
	})
}

func (h *DealHandler) recordActivity(ctx context.Context, deal *model.Deal, userID uuid.UUID, activityType string, metadata model.JSONB) {
	activity := &model.DealActivity{
		DealID:       &deal.ID,
		UserID:       &userID,
		ActivityType: activityType,
		Metadata:     metadata,
	}
	if err := h.activities.Create(ctx, activity); err != nil {
		h.logger.Warn("failed to record deal activity",
			zap.String("deal_id", deal.ID.String()),
			zap.Error(err),
		)
	}
}

// fireWorkflows hands every matching active workflow to the async runner.
// A lookup failure is logged and swallowed so the deal update still
// succeeds.
func (h *DealHandler) fireWorkflows(ctx context.Context, trigger model.TriggerType, deal *model.Deal) {
	matched, err := h.workflows.ListActiveByTriggerForUser(ctx, trigger, deal.UserID)
	if err != nil {
		h.logger.Warn("failed to look up triggered workflows",
			zap.String("trigger", string(trigger)),
			zap.Error(err),
		)
		return
	}

	for i := range matched {
		wf := matched[i]
		h.runner.Dispatch(&wf, workflow.Context{"deal_id": deal.ID.String()})
	}
}
