package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/leadforge/leadforge/pkg/model"
	"github.com/leadforge/leadforge/pkg/store/postgres"
	"github.com/leadforge/leadforge/pkg/workflow"
)

type WorkflowHandler struct {
	workflows *postgres.WorkflowRepository
	logger    *zap.Logger
}

func NewWorkflowHandler(workflows *postgres.WorkflowRepository, logger *zap.Logger) *WorkflowHandler {
	return &WorkflowHandler{workflows: workflows, logger: logger}
}

var triggerTypes = map[model.TriggerType]struct{}{
	model.TriggerTimeBased:         {},
	model.TriggerDealStageChanged:  {},
	model.TriggerDealStatusChanged: {},
	model.TriggerLeadCreated:       {},
	model.TriggerEmailOpened:       {},
	model.TriggerWebhook:           {},
}

type workflowCreateRequest struct {
	Name          string                 `json:"name" binding:"required"`
	Description   string                 `json:"description"`
	TriggerType   string                 `json:"trigger_type" binding:"required"`
	TriggerConfig map[string]interface{} `json:"trigger_config"`
	Steps         []workflow.StepSpec    `json:"steps"`
}

type workflowResponse struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Active      bool        `json:"active"`
	TriggerType string      `json:"trigger_type"`
	CreatedAt   string      `json:"created_at"`
	StepCount   int         `json:"step_count"`
	Config      model.JSONB `json:"trigger_config"`
}

func (h *WorkflowHandler) Create(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token subject"})
		return
	}

	var req workflowCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	trigger := model.TriggerType(req.TriggerType)
	if _, ok := triggerTypes[trigger]; !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid trigger_type"})
		return
	}

	steps, err := workflow.ParseSteps(req.Steps)
	if err != nil {
		// time_based workflows are audit-only and may carry no steps.
		if !errors.Is(err, workflow.ErrNoSteps) || trigger != model.TriggerTimeBased {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid steps", "details": err.Error()})
			return
		}
		steps = nil
	}

	config := model.JSONB(req.TriggerConfig)
	if config == nil {
		config = model.JSONB{}
	}

	wf := &model.Workflow{
		UserID:        userID,
		Name:          req.Name,
		Description:   req.Description,
		Active:        true,
		TriggerType:   trigger,
		TriggerConfig: config,
		Steps:         steps,
	}

	if err := h.workflows.Create(c.Request.Context(), wf); err != nil {
		h.logger.Error("failed to create workflow", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create workflow"})
		return
	}

	c.JSON(http.StatusCreated, toWorkflowResponse(wf))
}

func (h *WorkflowHandler) List(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token subject"})
		return
	}

	limit := parseLimit(c.Query("limit"), 20)
	offset := parseOffset(c.Query("offset"))

	workflows, total, err := h.workflows.ListByUser(c.Request.Context(), userID, limit, offset)
	if err != nil {
		h.logger.Error("failed to list workflows", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list workflows"})
		return
	}

	items := make([]workflowResponse, 0, len(workflows))
	for i := range workflows {
		items = append(items, toWorkflowResponse(&workflows[i]))
	}

	c.JSON(http.StatusOK, gin.H{"workflows": items, "total": total})
}

func toWorkflowResponse(wf *model.Workflow) workflowResponse {
	return workflowResponse{
		ID:          wf.ID.String(),
		Name:        wf.Name,
		Description: wf.Description,
		Active:      wf.Active,
		TriggerType: string(wf.TriggerType),
		CreatedAt:   wf.CreatedAt.UTC().Format(timeRFC3339Nano),
		StepCount:   len(wf.Steps),
		Config:      wf.TriggerConfig,
	}
}
