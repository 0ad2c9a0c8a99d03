package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/leadforge/leadforge/pkg/model"
	"github.com/leadforge/leadforge/pkg/store/postgres"
)

type CampaignHandler struct {
	campaigns *postgres.CampaignRepository
	leads     *postgres.LeadRepository
	emails    *postgres.OutreachEmailRepository
	logger    *zap.Logger
}

func NewCampaignHandler(campaigns *postgres.CampaignRepository, leads *postgres.LeadRepository, emails *postgres.OutreachEmailRepository, logger *zap.Logger) *CampaignHandler {
	return &CampaignHandler{
		campaigns: campaigns,
		leads:     leads,
		emails:    emails,
		logger:    logger,
	}
}

type campaignCreateRequest struct {
	Name    string `json:"name" binding:"required"`
	Subject string `json:"subject" binding:"required"`
	Content string `json:"content"`
}

func (h *CampaignHandler) Create(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token subject"})
		return
	}

	var req campaignCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	campaign := &model.Campaign{
		UserID:  userID,
		Name:    req.Name,
		Subject: req.Subject,
		Content: req.Content,
		Status:  model.CampaignDraft,
	}

	if err := h.campaigns.Create(c.Request.Context(), campaign); err != nil {
		h.logger.Error("failed to create campaign", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create campaign"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":     campaign.ID.String(),
		"name":   campaign.Name,
		"status": string(campaign.Status),
	})
}

// Queue creates queued outreach emails for every contactable lead of the
// campaign owner. Unsubscribed and bounced leads are skipped. The rows are
// picked up by the email drainer on the next dispatch pass.
func (h *CampaignHandler) Queue(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token subject"})
		return
	}

	ctx := c.Request.Context()

	campaign, err := h.campaigns.GetByID(ctx, c.Param("id"))
	if err != nil || campaign.UserID != userID {
		c.JSON(http.StatusNotFound, gin.H{"error": "campaign not found"})
		return
	}

	leads, err := h.leads.ListContactable(ctx, userID)
	if err != nil {
		h.logger.Error("failed to list leads", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to queue emails"})
		return
	}

	emails := make([]*model.OutreachEmail, 0, len(leads))
	for i := range leads {
		lead := &leads[i]
		emails = append(emails, &model.OutreachEmail{
			UserID:     userID,
			CampaignID: campaign.ID,
			LeadID:     lead.ID,
			LeadEmail:  lead.Email,
			TemplateID: campaign.TemplateID,
			Subject:    campaign.Subject,
			Content:    campaign.Content,
			Status:     model.EmailQueued,
		})
	}

	if err := h.emails.CreateBatch(ctx, emails); err != nil {
		h.logger.Error("failed to queue campaign emails", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to queue emails"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"queued": len(emails)})
}

type emailResponse struct {
	ID           string  `json:"id"`
	LeadEmail    string  `json:"lead_email"`
	Subject      string  `json:"subject"`
	Status       string  `json:"status"`
	SentAt       *string `json:"sent_at,omitempty"`
	BounceReason string  `json:"bounce_reason,omitempty"`
}

// Emails lists a campaign's outreach emails, newest first.
func (h *CampaignHandler) Emails(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token subject"})
		return
	}

	ctx := c.Request.Context()

	campaign, err := h.campaigns.GetByID(ctx, c.Param("id"))
	if err != nil || campaign.UserID != userID {
		c.JSON(http.StatusNotFound, gin.H{"error": "campaign not found"})
		return
	}

	limit := parseLimit(c.Query("limit"), 50)
	offset := parseOffset(c.Query("offset"))

	emails, total, err := h.emails.ListByCampaign(ctx, campaign.ID, limit, offset)
	if err != nil {
		h.logger.Error("failed to list campaign emails", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list emails"})
		return
	}

	items := make([]emailResponse, 0, len(emails))
	for i := range emails {
		email := &emails[i]
		items = append(items, emailResponse{
			ID:           email.ID.String(),
			LeadEmail:    email.LeadEmail,
			Subject:      email.Subject,
			Status:       string(email.Status),
			SentAt:       formatTime(email.SentAt),
			BounceReason: email.BounceReason,
		})
	}

	c.JSON(http.StatusOK, gin.H{"emails": items, "total": total})
}
