package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/leadforge/leadforge/pkg/model"
)

type OutreachEmailRepository struct {
	db *gorm.DB
}

func NewOutreachEmailRepository(db *gorm.DB) *OutreachEmailRepository {
	return &OutreachEmailRepository{db: db}
}

// ListQueued returns up to limit queued emails, oldest first.
func (r *OutreachEmailRepository) ListQueued(ctx context.Context, limit int) ([]model.OutreachEmail, error) {
	if limit <= 0 {
		limit = 50
	}
	var emails []model.OutreachEmail
	err := r.db.WithContext(ctx).
		Where("status = ?", model.EmailQueued).
		Order("created_at ASC").
		Limit(limit).
		Find(&emails).Error
	return emails, err
}

func (r *OutreachEmailRepository) MarkSent(ctx context.Context, id uuid.UUID, messageID string, sentAt time.Time) error {
	updates := map[string]interface{}{
		"status":              model.EmailSent,
		"sent_at":             sentAt,
		"provider_message_id": messageID,
		"updated_at":          time.Now(),
	}
	return r.db.WithContext(ctx).
		Model(&model.OutreachEmail{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *OutreachEmailRepository) MarkBounced(ctx context.Context, id uuid.UUID, reason string) error {
	updates := map[string]interface{}{
		"status":        model.EmailBounced,
		"bounce_reason": reason,
		"updated_at":    time.Now(),
	}
	return r.db.WithContext(ctx).
		Model(&model.OutreachEmail{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *OutreachEmailRepository) CreateBatch(ctx context.Context, emails []*model.OutreachEmail) error {
	if len(emails) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(emails, 100).Error
}

func (r *OutreachEmailRepository) ListByCampaign(ctx context.Context, campaignID uuid.UUID, limit, offset int) ([]model.OutreachEmail, int64, error) {
	var emails []model.OutreachEmail
	var total int64

	query := r.db.WithContext(ctx).Model(&model.OutreachEmail{}).Where("campaign_id = ?", campaignID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&emails).Error

	return emails, total, err
}
