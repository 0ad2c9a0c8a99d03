package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/leadforge/leadforge/pkg/model"
)

type DealRepository struct {
	db *gorm.DB
}

func NewDealRepository(db *gorm.DB) *DealRepository {
	return &DealRepository{db: db}
}

func (r *DealRepository) Create(ctx context.Context, deal *model.Deal) error {
	return r.db.WithContext(ctx).Create(deal).Error
}

func (r *DealRepository) GetByID(ctx context.Context, id string) (*model.Deal, error) {
	var deal model.Deal
	err := r.db.WithContext(ctx).First(&deal, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &deal, nil
}

func (r *DealRepository) UpdateStage(ctx context.Context, id uuid.UUID, stageID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&model.Deal{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"stage_id":   stageID,
			"updated_at": time.Now(),
		}).Error
}

func (r *DealRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.DealStatus) error {
	return r.db.WithContext(ctx).
		Model(&model.Deal{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     status,
			"updated_at": time.Now(),
		}).Error
}

type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) Create(ctx context.Context, activity *model.DealActivity) error {
	return r.db.WithContext(ctx).Create(activity).Error
}

func (r *ActivityRepository) ListByDeal(ctx context.Context, dealID uuid.UUID, limit int) ([]model.DealActivity, error) {
	if limit <= 0 {
		limit = 50
	}
	var activities []model.DealActivity
	err := r.db.WithContext(ctx).
		Where("deal_id = ?", dealID).
		Order("created_at DESC").
		Limit(limit).
		Find(&activities).Error
	return activities, err
}
