package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/leadforge/leadforge/pkg/model"
)

type WorkflowRepository struct {
	db *gorm.DB
}

func NewWorkflowRepository(db *gorm.DB) *WorkflowRepository {
	return &WorkflowRepository{db: db}
}

func (r *WorkflowRepository) Create(ctx context.Context, workflow *model.Workflow) error {
	return r.db.WithContext(ctx).Create(workflow).Error
}

func (r *WorkflowRepository) GetByID(ctx context.Context, id string) (*model.Workflow, error) {
	var workflow model.Workflow
	err := r.db.WithContext(ctx).
		Preload("Steps", func(db *gorm.DB) *gorm.DB {
			return db.Order("step_order ASC")
		}).
		First(&workflow, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &workflow, nil
}

func (r *WorkflowRepository) ListActiveByTrigger(ctx context.Context, trigger model.TriggerType) ([]model.Workflow, error) {
	var workflows []model.Workflow
	err := r.db.WithContext(ctx).
		Preload("Steps", func(db *gorm.DB) *gorm.DB {
			return db.Order("step_order ASC")
		}).
		Where("active = ? AND trigger_type = ?", true, trigger).
		Find(&workflows).Error
	return workflows, err
}

func (r *WorkflowRepository) ListActiveByTriggerForUser(ctx context.Context, trigger model.TriggerType, userID uuid.UUID) ([]model.Workflow, error) {
	var workflows []model.Workflow
	err := r.db.WithContext(ctx).
		Preload("Steps", func(db *gorm.DB) *gorm.DB {
			return db.Order("step_order ASC")
		}).
		Where("active = ? AND trigger_type = ? AND user_id = ?", true, trigger, userID).
		Find(&workflows).Error
	return workflows, err
}

func (r *WorkflowRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Workflow, int64, error) {
	var workflows []model.Workflow
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Workflow{}).Where("user_id = ?", userID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&workflows).Error

	return workflows, total, err
}

// HasExecutionSince reports whether the workflow already fired within the
// window, which is what keeps a time_based workflow from firing more than
// once per delay_days.
func (r *WorkflowRepository) HasExecutionSince(ctx context.Context, workflowID uuid.UUID, since time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.WorkflowExecution{}).
		Where("workflow_id = ? AND started_at >= ?", workflowID, since).
		Count(&count).Error
	return count > 0, err
}

func (r *WorkflowRepository) CreateExecution(ctx context.Context, execution *model.WorkflowExecution) error {
	return r.db.WithContext(ctx).Create(execution).Error
}
