package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/leadforge/leadforge/pkg/model"
)

type ScheduleRepository struct {
	db *gorm.DB
}

func NewScheduleRepository(db *gorm.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

func (r *ScheduleRepository) Create(ctx context.Context, schedule *model.Schedule) error {
	return r.db.WithContext(ctx).Create(schedule).Error
}

func (r *ScheduleRepository) ListActiveScrape(ctx context.Context) ([]model.Schedule, error) {
	var schedules []model.Schedule
	err := r.db.WithContext(ctx).
		Where("type = ? AND active = ?", model.ScheduleScrape, true).
		Find(&schedules).Error
	return schedules, err
}

// ClaimDue stamps last_run_at iff the schedule is still due at now. The
// conditional update is what keeps two overlapping dispatcher passes from
// double-submitting the same schedule: only one of them gets a row back.
// Strictly-greater due-ness means a row whose last_run_at sits exactly on
// the cutoff is not claimed.
func (r *ScheduleRepository) ClaimDue(ctx context.Context, id uuid.UUID, now time.Time, interval time.Duration) (bool, error) {
	cutoff := now.Add(-interval)
	result := r.db.WithContext(ctx).
		Model(&model.Schedule{}).
		Where("id = ? AND active = ? AND (last_run_at IS NULL OR last_run_at < ?)", id, true, cutoff).
		Updates(map[string]interface{}{
			"last_run_at": now,
			"updated_at":  time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ReleaseClaim restores the pre-claim last_run_at after a failed submission
// so the schedule stays eligible on the next pass.
func (r *ScheduleRepository) ReleaseClaim(ctx context.Context, id uuid.UUID, previous *time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.Schedule{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"last_run_at": previous,
			"updated_at":  time.Now(),
		}).Error
}

func (r *ScheduleRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Schedule, error) {
	var schedules []model.Schedule
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&schedules).Error
	return schedules, err
}

type ScrapeRunRepository struct {
	db *gorm.DB
}

func NewScrapeRunRepository(db *gorm.DB) *ScrapeRunRepository {
	return &ScrapeRunRepository{db: db}
}

func (r *ScrapeRunRepository) Create(ctx context.Context, run *model.ScrapeRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}
