package scraper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/leadforge/leadforge/pkg/metrics"
	"github.com/leadforge/leadforge/pkg/model"
)

const maxErrorLength = 500

type ScheduleStore interface {
	ListActiveScrape(ctx context.Context) ([]model.Schedule, error)
	ClaimDue(ctx context.Context, id uuid.UUID, now time.Time, interval time.Duration) (bool, error)
	ReleaseClaim(ctx context.Context, id uuid.UUID, previous *time.Time) error
}

type RunRecorder interface {
	Create(ctx context.Context, run *model.ScrapeRun) error
}

// Dispatcher submits due scrape schedules to the provider. A schedule is
// claimed with a conditional last_run_at update before submission; on
// submission failure the claim is released so the schedule retries on the
// next pass.
type Dispatcher struct {
	schedules ScheduleStore
	runs      RunRecorder
	runner    Runner
	logger    *zap.Logger
	now       func() time.Time
}

func NewDispatcher(schedules ScheduleStore, runs RunRecorder, runner Runner, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		schedules: schedules,
		runs:      runs,
		runner:    runner,
		logger:    logger,
		now:       time.Now,
	}
}

// Dispatch returns the number of jobs submitted successfully.
func (d *Dispatcher) Dispatch(ctx context.Context) (int, error) {
	schedules, err := d.schedules.ListActiveScrape(ctx)
	if err != nil {
		return 0, err
	}

	dispatched := 0
	now := d.now()

	for i := range schedules {
		if d.dispatchOne(ctx, &schedules[i], now) {
			dispatched++
		}
	}

	return dispatched, nil
}

func (d *Dispatcher) dispatchOne(ctx context.Context, schedule *model.Schedule, now time.Time) bool {
	interval := time.Duration(schedule.IntervalMinutes) * time.Minute
	if !now.After(schedule.DueAt()) {
		return false
	}

	job, err := ParseJob(schedule.Metadata)
	if err != nil {
		if errors.Is(err, ErrUnknownJobType) {
			d.logger.Warn("skipping schedule with unknown job type",
				zap.String("schedule_id", schedule.ID.String()),
				zap.Error(err),
			)
			return false
		}
		d.recordFailure(ctx, schedule, err)
		return false
	}

	previous := schedule.LastRunAt
	claimed, err := d.schedules.ClaimDue(ctx, schedule.ID, now, interval)
	if err != nil {
		d.logger.Warn("failed to claim schedule",
			zap.String("schedule_id", schedule.ID.String()),
			zap.Error(err),
		)
		return false
	}
	if !claimed {
		return false
	}

	result, err := d.runner.Run(ctx, job)
	if err != nil {
		d.recordFailure(ctx, schedule, err)
		if releaseErr := d.schedules.ReleaseClaim(ctx, schedule.ID, previous); releaseErr != nil {
			d.logger.Warn("failed to release schedule claim",
				zap.String("schedule_id", schedule.ID.String()),
				zap.Error(releaseErr),
			)
		}
		return false
	}

	run := &model.ScrapeRun{
		ID:          result.ID,
		Type:        string(job.Type),
		Status:      result.Status,
		ResultCount: 0,
		TriggeredBy: schedule.UserID,
	}
	if err := d.runs.Create(ctx, run); err != nil {
		d.logger.Warn("failed to record scrape run",
			zap.String("schedule_id", schedule.ID.String()),
			zap.String("run_id", result.ID),
			zap.Error(err),
		)
	}

	metrics.ScrapeRuns.WithLabelValues(string(job.Type), result.Status).Inc()
	return true
}

func (d *Dispatcher) recordFailure(ctx context.Context, schedule *model.Schedule, cause error) {
	jobType, _ := schedule.Metadata["type"].(string)
	if jobType == "" {
		jobType = "unknown"
	}

	run := &model.ScrapeRun{
		ID:           fmt.Sprintf("err_%d", d.now().UnixMilli()),
		Type:         jobType,
		Status:       string(model.ScrapeRunFailed),
		TriggeredBy:  schedule.UserID,
		ErrorMessage: truncate(cause.Error(), maxErrorLength),
	}
	if err := d.runs.Create(ctx, run); err != nil {
		d.logger.Warn("failed to record scrape failure",
			zap.String("schedule_id", schedule.ID.String()),
			zap.Error(err),
		)
	}

	metrics.ScrapeRuns.WithLabelValues(jobType, string(model.ScrapeRunFailed)).Inc()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
