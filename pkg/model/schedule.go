package model

import (
	"time"

	"github.com/google/uuid"
)

type ScheduleType string

const (
	ScheduleScrape ScheduleType = "scrape"
)

type Schedule struct {
	ID              uuid.UUID    `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID          uuid.UUID    `gorm:"type:uuid;not null;index"`
	Type            ScheduleType `gorm:"type:varchar(20);not null;index"`
	Active          bool         `gorm:"default:true;index"`
	IntervalMinutes int          `gorm:"not null;default:60"`
	LastRunAt       *time.Time
	Metadata        JSONB `gorm:"type:jsonb;default:'{}'"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// DueAt reports the earliest instant the schedule becomes eligible again.
// A schedule that never ran is due immediately.
func (s *Schedule) DueAt() time.Time {
	if s.LastRunAt == nil {
		return time.Time{}
	}
	return s.LastRunAt.Add(time.Duration(s.IntervalMinutes) * time.Minute)
}

type ScrapeRunStatus string

const (
	ScrapeRunFailed ScrapeRunStatus = "failed"
)

// ScrapeRun is an append-only audit record for every dispatch attempt.
// The ID is provider-assigned on success and locally synthesized on error,
// so it is a plain string rather than a uuid.
type ScrapeRun struct {
	ID           string `gorm:"primary_key"`
	Type         string `gorm:"type:varchar(50);not null;index"`
	Status       string `gorm:"type:varchar(50);not null"`
	ResultCount  int    `gorm:"default:0"`
	TriggeredBy  uuid.UUID `gorm:"type:uuid;index"`
	ErrorMessage string    `gorm:"type:varchar(500)"`
	CreatedAt    time.Time `gorm:"index"`
}
