package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TriggerType string

const (
	TriggerTimeBased         TriggerType = "time_based"
	TriggerDealStageChanged  TriggerType = "deal_stage_changed"
	TriggerDealStatusChanged TriggerType = "deal_status_changed"
	TriggerLeadCreated       TriggerType = "lead_created"
	TriggerEmailOpened       TriggerType = "email_opened"
	TriggerWebhook           TriggerType = "webhook"
)

type ExecutionStatus string

const (
	// ExecutionCompleted is the only status the dispatch loop writes.
	// The remaining statuses are reserved for a stepwise engine.
	ExecutionCompleted ExecutionStatus = "completed"
	ExecutionPending   ExecutionStatus = "pending"
	ExecutionRunning   ExecutionStatus = "running"
	ExecutionFailed    ExecutionStatus = "failed"
)

type Workflow struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;index"`
	Name          string    `gorm:"not null"`
	Description   string
	Active        bool           `gorm:"default:true;index"`
	TriggerType   TriggerType    `gorm:"type:varchar(50);not null;index"`
	TriggerConfig JSONB          `gorm:"type:jsonb;default:'{}'"`
	Steps         []WorkflowStep `gorm:"foreignKey:WorkflowID"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

// DelayDays reads the time_based trigger window from the trigger config,
// falling back to 7 days when unset or invalid.
func (w *Workflow) DelayDays() int {
	raw, ok := w.TriggerConfig["delay_days"]
	if !ok {
		return 7
	}
	switch v := raw.(type) {
	case float64:
		if v >= 1 {
			return int(v)
		}
	case int:
		if v >= 1 {
			return v
		}
	}
	return 7
}

type WorkflowStep struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	WorkflowID uuid.UUID `gorm:"type:uuid;not null;index"`
	StepOrder  int       `gorm:"not null"`
	StepType   string    `gorm:"type:varchar(50);not null"`
	Config     JSONB     `gorm:"type:jsonb;default:'{}'"`
	Conditions JSONB     `gorm:"type:jsonb;default:'{}'"`
	CreatedAt  time.Time
}

type WorkflowExecution struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	WorkflowID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Workflow      *Workflow       `gorm:"foreignKey:WorkflowID"`
	EntityID      *uuid.UUID      `gorm:"type:uuid;index"`
	EntityType    string          `gorm:"type:varchar(50)"`
	Status        ExecutionStatus `gorm:"type:varchar(50);default:'pending';index"`
	CurrentStep   int             `gorm:"default:0"`
	ExecutionData JSONB           `gorm:"type:jsonb;default:'{}'"`
	StartedAt     time.Time       `gorm:"index"`
	CompletedAt   *time.Time
}
