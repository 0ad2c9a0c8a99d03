package model

import (
	"time"

	"github.com/google/uuid"
)

type EmailStatus string

const (
	EmailQueued  EmailStatus = "queued"
	EmailSent    EmailStatus = "sent"
	EmailBounced EmailStatus = "bounced"
)

type OutreachEmail struct {
	ID                uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID            uuid.UUID  `gorm:"type:uuid;not null;index"`
	CampaignID        uuid.UUID  `gorm:"type:uuid;not null;index"`
	LeadID            uuid.UUID  `gorm:"type:uuid;not null;index"`
	LeadEmail         string     `gorm:"not null"`
	TemplateID        *uuid.UUID `gorm:"type:uuid"`
	Subject           string     `gorm:"not null"`
	Content           string     `gorm:"type:text"`
	Status            EmailStatus `gorm:"type:varchar(20);default:'queued';index"`
	SentAt            *time.Time
	BounceReason      string
	ProviderMessageID string
	CreatedAt         time.Time `gorm:"index"`
	UpdatedAt         time.Time
}
