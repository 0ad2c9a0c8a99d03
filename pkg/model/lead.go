package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type Lead struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index"`
	Email        string    `gorm:"not null;index"`
	FirstName    string
	LastName     string
	Company      string
	Position     string
	Source       string         `gorm:"type:varchar(50)"`
	Tags         pq.StringArray `gorm:"type:text[]"`
	Unsubscribed bool           `gorm:"default:false"`
	Bounced      bool           `gorm:"default:false"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

type CampaignStatus string

const (
	CampaignDraft  CampaignStatus = "draft"
	CampaignActive CampaignStatus = "active"
	CampaignPaused CampaignStatus = "paused"
)

type Campaign struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Name       string    `gorm:"not null"`
	Subject    string    `gorm:"not null"`
	Content    string    `gorm:"type:text"`
	TemplateID *uuid.UUID     `gorm:"type:uuid"`
	Status     CampaignStatus `gorm:"type:varchar(20);default:'draft';index"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
	DeletedAt  gorm.DeletedAt `gorm:"index"`
}
