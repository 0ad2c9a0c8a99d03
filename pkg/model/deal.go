package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DealStatus string

const (
	DealOpen DealStatus = "open"
	DealWon  DealStatus = "won"
	DealLost DealStatus = "lost"
)

type Deal struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	LeadID    *uuid.UUID `gorm:"type:uuid;index"`
	Title     string     `gorm:"not null"`
	Value     float64    `gorm:"default:0"`
	StageID   uuid.UUID  `gorm:"type:uuid;index"`
	Status    DealStatus `gorm:"type:varchar(20);default:'open';index"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// DealActivity is an append-only audit trail. DealID and UserID are nullable:
// system-wide or system-initiated entries carry neither.
type DealActivity struct {
	ID           uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	DealID       *uuid.UUID `gorm:"type:uuid;index"`
	UserID       *uuid.UUID `gorm:"type:uuid;index"`
	ActivityType string     `gorm:"type:varchar(50);not null"`
	Description  string     `gorm:"type:text"`
	Metadata     JSONB      `gorm:"type:jsonb;default:'{}'"`
	CreatedAt    time.Time  `gorm:"index"`
}
