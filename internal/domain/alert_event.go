package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	AlertStatusPending = "pending"
	AlertStatusSent    = "sent"
	AlertStatusFailed  = "failed"
)

// AlertEvent records one threshold-triggered notification attempt. Kept for
// audit only; dispatch stays at-least-once per request, so retried requests
// can produce duplicate rows for the same underlying episode.
type AlertEvent struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID `gorm:"index;not null" json:"user_id"`
	RiskProbability float64   `gorm:"not null;column:risk_probability" json:"risk_probability"`
	DeliveryStatus  string    `gorm:"not null;column:delivery_status" json:"delivery_status"`
	Reason          string    `gorm:"column:reason" json:"reason,omitempty"`
	CreatedAt       time.Time `gorm:"not null" json:"created_at"`
}

func (AlertEvent) TableName() string { return "alert_event" }

func (a *AlertEvent) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
