package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ModelKindAcute     = "acute"
	ModelKindLifestyle = "lifestyle"
	ModelKindWellness  = "wellness"
)

// Prediction is the per-request history record of one scored inference.
type Prediction struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID      `gorm:"index;not null" json:"user_id"`
	User            *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	ModelKind       string         `gorm:"not null;column:model_kind" json:"model_kind"`
	Input           datatypes.JSON `gorm:"column:input" json:"input,omitempty"`
	RiskProbability float64        `gorm:"not null;column:risk_probability" json:"risk_probability"`
	RiskLabel       string         `gorm:"not null;column:risk_label" json:"risk_label"`
	CreatedAt       time.Time      `gorm:"not null" json:"created_at"`
}

func (Prediction) TableName() string { return "prediction" }

func (p *Prediction) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
