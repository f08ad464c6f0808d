package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type HealthProfile struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID            uuid.UUID `gorm:"uniqueIndex;not null" json:"user_id"`
	Age               int       `gorm:"not null" json:"age"`
	Gender            string    `gorm:"not null" json:"gender"`
	HeightCM          float64   `gorm:"not null;column:height_cm" json:"height_cm"`
	WeightKG          float64   `gorm:"not null;column:weight_kg" json:"weight_kg"`
	BMI               float64   `gorm:"not null;column:bmi" json:"bmi"`
	StressLevel       int       `gorm:"not null;column:stress_level" json:"stress_level"`
	Glucose           int       `gorm:"not null;default:1" json:"glucose"`
	Smoke             int       `gorm:"not null;default:0" json:"smoke"`
	Alco              int       `gorm:"not null;default:0" json:"alco"`
	Active            int       `gorm:"not null;default:1" json:"active"`
	MedicalConditions string    `gorm:"column:medical_conditions" json:"medical_conditions,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (HealthProfile) TableName() string { return "health_profile" }

func (p *HealthProfile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
