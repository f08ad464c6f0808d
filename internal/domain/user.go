package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	PasswordHash string    `gorm:"not null;column:password_hash" json:"-"`
	FullName     string    `gorm:"not null;column:full_name" json:"full_name"`
	PhoneNumber  string    `gorm:"column:phone_number" json:"phone_number,omitempty"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (User) TableName() string { return "user" }

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// UserPublicView is the caller-facing shape of a user record. The password
// hash never leaves the service layer.
type UserPublicView struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	FullName    string    `json:"full_name"`
	PhoneNumber string    `json:"phone_number,omitempty"`
}

func (u *User) PublicView() UserPublicView {
	return UserPublicView{
		ID:          u.ID,
		Email:       u.Email,
		FullName:    u.FullName,
		PhoneNumber: u.PhoneNumber,
	}
}
