package entity

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the practitioner profile, one row per user, created at signup
type Profile struct {
	UserID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	FullName      string    `gorm:"type:varchar(255);not null" json:"full_name"`
	LicenseNumber string    `gorm:"type:varchar(100)" json:"license_number,omitempty"`
	Specialty     string    `gorm:"type:varchar(100)" json:"specialty,omitempty"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Profile) TableName() string {
	return "profiles"
}
