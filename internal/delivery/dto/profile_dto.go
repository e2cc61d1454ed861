package dto

import (
	"time"

	"github.com/google/uuid"
)

type UpdateProfileRequest struct {
	FullName      string `json:"full_name" validate:"required,notblank,min=2,max=255"`
	LicenseNumber string `json:"license_number" validate:"omitempty,max=100"`
	Specialty     string `json:"specialty" validate:"omitempty,max=255"`
}

type ProfileResponse struct {
	UserID        uuid.UUID `json:"user_id"`
	FullName      string    `json:"full_name"`
	LicenseNumber string    `json:"license_number,omitempty"`
	Specialty     string    `json:"specialty,omitempty"`
	UpdatedAt     time.Time `json:"updated_at"`
}
