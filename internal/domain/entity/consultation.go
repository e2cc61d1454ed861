package entity

import (
	"time"

	"github.com/google/uuid"
)

// ConsultationStatus represents the lifecycle state of a consultation
type ConsultationStatus string

const (
	ConsultationStatusInProgress ConsultationStatus = "in_progress"
	ConsultationStatusCompleted  ConsultationStatus = "completed"
	ConsultationStatusCancelled  ConsultationStatus = "cancelled"
)

// Valid reports whether s is one of the known statuses
func (s ConsultationStatus) Valid() bool {
	switch s {
	case ConsultationStatusInProgress, ConsultationStatusCompleted, ConsultationStatusCancelled:
		return true
	}
	return false
}

// Consultation is a single patient encounter owned by one practitioner.
// Status moves one way: in_progress -> completed | cancelled.
type Consultation struct {
	ID               uuid.UUID          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	PractitionerID   uuid.UUID          `gorm:"type:uuid;not null;index" json:"practitioner_id"`
	PatientName      string             `gorm:"type:varchar(255);not null" json:"patient_name"`
	PatientID        *string            `gorm:"type:varchar(100)" json:"patient_id,omitempty"`
	ConsultationDate time.Time          `gorm:"not null;index" json:"consultation_date"`
	Status           ConsultationStatus `gorm:"type:consultation_status;not null;default:'in_progress';index" json:"status"`
	DurationSeconds  int                `gorm:"not null;default:0" json:"duration_seconds"`
	CreatedAt        time.Time          `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time          `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Note *MedicalNote `gorm:"foreignKey:ConsultationID" json:"note,omitempty"`
}

func (Consultation) TableName() string {
	return "consultations"
}

// IsInProgress checks if the consultation still accepts recordings and notes
func (c *Consultation) IsInProgress() bool {
	return c.Status == ConsultationStatusInProgress
}

// IsCompleted checks if consultation is completed
func (c *Consultation) IsCompleted() bool {
	return c.Status == ConsultationStatusCompleted
}

// IsCancelled checks if consultation is cancelled
func (c *Consultation) IsCancelled() bool {
	return c.Status == ConsultationStatusCancelled
}

// ConsultationFilter narrows the dashboard list.
// Used by repository layer to avoid coupling with delivery DTOs.
type ConsultationFilter struct {
	PractitionerID uuid.UUID
	Status         ConsultationStatus // empty means all
	Limit          int
	Offset         int
}

// ConsultationStats holds consultation counts per status for one practitioner
type ConsultationStats struct {
	Total      int64
	InProgress int64
	Completed  int64
	Cancelled  int64
}
