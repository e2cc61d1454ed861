package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type CreateConsultationRequest struct {
	PatientName string  `json:"patient_name" validate:"required,notblank,max=255"`
	PatientID   *string `json:"patient_id" validate:"omitempty,max=100"`
}

// ConsultationListRequest is read from the query string
type ConsultationListRequest struct {
	Status string `json:"status" validate:"omitempty,oneof=in_progress completed cancelled"`
	Page   int    `json:"page" validate:"gte=1"`
	Limit  int    `json:"limit" validate:"gte=1,lte=100"`
}

// Response DTOs

type CreateConsultationResponse struct {
	ID uuid.UUID `json:"id"`
}

type ConsultationResponse struct {
	ID               uuid.UUID     `json:"id"`
	PatientName      string        `json:"patient_name"`
	PatientID        *string       `json:"patient_id,omitempty"`
	ConsultationDate time.Time     `json:"consultation_date"`
	Status           string        `json:"status"`
	DurationSeconds  int           `json:"duration_seconds"`
	Note             *NoteResponse `json:"note,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

type ConsultationListResponse struct {
	Consultations []ConsultationResponse `json:"consultations"`
	Page          int                    `json:"-"`
	Limit         int                    `json:"-"`
	Total         int64                  `json:"-"`
}

type DashboardStatsResponse struct {
	Total      int64 `json:"total"`
	InProgress int64 `json:"in_progress"`
	Completed  int64 `json:"completed"`
	Cancelled  int64 `json:"cancelled"`
}
