package repository

import (
	"context"

	"github.com/yashdave182/medinote/internal/domain/entity"

	"github.com/google/uuid"
)

type MedicalNoteRepository interface {
	FindByConsultationID(ctx context.Context, consultationID uuid.UUID) (*entity.MedicalNote, error)
	// Upsert writes a machine-produced note keyed on consultation id
	Upsert(ctx context.Context, note *entity.MedicalNote) error
	// SaveReview persists the four SOAP sections and the reviewed flag only
	SaveReview(ctx context.Context, note *entity.MedicalNote) error
}
