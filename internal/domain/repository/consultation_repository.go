package repository

import (
	"context"

	"github.com/yashdave182/medinote/internal/domain/entity"

	"github.com/google/uuid"
)

// ConsultationRepository scopes every lookup to the owning practitioner
type ConsultationRepository interface {
	Create(ctx context.Context, consultation *entity.Consultation) error
	FindByID(ctx context.Context, practitionerID, id uuid.UUID) (*entity.Consultation, error)
	FindAll(ctx context.Context, filter *entity.ConsultationFilter) ([]entity.Consultation, int64, error)
	CountByStatus(ctx context.Context, practitionerID uuid.UUID) (*entity.ConsultationStats, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status entity.ConsultationStatus) error
	AddDuration(ctx context.Context, id uuid.UUID, seconds int) error
}
