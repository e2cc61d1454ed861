package repository

import (
	"context"
	"time"

	"github.com/yashdave182/medinote/internal/domain/entity"

	"github.com/google/uuid"
)

type AudioRecordingRepository interface {
	Create(ctx context.Context, recording *entity.AudioRecording) error
	FindByConsultationID(ctx context.Context, consultationID uuid.UUID) ([]entity.AudioRecording, error)
	UpdateTranscriptionStatus(ctx context.Context, id uuid.UUID, status entity.TranscriptionStatus) error
	FindExpired(ctx context.Context, now time.Time, limit int) ([]entity.AudioRecording, error)
	DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error)
}
