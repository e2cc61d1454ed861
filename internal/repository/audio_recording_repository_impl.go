package repository

import (
	"context"
	"time"

	"github.com/yashdave182/medinote/internal/domain/entity"
	domainRepo "github.com/yashdave182/medinote/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type audioRecordingRepository struct {
	db *gorm.DB
}

func NewAudioRecordingRepository(db *gorm.DB) domainRepo.AudioRecordingRepository {
	return &audioRecordingRepository{db: db}
}

func (r *audioRecordingRepository) Create(ctx context.Context, recording *entity.AudioRecording) error {
	return r.db.WithContext(ctx).Create(recording).Error
}

func (r *audioRecordingRepository) FindByConsultationID(ctx context.Context, consultationID uuid.UUID) ([]entity.AudioRecording, error) {
	var recordings []entity.AudioRecording
	err := r.db.WithContext(ctx).
		Where("consultation_id = ?", consultationID).
		Order("created_at DESC").
		Find(&recordings).Error
	if err != nil {
		return nil, err
	}
	return recordings, nil
}

func (r *audioRecordingRepository) UpdateTranscriptionStatus(ctx context.Context, id uuid.UUID, status entity.TranscriptionStatus) error {
	return r.db.WithContext(ctx).Model(&entity.AudioRecording{}).
		Where("id = ?", id).
		Update("transcription_status", status).Error
}

func (r *audioRecordingRepository) FindExpired(ctx context.Context, now time.Time, limit int) ([]entity.AudioRecording, error) {
	var recordings []entity.AudioRecording
	err := r.db.WithContext(ctx).
		Where("expires_at <= ?", now).
		Order("expires_at ASC").
		Limit(limit).
		Find(&recordings).Error
	if err != nil {
		return nil, err
	}
	return recordings, nil
}

// DeleteByIDs removes the given rows. Rows already gone are ignored, which
// keeps concurrent cleanup rounds harmless.
func (r *audioRecordingRepository) DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&entity.AudioRecording{})
	return result.RowsAffected, result.Error
}
