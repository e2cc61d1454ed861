package repository

import (
	"context"
	"errors"

	"github.com/yashdave182/medinote/internal/domain/entity"
	domainRepo "github.com/yashdave182/medinote/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type medicalNoteRepository struct {
	db *gorm.DB
}

func NewMedicalNoteRepository(db *gorm.DB) domainRepo.MedicalNoteRepository {
	return &medicalNoteRepository{db: db}
}

func (r *medicalNoteRepository) FindByConsultationID(ctx context.Context, consultationID uuid.UUID) (*entity.MedicalNote, error) {
	var note entity.MedicalNote
	err := r.db.WithContext(ctx).Where("consultation_id = ?", consultationID).First(&note).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &note, nil
}

// Upsert inserts the note or overwrites the existing one of the same
// consultation, so a re-transcription never creates a second note. On
// conflict note gets the id and created_at of the row it overwrote.
func (r *medicalNoteRepository) Upsert(ctx context.Context, note *entity.MedicalNote) error {
	return r.db.WithContext(ctx).Clauses(
		clause.OnConflict{
			Columns: []clause.Column{{Name: "consultation_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"subjective", "objective", "assessment", "plan",
				"raw_transcript", "extracted_entities", "reviewed", "updated_at",
			}),
		},
		clause.Returning{Columns: []clause.Column{{Name: "id"}, {Name: "created_at"}}},
	).Create(note).Error
}

func (r *medicalNoteRepository) SaveReview(ctx context.Context, note *entity.MedicalNote) error {
	result := r.db.WithContext(ctx).Model(&entity.MedicalNote{}).
		Where("consultation_id = ?", note.ConsultationID).
		Updates(map[string]interface{}{
			"subjective": note.Subjective,
			"objective":  note.Objective,
			"assessment": note.Assessment,
			"plan":       note.Plan,
			"reviewed":   note.Reviewed,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
