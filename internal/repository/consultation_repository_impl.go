package repository

import (
	"context"
	"errors"

	"github.com/yashdave182/medinote/internal/domain/entity"
	domainRepo "github.com/yashdave182/medinote/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type consultationRepository struct {
	db *gorm.DB
}

func NewConsultationRepository(db *gorm.DB) domainRepo.ConsultationRepository {
	return &consultationRepository{db: db}
}

func (r *consultationRepository) Create(ctx context.Context, consultation *entity.Consultation) error {
	return r.db.WithContext(ctx).Omit("Note").Create(consultation).Error
}

func (r *consultationRepository) FindByID(ctx context.Context, practitionerID, id uuid.UUID) (*entity.Consultation, error) {
	var consultation entity.Consultation
	err := r.db.WithContext(ctx).
		Preload("Note").
		Where("id = ? AND practitioner_id = ?", id, practitionerID).
		First(&consultation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &consultation, nil
}

// FindAll returns one page of the practitioner's consultations, newest first,
// together with the total count matching the filter.
func (r *consultationRepository) FindAll(ctx context.Context, filter *entity.ConsultationFilter) ([]entity.Consultation, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.Consultation{}).
		Where("practitioner_id = ?", filter.PractitionerID)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var consultations []entity.Consultation
	err := query.
		Order("consultation_date DESC, created_at DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&consultations).Error
	if err != nil {
		return nil, 0, err
	}
	return consultations, total, nil
}

func (r *consultationRepository) CountByStatus(ctx context.Context, practitionerID uuid.UUID) (*entity.ConsultationStats, error) {
	var rows []struct {
		Status entity.ConsultationStatus
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&entity.Consultation{}).
		Select("status, COUNT(*) as count").
		Where("practitioner_id = ?", practitionerID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	stats := &entity.ConsultationStats{}
	for _, row := range rows {
		stats.Total += row.Count
		switch row.Status {
		case entity.ConsultationStatusInProgress:
			stats.InProgress = row.Count
		case entity.ConsultationStatusCompleted:
			stats.Completed = row.Count
		case entity.ConsultationStatusCancelled:
			stats.Cancelled = row.Count
		}
	}
	return stats, nil
}

func (r *consultationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.ConsultationStatus) error {
	return r.db.WithContext(ctx).Model(&entity.Consultation{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *consultationRepository) AddDuration(ctx context.Context, id uuid.UUID, seconds int) error {
	return r.db.WithContext(ctx).Model(&entity.Consultation{}).
		Where("id = ?", id).
		Update("duration_seconds", gorm.Expr("duration_seconds + ?", seconds)).Error
}
