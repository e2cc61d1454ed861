package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/yashdave182/medinote/internal/converter"
	"github.com/yashdave182/medinote/internal/delivery/dto"
	"github.com/yashdave182/medinote/internal/delivery/http/middleware"
	"github.com/yashdave182/medinote/internal/domain/entity"
	"github.com/yashdave182/medinote/internal/domain/repository"
	"github.com/yashdave182/medinote/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type ConsultationUsecase interface {
	CreateConsultation(ctx context.Context, req *dto.CreateConsultationRequest) (*dto.CreateConsultationResponse, error)
	ListConsultations(ctx context.Context, req *dto.ConsultationListRequest) (*dto.ConsultationListResponse, error)
	GetConsultation(ctx context.Context, id uuid.UUID) (*dto.ConsultationResponse, error)
	GetDashboardStats(ctx context.Context) (*dto.DashboardStatsResponse, error)
	CompleteConsultation(ctx context.Context, id uuid.UUID) (*dto.ConsultationResponse, error)
	CancelConsultation(ctx context.Context, id uuid.UUID) (*dto.ConsultationResponse, error)
}

type consultationUsecase struct {
	log              *logrus.Logger
	consultationRepo repository.ConsultationRepository
	noteRepo         repository.MedicalNoteRepository
	auditService     service.AuditService
	events           EventPublisher
}

func NewConsultationUsecase(
	log *logrus.Logger,
	consultationRepo repository.ConsultationRepository,
	noteRepo repository.MedicalNoteRepository,
	auditService service.AuditService,
	events EventPublisher,
) ConsultationUsecase {
	return &consultationUsecase{
		log:              log,
		consultationRepo: consultationRepo,
		noteRepo:         noteRepo,
		auditService:     auditService,
		events:           events,
	}
}

// CreateConsultation opens an in-progress consultation owned by the caller
func (u *consultationUsecase) CreateConsultation(ctx context.Context, req *dto.CreateConsultationRequest) (*dto.CreateConsultationResponse, error) {
	practitionerID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}

	patientName := strings.TrimSpace(req.PatientName)
	if patientName == "" {
		return nil, ErrPatientNameRequired
	}

	var patientID *string
	if req.PatientID != nil {
		if trimmed := strings.TrimSpace(*req.PatientID); trimmed != "" {
			patientID = &trimmed
		}
	}

	consultation := &entity.Consultation{
		PractitionerID:   practitionerID,
		PatientName:      patientName,
		PatientID:        patientID,
		ConsultationDate: time.Now().UTC(),
		Status:           entity.ConsultationStatusInProgress,
	}

	if err := u.consultationRepo.Create(ctx, consultation); err != nil {
		u.log.Warnf("Failed to create consultation: %+v", err)
		return nil, err
	}

	u.log.Infof("Consultation created: id=%s, practitioner=%s", consultation.ID, practitionerID)
	u.auditService.LogCreate(ctx, practitionerID, entity.AuditActionConsultationCreate, "consultation", consultation.ID.String(), map[string]interface{}{
		"patient_name": consultation.PatientName,
		"patient_id":   consultation.PatientID,
	})
	publishEvent(ctx, u.log, u.events, entity.EventConsultationCreated, consultation)

	return &dto.CreateConsultationResponse{ID: consultation.ID}, nil
}

// ListConsultations returns the caller's consultations, newest first
func (u *consultationUsecase) ListConsultations(ctx context.Context, req *dto.ConsultationListRequest) (*dto.ConsultationListResponse, error) {
	practitionerID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}

	filter := &entity.ConsultationFilter{
		PractitionerID: practitionerID,
		Status:         entity.ConsultationStatus(req.Status),
		Limit:          req.Limit,
		Offset:         (req.Page - 1) * req.Limit,
	}

	consultations, total, err := u.consultationRepo.FindAll(ctx, filter)
	if err != nil {
		u.log.Warnf("Failed to list consultations for practitioner %s: %+v", practitionerID, err)
		return nil, err
	}

	return &dto.ConsultationListResponse{
		Consultations: converter.ConsultationsToResponses(consultations),
		Page:          req.Page,
		Limit:         req.Limit,
		Total:         total,
	}, nil
}

func (u *consultationUsecase) GetConsultation(ctx context.Context, id uuid.UUID) (*dto.ConsultationResponse, error) {
	consultation, err := loadConsultation(ctx, u.log, u.consultationRepo, id)
	if err != nil {
		return nil, err
	}
	return converter.ConsultationToResponse(consultation), nil
}

func (u *consultationUsecase) GetDashboardStats(ctx context.Context) (*dto.DashboardStatsResponse, error) {
	practitionerID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}

	stats, err := u.consultationRepo.CountByStatus(ctx, practitionerID)
	if err != nil {
		u.log.Warnf("Failed to count consultations for practitioner %s: %+v", practitionerID, err)
		return nil, err
	}

	return converter.StatsToResponse(stats), nil
}

// CompleteConsultation closes the consultation once its note has been
// reviewed. Completing an already completed consultation is a no-op.
func (u *consultationUsecase) CompleteConsultation(ctx context.Context, id uuid.UUID) (*dto.ConsultationResponse, error) {
	consultation, err := loadConsultation(ctx, u.log, u.consultationRepo, id)
	if err != nil {
		return nil, err
	}

	switch consultation.Status {
	case entity.ConsultationStatusCompleted:
		return converter.ConsultationToResponse(consultation), nil
	case entity.ConsultationStatusCancelled:
		return nil, ErrConsultationCancelled
	}

	note := consultation.Note
	if note == nil {
		if note, err = u.noteRepo.FindByConsultationID(ctx, id); err != nil {
			u.log.Warnf("Failed to find note of consultation %s: %+v", id, err)
			return nil, err
		}
	}
	if note == nil || !note.Reviewed {
		return nil, ErrNoteNotReviewed
	}

	if err := u.consultationRepo.UpdateStatus(ctx, id, entity.ConsultationStatusCompleted); err != nil {
		u.log.Warnf("Failed to complete consultation %s: %+v", id, err)
		return nil, err
	}

	previous := consultation.Status
	consultation.Status = entity.ConsultationStatusCompleted
	consultation.Note = note

	u.log.Infof("Consultation completed: id=%s", id)
	u.auditService.LogUpdate(ctx, consultation.PractitionerID, entity.AuditActionConsultationComplete, "consultation", id.String(), previous, consultation.Status)
	publishEvent(ctx, u.log, u.events, entity.EventConsultationCompleted, consultation)

	return converter.ConsultationToResponse(consultation), nil
}

// CancelConsultation abandons an in-progress consultation. Cancelling twice
// is a no-op; a completed consultation cannot be cancelled.
func (u *consultationUsecase) CancelConsultation(ctx context.Context, id uuid.UUID) (*dto.ConsultationResponse, error) {
	consultation, err := loadConsultation(ctx, u.log, u.consultationRepo, id)
	if err != nil {
		return nil, err
	}

	switch consultation.Status {
	case entity.ConsultationStatusCancelled:
		return converter.ConsultationToResponse(consultation), nil
	case entity.ConsultationStatusCompleted:
		return nil, ErrConsultationCompleted
	}

	if err := u.consultationRepo.UpdateStatus(ctx, id, entity.ConsultationStatusCancelled); err != nil {
		u.log.Warnf("Failed to cancel consultation %s: %+v", id, err)
		return nil, err
	}

	previous := consultation.Status
	consultation.Status = entity.ConsultationStatusCancelled

	u.log.Infof("Consultation cancelled: id=%s", id)
	u.auditService.LogUpdate(ctx, consultation.PractitionerID, entity.AuditActionConsultationCancel, "consultation", id.String(), previous, consultation.Status)
	publishEvent(ctx, u.log, u.events, entity.EventConsultationCancelled, consultation)

	return converter.ConsultationToResponse(consultation), nil
}
