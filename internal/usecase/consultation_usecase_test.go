package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/yashdave182/medinote/internal/delivery/dto"
	"github.com/yashdave182/medinote/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConsultationFixture(status entity.ConsultationStatus) *entity.Consultation {
	return &entity.Consultation{
		ID:             uuid.New(),
		PractitionerID: uuid.New(),
		PatientName:    "Jane Roe",
		Status:         status,
	}
}

func TestCreateConsultation(t *testing.T) {
	practitionerID := uuid.New()
	audit := &MockAuditService{}
	events := &MockEventPublisher{}

	var created *entity.Consultation
	repo := &MockConsultationRepository{
		CreateFunc: func(_ context.Context, c *entity.Consultation) error {
			c.ID = uuid.New()
			created = c
			return nil
		},
	}
	uc := NewConsultationUsecase(newTestLogger(), repo, &MockMedicalNoteRepository{}, audit, events)

	t.Run("Success", func(t *testing.T) {
		patientID := "  MRN-001 "
		resp, err := uc.CreateConsultation(practitionerCtx(practitionerID), &dto.CreateConsultationRequest{
			PatientName: "  John Doe ",
			PatientID:   &patientID,
		})

		require.NoError(t, err)
		require.NotNil(t, created)
		assert.Equal(t, created.ID, resp.ID)
		assert.Equal(t, "John Doe", created.PatientName)
		assert.Equal(t, "MRN-001", *created.PatientID)
		assert.Equal(t, practitionerID, created.PractitionerID)
		assert.Equal(t, entity.ConsultationStatusInProgress, created.Status)
		assert.False(t, created.ConsultationDate.IsZero())
		assert.Equal(t, []string{entity.AuditActionConsultationCreate}, audit.Actions)
		assert.Equal(t, []string{entity.EventConsultationCreated}, events.Types())
	})

	t.Run("BlankPatientName", func(t *testing.T) {
		_, err := uc.CreateConsultation(practitionerCtx(practitionerID), &dto.CreateConsultationRequest{PatientName: "   "})
		assert.ErrorIs(t, err, ErrPatientNameRequired)
	})

	t.Run("BlankPatientIDIsDropped", func(t *testing.T) {
		blank := " "
		_, err := uc.CreateConsultation(practitionerCtx(practitionerID), &dto.CreateConsultationRequest{PatientName: "A", PatientID: &blank})
		require.NoError(t, err)
		assert.Nil(t, created.PatientID)
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		_, err := uc.CreateConsultation(context.Background(), &dto.CreateConsultationRequest{PatientName: "A"})
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})
}

func TestListConsultations_Pagination(t *testing.T) {
	practitionerID := uuid.New()
	var got *entity.ConsultationFilter
	repo := &MockConsultationRepository{
		FindAllFunc: func(_ context.Context, filter *entity.ConsultationFilter) ([]entity.Consultation, int64, error) {
			got = filter
			return []entity.Consultation{{ID: uuid.New(), PatientName: "A"}}, 21, nil
		},
	}
	uc := NewConsultationUsecase(newTestLogger(), repo, &MockMedicalNoteRepository{}, &MockAuditService{}, nil)

	resp, err := uc.ListConsultations(practitionerCtx(practitionerID), &dto.ConsultationListRequest{Status: "completed", Page: 3, Limit: 10})

	require.NoError(t, err)
	assert.Equal(t, practitionerID, got.PractitionerID)
	assert.Equal(t, entity.ConsultationStatusCompleted, got.Status)
	assert.Equal(t, 20, got.Offset)
	assert.Equal(t, 10, got.Limit)
	assert.Len(t, resp.Consultations, 1)
	assert.Equal(t, int64(21), resp.Total)
	assert.Equal(t, 3, resp.Page)
}

func TestGetConsultation_OtherPractitionerIsNotFound(t *testing.T) {
	c := newConsultationFixture(entity.ConsultationStatusInProgress)
	uc := NewConsultationUsecase(newTestLogger(), ownedConsultationRepo(c), &MockMedicalNoteRepository{}, &MockAuditService{}, nil)

	resp, err := uc.GetConsultation(practitionerCtx(c.PractitionerID), c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane Roe", resp.PatientName)

	_, err = uc.GetConsultation(practitionerCtx(uuid.New()), c.ID)
	assert.ErrorIs(t, err, ErrConsultationNotFound)
}

func TestGetDashboardStats(t *testing.T) {
	repo := &MockConsultationRepository{
		CountByStatusFunc: func(context.Context, uuid.UUID) (*entity.ConsultationStats, error) {
			return &entity.ConsultationStats{Total: 6, InProgress: 1, Completed: 4, Cancelled: 1}, nil
		},
	}
	uc := NewConsultationUsecase(newTestLogger(), repo, &MockMedicalNoteRepository{}, &MockAuditService{}, nil)

	resp, err := uc.GetDashboardStats(practitionerCtx(uuid.New()))

	require.NoError(t, err)
	assert.Equal(t, &dto.DashboardStatsResponse{Total: 6, InProgress: 1, Completed: 4, Cancelled: 1}, resp)
}

func TestCompleteConsultation(t *testing.T) {
	t.Run("RequiresNote", func(t *testing.T) {
		c := newConsultationFixture(entity.ConsultationStatusInProgress)
		notes := newMemNoteRepo()
		uc := NewConsultationUsecase(newTestLogger(), ownedConsultationRepo(c), notes.repo(), &MockAuditService{}, nil)

		_, err := uc.CompleteConsultation(practitionerCtx(c.PractitionerID), c.ID)
		assert.ErrorIs(t, err, ErrNoteNotReviewed)
		assert.Equal(t, entity.ConsultationStatusInProgress, c.Status)
	})

	t.Run("RequiresReviewedNote", func(t *testing.T) {
		c := newConsultationFixture(entity.ConsultationStatusInProgress)
		notes := newMemNoteRepo()
		notes.put(*entity.NewTranscribedNote(c.ID, "cough"))
		uc := NewConsultationUsecase(newTestLogger(), ownedConsultationRepo(c), notes.repo(), &MockAuditService{}, nil)

		_, err := uc.CompleteConsultation(practitionerCtx(c.PractitionerID), c.ID)
		assert.ErrorIs(t, err, ErrNoteNotReviewed)
	})

	t.Run("Success", func(t *testing.T) {
		c := newConsultationFixture(entity.ConsultationStatusInProgress)
		notes := newMemNoteRepo()
		note := entity.NewTranscribedNote(c.ID, "cough")
		note.Review(entity.SOAPFields{Subjective: "cough"})
		notes.put(*note)
		events := &MockEventPublisher{}
		repo := ownedConsultationRepo(c)
		uc := NewConsultationUsecase(newTestLogger(), repo, notes.repo(), &MockAuditService{}, events)

		resp, err := uc.CompleteConsultation(practitionerCtx(c.PractitionerID), c.ID)

		require.NoError(t, err)
		assert.Equal(t, string(entity.ConsultationStatusCompleted), resp.Status)
		require.NotNil(t, resp.Note)
		assert.True(t, resp.Note.Reviewed)
		assert.Equal(t, entity.ConsultationStatusCompleted, c.Status)
		assert.Equal(t, []string{entity.EventConsultationCompleted}, events.Types())

		// completing again is a no-op
		resp, err = uc.CompleteConsultation(practitionerCtx(c.PractitionerID), c.ID)
		require.NoError(t, err)
		assert.Equal(t, string(entity.ConsultationStatusCompleted), resp.Status)
		assert.Equal(t, int32(1), repo.UpdateStatusCallCount)
	})

	t.Run("CancelledCannotComplete", func(t *testing.T) {
		c := newConsultationFixture(entity.ConsultationStatusCancelled)
		uc := NewConsultationUsecase(newTestLogger(), ownedConsultationRepo(c), newMemNoteRepo().repo(), &MockAuditService{}, nil)

		_, err := uc.CompleteConsultation(practitionerCtx(c.PractitionerID), c.ID)
		assert.ErrorIs(t, err, ErrConsultationCancelled)
	})

	t.Run("RepositoryError", func(t *testing.T) {
		c := newConsultationFixture(entity.ConsultationStatusInProgress)
		notes := newMemNoteRepo()
		note := entity.NewTranscribedNote(c.ID, "cough")
		note.Review(entity.SOAPFields{})
		notes.put(*note)
		repo := ownedConsultationRepo(c)
		dbErr := errors.New("connection reset")
		repo.UpdateStatusFunc = func(context.Context, uuid.UUID, entity.ConsultationStatus) error { return dbErr }
		uc := NewConsultationUsecase(newTestLogger(), repo, notes.repo(), &MockAuditService{}, nil)

		_, err := uc.CompleteConsultation(practitionerCtx(c.PractitionerID), c.ID)
		assert.ErrorIs(t, err, dbErr)
	})
}

func TestCancelConsultation(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		c := newConsultationFixture(entity.ConsultationStatusInProgress)
		repo := ownedConsultationRepo(c)
		audit := &MockAuditService{}
		uc := NewConsultationUsecase(newTestLogger(), repo, newMemNoteRepo().repo(), audit, nil)

		resp, err := uc.CancelConsultation(practitionerCtx(c.PractitionerID), c.ID)
		require.NoError(t, err)
		assert.Equal(t, string(entity.ConsultationStatusCancelled), resp.Status)

		_, err = uc.CancelConsultation(practitionerCtx(c.PractitionerID), c.ID)
		require.NoError(t, err)
		assert.Equal(t, int32(1), repo.UpdateStatusCallCount)
		assert.Equal(t, []string{entity.AuditActionConsultationCancel}, audit.Actions)
	})

	t.Run("CompletedCannotCancel", func(t *testing.T) {
		c := newConsultationFixture(entity.ConsultationStatusCompleted)
		uc := NewConsultationUsecase(newTestLogger(), ownedConsultationRepo(c), newMemNoteRepo().repo(), &MockAuditService{}, nil)

		_, err := uc.CancelConsultation(practitionerCtx(c.PractitionerID), c.ID)
		assert.ErrorIs(t, err, ErrConsultationCompleted)
	})

	t.Run("OtherPractitioner", func(t *testing.T) {
		c := newConsultationFixture(entity.ConsultationStatusInProgress)
		uc := NewConsultationUsecase(newTestLogger(), ownedConsultationRepo(c), newMemNoteRepo().repo(), &MockAuditService{}, nil)

		_, err := uc.CancelConsultation(practitionerCtx(uuid.New()), c.ID)
		assert.ErrorIs(t, err, ErrConsultationNotFound)
		assert.Equal(t, entity.ConsultationStatusInProgress, c.Status)
	})
}
