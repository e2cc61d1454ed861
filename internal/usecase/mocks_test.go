package usecase

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yashdave182/medinote/internal/delivery/http/middleware"
	"github.com/yashdave182/medinote/internal/domain/entity"
	"github.com/yashdave182/medinote/internal/domain/repository"
	"github.com/yashdave182/medinote/internal/recorder"
	"github.com/yashdave182/medinote/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// --- MockConsultationRepository ---
var _ repository.ConsultationRepository = (*MockConsultationRepository)(nil)

type MockConsultationRepository struct {
	CreateFunc        func(ctx context.Context, consultation *entity.Consultation) error
	FindByIDFunc      func(ctx context.Context, practitionerID, id uuid.UUID) (*entity.Consultation, error)
	FindAllFunc       func(ctx context.Context, filter *entity.ConsultationFilter) ([]entity.Consultation, int64, error)
	CountByStatusFunc func(ctx context.Context, practitionerID uuid.UUID) (*entity.ConsultationStats, error)
	UpdateStatusFunc  func(ctx context.Context, id uuid.UUID, status entity.ConsultationStatus) error
	AddDurationFunc   func(ctx context.Context, id uuid.UUID, seconds int) error

	UpdateStatusCallCount int32
}

func (m *MockConsultationRepository) Create(ctx context.Context, consultation *entity.Consultation) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, consultation)
	}
	return errors.New("CreateFunc not implemented in mock")
}

func (m *MockConsultationRepository) FindByID(ctx context.Context, practitionerID, id uuid.UUID) (*entity.Consultation, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, practitionerID, id)
	}
	return nil, errors.New("FindByIDFunc not implemented in mock")
}

func (m *MockConsultationRepository) FindAll(ctx context.Context, filter *entity.ConsultationFilter) ([]entity.Consultation, int64, error) {
	if m.FindAllFunc != nil {
		return m.FindAllFunc(ctx, filter)
	}
	return nil, 0, errors.New("FindAllFunc not implemented in mock")
}

func (m *MockConsultationRepository) CountByStatus(ctx context.Context, practitionerID uuid.UUID) (*entity.ConsultationStats, error) {
	if m.CountByStatusFunc != nil {
		return m.CountByStatusFunc(ctx, practitionerID)
	}
	return nil, errors.New("CountByStatusFunc not implemented in mock")
}

func (m *MockConsultationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.ConsultationStatus) error {
	atomic.AddInt32(&m.UpdateStatusCallCount, 1)
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, status)
	}
	return errors.New("UpdateStatusFunc not implemented in mock")
}

func (m *MockConsultationRepository) AddDuration(ctx context.Context, id uuid.UUID, seconds int) error {
	if m.AddDurationFunc != nil {
		return m.AddDurationFunc(ctx, id, seconds)
	}
	return nil
}

// --- MockMedicalNoteRepository ---
var _ repository.MedicalNoteRepository = (*MockMedicalNoteRepository)(nil)

type MockMedicalNoteRepository struct {
	FindByConsultationIDFunc func(ctx context.Context, consultationID uuid.UUID) (*entity.MedicalNote, error)
	UpsertFunc               func(ctx context.Context, note *entity.MedicalNote) error
	SaveReviewFunc           func(ctx context.Context, note *entity.MedicalNote) error

	UpsertCallCount int32
}

func (m *MockMedicalNoteRepository) FindByConsultationID(ctx context.Context, consultationID uuid.UUID) (*entity.MedicalNote, error) {
	if m.FindByConsultationIDFunc != nil {
		return m.FindByConsultationIDFunc(ctx, consultationID)
	}
	return nil, nil
}

func (m *MockMedicalNoteRepository) Upsert(ctx context.Context, note *entity.MedicalNote) error {
	atomic.AddInt32(&m.UpsertCallCount, 1)
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, note)
	}
	return errors.New("UpsertFunc not implemented in mock")
}

func (m *MockMedicalNoteRepository) SaveReview(ctx context.Context, note *entity.MedicalNote) error {
	if m.SaveReviewFunc != nil {
		return m.SaveReviewFunc(ctx, note)
	}
	return errors.New("SaveReviewFunc not implemented in mock")
}

// --- MockAudioRecordingRepository ---
var _ repository.AudioRecordingRepository = (*MockAudioRecordingRepository)(nil)

type MockAudioRecordingRepository struct {
	CreateFunc                    func(ctx context.Context, recording *entity.AudioRecording) error
	FindByConsultationIDFunc      func(ctx context.Context, consultationID uuid.UUID) ([]entity.AudioRecording, error)
	UpdateTranscriptionStatusFunc func(ctx context.Context, id uuid.UUID, status entity.TranscriptionStatus) error
	FindExpiredFunc               func(ctx context.Context, now time.Time, limit int) ([]entity.AudioRecording, error)
	DeleteByIDsFunc               func(ctx context.Context, ids []uuid.UUID) (int64, error)
}

func (m *MockAudioRecordingRepository) Create(ctx context.Context, recording *entity.AudioRecording) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, recording)
	}
	return errors.New("CreateFunc not implemented in mock")
}

func (m *MockAudioRecordingRepository) FindByConsultationID(ctx context.Context, consultationID uuid.UUID) ([]entity.AudioRecording, error) {
	if m.FindByConsultationIDFunc != nil {
		return m.FindByConsultationIDFunc(ctx, consultationID)
	}
	return nil, errors.New("FindByConsultationIDFunc not implemented in mock")
}

func (m *MockAudioRecordingRepository) UpdateTranscriptionStatus(ctx context.Context, id uuid.UUID, status entity.TranscriptionStatus) error {
	if m.UpdateTranscriptionStatusFunc != nil {
		return m.UpdateTranscriptionStatusFunc(ctx, id, status)
	}
	return nil
}

func (m *MockAudioRecordingRepository) FindExpired(ctx context.Context, now time.Time, limit int) ([]entity.AudioRecording, error) {
	if m.FindExpiredFunc != nil {
		return m.FindExpiredFunc(ctx, now, limit)
	}
	return nil, nil
}

func (m *MockAudioRecordingRepository) DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if m.DeleteByIDsFunc != nil {
		return m.DeleteByIDsFunc(ctx, ids)
	}
	return 0, nil
}

// --- MockUserRepository ---
var _ repository.UserRepository = (*MockUserRepository)(nil)

type MockUserRepository struct {
	CreateWithProfileFunc func(ctx context.Context, user *entity.User, profile *entity.Profile) error
	FindByEmailFunc       func(ctx context.Context, email string) (*entity.User, error)
	FindByIDFunc          func(ctx context.Context, id uuid.UUID) (*entity.User, error)
}

func (m *MockUserRepository) CreateWithProfile(ctx context.Context, user *entity.User, profile *entity.Profile) error {
	if m.CreateWithProfileFunc != nil {
		return m.CreateWithProfileFunc(ctx, user, profile)
	}
	return errors.New("CreateWithProfileFunc not implemented in mock")
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	if m.FindByEmailFunc != nil {
		return m.FindByEmailFunc(ctx, email)
	}
	return nil, nil
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

// --- MockProfileRepository ---
var _ repository.ProfileRepository = (*MockProfileRepository)(nil)

type MockProfileRepository struct {
	FindByUserIDFunc func(ctx context.Context, userID uuid.UUID) (*entity.Profile, error)
	UpdateFunc       func(ctx context.Context, profile *entity.Profile) error
}

func (m *MockProfileRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.Profile, error) {
	if m.FindByUserIDFunc != nil {
		return m.FindByUserIDFunc(ctx, userID)
	}
	return nil, nil
}

func (m *MockProfileRepository) Update(ctx context.Context, profile *entity.Profile) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, profile)
	}
	return errors.New("UpdateFunc not implemented in mock")
}

// --- MockAuditLogRepository ---
var _ repository.AuditLogRepository = (*MockAuditLogRepository)(nil)

type MockAuditLogRepository struct {
	FindByUserIDFunc func(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.AuditLog, int64, error)
}

func (m *MockAuditLogRepository) Create(context.Context, *entity.AuditLog) error { return nil }

func (m *MockAuditLogRepository) FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.AuditLog, int64, error) {
	if m.FindByUserIDFunc != nil {
		return m.FindByUserIDFunc(ctx, userID, limit, offset)
	}
	return nil, 0, nil
}

// --- MockAuditService ---
var _ service.AuditService = (*MockAuditService)(nil)

type MockAuditService struct {
	mu      sync.Mutex
	Actions []string
}

func (m *MockAuditService) LogCreate(_ context.Context, _ uuid.UUID, action string, _ string, _ string, _ interface{}) {
	m.record(action)
}

func (m *MockAuditService) LogUpdate(_ context.Context, _ uuid.UUID, action string, _ string, _ string, _, _ interface{}) {
	m.record(action)
}

func (m *MockAuditService) record(action string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Actions = append(m.Actions, action)
}

// --- MockEventPublisher ---
type MockEventPublisher struct {
	mu     sync.Mutex
	Events []entity.LifecycleEvent
	Err    error
}

func (m *MockEventPublisher) Publish(_ context.Context, event entity.LifecycleEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
	return m.Err
}

func (m *MockEventPublisher) Types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]string, len(m.Events))
	for i, e := range m.Events {
		types[i] = e.Type
	}
	return types
}

// --- MockTranscriber ---
type MockTranscriber struct {
	TranscribeFunc func(ctx context.Context, audio *entity.Audio) (string, error)

	CallCount int32
}

func (m *MockTranscriber) Transcribe(ctx context.Context, audio *entity.Audio) (string, error) {
	atomic.AddInt32(&m.CallCount, 1)
	if m.TranscribeFunc != nil {
		return m.TranscribeFunc(ctx, audio)
	}
	return "", errors.New("TranscribeFunc not implemented in mock")
}

// --- MockNoteGenerator ---
type MockNoteGenerator struct {
	GenerateNoteFunc func(ctx context.Context, transcript, patientName string) (*entity.SOAPNote, error)
}

func (m *MockNoteGenerator) GenerateNote(ctx context.Context, transcript, patientName string) (*entity.SOAPNote, error) {
	if m.GenerateNoteFunc != nil {
		return m.GenerateNoteFunc(ctx, transcript, patientName)
	}
	return nil, errors.New("GenerateNoteFunc not implemented in mock")
}

// --- MockAudioStore ---
type MockAudioStore struct {
	PutFunc    func(ctx context.Context, key string, audio *entity.Audio) error
	DeleteFunc func(ctx context.Context, key string) error
	Keys       []string
	Deleted    []string
}

func (m *MockAudioStore) ObjectKey(practitionerID, consultationID uuid.UUID, _ *entity.Audio) string {
	return "recordings/" + practitionerID.String() + "/" + consultationID.String() + "/audio.webm"
}

func (m *MockAudioStore) Put(ctx context.Context, key string, audio *entity.Audio) error {
	m.Keys = append(m.Keys, key)
	if m.PutFunc != nil {
		return m.PutFunc(ctx, key, audio)
	}
	return nil
}

func (m *MockAudioStore) Delete(ctx context.Context, key string) error {
	m.Deleted = append(m.Deleted, key)
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, key)
	}
	return nil
}

// --- MockTokenStore ---
var _ TokenStore = (*MockTokenStore)(nil)

// MockTokenStore is an in-memory allow-list
type MockTokenStore struct {
	mu     sync.Mutex
	tokens map[string]bool
}

func NewMockTokenStore() *MockTokenStore {
	return &MockTokenStore{tokens: make(map[string]bool)}
}

func tokenKey(kind string, userID uuid.UUID, tokenID string) string {
	return kind + ":" + userID.String() + ":" + tokenID
}

func (m *MockTokenStore) Save(_ context.Context, kind string, userID uuid.UUID, tokenID string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[tokenKey(kind, userID, tokenID)] = true
	return nil
}

func (m *MockTokenStore) Exists(_ context.Context, kind string, userID uuid.UUID, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens[tokenKey(kind, userID, tokenID)], nil
}

func (m *MockTokenStore) Revoke(_ context.Context, kind string, userID uuid.UUID, tokenID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, tokenKey(kind, userID, tokenID))
	return nil
}

func (m *MockTokenStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tokens)
}

// --- MockRecordingSessions ---
var _ RecordingSessions = (*MockRecordingSessions)(nil)

type MockRecordingSessions struct {
	StartFunc  func(ctx context.Context, consultationID uuid.UUID, opts recorder.StartOptions) (*recorder.SessionInfo, error)
	FinishFunc func(consultationID uuid.UUID) (*entity.Audio, error)

	Discarded []uuid.UUID
}

func (m *MockRecordingSessions) Start(ctx context.Context, consultationID uuid.UUID, opts recorder.StartOptions) (*recorder.SessionInfo, error) {
	if m.StartFunc != nil {
		return m.StartFunc(ctx, consultationID, opts)
	}
	return &recorder.SessionInfo{State: recorder.StateRecording, MimeType: opts.MimeType}, nil
}

func (m *MockRecordingSessions) Append(uuid.UUID, []byte) (*recorder.SessionInfo, error) {
	return &recorder.SessionInfo{State: recorder.StateRecording}, nil
}

func (m *MockRecordingSessions) Pause(uuid.UUID) (*recorder.SessionInfo, error) {
	return &recorder.SessionInfo{State: recorder.StatePaused}, nil
}

func (m *MockRecordingSessions) Resume(uuid.UUID) (*recorder.SessionInfo, error) {
	return &recorder.SessionInfo{State: recorder.StateRecording}, nil
}

func (m *MockRecordingSessions) Finish(consultationID uuid.UUID) (*entity.Audio, error) {
	if m.FinishFunc != nil {
		return m.FinishFunc(consultationID)
	}
	return nil, recorder.ErrNotRecording
}

func (m *MockRecordingSessions) Discard(consultationID uuid.UUID) {
	m.Discarded = append(m.Discarded, consultationID)
}

// --- helpers ---

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func practitionerCtx(id uuid.UUID) context.Context {
	return middleware.WithUser(context.Background(), id, "doc@example.com", "access-id")
}

// ownedConsultationRepo serves a single consultation to its owner only
func ownedConsultationRepo(c *entity.Consultation) *MockConsultationRepository {
	return &MockConsultationRepository{
		FindByIDFunc: func(_ context.Context, practitionerID, id uuid.UUID) (*entity.Consultation, error) {
			if practitionerID != c.PractitionerID || id != c.ID {
				return nil, nil
			}
			copied := *c
			return &copied, nil
		},
		UpdateStatusFunc: func(_ context.Context, _ uuid.UUID, status entity.ConsultationStatus) error {
			c.Status = status
			return nil
		},
	}
}

// memNoteRepo keeps one note per consultation
type memNoteRepo struct {
	mu    sync.Mutex
	notes map[uuid.UUID]entity.MedicalNote
}

func newMemNoteRepo() *memNoteRepo {
	return &memNoteRepo{notes: make(map[uuid.UUID]entity.MedicalNote)}
}

func (r *memNoteRepo) repo() *MockMedicalNoteRepository {
	return &MockMedicalNoteRepository{
		FindByConsultationIDFunc: func(_ context.Context, consultationID uuid.UUID) (*entity.MedicalNote, error) {
			r.mu.Lock()
			defer r.mu.Unlock()
			note, ok := r.notes[consultationID]
			if !ok {
				return nil, nil
			}
			return &note, nil
		},
		UpsertFunc: func(_ context.Context, note *entity.MedicalNote) error {
			r.mu.Lock()
			defer r.mu.Unlock()
			// mirrors RETURNING id, created_at on conflict
			if existing, ok := r.notes[note.ConsultationID]; ok {
				note.ID = existing.ID
				note.CreatedAt = existing.CreatedAt
			} else if note.ID == uuid.Nil {
				note.ID = uuid.New()
			}
			r.notes[note.ConsultationID] = *note
			return nil
		},
		SaveReviewFunc: func(_ context.Context, note *entity.MedicalNote) error {
			r.mu.Lock()
			defer r.mu.Unlock()
			existing, ok := r.notes[note.ConsultationID]
			if !ok {
				return errors.New("note not found")
			}
			existing.Subjective = note.Subjective
			existing.Objective = note.Objective
			existing.Assessment = note.Assessment
			existing.Plan = note.Plan
			existing.Reviewed = note.Reviewed
			r.notes[note.ConsultationID] = existing
			return nil
		},
	}
}

func (r *memNoteRepo) get(consultationID uuid.UUID) (entity.MedicalNote, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	note, ok := r.notes[consultationID]
	return note, ok
}

func (r *memNoteRepo) put(note entity.MedicalNote) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes[note.ConsultationID] = note
}
