package service

import (
	"context"
	"sync"
	"time"

	"github.com/yashdave182/medinote/internal/domain/entity"

	"github.com/google/uuid"
)

type mockAudioRecordingRepo struct {
	CreateFunc                    func(ctx context.Context, recording *entity.AudioRecording) error
	FindByConsultationIDFunc      func(ctx context.Context, consultationID uuid.UUID) ([]entity.AudioRecording, error)
	UpdateTranscriptionStatusFunc func(ctx context.Context, id uuid.UUID, status entity.TranscriptionStatus) error
	FindExpiredFunc               func(ctx context.Context, now time.Time, limit int) ([]entity.AudioRecording, error)
	DeleteByIDsFunc               func(ctx context.Context, ids []uuid.UUID) (int64, error)
}

func (m *mockAudioRecordingRepo) Create(ctx context.Context, recording *entity.AudioRecording) error {
	return m.CreateFunc(ctx, recording)
}

func (m *mockAudioRecordingRepo) FindByConsultationID(ctx context.Context, consultationID uuid.UUID) ([]entity.AudioRecording, error) {
	return m.FindByConsultationIDFunc(ctx, consultationID)
}

func (m *mockAudioRecordingRepo) UpdateTranscriptionStatus(ctx context.Context, id uuid.UUID, status entity.TranscriptionStatus) error {
	return m.UpdateTranscriptionStatusFunc(ctx, id, status)
}

func (m *mockAudioRecordingRepo) FindExpired(ctx context.Context, now time.Time, limit int) ([]entity.AudioRecording, error) {
	return m.FindExpiredFunc(ctx, now, limit)
}

func (m *mockAudioRecordingRepo) DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	return m.DeleteByIDsFunc(ctx, ids)
}

type mockAuditLogRepo struct {
	CreateFunc       func(ctx context.Context, log *entity.AuditLog) error
	FindByUserIDFunc func(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.AuditLog, int64, error)
}

func (m *mockAuditLogRepo) Create(ctx context.Context, log *entity.AuditLog) error {
	return m.CreateFunc(ctx, log)
}

func (m *mockAuditLogRepo) FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.AuditLog, int64, error) {
	return m.FindByUserIDFunc(ctx, userID, limit, offset)
}

// memRecordingStore is an in-memory recording table shared by concurrent
// cleanup rounds
type memRecordingStore struct {
	mu   sync.Mutex
	rows map[uuid.UUID]entity.AudioRecording
}

func newMemRecordingStore(rows ...entity.AudioRecording) *memRecordingStore {
	s := &memRecordingStore{rows: make(map[uuid.UUID]entity.AudioRecording)}
	for _, r := range rows {
		s.rows[r.ID] = r
	}
	return s
}

func (s *memRecordingStore) repo() *mockAudioRecordingRepo {
	return &mockAudioRecordingRepo{
		FindExpiredFunc: func(_ context.Context, now time.Time, limit int) ([]entity.AudioRecording, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			var out []entity.AudioRecording
			for _, r := range s.rows {
				if r.IsExpired(now) && len(out) < limit {
					out = append(out, r)
				}
			}
			return out, nil
		},
		DeleteByIDsFunc: func(_ context.Context, ids []uuid.UUID) (int64, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			var n int64
			for _, id := range ids {
				if _, ok := s.rows[id]; ok {
					delete(s.rows, id)
					n++
				}
			}
			return n, nil
		},
	}
}

func (s *memRecordingStore) has(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.rows[id]
	return ok
}

func (s *memRecordingStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

type fakeObjectDeleter struct {
	mu      sync.Mutex
	deleted []string
	err     error
}

func (d *fakeObjectDeleter) Delete(_ context.Context, key string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.deleted = append(d.deleted, key)
	return d.err
}

type fakeLocker struct {
	acquired bool
	err      error
	releases int
}

func (l *fakeLocker) Acquire(context.Context) (bool, error) {
	return l.acquired, l.err
}

func (l *fakeLocker) Release(context.Context) error {
	l.releases++
	return nil
}
