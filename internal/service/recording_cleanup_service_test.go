package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/yashdave182/medinote/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cleanupNow = time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func recordingExpiringAt(at time.Time, path string) entity.AudioRecording {
	return entity.AudioRecording{ID: uuid.New(), ConsultationID: uuid.New(), StoragePath: path, ExpiresAt: at}
}

func newTestCleanup(store *memRecordingStore, objects ObjectDeleter, lock Locker) *RecordingCleanupService {
	svc := NewRecordingCleanupService(store.repo(), objects, lock, time.Hour, newTestLogger())
	svc.now = func() time.Time { return cleanupNow }
	return svc
}

func TestRunOnce_DeletesOnlyExpired(t *testing.T) {
	expired := recordingExpiringAt(cleanupNow.Add(-time.Minute), "recordings/a.webm")
	expiredNoObject := recordingExpiringAt(cleanupNow.Add(-48*time.Hour), "")
	fresh := recordingExpiringAt(cleanupNow.Add(time.Hour), "recordings/b.webm")
	store := newMemRecordingStore(expired, expiredNoObject, fresh)
	objects := &fakeObjectDeleter{}

	deleted, err := newTestCleanup(store, objects, nil).RunOnce(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
	assert.False(t, store.has(expired.ID))
	assert.False(t, store.has(expiredNoObject.ID))
	assert.True(t, store.has(fresh.ID))
	assert.Equal(t, []string{"recordings/a.webm"}, objects.deleted)
}

func TestRunOnce_IsIdempotent(t *testing.T) {
	store := newMemRecordingStore(recordingExpiringAt(cleanupNow.Add(-time.Minute), ""))
	svc := newTestCleanup(store, nil, nil)

	first, err := svc.RunOnce(context.Background())
	require.NoError(t, err)
	second, err := svc.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(1), first)
	assert.Equal(t, int64(0), second)
}

func TestRunOnce_ConcurrentRoundsDeleteEachRowOnce(t *testing.T) {
	var rows []entity.AudioRecording
	for i := 0; i < 50; i++ {
		rows = append(rows, recordingExpiringAt(cleanupNow.Add(-time.Duration(i+1)*time.Minute), ""))
	}
	store := newMemRecordingStore(rows...)
	svc := newTestCleanup(store, nil, nil)

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		total int64
	)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := svc.RunOnce(context.Background())
			assert.NoError(t, err)
			mu.Lock()
			total += n
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(50), total)
	for _, r := range rows {
		assert.False(t, store.has(r.ID))
	}
}

func TestRunOnce_ObjectDeleteFailureStillRemovesRow(t *testing.T) {
	rec := recordingExpiringAt(cleanupNow.Add(-time.Minute), "recordings/gone.webm")
	store := newMemRecordingStore(rec)

	deleted, err := newTestCleanup(store, &fakeObjectDeleter{err: errors.New("access denied")}, nil).RunOnce(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
	assert.False(t, store.has(rec.ID))
}

func TestRunOnce_SkipsRoundWithoutLease(t *testing.T) {
	rec := recordingExpiringAt(cleanupNow.Add(-time.Minute), "")
	store := newMemRecordingStore(rec)

	for _, lock := range []*fakeLocker{{acquired: false}, {err: errors.New("redis down")}} {
		deleted, err := newTestCleanup(store, nil, lock).RunOnce(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(0), deleted)
		assert.Equal(t, 0, lock.releases)
	}
	assert.True(t, store.has(rec.ID))

	lock := &fakeLocker{acquired: true}
	deleted, err := newTestCleanup(store, nil, lock).RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
	assert.Equal(t, 1, lock.releases)
}

func TestRunOnce_RepositoryError(t *testing.T) {
	repo := &mockAudioRecordingRepo{
		FindExpiredFunc: func(context.Context, time.Time, int) ([]entity.AudioRecording, error) {
			return nil, errors.New("connection refused")
		},
	}
	svc := NewRecordingCleanupService(repo, nil, nil, time.Hour, newTestLogger())

	_, err := svc.RunOnce(context.Background())
	assert.ErrorContains(t, err, "connection refused")
}

func TestStartStop(t *testing.T) {
	store := newMemRecordingStore(recordingExpiringAt(cleanupNow.Add(-time.Minute), ""))
	svc := newTestCleanup(store, nil, nil)

	svc.Start(context.Background())
	assert.Eventually(t, func() bool { return store.count() == 0 }, time.Second, 5*time.Millisecond)
	svc.Stop()
	svc.Stop()
}
