package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yashdave182/medinote/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const cleanupBatchSize = 500

// ObjectDeleter removes stored audio. Deleting a missing object must succeed.
type ObjectDeleter interface {
	Delete(ctx context.Context, key string) error
}

// Locker keeps replicas from cleaning up at the same time
type Locker interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

// RecordingCleanupService purges expired recording metadata and the stored
// audio behind it. Rounds are idempotent: rows and objects already gone are
// skipped silently.
type RecordingCleanupService struct {
	recordingRepo repository.AudioRecordingRepository
	objects       ObjectDeleter
	lock          Locker
	interval      time.Duration
	log           *logrus.Logger
	now           func() time.Time

	stopChan chan struct{}
	wg       sync.WaitGroup
	started  atomic.Bool
	stopped  atomic.Bool
}

// NewRecordingCleanupService builds the job. objects and lock are optional.
func NewRecordingCleanupService(
	recordingRepo repository.AudioRecordingRepository,
	objects ObjectDeleter,
	lock Locker,
	interval time.Duration,
	log *logrus.Logger,
) *RecordingCleanupService {
	if interval <= 0 {
		interval = time.Hour
	}
	return &RecordingCleanupService{
		recordingRepo: recordingRepo,
		objects:       objects,
		lock:          lock,
		interval:      interval,
		log:           log,
		now:           time.Now,
		stopChan:      make(chan struct{}),
	}
}

// Start runs a round immediately and then every interval until Stop
func (s *RecordingCleanupService) Start(ctx context.Context) {
	if !s.started.CompareAndSwap(false, true) {
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			if _, err := s.RunOnce(ctx); err != nil {
				s.log.Warnf("Failed to clean up expired recordings: %+v", err)
			}

			select {
			case <-s.stopChan:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	s.log.Infof("Recording cleanup started: interval=%v", s.interval)
}

// Stop gracefully shuts down the loop. Safe to call multiple times.
func (s *RecordingCleanupService) Stop() {
	if s.stopped.CompareAndSwap(false, true) {
		close(s.stopChan)
		s.wg.Wait()
		s.log.Info("Recording cleanup stopped")
	}
}

// RunOnce deletes every recording whose expiry has passed and returns the
// number of rows removed. A round that cannot take the lock does nothing.
func (s *RecordingCleanupService) RunOnce(ctx context.Context) (int64, error) {
	if s.lock != nil {
		ok, err := s.lock.Acquire(ctx)
		if err != nil {
			s.log.Warnf("Failed to acquire cleanup lease, skipping round: %+v", err)
			return 0, nil
		}
		if !ok {
			s.log.Debug("Cleanup lease held by another instance, skipping round")
			return 0, nil
		}
		defer func() {
			if err := s.lock.Release(context.WithoutCancel(ctx)); err != nil {
				s.log.Warnf("Failed to release cleanup lease: %+v", err)
			}
		}()
	}

	now := s.now()
	var total int64

	for {
		expired, err := s.recordingRepo.FindExpired(ctx, now, cleanupBatchSize)
		if err != nil {
			return total, fmt.Errorf("find expired recordings: %w", err)
		}
		if len(expired) == 0 {
			break
		}

		ids := make([]uuid.UUID, 0, len(expired))
		for _, rec := range expired {
			ids = append(ids, rec.ID)
			if s.objects == nil || rec.StoragePath == "" {
				continue
			}
			// the row goes either way; a leftover object is only logged
			if err := s.objects.Delete(ctx, rec.StoragePath); err != nil {
				s.log.Warnf("Failed to delete audio object %s: %+v", rec.StoragePath, err)
			}
		}

		deleted, err := s.recordingRepo.DeleteByIDs(ctx, ids)
		if err != nil {
			return total, fmt.Errorf("delete expired recordings: %w", err)
		}
		total += deleted

		if len(expired) < cleanupBatchSize || deleted == 0 {
			break
		}

		select {
		case <-ctx.Done():
			return total, ctx.Err()
		default:
		}
	}

	if total > 0 {
		s.log.Infof("Deleted %d expired recordings", total)
	}
	return total, nil
}
