package recorder

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yashdave182/medinote/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const reapInterval = time.Minute

// SessionRegistry holds the live recording session of each consultation.
//
// Every operation locks the session's own mutex, so requests for one
// consultation are serialized while different consultations proceed in
// parallel. Sessions untouched for idleTimeout are discarded by a background
// loop; call Stop during shutdown.
type SessionRegistry struct {
	chunkInterval time.Duration
	idleTimeout   time.Duration
	log           *logrus.Logger

	sessions sync.Map // map[uuid.UUID]*session

	stopChan chan struct{}
	wg       sync.WaitGroup
	stopped  atomic.Bool
}

type session struct {
	mu       sync.Mutex
	lastUsed atomic.Int64 // Unix nano
	removed  bool

	device   *ChunkDevice
	recorder *Recorder
}

// SessionInfo describes a session after a state change
type SessionInfo struct {
	State       State
	Elapsed     time.Duration
	MimeType    string
	Constraints Constraints
}

func NewSessionRegistry(chunkInterval, idleTimeout time.Duration, log *logrus.Logger) *SessionRegistry {
	r := &SessionRegistry{
		chunkInterval: chunkInterval,
		idleTimeout:   idleTimeout,
		log:           log,
		stopChan:      make(chan struct{}),
	}

	r.wg.Add(1)
	go r.reapLoop()

	return r
}

// Stop ends the reaper and discards every open session. Safe to call
// multiple times.
func (r *SessionRegistry) Stop() {
	if !r.stopped.CompareAndSwap(false, true) {
		return
	}
	close(r.stopChan)
	r.wg.Wait()

	r.sessions.Range(func(key, value any) bool {
		s := value.(*session)
		s.mu.Lock()
		r.discard(key.(uuid.UUID), s)
		s.mu.Unlock()
		return true
	})
	r.log.Info("Recording session registry stopped")
}

// StartOptions is what the client reports when it asks to start capturing
type StartOptions struct {
	MimeType string
	// PermissionDenied is set when the browser refused microphone access
	PermissionDenied bool
}

func (r *SessionRegistry) Start(ctx context.Context, consultationID uuid.UUID, opts StartOptions) (*SessionInfo, error) {
	s := r.acquire(consultationID)
	defer s.mu.Unlock()

	if s.recorder != nil {
		return nil, ErrAlreadyRecording
	}

	device := NewChunkDevice(opts.MimeType)
	if opts.PermissionDenied {
		device.Deny()
	}
	rec := NewRecorder(device, r.chunkInterval, r.log)
	if err := rec.Start(ctx); err != nil {
		r.log.Warnf("Failed to start recording session of consultation %s: %+v", consultationID, err)
		return nil, err
	}

	s.device = device
	s.recorder = rec
	r.log.Infof("Recording session started: consultation=%s, mime=%s", consultationID, device.mimeType)

	return r.info(s), nil
}

func (r *SessionRegistry) Append(consultationID uuid.UUID, chunk []byte) (*SessionInfo, error) {
	s := r.lookup(consultationID)
	if s == nil {
		return nil, ErrNotRecording
	}
	defer s.mu.Unlock()

	if err := s.device.Push(chunk); err != nil {
		return nil, err
	}
	return r.info(s), nil
}

func (r *SessionRegistry) Pause(consultationID uuid.UUID) (*SessionInfo, error) {
	s := r.lookup(consultationID)
	if s == nil {
		return nil, ErrNotRecording
	}
	defer s.mu.Unlock()

	if err := s.recorder.Pause(); err != nil {
		return nil, err
	}
	return r.info(s), nil
}

func (r *SessionRegistry) Resume(consultationID uuid.UUID) (*SessionInfo, error) {
	s := r.lookup(consultationID)
	if s == nil {
		return nil, ErrNotRecording
	}
	defer s.mu.Unlock()

	if err := s.recorder.Resume(); err != nil {
		return nil, err
	}
	return r.info(s), nil
}

// Finish stops the session and hands back its audio
func (r *SessionRegistry) Finish(consultationID uuid.UUID) (*entity.Audio, error) {
	s := r.lookup(consultationID)
	if s == nil {
		return nil, ErrNotRecording
	}
	defer s.mu.Unlock()

	audio, err := s.recorder.Stop()
	if err != nil {
		return nil, err
	}
	s.recorder = nil
	s.device = nil

	r.log.Infof("Recording session finished: consultation=%s, bytes=%d, duration=%v", consultationID, audio.Size(), audio.Duration)
	return audio, nil
}

// Discard drops the session of a consultation, if any
func (r *SessionRegistry) Discard(consultationID uuid.UUID) {
	s := r.lookup(consultationID)
	if s == nil {
		return
	}
	defer s.mu.Unlock()
	r.discard(consultationID, s)
}

// acquire returns the locked session for id, creating it if needed
func (r *SessionRegistry) acquire(id uuid.UUID) *session {
	for {
		v, _ := r.sessions.LoadOrStore(id, &session{})
		s := v.(*session)
		s.mu.Lock()
		if !s.removed {
			s.lastUsed.Store(time.Now().UnixNano())
			return s
		}
		s.mu.Unlock()
	}
}

// lookup returns the locked session for id when it is recording, or nil
func (r *SessionRegistry) lookup(id uuid.UUID) *session {
	v, ok := r.sessions.Load(id)
	if !ok {
		return nil
	}
	s := v.(*session)
	s.mu.Lock()
	if s.removed || s.recorder == nil {
		s.mu.Unlock()
		return nil
	}
	s.lastUsed.Store(time.Now().UnixNano())
	return s
}

func (r *SessionRegistry) info(s *session) *SessionInfo {
	return &SessionInfo{
		State:       s.recorder.State(),
		Elapsed:     s.recorder.Elapsed(),
		MimeType:    s.device.mimeType,
		Constraints: s.device.Constraints(),
	}
}

// discard drops the session. Caller holds s.mu.
func (r *SessionRegistry) discard(id uuid.UUID, s *session) {
	if s.recorder != nil {
		s.recorder.Discard()
		s.recorder = nil
		s.device = nil
	}
	s.removed = true
	r.sessions.Delete(id)
}

func (r *SessionRegistry) reapLoop() {
	defer r.wg.Done()

	ticker := time.NewTicker(reapInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopChan:
			return
		case <-ticker.C:
			r.reapIdle(time.Now())
		}
	}
}

// reapIdle discards sessions unused since before now-idleTimeout. Sessions
// busy with a request are skipped.
func (r *SessionRegistry) reapIdle(now time.Time) int {
	cutoff := now.Add(-r.idleTimeout).UnixNano()
	var reaped int

	r.sessions.Range(func(key, value any) bool {
		s := value.(*session)
		if s.mu.TryLock() {
			if s.lastUsed.Load() < cutoff {
				r.discard(key.(uuid.UUID), s)
				reaped++
			}
			s.mu.Unlock()
		}
		return true
	})

	if reaped > 0 {
		r.log.Infof("Discarded %d idle recording sessions", reaped)
	}
	return reaped
}
