package recorder

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"time"

	"github.com/yashdave182/medinote/internal/domain/entity"

	"github.com/sirupsen/logrus"
)

var (
	ErrDeviceAccessDenied = errors.New("microphone access denied")
	ErrAlreadyRecording   = errors.New("recording already in progress")
	ErrNotRecording       = errors.New("no recording in progress")
	ErrNotPaused          = errors.New("recording is not paused")
)

const DefaultMimeType = "audio/webm"

// Constraints are the capture settings requested from the device
type Constraints struct {
	EchoCancellation bool `json:"echo_cancellation"`
	NoiseSuppression bool `json:"noise_suppression"`
}

// DefaultConstraints is what every recording session asks for
var DefaultConstraints = Constraints{EchoCancellation: true, NoiseSuppression: true}

// Device is the audio capture facility. Open returns ErrDeviceAccessDenied
// when the user refuses microphone access.
type Device interface {
	Open(ctx context.Context, constraints Constraints) (Stream, error)
}

// Stream is an open capture. Read returns whatever was captured since the
// previous call and must not block.
type Stream interface {
	Read() ([]byte, error)
	MimeType() string
	Close() error
}

type State int

const (
	StateIdle State = iota
	StateRecording
	StatePaused
)

func (s State) String() string {
	switch s {
	case StateRecording:
		return "recording"
	case StatePaused:
		return "paused"
	default:
		return "idle"
	}
}

// Recorder captures one session at a time. Chunks are pulled from the stream
// every interval and buffered until Stop; the buffer never outlives the
// session.
type Recorder struct {
	device   Device
	interval time.Duration
	log      *logrus.Logger
	now      func() time.Time

	mu           sync.Mutex
	state        State
	stream       Stream
	chunks       [][]byte
	elapsed      time.Duration
	segmentStart time.Time
	stopLoop     chan struct{}
	wg           sync.WaitGroup
}

func NewRecorder(device Device, interval time.Duration, log *logrus.Logger) *Recorder {
	if interval <= 0 {
		interval = time.Second
	}
	return &Recorder{
		device:   device,
		interval: interval,
		log:      log,
		now:      time.Now,
	}
}

// Start opens the device and begins buffering. On any open error the
// recorder stays idle.
func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateIdle {
		return ErrAlreadyRecording
	}

	stream, err := r.device.Open(ctx, DefaultConstraints)
	if err != nil {
		return err
	}

	r.stream = stream
	r.chunks = nil
	r.elapsed = 0
	r.segmentStart = r.now()
	r.state = StateRecording
	r.stopLoop = make(chan struct{})

	r.wg.Add(1)
	go r.captureLoop(r.stopLoop)

	return nil
}

// Pause keeps everything captured so far and ignores audio until Resume
func (r *Recorder) Pause() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateRecording {
		return ErrNotRecording
	}

	r.drain(true)
	r.elapsed += r.now().Sub(r.segmentStart)
	r.state = StatePaused
	return nil
}

func (r *Recorder) Resume() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StatePaused {
		return ErrNotPaused
	}

	// audio captured while paused is dropped
	r.drain(false)
	r.segmentStart = r.now()
	r.state = StateRecording
	return nil
}

// Stop ends the session and returns the assembled recording
func (r *Recorder) Stop() (*entity.Audio, error) {
	r.mu.Lock()
	if r.state == StateIdle || r.stopLoop == nil {
		r.mu.Unlock()
		return nil, ErrNotRecording
	}
	close(r.stopLoop)
	r.stopLoop = nil
	r.mu.Unlock()

	r.wg.Wait()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.drain(r.state == StateRecording)
	if r.state == StateRecording {
		r.elapsed += r.now().Sub(r.segmentStart)
	}

	audio := &entity.Audio{
		Data:     bytes.Join(r.chunks, nil),
		MimeType: r.stream.MimeType(),
		Duration: r.elapsed,
	}
	if audio.MimeType == "" {
		audio.MimeType = DefaultMimeType
	}

	if err := r.stream.Close(); err != nil {
		r.log.Warnf("Failed to close capture stream: %+v", err)
	}
	r.reset()

	return audio, nil
}

// Discard ends the session without producing audio
func (r *Recorder) Discard() {
	if _, err := r.Stop(); err != nil && !errors.Is(err, ErrNotRecording) {
		r.log.Warnf("Failed to discard recording: %+v", err)
	}
}

// Elapsed is the recorded time so far, excluding pauses
func (r *Recorder) Elapsed() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == StateRecording {
		return r.elapsed + r.now().Sub(r.segmentStart)
	}
	return r.elapsed
}

func (r *Recorder) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Recorder) captureLoop(stop <-chan struct{}) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			r.capture()
		}
	}
}

func (r *Recorder) capture() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == StateIdle {
		return
	}
	r.drain(r.state == StateRecording)
}

// drain reads pending audio from the stream. Caller holds r.mu.
func (r *Recorder) drain(keep bool) {
	data, err := r.stream.Read()
	if err != nil {
		r.log.Warnf("Failed to read capture stream: %+v", err)
		return
	}
	if keep && len(data) > 0 {
		r.chunks = append(r.chunks, data)
	}
}

func (r *Recorder) reset() {
	r.state = StateIdle
	r.stream = nil
	r.chunks = nil
	r.elapsed = 0
}
