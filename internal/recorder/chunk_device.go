package recorder

import (
	"bytes"
	"context"
	"errors"
	"sync"
)

var ErrStreamClosed = errors.New("capture stream is closed")

// ChunkDevice is fed by a remote capturer: the browser records with the
// requested constraints and posts its chunks, which land in the open stream.
type ChunkDevice struct {
	mimeType string
	denied   bool

	mu          sync.Mutex
	stream      *chunkStream
	constraints Constraints
}

func NewChunkDevice(mimeType string) *ChunkDevice {
	if mimeType == "" {
		mimeType = DefaultMimeType
	}
	return &ChunkDevice{mimeType: mimeType}
}

func (d *ChunkDevice) Open(_ context.Context, constraints Constraints) (Stream, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.denied {
		return nil, ErrDeviceAccessDenied
	}
	if d.stream != nil && !d.stream.isClosed() {
		return nil, ErrAlreadyRecording
	}

	d.constraints = constraints
	d.stream = &chunkStream{mimeType: d.mimeType}
	return d.stream, nil
}

// Deny records that the remote capturer was refused microphone access;
// every later Open fails with ErrDeviceAccessDenied.
func (d *ChunkDevice) Deny() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.denied = true
}

// Push hands a captured chunk to the open stream
func (d *ChunkDevice) Push(chunk []byte) error {
	d.mu.Lock()
	stream := d.stream
	d.mu.Unlock()

	if stream == nil {
		return ErrNotRecording
	}
	return stream.push(chunk)
}

// Constraints returns the settings requested by the last Open
func (d *ChunkDevice) Constraints() Constraints {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.constraints
}

type chunkStream struct {
	mimeType string

	mu      sync.Mutex
	pending bytes.Buffer
	closed  bool
}

func (s *chunkStream) push(chunk []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStreamClosed
	}
	s.pending.Write(chunk)
	return nil
}

func (s *chunkStream) Read() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending.Len() == 0 {
		return nil, nil
	}
	out := bytes.Clone(s.pending.Bytes())
	s.pending.Reset()
	return out, nil
}

func (s *chunkStream) MimeType() string {
	return s.mimeType
}

func (s *chunkStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.pending.Reset()
	return nil
}

func (s *chunkStream) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
