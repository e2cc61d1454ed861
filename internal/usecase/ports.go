package usecase

import (
	"context"
	"time"

	"github.com/yashdave182/medinote/internal/domain/entity"
	"github.com/yashdave182/medinote/internal/recorder"

	"github.com/google/uuid"
)

// Transcriber turns recorded audio into text
type Transcriber interface {
	Transcribe(ctx context.Context, audio *entity.Audio) (string, error)
}

// NoteGenerator drafts a SOAP note from a transcript
type NoteGenerator interface {
	GenerateNote(ctx context.Context, transcript, patientName string) (*entity.SOAPNote, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event entity.LifecycleEvent) error
}

// AudioStore keeps the recorded audio objects
type AudioStore interface {
	ObjectKey(practitionerID, consultationID uuid.UUID, audio *entity.Audio) string
	Put(ctx context.Context, key string, audio *entity.Audio) error
	Delete(ctx context.Context, key string) error
}

// TokenStore is the allow-list of issued JWT ids
type TokenStore interface {
	Save(ctx context.Context, kind string, userID uuid.UUID, tokenID string, ttl time.Duration) error
	Exists(ctx context.Context, kind string, userID uuid.UUID, tokenID string) (bool, error)
	Revoke(ctx context.Context, kind string, userID uuid.UUID, tokenID string) error
}

// RecordingSessions holds the live recorder of each consultation
type RecordingSessions interface {
	Start(ctx context.Context, consultationID uuid.UUID, opts recorder.StartOptions) (*recorder.SessionInfo, error)
	Append(consultationID uuid.UUID, chunk []byte) (*recorder.SessionInfo, error)
	Pause(consultationID uuid.UUID) (*recorder.SessionInfo, error)
	Resume(consultationID uuid.UUID) (*recorder.SessionInfo, error)
	Finish(consultationID uuid.UUID) (*entity.Audio, error)
	Discard(consultationID uuid.UUID)
}
