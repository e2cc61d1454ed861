package entity

import (
	"time"

	"github.com/google/uuid"
)

// Lifecycle event types
const (
	EventConsultationCreated   = "consultation.created"
	EventConsultationCompleted = "consultation.completed"
	EventConsultationCancelled = "consultation.cancelled"
	EventNoteTranscribed       = "note.transcribed"
	EventNoteReviewed          = "note.reviewed"
	EventNoteGenerated         = "note.generated"
)

// LifecycleEvent is published whenever a consultation or its note changes state
type LifecycleEvent struct {
	Type           string    `json:"type"`
	ConsultationID uuid.UUID `json:"consultation_id"`
	PractitionerID uuid.UUID `json:"practitioner_id"`
	OccurredAt     time.Time `json:"occurred_at"`
}
