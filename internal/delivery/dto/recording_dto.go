package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type StartRecordingRequest struct {
	MimeType string `json:"mime_type" validate:"omitempty,max=100"`
	// PermissionDenied reports that the browser refused microphone access
	PermissionDenied bool `json:"permission_denied"`
}

// TranscribeRequest is the proxy transcription payload; audio is base64 so it
// survives JSON transport
type TranscribeRequest struct {
	Audio    string `json:"audio" validate:"required,base64"`
	MimeType string `json:"mime_type" validate:"omitempty,max=100"`
}

// Response DTOs

type ConstraintsResponse struct {
	EchoCancellation bool `json:"echo_cancellation"`
	NoiseSuppression bool `json:"noise_suppression"`
}

type RecordingSessionResponse struct {
	ConsultationID uuid.UUID           `json:"consultation_id"`
	State          string              `json:"state"`
	ElapsedSeconds int                 `json:"elapsed_seconds"`
	MimeType       string              `json:"mime_type"`
	Constraints    ConstraintsResponse `json:"constraints"`
}

type RecordingResponse struct {
	ID                  uuid.UUID `json:"id"`
	ConsultationID      uuid.UUID `json:"consultation_id"`
	MimeType            string    `json:"mime_type"`
	SizeBytes           int64     `json:"size_bytes"`
	DurationSeconds     int       `json:"duration_seconds"`
	TranscriptionStatus string    `json:"transcription_status"`
	ExpiresAt           time.Time `json:"expires_at"`
	CreatedAt           time.Time `json:"created_at"`
}

// ProcessedRecordingResponse is the outcome of the recording pipeline
type ProcessedRecordingResponse struct {
	Recording     *RecordingResponse `json:"recording"`
	Note          *NoteResponse      `json:"note"`
	TranscriptURL string             `json:"transcript_url"`
}

type TranscribeResponse struct {
	Text string `json:"text"`
}
