package entity

import (
	"time"

	"github.com/google/uuid"
)

// TranscriptionStatus tracks the vendor transcription of one recording
type TranscriptionStatus string

const (
	TranscriptionStatusPending    TranscriptionStatus = "pending"
	TranscriptionStatusProcessing TranscriptionStatus = "processing"
	TranscriptionStatusCompleted  TranscriptionStatus = "completed"
	TranscriptionStatusFailed     TranscriptionStatus = "failed"
)

// AudioRecording is the metadata row of a stored recording. Rows are
// time-boxed: the cleanup job purges them once ExpiresAt has passed.
type AudioRecording struct {
	ID                  uuid.UUID           `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ConsultationID      uuid.UUID           `gorm:"type:uuid;not null;index" json:"consultation_id"`
	StoragePath         string              `gorm:"type:text;not null;default:''" json:"storage_path"`
	MimeType            string              `gorm:"type:varchar(100)" json:"mime_type"`
	SizeBytes           int64               `gorm:"not null;default:0" json:"size_bytes"`
	DurationSeconds     int                 `gorm:"not null;default:0" json:"duration_seconds"`
	TranscriptionStatus TranscriptionStatus `gorm:"type:transcription_status;not null;default:'pending'" json:"transcription_status"`
	ExpiresAt           time.Time           `gorm:"not null;index" json:"expires_at"`
	CreatedAt           time.Time           `gorm:"autoCreateTime" json:"created_at"`
}

func (AudioRecording) TableName() string {
	return "audio_recordings"
}

// IsExpired reports whether the row is past its retention window
func (r *AudioRecording) IsExpired(now time.Time) bool {
	return !r.ExpiresAt.After(now)
}
