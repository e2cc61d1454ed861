package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

// TranscriptRequest carries a transcript produced on the client
type TranscriptRequest struct {
	Text string `json:"text"`
}

type SaveNoteRequest struct {
	Subjective string `json:"subjective" validate:"max=50000"`
	Objective  string `json:"objective" validate:"max=50000"`
	Assessment string `json:"assessment" validate:"max=50000"`
	Plan       string `json:"plan" validate:"max=50000"`
}

// Response DTOs

type EntitiesResponse struct {
	Symptoms    []string `json:"symptoms"`
	Medications []string `json:"medications"`
	Conditions  []string `json:"conditions"`
	Durations   []string `json:"durations"`
	Severity    []string `json:"severity"`
}

type NoteResponse struct {
	ID             uuid.UUID        `json:"id"`
	ConsultationID uuid.UUID        `json:"consultation_id"`
	Subjective     string           `json:"subjective"`
	Objective      string           `json:"objective"`
	Assessment     string           `json:"assessment"`
	Plan           string           `json:"plan"`
	RawTranscript  string           `json:"raw_transcript"`
	Entities       EntitiesResponse `json:"extracted_entities"`
	Reviewed       bool             `json:"reviewed"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// TranscriptNoteResponse is returned once a transcript has been written into
// the note
type TranscriptNoteResponse struct {
	Note          *NoteResponse `json:"note"`
	TranscriptURL string        `json:"transcript_url"`
}

// TranscriptFile is the downloadable raw transcript
type TranscriptFile struct {
	Filename string
	Content  []byte
}
