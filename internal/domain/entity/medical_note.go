package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	// TranscriptionFailedTranscript is stored as raw transcript when speech
	// recognition produced nothing
	TranscriptionFailedTranscript = "Transcription failed"

	// TranscriptionFailedPlaceholder replaces the subjective section when
	// speech recognition produced nothing, so the note is still created
	TranscriptionFailedPlaceholder = "Transcription failed. Please review the recording and document the consultation manually."
)

// MedicalEntities is the structured entity map extracted from a transcript
type MedicalEntities struct {
	Symptoms    []string `json:"symptoms"`
	Medications []string `json:"medications"`
	Conditions  []string `json:"conditions"`
	Durations   []string `json:"durations"`
	Severity    []string `json:"severity"`
}

// SOAPFields holds the four editable sections of a note
type SOAPFields struct {
	Subjective string `json:"subjective"`
	Objective  string `json:"objective"`
	Assessment string `json:"assessment"`
	Plan       string `json:"plan"`
}

// SOAPNote is a generated draft: the four sections plus extracted entities
type SOAPNote struct {
	SOAPFields
	Entities MedicalEntities `json:"entities"`
}

// MedicalNote is the single note attached to a consultation.
//
// It changes only through two transitions:
//   - ApplyTranscript: machine write on transcript arrival, never marks reviewed
//   - Review: explicit practitioner save, the only path that sets Reviewed
type MedicalNote struct {
	ID                uuid.UUID                           `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ConsultationID    uuid.UUID                           `gorm:"type:uuid;uniqueIndex;not null" json:"consultation_id"`
	Subjective        string                              `gorm:"type:text;not null;default:''" json:"subjective"`
	Objective         string                              `gorm:"type:text;not null;default:''" json:"objective"`
	Assessment        string                              `gorm:"type:text;not null;default:''" json:"assessment"`
	Plan              string                              `gorm:"type:text;not null;default:''" json:"plan"`
	RawTranscript     string                              `gorm:"type:text;not null;default:''" json:"raw_transcript"`
	ExtractedEntities datatypes.JSONType[MedicalEntities] `gorm:"type:jsonb" json:"extracted_entities"`
	Reviewed          bool                                `gorm:"not null;default:false" json:"reviewed"`
	CreatedAt         time.Time                           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time                           `gorm:"autoUpdateTime" json:"updated_at"`
}

func (MedicalNote) TableName() string {
	return "medical_notes"
}

// NewTranscribedNote builds the note written when a transcript arrives
func NewTranscribedNote(consultationID uuid.UUID, transcript string) *MedicalNote {
	note := &MedicalNote{ConsultationID: consultationID}
	note.ApplyTranscript(transcript)
	return note
}

// ApplyTranscript places the transcript verbatim into the subjective section.
// An empty transcript yields the fixed failure placeholder. Any earlier review
// is void because the content is machine-written again.
func (n *MedicalNote) ApplyTranscript(transcript string) {
	if strings.TrimSpace(transcript) == "" {
		n.Subjective = TranscriptionFailedPlaceholder
		n.RawTranscript = TranscriptionFailedTranscript
	} else {
		n.Subjective = transcript
		n.RawTranscript = transcript
	}
	n.Objective = ""
	n.Assessment = ""
	n.Plan = ""
	n.ExtractedEntities = datatypes.NewJSONType(MedicalEntities{})
	n.Reviewed = false
}

// ApplyDraft copies a generated SOAP draft into the note. The draft still
// needs review.
func (n *MedicalNote) ApplyDraft(draft *SOAPNote) {
	n.Subjective = draft.Subjective
	n.Objective = draft.Objective
	n.Assessment = draft.Assessment
	n.Plan = draft.Plan
	n.ExtractedEntities = datatypes.NewJSONType(draft.Entities)
	n.Reviewed = false
}

// Review stores the practitioner's edits and marks the note reviewed.
// RawTranscript is left untouched.
func (n *MedicalNote) Review(fields SOAPFields) {
	n.Subjective = fields.Subjective
	n.Objective = fields.Objective
	n.Assessment = fields.Assessment
	n.Plan = fields.Plan
	n.Reviewed = true
}
