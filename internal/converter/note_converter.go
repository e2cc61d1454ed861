package converter

import (
	"github.com/yashdave182/medinote/internal/delivery/dto"
	"github.com/yashdave182/medinote/internal/domain/entity"
)

func NoteToResponse(note *entity.MedicalNote) *dto.NoteResponse {
	if note == nil {
		return nil
	}

	entities := note.ExtractedEntities.Data()
	return &dto.NoteResponse{
		ID:             note.ID,
		ConsultationID: note.ConsultationID,
		Subjective:     note.Subjective,
		Objective:      note.Objective,
		Assessment:     note.Assessment,
		Plan:           note.Plan,
		RawTranscript:  note.RawTranscript,
		Entities: dto.EntitiesResponse{
			Symptoms:    nonNil(entities.Symptoms),
			Medications: nonNil(entities.Medications),
			Conditions:  nonNil(entities.Conditions),
			Durations:   nonNil(entities.Durations),
			Severity:    nonNil(entities.Severity),
		},
		Reviewed:  note.Reviewed,
		CreatedAt: note.CreatedAt,
		UpdatedAt: note.UpdatedAt,
	}
}

func SaveNoteRequestToFields(req *dto.SaveNoteRequest) entity.SOAPFields {
	return entity.SOAPFields{
		Subjective: req.Subjective,
		Objective:  req.Objective,
		Assessment: req.Assessment,
		Plan:       req.Plan,
	}
}

// nonNil keeps empty lists as [] in JSON
func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
