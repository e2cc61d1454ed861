package usecase

import (
	"context"
	"fmt"

	"github.com/yashdave182/medinote/internal/converter"
	"github.com/yashdave182/medinote/internal/delivery/dto"
	"github.com/yashdave182/medinote/internal/domain/entity"
	"github.com/yashdave182/medinote/internal/domain/repository"
	"github.com/yashdave182/medinote/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type NoteUsecase interface {
	HandleTranscriptionComplete(ctx context.Context, consultationID uuid.UUID, text string, audio *entity.Audio) (*dto.TranscriptNoteResponse, error)
	GetNote(ctx context.Context, consultationID uuid.UUID) (*dto.NoteResponse, error)
	SaveNote(ctx context.Context, consultationID uuid.UUID, req *dto.SaveNoteRequest) (*dto.NoteResponse, error)
	GetTranscriptFile(ctx context.Context, consultationID uuid.UUID) (*dto.TranscriptFile, error)
	GenerateNote(ctx context.Context, consultationID uuid.UUID) (*dto.NoteResponse, error)
}

type noteUsecase struct {
	log              *logrus.Logger
	consultationRepo repository.ConsultationRepository
	noteRepo         repository.MedicalNoteRepository
	generator        NoteGenerator
	auditService     service.AuditService
	events           EventPublisher
}

func NewNoteUsecase(
	log *logrus.Logger,
	consultationRepo repository.ConsultationRepository,
	noteRepo repository.MedicalNoteRepository,
	generator NoteGenerator,
	auditService service.AuditService,
	events EventPublisher,
) NoteUsecase {
	return &noteUsecase{
		log:              log,
		consultationRepo: consultationRepo,
		noteRepo:         noteRepo,
		generator:        generator,
		auditService:     auditService,
		events:           events,
	}
}

// HandleTranscriptionComplete writes the transcript into the consultation's
// note. The text goes into the subjective section verbatim; an empty text
// produces the failure placeholder instead. A second transcript overwrites
// the first.
func (u *noteUsecase) HandleTranscriptionComplete(ctx context.Context, consultationID uuid.UUID, text string, audio *entity.Audio) (*dto.TranscriptNoteResponse, error) {
	consultation, err := loadConsultation(ctx, u.log, u.consultationRepo, consultationID)
	if err != nil {
		return nil, err
	}
	if err := requireInProgress(consultation); err != nil {
		return nil, err
	}

	note := entity.NewTranscribedNote(consultationID, text)
	if err := u.noteRepo.Upsert(ctx, note); err != nil {
		u.log.Warnf("Failed to upsert note of consultation %s: %+v", consultationID, err)
		return nil, err
	}

	failed := note.RawTranscript == entity.TranscriptionFailedTranscript
	if failed {
		u.log.Warnf("Transcription produced no text for consultation %s, placeholder note written", consultationID)
	} else {
		u.log.Infof("Transcript stored: consultation=%s, chars=%d", consultationID, len(text))
	}

	u.auditService.LogCreate(ctx, consultation.PractitionerID, entity.AuditActionNoteTranscribe, "medical_note", note.ID.String(), map[string]interface{}{
		"consultation_id":     consultationID.String(),
		"transcript_chars":    len(note.RawTranscript),
		"audio_bytes":         audio.Size(),
		"transcription_empty": failed,
	})
	publishEvent(ctx, u.log, u.events, entity.EventNoteTranscribed, consultation)

	return &dto.TranscriptNoteResponse{
		Note:          converter.NoteToResponse(note),
		TranscriptURL: TranscriptURL(consultationID),
	}, nil
}

func (u *noteUsecase) GetNote(ctx context.Context, consultationID uuid.UUID) (*dto.NoteResponse, error) {
	note, _, err := u.loadNote(ctx, consultationID)
	if err != nil {
		return nil, err
	}
	return converter.NoteToResponse(note), nil
}

// SaveNote stores the practitioner's edits. This is the only path that marks
// a note reviewed; the raw transcript is never touched.
func (u *noteUsecase) SaveNote(ctx context.Context, consultationID uuid.UUID, req *dto.SaveNoteRequest) (*dto.NoteResponse, error) {
	note, consultation, err := u.loadNote(ctx, consultationID)
	if err != nil {
		return nil, err
	}
	if err := requireInProgress(consultation); err != nil {
		return nil, err
	}

	wasReviewed := note.Reviewed
	note.Review(converter.SaveNoteRequestToFields(req))

	if err := u.noteRepo.SaveReview(ctx, note); err != nil {
		u.log.Warnf("Failed to save note of consultation %s: %+v", consultationID, err)
		return nil, err
	}

	u.log.Infof("Note reviewed: consultation=%s", consultationID)
	u.auditService.LogUpdate(ctx, consultation.PractitionerID, entity.AuditActionNoteReview, "medical_note", note.ID.String(), map[string]interface{}{"reviewed": wasReviewed}, map[string]interface{}{"reviewed": true})
	publishEvent(ctx, u.log, u.events, entity.EventNoteReviewed, consultation)

	return converter.NoteToResponse(note), nil
}

// GetTranscriptFile returns the raw transcript as a text file
func (u *noteUsecase) GetTranscriptFile(ctx context.Context, consultationID uuid.UUID) (*dto.TranscriptFile, error) {
	note, _, err := u.loadNote(ctx, consultationID)
	if err != nil {
		return nil, err
	}
	if note.RawTranscript == "" {
		return nil, ErrTranscriptEmpty
	}

	return &dto.TranscriptFile{
		Filename: fmt.Sprintf("transcript-%s.txt", consultationID),
		Content:  []byte(note.RawTranscript),
	}, nil
}

// GenerateNote replaces the note sections with a model-drafted SOAP note.
// The draft is unreviewed like any other machine write.
func (u *noteUsecase) GenerateNote(ctx context.Context, consultationID uuid.UUID) (*dto.NoteResponse, error) {
	note, consultation, err := u.loadNote(ctx, consultationID)
	if err != nil {
		return nil, err
	}
	if err := requireInProgress(consultation); err != nil {
		return nil, err
	}
	if note.RawTranscript == "" || note.RawTranscript == entity.TranscriptionFailedTranscript {
		return nil, ErrTranscriptEmpty
	}

	draft, err := u.generator.GenerateNote(ctx, note.RawTranscript, consultation.PatientName)
	if err != nil {
		u.log.Warnf("Failed to generate note for consultation %s: %+v", consultationID, err)
		return nil, err
	}

	note.ApplyDraft(draft)
	if err := u.noteRepo.Upsert(ctx, note); err != nil {
		u.log.Warnf("Failed to store generated note of consultation %s: %+v", consultationID, err)
		return nil, err
	}

	u.log.Infof("Note generated: consultation=%s", consultationID)
	u.auditService.LogCreate(ctx, consultation.PractitionerID, entity.AuditActionNoteGenerate, "medical_note", note.ID.String(), map[string]interface{}{
		"consultation_id": consultationID.String(),
	})
	publishEvent(ctx, u.log, u.events, entity.EventNoteGenerated, consultation)

	return converter.NoteToResponse(note), nil
}

func (u *noteUsecase) loadNote(ctx context.Context, consultationID uuid.UUID) (*entity.MedicalNote, *entity.Consultation, error) {
	consultation, err := loadConsultation(ctx, u.log, u.consultationRepo, consultationID)
	if err != nil {
		return nil, nil, err
	}

	note := consultation.Note
	if note == nil {
		note, err = u.noteRepo.FindByConsultationID(ctx, consultationID)
		if err != nil {
			u.log.Warnf("Failed to find note of consultation %s: %+v", consultationID, err)
			return nil, nil, err
		}
	}
	if note == nil {
		return nil, nil, ErrNoteNotFound
	}
	return note, consultation, nil
}
