package usecase

import (
	"context"
	"encoding/base64"
	"strings"
	"time"

	"github.com/yashdave182/medinote/internal/converter"
	"github.com/yashdave182/medinote/internal/delivery/dto"
	"github.com/yashdave182/medinote/internal/domain/entity"
	"github.com/yashdave182/medinote/internal/domain/repository"
	"github.com/yashdave182/medinote/internal/recorder"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type RecordingUsecase interface {
	StartRecording(ctx context.Context, consultationID uuid.UUID, req *dto.StartRecordingRequest) (*dto.RecordingSessionResponse, error)
	AppendChunk(ctx context.Context, consultationID uuid.UUID, chunk []byte) (*dto.RecordingSessionResponse, error)
	PauseRecording(ctx context.Context, consultationID uuid.UUID) (*dto.RecordingSessionResponse, error)
	ResumeRecording(ctx context.Context, consultationID uuid.UUID) (*dto.RecordingSessionResponse, error)
	StopRecording(ctx context.Context, consultationID uuid.UUID) (*dto.ProcessedRecordingResponse, error)
	UploadRecording(ctx context.Context, consultationID uuid.UUID, audio *entity.Audio) (*dto.ProcessedRecordingResponse, error)
	ListRecordings(ctx context.Context, consultationID uuid.UUID) ([]dto.RecordingResponse, error)
	Transcribe(ctx context.Context, req *dto.TranscribeRequest) (*dto.TranscribeResponse, error)
}

type RecordingOptions struct {
	Retention      time.Duration
	MaxUploadBytes int64
}

type recordingUsecase struct {
	log              *logrus.Logger
	consultationRepo repository.ConsultationRepository
	recordingRepo    repository.AudioRecordingRepository
	noteUsecase      NoteUsecase
	sessions         RecordingSessions
	store            AudioStore
	transcriber      Transcriber
	opts             RecordingOptions
	now              func() time.Time
}

// NewRecordingUsecase wires the recording pipeline. store may be nil, in
// which case audio is transcribed but not kept.
func NewRecordingUsecase(
	log *logrus.Logger,
	consultationRepo repository.ConsultationRepository,
	recordingRepo repository.AudioRecordingRepository,
	noteUsecase NoteUsecase,
	sessions RecordingSessions,
	store AudioStore,
	transcriber Transcriber,
	opts RecordingOptions,
) RecordingUsecase {
	return &recordingUsecase{
		log:              log,
		consultationRepo: consultationRepo,
		recordingRepo:    recordingRepo,
		noteUsecase:      noteUsecase,
		sessions:         sessions,
		store:            store,
		transcriber:      transcriber,
		opts:             opts,
		now:              time.Now,
	}
}

func (u *recordingUsecase) StartRecording(ctx context.Context, consultationID uuid.UUID, req *dto.StartRecordingRequest) (*dto.RecordingSessionResponse, error) {
	if _, err := u.openConsultation(ctx, consultationID); err != nil {
		return nil, err
	}

	info, err := u.sessions.Start(ctx, consultationID, recorder.StartOptions{
		MimeType:         req.MimeType,
		PermissionDenied: req.PermissionDenied,
	})
	if err != nil {
		return nil, err
	}
	return converter.SessionToResponse(consultationID, info), nil
}

func (u *recordingUsecase) AppendChunk(ctx context.Context, consultationID uuid.UUID, chunk []byte) (*dto.RecordingSessionResponse, error) {
	if _, err := u.openConsultation(ctx, consultationID); err != nil {
		return nil, err
	}

	info, err := u.sessions.Append(consultationID, chunk)
	if err != nil {
		return nil, err
	}
	return converter.SessionToResponse(consultationID, info), nil
}

func (u *recordingUsecase) PauseRecording(ctx context.Context, consultationID uuid.UUID) (*dto.RecordingSessionResponse, error) {
	if _, err := u.openConsultation(ctx, consultationID); err != nil {
		return nil, err
	}

	info, err := u.sessions.Pause(consultationID)
	if err != nil {
		return nil, err
	}
	return converter.SessionToResponse(consultationID, info), nil
}

func (u *recordingUsecase) ResumeRecording(ctx context.Context, consultationID uuid.UUID) (*dto.RecordingSessionResponse, error) {
	if _, err := u.openConsultation(ctx, consultationID); err != nil {
		return nil, err
	}

	info, err := u.sessions.Resume(consultationID)
	if err != nil {
		return nil, err
	}
	return converter.SessionToResponse(consultationID, info), nil
}

// StopRecording finalizes the live session and runs its audio through the
// pipeline
func (u *recordingUsecase) StopRecording(ctx context.Context, consultationID uuid.UUID) (*dto.ProcessedRecordingResponse, error) {
	consultation, err := u.openConsultation(ctx, consultationID)
	if err != nil {
		if err == ErrConsultationClosed {
			u.sessions.Discard(consultationID)
		}
		return nil, err
	}

	audio, err := u.sessions.Finish(consultationID)
	if err != nil {
		return nil, err
	}
	return u.process(ctx, consultation, audio)
}

// UploadRecording runs an already finalized recording through the pipeline
func (u *recordingUsecase) UploadRecording(ctx context.Context, consultationID uuid.UUID, audio *entity.Audio) (*dto.ProcessedRecordingResponse, error) {
	if u.opts.MaxUploadBytes > 0 && int64(audio.Size()) > u.opts.MaxUploadBytes {
		return nil, ErrAudioTooLarge
	}

	consultation, err := u.openConsultation(ctx, consultationID)
	if err != nil {
		return nil, err
	}
	return u.process(ctx, consultation, audio)
}

func (u *recordingUsecase) ListRecordings(ctx context.Context, consultationID uuid.UUID) ([]dto.RecordingResponse, error) {
	if _, err := loadConsultation(ctx, u.log, u.consultationRepo, consultationID); err != nil {
		return nil, err
	}

	recordings, err := u.recordingRepo.FindByConsultationID(ctx, consultationID)
	if err != nil {
		u.log.Warnf("Failed to list recordings of consultation %s: %+v", consultationID, err)
		return nil, err
	}
	return converter.RecordingsToResponses(recordings), nil
}

// Transcribe is the stateless proxy: decode, forward to the vendor, return
// the text. Vendor errors are returned as is.
func (u *recordingUsecase) Transcribe(ctx context.Context, req *dto.TranscribeRequest) (*dto.TranscribeResponse, error) {
	data, err := base64.StdEncoding.DecodeString(req.Audio)
	if err != nil {
		return nil, ErrInvalidAudio
	}
	if len(data) == 0 {
		return nil, ErrEmptyAudio
	}
	if u.opts.MaxUploadBytes > 0 && int64(len(data)) > u.opts.MaxUploadBytes {
		return nil, ErrAudioTooLarge
	}

	text, err := u.transcriber.Transcribe(ctx, &entity.Audio{Data: data, MimeType: req.MimeType})
	if err != nil {
		u.log.Warnf("Failed to transcribe audio: %+v", err)
		return nil, err
	}
	return &dto.TranscribeResponse{Text: text}, nil
}

// process stores the audio, records its metadata, transcribes it and writes
// the transcript into the note. A transcription failure never aborts it: the
// note then carries the failure placeholder.
func (u *recordingUsecase) process(ctx context.Context, consultation *entity.Consultation, audio *entity.Audio) (*dto.ProcessedRecordingResponse, error) {
	if audio.Size() == 0 {
		return nil, ErrEmptyAudio
	}

	storagePath := u.storeAudio(ctx, consultation, audio)

	recording := &entity.AudioRecording{
		ConsultationID:      consultation.ID,
		StoragePath:         storagePath,
		MimeType:            audio.MimeType,
		SizeBytes:           int64(audio.Size()),
		DurationSeconds:     durationSeconds(audio.Duration),
		TranscriptionStatus: entity.TranscriptionStatusProcessing,
		ExpiresAt:           u.now().UTC().Add(u.opts.Retention),
	}
	if err := u.recordingRepo.Create(ctx, recording); err != nil {
		u.log.Warnf("Failed to create recording of consultation %s: %+v", consultation.ID, err)
		// without a row the cleanup job can never reach the object
		u.discardAudio(ctx, storagePath)
		return nil, err
	}

	text, err := u.transcriber.Transcribe(ctx, audio)
	if err != nil {
		u.log.Warnf("Failed to transcribe recording %s: %+v", recording.ID, err)
		text = ""
	}

	result, err := u.noteUsecase.HandleTranscriptionComplete(ctx, consultation.ID, text, audio)
	if err != nil {
		u.setTranscriptionStatus(ctx, recording, entity.TranscriptionStatusFailed)
		return nil, err
	}

	status := entity.TranscriptionStatusCompleted
	if strings.TrimSpace(text) == "" {
		status = entity.TranscriptionStatusFailed
	}
	u.setTranscriptionStatus(ctx, recording, status)

	if seconds := recording.DurationSeconds; seconds > 0 {
		if err := u.consultationRepo.AddDuration(ctx, consultation.ID, seconds); err != nil {
			u.log.Warnf("Failed to add duration to consultation %s: %+v", consultation.ID, err)
		}
	}

	return &dto.ProcessedRecordingResponse{
		Recording:     converter.RecordingToResponse(recording),
		Note:          result.Note,
		TranscriptURL: result.TranscriptURL,
	}, nil
}

// storeAudio returns the object key, or "" when the audio was not kept
func (u *recordingUsecase) storeAudio(ctx context.Context, consultation *entity.Consultation, audio *entity.Audio) string {
	if u.store == nil {
		return ""
	}

	key := u.store.ObjectKey(consultation.PractitionerID, consultation.ID, audio)
	if err := u.store.Put(ctx, key, audio); err != nil {
		u.log.Warnf("Failed to store audio of consultation %s: %+v", consultation.ID, err)
		return ""
	}
	return key
}

func (u *recordingUsecase) discardAudio(ctx context.Context, key string) {
	if u.store == nil || key == "" {
		return
	}
	if err := u.store.Delete(ctx, key); err != nil {
		u.log.Warnf("Failed to delete orphaned audio object %s: %+v", key, err)
	}
}

func (u *recordingUsecase) setTranscriptionStatus(ctx context.Context, recording *entity.AudioRecording, status entity.TranscriptionStatus) {
	if err := u.recordingRepo.UpdateTranscriptionStatus(ctx, recording.ID, status); err != nil {
		u.log.Warnf("Failed to update transcription status of recording %s: %+v", recording.ID, err)
		return
	}
	recording.TranscriptionStatus = status
}

func (u *recordingUsecase) openConsultation(ctx context.Context, consultationID uuid.UUID) (*entity.Consultation, error) {
	consultation, err := loadConsultation(ctx, u.log, u.consultationRepo, consultationID)
	if err != nil {
		return nil, err
	}
	if err := requireInProgress(consultation); err != nil {
		return nil, err
	}
	return consultation, nil
}

func durationSeconds(d time.Duration) int {
	return int(d.Round(time.Second) / time.Second)
}
