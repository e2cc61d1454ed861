package converter

import (
	"github.com/yashdave182/medinote/internal/delivery/dto"
	"github.com/yashdave182/medinote/internal/domain/entity"
	"github.com/yashdave182/medinote/internal/recorder"

	"github.com/google/uuid"
)

func RecordingToResponse(rec *entity.AudioRecording) *dto.RecordingResponse {
	if rec == nil {
		return nil
	}

	return &dto.RecordingResponse{
		ID:                  rec.ID,
		ConsultationID:      rec.ConsultationID,
		MimeType:            rec.MimeType,
		SizeBytes:           rec.SizeBytes,
		DurationSeconds:     rec.DurationSeconds,
		TranscriptionStatus: string(rec.TranscriptionStatus),
		ExpiresAt:           rec.ExpiresAt,
		CreatedAt:           rec.CreatedAt,
	}
}

func RecordingsToResponses(recs []entity.AudioRecording) []dto.RecordingResponse {
	responses := make([]dto.RecordingResponse, len(recs))
	for i := range recs {
		responses[i] = *RecordingToResponse(&recs[i])
	}
	return responses
}

func SessionToResponse(consultationID uuid.UUID, info *recorder.SessionInfo) *dto.RecordingSessionResponse {
	return &dto.RecordingSessionResponse{
		ConsultationID: consultationID,
		State:          info.State.String(),
		ElapsedSeconds: int(info.Elapsed.Seconds()),
		MimeType:       info.MimeType,
		Constraints: dto.ConstraintsResponse{
			EchoCancellation: info.Constraints.EchoCancellation,
			NoiseSuppression: info.Constraints.NoiseSuppression,
		},
	}
}
