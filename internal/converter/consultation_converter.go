package converter

import (
	"github.com/yashdave182/medinote/internal/delivery/dto"
	"github.com/yashdave182/medinote/internal/domain/entity"
)

// ConsultationToResponse converts a Consultation entity to ConsultationResponse DTO.
// The note is included when preloaded.
func ConsultationToResponse(c *entity.Consultation) *dto.ConsultationResponse {
	if c == nil {
		return nil
	}

	return &dto.ConsultationResponse{
		ID:               c.ID,
		PatientName:      c.PatientName,
		PatientID:        c.PatientID,
		ConsultationDate: c.ConsultationDate,
		Status:           string(c.Status),
		DurationSeconds:  c.DurationSeconds,
		Note:             NoteToResponse(c.Note),
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}
}

func ConsultationsToResponses(consultations []entity.Consultation) []dto.ConsultationResponse {
	responses := make([]dto.ConsultationResponse, len(consultations))
	for i := range consultations {
		responses[i] = *ConsultationToResponse(&consultations[i])
	}
	return responses
}

func StatsToResponse(stats *entity.ConsultationStats) *dto.DashboardStatsResponse {
	return &dto.DashboardStatsResponse{
		Total:      stats.Total,
		InProgress: stats.InProgress,
		Completed:  stats.Completed,
		Cancelled:  stats.Cancelled,
	}
}
