package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/yashdave182/medinote/internal/delivery/http/middleware"
	"github.com/yashdave182/medinote/internal/domain/entity"
	"github.com/yashdave182/medinote/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// loadConsultation returns the consultation of the signed-in practitioner.
// Another practitioner's consultation is reported as not found.
func loadConsultation(ctx context.Context, log *logrus.Logger, repo repository.ConsultationRepository, id uuid.UUID) (*entity.Consultation, error) {
	practitionerID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}

	consultation, err := repo.FindByID(ctx, practitionerID, id)
	if err != nil {
		log.Warnf("Failed to find consultation %s: %+v", id, err)
		return nil, err
	}
	if consultation == nil {
		return nil, ErrConsultationNotFound
	}
	return consultation, nil
}

// requireInProgress guards every write that only an open consultation accepts
func requireInProgress(c *entity.Consultation) error {
	if !c.IsInProgress() {
		return ErrConsultationClosed
	}
	return nil
}

// publishEvent sends a lifecycle event; failures are only logged
func publishEvent(ctx context.Context, log *logrus.Logger, events EventPublisher, eventType string, c *entity.Consultation) {
	if events == nil {
		return
	}

	event := entity.LifecycleEvent{
		Type:           eventType,
		ConsultationID: c.ID,
		PractitionerID: c.PractitionerID,
		OccurredAt:     time.Now().UTC(),
	}
	if err := events.Publish(ctx, event); err != nil {
		log.Warnf("Failed to publish %s event for consultation %s: %+v", eventType, c.ID, err)
	}
}

// TranscriptURL is where the raw transcript of a consultation can be downloaded
func TranscriptURL(consultationID uuid.UUID) string {
	return fmt.Sprintf("/api/v1/consultations/%s/note/transcript", consultationID)
}
