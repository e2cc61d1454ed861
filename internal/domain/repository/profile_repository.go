package repository

import (
	"context"

	"github.com/yashdave182/medinote/internal/domain/entity"

	"github.com/google/uuid"
)

type ProfileRepository interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.Profile, error)
	Update(ctx context.Context, profile *entity.Profile) error
}
