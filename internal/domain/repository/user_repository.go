package repository

import (
	"context"

	"github.com/yashdave182/medinote/internal/domain/entity"

	"github.com/google/uuid"
)

type UserRepository interface {
	// CreateWithProfile inserts the user and its practitioner profile atomically
	CreateWithProfile(ctx context.Context, user *entity.User, profile *entity.Profile) error
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
}
