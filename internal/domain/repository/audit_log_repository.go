package repository

import (
	"context"

	"github.com/yashdave182/medinote/internal/domain/entity"

	"github.com/google/uuid"
)

type AuditLogRepository interface {
	Create(ctx context.Context, log *entity.AuditLog) error
	FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.AuditLog, int64, error)
}
