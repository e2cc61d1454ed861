package usecase

import (
	"context"

	"github.com/yashdave182/medinote/internal/converter"
	"github.com/yashdave182/medinote/internal/delivery/dto"
	"github.com/yashdave182/medinote/internal/delivery/http/middleware"
	"github.com/yashdave182/medinote/internal/domain/repository"

	"github.com/sirupsen/logrus"
)

type AuditLogUsecase interface {
	GetMyAuditLogs(ctx context.Context, page, limit int) (*dto.AuditLogListResponse, error)
}

type auditLogUsecase struct {
	log          *logrus.Logger
	auditLogRepo repository.AuditLogRepository
}

func NewAuditLogUsecase(log *logrus.Logger, auditLogRepo repository.AuditLogRepository) AuditLogUsecase {
	return &auditLogUsecase{
		log:          log,
		auditLogRepo: auditLogRepo,
	}
}

// GetMyAuditLogs lists the caller's own audit trail, newest first
func (u *auditLogUsecase) GetMyAuditLogs(ctx context.Context, page, limit int) (*dto.AuditLogListResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}

	logs, total, err := u.auditLogRepo.FindByUserID(ctx, userID, limit, (page-1)*limit)
	if err != nil {
		u.log.Warnf("Failed to find audit logs of user %s: %+v", userID, err)
		return nil, err
	}

	return &dto.AuditLogListResponse{
		Logs:  converter.AuditLogsToResponses(logs),
		Page:  page,
		Limit: limit,
		Total: total,
	}, nil
}
