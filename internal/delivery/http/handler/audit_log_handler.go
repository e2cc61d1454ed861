package handler

import (
	"net/http"

	"github.com/yashdave182/medinote/internal/usecase"
	"github.com/yashdave182/medinote/pkg/response"
)

type AuditLogHandler struct {
	auditLogUsecase usecase.AuditLogUsecase
}

func NewAuditLogHandler(auditLogUsecase usecase.AuditLogUsecase) *AuditLogHandler {
	return &AuditLogHandler{
		auditLogUsecase: auditLogUsecase,
	}
}

// GetMyAuditLogs lists the caller's audit trail
// @Summary Get own audit logs
// @Tags AuditLogs
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Router /audit-logs [get]
func (h *AuditLogHandler) GetMyAuditLogs(w http.ResponseWriter, r *http.Request) {
	page, limit := pagination(r, 20)

	logs, err := h.auditLogUsecase.GetMyAuditLogs(r.Context(), page, limit)
	if err != nil {
		if err == usecase.ErrUnauthenticated {
			response.Unauthorized(w, "Invalid token")
			return
		}
		response.InternalServerError(w, "Failed to get audit logs")
		return
	}

	response.SuccessWithMeta(w, http.StatusOK, "Audit logs retrieved successfully", logs.Logs, response.NewMeta(logs.Page, logs.Limit, logs.Total))
}
