package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/yashdave182/medinote/internal/delivery/dto"
	"github.com/yashdave182/medinote/internal/usecase"
	"github.com/yashdave182/medinote/pkg/response"
	"github.com/yashdave182/medinote/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const maxPageLimit = 100

type ConsultationHandler struct {
	consultationUsecase usecase.ConsultationUsecase
	validator           *validator.CustomValidator
}

func NewConsultationHandler(consultationUsecase usecase.ConsultationUsecase, validator *validator.CustomValidator) *ConsultationHandler {
	return &ConsultationHandler{
		consultationUsecase: consultationUsecase,
		validator:           validator,
	}
}

// CreateConsultation opens a new consultation
// @Summary Create consultation
// @Tags Consultations
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateConsultationRequest true "Consultation"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /consultations [post]
func (h *ConsultationHandler) CreateConsultation(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateConsultationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	created, err := h.consultationUsecase.CreateConsultation(r.Context(), &req)
	if err != nil {
		writeConsultationError(w, err, "Failed to create consultation")
		return
	}

	response.Success(w, http.StatusCreated, "Consultation created successfully", created)
}

// ListConsultations lists the caller's consultations
// @Summary List consultations
// @Tags Consultations
// @Security BearerAuth
// @Produce json
// @Param status query string false "in_progress, completed or cancelled"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Success 200 {object} response.Response
// @Router /consultations [get]
func (h *ConsultationHandler) ListConsultations(w http.ResponseWriter, r *http.Request) {
	page, limit := pagination(r, 10)
	req := dto.ConsultationListRequest{
		Status: r.URL.Query().Get("status"),
		Page:   page,
		Limit:  limit,
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	list, err := h.consultationUsecase.ListConsultations(r.Context(), &req)
	if err != nil {
		writeConsultationError(w, err, "Failed to get consultations")
		return
	}

	response.SuccessWithMeta(w, http.StatusOK, "Consultations retrieved successfully", list.Consultations, response.NewMeta(list.Page, list.Limit, list.Total))
}

func (h *ConsultationHandler) GetConsultation(w http.ResponseWriter, r *http.Request) {
	id, ok := consultationID(w, r)
	if !ok {
		return
	}

	consultation, err := h.consultationUsecase.GetConsultation(r.Context(), id)
	if err != nil {
		writeConsultationError(w, err, "Failed to get consultation")
		return
	}

	response.Success(w, http.StatusOK, "Consultation retrieved successfully", consultation)
}

func (h *ConsultationHandler) GetDashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.consultationUsecase.GetDashboardStats(r.Context())
	if err != nil {
		writeConsultationError(w, err, "Failed to get dashboard stats")
		return
	}

	response.Success(w, http.StatusOK, "Dashboard stats retrieved successfully", stats)
}

// CompleteConsultation closes a consultation whose note has been reviewed
// @Summary Complete consultation
// @Tags Consultations
// @Security BearerAuth
// @Produce json
// @Param id path string true "Consultation ID"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /consultations/{id}/complete [post]
func (h *ConsultationHandler) CompleteConsultation(w http.ResponseWriter, r *http.Request) {
	id, ok := consultationID(w, r)
	if !ok {
		return
	}

	consultation, err := h.consultationUsecase.CompleteConsultation(r.Context(), id)
	if err != nil {
		writeConsultationError(w, err, "Failed to complete consultation")
		return
	}

	response.Success(w, http.StatusOK, "Consultation completed successfully", consultation)
}

func (h *ConsultationHandler) CancelConsultation(w http.ResponseWriter, r *http.Request) {
	id, ok := consultationID(w, r)
	if !ok {
		return
	}

	consultation, err := h.consultationUsecase.CancelConsultation(r.Context(), id)
	if err != nil {
		writeConsultationError(w, err, "Failed to cancel consultation")
		return
	}

	response.Success(w, http.StatusOK, "Consultation cancelled successfully", consultation)
}

// consultationID parses the {id} path variable, answering 400 when invalid
func consultationID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid consultation ID", nil)
		return uuid.Nil, false
	}
	return id, true
}

func pagination(r *http.Request, defaultLimit int) (int, int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}

// writeConsultationError maps the lifecycle errors shared by the
// consultation, note and recording endpoints
func writeConsultationError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, usecase.ErrUnauthenticated):
		response.Unauthorized(w, "Invalid token")
	case errors.Is(err, usecase.ErrConsultationNotFound):
		response.NotFound(w, "Consultation not found")
	case errors.Is(err, usecase.ErrNoteNotFound):
		response.NotFound(w, "Note not found")
	case errors.Is(err, usecase.ErrPatientNameRequired):
		response.BadRequest(w, "Patient name is required")
	case errors.Is(err, usecase.ErrNoteNotReviewed),
		errors.Is(err, usecase.ErrConsultationClosed),
		errors.Is(err, usecase.ErrConsultationCancelled),
		errors.Is(err, usecase.ErrConsultationCompleted):
		response.Conflict(w, err.Error())
	default:
		response.InternalServerError(w, fallback)
	}
}
