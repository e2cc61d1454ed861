package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/yashdave182/medinote/internal/delivery/dto"
	"github.com/yashdave182/medinote/internal/infrastructure/llm"
	"github.com/yashdave182/medinote/internal/usecase"
	"github.com/yashdave182/medinote/pkg/response"
	"github.com/yashdave182/medinote/pkg/validator"
)

type NoteHandler struct {
	noteUsecase usecase.NoteUsecase
	validator   *validator.CustomValidator
}

func NewNoteHandler(noteUsecase usecase.NoteUsecase, validator *validator.CustomValidator) *NoteHandler {
	return &NoteHandler{
		noteUsecase: noteUsecase,
		validator:   validator,
	}
}

func (h *NoteHandler) GetNote(w http.ResponseWriter, r *http.Request) {
	id, ok := consultationID(w, r)
	if !ok {
		return
	}

	note, err := h.noteUsecase.GetNote(r.Context(), id)
	if err != nil {
		writeConsultationError(w, err, "Failed to get note")
		return
	}

	response.Success(w, http.StatusOK, "Note retrieved successfully", note)
}

// SaveNote stores the reviewed SOAP sections
// @Summary Save reviewed note
// @Tags Notes
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Consultation ID"
// @Param request body dto.SaveNoteRequest true "SOAP sections"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /consultations/{id}/note [put]
func (h *NoteHandler) SaveNote(w http.ResponseWriter, r *http.Request) {
	id, ok := consultationID(w, r)
	if !ok {
		return
	}

	var req dto.SaveNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	note, err := h.noteUsecase.SaveNote(r.Context(), id, &req)
	if err != nil {
		writeConsultationError(w, err, "Failed to save note")
		return
	}

	response.Success(w, http.StatusOK, "Note saved successfully", note)
}

// SubmitTranscript accepts a transcript produced on the client
func (h *NoteHandler) SubmitTranscript(w http.ResponseWriter, r *http.Request) {
	id, ok := consultationID(w, r)
	if !ok {
		return
	}

	var req dto.TranscriptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	result, err := h.noteUsecase.HandleTranscriptionComplete(r.Context(), id, req.Text, nil)
	if err != nil {
		writeConsultationError(w, err, "Failed to store transcript")
		return
	}

	response.Success(w, http.StatusOK, "Transcript stored successfully", result)
}

// DownloadTranscript serves the raw transcript as a text file
func (h *NoteHandler) DownloadTranscript(w http.ResponseWriter, r *http.Request) {
	id, ok := consultationID(w, r)
	if !ok {
		return
	}

	file, err := h.noteUsecase.GetTranscriptFile(r.Context(), id)
	if err != nil {
		if errors.Is(err, usecase.ErrTranscriptEmpty) {
			response.NotFound(w, "Transcript not found")
			return
		}
		writeConsultationError(w, err, "Failed to get transcript")
		return
	}

	response.Attachment(w, file.Filename, "text/plain; charset=utf-8", file.Content)
}

// GenerateNote drafts the SOAP sections from the stored transcript
func (h *NoteHandler) GenerateNote(w http.ResponseWriter, r *http.Request) {
	id, ok := consultationID(w, r)
	if !ok {
		return
	}

	note, err := h.noteUsecase.GenerateNote(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, llm.ErrMissingAPIKey):
			response.ServiceUnavailable(w, "Note generation is not configured")
		case errors.Is(err, llm.ErrNoteGenerationFailed):
			response.Error(w, http.StatusBadGateway, "Note generation failed", nil)
		case errors.Is(err, usecase.ErrTranscriptEmpty):
			response.Conflict(w, err.Error())
		default:
			writeConsultationError(w, err, "Failed to generate note")
		}
		return
	}

	response.Success(w, http.StatusOK, "Note generated successfully", note)
}
