package handler

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/yashdave182/medinote/internal/delivery/dto"
	"github.com/yashdave182/medinote/internal/domain/entity"
	"github.com/yashdave182/medinote/internal/infrastructure/speech"
	"github.com/yashdave182/medinote/internal/recorder"
	"github.com/yashdave182/medinote/internal/usecase"
	"github.com/yashdave182/medinote/pkg/response"
	"github.com/yashdave182/medinote/pkg/validator"

	"github.com/gabriel-vasile/mimetype"
)

type RecordingHandler struct {
	recordingUsecase usecase.RecordingUsecase
	validator        *validator.CustomValidator
	maxBodyBytes     int64
}

func NewRecordingHandler(recordingUsecase usecase.RecordingUsecase, validator *validator.CustomValidator, maxBodyBytes int64) *RecordingHandler {
	return &RecordingHandler{
		recordingUsecase: recordingUsecase,
		validator:        validator,
		maxBodyBytes:     maxBodyBytes,
	}
}

// StartRecording opens the live capture session of a consultation
// @Summary Start recording
// @Tags Recordings
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Consultation ID"
// @Param request body dto.StartRecordingRequest false "Capture options"
// @Success 201 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /consultations/{id}/recording/start [post]
func (h *RecordingHandler) StartRecording(w http.ResponseWriter, r *http.Request) {
	id, ok := consultationID(w, r)
	if !ok {
		return
	}

	var req dto.StartRecordingRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
			return
		}
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	session, err := h.recordingUsecase.StartRecording(r.Context(), id, &req)
	if err != nil {
		writeRecordingError(w, err, "Failed to start recording")
		return
	}

	response.Success(w, http.StatusCreated, "Recording started", session)
}

// AppendChunk takes one captured audio chunk as the raw request body
func (h *RecordingHandler) AppendChunk(w http.ResponseWriter, r *http.Request) {
	id, ok := consultationID(w, r)
	if !ok {
		return
	}

	chunk, ok := h.readBody(w, r)
	if !ok {
		return
	}

	session, err := h.recordingUsecase.AppendChunk(r.Context(), id, chunk)
	if err != nil {
		writeRecordingError(w, err, "Failed to append chunk")
		return
	}

	response.Success(w, http.StatusOK, "Chunk received", session)
}

func (h *RecordingHandler) PauseRecording(w http.ResponseWriter, r *http.Request) {
	id, ok := consultationID(w, r)
	if !ok {
		return
	}

	session, err := h.recordingUsecase.PauseRecording(r.Context(), id)
	if err != nil {
		writeRecordingError(w, err, "Failed to pause recording")
		return
	}

	response.Success(w, http.StatusOK, "Recording paused", session)
}

func (h *RecordingHandler) ResumeRecording(w http.ResponseWriter, r *http.Request) {
	id, ok := consultationID(w, r)
	if !ok {
		return
	}

	session, err := h.recordingUsecase.ResumeRecording(r.Context(), id)
	if err != nil {
		writeRecordingError(w, err, "Failed to resume recording")
		return
	}

	response.Success(w, http.StatusOK, "Recording resumed", session)
}

// StopRecording finalizes the session, transcribes it and writes the note
// @Summary Stop recording
// @Tags Recordings
// @Security BearerAuth
// @Produce json
// @Param id path string true "Consultation ID"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /consultations/{id}/recording/stop [post]
func (h *RecordingHandler) StopRecording(w http.ResponseWriter, r *http.Request) {
	id, ok := consultationID(w, r)
	if !ok {
		return
	}

	result, err := h.recordingUsecase.StopRecording(r.Context(), id)
	if err != nil {
		writeRecordingError(w, err, "Failed to process recording")
		return
	}

	response.Success(w, http.StatusOK, "Recording processed successfully", result)
}

// UploadRecording takes a finalized recording as the raw request body. The
// Content-Type header names the format; without one the bytes are sniffed.
func (h *RecordingHandler) UploadRecording(w http.ResponseWriter, r *http.Request) {
	id, ok := consultationID(w, r)
	if !ok {
		return
	}

	data, ok := h.readBody(w, r)
	if !ok {
		return
	}

	audio := &entity.Audio{Data: data, MimeType: audioMimeType(r, data)}
	result, err := h.recordingUsecase.UploadRecording(r.Context(), id, audio)
	if err != nil {
		writeRecordingError(w, err, "Failed to process recording")
		return
	}

	response.Success(w, http.StatusCreated, "Recording processed successfully", result)
}

func (h *RecordingHandler) ListRecordings(w http.ResponseWriter, r *http.Request) {
	id, ok := consultationID(w, r)
	if !ok {
		return
	}

	recordings, err := h.recordingUsecase.ListRecordings(r.Context(), id)
	if err != nil {
		writeConsultationError(w, err, "Failed to get recordings")
		return
	}

	response.Success(w, http.StatusOK, "Recordings retrieved successfully", recordings)
}

// Transcribe is the stateless transcription proxy
// @Summary Transcribe audio
// @Tags Transcriptions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.TranscribeRequest true "Base64 audio"
// @Success 200 {object} response.Response
// @Failure 502 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /transcriptions [post]
func (h *RecordingHandler) Transcribe(w http.ResponseWriter, r *http.Request) {
	var req dto.TranscribeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.jsonLimit())).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	result, err := h.recordingUsecase.Transcribe(r.Context(), &req)
	if err != nil {
		writeRecordingError(w, err, "Failed to transcribe audio")
		return
	}

	response.Success(w, http.StatusOK, "Audio transcribed successfully", result)
}

func (h *RecordingHandler) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body := r.Body
	if h.maxBodyBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(w, http.StatusRequestEntityTooLarge, "Audio exceeds the upload limit", nil)
			return nil, false
		}
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return nil, false
	}
	return data, true
}

// jsonLimit allows for the base64 expansion of the audio payload
func (h *RecordingHandler) jsonLimit() int64 {
	if h.maxBodyBytes <= 0 {
		return 1 << 62
	}
	return h.maxBodyBytes/3*4 + 4096
}

func audioMimeType(r *http.Request, data []byte) string {
	if mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type")); err == nil && mt != "application/octet-stream" {
		return mt
	}
	return mimetype.Detect(data).String()
}

func writeRecordingError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, recorder.ErrDeviceAccessDenied):
		response.Forbidden(w, "Microphone access denied")
	case errors.Is(err, recorder.ErrAlreadyRecording),
		errors.Is(err, recorder.ErrNotRecording),
		errors.Is(err, recorder.ErrNotPaused),
		errors.Is(err, recorder.ErrStreamClosed):
		response.Conflict(w, err.Error())
	case errors.Is(err, usecase.ErrEmptyAudio), errors.Is(err, usecase.ErrInvalidAudio):
		response.BadRequest(w, err.Error())
	case errors.Is(err, usecase.ErrAudioTooLarge):
		response.Error(w, http.StatusRequestEntityTooLarge, "Audio exceeds the upload limit", nil)
	case errors.Is(err, speech.ErrMissingAPIKey):
		response.ServiceUnavailable(w, "Transcription is not configured")
	case errors.Is(err, speech.ErrTranscriptionFailed):
		response.Error(w, http.StatusBadGateway, err.Error(), nil)
	default:
		writeConsultationError(w, err, fallback)
	}
}
