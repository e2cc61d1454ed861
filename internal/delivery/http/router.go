package http

import (
	"net/http"

	"github.com/yashdave182/medinote/internal/delivery/http/handler"
	"github.com/yashdave182/medinote/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
)

type Router struct {
	router              *mux.Router
	authHandler         *handler.AuthHandler
	profileHandler      *handler.ProfileHandler
	consultationHandler *handler.ConsultationHandler
	noteHandler         *handler.NoteHandler
	recordingHandler    *handler.RecordingHandler
	auditLogHandler     *handler.AuditLogHandler
	authMiddleware      *middleware.AuthMiddleware
	corsMiddleware      *middleware.CORSMiddleware
}

func NewRouter(
	authHandler *handler.AuthHandler,
	profileHandler *handler.ProfileHandler,
	consultationHandler *handler.ConsultationHandler,
	noteHandler *handler.NoteHandler,
	recordingHandler *handler.RecordingHandler,
	auditLogHandler *handler.AuditLogHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
) *Router {
	return &Router{
		router:              mux.NewRouter(),
		authHandler:         authHandler,
		profileHandler:      profileHandler,
		consultationHandler: consultationHandler,
		noteHandler:         noteHandler,
		recordingHandler:    recordingHandler,
		auditLogHandler:     auditLogHandler,
		authMiddleware:      authMiddleware,
		corsMiddleware:      corsMiddleware,
	}
}

func (r *Router) Setup() *mux.Router {
	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Auth routes (public)
	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/register", r.authHandler.Register).Methods(http.MethodPost)
	auth.HandleFunc("/login", r.authHandler.Login).Methods(http.MethodPost)
	auth.HandleFunc("/refresh-token", r.authHandler.RefreshToken).Methods(http.MethodPost)

	// Everything below requires a valid access token
	protected := api.NewRoute().Subrouter()
	protected.Use(r.authMiddleware.Authenticate)

	protected.HandleFunc("/auth/logout", r.authHandler.Logout).Methods(http.MethodPost)
	protected.HandleFunc("/auth/me", r.authHandler.GetCurrentUser).Methods(http.MethodGet)

	protected.HandleFunc("/profile", r.profileHandler.GetMyProfile).Methods(http.MethodGet)
	protected.HandleFunc("/profile", r.profileHandler.UpdateMyProfile).Methods(http.MethodPut)

	protected.HandleFunc("/dashboard", r.consultationHandler.GetDashboardStats).Methods(http.MethodGet)
	protected.HandleFunc("/audit-logs", r.auditLogHandler.GetMyAuditLogs).Methods(http.MethodGet)
	protected.HandleFunc("/transcriptions", r.recordingHandler.Transcribe).Methods(http.MethodPost)

	// Consultations
	protected.HandleFunc("/consultations", r.consultationHandler.CreateConsultation).Methods(http.MethodPost)
	protected.HandleFunc("/consultations", r.consultationHandler.ListConsultations).Methods(http.MethodGet)

	consultation := protected.PathPrefix("/consultations/{id}").Subrouter()
	consultation.HandleFunc("", r.consultationHandler.GetConsultation).Methods(http.MethodGet)
	consultation.HandleFunc("/complete", r.consultationHandler.CompleteConsultation).Methods(http.MethodPost)
	consultation.HandleFunc("/cancel", r.consultationHandler.CancelConsultation).Methods(http.MethodPost)

	// Note
	consultation.HandleFunc("/note", r.noteHandler.GetNote).Methods(http.MethodGet)
	consultation.HandleFunc("/note", r.noteHandler.SaveNote).Methods(http.MethodPut)
	consultation.HandleFunc("/note/transcript", r.noteHandler.SubmitTranscript).Methods(http.MethodPost)
	consultation.HandleFunc("/note/transcript", r.noteHandler.DownloadTranscript).Methods(http.MethodGet)
	consultation.HandleFunc("/note/generate", r.noteHandler.GenerateNote).Methods(http.MethodPost)

	// Recording
	consultation.HandleFunc("/recording/start", r.recordingHandler.StartRecording).Methods(http.MethodPost)
	consultation.HandleFunc("/recording/chunks", r.recordingHandler.AppendChunk).Methods(http.MethodPost)
	consultation.HandleFunc("/recording/pause", r.recordingHandler.PauseRecording).Methods(http.MethodPost)
	consultation.HandleFunc("/recording/resume", r.recordingHandler.ResumeRecording).Methods(http.MethodPost)
	consultation.HandleFunc("/recording/stop", r.recordingHandler.StopRecording).Methods(http.MethodPost)
	consultation.HandleFunc("/recordings", r.recordingHandler.UploadRecording).Methods(http.MethodPost)
	consultation.HandleFunc("/recordings", r.recordingHandler.ListRecordings).Methods(http.MethodGet)

	// Add CORS middleware
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
