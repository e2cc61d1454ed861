package usecase

import "errors"

var (
	ErrUnauthenticated       = errors.New("user not found in context")
	ErrConsultationNotFound  = errors.New("consultation not found")
	ErrPatientNameRequired   = errors.New("patient name is required")
	ErrConsultationClosed    = errors.New("consultation is no longer in progress")
	ErrConsultationCancelled = errors.New("consultation is cancelled")
	ErrConsultationCompleted = errors.New("consultation is completed")
	ErrNoteNotFound          = errors.New("note not found")
	ErrNoteNotReviewed       = errors.New("note must be reviewed before completing the consultation")
	ErrTranscriptEmpty       = errors.New("note has no transcript")
	ErrEmptyAudio            = errors.New("audio is empty")
	ErrAudioTooLarge         = errors.New("audio exceeds the upload limit")
	ErrInvalidAudio          = errors.New("audio is not valid base64")
)
