package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AuditLog represents one entry of a practitioner's audit trail
type AuditLog struct {
	ID        int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    *uuid.UUID        `gorm:"type:uuid;index" json:"user_id,omitempty"`
	Action    string            `gorm:"type:varchar(100);not null;index" json:"action"`
	Metadata  datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt time.Time         `gorm:"autoCreateTime;index" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// Audit actions
const (
	AuditActionUserRegister         = "user.register"
	AuditActionProfileUpdate        = "profile.update"
	AuditActionConsultationCreate   = "consultation.create"
	AuditActionConsultationComplete = "consultation.complete"
	AuditActionConsultationCancel   = "consultation.cancel"
	AuditActionNoteTranscribe       = "note.transcribe"
	AuditActionNoteReview           = "note.review"
	AuditActionNoteGenerate         = "note.generate"
)
