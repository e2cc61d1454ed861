package repository

import (
	"context"
	"testing"
	"time"

	"github.com/yashdave182/medinote/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// sqlRecorder keeps every statement gorm builds
type sqlRecorder struct {
	statements []string
}

func (r *sqlRecorder) LogMode(logger.LogLevel) logger.Interface { return r }
func (r *sqlRecorder) Info(context.Context, string, ...interface{}) {}
func (r *sqlRecorder) Warn(context.Context, string, ...interface{}) {}
func (r *sqlRecorder) Error(context.Context, string, ...interface{}) {}

func (r *sqlRecorder) Trace(_ context.Context, _ time.Time, fc func() (string, int64), _ error) {
	sql, _ := fc()
	r.statements = append(r.statements, sql)
}

func (r *sqlRecorder) last(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, r.statements)
	return r.statements[len(r.statements)-1]
}

// newDryRunDB builds SQL against the postgres dialect without connecting
func newDryRunDB(t *testing.T) (*gorm.DB, *sqlRecorder) {
	t.Helper()
	rec := &sqlRecorder{}
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=medinote dbname=medinote sslmode=disable",
	}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
		Logger:               rec,
	})
	require.NoError(t, err)
	return db, rec
}

func TestMedicalNoteRepository_UpsertKeepsOneNotePerConsultation(t *testing.T) {
	db, rec := newDryRunDB(t)
	repo := NewMedicalNoteRepository(db)

	note := entity.NewTranscribedNote(uuid.New(), "Patient reports headache.")
	require.NoError(t, repo.Upsert(context.Background(), note))

	sql := rec.last(t)
	assert.Contains(t, sql, `INSERT INTO "medical_notes"`)
	assert.Contains(t, sql, `ON CONFLICT ("consultation_id") DO UPDATE SET`)
	assert.Contains(t, sql, `"raw_transcript"="excluded"."raw_transcript"`)
	assert.Contains(t, sql, `"reviewed"="excluded"."reviewed"`)
	assert.NotContains(t, sql, `"created_at"="excluded"."created_at"`)
	assert.Contains(t, sql, `RETURNING "id","created_at"`)
}

func TestMedicalNoteRepository_SaveReviewLeavesTranscript(t *testing.T) {
	db, rec := newDryRunDB(t)
	repo := NewMedicalNoteRepository(db)

	note := entity.NewTranscribedNote(uuid.New(), "raw words")
	note.Review(entity.SOAPFields{Subjective: "edited", Plan: "rest"})

	// a dry run affects no rows
	err := repo.SaveReview(context.Background(), note)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	sql := rec.last(t)
	assert.Contains(t, sql, `UPDATE "medical_notes" SET`)
	assert.Contains(t, sql, `"reviewed"=true`)
	assert.Contains(t, sql, `"subjective"='edited'`)
	assert.Contains(t, sql, "consultation_id = '"+note.ConsultationID.String()+"'")
	assert.NotContains(t, sql, "raw_transcript")
	assert.NotContains(t, sql, "extracted_entities")
}
