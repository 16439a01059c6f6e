package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/timetable-planner-api/internal/models"
)

// StudentPreferenceRepository persists planner preferences per student and term.
type StudentPreferenceRepository struct {
	db *sqlx.DB
}

// NewStudentPreferenceRepository constructs the repository.
func NewStudentPreferenceRepository(db *sqlx.DB) *StudentPreferenceRepository {
	return &StudentPreferenceRepository{db: db}
}

// Get returns the stored preferences. sql.ErrNoRows is returned unwrapped when absent.
func (r *StudentPreferenceRepository) Get(ctx context.Context, studentID, term string) (*models.StudentPreferenceRecord, error) {
	const query = `SELECT id, student_id, term, preferences, created_at, updated_at FROM student_preferences WHERE student_id = $1 AND term = $2`
	var record models.StudentPreferenceRecord
	if err := r.db.GetContext(ctx, &record, query, studentID, term); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get student preferences: %w", err)
	}
	return &record, nil
}

// Upsert stores the preferences, replacing any previous set for the same term.
func (r *StudentPreferenceRepository) Upsert(ctx context.Context, record *models.StudentPreferenceRecord) error {
	now := time.Now().UTC()
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now
	const query = `INSERT INTO student_preferences (id, student_id, term, preferences, created_at, updated_at)
VALUES (:id, :student_id, :term, :preferences, :created_at, :updated_at)
ON CONFLICT (student_id, term) DO UPDATE SET preferences = EXCLUDED.preferences, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("upsert student preferences: %w", err)
	}
	return nil
}
