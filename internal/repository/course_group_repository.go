package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/timetable-planner-api/internal/models"
)

// CourseGroupRepository stores exclusive group labels per term.
type CourseGroupRepository struct {
	db *sqlx.DB
}

// NewCourseGroupRepository constructs the repository.
func NewCourseGroupRepository(db *sqlx.DB) *CourseGroupRepository {
	return &CourseGroupRepository{db: db}
}

// ListByTerm returns the groups of a term ordered by name.
func (r *CourseGroupRepository) ListByTerm(ctx context.Context, term string) ([]models.CourseGroup, error) {
	const query = `SELECT id, term, name, description, created_at, updated_at FROM course_groups WHERE term = $1 ORDER BY name ASC`
	var groups []models.CourseGroup
	if err := r.db.SelectContext(ctx, &groups, query, term); err != nil {
		return nil, fmt.Errorf("list course groups: %w", err)
	}
	return groups, nil
}

// Upsert creates the group or refreshes its description.
func (r *CourseGroupRepository) Upsert(ctx context.Context, group *models.CourseGroup) error {
	now := time.Now().UTC()
	if group.ID == "" {
		group.ID = uuid.NewString()
	}
	if group.CreatedAt.IsZero() {
		group.CreatedAt = now
	}
	group.UpdatedAt = now
	const query = `INSERT INTO course_groups (id, term, name, description, created_at, updated_at)
VALUES (:id, :term, :name, :description, :created_at, :updated_at)
ON CONFLICT (term, name) DO UPDATE SET description = EXCLUDED.description, updated_at = EXCLUDED.updated_at
RETURNING id, created_at`
	rows, err := r.db.NamedQueryContext(ctx, query, group)
	if err != nil {
		return fmt.Errorf("upsert course group: %w", err)
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&group.ID, &group.CreatedAt); err != nil {
			return fmt.Errorf("scan course group: %w", err)
		}
	}
	return rows.Err()
}

// EnsureNames registers any group names not yet known for the term.
func (r *CourseGroupRepository) EnsureNames(ctx context.Context, term string, names []string) error {
	const query = `INSERT INTO course_groups (id, term, name, description, created_at, updated_at)
VALUES ($1, $2, $3, '', $4, $4) ON CONFLICT (term, name) DO NOTHING`
	now := time.Now().UTC()
	for _, name := range names {
		if _, err := r.db.ExecContext(ctx, query, uuid.NewString(), term, name, now); err != nil {
			return fmt.Errorf("ensure course group %s: %w", name, err)
		}
	}
	return nil
}
