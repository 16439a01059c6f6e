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

// SchedulePlanRepository persists saved planner results.
type SchedulePlanRepository struct {
	db *sqlx.DB
}

// NewSchedulePlanRepository constructs the repository.
func NewSchedulePlanRepository(db *sqlx.DB) *SchedulePlanRepository {
	return &SchedulePlanRepository{db: db}
}

// Create inserts a plan with generated defaults.
func (r *SchedulePlanRepository) Create(ctx context.Context, plan *models.SchedulePlan) error {
	if plan.ID == "" {
		plan.ID = uuid.NewString()
	}
	if plan.CreatedAt.IsZero() {
		plan.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO schedule_plans (id, student_id, term, recommended_group, result, created_at)
VALUES (:id, :student_id, :term, :recommended_group, :result, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, plan); err != nil {
		return fmt.Errorf("create schedule plan: %w", err)
	}
	return nil
}

// GetByID returns a plan. sql.ErrNoRows is returned unwrapped when absent.
func (r *SchedulePlanRepository) GetByID(ctx context.Context, id string) (*models.SchedulePlan, error) {
	const query = `SELECT id, student_id, term, recommended_group, result, created_at FROM schedule_plans WHERE id = $1`
	var plan models.SchedulePlan
	if err := r.db.GetContext(ctx, &plan, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get schedule plan: %w", err)
	}
	return &plan, nil
}

// List returns a student's plans, newest first. An empty term lists every term.
func (r *SchedulePlanRepository) List(ctx context.Context, studentID, term string) ([]models.SchedulePlan, error) {
	query := `SELECT id, student_id, term, recommended_group, result, created_at FROM schedule_plans WHERE student_id = $1`
	args := []interface{}{studentID}
	if term != "" {
		query += ` AND term = $2`
		args = append(args, term)
	}
	query += ` ORDER BY created_at DESC`

	var plans []models.SchedulePlan
	if err := r.db.SelectContext(ctx, &plans, query, args...); err != nil {
		return nil, fmt.Errorf("list schedule plans: %w", err)
	}
	return plans, nil
}

// Delete removes a plan and, through the foreign key, its export jobs.
func (r *SchedulePlanRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM schedule_plans WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete schedule plan: %w", err)
	}
	return expectAffected(res)
}
