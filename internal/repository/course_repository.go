package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/timetable-planner-api/internal/models"
)

const courseColumns = `id, term, code, name, instructors, category, sessions, group_name, created_at, updated_at`

// CourseRepository persists catalog courses. Listing preserves insertion order, which is
// the catalog order the planner depends on.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// List returns the courses matching the filter in catalog order.
func (r *CourseRepository) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, error) {
	var (
		conditions []string
		args       []interface{}
	)
	if filter.Term != "" {
		args = append(args, filter.Term)
		conditions = append(conditions, fmt.Sprintf("term = $%d", len(args)))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.Group != "" {
		args = append(args, filter.Group)
		conditions = append(conditions, fmt.Sprintf("group_name = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		conditions = append(conditions, fmt.Sprintf("(LOWER(name) LIKE $%d OR LOWER(code) LIKE $%d)", len(args), len(args)))
	}

	query := "SELECT " + courseColumns + " FROM courses"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY seq ASC"

	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// ListByIDs returns the requested courses in catalog order. Unknown ids are ignored.
func (r *CourseRepository) ListByIDs(ctx context.Context, term string, ids []string) ([]models.Course, error) {
	if len(ids) == 0 {
		return []models.Course{}, nil
	}
	query := "SELECT " + courseColumns + " FROM courses WHERE term = $1 AND id = ANY($2) ORDER BY seq ASC"
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, term, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("list courses by id: %w", err)
	}
	return courses, nil
}

// GetByID returns a single course. sql.ErrNoRows is returned unwrapped when absent.
func (r *CourseRepository) GetByID(ctx context.Context, id string) (*models.Course, error) {
	var course models.Course
	if err := r.db.GetContext(ctx, &course, "SELECT "+courseColumns+" FROM courses WHERE id = $1", id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get course: %w", err)
	}
	return &course, nil
}

const insertCourse = `INSERT INTO courses (id, term, code, name, instructors, category, sessions, group_name, created_at, updated_at)
VALUES (:id, :term, :code, :name, :instructors, :category, :sessions, :group_name, :created_at, :updated_at)`

// Create inserts a course.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	stampCourse(course)
	if _, err := r.db.NamedExecContext(ctx, insertCourse, course); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// Update replaces the mutable fields of a course.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	course.UpdatedAt = time.Now().UTC()
	const query = `UPDATE courses SET code = :code, name = :name, instructors = :instructors, category = :category,
sessions = :sessions, group_name = :group_name, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, course)
	if err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	return expectAffected(res)
}

// Delete removes a course.
func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	return expectAffected(res)
}

// ReplaceTerm swaps the whole catalog of a term in one transaction.
func (r *CourseRepository) ReplaceTerm(ctx context.Context, term string, courses []models.Course) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin catalog import: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM courses WHERE term = $1`, term); err != nil {
		return fmt.Errorf("clear term catalog: %w", err)
	}
	for i := range courses {
		courses[i].Term = term
		stampCourse(&courses[i])
		if _, err := tx.NamedExecContext(ctx, insertCourse, &courses[i]); err != nil {
			return fmt.Errorf("insert course %s: %w", courses[i].Code, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit catalog import: %w", err)
	}
	return nil
}

func stampCourse(course *models.Course) {
	now := time.Now().UTC()
	if course.CreatedAt.IsZero() {
		course.CreatedAt = now
	}
	course.UpdatedAt = now
}

func expectAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
