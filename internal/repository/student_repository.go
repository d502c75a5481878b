package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Xirnus/offline-attendance-system-sub000/internal/database"
	"github.com/Xirnus/offline-attendance-system-sub000/internal/model"
)

// StudentRepository handles roster persistence
type StudentRepository struct {
	db *database.Postgres
}

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(db *database.Postgres) *StudentRepository {
	return &StudentRepository{db: db}
}

// Create adds a student to the roster
func (r *StudentRepository) Create(ctx context.Context, student *model.Student) error {
	query := `
		INSERT INTO students (id, name, course, year, present_count, absent_count, created_at)
		VALUES ($1, $2, $3, $4, 0, 0, $5)
	`
	_, err := r.db.ExecContext(ctx, query,
		student.ID,
		student.Name,
		student.Course,
		student.Year,
		student.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create student: %w", err)
	}
	return nil
}

// GetByID retrieves a student by id
func (r *StudentRepository) GetByID(ctx context.Context, id string) (*model.Student, error) {
	query := `
		SELECT id, name, course, year, present_count, absent_count, created_at
		FROM students
		WHERE id = $1
	`
	var s model.Student
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&s.ID, &s.Name, &s.Course, &s.Year, &s.PresentCount, &s.AbsentCount, &s.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	return &s, nil
}

// List returns the full roster ordered by name
func (r *StudentRepository) List(ctx context.Context) ([]model.Student, error) {
	query := `
		SELECT id, name, course, year, present_count, absent_count, created_at
		FROM students
		ORDER BY name
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	defer rows.Close()

	var students []model.Student
	for rows.Next() {
		var s model.Student
		if err := rows.Scan(&s.ID, &s.Name, &s.Course, &s.Year, &s.PresentCount, &s.AbsentCount, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan student: %w", err)
		}
		students = append(students, s)
	}
	return students, rows.Err()
}

// IncrementPresent bumps a student's present counter after a committed
// check-in
func (r *StudentRepository) IncrementPresent(ctx context.Context, id string) error {
	query := `UPDATE students SET present_count = present_count + 1 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to increment present count: %w", err)
	}
	return nil
}
