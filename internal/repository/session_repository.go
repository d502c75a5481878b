package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Xirnus/offline-attendance-system-sub000/internal/database"
	"github.com/Xirnus/offline-attendance-system-sub000/internal/model"
)

// SessionRepository handles attendance session persistence
type SessionRepository struct {
	db *database.Postgres
}

// NewSessionRepository creates a new SessionRepository
func NewSessionRepository(db *database.Postgres) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create stores a new session
func (r *SessionRepository) Create(ctx context.Context, session *model.Session) error {
	query := `
		INSERT INTO sessions (id, name, start_time, end_time, is_active, class_name, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		session.ID,
		session.Name,
		session.StartTime,
		session.EndTime,
		session.IsActive,
		session.ClassName,
		session.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// GetByID retrieves a session by id
func (r *SessionRepository) GetByID(ctx context.Context, id string) (*model.Session, error) {
	query := `
		SELECT id, name, start_time, end_time, is_active, class_name, created_at
		FROM sessions
		WHERE id = $1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// GetActive retrieves the currently active session, if any
func (r *SessionRepository) GetActive(ctx context.Context) (*model.Session, error) {
	query := `
		SELECT id, name, start_time, end_time, is_active, class_name, created_at
		FROM sessions
		WHERE is_active = TRUE
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query))
}

// Activate marks the given session active and deactivates every other
// session in the same transaction, preserving the at-most-one-active
// invariant.
func (r *SessionRepository) Activate(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE sessions SET is_active = FALSE WHERE is_active = TRUE`); err != nil {
		return fmt.Errorf("failed to deactivate sessions: %w", err)
	}

	result, err := tx.ExecContext(ctx, `UPDATE sessions SET is_active = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to activate session: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return tx.Commit()
}

// Deactivate clears the active flag on a session
func (r *SessionRepository) Deactivate(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE sessions SET is_active = FALSE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate session: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns all sessions, most recent first
func (r *SessionRepository) List(ctx context.Context) ([]model.Session, error) {
	query := `
		SELECT id, name, start_time, end_time, is_active, class_name, created_at
		FROM sessions
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []model.Session
	for rows.Next() {
		var s model.Session
		if err := rows.Scan(&s.ID, &s.Name, &s.StartTime, &s.EndTime, &s.IsActive, &s.ClassName, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func (r *SessionRepository) scanOne(row *sql.Row) (*model.Session, error) {
	var s model.Session
	err := row.Scan(&s.ID, &s.Name, &s.StartTime, &s.EndTime, &s.IsActive, &s.ClassName, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &s, nil
}
