package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Xirnus/offline-attendance-system-sub000/internal/database"
	"github.com/Xirnus/offline-attendance-system-sub000/internal/model"
)

// AttendanceRepository handles attendance records and denied attempts
type AttendanceRepository struct {
	db *database.Postgres
}

// NewAttendanceRepository creates a new AttendanceRepository
func NewAttendanceRepository(db *database.Postgres) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// CreateRecord stores a committed check-in. The unique keys on token and
// (session_id, student_id) reject any duplicate that slips past the
// pipeline's reads.
func (r *AttendanceRepository) CreateRecord(ctx context.Context, rec *model.AttendanceRecord) error {
	query := `
		INSERT INTO attendance_records (id, token, fingerprint_hash, student_id, session_id, checked_in_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		rec.ID,
		rec.Token,
		rec.FingerprintHash,
		rec.StudentID,
		rec.SessionID,
		rec.Timestamp,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create attendance record: %w", err)
	}
	return nil
}

// FingerprintUsedInSession reports whether the fingerprint hash already
// produced a successful check-in for the session.
func (r *AttendanceRepository) FingerprintUsedInSession(ctx context.Context, sessionID, fingerprintHash string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM attendance_records
			WHERE session_id = $1 AND fingerprint_hash = $2
		)
	`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, sessionID, fingerprintHash).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check fingerprint usage: %w", err)
	}
	return exists, nil
}

// GetStudentRecord returns the student's committed check-in for the
// session, or ErrNotFound.
func (r *AttendanceRepository) GetStudentRecord(ctx context.Context, sessionID, studentID string) (*model.AttendanceRecord, error) {
	query := `
		SELECT id, token, fingerprint_hash, student_id, session_id, checked_in_at
		FROM attendance_records
		WHERE session_id = $1 AND student_id = $2
	`
	var rec model.AttendanceRecord
	err := r.db.QueryRowContext(ctx, query, sessionID, studentID).Scan(
		&rec.ID, &rec.Token, &rec.FingerprintHash, &rec.StudentID, &rec.SessionID, &rec.Timestamp,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get attendance record: %w", err)
	}
	return &rec, nil
}

// CountFingerprintSince counts a fingerprint's successful check-ins inside
// the trailing policy window.
func (r *AttendanceRepository) CountFingerprintSince(ctx context.Context, fingerprintHash string, since time.Time) (int, error) {
	query := `
		SELECT COUNT(*) FROM attendance_records
		WHERE fingerprint_hash = $1 AND checked_in_at >= $2
	`
	var count int
	if err := r.db.QueryRowContext(ctx, query, fingerprintHash, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count fingerprint usage: %w", err)
	}
	return count, nil
}

// CreateDeniedAttempt persists a rejected check-in attempt
func (r *AttendanceRepository) CreateDeniedAttempt(ctx context.Context, attempt *model.DeniedAttempt) error {
	query := `
		INSERT INTO denied_attempts (id, token, fingerprint_hash, student_id, student_name, course, session_id, reason, attempted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		attempt.ID,
		attempt.Token,
		attempt.FingerprintHash,
		attempt.StudentID,
		attempt.StudentName,
		attempt.Course,
		attempt.SessionID,
		attempt.Reason,
		attempt.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to create denied attempt: %w", err)
	}
	return nil
}

// ListDeniedAttempts returns the most recent denied attempts
func (r *AttendanceRepository) ListDeniedAttempts(ctx context.Context, limit int) ([]model.DeniedAttempt, error) {
	query := `
		SELECT id, token, fingerprint_hash, student_id, student_name, course, session_id, reason, attempted_at
		FROM denied_attempts
		ORDER BY attempted_at DESC
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list denied attempts: %w", err)
	}
	defer rows.Close()

	var attempts []model.DeniedAttempt
	for rows.Next() {
		var a model.DeniedAttempt
		if err := rows.Scan(&a.ID, &a.Token, &a.FingerprintHash, &a.StudentID, &a.StudentName, &a.Course, &a.SessionID, &a.Reason, &a.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan denied attempt: %w", err)
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}
