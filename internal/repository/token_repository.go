package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Xirnus/offline-attendance-system-sub000/internal/database"
	"github.com/Xirnus/offline-attendance-system-sub000/internal/model"
	"github.com/lib/pq"
)

// uniqueViolation is the Postgres error code for unique constraint breaches.
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	if pqErr, ok := err.(*pq.Error); ok {
		return pqErr.Code == uniqueViolation
	}
	return false
}

// TokenRepository handles attendance token persistence
type TokenRepository struct {
	db *database.Postgres
}

// NewTokenRepository creates a new TokenRepository
func NewTokenRepository(db *database.Postgres) *TokenRepository {
	return &TokenRepository{db: db}
}

// Create stores a new token in the created state
func (r *TokenRepository) Create(ctx context.Context, token *model.Token) error {
	query := `
		INSERT INTO tokens (value, issued_at, opened, used)
		VALUES ($1, $2, FALSE, FALSE)
	`
	_, err := r.db.ExecContext(ctx, query, token.Value, token.IssuedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create token: %w", err)
	}
	return nil
}

// GetByValue retrieves a token by its value
func (r *TokenRepository) GetByValue(ctx context.Context, value string) (*model.Token, error) {
	query := `
		SELECT value, issued_at, opened, opened_at, used, used_at, device_signature, fingerprint_hash
		FROM tokens
		WHERE value = $1
	`
	var token model.Token
	err := r.db.QueryRowContext(ctx, query, value).Scan(
		&token.Value,
		&token.IssuedAt,
		&token.Opened,
		&token.OpenedAt,
		&token.Used,
		&token.UsedAt,
		&token.DeviceSignature,
		&token.FingerprintHash,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get token: %w", err)
	}
	return &token, nil
}

// BindOpen marks a token opened and binds the device signature, but only if
// the token has not been opened yet. The affected row count decides which
// concurrent first-open won.
func (r *TokenRepository) BindOpen(ctx context.Context, value, deviceSignature string, at time.Time) (bool, error) {
	query := `
		UPDATE tokens
		SET opened = TRUE, opened_at = $2, device_signature = $3
		WHERE value = $1 AND opened = FALSE
	`
	result, err := r.db.ExecContext(ctx, query, value, at, deviceSignature)
	if err != nil {
		return false, fmt.Errorf("failed to bind token open: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected == 1, nil
}

// MarkUsed is the single transition into the terminal state. The conditional
// update only succeeds if used was false immediately before; zero affected
// rows means the caller lost the race and must treat the token as already
// used. This is the primitive that prevents two concurrent requests from
// both winning the same token.
func (r *TokenRepository) MarkUsed(ctx context.Context, value, fingerprintHash string, at time.Time) (bool, error) {
	query := `
		UPDATE tokens
		SET used = TRUE, used_at = $2, fingerprint_hash = $3
		WHERE value = $1 AND used = FALSE
	`
	result, err := r.db.ExecContext(ctx, query, value, at, fingerprintHash)
	if err != nil {
		return false, fmt.Errorf("failed to mark token used: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected == 1, nil
}
