package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Xirnus/offline-attendance-system-sub000/internal/database"
	"github.com/Xirnus/offline-attendance-system-sub000/internal/model"
)

// PolicyRepository handles the singleton admission policy record
type PolicyRepository struct {
	db *database.Postgres
}

// NewPolicyRepository creates a new PolicyRepository
func NewPolicyRepository(db *database.Postgres) *PolicyRepository {
	return &PolicyRepository{db: db}
}

// Get retrieves the stored policy, or ErrNotFound if none was ever saved
func (r *PolicyRepository) Get(ctx context.Context) (*model.PolicySettings, error) {
	query := `
		SELECT max_uses_per_device, time_window_minutes, fingerprint_blocking_enabled
		FROM policy_settings
		WHERE id = 1
	`
	var p model.PolicySettings
	err := r.db.QueryRowContext(ctx, query).Scan(
		&p.MaxUsesPerDevice,
		&p.TimeWindowMinutes,
		&p.FingerprintBlockingEnabled,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get policy: %w", err)
	}
	return &p, nil
}

// Save upserts the singleton policy row
func (r *PolicyRepository) Save(ctx context.Context, p model.PolicySettings) error {
	query := `
		INSERT INTO policy_settings (id, max_uses_per_device, time_window_minutes, fingerprint_blocking_enabled, updated_at)
		VALUES (1, $1, $2, $3, NOW())
		ON CONFLICT (id) DO UPDATE
		SET max_uses_per_device          = EXCLUDED.max_uses_per_device,
		    time_window_minutes          = EXCLUDED.time_window_minutes,
		    fingerprint_blocking_enabled = EXCLUDED.fingerprint_blocking_enabled,
		    updated_at                   = NOW()
	`
	_, err := r.db.ExecContext(ctx, query, p.MaxUsesPerDevice, p.TimeWindowMinutes, p.FingerprintBlockingEnabled)
	if err != nil {
		return fmt.Errorf("failed to save policy: %w", err)
	}
	return nil
}
