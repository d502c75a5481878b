package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Xirnus/offline-attendance-system-sub000/internal/database"
	"github.com/Xirnus/offline-attendance-system-sub000/internal/model"
)

// FingerprintRepository handles the device fingerprint dedup table
type FingerprintRepository struct {
	db *database.Postgres
}

// NewFingerprintRepository creates a new FingerprintRepository
func NewFingerprintRepository(db *database.Postgres) *FingerprintRepository {
	return &FingerprintRepository{db: db}
}

// RecordUse upserts a fingerprint after a successful check-in: a new hash
// starts at usage_count 1; a known hash gets its counter incremented and
// last_seen advanced. Exactly one increment per committed check-in.
func (r *FingerprintRepository) RecordUse(ctx context.Context, hash, rawSignals string, seenAt time.Time) error {
	query := `
		INSERT INTO device_fingerprints (hash, first_seen, last_seen, usage_count, raw_signals)
		VALUES ($1, $2, $2, 1, $3)
		ON CONFLICT (hash) DO UPDATE
		SET usage_count = device_fingerprints.usage_count + 1,
		    last_seen   = EXCLUDED.last_seen
	`
	_, err := r.db.ExecContext(ctx, query, hash, seenAt, rawSignals)
	if err != nil {
		return fmt.Errorf("failed to record fingerprint use: %w", err)
	}
	return nil
}

// List returns all known device fingerprints, most recently seen first
func (r *FingerprintRepository) List(ctx context.Context) ([]model.DeviceFingerprint, error) {
	query := `
		SELECT hash, first_seen, last_seen, usage_count, raw_signals
		FROM device_fingerprints
		ORDER BY last_seen DESC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list fingerprints: %w", err)
	}
	defer rows.Close()

	var fingerprints []model.DeviceFingerprint
	for rows.Next() {
		var f model.DeviceFingerprint
		if err := rows.Scan(&f.Hash, &f.FirstSeen, &f.LastSeen, &f.UsageCount, &f.RawSignals); err != nil {
			return nil, fmt.Errorf("failed to scan fingerprint: %w", err)
		}
		fingerprints = append(fingerprints, f)
	}
	return fingerprints, rows.Err()
}
