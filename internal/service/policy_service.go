package service

import (
	"context"
	"errors"

	"github.com/Xirnus/offline-attendance-system-sub000/internal/config"
	"github.com/Xirnus/offline-attendance-system-sub000/internal/logger"
	"github.com/Xirnus/offline-attendance-system-sub000/internal/model"
	"github.com/Xirnus/offline-attendance-system-sub000/internal/repository"
)

// PolicyStore is the persistence surface for the singleton policy record.
type PolicyStore interface {
	Get(ctx context.Context) (*model.PolicySettings, error)
	Save(ctx context.Context, p model.PolicySettings) error
}

// PolicyService owns the mutable admission policy. Reads fail open to the
// configured defaults so a storage hiccup never fails a check-in; writes
// are validated and take effect for subsequently evaluated check-ins only.
type PolicyService struct {
	store    PolicyStore
	defaults model.PolicySettings
	log      *logger.Logger
}

// NewPolicyService creates a new PolicyService
func NewPolicyService(store PolicyStore, cfg config.PolicyConfig, log *logger.Logger) *PolicyService {
	return &PolicyService{
		store: store,
		defaults: model.PolicySettings{
			MaxUsesPerDevice:           cfg.MaxUsesPerDevice,
			TimeWindowMinutes:          cfg.TimeWindowMinutes,
			FingerprintBlockingEnabled: cfg.FingerprintBlocking,
		},
		log: log.WithComponent("policy_service"),
	}
}

// Get returns the current policy as a copy. Missing or unreadable stored
// settings yield the defaults, never an error.
func (s *PolicyService) Get(ctx context.Context) model.PolicySettings {
	stored, err := s.store.Get(ctx)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.log.Error().Err(err).Msg("policy read failed, falling back to defaults")
		}
		return s.defaults
	}
	return *stored
}

// Set validates and persists new policy settings. Invalid input leaves the
// existing settings unchanged.
func (s *PolicyService) Set(ctx context.Context, p model.PolicySettings) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if err := s.store.Save(ctx, p); err != nil {
		return err
	}
	s.log.Info().
		Int("max_uses_per_device", p.MaxUsesPerDevice).
		Int("time_window_minutes", p.TimeWindowMinutes).
		Bool("fingerprint_blocking", p.FingerprintBlockingEnabled).
		Msg("policy updated")
	return nil
}
