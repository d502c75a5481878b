package model

import (
	"errors"
)

// ErrInvalidPolicy is returned when a policy update fails validation.
var ErrInvalidPolicy = errors.New("invalid policy settings")

// PolicySettings is the singleton admission policy record. Updates take
// effect for subsequently evaluated check-ins only.
type PolicySettings struct {
	MaxUsesPerDevice           int  `json:"max_uses_per_device"`
	TimeWindowMinutes          int  `json:"time_window_minutes"`
	FingerprintBlockingEnabled bool `json:"enable_fingerprint_blocking"`
}

// Validate checks the policy bounds before persisting.
func (p PolicySettings) Validate() error {
	if p.MaxUsesPerDevice < 1 {
		return ErrInvalidPolicy
	}
	if p.TimeWindowMinutes <= 0 {
		return ErrInvalidPolicy
	}
	return nil
}
