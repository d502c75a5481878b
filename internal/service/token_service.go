package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/Xirnus/offline-attendance-system-sub000/internal/config"
	"github.com/Xirnus/offline-attendance-system-sub000/internal/logger"
	"github.com/Xirnus/offline-attendance-system-sub000/internal/model"
	"github.com/Xirnus/offline-attendance-system-sub000/internal/repository"
)

// Token service errors
var (
	ErrDuplicateToken = errors.New("token value already exists")
)

const (
	tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	// minTokenLength keeps collisions practically impossible regardless of
	// configuration.
	minTokenLength = 16
)

// TokenStore is the persistence surface the token lifecycle needs.
type TokenStore interface {
	Create(ctx context.Context, token *model.Token) error
	GetByValue(ctx context.Context, value string) (*model.Token, error)
	BindOpen(ctx context.Context, value, deviceSignature string, at time.Time) (bool, error)
	MarkUsed(ctx context.Context, value, fingerprintHash string, at time.Time) (bool, error)
}

// TokenService drives the Created -> Opened -> Used token lifecycle.
// Expiry is derived from issued_at at read time and never stored.
type TokenService struct {
	tokens      TokenStore
	ttl         time.Duration
	valueLength int
	log         *logger.Logger
	now         func() time.Time
}

// NewTokenService creates a new TokenService
func NewTokenService(tokens TokenStore, cfg config.TokenConfig, log *logger.Logger) *TokenService {
	length := cfg.ValueLength
	if length < minTokenLength {
		length = minTokenLength
	}
	return &TokenService{
		tokens:      tokens,
		ttl:         cfg.TTL,
		valueLength: length,
		log:         log.WithComponent("token_service"),
		now:         time.Now,
	}
}

// TTL returns the configured token lifetime.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Create inserts a token with the given value in the created state.
// Returns ErrDuplicateToken if the value already exists.
func (s *TokenService) Create(ctx context.Context, value string) (*model.Token, error) {
	token := &model.Token{
		Value:    value,
		IssuedAt: s.now(),
	}
	if err := s.tokens.Create(ctx, token); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateToken
		}
		return nil, fmt.Errorf("failed to create token: %w", err)
	}
	return token, nil
}

// Issue generates a cryptographically random token value and creates it.
func (s *TokenService) Issue(ctx context.Context) (*model.Token, error) {
	value, err := randomValue(s.valueLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token value: %w", err)
	}

	token, err := s.Create(ctx, value)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("token", token.Value).Time("issued_at", token.IssuedAt).Msg("token issued")
	return token, nil
}

// OpenResult is the outcome of a scan. When Allowed is false, Reason
// carries the denial.
type OpenResult struct {
	Token   *model.Token
	Allowed bool
	Reason  model.DenialReason
}

// Open handles a token scan. The first open binds the device signature;
// later opens from the same signature are idempotent re-renders, and any
// other signature is rejected. A token viewed on one device can only be
// redeemed from that device.
func (s *TokenService) Open(ctx context.Context, value, deviceSignature string) (OpenResult, error) {
	token, err := s.tokens.GetByValue(ctx, value)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return OpenResult{Reason: model.ReasonInvalidToken}, nil
		}
		return OpenResult{}, fmt.Errorf("failed to load token: %w", err)
	}

	if token.Used {
		return OpenResult{Token: token, Reason: model.ReasonAlreadyUsed}, nil
	}
	if token.IsExpired(s.now(), s.ttl) {
		return OpenResult{Token: token, Reason: model.ReasonExpired}, nil
	}

	if !token.Opened {
		won, err := s.tokens.BindOpen(ctx, value, deviceSignature, s.now())
		if err != nil {
			return OpenResult{}, fmt.Errorf("failed to bind token: %w", err)
		}
		if won {
			s.log.Info().Str("token", value).Str("signature", deviceSignature).Msg("token opened")
			token, err = s.tokens.GetByValue(ctx, value)
			if err != nil {
				return OpenResult{}, fmt.Errorf("failed to reload token: %w", err)
			}
			return OpenResult{Token: token, Allowed: true}, nil
		}
		// Lost the first-open race; fall through and compare against the
		// signature the winner bound.
		token, err = s.tokens.GetByValue(ctx, value)
		if err != nil {
			return OpenResult{}, fmt.Errorf("failed to reload token: %w", err)
		}
	}

	if token.DeviceSignature != nil && *token.DeviceSignature == deviceSignature {
		return OpenResult{Token: token, Allowed: true}, nil
	}
	return OpenResult{Token: token, Reason: model.ReasonDeviceMismatch}, nil
}

// MarkUsed attempts the single transition into the terminal state. A false
// return means another request already consumed the token.
func (s *TokenService) MarkUsed(ctx context.Context, value, fingerprintHash string) (bool, error) {
	return s.tokens.MarkUsed(ctx, value, fingerprintHash, s.now())
}

func randomValue(length int) (string, error) {
	max := big.NewInt(int64(len(tokenAlphabet)))
	buf := make([]byte, length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = tokenAlphabet[n.Int64()]
	}
	return string(buf), nil
}
