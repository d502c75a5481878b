package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Xirnus/offline-attendance-system-sub000/internal/logger"
	"github.com/Xirnus/offline-attendance-system-sub000/internal/model"
	"github.com/Xirnus/offline-attendance-system-sub000/internal/repository"
	"github.com/google/uuid"
)

// Session service errors
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidSession  = errors.New("invalid session")
)

// SessionRepo is the full session persistence surface.
type SessionRepo interface {
	SessionStore
	Create(ctx context.Context, session *model.Session) error
	GetByID(ctx context.Context, id string) (*model.Session, error)
	Activate(ctx context.Context, id string) error
	Deactivate(ctx context.Context, id string) error
	List(ctx context.Context) ([]model.Session, error)
}

// SessionService manages attendance sessions.
type SessionService struct {
	sessions SessionRepo
	log      *logger.Logger
	now      func() time.Time
}

// NewSessionService creates a new SessionService
func NewSessionService(sessions SessionRepo, log *logger.Logger) *SessionService {
	return &SessionService{
		sessions: sessions,
		log:      log.WithComponent("session_service"),
		now:      time.Now,
	}
}

// CreateSessionRequest carries the fields for a new session.
type CreateSessionRequest struct {
	Name      string
	StartTime time.Time
	EndTime   time.Time
	ClassName string
	Activate  bool
}

// Create stores a new session and optionally activates it immediately.
func (s *SessionService) Create(ctx context.Context, req CreateSessionRequest) (*model.Session, error) {
	if req.Name == "" {
		return nil, ErrInvalidSession
	}
	if !req.EndTime.IsZero() && !req.EndTime.After(req.StartTime) {
		return nil, ErrInvalidSession
	}

	session := &model.Session{
		ID:        uuid.New().String(),
		Name:      req.Name,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		CreatedAt: s.now(),
	}
	if req.ClassName != "" {
		session.ClassName = &req.ClassName
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	if req.Activate {
		if err := s.Activate(ctx, session.ID); err != nil {
			return nil, err
		}
		session.IsActive = true
	}

	s.log.Info().Str("session_id", session.ID).Str("name", session.Name).Bool("active", session.IsActive).Msg("session created")
	return session, nil
}

// Activate makes the session the single active one.
func (s *SessionService) Activate(ctx context.Context, id string) error {
	if err := s.sessions.Activate(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("failed to activate session: %w", err)
	}
	s.log.Info().Str("session_id", id).Msg("session activated")
	return nil
}

// Deactivate ends the session's check-in window.
func (s *SessionService) Deactivate(ctx context.Context, id string) error {
	if err := s.sessions.Deactivate(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("failed to deactivate session: %w", err)
	}
	s.log.Info().Str("session_id", id).Msg("session deactivated")
	return nil
}

// Current returns the active session, or nil when none is running.
func (s *SessionService) Current(ctx context.Context) (*model.Session, error) {
	session, err := s.sessions.GetActive(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get active session: %w", err)
	}
	return session, nil
}

// List returns all sessions, most recent first.
func (s *SessionService) List(ctx context.Context) ([]model.Session, error) {
	return s.sessions.List(ctx)
}
