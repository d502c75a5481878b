package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Xirnus/offline-attendance-system-sub000/internal/fingerprint"
	"github.com/Xirnus/offline-attendance-system-sub000/internal/logger"
	"github.com/Xirnus/offline-attendance-system-sub000/internal/model"
	"github.com/Xirnus/offline-attendance-system-sub000/internal/repository"
	"github.com/google/uuid"
)

// SessionStore is the session lookup surface the pipeline needs.
type SessionStore interface {
	GetActive(ctx context.Context) (*model.Session, error)
}

// StudentStore is the roster surface the pipeline needs.
type StudentStore interface {
	GetByID(ctx context.Context, id string) (*model.Student, error)
	IncrementPresent(ctx context.Context, id string) error
}

// AttendanceStore persists committed check-ins and denied attempts.
type AttendanceStore interface {
	CreateRecord(ctx context.Context, rec *model.AttendanceRecord) error
	FingerprintUsedInSession(ctx context.Context, sessionID, fingerprintHash string) (bool, error)
	GetStudentRecord(ctx context.Context, sessionID, studentID string) (*model.AttendanceRecord, error)
	CountFingerprintSince(ctx context.Context, fingerprintHash string, since time.Time) (int, error)
	CreateDeniedAttempt(ctx context.Context, attempt *model.DeniedAttempt) error
}

// FingerprintStore maintains the per-device usage aggregate.
type FingerprintStore interface {
	RecordUse(ctx context.Context, hash, rawSignals string, seenAt time.Time) error
}

// PolicyProvider supplies the admission policy in effect right now.
type PolicyProvider interface {
	Get(ctx context.Context) model.PolicySettings
}

// CheckinRequest is one check-in attempt from a client device.
type CheckinRequest struct {
	StudentID string
	Token     string
	Signals   fingerprint.RawSignals
}

// CheckinResult is the pipeline outcome. Denials are values, not errors:
// an error return means storage failed, nothing else.
type CheckinResult struct {
	OK      bool
	Reason  model.DenialReason
	Message string
	Record  *model.AttendanceRecord
	// SaltedHash is the hour-rotating anonymous device id, exposed for
	// diagnostics; it plays no part in any admission decision.
	SaltedHash      string
	UniquenessScore int
}

// CheckinService runs the ordered admission chain over every check-in
// attempt. Earlier checks are cheaper and reveal less to an attacker, so
// the order is part of the design, not an accident.
type CheckinService struct {
	tokenSvc     *TokenService
	sessions     SessionStore
	students     StudentStore
	attendance   AttendanceStore
	fingerprints FingerprintStore
	policy       PolicyProvider
	log          *logger.Logger
	now          func() time.Time
}

// NewCheckinService creates a new CheckinService
func NewCheckinService(
	tokenSvc *TokenService,
	sessions SessionStore,
	students StudentStore,
	attendance AttendanceStore,
	fingerprints FingerprintStore,
	policy PolicyProvider,
	log *logger.Logger,
) *CheckinService {
	return &CheckinService{
		tokenSvc:     tokenSvc,
		sessions:     sessions,
		students:     students,
		attendance:   attendance,
		fingerprints: fingerprints,
		policy:       policy,
		log:          log.WithComponent("checkin_service"),
		now:          time.Now,
	}
}

// Process runs the admission chain. Races between the read checks and the
// commit can at worst produce a spurious denial, never a double admission:
// the token CAS and the attendance unique keys are the backstops.
func (s *CheckinService) Process(ctx context.Context, req CheckinRequest) (CheckinResult, error) {
	now := s.now()
	saltedHash := fingerprint.SaltedHash(req.Signals, now)

	// 1. Field presence. Nothing to audit yet: no identity was supplied.
	if req.StudentID == "" || req.Token == "" {
		return s.deny(model.ReasonMissingFields, saltedHash), nil
	}

	// 2. Student exists in roster.
	student, err := s.students.GetByID(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return s.denyLogged(ctx, req, nil, nil, "", model.ReasonUnknownStudent, saltedHash)
		}
		return CheckinResult{}, fmt.Errorf("failed to look up student: %w", err)
	}

	// 3. Token exists and is neither used nor expired.
	token, err := s.tokenSvc.tokens.GetByValue(ctx, req.Token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return s.denyLogged(ctx, req, student, nil, "", model.ReasonInvalidToken, saltedHash)
		}
		return CheckinResult{}, fmt.Errorf("failed to look up token: %w", err)
	}
	if token.Used {
		return s.denyLogged(ctx, req, student, nil, "", model.ReasonAlreadyUsed, saltedHash)
	}
	if token.IsExpired(now, s.tokenSvc.ttl) {
		return s.denyLogged(ctx, req, student, nil, "", model.ReasonExpired, saltedHash)
	}

	// 4. A session must be running.
	session, err := s.sessions.GetActive(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return s.deny(model.ReasonNoActiveSession, saltedHash), nil
		}
		return CheckinResult{}, fmt.Errorf("failed to look up active session: %w", err)
	}

	hash := fingerprint.Hash(req.Signals)

	// 5. Replay by the same student from the same device.
	existing, err := s.attendance.GetStudentRecord(ctx, session.ID, student.ID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return CheckinResult{}, fmt.Errorf("failed to look up attendance record: %w", err)
	}
	if existing != nil && existing.FingerprintHash == hash {
		return s.denyLogged(ctx, req, student, session, hash, model.ReasonAlreadyCheckedIn, saltedHash)
	}

	// 6. One physical device cannot check in two identities in the same
	// session, even across two different tokens.
	used, err := s.attendance.FingerprintUsedInSession(ctx, session.ID, hash)
	if err != nil {
		return CheckinResult{}, fmt.Errorf("failed to check device usage: %w", err)
	}
	if used {
		return s.denyLogged(ctx, req, student, session, hash, model.ReasonDeviceAlreadyUsed, saltedHash)
	}

	// 7. Class enrollment, when the session is bound to a class.
	if session.ClassName != nil && *session.ClassName != "" && student.Course != *session.ClassName {
		return s.denyLogged(ctx, req, student, session, hash, model.ReasonStudentNotInClass, saltedHash)
	}

	// 8. Same student, different device.
	if existing != nil {
		return s.denyLogged(ctx, req, student, session, hash, model.ReasonCheckedInOtherDevice, saltedHash)
	}

	// 9. Device usage policy over the trailing window.
	policy := s.policy.Get(ctx)
	if policy.FingerprintBlockingEnabled {
		since := now.Add(-time.Duration(policy.TimeWindowMinutes) * time.Minute)
		count, err := s.attendance.CountFingerprintSince(ctx, hash, since)
		if err != nil {
			return CheckinResult{}, fmt.Errorf("failed to count device usage: %w", err)
		}
		if count >= policy.MaxUsesPerDevice {
			return s.denyLogged(ctx, req, student, session, hash, model.ReasonFingerprintBlocked, saltedHash)
		}
	}

	// 10. Commit. The conditional token update decides the winner under
	// concurrency; everything after it is idempotent bookkeeping.
	won, err := s.tokenSvc.MarkUsed(ctx, req.Token, hash)
	if err != nil {
		return CheckinResult{}, fmt.Errorf("failed to consume token: %w", err)
	}
	if !won {
		return s.denyLogged(ctx, req, student, session, hash, model.ReasonAlreadyUsed, saltedHash)
	}

	record := &model.AttendanceRecord{
		ID:              uuid.New().String(),
		Token:           req.Token,
		FingerprintHash: hash,
		StudentID:       student.ID,
		SessionID:       session.ID,
		Timestamp:       now,
	}
	if err := s.attendance.CreateRecord(ctx, record); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// A concurrent attempt committed between our reads and this
			// insert. Favor the false denial over a double admission.
			return s.denyLogged(ctx, req, student, session, hash, model.ReasonAlreadyCheckedIn, saltedHash)
		}
		return CheckinResult{}, fmt.Errorf("failed to write attendance record: %w", err)
	}

	rawSignals, _ := json.Marshal(req.Signals)
	if err := s.fingerprints.RecordUse(ctx, hash, string(rawSignals), now); err != nil {
		s.log.Error().Err(err).Str("session_id", session.ID).Msg("failed to update device fingerprint")
	}
	if err := s.students.IncrementPresent(ctx, student.ID); err != nil {
		s.log.Error().Err(err).Str("student_id", student.ID).Msg("failed to update attendance summary")
	}

	s.log.Info().
		Str("student_id", student.ID).
		Str("session_id", session.ID).
		Str("device", saltedHash).
		Msg("check-in committed")

	return CheckinResult{
		OK:              true,
		Message:         "Attendance recorded. You are checked in.",
		Record:          record,
		SaltedHash:      saltedHash,
		UniquenessScore: fingerprint.UniquenessScore(req.Signals),
	}, nil
}

func (s *CheckinService) deny(reason model.DenialReason, saltedHash string) CheckinResult {
	return CheckinResult{
		Reason:     reason,
		Message:    reason.Message(),
		SaltedHash: saltedHash,
	}
}

// denyLogged persists the denial as audit trail before returning it. A
// failed audit write is logged but never masks the denial itself.
func (s *CheckinService) denyLogged(ctx context.Context, req CheckinRequest, student *model.Student, session *model.Session, hash string, reason model.DenialReason, saltedHash string) (CheckinResult, error) {
	attempt := &model.DeniedAttempt{
		ID:              uuid.New().String(),
		Token:           req.Token,
		FingerprintHash: hash,
		StudentID:       req.StudentID,
		Reason:          reason.String(),
		Timestamp:       s.now(),
	}
	if student != nil {
		attempt.StudentName = student.Name
		attempt.Course = student.Course
	}
	sessionID := ""
	if session != nil {
		sessionID = session.ID
		attempt.SessionID = session.ID
	}

	if err := s.attendance.CreateDeniedAttempt(ctx, attempt); err != nil {
		s.log.Error().Err(err).Str("reason", reason.String()).Msg("failed to persist denied attempt")
	}
	s.log.Denial(reason.String(), req.StudentID, sessionID, saltedHash)

	return s.deny(reason, saltedHash), nil
}
