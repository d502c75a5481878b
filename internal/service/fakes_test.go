package service

import (
	"context"
	"sync"
	"time"

	"github.com/Xirnus/offline-attendance-system-sub000/internal/logger"
	"github.com/Xirnus/offline-attendance-system-sub000/internal/model"
	"github.com/Xirnus/offline-attendance-system-sub000/internal/repository"
	"github.com/rs/zerolog"
)

func testLogger() *logger.Logger {
	return &logger.Logger{Logger: zerolog.Nop()}
}

// fakeTokenStore is an in-memory TokenStore whose conditional updates are
// atomic under one mutex, mirroring the row-level guarantees of the real
// database.
type fakeTokenStore struct {
	mu     sync.Mutex
	tokens map[string]*model.Token
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{tokens: make(map[string]*model.Token)}
}

func (f *fakeTokenStore) Create(ctx context.Context, token *model.Token) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tokens[token.Value]; ok {
		return repository.ErrDuplicate
	}
	cp := *token
	f.tokens[token.Value] = &cp
	return nil
}

func (f *fakeTokenStore) GetByValue(ctx context.Context, value string) (*model.Token, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	token, ok := f.tokens[value]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *token
	return &cp, nil
}

func (f *fakeTokenStore) BindOpen(ctx context.Context, value, deviceSignature string, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	token, ok := f.tokens[value]
	if !ok || token.Opened {
		return false, nil
	}
	token.Opened = true
	token.OpenedAt = &at
	token.DeviceSignature = &deviceSignature
	return true, nil
}

func (f *fakeTokenStore) MarkUsed(ctx context.Context, value, fingerprintHash string, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	token, ok := f.tokens[value]
	if !ok || token.Used {
		return false, nil
	}
	token.Used = true
	token.UsedAt = &at
	token.FingerprintHash = &fingerprintHash
	return true, nil
}

// fakeSessionRepo implements SessionRepo over a map.
type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*model.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*model.Session)}
}

func (f *fakeSessionRepo) Create(ctx context.Context, session *model.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.sessions[session.ID]; ok {
		return repository.ErrDuplicate
	}
	cp := *session
	f.sessions[session.ID] = &cp
	return nil
}

func (f *fakeSessionRepo) GetByID(ctx context.Context, id string) (*model.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *session
	return &cp, nil
}

func (f *fakeSessionRepo) GetActive(ctx context.Context) (*model.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, session := range f.sessions {
		if session.IsActive {
			cp := *session
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeSessionRepo) Activate(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.sessions[id]; !ok {
		return repository.ErrNotFound
	}
	for _, session := range f.sessions {
		session.IsActive = false
	}
	f.sessions[id].IsActive = true
	return nil
}

func (f *fakeSessionRepo) Deactivate(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessions[id]
	if !ok {
		return repository.ErrNotFound
	}
	session.IsActive = false
	return nil
}

func (f *fakeSessionRepo) List(ctx context.Context) ([]model.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Session, 0, len(f.sessions))
	for _, session := range f.sessions {
		out = append(out, *session)
	}
	return out, nil
}

// fakeStudentStore implements StudentStore over a map.
type fakeStudentStore struct {
	mu       sync.Mutex
	students map[string]*model.Student
}

func newFakeStudentStore(students ...*model.Student) *fakeStudentStore {
	f := &fakeStudentStore{students: make(map[string]*model.Student)}
	for _, s := range students {
		cp := *s
		f.students[s.ID] = &cp
	}
	return f
}

func (f *fakeStudentStore) GetByID(ctx context.Context, id string) (*model.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	student, ok := f.students[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *student
	return &cp, nil
}

func (f *fakeStudentStore) IncrementPresent(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if student, ok := f.students[id]; ok {
		student.PresentCount++
	}
	return nil
}

// fakeAttendanceStore enforces the same unique keys as the real table.
type fakeAttendanceStore struct {
	mu      sync.Mutex
	records []model.AttendanceRecord
	denied  []model.DeniedAttempt
}

func (f *fakeAttendanceStore) CreateRecord(ctx context.Context, rec *model.AttendanceRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.records {
		if existing.Token == rec.Token {
			return repository.ErrDuplicate
		}
		if existing.SessionID == rec.SessionID && existing.StudentID == rec.StudentID {
			return repository.ErrDuplicate
		}
	}
	f.records = append(f.records, *rec)
	return nil
}

func (f *fakeAttendanceStore) FingerprintUsedInSession(ctx context.Context, sessionID, fingerprintHash string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rec := range f.records {
		if rec.SessionID == sessionID && rec.FingerprintHash == fingerprintHash {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeAttendanceStore) GetStudentRecord(ctx context.Context, sessionID, studentID string) (*model.AttendanceRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rec := range f.records {
		if rec.SessionID == sessionID && rec.StudentID == studentID {
			cp := rec
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeAttendanceStore) CountFingerprintSince(ctx context.Context, fingerprintHash string, since time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, rec := range f.records {
		if rec.FingerprintHash == fingerprintHash && !rec.Timestamp.Before(since) {
			count++
		}
	}
	return count, nil
}

func (f *fakeAttendanceStore) CreateDeniedAttempt(ctx context.Context, attempt *model.DeniedAttempt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.denied = append(f.denied, *attempt)
	return nil
}

func (f *fakeAttendanceStore) deniedReasons() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	reasons := make([]string, 0, len(f.denied))
	for _, a := range f.denied {
		reasons = append(reasons, a.Reason)
	}
	return reasons
}

// fakeFingerprintStore counts usage per hash.
type fakeFingerprintStore struct {
	mu     sync.Mutex
	counts map[string]int
}

func newFakeFingerprintStore() *fakeFingerprintStore {
	return &fakeFingerprintStore{counts: make(map[string]int)}
}

func (f *fakeFingerprintStore) RecordUse(ctx context.Context, hash, rawSignals string, seenAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts[hash]++
	return nil
}

// fixedPolicy returns a constant policy.
type fixedPolicy struct {
	settings model.PolicySettings
}

func (p fixedPolicy) Get(ctx context.Context) model.PolicySettings {
	return p.settings
}
