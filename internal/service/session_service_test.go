package service

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSessionCreateValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewSessionService(newFakeSessionRepo(), testLogger())
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	if _, err := svc.Create(ctx, CreateSessionRequest{Name: "", StartTime: start}); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("Create() without name error = %v, want ErrInvalidSession", err)
	}
	if _, err := svc.Create(ctx, CreateSessionRequest{
		Name:      "Lecture",
		StartTime: start,
		EndTime:   start.Add(-time.Hour),
	}); !errors.Is(err, ErrInvalidSession) {
		t.Errorf("Create() with inverted times error = %v, want ErrInvalidSession", err)
	}
}

func TestSessionSingleActive(t *testing.T) {
	ctx := context.Background()
	svc := NewSessionService(newFakeSessionRepo(), testLogger())
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	first, err := svc.Create(ctx, CreateSessionRequest{
		Name:      "Morning",
		StartTime: start,
		EndTime:   start.Add(2 * time.Hour),
		Activate:  true,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	second, err := svc.Create(ctx, CreateSessionRequest{
		Name:      "Afternoon",
		StartTime: start.Add(4 * time.Hour),
		EndTime:   start.Add(6 * time.Hour),
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	current, err := svc.Current(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if current == nil || current.ID != first.ID {
		t.Fatalf("Current() = %+v, want %s", current, first.ID)
	}

	// Activating the second session displaces the first.
	if err := svc.Activate(ctx, second.ID); err != nil {
		t.Fatalf("Activate() error = %v", err)
	}
	current, err = svc.Current(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if current == nil || current.ID != second.ID {
		t.Fatalf("Current() after switch = %+v, want %s", current, second.ID)
	}

	sessions, err := svc.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	active := 0
	for _, s := range sessions {
		if s.IsActive {
			active++
		}
	}
	if active != 1 {
		t.Errorf("%d active sessions, want exactly 1", active)
	}
}

func TestSessionDeactivate(t *testing.T) {
	ctx := context.Background()
	svc := NewSessionService(newFakeSessionRepo(), testLogger())
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	session, err := svc.Create(ctx, CreateSessionRequest{
		Name:      "Morning",
		StartTime: start,
		EndTime:   start.Add(2 * time.Hour),
		Activate:  true,
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.Deactivate(ctx, session.ID); err != nil {
		t.Fatalf("Deactivate() error = %v", err)
	}
	current, err := svc.Current(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if current != nil {
		t.Errorf("Current() = %+v after deactivation, want nil", current)
	}
}

func TestSessionActivateUnknown(t *testing.T) {
	svc := NewSessionService(newFakeSessionRepo(), testLogger())

	if err := svc.Activate(context.Background(), "missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Activate() error = %v, want ErrSessionNotFound", err)
	}
	if err := svc.Deactivate(context.Background(), "missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Deactivate() error = %v, want ErrSessionNotFound", err)
	}
}
