package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Xirnus/offline-attendance-system-sub000/internal/config"
	"github.com/Xirnus/offline-attendance-system-sub000/internal/model"
	"github.com/Xirnus/offline-attendance-system-sub000/internal/repository"
)

type fakePolicyStore struct {
	stored *model.PolicySettings
	getErr error
	saves  int
}

func (f *fakePolicyStore) Get(ctx context.Context) (*model.PolicySettings, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.stored == nil {
		return nil, repository.ErrNotFound
	}
	cp := *f.stored
	return &cp, nil
}

func (f *fakePolicyStore) Save(ctx context.Context, p model.PolicySettings) error {
	cp := p
	f.stored = &cp
	f.saves++
	return nil
}

func testPolicyConfig() config.PolicyConfig {
	return config.PolicyConfig{
		MaxUsesPerDevice:    1,
		TimeWindowMinutes:   1440,
		FingerprintBlocking: true,
	}
}

func TestPolicyGetDefaultsWhenUnset(t *testing.T) {
	svc := NewPolicyService(&fakePolicyStore{}, testPolicyConfig(), testLogger())

	got := svc.Get(context.Background())
	want := model.PolicySettings{MaxUsesPerDevice: 1, TimeWindowMinutes: 1440, FingerprintBlockingEnabled: true}
	if got != want {
		t.Errorf("Get() = %+v, want defaults %+v", got, want)
	}
}

func TestPolicyGetFailsOpen(t *testing.T) {
	store := &fakePolicyStore{getErr: errors.New("connection refused")}
	svc := NewPolicyService(store, testPolicyConfig(), testLogger())

	got := svc.Get(context.Background())
	if got != svc.defaults {
		t.Errorf("Get() = %+v, want defaults on storage failure", got)
	}
}

func TestPolicySetAndGet(t *testing.T) {
	ctx := context.Background()
	store := &fakePolicyStore{}
	svc := NewPolicyService(store, testPolicyConfig(), testLogger())

	next := model.PolicySettings{MaxUsesPerDevice: 3, TimeWindowMinutes: 60, FingerprintBlockingEnabled: false}
	if err := svc.Set(ctx, next); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if got := svc.Get(ctx); got != next {
		t.Errorf("Get() after Set = %+v, want %+v", got, next)
	}
}

func TestPolicySetRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	store := &fakePolicyStore{}
	svc := NewPolicyService(store, testPolicyConfig(), testLogger())

	invalid := []model.PolicySettings{
		{MaxUsesPerDevice: 0, TimeWindowMinutes: 60},
		{MaxUsesPerDevice: -1, TimeWindowMinutes: 60},
		{MaxUsesPerDevice: 1, TimeWindowMinutes: 0},
		{MaxUsesPerDevice: 1, TimeWindowMinutes: -5},
	}
	for _, p := range invalid {
		if err := svc.Set(ctx, p); !errors.Is(err, model.ErrInvalidPolicy) {
			t.Errorf("Set(%+v) error = %v, want ErrInvalidPolicy", p, err)
		}
	}
	if store.saves != 0 {
		t.Errorf("invalid updates reached storage %d times", store.saves)
	}
}
