package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/pogodka/weather-bot/internal/core/domain"
	"github.com/pogodka/weather-bot/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

// stubStore is an in-memory ProfileStore with fake rollback semantics: fn's
// writes only stick when fn returns nil.
type stubStore struct {
	rows      map[int64]domain.UserProfile
	findErr   error
	insertErr error
	updateErr error
	txErr     error
}

func newStubStore() *stubStore {
	return &stubStore{rows: make(map[int64]domain.UserProfile)}
}

func (s *stubStore) InTx(ctx context.Context, fn func(tx ports.ProfileTx) error) error {
	if s.txErr != nil {
		return s.txErr
	}
	staged := make(map[int64]domain.UserProfile, len(s.rows))
	for k, v := range s.rows {
		staged[k] = v
	}
	if err := fn(&stubTx{store: s, staged: staged}); err != nil {
		return err
	}
	s.rows = staged
	return nil
}

type stubTx struct {
	store  *stubStore
	staged map[int64]domain.UserProfile
}

func (t *stubTx) Find(_ context.Context, id int64) (*domain.UserProfile, error) {
	if t.store.findErr != nil {
		return nil, t.store.findErr
	}
	row, ok := t.staged[id]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	return &row, nil
}

func (t *stubTx) Insert(_ context.Context, p *domain.UserProfile) error {
	if t.store.insertErr != nil {
		return t.store.insertErr
	}
	if _, ok := t.staged[p.ID]; ok {
		return domain.ErrProfileExists
	}
	t.staged[p.ID] = *p
	return nil
}

func (t *stubTx) Update(_ context.Context, p *domain.UserProfile) error {
	if t.store.updateErr != nil {
		return t.store.updateErr
	}
	t.staged[p.ID] = *p
	return nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestRegistry_FirstSightCreatesRow(t *testing.T) {
	store := newStubStore()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	reg := NewRegistryService(store, fixedClock(now), zerolog.Nop())
	outcome := reg.Upsert(context.Background(), domain.Identity{ID: 42, Username: "timur"})

	if outcome != ports.UpsertCreated {
		t.Fatalf("expected created, got %s", outcome)
	}
	row, ok := store.rows[42]
	if !ok {
		t.Fatal("expected row stored for id 42")
	}
	if !row.RegistrationDate.Equal(now) || !row.LastActivity.Equal(now) {
		t.Errorf("expected both timestamps %v, got %+v", now, row)
	}
}

func TestRegistry_SecondUpsertKeepsRegistrationDate(t *testing.T) {
	store := newStubStore()
	first := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)

	reg := NewRegistryService(store, fixedClock(first), zerolog.Nop())
	reg.Upsert(context.Background(), domain.Identity{ID: 42, Username: "timur"})

	reg = NewRegistryService(store, fixedClock(second), zerolog.Nop())
	outcome := reg.Upsert(context.Background(), domain.Identity{ID: 42})

	if outcome != ports.UpsertUpdated {
		t.Fatalf("expected updated, got %s", outcome)
	}
	if len(store.rows) != 1 {
		t.Fatalf("expected exactly one row, got %d", len(store.rows))
	}
	row := store.rows[42]
	if !row.RegistrationDate.Equal(first) {
		t.Errorf("registration date must be write-once, got %v", row.RegistrationDate)
	}
	if !row.LastActivity.Equal(second) {
		t.Errorf("expected last activity advanced to %v, got %v", second, row.LastActivity)
	}
	if row.Username != "timur" {
		t.Errorf("empty username must not erase stored value, got %q", row.Username)
	}
}

func TestRegistry_InsertRaceIsSwallowed(t *testing.T) {
	store := newStubStore()
	store.insertErr = domain.ErrProfileExists

	reg := NewRegistryService(store, nil, zerolog.Nop())
	outcome := reg.Upsert(context.Background(), domain.Identity{ID: 42})

	if outcome != ports.UpsertFailed {
		t.Fatalf("expected failed outcome on lost race, got %s", outcome)
	}
	if len(store.rows) != 0 {
		t.Errorf("losing transaction must be rolled back")
	}
}

func TestRegistry_StoreFailureNeverPanicsOrPropagates(t *testing.T) {
	store := newStubStore()
	store.txErr = errors.New("connection reset")

	reg := NewRegistryService(store, nil, zerolog.Nop())
	outcome := reg.Upsert(context.Background(), domain.Identity{ID: 42})

	if outcome != ports.UpsertFailed {
		t.Fatalf("expected failed outcome, got %s", outcome)
	}
}

func TestRegistry_UpdateFailureRollsBack(t *testing.T) {
	store := newStubStore()
	store.rows[42] = domain.UserProfile{ID: 42, Username: "timur"}
	store.updateErr = errors.New("disk full")

	reg := NewRegistryService(store, nil, zerolog.Nop())
	outcome := reg.Upsert(context.Background(), domain.Identity{ID: 42, Username: "renamed"})

	if outcome != ports.UpsertFailed {
		t.Fatalf("expected failed outcome, got %s", outcome)
	}
	if store.rows[42].Username != "timur" {
		t.Errorf("failed update must not leak partial writes, got %q", store.rows[42].Username)
	}
}
