package ports

import (
	"context"

	"github.com/pogodka/weather-bot/internal/core/domain"
)

// UpsertOutcome reports what an Upsert call actually did. The registry is
// best-effort telemetry: it never returns an error, it returns an outcome the
// caller (and tests) can inspect.
type UpsertOutcome string

const (
	UpsertCreated UpsertOutcome = "created"
	UpsertUpdated UpsertOutcome = "updated"
	UpsertFailed  UpsertOutcome = "failed"
)

// UserRegistry records identity sightings. Failures are logged and swallowed;
// the inbound event flow must never be aborted by a registry problem.
type UserRegistry interface {
	Upsert(ctx context.Context, id domain.Identity) UpsertOutcome
}

// ProfileTx is the set of row operations available inside one transaction.
type ProfileTx interface {
	// Find returns domain.ErrProfileNotFound when no row exists for id.
	Find(ctx context.Context, id int64) (*domain.UserProfile, error)
	// Insert returns domain.ErrProfileExists on a primary-key collision.
	Insert(ctx context.Context, p *domain.UserProfile) error
	Update(ctx context.Context, p *domain.UserProfile) error
}

// ProfileStore scopes profile access to a transaction per call. InTx commits
// when fn returns nil and rolls back otherwise.
type ProfileStore interface {
	InTx(ctx context.Context, fn func(tx ProfileTx) error) error
}
