package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/pogodka/weather-bot/internal/api/metrics"
	"github.com/pogodka/weather-bot/internal/core/domain"
	"github.com/pogodka/weather-bot/internal/core/ports"
)

type registryService struct {
	store ports.ProfileStore
	now   func() time.Time
	log   zerolog.Logger
}

// NewRegistryService returns a UserRegistry writing through the given store.
// The clock is injectable for tests; pass nil for time.Now.
func NewRegistryService(store ports.ProfileStore, now func() time.Time, log zerolog.Logger) ports.UserRegistry {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &registryService{store: store, now: now, log: log}
}

// Upsert records a sighting of an identity: insert on first sight, otherwise
// advance last_activity and merge the non-empty identity fields.
//
// This is best-effort telemetry. Every failure is rolled back, logged, and
// reported as UpsertFailed — nothing propagates to the event handler, and the
// bot replies to the user regardless. A primary-key collision from two
// concurrent first sightings is accepted as one-caller-wins, no retry.
func (s *registryService) Upsert(ctx context.Context, id domain.Identity) ports.UpsertOutcome {
	outcome := ports.UpsertFailed

	err := s.store.InTx(ctx, func(tx ports.ProfileTx) error {
		existing, err := tx.Find(ctx, id.ID)
		switch {
		case errors.Is(err, domain.ErrProfileNotFound):
			if err := tx.Insert(ctx, domain.NewProfile(id, s.now())); err != nil {
				return err
			}
			outcome = ports.UpsertCreated
		case err != nil:
			return err
		default:
			existing.ApplyIdentity(id, s.now())
			if err := tx.Update(ctx, existing); err != nil {
				return err
			}
			outcome = ports.UpsertUpdated
		}
		return nil
	})

	if err != nil {
		outcome = ports.UpsertFailed
		if errors.Is(err, domain.ErrProfileExists) {
			// Lost the first-sight race; the winner's row is the one we wanted.
			s.log.Debug().Int64("user_id", id.ID).Msg("profile insert lost creation race")
		} else {
			s.log.Error().Err(err).Int64("user_id", id.ID).Msg("profile upsert failed")
		}
	} else {
		s.log.Debug().Int64("user_id", id.ID).Str("outcome", string(outcome)).Msg("profile upsert done")
	}

	metrics.ProfileUpsertsTotal.WithLabelValues(string(outcome)).Inc()
	return outcome
}
