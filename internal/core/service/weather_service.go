package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/pogodka/weather-bot/internal/api/metrics"
	"github.com/pogodka/weather-bot/internal/core/domain"
	"github.com/pogodka/weather-bot/internal/core/ports"
)

// DefaultCacheTTL bounds how stale a cached weather report may get. Ten
// minutes is a freshness/cost tradeoff, not a correctness requirement.
const DefaultCacheTTL = 600 * time.Second

type weatherService struct {
	cache    ports.WeatherCache
	provider ports.WeatherProvider
	ttl      time.Duration
	log      zerolog.Logger
}

// NewWeatherService returns a WeatherResolver that serves from the cache when
// it can and falls back to the provider. If ttl <= 0, DefaultCacheTTL is used.
func NewWeatherService(
	cache ports.WeatherCache,
	provider ports.WeatherProvider,
	ttl time.Duration,
	log zerolog.Logger,
) ports.WeatherResolver {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &weatherService{
		cache:    cache,
		provider: provider,
		ttl:      ttl,
		log:      log,
	}
}

// Resolve returns the current weather for a city, cache first.
//
// Only provider-success payloads are ever cached: a negative answer ("city
// not found") is returned as-is and recomputed on every request, so a typo
// never poisons the cache for ten minutes.
func (s *weatherService) Resolve(ctx context.Context, city string) (domain.WeatherReport, error) {
	// 1. Cache lookup. A broken cache degrades to a provider call, never to
	// a user-visible failure.
	payload, ok, err := s.cache.Get(ctx, city)
	if err != nil {
		metrics.CacheLookupsTotal.WithLabelValues("error").Inc()
		s.log.Warn().Err(err).Str("city", city).Msg("cache lookup failed, fetching anyway")
	} else if ok {
		report, decErr := s.provider.Decode(payload)
		if decErr == nil {
			metrics.CacheLookupsTotal.WithLabelValues("hit").Inc()
			s.log.Debug().Str("city", city).Msg("weather served from cache")
			return report, nil
		}
		metrics.CacheLookupsTotal.WithLabelValues("error").Inc()
		s.log.Warn().Err(decErr).Str("city", city).Msg("corrupt cache entry, refetching")
	} else {
		metrics.CacheLookupsTotal.WithLabelValues("miss").Inc()
	}

	// 2. Provider fetch. Transport failures, timeouts, and an open circuit
	// all surface as ErrProviderUnavailable.
	payload, err = s.provider.Fetch(ctx, city)
	if err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues("error").Inc()
		s.log.Error().Err(err).Str("city", city).Msg("weather provider fetch failed")
		return domain.WeatherReport{}, fmt.Errorf("resolve weather for %q: %w", city, err)
	}

	report, err := s.provider.Decode(payload)
	if err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues("error").Inc()
		s.log.Error().Err(err).Str("city", city).Msg("weather provider returned malformed payload")
		return domain.WeatherReport{}, fmt.Errorf("resolve weather for %q: %w: %v", city, domain.ErrProviderUnavailable, err)
	}

	if !report.Found() {
		metrics.ProviderRequestsTotal.WithLabelValues("not_found").Inc()
		s.log.Info().Str("city", city).Int("code", report.Code).Msg("provider does not know this city")
		return report, nil
	}

	metrics.ProviderRequestsTotal.WithLabelValues("ok").Inc()

	// 3. Cache the raw success payload. Writes are idempotent, a failed
	// write only costs a future provider call.
	if err := s.cache.Set(ctx, city, payload, s.ttl); err != nil {
		s.log.Warn().Err(err).Str("city", city).Msg("failed to cache weather payload")
	}

	return report, nil
}
