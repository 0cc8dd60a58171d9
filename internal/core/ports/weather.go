package ports

import (
	"context"
	"time"

	"github.com/pogodka/weather-bot/internal/core/domain"
)

// WeatherResolver answers "what is the weather in this city right now",
// preferring a cached answer over a provider call. An error means the
// provider could not be reached or returned garbage; a report with a non-200
// code means the provider answered but does not know the city.
type WeatherResolver interface {
	Resolve(ctx context.Context, city string) (domain.WeatherReport, error)
}

// WeatherProvider is the upstream weather API. Fetch returns the raw response
// payload so successful lookups can be cached byte-for-byte; Decode turns a
// payload (fresh or cached) into a report.
type WeatherProvider interface {
	Fetch(ctx context.Context, city string) ([]byte, error)
	Decode(payload []byte) (domain.WeatherReport, error)
}

// WeatherCache stores provider payloads keyed by city for a bounded lifetime.
// Implementations own key normalization, so "Moscow" and "moscow" share an
// entry.
type WeatherCache interface {
	Get(ctx context.Context, city string) (payload []byte, ok bool, err error)
	Set(ctx context.Context, city string, payload []byte, ttl time.Duration) error
}
