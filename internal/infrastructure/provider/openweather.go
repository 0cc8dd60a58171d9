// Package provider implements the OpenWeatherMap client used by the weather
// resolver.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/pogodka/weather-bot/internal/core/domain"
)

const defaultBaseURL = "https://api.openweathermap.org/data/2.5/weather"

// OpenWeather fetches current conditions from OpenWeatherMap. Requests go
// through a circuit breaker: once the upstream has been failing for a while,
// further calls fail fast without a network round trip.
type OpenWeather struct {
	apiKey  string
	baseURL string
	lang    string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

// NewOpenWeather builds the client. An empty baseURL selects the production
// endpoint; tests point it at a local server. The caller-supplied http.Client
// carries the request timeout.
func NewOpenWeather(client *http.Client, apiKey, baseURL, lang string) *OpenWeather {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if lang == "" {
		lang = "ru"
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openweather",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})
	return &OpenWeather{
		apiKey:  apiKey,
		baseURL: baseURL,
		lang:    lang,
		client:  client,
		circuit: cb,
	}
}

// Fetch returns the raw response body for a city lookup.
//
// OpenWeatherMap mirrors its logical status into the HTTP status (an unknown
// city is an HTTP 404 with a JSON body), so 4xx responses are returned as
// payloads for Decode to interpret. Network failures, timeouts, 5xx responses
// and an open circuit all wrap domain.ErrProviderUnavailable.
func (p *OpenWeather) Fetch(ctx context.Context, city string) ([]byte, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("%w: api key is not configured", domain.ErrProviderUnavailable)
	}

	values := url.Values{}
	values.Set("q", city)
	values.Set("appid", p.apiKey)
	values.Set("units", "metric")
	values.Set("lang", p.lang)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+values.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	result, err := p.circuit.Execute(func() (interface{}, error) {
		resp, err := p.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, fmt.Errorf("upstream status %d", resp.StatusCode)
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read body: %w", err)
		}
		return body, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: circuit open: %v", domain.ErrProviderUnavailable, err)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrProviderUnavailable, err)
	}

	body, ok := result.([]byte)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected circuit result type", domain.ErrProviderUnavailable)
	}
	return body, nil
}

// Decode parses an OpenWeatherMap payload into a report. Negative answers
// (cod != 200) decode successfully with whatever fields the provider sent.
func (p *OpenWeather) Decode(payload []byte) (domain.WeatherReport, error) {
	var body struct {
		Cod     statusCode `json:"cod"`
		Weather []struct {
			Description string `json:"description"`
			Icon        string `json:"icon"`
		} `json:"weather"`
		Main struct {
			Temp      float64 `json:"temp"`
			FeelsLike float64 `json:"feels_like"`
		} `json:"main"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return domain.WeatherReport{}, fmt.Errorf("decode payload: %w", err)
	}

	report := domain.WeatherReport{
		Code:        int(body.Cod),
		Temperature: body.Main.Temp,
		FeelsLike:   body.Main.FeelsLike,
	}
	if len(body.Weather) > 0 {
		report.Description = body.Weather[0].Description
		report.IconID = body.Weather[0].Icon
	}
	return report, nil
}

// statusCode tolerates OpenWeatherMap's cod field arriving as a JSON number
// on success and a quoted string on errors.
type statusCode int

func (c *statusCode) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("status code %q is not numeric", s)
	}
	*c = statusCode(n)
	return nil
}
