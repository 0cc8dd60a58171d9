package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pogodka/weather-bot/internal/core/domain"
)

func newTestClient() *http.Client {
	return &http.Client{Timeout: 2 * time.Second}
}

func TestOpenWeather_FetchSendsExpectedQuery(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery = map[string]string{
			"q":     q.Get("q"),
			"appid": q.Get("appid"),
			"units": q.Get("units"),
			"lang":  q.Get("lang"),
		}
		w.Write([]byte(`{"cod":200,"weather":[{"description":"облачно","icon":"04d"}],"main":{"temp":5.0,"feels_like":2.0}}`))
	}))
	defer srv.Close()

	ow := NewOpenWeather(newTestClient(), "secret", srv.URL, "")
	payload, err := ow.Fetch(context.Background(), "Nizhny Novgorod")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(payload) == 0 {
		t.Fatal("expected non-empty payload")
	}

	want := map[string]string{"q": "Nizhny Novgorod", "appid": "secret", "units": "metric", "lang": "ru"}
	for k, v := range want {
		if gotQuery[k] != v {
			t.Errorf("query param %s = %q, want %q", k, gotQuery[k], v)
		}
	}
}

func TestOpenWeather_DecodeSuccess(t *testing.T) {
	ow := NewOpenWeather(newTestClient(), "secret", "", "")
	payload := []byte(`{"cod":200,"weather":[{"description":"облачно","icon":"04d"}],"main":{"temp":5.0,"feels_like":2.0}}`)

	report, err := ow.Decode(payload)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if !report.Found() {
		t.Fatalf("expected success report, got code %d", report.Code)
	}
	if report.Description != "облачно" || report.IconID != "04d" {
		t.Errorf("unexpected weather fields: %+v", report)
	}
	if report.Temperature != 5.0 || report.FeelsLike != 2.0 {
		t.Errorf("unexpected temperatures: %+v", report)
	}
}

func TestOpenWeather_DecodeStringCodCityNotFound(t *testing.T) {
	ow := NewOpenWeather(newTestClient(), "secret", "", "")
	// OpenWeatherMap sends cod as a quoted string on errors.
	payload := []byte(`{"cod":"404","message":"city not found"}`)

	report, err := ow.Decode(payload)
	if err != nil {
		t.Fatalf("negative result must decode cleanly, got: %v", err)
	}
	if report.Found() {
		t.Fatalf("expected negative report, got %+v", report)
	}
	if report.Code != 404 {
		t.Errorf("expected code 404, got %d", report.Code)
	}
}

func TestOpenWeather_FetchReturns4xxBodyAsPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"cod":"404","message":"city not found"}`))
	}))
	defer srv.Close()

	ow := NewOpenWeather(newTestClient(), "secret", srv.URL, "")
	payload, err := ow.Fetch(context.Background(), "Nonexistentville")
	if err != nil {
		t.Fatalf("4xx carries a logical answer, not a transport failure: %v", err)
	}

	report, err := ow.Decode(payload)
	if err != nil {
		t.Fatalf("expected decodable payload, got: %v", err)
	}
	if report.Found() {
		t.Errorf("expected negative report, got %+v", report)
	}
}

func TestOpenWeather_ServerErrorIsProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	ow := NewOpenWeather(newTestClient(), "secret", srv.URL, "")
	_, err := ow.Fetch(context.Background(), "Moscow")

	if !errors.Is(err, domain.ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got: %v", err)
	}
}

func TestOpenWeather_UnreachableHostIsProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	ow := NewOpenWeather(newTestClient(), "secret", srv.URL, "")
	_, err := ow.Fetch(context.Background(), "Moscow")

	if !errors.Is(err, domain.ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got: %v", err)
	}
}

func TestOpenWeather_MissingAPIKeyFailsWithoutNetworkCall(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	ow := NewOpenWeather(newTestClient(), "", srv.URL, "")
	_, err := ow.Fetch(context.Background(), "Moscow")

	if !errors.Is(err, domain.ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got: %v", err)
	}
	if calls != 0 {
		t.Errorf("expected no network call without an api key, got %d", calls)
	}
}
