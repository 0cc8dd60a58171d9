// Package api exposes the bot's admin surface: health probes and the
// Prometheus scrape endpoint. The user-facing surface is the Telegram
// long-poll loop, not HTTP.
package api

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(rdb *redis.Client, pool *pgxpool.Pool) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("weatherbot_admin"))

	// --- Health probes ---
	healthHandler := NewHealthHandler()
	readinessHandler := NewReadinessHandler(
		DependencyCheck{Name: "redis", Check: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}},
		DependencyCheck{Name: "postgres", Check: func(ctx context.Context) error {
			return pool.Ping(ctx)
		}},
	)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?

	// --- Metrics scrape ---
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
