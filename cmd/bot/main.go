package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"

	"github.com/pogodka/weather-bot/internal/api"
	"github.com/pogodka/weather-bot/internal/bot"
	"github.com/pogodka/weather-bot/internal/core/service"
	"github.com/pogodka/weather-bot/internal/infrastructure/config"
	"github.com/pogodka/weather-bot/internal/infrastructure/db/postgres"
	redisdb "github.com/pogodka/weather-bot/internal/infrastructure/db/redis"
	"github.com/pogodka/weather-bot/internal/infrastructure/provider"
	"github.com/pogodka/weather-bot/internal/infrastructure/queue"
	"github.com/pogodka/weather-bot/internal/stats"
	"github.com/pogodka/weather-bot/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Missing required configuration is fatal: never start polling half-wired.
	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	logg, err := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
		File:   cfg.LogFile,
	})
	if err != nil {
		log.Fatalf("logger setup failed: %v", err)
	}

	// --- External stores ---
	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		logg.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()

	pool, err := postgres.Connect(ctx, postgres.Config{
		URL:      cfg.Database.URL,
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		logg.Fatal().Err(err).Msg("postgres connection failed")
	}
	defer pool.Close()

	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		logg.Fatal().Err(err).Msg("schema bootstrap failed")
	}

	// --- User registry (fire-and-forget behind the dispatcher) ---
	store := postgres.NewProfileStore(pool)
	registry := service.NewRegistryService(store, nil, logg)
	dispatcher := queue.NewDispatcher(cfg.UpsertWorkers, registry, logg)
	dispatcher.Start(ctx)

	// --- Weather resolution ---
	httpClient := &http.Client{Timeout: cfg.Weather.Timeout}
	openWeather := provider.NewOpenWeather(httpClient, cfg.Weather.APIKey, cfg.Weather.BaseURL, cfg.Weather.Lang)
	cache := redisdb.NewWeatherCache(rdb)
	resolver := service.NewWeatherService(cache, openWeather, cfg.Weather.CacheTTL, logg)

	// --- Profile stats gauges ---
	collector := stats.New(store, cfg.Stats.Interval, logg)
	if err := collector.Start(); err != nil {
		logg.Fatal().Err(err).Msg("stats collector failed to start")
	}
	defer collector.Stop()

	// --- Admin surface ---
	admin := api.NewRouter(rdb, pool)
	go func() {
		if err := admin.Start(":" + cfg.AdminPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error().Err(err).Msg("admin server stopped")
		}
	}()

	// --- Telegram long polling ---
	botAPI, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		logg.Fatal().Err(err).Msg("telegram authorization failed")
	}
	logg.Info().Str("username", botAPI.Self.UserName).Msg("authorized on telegram")

	updateCfg := tgbotapi.NewUpdate(0)
	updateCfg.Timeout = 30
	updates := botAPI.GetUpdatesChan(updateCfg)

	handler := bot.NewHandler(botAPI, resolver, dispatcher, logg)
	go handler.Run(ctx, updates)
	logg.Info().Msg("weather bot started")

	<-ctx.Done()
	logg.Info().Msg("shutting down")

	botAPI.StopReceivingUpdates()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := admin.Shutdown(shutdownCtx); err != nil {
		logg.Error().Err(err).Msg("admin server shutdown failed")
	}
}
