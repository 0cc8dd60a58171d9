package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sethvargo/go-envconfig"
)

// Config holds every process setting, environment-sourced. Fields tagged
// required are checked up front: the bot must not start polling without them.
type Config struct {
	Env       string `env:"ENV,        default=development"`
	LogLevel  string `env:"LOG_LEVEL,  default=info"`
	LogFile   string `env:"LOG_FILE"`
	AdminPort string `env:"ADMIN_PORT, default=8080"`

	BotToken      string `env:"BOT_TOKEN" validate:"required"`
	UpsertWorkers int    `env:"UPSERT_WORKERS, default=4"`

	Weather  WeatherConfig
	Redis    RedisConfig
	Database DatabaseConfig
	Stats    StatsConfig
}

type WeatherConfig struct {
	APIKey   string        `env:"WEATHER_API_KEY" validate:"required"`
	BaseURL  string        `env:"WEATHER_BASE_URL"`
	Lang     string        `env:"WEATHER_LANG,      default=ru"`
	Timeout  time.Duration `env:"WEATHER_TIMEOUT,   default=10s"`
	CacheTTL time.Duration `env:"WEATHER_CACHE_TTL, default=600s"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type DatabaseConfig struct {
	URL      string `env:"DATABASE_URL" validate:"required"`
	MaxConns int32  `env:"DB_MAX_CONNS, default=10"`
	MinConns int32  `env:"DB_MIN_CONNS, default=2"`
}

type StatsConfig struct {
	Interval time.Duration `env:"STATS_INTERVAL, default=15m"`
}

// Load reads configuration from environment variables and validates required
// fields. An error here is fatal by contract: the caller must not serve
// traffic on a partial configuration.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			msgs := make([]string, 0, len(ve))
			for _, fe := range ve {
				msgs = append(msgs, fieldError(fe))
			}
			return nil, fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
		}
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// fieldError converts a single ValidationError into a human-readable message.
func fieldError(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}
