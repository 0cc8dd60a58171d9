// Package stats keeps the profile gauges fresh. It is observability only:
// failures are logged and the next tick tries again.
package stats

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"

	"github.com/pogodka/weather-bot/internal/api/metrics"
)

const collectTimeout = 10 * time.Second

// ProfileCounter is the slice of the profile store the collector reads.
type ProfileCounter interface {
	CountProfiles(ctx context.Context) (int64, error)
	CountActiveSince(ctx context.Context, cutoff time.Time) (int64, error)
}

// Collector periodically refreshes the registered/active profile gauges.
type Collector struct {
	scheduler *gocron.Scheduler
	counter   ProfileCounter
	interval  time.Duration
	log       zerolog.Logger
}

// New creates a Collector ticking every interval.
func New(counter ProfileCounter, interval time.Duration, log zerolog.Logger) *Collector {
	return &Collector{
		scheduler: gocron.NewScheduler(time.UTC),
		counter:   counter,
		interval:  interval,
		log:       log,
	}
}

// Start schedules the periodic refresh and runs one immediately so the gauges
// are populated right after boot.
func (c *Collector) Start() error {
	minutes := int(c.interval.Minutes())
	if minutes <= 0 {
		minutes = 15
	}

	if _, err := c.scheduler.Every(minutes).Minutes().Do(c.collect); err != nil {
		return err
	}

	c.scheduler.StartAsync()
	go c.collect()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (c *Collector) Stop() {
	if c.scheduler != nil {
		c.scheduler.Stop()
	}
}

func (c *Collector) collect() {
	ctx, cancel := context.WithTimeout(context.Background(), collectTimeout)
	defer cancel()

	total, err := c.counter.CountProfiles(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("failed to count profiles")
		return
	}
	active, err := c.counter.CountActiveSince(ctx, time.Now().UTC().Add(-24*time.Hour))
	if err != nil {
		c.log.Warn().Err(err).Msg("failed to count active profiles")
		return
	}

	metrics.ProfilesRegistered.Set(float64(total))
	metrics.ProfilesActive24h.Set(float64(active))
	c.log.Debug().Int64("total", total).Int64("active_24h", active).Msg("profile stats refreshed")
}
