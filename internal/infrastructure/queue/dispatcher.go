package queue

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/pogodka/weather-bot/internal/core/domain"
	"github.com/pogodka/weather-bot/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	upsertTimeout  = 5 * time.Second
)

// Dispatcher routes identity sightings to a fixed set of workers sharded by
// user ID, so one user's events are recorded in order while the reply path
// never waits on the database.
type Dispatcher struct {
	workers  []chan domain.Identity
	registry ports.UserRegistry
	log      zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, registry ports.UserRegistry, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:  make([]chan domain.Identity, numWorkers),
		registry: registry,
		log:      log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.Identity, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands an identity to the worker owning its shard. Non-blocking up
// to channelBuffer capacity.
func (d *Dispatcher) Enqueue(id domain.Identity) {
	d.workers[d.shardIndex(id.ID)] <- id
}

// shardIndex maps a user ID deterministically to a worker index.
func (d *Dispatcher) shardIndex(userID int64) int {
	return int(uint64(userID) % uint64(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, workerID int, ch <-chan domain.Identity) {
	for {
		select {
		case <-ctx.Done():
			return
		case id, ok := <-ch:
			if !ok {
				return
			}
			upsertCtx, cancel := context.WithTimeout(ctx, upsertTimeout)
			outcome := d.registry.Upsert(upsertCtx, id)
			cancel()
			if outcome == ports.UpsertFailed {
				d.log.Warn().Int64("user_id", id.ID).
					Int("worker_id", workerID).
					Msg("profile upsert reported failure")
			}
		}
	}
}
