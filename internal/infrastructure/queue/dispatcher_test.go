package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/pogodka/weather-bot/internal/core/domain"
	"github.com/pogodka/weather-bot/internal/core/ports"
)

type recordingRegistry struct {
	mu   sync.Mutex
	seen []int64
	wg   sync.WaitGroup
}

func (r *recordingRegistry) Upsert(_ context.Context, id domain.Identity) ports.UpsertOutcome {
	r.mu.Lock()
	r.seen = append(r.seen, id.ID)
	r.mu.Unlock()
	r.wg.Done()
	return ports.UpsertUpdated
}

func TestDispatcher_DeliversEveryEnqueuedIdentity(t *testing.T) {
	reg := &recordingRegistry{}
	reg.wg.Add(10)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d := NewDispatcher(3, reg, zerolog.Nop())
	d.Start(ctx)

	for i := int64(1); i <= 10; i++ {
		d.Enqueue(domain.Identity{ID: i})
	}

	done := make(chan struct{})
	go func() {
		reg.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for upserts to be processed")
	}

	if len(reg.seen) != 10 {
		t.Errorf("expected 10 upserts, got %d", len(reg.seen))
	}
}

func TestDispatcher_ShardIsStablePerUser(t *testing.T) {
	d := NewDispatcher(4, &recordingRegistry{}, zerolog.Nop())

	for _, id := range []int64{1, 42, 1<<40 + 7} {
		first := d.shardIndex(id)
		for i := 0; i < 5; i++ {
			if got := d.shardIndex(id); got != first {
				t.Fatalf("shard for %d changed: %d vs %d", id, first, got)
			}
		}
	}
}
