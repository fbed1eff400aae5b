package tables

import (
	"context"
	"sync"
	"time"

	"github.com/ariefcatur/go-pos-tables/internal/orders"
	"github.com/rs/zerolog"
)

const draftWriteTimeout = 5 * time.Second

type pending struct {
	timer *time.Timer
	gen   uint64
}

// DraftSync keeps one trailing-edge timer per session. When a timer fires it
// asks for the session's current draft, so a burst of edits produces one
// write carrying the final state. Failed writes are logged, never retried.
type DraftSync struct {
	delay    time.Duration
	snapshot func(id string) (orders.Draft, bool)
	write    func(ctx context.Context, id string, d orders.Draft) error
	log      zerolog.Logger

	mu      sync.Mutex
	timers  map[string]pending
	gen     uint64
	closed  bool
	writers sync.WaitGroup
}

func NewDraftSync(
	delay time.Duration,
	snapshot func(id string) (orders.Draft, bool),
	write func(ctx context.Context, id string, d orders.Draft) error,
	log zerolog.Logger,
) *DraftSync {
	return &DraftSync{
		delay:    delay,
		snapshot: snapshot,
		write:    write,
		log:      log,
		timers:   map[string]pending{},
	}
}

// Schedule (re)starts the timer for id. It never blocks on I/O.
func (d *DraftSync) Schedule(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	if p, ok := d.timers[id]; ok {
		p.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timers[id] = pending{
		gen:   gen,
		timer: time.AfterFunc(d.delay, func() { d.fire(id, gen) }),
	}
}

// Cancel drops a pending write. A write already in flight still lands.
func (d *DraftSync) Cancel(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if p, ok := d.timers[id]; ok {
		p.timer.Stop()
		delete(d.timers, id)
	}
}

// Pending reports whether a write is scheduled for id.
func (d *DraftSync) Pending(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.timers[id]
	return ok
}

func (d *DraftSync) fire(id string, gen uint64) {
	d.mu.Lock()
	if p, ok := d.timers[id]; !ok || p.gen != gen {
		d.mu.Unlock()
		return
	}
	delete(d.timers, id)
	d.writers.Add(1)
	d.mu.Unlock()
	defer d.writers.Done()

	ctx, cancel := context.WithTimeout(context.Background(), draftWriteTimeout)
	defer cancel()
	d.flushOne(ctx, id)
}

func (d *DraftSync) flushOne(ctx context.Context, id string) {
	draft, ok := d.snapshot(id)
	if !ok {
		return
	}
	if err := d.write(ctx, id, draft); err != nil {
		d.log.Error().Err(err).Str("session_id", id).Msg("draft write failed")
		return
	}
	d.log.Debug().Str("session_id", id).Int("items", len(draft.Items)).Msg("draft saved")
}

// Flush writes every pending draft now and waits for writes already running.
func (d *DraftSync) Flush(ctx context.Context) {
	d.mu.Lock()
	ids := make([]string, 0, len(d.timers))
	for id, p := range d.timers {
		p.timer.Stop()
		ids = append(ids, id)
	}
	clear(d.timers)
	d.mu.Unlock()

	for _, id := range ids {
		d.flushOne(ctx, id)
	}
	d.writers.Wait()
}

// Close flushes and stops accepting new schedules.
func (d *DraftSync) Close(ctx context.Context) {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	d.Flush(ctx)
}
