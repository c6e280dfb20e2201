// Package autosave defers note saves until editing pauses.
package autosave

import (
	"context"
	"sync"
	"time"

	"github.com/atinyakov/NoteKeeper/internal/clock"
	"github.com/atinyakov/NoteKeeper/internal/models"
	"go.uber.org/zap"
)

// DefaultDelay is the pause after the last edit before a save runs.
const DefaultDelay = 2 * time.Second

// Flusher persists a patch.
type Flusher func(ctx context.Context, patch models.NotePatch) error

// Debouncer holds at most one pending save. Every Schedule replaces the
// pending patch and restarts the delay. A failed save keeps its patch and is
// retried one delay later unless a newer edit replaced it.
type Debouncer struct {
	ctx   context.Context
	clock clock.Clock
	delay time.Duration
	flush Flusher
	log   *zap.Logger

	flushMu sync.Mutex

	mu      sync.Mutex
	pending *models.NotePatch
	timer   clock.Timer
	gen     uint64
	closed  bool
}

// New returns a Debouncer. Timer-driven saves run with ctx.
func New(ctx context.Context, clk clock.Clock, delay time.Duration, flush Flusher, log *zap.Logger) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Debouncer{ctx: ctx, clock: clk, delay: delay, flush: flush, log: log}
}

// Schedule replaces the pending patch and restarts the delay.
func (d *Debouncer) Schedule(patch models.NotePatch) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return
	}
	d.pending = &patch
	d.armLocked()
}

func (d *Debouncer) armLocked() {
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = d.clock.AfterFunc(d.delay, func() { d.fire(gen) })
}

func (d *Debouncer) take() *models.NotePatch {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
	p := d.pending
	d.pending = nil
	return p
}

// restore puts a failed patch back unless a newer one arrived.
func (d *Debouncer) restore(p *models.NotePatch, rearm bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed || d.pending != nil {
		return
	}
	d.pending = p
	if rearm {
		d.armLocked()
	}
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || d.closed || d.pending == nil {
		d.mu.Unlock()
		return
	}
	p := d.take()
	d.mu.Unlock()

	d.flushMu.Lock()
	err := d.flush(d.ctx, *p)
	d.flushMu.Unlock()
	if err != nil {
		d.log.Warn("auto-save failed, will retry", zap.Error(err))
		d.restore(p, true)
	}
}

// FlushNow saves the pending patch immediately, bypassing the delay. It is a
// no-op when nothing is pending.
func (d *Debouncer) FlushNow(ctx context.Context) error {
	d.mu.Lock()
	p := d.take()
	d.mu.Unlock()
	if p == nil {
		return nil
	}

	d.flushMu.Lock()
	err := d.flush(ctx, *p)
	d.flushMu.Unlock()
	if err != nil {
		d.restore(p, false)
		return err
	}
	return nil
}

// Cancel drops the pending patch.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.take()
}

// Close drops the pending patch and ignores later calls to Schedule.
func (d *Debouncer) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.take()
	d.closed = true
}

// Pending reports whether an unsaved patch is waiting.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}
