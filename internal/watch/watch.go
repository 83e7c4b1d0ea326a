// Package watch polls the market engine and reports status transitions.
package watch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"nyseclock/internal/domain"
	"nyseclock/internal/market"
	"nyseclock/internal/store"
)

// DefaultInterval matches a once-a-second display refresh.
const DefaultInterval = time.Second

// Notifier receives every detected transition with the snapshot that
// revealed it.
type Notifier interface {
	Notify(tr domain.Transition, snap domain.Snapshot)
}

// Watcher compares consecutive snapshots and records a transition whenever
// the status or the non-trading reason changes.
type Watcher struct {
	engine    *market.Engine
	journal   store.TransitionStore // optional
	notifiers []Notifier
	interval  time.Duration
	now       func() time.Time
	log       *slog.Logger

	mu   sync.Mutex
	last *domain.Snapshot
}

// Config configures a Watcher.
type Config struct {
	Interval time.Duration
	Journal  store.TransitionStore
	// Now defaults to time.Now.
	Now    func() time.Time
	Logger *slog.Logger
}

// New creates a Watcher over engine that reports to the given notifiers.
func New(engine *market.Engine, cfg Config, notifiers ...Notifier) *Watcher {
	w := &Watcher{
		engine:    engine,
		journal:   cfg.Journal,
		notifiers: notifiers,
		interval:  cfg.Interval,
		now:       cfg.Now,
		log:       cfg.Logger,
	}
	if w.interval <= 0 {
		w.interval = DefaultInterval
	}
	if w.now == nil {
		w.now = time.Now
	}
	if w.log == nil {
		w.log = slog.Default()
	}
	return w
}

// Run checks the engine once immediately and then on every tick until ctx
// is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	w.Check(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info("stopping watcher")
			return nil
		case <-ticker.C:
			w.Check(ctx)
		}
	}
}

// Check takes one snapshot and returns the transition it revealed, if any.
// The first check only establishes the baseline.
func (w *Watcher) Check(ctx context.Context) *domain.Transition {
	snap := w.engine.Snapshot(w.now())

	w.mu.Lock()
	prev := w.last
	w.last = &snap
	w.mu.Unlock()

	if prev == nil {
		w.log.Info("market status", "status", snap.Status, "reason", snap.Reason, "calendar", snap.CalendarState)
		return nil
	}
	if prev.Status == snap.Status && prev.Reason == snap.Reason {
		return nil
	}

	tr := domain.Transition{
		At:     snap.Now,
		From:   prev.Status,
		To:     snap.Status,
		Reason: snap.Reason,
	}
	if w.journal != nil {
		if err := w.journal.SaveTransition(ctx, &tr); err != nil {
			w.log.Error("recording transition", "error", err)
		}
	}
	w.log.Info("market status changed", "from", tr.From, "to", tr.To, "reason", tr.Reason)

	for _, n := range w.notifiers {
		n.Notify(tr, snap)
	}
	return &tr
}

// Last returns the most recent snapshot, or false before the first check.
func (w *Watcher) Last() (domain.Snapshot, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.last == nil {
		return domain.Snapshot{}, false
	}
	return *w.last, true
}
