package app

import (
	"context"
	"sync"
	"time"

	"mealtracker/internal/domain"
	"mealtracker/internal/metrics"

	log "github.com/sirupsen/logrus"
)

// Watcher keeps an up-to-date dashboard per watched user. It recomputes
// only when the store signals a change; there is no polling. Every
// recompute for a user runs on that user's goroutine, so views are stored
// in snapshot order.
type Watcher struct {
	dash     *DashboardService
	notifier domain.ChangeNotifier
	metrics  *metrics.Manager

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu    sync.RWMutex
	views map[int64]View
	subs  map[int64]*subscription

	// OnUpdate, when set, is called after every recompute.
	OnUpdate func(userID int64, v View)
}

type subscription struct {
	ch   <-chan struct{}
	stop func()
}

// NewWatcher creates a Watcher. m may be nil.
func NewWatcher(dash *DashboardService, notifier domain.ChangeNotifier, m *metrics.Manager) *Watcher {
	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		dash:     dash,
		notifier: notifier,
		metrics:  m,
		ctx:      ctx,
		cancel:   cancel,
		views:    make(map[int64]View),
		subs:     make(map[int64]*subscription),
	}
}

// Watch subscribes to userID's changes and starts computing the first view
// in the background. Watching a user twice is a no-op.
func (w *Watcher) Watch(userID int64) {
	w.mu.Lock()
	if _, ok := w.subs[userID]; ok || w.ctx.Err() != nil {
		w.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(w.ctx)
	ch, unsubscribe := w.notifier.Subscribe(ctx, userID)
	sub := &subscription{ch: ch, stop: func() {
		cancel()
		unsubscribe()
	}}
	w.subs[userID] = sub
	w.wg.Add(1)
	w.mu.Unlock()

	if w.metrics != nil {
		w.metrics.GaugeSubscriptions.Inc()
	}
	go w.run(ctx, userID, sub)
}

func (w *Watcher) run(ctx context.Context, userID int64, sub *subscription) {
	defer w.wg.Done()
	w.recompute(ctx, userID, sub)
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-sub.ch:
			if !ok {
				return
			}
			w.recompute(ctx, userID, sub)
		}
	}
}

func (w *Watcher) recompute(ctx context.Context, userID int64, sub *subscription) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	v, err := w.dash.View(ctx, userID, "")
	if err != nil {
		log.WithField("user_id", userID).Warnf("recompute dashboard: %s", err)
		return
	}
	if w.metrics != nil {
		w.metrics.CounterDashboardRecomputes.Inc()
		w.metrics.HistRecomputeDuration.Observe(time.Since(start).Seconds())
	}

	// A view finished after Stop or Close belongs to a dropped subscription.
	w.mu.Lock()
	if w.subs[userID] != sub {
		w.mu.Unlock()
		return
	}
	w.views[userID] = v
	w.mu.Unlock()

	if w.OnUpdate != nil {
		w.OnUpdate(userID, v)
	}
}

// Latest returns the most recent view computed for userID.
func (w *Watcher) Latest(userID int64) (View, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	v, ok := w.views[userID]
	return v, ok
}

// Stop ends the subscription for userID and drops its view.
func (w *Watcher) Stop(userID int64) {
	w.mu.Lock()
	sub, ok := w.subs[userID]
	delete(w.subs, userID)
	delete(w.views, userID)
	w.mu.Unlock()
	if !ok {
		return
	}
	sub.stop()
	if w.metrics != nil {
		w.metrics.GaugeSubscriptions.Dec()
	}
}

// Close stops every subscription and waits for the workers to exit.
func (w *Watcher) Close() {
	w.cancel()
	w.mu.Lock()
	subs := w.subs
	w.subs = make(map[int64]*subscription)
	w.views = make(map[int64]View)
	w.mu.Unlock()
	for _, sub := range subs {
		sub.stop()
		if w.metrics != nil {
			w.metrics.GaugeSubscriptions.Dec()
		}
	}
	w.wg.Wait()
}
