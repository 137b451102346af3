package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"cafe-orders/internal/app/metrics"
	"cafe-orders/internal/common/logger"
	"cafe-orders/internal/domain"
	"cafe-orders/internal/notify"
	"cafe-orders/internal/repository"
)

// Ticket is a pending order as shown on the kitchen display.
type Ticket struct {
	domain.Order
	Age string `json:"age"`
}

type QueueInterface interface {
	Activate(ctx context.Context) error
	Refresh(ctx context.Context) error
	CompleteOrder(ctx context.Context, id string) error
	Tickets() []Ticket
	Watch() (<-chan struct{}, func())
	Close()
}

// Queue keeps the pending orders oldest first. It reloads the whole list on
// every store-changed signal and never merges.
type Queue struct {
	store        repository.Orders
	notifier     notify.Notifier
	refreshEvery time.Duration
	now          func() time.Time
	lg           *logger.Logger

	// refreshMu holds one reload from read to replace, so an older read can
	// never land after a newer one.
	refreshMu sync.Mutex

	mu        sync.Mutex
	tickets   []domain.Order
	completed map[string]struct{}
	clock     time.Time
	watchers  map[chan struct{}]struct{}

	unsubscribe func()
	stop        chan struct{}
	wg          sync.WaitGroup
}

func NewQueue(store repository.Orders, notifier notify.Notifier, refreshEvery time.Duration) *Queue {
	if refreshEvery <= 0 {
		refreshEvery = time.Minute
	}
	return &Queue{
		store:        store,
		notifier:     notifier,
		refreshEvery: refreshEvery,
		now:          time.Now,
		lg:           logger.New("kitchen-display"),
		completed:    make(map[string]struct{}),
		watchers:     make(map[chan struct{}]struct{}),
		stop:         make(chan struct{}),
	}
}

// Activate loads the current tickets, subscribes to store changes and starts
// the age-label clock. A failed first load leaves the list empty.
func (q *Queue) Activate(ctx context.Context) error {
	q.mu.Lock()
	q.clock = q.now()
	q.mu.Unlock()

	_ = q.Refresh(ctx)

	unsubscribe, err := q.notifier.Subscribe(func() {
		metrics.RecordSignalReceived()
		_ = q.Refresh(context.Background())
	})
	if err != nil {
		return fmt.Errorf("subscribe to store changes: %w", err)
	}
	q.unsubscribe = unsubscribe

	q.wg.Add(1)
	go q.tick()

	q.lg.Info("queue_activated", map[string]any{"tickets": len(q.Tickets())})
	return nil
}

// tick advances the display clock so age labels move without a reload.
func (q *Queue) tick() {
	defer q.wg.Done()
	t := time.NewTicker(q.refreshEvery)
	defer t.Stop()
	for {
		select {
		case <-q.stop:
			return
		case <-t.C:
			q.mu.Lock()
			q.clock = q.now()
			q.mu.Unlock()
			q.broadcast()
		}
	}
}

// Refresh replaces the ticket list with the store's pending orders. On a read
// error the previous list stays in place.
func (q *Queue) Refresh(ctx context.Context) error {
	q.refreshMu.Lock()
	defer q.refreshMu.Unlock()

	orders, err := q.store.LoadAll(ctx)
	if err != nil {
		q.lg.Warn("tickets_reload_failed", err, nil)
		return err
	}

	q.mu.Lock()
	pending := make([]domain.Order, 0, len(orders))
	for _, o := range orders {
		if _, done := q.completed[o.ID]; done || !o.IsPending() {
			continue
		}
		pending = append(pending, o)
	}
	sort.SliceStable(pending, func(i, j int) bool { return pending[i].Timestamp < pending[j].Timestamp })
	q.tickets = pending
	q.mu.Unlock()

	metrics.SetActiveTickets(len(pending))
	q.broadcast()
	return nil
}

// CompleteOrder marks id completed in the store, drops it locally right away
// and signals other displays. There is no undo.
func (q *Queue) CompleteOrder(ctx context.Context, id string) error {
	if err := q.store.UpdateStatus(ctx, id, domain.StatusCompleted); err != nil {
		q.lg.Error("order_complete_failed", err, map[string]any{"order_id": id})
		return err
	}

	q.mu.Lock()
	q.completed[id] = struct{}{}
	kept := q.tickets[:0:0]
	for _, o := range q.tickets {
		if o.ID != id {
			kept = append(kept, o)
		}
	}
	q.tickets = kept
	remaining := len(kept)
	q.mu.Unlock()

	metrics.RecordCompletion()
	metrics.SetActiveTickets(remaining)
	q.broadcast()

	if err := q.notifier.Publish(ctx); err != nil {
		q.lg.Warn("store_changed_publish_failed", err, map[string]any{"order_id": id})
	} else {
		metrics.RecordSignalPublished()
	}
	q.lg.Info("order_completed", map[string]any{"order_id": id, "remaining": remaining})
	return nil
}

func (q *Queue) Tickets() []Ticket {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Ticket, 0, len(q.tickets))
	for _, o := range q.tickets {
		out = append(out, Ticket{Order: o, Age: AgeLabel(o.Timestamp, q.clock)})
	}
	return out
}

// Watch returns a channel pinged whenever the ticket list or its labels change.
// Pings coalesce; readers call Tickets for the current view.
func (q *Queue) Watch() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	q.mu.Lock()
	q.watchers[ch] = struct{}{}
	q.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			q.mu.Lock()
			delete(q.watchers, ch)
			q.mu.Unlock()
		})
	}
}

func (q *Queue) broadcast() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for ch := range q.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Close stops the clock and the subscription, waiting for a reload that is
// already running.
func (q *Queue) Close() {
	if q.unsubscribe != nil {
		q.unsubscribe()
	}
	select {
	case <-q.stop:
	default:
		close(q.stop)
	}
	q.wg.Wait()
}

// AgeLabel is "Just now" for orders under a minute old, else whole minutes.
func AgeLabel(timestamp int64, now time.Time) string {
	mins := (now.UnixMilli() - timestamp) / 60000
	if mins < 1 {
		return "Just now"
	}
	return fmt.Sprintf("%dm ago", mins)
}
