package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cafe-orders/internal/domain"
	"cafe-orders/internal/notify"
	"cafe-orders/internal/repository"
)

func order(id string, ts int64, status domain.OrderStatus) domain.Order {
	m, _ := domain.FindMenuItem("1")
	return domain.Order{
		ID: id, CustomerName: "Ana", Type: domain.OrderTypePickup, Status: status, Timestamp: ts, Total: m.Price,
		Items: []domain.CartItem{{MenuItem: m, CartID: "c-" + id}},
	}
}

func ids(tickets []Ticket) []string {
	out := make([]string, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, t.ID)
	}
	return out
}

// flakyStore fails LoadAll while down is set.
type flakyStore struct {
	repository.Orders
	down atomic.Bool
}

func (f *flakyStore) LoadAll(ctx context.Context) ([]domain.Order, error) {
	if f.down.Load() {
		return nil, errors.New("medium unreachable")
	}
	return f.Orders.LoadAll(ctx)
}

func newQueue(t *testing.T, seed ...domain.Order) (*Queue, *flakyStore, *notify.Broadcaster) {
	t.Helper()
	ctx := context.Background()
	keyed := repository.NewKeyedStore(repository.NewMemoryMedium(0), "orders")
	for _, o := range seed {
		require.NoError(t, keyed.Append(ctx, o))
	}
	store := &flakyStore{Orders: keyed}
	b := notify.NewBroadcaster()
	q := NewQueue(store, b, time.Hour)
	t.Cleanup(func() {
		q.Close()
		_ = b.Close()
	})
	return q, store, b
}

func TestQueue_ActivateSortsPendingOldestFirst(t *testing.T) {
	q, _, _ := newQueue(t,
		order("late", 100, domain.StatusPending),
		order("done", 10, domain.StatusCompleted),
		order("early", 50, domain.StatusPending),
	)

	require.NoError(t, q.Activate(context.Background()))

	assert.Equal(t, []string{"early", "late"}, ids(q.Tickets()))
}

func TestQueue_EqualTimestampsKeepStorageOrder(t *testing.T) {
	q, _, _ := newQueue(t,
		order("b", 100, domain.StatusPending),
		order("a", 100, domain.StatusPending),
	)
	require.NoError(t, q.Activate(context.Background()))

	assert.Equal(t, []string{"b", "a"}, ids(q.Tickets()))
}

func TestQueue_ReloadsOnSignal(t *testing.T) {
	q, store, b := newQueue(t, order("a", 100, domain.StatusPending))
	require.NoError(t, q.Activate(context.Background()))

	require.NoError(t, store.Append(context.Background(), order("b", 50, domain.StatusPending)))
	require.NoError(t, b.Publish(context.Background()))

	assert.Eventually(t, func() bool {
		got := ids(q.Tickets())
		return len(got) == 2 && got[0] == "b"
	}, time.Second, 5*time.Millisecond)
}

func TestQueue_ReadFailureKeepsStaleList(t *testing.T) {
	q, store, _ := newQueue(t, order("a", 100, domain.StatusPending))
	require.NoError(t, q.Activate(context.Background()))

	store.down.Store(true)
	err := q.Refresh(context.Background())

	require.Error(t, err)
	assert.Equal(t, []string{"a"}, ids(q.Tickets()))
}

func TestQueue_CompleteOrder(t *testing.T) {
	ctx := context.Background()
	q, store, b := newQueue(t,
		order("a", 100, domain.StatusPending),
		order("b", 200, domain.StatusPending),
	)

	var signals atomic.Int32
	_, err := b.Subscribe(func() { signals.Add(1) })
	require.NoError(t, err)
	require.NoError(t, q.Activate(ctx))

	require.NoError(t, q.CompleteOrder(ctx, "a"))

	assert.Equal(t, []string{"b"}, ids(q.Tickets()), "removed before any reload")
	orders, err := store.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, orders[0].Status)
	assert.Eventually(t, func() bool { return signals.Load() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, q.Refresh(ctx))
	assert.NotContains(t, ids(q.Tickets()), "a")
}

func TestQueue_CompleteFailureKeepsTicket(t *testing.T) {
	ctx := context.Background()
	keyed := repository.NewKeyedStore(repository.NewMemoryMedium(0), "orders")
	require.NoError(t, keyed.Append(ctx, order("a", 100, domain.StatusPending)))
	b := notify.NewBroadcaster()
	defer b.Close()

	q := NewQueue(&failingUpdates{Orders: keyed}, b, time.Hour)
	defer q.Close()
	require.NoError(t, q.Activate(ctx))

	err := q.CompleteOrder(ctx, "a")

	assert.True(t, repository.IsWriteError(err))
	assert.Equal(t, []string{"a"}, ids(q.Tickets()))
}

type failingUpdates struct{ repository.Orders }

func (failingUpdates) UpdateStatus(context.Context, string, domain.OrderStatus) error {
	return &repository.WriteError{Op: "update_status", Err: repository.ErrQuotaExceeded}
}

func TestQueue_WatchPingsOnChange(t *testing.T) {
	q, _, _ := newQueue(t, order("a", 100, domain.StatusPending))
	require.NoError(t, q.Activate(context.Background()))

	changes, stop := q.Watch()
	defer stop()

	require.NoError(t, q.CompleteOrder(context.Background(), "a"))

	select {
	case <-changes:
	case <-time.After(time.Second):
		t.Fatal("no change ping")
	}
}

func TestAgeLabel(t *testing.T) {
	now := time.UnixMilli(10 * 60_000)

	assert.Equal(t, "Just now", AgeLabel(now.UnixMilli()-59_999, now))
	assert.Equal(t, "1m ago", AgeLabel(now.UnixMilli()-60_000, now))
	assert.Equal(t, "5m ago", AgeLabel(now.UnixMilli()-5*60_000-30_000, now))
	assert.Equal(t, "Just now", AgeLabel(now.UnixMilli()+5_000, now), "clock skew")
}

func TestQueue_LabelsUseDisplayClock(t *testing.T) {
	q, _, _ := newQueue(t, order("a", 0, domain.StatusPending))
	q.now = func() time.Time { return time.UnixMilli(3 * 60_000) }
	require.NoError(t, q.Activate(context.Background()))

	tickets := q.Tickets()
	require.Len(t, tickets, 1)
	assert.Equal(t, "3m ago", tickets[0].Age)
}

// gatedStore blocks the first LoadAll after it has read, until released.
type gatedStore struct {
	repository.Orders
	calls   atomic.Int32
	entered chan struct{}
	release chan struct{}
}

func (g *gatedStore) LoadAll(ctx context.Context) ([]domain.Order, error) {
	orders, err := g.Orders.LoadAll(ctx)
	if g.calls.Add(1) == 1 {
		close(g.entered)
		<-g.release
	}
	return orders, err
}

func TestQueue_SlowReloadNeverOverwritesNewerOne(t *testing.T) {
	ctx := context.Background()
	keyed := repository.NewKeyedStore(repository.NewMemoryMedium(0), "orders")
	require.NoError(t, keyed.Append(ctx, order("a", 100, domain.StatusPending)))
	store := &gatedStore{Orders: keyed, entered: make(chan struct{}), release: make(chan struct{})}
	b := notify.NewBroadcaster()
	defer b.Close()
	q := NewQueue(store, b, time.Hour)
	defer q.Close()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); _ = q.Refresh(ctx) }()
	<-store.entered

	require.NoError(t, keyed.Append(ctx, order("b", 200, domain.StatusPending)))
	go func() { defer wg.Done(); _ = q.Refresh(ctx) }()
	time.Sleep(20 * time.Millisecond)
	close(store.release)
	wg.Wait()

	assert.Equal(t, []string{"a", "b"}, ids(q.Tickets()))
}

func TestQueue_CloseWaitsForReloadInProgress(t *testing.T) {
	ctx := context.Background()
	keyed := repository.NewKeyedStore(repository.NewMemoryMedium(0), "orders")
	store := &gatedStore{Orders: keyed, entered: make(chan struct{}), release: make(chan struct{})}
	b := notify.NewBroadcaster()
	defer b.Close()
	q := NewQueue(store, b, time.Hour)

	unsubscribe, err := b.Subscribe(func() { _ = q.Refresh(ctx) })
	require.NoError(t, err)
	q.unsubscribe = unsubscribe
	require.NoError(t, b.Publish(ctx))
	<-store.entered

	closed := make(chan struct{})
	go func() {
		q.Close()
		close(closed)
	}()
	select {
	case <-closed:
		t.Fatal("Close returned during a reload")
	case <-time.After(30 * time.Millisecond):
	}
	close(store.release)
	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("Close did not return")
	}
}
