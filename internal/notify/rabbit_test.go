package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cafe-orders/internal/connections/rabbitmq"
	"cafe-orders/internal/domain"
)

// fakeBroker is an in-memory fanout exchange.
type fakeBroker struct {
	mu       sync.Mutex
	bound    map[*fakeChannel]struct{}
	opened   int
	failNext int
	headers  []amqp.Table
}

func newFakeBroker() *fakeBroker { return &fakeBroker{bound: make(map[*fakeChannel]struct{})} }

func (b *fakeBroker) DeclareFanout(string) error { return nil }

func (b *fakeBroker) PublishEmpty(_ context.Context, _ string, headers amqp.Table) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.headers = append(b.headers, headers)
	for ch := range b.bound {
		ch.deliveries <- amqp.Delivery{Headers: headers}
	}
	return nil
}

func (b *fakeBroker) OpenChannel() (rabbitmq.ConsumerChannel, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.failNext > 0 {
		b.failNext--
		return nil, errors.New("connection refused")
	}
	b.opened++
	return &fakeChannel{b: b, deliveries: make(chan amqp.Delivery, 16)}, nil
}

// drop closes every consumer channel, as a broker restart would.
func (b *fakeBroker) drop(failOpens int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failNext = failOpens
	for ch := range b.bound {
		delete(b.bound, ch)
		close(ch.deliveries)
	}
}

func (b *fakeBroker) openedChannels() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.opened
}

type fakeChannel struct {
	b          *fakeBroker
	deliveries chan amqp.Delivery
}

func (c *fakeChannel) ExchangeDeclare(string, string, bool, bool, bool, bool, amqp.Table) error {
	return nil
}

func (c *fakeChannel) QueueDeclare(string, bool, bool, bool, bool, amqp.Table) (amqp.Queue, error) {
	return amqp.Queue{Name: fmt.Sprintf("amq.gen-%p", c)}, nil
}

func (c *fakeChannel) QueueBind(string, string, string, bool, amqp.Table) error {
	c.b.mu.Lock()
	defer c.b.mu.Unlock()
	c.b.bound[c] = struct{}{}
	return nil
}

func (c *fakeChannel) Consume(string, string, bool, bool, bool, bool, amqp.Table) (<-chan amqp.Delivery, error) {
	return c.deliveries, nil
}

func (c *fakeChannel) Close() error {
	c.b.mu.Lock()
	defer c.b.mu.Unlock()
	if _, ok := c.b.bound[c]; ok {
		delete(c.b.bound, c)
		close(c.deliveries)
	}
	return nil
}

func newTestRabbit(t *testing.T) (*RabbitNotifier, *fakeBroker) {
	t.Helper()
	b := newFakeBroker()
	n, err := NewRabbitNotifier(b, "store_changed", domain.SourceKitchen)
	require.NoError(t, err)
	n.rebindDelay = 5 * time.Millisecond
	t.Cleanup(func() { _ = n.Close() })
	return n, b
}

func TestRabbitNotifier_EverySubscriberSeesEveryPublish(t *testing.T) {
	n, b := newTestRabbit(t)

	var first, second atomic.Int32
	_, err := n.Subscribe(func() { first.Add(1) })
	require.NoError(t, err)
	_, err = n.Subscribe(func() { second.Add(1) })
	require.NoError(t, err)

	require.NoError(t, n.Publish(context.Background()))
	require.NoError(t, n.Publish(context.Background()))

	assert.Eventually(t, func() bool { return first.Load() == 2 && second.Load() == 2 },
		time.Second, 5*time.Millisecond)
	assert.Equal(t, domain.SourceKitchen, b.headers[0]["x-source"])
	assert.Equal(t, domain.StoreChanged, b.headers[0]["x-event"])
}

func TestRabbitNotifier_RebindsAfterChannelLoss(t *testing.T) {
	n, b := newTestRabbit(t)

	var calls atomic.Int32
	_, err := n.Subscribe(func() { calls.Add(1) })
	require.NoError(t, err)

	b.drop(2)

	// one catch-up call once the new queue is consuming
	assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 2, b.openedChannels())

	require.NoError(t, n.Publish(context.Background()))
	assert.Eventually(t, func() bool { return calls.Load() == 2 }, time.Second, 5*time.Millisecond)
}

func TestRabbitNotifier_UnsubscribeAndClose(t *testing.T) {
	n, _ := newTestRabbit(t)

	var calls atomic.Int32
	unsubscribe, err := n.Subscribe(func() { calls.Add(1) })
	require.NoError(t, err)
	unsubscribe()
	unsubscribe()

	require.NoError(t, n.Publish(context.Background()))
	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, calls.Load())

	require.NoError(t, n.Close())
	assert.ErrorIs(t, n.Publish(context.Background()), ErrClosed)
	_, err = n.Subscribe(func() {})
	assert.ErrorIs(t, err, ErrClosed)
}
