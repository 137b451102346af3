package notify

import (
	"context"
	"fmt"
	"sync"

	goredis "github.com/go-redis/redis/v8"

	"cafe-orders/internal/domain"
)

// RedisNotifier uses redis pub/sub on a single channel. Messages carry the
// publisher's source name only.
type RedisNotifier struct {
	rdb     *goredis.Client
	channel string
	source  string

	mu     sync.Mutex
	subs   map[*goredis.PubSub]chan struct{}
	closed bool
}

func NewRedisNotifier(rdb *goredis.Client, channel, source string) *RedisNotifier {
	return &RedisNotifier{rdb: rdb, channel: channel, source: source, subs: make(map[*goredis.PubSub]chan struct{})}
}

func (n *RedisNotifier) Publish(ctx context.Context) error {
	n.mu.Lock()
	closed := n.closed
	n.mu.Unlock()
	if closed {
		return ErrClosed
	}
	if err := n.rdb.Publish(ctx, n.channel, n.source).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", domain.StoreChanged, err)
	}
	return nil
}

func (n *RedisNotifier) Subscribe(handler func()) (func(), error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return nil, ErrClosed
	}

	ctx := context.Background()
	ps := n.rdb.Subscribe(ctx, n.channel)
	// wait for the subscription confirmation so no publish after return is missed
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("subscribe %s: %w", n.channel, err)
	}
	exited := make(chan struct{})
	n.subs[ps] = exited

	msgs := ps.Channel()
	go func() {
		defer close(exited)
		for range msgs {
			handler()
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			n.mu.Lock()
			delete(n.subs, ps)
			n.mu.Unlock()
			_ = ps.Close()
		})
		<-exited
	}, nil
}

// Close stops every subscription and waits for running handlers.
func (n *RedisNotifier) Close() error {
	n.mu.Lock()
	n.closed = true
	subs := n.subs
	n.subs = make(map[*goredis.PubSub]chan struct{})
	n.mu.Unlock()

	for ps, exited := range subs {
		_ = ps.Close()
		<-exited
	}
	return nil
}
