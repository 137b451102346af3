package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"cafe-orders/internal/common/logger"
	"cafe-orders/internal/connections/rabbitmq"
	"cafe-orders/internal/domain"
)

const rebindDelay = 2 * time.Second

var errDeliveriesClosed = errors.New("consumer channel closed")

// Broker is the part of the AMQP client the notifier uses.
type Broker interface {
	DeclareFanout(exchange string) error
	PublishEmpty(ctx context.Context, exchange string, headers amqp.Table) error
	OpenChannel() (rabbitmq.ConsumerChannel, error)
}

// RabbitNotifier fans the signal out through a fanout exchange. Each subscriber
// binds its own exclusive, server-named queue, so every process sees every publish.
// A subscriber whose channel drops binds a fresh queue and then calls its
// handler once, since signals sent while it was gone are lost.
type RabbitNotifier struct {
	broker      Broker
	exchange    string
	source      string
	lg          *logger.Logger
	rebindDelay time.Duration

	mu     sync.Mutex
	subs   map[*rabbitSub]struct{}
	closed bool
}

type rabbitSub struct {
	handler func()

	mu      sync.Mutex
	ch      rabbitmq.ConsumerChannel
	stopped bool

	stop   chan struct{}
	exited chan struct{}
	once   sync.Once
}

func NewRabbitNotifier(broker Broker, exchange, source string) (*RabbitNotifier, error) {
	if err := broker.DeclareFanout(exchange); err != nil {
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return &RabbitNotifier{
		broker:      broker,
		exchange:    exchange,
		source:      source,
		lg:          logger.New("notifier"),
		rebindDelay: rebindDelay,
		subs:        make(map[*rabbitSub]struct{}),
	}, nil
}

func (n *RabbitNotifier) Publish(ctx context.Context) error {
	n.mu.Lock()
	closed := n.closed
	n.mu.Unlock()
	if closed {
		return ErrClosed
	}
	headers := amqp.Table{"x-source": n.source, "x-event": domain.StoreChanged}
	if err := n.broker.PublishEmpty(ctx, n.exchange, headers); err != nil {
		return fmt.Errorf("publish %s: %w", domain.StoreChanged, err)
	}
	return nil
}

func (n *RabbitNotifier) Subscribe(handler func()) (func(), error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return nil, ErrClosed
	}

	ch, deliveries, err := n.bind()
	if err != nil {
		return nil, err
	}
	s := &rabbitSub{handler: handler, ch: ch, stop: make(chan struct{}), exited: make(chan struct{})}
	n.subs[s] = struct{}{}
	go n.consume(s, deliveries)

	return func() {
		n.mu.Lock()
		delete(n.subs, s)
		n.mu.Unlock()
		s.close()
	}, nil
}

// bind opens a channel with an exclusive queue bound to the exchange.
func (n *RabbitNotifier) bind() (rabbitmq.ConsumerChannel, <-chan amqp.Delivery, error) {
	ch, err := n.broker.OpenChannel()
	if err != nil {
		return nil, nil, err
	}
	fail := func(err error) (rabbitmq.ConsumerChannel, <-chan amqp.Delivery, error) {
		_ = ch.Close()
		return nil, nil, err
	}
	if err := ch.ExchangeDeclare(n.exchange, amqp.ExchangeFanout, true, false, false, false, nil); err != nil {
		return fail(fmt.Errorf("declare exchange %s: %w", n.exchange, err))
	}
	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		return fail(fmt.Errorf("declare subscriber queue: %w", err))
	}
	if err := ch.QueueBind(q.Name, "", n.exchange, false, nil); err != nil {
		return fail(fmt.Errorf("bind %s: %w", q.Name, err))
	}
	deliveries, err := ch.Consume(q.Name, "", true, true, false, false, nil)
	if err != nil {
		return fail(fmt.Errorf("consume %s: %w", q.Name, err))
	}
	n.lg.Debug("subscriber_bound", map[string]any{"queue": q.Name, "exchange": n.exchange})
	return ch, deliveries, nil
}

func (n *RabbitNotifier) consume(s *rabbitSub, deliveries <-chan amqp.Delivery) {
	defer close(s.exited)
	for {
		for range deliveries {
			s.handler()
		}
		select {
		case <-s.stop:
			return
		default:
		}
		n.lg.Error("subscriber_lost", errDeliveriesClosed, map[string]any{"exchange": n.exchange})

		var ok bool
		if deliveries, ok = n.rebind(s); !ok {
			return
		}
		s.handler()
	}
}

// rebind retries until a fresh queue is consuming or the subscription stops.
func (n *RabbitNotifier) rebind(s *rabbitSub) (<-chan amqp.Delivery, bool) {
	for attempt := 1; ; attempt++ {
		select {
		case <-s.stop:
			return nil, false
		case <-time.After(n.rebindDelay):
		}
		ch, deliveries, err := n.bind()
		if err != nil {
			n.lg.Warn("subscriber_rebind_failed", err, map[string]any{"attempt": attempt})
			continue
		}
		if !s.swap(ch) {
			_ = ch.Close()
			return nil, false
		}
		n.lg.Info("subscriber_restored", map[string]any{"exchange": n.exchange, "attempt": attempt})
		return deliveries, true
	}
}

func (s *rabbitSub) swap(ch rabbitmq.ConsumerChannel) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return false
	}
	s.ch = ch
	return true
}

// close stops the subscription and waits for its consumer to exit.
func (s *rabbitSub) close() {
	s.once.Do(func() {
		close(s.stop)
		s.mu.Lock()
		s.stopped = true
		ch := s.ch
		s.mu.Unlock()
		_ = ch.Close()
	})
	<-s.exited
}

// Close stops every subscription. The shared client is owned by the caller.
func (n *RabbitNotifier) Close() error {
	n.mu.Lock()
	n.closed = true
	subs := make([]*rabbitSub, 0, len(n.subs))
	for s := range n.subs {
		subs = append(subs, s)
		delete(n.subs, s)
	}
	n.mu.Unlock()

	for _, s := range subs {
		s.close()
	}
	return nil
}
