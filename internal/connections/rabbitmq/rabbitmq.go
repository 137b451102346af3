package rabbitmq

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"cafe-orders/internal/config"
)

const (
	heartbeat  = 10 * time.Second
	ackBacklog = 16
)

var (
	ErrNack   = errors.New("publish NACK from broker")
	ErrClosed = errors.New("rabbitmq connection is closed")
)

// ConsumerChannel is the part of *amqp.Channel a subscriber uses.
type ConsumerChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	Close() error
}

// Client owns one connection and a confirm-mode channel used for publishing.
// A dropped connection is dialed again on the next call that needs it.
type Client struct {
	cfg  config.RabbitMQConfig
	name string

	mu     sync.Mutex // guards the connection; one publish waits for its confirm at a time
	conn   *amqp.Connection
	pub    *amqp.Channel
	acks   <-chan amqp.Confirmation
	closed bool
}

// URL builds the broker address. An empty or "/" vhost selects the default.
func URL(cfg config.RabbitMQConfig) string {
	u := url.URL{
		Scheme: "amqp",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Path:   "/",
	}
	if cfg.UseTLS {
		u.Scheme = "amqps"
	}
	if cfg.VHost != "" && cfg.VHost != "/" {
		u.Path = "/" + url.PathEscape(cfg.VHost)
	}
	return u.String()
}

// Dial connects and names the connection after the process so it can be
// told apart in the broker's management view.
func Dial(cfg config.RabbitMQConfig, name string) (*Client, error) {
	c := &Client{cfg: cfg, name: name}
	if err := c.connect(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) connect() error {
	acfg := amqp.Config{
		Heartbeat:  heartbeat,
		Properties: amqp.Table{"connection_name": c.name},
	}
	if c.cfg.UseTLS {
		acfg.TLSClientConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	conn, err := amqp.DialConfig(URL(c.cfg), acfg)
	if err != nil {
		return fmt.Errorf("rabbitmq dial %s:%d: %w", c.cfg.Host, c.cfg.Port, err)
	}
	c.conn = conn
	if err := c.openPublisher(); err != nil {
		_ = conn.Close()
		return err
	}
	return nil
}

func (c *Client) openPublisher() error {
	pub, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("open publish channel: %w", err)
	}
	if err := pub.Confirm(false); err != nil {
		_ = pub.Close()
		return fmt.Errorf("enable confirms: %w", err)
	}
	c.pub = pub
	c.acks = pub.NotifyPublish(make(chan amqp.Confirmation, ackBacklog))
	return nil
}

// ensure redials a dropped connection or reopens a closed publish channel.
// Callers hold mu.
func (c *Client) ensure() error {
	if c.closed {
		return ErrClosed
	}
	if c.conn == nil || c.conn.IsClosed() {
		return c.connect()
	}
	if c.pub.IsClosed() {
		return c.openPublisher()
	}
	return nil
}

// OpenChannel opens an extra channel on the same connection. Consumers use
// their own channel so deliveries never interleave with confirms.
func (c *Client) OpenChannel() (ConsumerChannel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensure(); err != nil {
		return nil, err
	}
	ch, err := c.conn.Channel()
	if err != nil {
		return nil, err
	}
	return ch, nil
}

func (c *Client) DeclareFanout(exchange string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensure(); err != nil {
		return err
	}
	return c.pub.ExchangeDeclare(exchange, amqp.ExchangeFanout, true, false, false, false, nil)
}

// PublishEmpty sends a body-less transient message and blocks until the
// broker confirms it.
func (c *Client) PublishEmpty(ctx context.Context, exchange string, headers amqp.Table) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.ensure(); err != nil {
		return err
	}

	tag := c.pub.GetNextPublishSeqNo()
	msg := amqp.Publishing{DeliveryMode: amqp.Transient, Timestamp: time.Now().UTC(), Headers: headers}
	if err := c.pub.PublishWithContext(ctx, exchange, "", false, false, msg); err != nil {
		return err
	}
	return awaitConfirm(ctx, c.acks, tag)
}

// awaitConfirm waits for the confirmation of delivery tag. Confirmations for
// earlier tags belong to publishes whose caller gave up waiting and are
// skipped.
func awaitConfirm(ctx context.Context, acks <-chan amqp.Confirmation, tag uint64) error {
	for {
		select {
		case conf, ok := <-acks:
			if !ok {
				return ErrClosed
			}
			if conf.DeliveryTag < tag {
				continue
			}
			if !conf.Ack {
				return ErrNack
			}
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close closes the connection and with it every channel opened on it. The
// client does not redial afterwards.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.conn != nil {
		_ = c.conn.Close()
	}
}
