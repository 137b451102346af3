package rabbitmq

import (
	"context"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"

	"cafe-orders/internal/config"
)

func TestURL(t *testing.T) {
	base := config.RabbitMQConfig{Host: "mq", Port: 5672, User: "cafe", Password: "p@ss"}

	assert.Equal(t, "amqp://cafe:p%40ss@mq:5672/", URL(base))

	withVHost := base
	withVHost.VHost = "orders"
	assert.Equal(t, "amqp://cafe:p%40ss@mq:5672/orders", URL(withVHost))

	tlsRoot := base
	tlsRoot.Port = 5671
	tlsRoot.VHost = "/"
	tlsRoot.UseTLS = true
	assert.Equal(t, "amqps://cafe:p%40ss@mq:5671/", URL(tlsRoot))
}

func TestAwaitConfirm(t *testing.T) {
	ctx := context.Background()

	t.Run("skips confirms of abandoned publishes", func(t *testing.T) {
		acks := make(chan amqp.Confirmation, 2)
		acks <- amqp.Confirmation{DeliveryTag: 1, Ack: false}
		acks <- amqp.Confirmation{DeliveryTag: 2, Ack: true}

		assert.NoError(t, awaitConfirm(ctx, acks, 2))
	})

	t.Run("nack", func(t *testing.T) {
		acks := make(chan amqp.Confirmation, 1)
		acks <- amqp.Confirmation{DeliveryTag: 3, Ack: false}

		assert.ErrorIs(t, awaitConfirm(ctx, acks, 3), ErrNack)
	})

	t.Run("channel closed", func(t *testing.T) {
		acks := make(chan amqp.Confirmation)
		close(acks)

		assert.ErrorIs(t, awaitConfirm(ctx, acks, 1), ErrClosed)
	})

	t.Run("caller gives up", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		assert.ErrorIs(t, awaitConfirm(cctx, make(chan amqp.Confirmation), 1), context.Canceled)
	})
}
