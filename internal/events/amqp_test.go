package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
)

type published struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type recordingChannel struct {
	calls []published
	err   error
}

func (c *recordingChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	if c.err != nil {
		return c.err
	}
	c.calls = append(c.calls, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func TestAMQPPublisher_Publish(t *testing.T) {
	ch := &recordingChannel{}
	pub := NewAMQPPublisher(ch, "storefront.orders")

	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	order := &domain.Order{ID: "o1", OwnerID: "u1", Status: domain.OrderStatusPaid, TotalPriceCents: 13800}
	require.NoError(t, pub.Publish(context.Background(), OrderPaid, NewOrderEvent(order, at)))

	require.Len(t, ch.calls, 1)
	call := ch.calls[0]
	assert.Equal(t, "storefront.orders", call.exchange)
	assert.Equal(t, OrderPaid, call.key)
	assert.Equal(t, "application/json", call.msg.ContentType)
	assert.Equal(t, "o1:paid", call.msg.MessageId)

	var got OrderEvent
	require.NoError(t, json.Unmarshal(call.msg.Body, &got))
	assert.Equal(t, "o1", got.OrderID)
	assert.Equal(t, domain.OrderStatusPaid, got.Status)
	assert.Equal(t, int64(13800), got.TotalPriceCents)
	assert.True(t, got.OccurredAt.Equal(at))
}

func TestAMQPPublisher_PropagatesChannelError(t *testing.T) {
	ch := &recordingChannel{err: errors.New("channel closed")}
	pub := NewAMQPPublisher(ch, "storefront.orders")
	err := pub.Publish(context.Background(), OrderCreated, OrderEvent{OrderID: "o1"})
	assert.EqualError(t, err, "channel closed")
}

func TestLogPublisher_NeverFails(t *testing.T) {
	pub := NewLogPublisher(nil)
	assert.NoError(t, pub.Publish(context.Background(), OrderCreated, OrderEvent{OrderID: "o1"}))
}
