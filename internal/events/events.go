package events

import (
	"context"
	"time"

	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/logging"
)

// Routing keys for order lifecycle events.
const (
	OrderCreated   = "order.created"
	OrderPaid      = "order.paid"
	OrderDelivered = "order.delivered"
)

// OrderEvent is the payload published on every order transition.
type OrderEvent struct {
	OrderID         string             `json:"orderId"`
	OwnerID         string             `json:"ownerId"`
	Status          domain.OrderStatus `json:"status"`
	TotalPriceCents int64              `json:"totalPriceCents"`
	OccurredAt      time.Time          `json:"occurredAt"`
}

// NewOrderEvent builds the payload for the order's current state.
func NewOrderEvent(o *domain.Order, at time.Time) OrderEvent {
	return OrderEvent{
		OrderID:         o.ID,
		OwnerID:         o.OwnerID,
		Status:          o.Status,
		TotalPriceCents: o.TotalPriceCents,
		OccurredAt:      at.UTC(),
	}
}

// Publisher delivers order events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, event OrderEvent) error
}

type logPublisher struct {
	logger *zap.Logger
}

// NewLogPublisher is used when no broker is configured; events are only logged.
func NewLogPublisher(logger *zap.Logger) Publisher {
	return &logPublisher{logger: logging.OrNop(logger)}
}

func (p *logPublisher) Publish(_ context.Context, routingKey string, event OrderEvent) error {
	p.logger.Info("events: order event",
		zap.String("routing_key", routingKey),
		zap.String("order_id", event.OrderID),
		zap.String("status", event.Status.String()),
	)
	return nil
}
