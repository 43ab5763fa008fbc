package order

import (
	"context"
	"errors"
	"time"

	"storefront/internal/domain"
)

// ErrStatusConflict is returned by Transition when the stored status differs from the expected one.
// The current order is returned alongside it.
var ErrStatusConflict = errors.New("order status changed concurrently")

// Transition describes a guarded status change. At stamps paidAt or deliveredAt depending on To.
type Transition struct {
	From  domain.OrderStatus
	To    domain.OrderStatus
	At    time.Time
	Proof *domain.GatewayProof
}

// Repository is the persistent order ledger.
type Repository interface {
	Create(ctx context.Context, o domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Order, error)
	Transition(ctx context.Context, id string, t Transition) (*domain.Order, error)
}
