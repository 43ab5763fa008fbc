package cart

import (
	"context"
	"errors"

	"storefront/internal/domain"
)

// ErrSessionNotFound is returned when no cart has been persisted for a session.
var ErrSessionNotFound = errors.New("cart session not found")

// Repository persists the full cart snapshot of a session.
type Repository interface {
	Load(ctx context.Context, sessionID string) (*domain.Cart, error)
	Save(ctx context.Context, cart *domain.Cart) error
	Delete(ctx context.Context, sessionID string) error
}
