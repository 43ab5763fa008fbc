package product

import (
	"context"

	"storefront/internal/domain"
)

// Repository resolves catalog entries by product ref.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context) ([]domain.Product, error)
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}
