package seed

import (
	"context"
	"fmt"

	"storefront/internal/domain"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

// DemoProducts is the catalog used for manual testing.
var DemoProducts = []domain.Product{
	{
		ID:           "essential-react-hoodie",
		Name:         "The Essential React Hoodie",
		Image:        "/images/hoodie.jpg",
		PriceCents:   4999,
		CountInStock: 10,
	},
	{
		ID:           "nodejs-developer-mug",
		Name:         "Node.js Developer Mug",
		Image:        "/images/mug.jpg",
		PriceCents:   1550,
		CountInStock: 0,
	},
	{
		ID:           "tailwind-reference-poster",
		Name:         "Tailwind CSS Quick Reference Poster",
		Image:        "/images/poster.jpg",
		PriceCents:   2499,
		CountInStock: 5,
	},
	{
		ID:           "mern-stack-tshirt",
		Name:         "MERN Stack T-Shirt",
		Image:        "/images/tshirt.jpg",
		PriceCents:   2999,
		CountInStock: 8,
	},
}

// Apply upserts the demo catalog. Running it twice leaves the same rows.
func Apply(ctx context.Context, products ProductWriter) error {
	for _, p := range DemoProducts {
		if _, err := products.Upsert(ctx, p); err != nil {
			return fmt.Errorf("upsert product %s: %w", p.ID, err)
		}
	}
	return nil
}
