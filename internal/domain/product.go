package domain

import "time"

// Product is the catalog view consumed at add-to-cart and checkout time.
type Product struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Image        string    `json:"image"`
	PriceCents   int64     `json:"priceCents"`
	CountInStock int       `json:"countInStock"`
	CreatedAt    time.Time `json:"createdAt"`
}
