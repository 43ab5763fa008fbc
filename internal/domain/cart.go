package domain

import "time"

// DefaultPaymentMethod is selected on a fresh or cleared cart.
const DefaultPaymentMethod = "Razorpay"

// LineItem is one product entry. Name, image and price are copied when the item is added.
type LineItem struct {
	ProductRef     string `json:"productRef"`
	Name           string `json:"name"`
	Image          string `json:"image"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	Quantity       int    `json:"quantity"`
}

// ShippingAddress is the delivery destination captured at checkout.
type ShippingAddress struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// Complete reports whether every address field is filled in.
func (a *ShippingAddress) Complete() bool {
	if a == nil {
		return false
	}
	return a.Address != "" && a.City != "" && a.PostalCode != "" && a.Country != ""
}

// Cart is the session-scoped aggregate. The totals are derived and must be recomputed after each mutation.
type Cart struct {
	SessionID         string           `json:"sessionId"`
	Items             []LineItem       `json:"items"`
	ShippingAddress   *ShippingAddress `json:"shippingAddress,omitempty"`
	PaymentMethod     string           `json:"paymentMethod"`
	ItemsTotalCents   int64            `json:"itemsTotalCents"`
	ShippingCostCents int64            `json:"shippingCostCents"`
	GrandTotalCents   int64            `json:"grandTotalCents"`
	CheckoutID        string           `json:"checkoutId,omitempty"`
	UpdatedAt         time.Time        `json:"updatedAt"`
}

// NewCart returns an empty cart bound to the session.
func NewCart(sessionID string) *Cart {
	return &Cart{
		SessionID:     sessionID,
		Items:         []LineItem{},
		PaymentMethod: DefaultPaymentMethod,
	}
}

// Upsert replaces the item with the same product ref or appends it. Quantities are not merged.
func (c *Cart) Upsert(item LineItem) {
	for i := range c.Items {
		if c.Items[i].ProductRef == item.ProductRef {
			c.Items[i] = item
			return
		}
	}
	c.Items = append(c.Items, item)
}

// Remove drops the item with the given product ref. An absent ref is a no-op.
func (c *Cart) Remove(productRef string) {
	out := c.Items[:0]
	for _, item := range c.Items {
		if item.ProductRef != productRef {
			out = append(out, item)
		}
	}
	c.Items = out
}

// Reset empties the items and restores default selections.
func (c *Cart) Reset() {
	c.Items = []LineItem{}
	c.ShippingAddress = nil
	c.PaymentMethod = DefaultPaymentMethod
}
