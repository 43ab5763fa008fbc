package domain

import "time"

// OrderStatus is the settlement state of an order.
type OrderStatus string

const (
	OrderStatusCreated   OrderStatus = "created"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusDelivered OrderStatus = "delivered"
)

var orderTransitions = map[OrderStatus]OrderStatus{
	OrderStatusCreated: OrderStatusPaid,
	OrderStatusPaid:    OrderStatusDelivered,
}

// CanTransition reports whether an order may move from one status to the next.
// Only single forward steps exist; delivered is terminal.
func CanTransition(from, to OrderStatus) bool {
	next, ok := orderTransitions[from]
	return ok && next == to
}

// Reached reports whether s is at or past target in the lifecycle.
func (s OrderStatus) Reached(target OrderStatus) bool {
	return s.rank() >= target.rank()
}

func (s OrderStatus) rank() int {
	switch s {
	case OrderStatusCreated:
		return 1
	case OrderStatusPaid:
		return 2
	case OrderStatusDelivered:
		return 3
	default:
		return 0
	}
}

func (s OrderStatus) String() string {
	return string(s)
}

// GatewayProof records the last verified charge for an order.
type GatewayProof struct {
	IntentID  string    `json:"intentId"`
	ChargeID  string    `json:"chargeId"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// Order is the server-side snapshot of a cart plus its lifecycle fields.
type Order struct {
	ID                 string          `json:"id"`
	OwnerID            string          `json:"ownerId"`
	Items              []LineItem      `json:"items"`
	ShippingAddress    ShippingAddress `json:"shippingAddress"`
	PaymentMethod      string          `json:"paymentMethod"`
	ItemsPriceCents    int64           `json:"itemsPriceCents"`
	ShippingPriceCents int64           `json:"shippingPriceCents"`
	TaxPriceCents      int64           `json:"taxPriceCents"`
	TotalPriceCents    int64           `json:"totalPriceCents"`
	Status             OrderStatus     `json:"status"`
	PaidAt             *time.Time      `json:"paidAt,omitempty"`
	DeliveredAt        *time.Time      `json:"deliveredAt,omitempty"`
	GatewayProof       *GatewayProof   `json:"gatewayProof,omitempty"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}
