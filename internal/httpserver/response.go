package httpserver

import (
	"time"

	"storefront/internal/domain"
	"storefront/internal/pricing"
)

type lineItemResponse struct {
	ProductRef string `json:"productRef"`
	Name       string `json:"name"`
	Image      string `json:"image,omitempty"`
	UnitPrice  string `json:"unitPrice"`
	Quantity   int    `json:"quantity"`
}

type addressResponse struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

type cartResponse struct {
	SessionID       string             `json:"sessionId"`
	Items           []lineItemResponse `json:"items"`
	ShippingAddress *addressResponse   `json:"shippingAddress,omitempty"`
	PaymentMethod   string             `json:"paymentMethod"`
	ItemsTotal      string             `json:"itemsTotal"`
	ShippingCost    string             `json:"shippingCost"`
	GrandTotal      string             `json:"grandTotal"`
}

type gatewayProofResponse struct {
	IntentID  string    `json:"intentId"`
	ChargeID  string    `json:"chargeId"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"updateTime"`
}

type orderResponse struct {
	ID              string                `json:"id"`
	OwnerID         string                `json:"user"`
	Items           []lineItemResponse    `json:"orderItems"`
	ShippingAddress addressResponse       `json:"shippingAddress"`
	PaymentMethod   string                `json:"paymentMethod"`
	ItemsPrice      string                `json:"itemsPrice"`
	ShippingPrice   string                `json:"shippingPrice"`
	TaxPrice        string                `json:"taxPrice"`
	TotalPrice      string                `json:"totalPrice"`
	Status          string                `json:"status"`
	IsPaid          bool                  `json:"isPaid"`
	PaidAt          *time.Time            `json:"paidAt,omitempty"`
	IsDelivered     bool                  `json:"isDelivered"`
	DeliveredAt     *time.Time            `json:"deliveredAt,omitempty"`
	PaymentResult   *gatewayProofResponse `json:"paymentResult,omitempty"`
	CreatedAt       time.Time             `json:"createdAt"`
}

type productResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Image        string `json:"image"`
	Price        string `json:"price"`
	CountInStock int    `json:"countInStock"`
}

type intentResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	KeyID    string `json:"keyId"`
}

func toLineItems(items []domain.LineItem) []lineItemResponse {
	out := make([]lineItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, lineItemResponse{
			ProductRef: it.ProductRef,
			Name:       it.Name,
			Image:      it.Image,
			UnitPrice:  pricing.FormatCents(it.UnitPriceCents),
			Quantity:   it.Quantity,
		})
	}
	return out
}

func toAddress(a domain.ShippingAddress) addressResponse {
	return addressResponse{Address: a.Address, City: a.City, PostalCode: a.PostalCode, Country: a.Country}
}

func toCart(c *domain.Cart) cartResponse {
	resp := cartResponse{
		SessionID:     c.SessionID,
		Items:         toLineItems(c.Items),
		PaymentMethod: c.PaymentMethod,
		ItemsTotal:    pricing.FormatCents(c.ItemsTotalCents),
		ShippingCost:  pricing.FormatCents(c.ShippingCostCents),
		GrandTotal:    pricing.FormatCents(c.GrandTotalCents),
	}
	if c.ShippingAddress != nil {
		addr := toAddress(*c.ShippingAddress)
		resp.ShippingAddress = &addr
	}
	return resp
}

func toOrder(o *domain.Order) orderResponse {
	resp := orderResponse{
		ID:              o.ID,
		OwnerID:         o.OwnerID,
		Items:           toLineItems(o.Items),
		ShippingAddress: toAddress(o.ShippingAddress),
		PaymentMethod:   o.PaymentMethod,
		ItemsPrice:      pricing.FormatCents(o.ItemsPriceCents),
		ShippingPrice:   pricing.FormatCents(o.ShippingPriceCents),
		TaxPrice:        pricing.FormatCents(o.TaxPriceCents),
		TotalPrice:      pricing.FormatCents(o.TotalPriceCents),
		Status:          o.Status.String(),
		IsPaid:          o.Status.Reached(domain.OrderStatusPaid),
		PaidAt:          o.PaidAt,
		IsDelivered:     o.Status.Reached(domain.OrderStatusDelivered),
		DeliveredAt:     o.DeliveredAt,
		CreatedAt:       o.CreatedAt,
	}
	if p := o.GatewayProof; p != nil {
		resp.PaymentResult = &gatewayProofResponse{
			IntentID:  p.IntentID,
			ChargeID:  p.ChargeID,
			Status:    p.Status,
			Timestamp: p.Timestamp,
		}
	}
	return resp
}

func toOrders(orders []domain.Order) []orderResponse {
	out := make([]orderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, toOrder(&orders[i]))
	}
	return out
}

func toProduct(p *domain.Product) productResponse {
	return productResponse{
		ID:           p.ID,
		Name:         p.Name,
		Image:        p.Image,
		Price:        pricing.FormatCents(p.PriceCents),
		CountInStock: p.CountInStock,
	}
}
