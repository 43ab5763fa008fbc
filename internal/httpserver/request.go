package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/shopspring/decimal"
)

type cartItemRequest struct {
	ProductRef string `json:"productRef" binding:"required"`
	Quantity   int    `json:"quantity" binding:"required,min=1"`
}

type addressRequest struct {
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

type paymentMethodRequest struct {
	PaymentMethod string `json:"paymentMethod" binding:"required"`
}

type orderItemRequest struct {
	ProductRef string          `json:"productRef" binding:"required"`
	Name       string          `json:"name"`
	Image      string          `json:"image"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	Quantity   int             `json:"quantity"`
}

type createOrderRequest struct {
	OrderItems      []orderItemRequest `json:"orderItems" binding:"dive"`
	ShippingAddress *addressRequest    `json:"shippingAddress"`
	PaymentMethod   string             `json:"paymentMethod"`
}

type openIntentRequest struct {
	OrderID string          `json:"orderId" binding:"required"`
	Amount  decimal.Decimal `json:"amount"`
}

type verifyChargeRequest struct {
	OrderID         string `json:"orderId" binding:"required"`
	GatewayIntentID string `json:"gatewayIntentId" binding:"required"`
	GatewayChargeID string `json:"gatewayChargeId" binding:"required"`
	Signature       string `json:"signature" binding:"required"`
}

// decodeJSON rejects unknown fields before running the binding validator. It writes the 400
// itself and reports whether the handler should continue.
func decodeJSON(c *gin.Context, dst any) bool {
	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return false
	}
	if err := binding.Validator.ValidateStruct(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}
