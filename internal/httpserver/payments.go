package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	paymentsvc "storefront/internal/service/payment"
)

func (h *handlers) paymentConfig(c *gin.Context) {
	c.JSON(http.StatusOK, h.deps.PaymentSvc.Config())
}

func (h *handlers) openIntent(c *gin.Context) {
	var req openIntentRequest
	if !decodeJSON(c, &req) {
		return
	}
	intent, err := h.deps.PaymentSvc.OpenIntent(c.Request.Context(), principalFrom(c), req.OrderID, req.Amount)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, intentResponse{
		ID:       intent.ID,
		Amount:   intent.Amount,
		Currency: intent.Currency,
		Receipt:  intent.Receipt,
		KeyID:    h.deps.PaymentSvc.Config().KeyID,
	})
}

func (h *handlers) verifyCharge(c *gin.Context) {
	var req verifyChargeRequest
	if !decodeJSON(c, &req) {
		return
	}
	order, err := h.deps.PaymentSvc.VerifyCharge(c.Request.Context(), principalFrom(c), paymentsvc.Proof{
		OrderID:         req.OrderID,
		GatewayIntentID: req.GatewayIntentID,
		GatewayChargeID: req.GatewayChargeID,
		Signature:       req.Signature,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrder(order))
}
