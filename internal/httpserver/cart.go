package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
)

func (h *handlers) openCartSession(c *gin.Context) {
	cart, err := h.deps.CartSvc.OpenSession(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Header(cartSessionHeader, cart.SessionID)
	c.JSON(http.StatusCreated, toCart(cart))
}

func (h *handlers) getCart(c *gin.Context) {
	session, ok := sessionFrom(c)
	if !ok {
		return
	}
	cart, err := h.deps.CartSvc.Get(c.Request.Context(), session)
	h.respondCart(c, cart, err)
}

func (h *handlers) putCartItem(c *gin.Context) {
	session, ok := sessionFrom(c)
	if !ok {
		return
	}
	var req cartItemRequest
	if !decodeJSON(c, &req) {
		return
	}
	cart, err := h.deps.CartSvc.AddOrUpdateItem(c.Request.Context(), session, req.ProductRef, req.Quantity)
	h.respondCart(c, cart, err)
}

func (h *handlers) deleteCartItem(c *gin.Context) {
	session, ok := sessionFrom(c)
	if !ok {
		return
	}
	cart, err := h.deps.CartSvc.RemoveItem(c.Request.Context(), session, c.Param("productRef"))
	h.respondCart(c, cart, err)
}

func (h *handlers) putShippingAddress(c *gin.Context) {
	session, ok := sessionFrom(c)
	if !ok {
		return
	}
	var req addressRequest
	if !decodeJSON(c, &req) {
		return
	}
	cart, err := h.deps.CartSvc.SetShippingAddress(c.Request.Context(), session, domain.ShippingAddress{
		Address:    req.Address,
		City:       req.City,
		PostalCode: req.PostalCode,
		Country:    req.Country,
	})
	h.respondCart(c, cart, err)
}

func (h *handlers) putPaymentMethod(c *gin.Context) {
	session, ok := sessionFrom(c)
	if !ok {
		return
	}
	var req paymentMethodRequest
	if !decodeJSON(c, &req) {
		return
	}
	cart, err := h.deps.CartSvc.SetPaymentMethod(c.Request.Context(), session, req.PaymentMethod)
	h.respondCart(c, cart, err)
}

func (h *handlers) clearCart(c *gin.Context) {
	session, ok := sessionFrom(c)
	if !ok {
		return
	}
	cart, err := h.deps.CartSvc.Clear(c.Request.Context(), session)
	h.respondCart(c, cart, err)
}

func (h *handlers) checkout(c *gin.Context) {
	session, ok := sessionFrom(c)
	if !ok {
		return
	}
	order, err := h.deps.CartSvc.Checkout(c.Request.Context(), principalFrom(c), session)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toOrder(order))
}

func (h *handlers) respondCart(c *gin.Context, cart *domain.Cart, err error) {
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCart(cart))
}
