package httpserver

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
	"storefront/internal/pricing"
	ordersvc "storefront/internal/service/order"
)

func (h *handlers) createOrder(c *gin.Context) {
	var req createOrderRequest
	if !decodeJSON(c, &req) {
		return
	}
	snap, err := req.snapshot()
	if err != nil {
		h.writeError(c, err)
		return
	}
	order, err := h.deps.OrderSvc.CreateOrder(c.Request.Context(), principalFrom(c), snap)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toOrder(order))
}

func (req createOrderRequest) snapshot() (ordersvc.Snapshot, error) {
	items := make([]domain.LineItem, 0, len(req.OrderItems))
	for _, it := range req.OrderItems {
		cents, err := pricing.ParseAmount(it.UnitPrice)
		if err != nil {
			return ordersvc.Snapshot{}, fmt.Errorf("%w: unit price for %s: %v", domain.ErrInvalidCheckoutState, it.ProductRef, err)
		}
		items = append(items, domain.LineItem{
			ProductRef:     it.ProductRef,
			Name:           it.Name,
			Image:          it.Image,
			UnitPriceCents: cents,
			Quantity:       it.Quantity,
		})
	}
	snap := ordersvc.Snapshot{Items: items, PaymentMethod: req.PaymentMethod}
	if a := req.ShippingAddress; a != nil {
		snap.ShippingAddress = &domain.ShippingAddress{
			Address:    a.Address,
			City:       a.City,
			PostalCode: a.PostalCode,
			Country:    a.Country,
		}
	}
	return snap, nil
}

func (h *handlers) listMyOrders(c *gin.Context) {
	orders, err := h.deps.OrderSvc.ListOrders(c.Request.Context(), principalFrom(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrders(orders))
}

func (h *handlers) getOrder(c *gin.Context) {
	order, err := h.deps.OrderSvc.GetOrder(c.Request.Context(), principalFrom(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrder(order))
}

func (h *handlers) deliverOrder(c *gin.Context) {
	order, err := h.deps.OrderSvc.MarkDelivered(c.Request.Context(), principalFrom(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrder(order))
}
