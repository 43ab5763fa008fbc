package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/domain"
	cartsvc "storefront/internal/service/cart"
)

const paymentFailedMessage = "payment could not be completed"

// writeError maps service errors to status codes. Payment failures get a generic message so
// that gateway details never reach the client.
func (h *handlers) writeError(c *gin.Context, err error) {
	status, message := classify(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", zap.String("route", c.FullPath()), zap.Error(err))
	}
	c.JSON(status, gin.H{"error": message})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidCheckoutState), errors.Is(err, cartsvc.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, domain.ErrSignatureInvalid):
		return http.StatusBadRequest, paymentFailedMessage
	case errors.Is(err, domain.ErrGatewayUnavailable):
		return http.StatusBadGateway, paymentFailedMessage
	case errors.Is(err, domain.ErrAmountMismatch), errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict, err.Error()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
