package httpserver

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/payments"
	ordersvc "storefront/internal/service/order"
	paymentsvc "storefront/internal/service/payment"
)

type CartService interface {
	OpenSession(ctx context.Context) (*domain.Cart, error)
	Get(ctx context.Context, sessionID string) (*domain.Cart, error)
	AddOrUpdateItem(ctx context.Context, sessionID, productRef string, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, sessionID, productRef string) (*domain.Cart, error)
	SetShippingAddress(ctx context.Context, sessionID string, addr domain.ShippingAddress) (*domain.Cart, error)
	SetPaymentMethod(ctx context.Context, sessionID, method string) (*domain.Cart, error)
	Clear(ctx context.Context, sessionID string) (*domain.Cart, error)
	Checkout(ctx context.Context, principal domain.Principal, sessionID string) (*domain.Order, error)
}

type OrderService interface {
	CreateOrder(ctx context.Context, principal domain.Principal, snap ordersvc.Snapshot) (*domain.Order, error)
	GetOrder(ctx context.Context, principal domain.Principal, id string) (*domain.Order, error)
	ListOrders(ctx context.Context, principal domain.Principal) ([]domain.Order, error)
	MarkDelivered(ctx context.Context, principal domain.Principal, id string) (*domain.Order, error)
}

type PaymentService interface {
	Config() paymentsvc.PublicConfig
	OpenIntent(ctx context.Context, principal domain.Principal, orderID string, claimed decimal.Decimal) (*payments.Intent, error)
	VerifyCharge(ctx context.Context, principal domain.Principal, proof paymentsvc.Proof) (*domain.Order, error)
}

type ProductService interface {
	Get(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context) ([]domain.Product, error)
}

// TokenVerifier turns a bearer token into the calling principal.
type TokenVerifier interface {
	Verify(raw string) (domain.Principal, error)
}

// Deps groups the services the router dispatches to.
type Deps struct {
	CartSvc    CartService
	OrderSvc   OrderService
	PaymentSvc PaymentService
	ProductSvc ProductService
	Verifier   TokenVerifier
}

// buildRouter wires routes for the API.
func buildRouter(logger *zap.Logger, db Pinger, deps Deps, allowedOrigins []string) *gin.Engine {
	router := gin.New()
	router.Use(requestLogger(logger), gin.Recovery())
	if len(allowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     allowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", cartSessionHeader},
			ExposeHeaders:    []string{cartSessionHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	h := &handlers{deps: deps, logger: logger}
	api := router.Group("/api")

	api.GET("/products", h.listProducts)
	api.GET("/products/:id", h.getProduct)

	cartGroup := api.Group("/cart")
	cartGroup.POST("/sessions", h.openCartSession)
	cartGroup.GET("", h.getCart)
	cartGroup.PUT("/items", h.putCartItem)
	cartGroup.DELETE("/items/:productRef", h.deleteCartItem)
	cartGroup.PUT("/shipping-address", h.putShippingAddress)
	cartGroup.PUT("/payment-method", h.putPaymentMethod)
	cartGroup.DELETE("", h.clearCart)
	cartGroup.POST("/checkout", authMiddleware(deps.Verifier), h.checkout)

	orders := api.Group("/orders", authMiddleware(deps.Verifier))
	orders.POST("", h.createOrder)
	orders.GET("/mine", h.listMyOrders)
	orders.GET("/:id", h.getOrder)
	orders.PUT("/:id/deliver", h.deliverOrder)

	payment := api.Group("/payment")
	payment.GET("/config", h.paymentConfig)
	payment.POST("/intents", authMiddleware(deps.Verifier), h.openIntent)
	payment.POST("/verify", authMiddleware(deps.Verifier), h.verifyCharge)

	return router
}

type handlers struct {
	deps   Deps
	logger *zap.Logger
}
