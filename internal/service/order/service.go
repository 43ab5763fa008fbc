package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/events"
	"storefront/internal/logging"
	"storefront/internal/pricing"
	orderrepo "storefront/internal/repository/order"
)

type orderRepo interface {
	Create(ctx context.Context, o domain.Order) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Order, error)
	Transition(ctx context.Context, id string, t orderrepo.Transition) (*domain.Order, error)
}

type productRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

// Snapshot is the cart content submitted for checkout.
// A non-empty OrderID makes CreateOrder idempotent: repeating it returns the order already placed under that id.
type Snapshot struct {
	OrderID         string
	Items           []domain.LineItem
	ShippingAddress *domain.ShippingAddress
	PaymentMethod   string
}

type Service struct {
	orders    orderRepo
	products  productRepo
	publisher events.Publisher
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string
}

func New(orders orderRepo, products productRepo, publisher events.Publisher, logger *zap.Logger) *Service {
	logger = logging.OrNop(logger)
	if publisher == nil {
		publisher = events.NewLogPublisher(logger)
	}
	return &Service{
		orders:    orders,
		products:  products,
		publisher: publisher,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     func() string { return uuid.NewString() },
	}
}

// CreateOrder validates the snapshot against the live catalog and persists a created order with
// server-side totals. Snapshot prices must still match the catalog and quantities must be in stock.
func (s *Service) CreateOrder(ctx context.Context, principal domain.Principal, snap Snapshot) (*domain.Order, error) {
	if principal.ID == "" {
		return nil, fmt.Errorf("%w: principal required", domain.ErrUnauthorized)
	}
	if snap.OrderID != "" {
		if existing, ok, err := s.placed(ctx, principal, snap.OrderID); ok || err != nil {
			return existing, err
		}
	}
	if len(snap.Items) == 0 {
		return nil, fmt.Errorf("%w: no order items", domain.ErrInvalidCheckoutState)
	}
	if !snap.ShippingAddress.Complete() {
		return nil, fmt.Errorf("%w: shipping address incomplete", domain.ErrInvalidCheckoutState)
	}
	method := strings.TrimSpace(snap.PaymentMethod)
	if method == "" {
		return nil, fmt.Errorf("%w: payment method required", domain.ErrInvalidCheckoutState)
	}

	items := make([]domain.LineItem, 0, len(snap.Items))
	seen := make(map[string]struct{}, len(snap.Items))
	for _, item := range snap.Items {
		if _, dup := seen[item.ProductRef]; dup {
			return nil, fmt.Errorf("%w: duplicate item %s", domain.ErrInvalidCheckoutState, item.ProductRef)
		}
		seen[item.ProductRef] = struct{}{}
		if err := s.checkLine(ctx, item); err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	itemsTotal, err := pricing.ItemsTotal(items)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidCheckoutState, err)
	}
	totals := pricing.ComputeTotals(itemsTotal)
	id := snap.OrderID
	if id == "" {
		id = s.newID()
	}
	o := domain.Order{
		ID:                 id,
		OwnerID:            principal.ID,
		Items:              items,
		ShippingAddress:    *snap.ShippingAddress,
		PaymentMethod:      method,
		ItemsPriceCents:    itemsTotal,
		ShippingPriceCents: totals.ShippingCents,
		TaxPriceCents:      totals.TaxCents,
		TotalPriceCents:    itemsTotal + totals.ShippingCents + totals.TaxCents,
		Status:             domain.OrderStatusCreated,
		CreatedAt:          s.now(),
	}

	created, err := s.orders.Create(ctx, o)
	if errors.Is(err, domain.ErrAlreadyExists) && snap.OrderID != "" {
		if existing, ok, perr := s.placed(ctx, principal, snap.OrderID); ok || perr != nil {
			return existing, perr
		}
	}
	if err != nil {
		return nil, err
	}
	s.logger.Info("order created",
		zap.String("order_id", created.ID),
		zap.String("owner_id", created.OwnerID),
		zap.Int64("total_cents", created.TotalPriceCents),
	)
	s.publish(ctx, events.OrderCreated, created)
	return created, nil
}

// placed returns the order already stored under a checkout id. An order owned by someone else is an error.
func (s *Service) placed(ctx context.Context, principal domain.Principal, id string) (*domain.Order, bool, error) {
	o, err := s.orders.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if o.OwnerID != principal.ID {
		return nil, false, fmt.Errorf("%w: checkout %s already used", domain.ErrInvalidCheckoutState, id)
	}
	s.logger.Info("order already placed for checkout", zap.String("order_id", o.ID))
	return o, true, nil
}

func (s *Service) checkLine(ctx context.Context, item domain.LineItem) error {
	if item.Quantity < 1 {
		return fmt.Errorf("%w: quantity for %s must be at least 1", domain.ErrInvalidCheckoutState, item.ProductRef)
	}
	if item.UnitPriceCents < 0 || item.UnitPriceCents > pricing.MaxAmountCents {
		return fmt.Errorf("%w: price for %s out of range", domain.ErrInvalidCheckoutState, item.ProductRef)
	}
	product, err := s.products.GetByID(ctx, item.ProductRef)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: unknown product %s", domain.ErrInvalidCheckoutState, item.ProductRef)
		}
		return err
	}
	if item.Quantity > product.CountInStock {
		return fmt.Errorf("%w: only %d of %s in stock", domain.ErrInvalidCheckoutState, product.CountInStock, item.ProductRef)
	}
	if item.UnitPriceCents != product.PriceCents {
		return fmt.Errorf("%w: price of %s changed to %s", domain.ErrInvalidCheckoutState, item.ProductRef, pricing.FormatCents(product.PriceCents))
	}
	return nil
}

// GetOrder returns the order when the principal owns it or is an admin.
func (s *Service) GetOrder(ctx context.Context, principal domain.Principal, id string) (*domain.Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !principal.CanAccess(o.OwnerID) {
		return nil, fmt.Errorf("%w: order %s", domain.ErrUnauthorized, id)
	}
	return o, nil
}

// ListOrders returns the principal's own orders, newest first.
func (s *Service) ListOrders(ctx context.Context, principal domain.Principal) ([]domain.Order, error) {
	if principal.ID == "" {
		return nil, fmt.Errorf("%w: principal required", domain.ErrUnauthorized)
	}
	return s.orders.ListByOwner(ctx, principal.ID)
}

// MarkDelivered moves a paid order to delivered. Repeating it on a delivered order is a no-op.
func (s *Service) MarkDelivered(ctx context.Context, principal domain.Principal, id string) (*domain.Order, error) {
	if !principal.IsAdmin() {
		return nil, fmt.Errorf("%w: admin role required", domain.ErrUnauthorized)
	}
	current, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch current.Status {
	case domain.OrderStatusDelivered:
		return current, nil
	case domain.OrderStatusCreated:
		return nil, fmt.Errorf("%w: order %s is not paid", domain.ErrInvalidTransition, id)
	}

	updated, err := s.orders.Transition(ctx, id, orderrepo.Transition{
		From: domain.OrderStatusPaid,
		To:   domain.OrderStatusDelivered,
		At:   s.now(),
	})
	if errors.Is(err, orderrepo.ErrStatusConflict) {
		if updated != nil && updated.Status == domain.OrderStatusDelivered {
			return updated, nil
		}
		return nil, fmt.Errorf("%w: order %s changed concurrently", domain.ErrInvalidTransition, id)
	}
	if err != nil {
		return nil, err
	}
	s.logger.Info("order delivered", zap.String("order_id", id))
	s.publish(ctx, events.OrderDelivered, updated)
	return updated, nil
}

func (s *Service) publish(ctx context.Context, key string, o *domain.Order) {
	if err := s.publisher.Publish(ctx, key, events.NewOrderEvent(o, s.now())); err != nil {
		s.logger.Warn("order event publish failed",
			zap.String("routing_key", key),
			zap.String("order_id", o.ID),
			zap.Error(err),
		)
	}
}
