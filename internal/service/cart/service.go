package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/logging"
	"storefront/internal/pricing"
	cartrepo "storefront/internal/repository/cart"
	ordersvc "storefront/internal/service/order"
)

// ErrInvalidInput is returned for malformed cart mutations.
var ErrInvalidInput = errors.New("invalid cart input")

type cartRepo interface {
	Load(ctx context.Context, sessionID string) (*domain.Cart, error)
	Save(ctx context.Context, cart *domain.Cart) error
	Delete(ctx context.Context, sessionID string) error
}

type productRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Product, error)
}

type orderCreator interface {
	CreateOrder(ctx context.Context, principal domain.Principal, snap ordersvc.Snapshot) (*domain.Order, error)
}

type Service struct {
	repo        cartRepo
	productRepo productRepo
	orders      orderCreator
	logger      *zap.Logger
	now         func() time.Time
}

func New(repo cartRepo, productRepo productRepo, orders orderCreator, logger *zap.Logger) *Service {
	return &Service{
		repo:        repo,
		productRepo: productRepo,
		orders:      orders,
		logger:      logging.OrNop(logger),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// OpenSession mints a session id and persists an empty cart for it.
func (s *Service) OpenSession(ctx context.Context) (*domain.Cart, error) {
	cart := domain.NewCart(uuid.NewString())
	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// Get returns the stored cart, or an empty one when nothing was saved for the session yet.
func (s *Service) Get(ctx context.Context, sessionID string) (*domain.Cart, error) {
	return s.load(ctx, sessionID)
}

// AddOrUpdateItem snapshots the catalog entry into the cart. Re-adding a product replaces its line.
func (s *Service) AddOrUpdateItem(ctx context.Context, sessionID, productRef string, quantity int) (*domain.Cart, error) {
	productRef = strings.TrimSpace(productRef)
	if productRef == "" {
		return nil, fmt.Errorf("%w: productRef required", ErrInvalidInput)
	}
	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", ErrInvalidInput)
	}
	product, err := s.productRepo.GetByID(ctx, productRef)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, sessionID, func(c *domain.Cart) error {
		c.Upsert(domain.LineItem{
			ProductRef:     product.ID,
			Name:           product.Name,
			Image:          product.Image,
			UnitPriceCents: product.PriceCents,
			Quantity:       quantity,
		})
		return nil
	})
}

func (s *Service) RemoveItem(ctx context.Context, sessionID, productRef string) (*domain.Cart, error) {
	return s.mutate(ctx, sessionID, func(c *domain.Cart) error {
		c.Remove(strings.TrimSpace(productRef))
		return nil
	})
}

func (s *Service) SetShippingAddress(ctx context.Context, sessionID string, addr domain.ShippingAddress) (*domain.Cart, error) {
	return s.mutate(ctx, sessionID, func(c *domain.Cart) error {
		c.ShippingAddress = &domain.ShippingAddress{
			Address:    strings.TrimSpace(addr.Address),
			City:       strings.TrimSpace(addr.City),
			PostalCode: strings.TrimSpace(addr.PostalCode),
			Country:    strings.TrimSpace(addr.Country),
		}
		return nil
	})
}

func (s *Service) SetPaymentMethod(ctx context.Context, sessionID, method string) (*domain.Cart, error) {
	method = strings.TrimSpace(method)
	if method == "" {
		return nil, fmt.Errorf("%w: payment method required", ErrInvalidInput)
	}
	return s.mutate(ctx, sessionID, func(c *domain.Cart) error {
		c.PaymentMethod = method
		return nil
	})
}

// Clear empties the cart and restores the default selections.
func (s *Service) Clear(ctx context.Context, sessionID string) (*domain.Cart, error) {
	return s.mutate(ctx, sessionID, func(c *domain.Cart) error {
		c.Reset()
		return nil
	})
}

// Checkout places an order from the current cart and drops the cart once the order exists.
// The cart carries a checkout id until it is mutated, so retrying after a failed drop returns
// the order already placed instead of a second one.
func (s *Service) Checkout(ctx context.Context, principal domain.Principal, sessionID string) (*domain.Order, error) {
	cart, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if cart.CheckoutID == "" {
		cart.CheckoutID = uuid.NewString()
		if err := s.save(ctx, cart); err != nil {
			return nil, err
		}
	}
	snap := ordersvc.Snapshot{
		OrderID:         cart.CheckoutID,
		Items:           append([]domain.LineItem{}, cart.Items...),
		ShippingAddress: cart.ShippingAddress,
		PaymentMethod:   cart.PaymentMethod,
	}
	order, err := s.orders.CreateOrder(ctx, principal, snap)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Delete(ctx, sessionID); err != nil {
		s.logger.Warn("cart: drop after checkout failed",
			zap.String("session_id", sessionID),
			zap.String("order_id", order.ID),
			zap.Error(err),
		)
	}
	return order, nil
}

func (s *Service) mutate(ctx context.Context, sessionID string, fn func(*domain.Cart) error) (*domain.Cart, error) {
	cart, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := fn(cart); err != nil {
		return nil, err
	}
	cart.CheckoutID = ""
	if err := s.save(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *Service) load(ctx context.Context, sessionID string) (*domain.Cart, error) {
	if _, err := uuid.Parse(sessionID); err != nil {
		return nil, fmt.Errorf("%w: malformed session id", ErrInvalidInput)
	}
	cart, err := s.repo.Load(ctx, sessionID)
	if errors.Is(err, cartrepo.ErrSessionNotFound) {
		return domain.NewCart(sessionID), nil
	}
	if err != nil {
		return nil, err
	}
	if cart.PaymentMethod == "" {
		cart.PaymentMethod = domain.DefaultPaymentMethod
	}
	return cart, nil
}

func (s *Service) save(ctx context.Context, cart *domain.Cart) error {
	if err := pricing.Recalculate(cart); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	cart.UpdatedAt = s.now()
	if err := s.repo.Save(ctx, cart); err != nil {
		s.logger.Error("cart: save failed", zap.String("session_id", cart.SessionID), zap.Error(err))
		return err
	}
	return nil
}
