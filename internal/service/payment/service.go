package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/events"
	"storefront/internal/logging"
	"storefront/internal/payments"
	"storefront/internal/pricing"
	orderrepo "storefront/internal/repository/order"
)

// ChargeStatusPaid is recorded on the gateway proof of a verified charge.
const ChargeStatusPaid = "PAID"

type orderRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	Transition(ctx context.Context, id string, t orderrepo.Transition) (*domain.Order, error)
}

// Config carries the gateway key material. KeySecret never leaves the server.
type Config struct {
	KeyID     string
	KeySecret string
	Currency  string
}

// PublicConfig is what the storefront client needs to open the gateway checkout widget.
type PublicConfig struct {
	KeyID    string `json:"keyId"`
	Currency string `json:"currency"`
}

// Proof is the charge result the client relays after completing payment at the gateway.
type Proof struct {
	OrderID         string
	GatewayIntentID string
	GatewayChargeID string
	Signature       string
}

type Service struct {
	orders    orderRepo
	gateway   payments.Gateway
	publisher events.Publisher
	cfg       Config
	logger    *zap.Logger
	now       func() time.Time
}

func New(orders orderRepo, gateway payments.Gateway, publisher events.Publisher, cfg Config, logger *zap.Logger) *Service {
	logger = logging.OrNop(logger)
	if publisher == nil {
		publisher = events.NewLogPublisher(logger)
	}
	if cfg.Currency == "" {
		cfg.Currency = "INR"
	}
	return &Service{
		orders:    orders,
		gateway:   gateway,
		publisher: publisher,
		cfg:       cfg,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Config() PublicConfig {
	return PublicConfig{KeyID: s.cfg.KeyID, Currency: s.cfg.Currency}
}

// OpenIntent asks the gateway for a payment intent covering the order total. The order itself is not
// modified; opening several intents for one order is allowed.
func (s *Service) OpenIntent(ctx context.Context, principal domain.Principal, orderID string, claimed decimal.Decimal) (*payments.Intent, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !principal.CanAccess(o.OwnerID) {
		return nil, fmt.Errorf("%w: order %s", domain.ErrUnauthorized, orderID)
	}
	if o.Status != domain.OrderStatusCreated {
		return nil, fmt.Errorf("%w: order %s is %s", domain.ErrInvalidTransition, orderID, o.Status)
	}
	claimedCents, err := pricing.ParseAmount(claimed)
	if err != nil || claimedCents != o.TotalPriceCents {
		return nil, fmt.Errorf("%w: claimed %s, order total %s", domain.ErrAmountMismatch, claimed.String(), pricing.FormatCents(o.TotalPriceCents))
	}

	intent, err := s.gateway.CreateIntent(ctx, payments.IntentRequest{
		Amount:   o.TotalPriceCents,
		Currency: s.cfg.Currency,
		Receipt:  o.ID,
	})
	if err != nil {
		s.logger.Error("payment: open intent failed", zap.String("order_id", o.ID), zap.Error(err))
		if errors.Is(err, domain.ErrGatewayUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}
	s.logger.Info("payment: intent opened",
		zap.String("order_id", o.ID),
		zap.String("intent_id", intent.ID),
		zap.Int64("amount_cents", intent.Amount),
	)
	return intent, nil
}

// VerifyCharge checks the charge signature and settles the order. A replay of an already settled
// order returns it unchanged; among concurrent callers only one performs the transition.
func (s *Service) VerifyCharge(ctx context.Context, principal domain.Principal, proof Proof) (*domain.Order, error) {
	intentID := strings.TrimSpace(proof.GatewayIntentID)
	chargeID := strings.TrimSpace(proof.GatewayChargeID)
	if intentID == "" || chargeID == "" || !payments.Verify(s.cfg.KeySecret, intentID, chargeID, proof.Signature) {
		s.logger.Warn("payment: signature rejected", zap.String("order_id", proof.OrderID), zap.String("intent_id", intentID))
		return nil, domain.ErrSignatureInvalid
	}

	o, err := s.orders.GetByID(ctx, proof.OrderID)
	if err != nil {
		return nil, err
	}
	if !principal.CanAccess(o.OwnerID) {
		return nil, fmt.Errorf("%w: order %s", domain.ErrUnauthorized, o.ID)
	}
	if o.Status.Reached(domain.OrderStatusPaid) {
		return o, nil
	}

	if err := s.checkIntent(ctx, o, intentID); err != nil {
		return nil, err
	}

	at := s.now()
	updated, err := s.orders.Transition(ctx, o.ID, orderrepo.Transition{
		From: domain.OrderStatusCreated,
		To:   domain.OrderStatusPaid,
		At:   at,
		Proof: &domain.GatewayProof{
			IntentID:  intentID,
			ChargeID:  chargeID,
			Status:    ChargeStatusPaid,
			Timestamp: at,
		},
	})
	if errors.Is(err, orderrepo.ErrStatusConflict) && updated != nil && updated.Status.Reached(domain.OrderStatusPaid) {
		return updated, nil
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("payment: order paid",
		zap.String("order_id", updated.ID),
		zap.String("intent_id", intentID),
		zap.String("charge_id", chargeID),
	)
	if err := s.publisher.Publish(ctx, events.OrderPaid, events.NewOrderEvent(updated, at)); err != nil {
		s.logger.Warn("payment: order event publish failed", zap.String("order_id", updated.ID), zap.Error(err))
	}
	return updated, nil
}

// checkIntent binds a signed charge to this checkout: the intent must have been opened for the order
// and for its full total.
func (s *Service) checkIntent(ctx context.Context, o *domain.Order, intentID string) error {
	intent, err := s.gateway.LookupIntent(ctx, intentID)
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("%w: unknown intent", domain.ErrSignatureInvalid)
	}
	if err != nil {
		if errors.Is(err, domain.ErrGatewayUnavailable) {
			return err
		}
		return fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}
	if intent.Receipt != o.ID || intent.Amount != o.TotalPriceCents {
		s.logger.Warn("payment: intent does not match order",
			zap.String("order_id", o.ID),
			zap.String("intent_id", intentID),
			zap.String("intent_receipt", intent.Receipt),
			zap.Int64("intent_amount", intent.Amount),
		)
		return fmt.Errorf("%w: intent belongs to another checkout", domain.ErrSignatureInvalid)
	}
	return nil
}
