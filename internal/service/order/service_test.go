package order

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"storefront/internal/domain"
	"storefront/internal/events"
	"storefront/internal/pricing"
	orderrepo "storefront/internal/repository/order"
)

type stubProducts struct {
	products map[string]domain.Product
	err      error
}

func (s *stubProducts) GetByID(_ context.Context, id string) (*domain.Product, error) {
	if s.err != nil {
		return nil, s.err
	}
	p, ok := s.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

type recordingPublisher struct {
	keys []string
	err  error
}

func (p *recordingPublisher) Publish(_ context.Context, key string, _ events.OrderEvent) error {
	p.keys = append(p.keys, key)
	return p.err
}

var (
	alice = domain.Principal{ID: "alice", Role: domain.RoleUser}
	bob   = domain.Principal{ID: "bob", Role: domain.RoleUser}
	admin = domain.Principal{ID: "root", Role: domain.RoleAdmin}
)

func fullAddress() *domain.ShippingAddress {
	return &domain.ShippingAddress{Address: "1 Main", City: "Pune", PostalCode: "411001", Country: "IN"}
}

func newTestService(t *testing.T) (*Service, *orderrepo.MemoryStore, *recordingPublisher) {
	t.Helper()
	store := orderrepo.NewMemoryStore()
	products := &stubProducts{products: map[string]domain.Product{
		"P1": {ID: "P1", Name: "Lamp", PriceCents: 6000, CountInStock: 5},
		"P2": {ID: "P2", Name: "Mug", PriceCents: 333, CountInStock: 1},
		"P3": {ID: "P3", Name: "Vault", PriceCents: pricing.MaxAmountCents, CountInStock: 5},
	}}
	pub := &recordingPublisher{}
	svc := New(store, products, pub, nil)
	seq := 0
	svc.newID = func() string {
		seq++
		return fmt.Sprintf("order-%d", seq)
	}
	return svc, store, pub
}

func TestCreateOrder_ComputesTotals(t *testing.T) {
	svc, _, pub := newTestService(t)

	o, err := svc.CreateOrder(context.Background(), alice, Snapshot{
		Items:           []domain.LineItem{{ProductRef: "P1", Name: "Lamp", UnitPriceCents: 6000, Quantity: 2}},
		ShippingAddress: fullAddress(),
		PaymentMethod:   "Razorpay",
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if o.ItemsPriceCents != 12000 || o.ShippingPriceCents != 0 || o.TaxPriceCents != 1800 || o.TotalPriceCents != 13800 {
		t.Fatalf("unexpected totals %+v", o)
	}
	if o.Status != domain.OrderStatusCreated || o.OwnerID != "alice" || o.ID != "order-1" {
		t.Fatalf("unexpected order %+v", o)
	}
	if len(pub.keys) != 1 || pub.keys[0] != events.OrderCreated {
		t.Fatalf("expected order.created event, got %v", pub.keys)
	}
}

func TestCreateOrder_RoundsTaxHalfUp(t *testing.T) {
	svc, _, _ := newTestService(t)
	o, err := svc.CreateOrder(context.Background(), alice, Snapshot{
		Items:           []domain.LineItem{{ProductRef: "P2", UnitPriceCents: 333, Quantity: 1}},
		ShippingAddress: fullAddress(),
		PaymentMethod:   "Razorpay",
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if o.ShippingPriceCents != 1000 || o.TaxPriceCents != 50 || o.TotalPriceCents != 1383 {
		t.Fatalf("unexpected totals %+v", o)
	}
}

func TestCreateOrder_InvalidCheckoutState(t *testing.T) {
	valid := []domain.LineItem{{ProductRef: "P1", UnitPriceCents: 6000, Quantity: 1}}
	cases := map[string]Snapshot{
		"no items":        {ShippingAddress: fullAddress(), PaymentMethod: "Razorpay"},
		"no address":      {Items: valid, PaymentMethod: "Razorpay"},
		"partial address": {Items: valid, ShippingAddress: &domain.ShippingAddress{Address: "1 Main"}, PaymentMethod: "Razorpay"},
		"no method":       {Items: valid, ShippingAddress: fullAddress(), PaymentMethod: "  "},
		"zero quantity":   {Items: []domain.LineItem{{ProductRef: "P1", Quantity: 0}}, ShippingAddress: fullAddress(), PaymentMethod: "Razorpay"},
		"over stock":      {Items: []domain.LineItem{{ProductRef: "P2", Quantity: 2}}, ShippingAddress: fullAddress(), PaymentMethod: "Razorpay"},
		"unknown product": {Items: []domain.LineItem{{ProductRef: "P9", Quantity: 1}}, ShippingAddress: fullAddress(), PaymentMethod: "Razorpay"},
		"duplicate item":  {Items: append(append([]domain.LineItem{}, valid...), valid...), ShippingAddress: fullAddress(), PaymentMethod: "Razorpay"},
		"stale price":     {Items: []domain.LineItem{{ProductRef: "P1", UnitPriceCents: 1, Quantity: 1}}, ShippingAddress: fullAddress(), PaymentMethod: "Razorpay"},
		"huge price":      {Items: []domain.LineItem{{ProductRef: "P1", UnitPriceCents: 10_000_000_000_000_000, Quantity: 1}}, ShippingAddress: fullAddress(), PaymentMethod: "Razorpay"},
		"total above cap": {Items: []domain.LineItem{{ProductRef: "P3", UnitPriceCents: pricing.MaxAmountCents, Quantity: 2}}, ShippingAddress: fullAddress(), PaymentMethod: "Razorpay"},
	}
	for name, snap := range cases {
		t.Run(name, func(t *testing.T) {
			svc, store, pub := newTestService(t)
			_, err := svc.CreateOrder(context.Background(), alice, snap)
			if !errors.Is(err, domain.ErrInvalidCheckoutState) {
				t.Fatalf("expected ErrInvalidCheckoutState, got %v", err)
			}
			if list, _ := store.ListByOwner(context.Background(), "alice"); len(list) != 0 {
				t.Fatalf("expected no order persisted, got %d", len(list))
			}
			if len(pub.keys) != 0 {
				t.Fatalf("expected no events, got %v", pub.keys)
			}
		})
	}
}

func TestCreateOrder_LargestTotalStaysConsistent(t *testing.T) {
	svc, _, _ := newTestService(t)
	o, err := svc.CreateOrder(context.Background(), alice, Snapshot{
		Items:           []domain.LineItem{{ProductRef: "P3", UnitPriceCents: pricing.MaxAmountCents, Quantity: 1}},
		ShippingAddress: fullAddress(),
		PaymentMethod:   "Razorpay",
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if o.TaxPriceCents <= 0 || o.TotalPriceCents > pricing.MaxTotalCents ||
		o.TotalPriceCents != o.ItemsPriceCents+o.ShippingPriceCents+o.TaxPriceCents {
		t.Fatalf("inconsistent totals %+v", o)
	}
}

func TestCreateOrder_RepeatedCheckoutIDReturnsPlacedOrder(t *testing.T) {
	svc, store, pub := newTestService(t)
	ctx := context.Background()
	snap := Snapshot{
		OrderID:         "checkout-1",
		Items:           []domain.LineItem{{ProductRef: "P1", UnitPriceCents: 6000, Quantity: 1}},
		ShippingAddress: fullAddress(),
		PaymentMethod:   "Razorpay",
	}
	first, err := svc.CreateOrder(ctx, alice, snap)
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if first.ID != "checkout-1" {
		t.Fatalf("expected checkout id as order id, got %s", first.ID)
	}
	second, err := svc.CreateOrder(ctx, alice, snap)
	if err != nil {
		t.Fatalf("repeat CreateOrder: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected same order, got %s and %s", first.ID, second.ID)
	}
	if list, _ := store.ListByOwner(ctx, "alice"); len(list) != 1 {
		t.Fatalf("expected one stored order, got %d", len(list))
	}
	if len(pub.keys) != 1 {
		t.Fatalf("expected one order.created event, got %v", pub.keys)
	}
	if _, err := svc.CreateOrder(ctx, bob, snap); !errors.Is(err, domain.ErrInvalidCheckoutState) {
		t.Fatalf("expected ErrInvalidCheckoutState for another owner, got %v", err)
	}
}

func TestCreateOrder_CatalogErrorPropagates(t *testing.T) {
	boom := errors.New("db down")
	svc := New(orderrepo.NewMemoryStore(), &stubProducts{err: boom}, nil, nil)
	_, err := svc.CreateOrder(context.Background(), alice, Snapshot{
		Items:           []domain.LineItem{{ProductRef: "P1", Quantity: 1}},
		ShippingAddress: fullAddress(),
		PaymentMethod:   "Razorpay",
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected catalog error, got %v", err)
	}
}

func TestCreateOrder_PublishFailureDoesNotFail(t *testing.T) {
	svc, _, pub := newTestService(t)
	pub.err = errors.New("broker down")
	if _, err := svc.CreateOrder(context.Background(), alice, Snapshot{
		Items:           []domain.LineItem{{ProductRef: "P1", UnitPriceCents: 6000, Quantity: 1}},
		ShippingAddress: fullAddress(),
		PaymentMethod:   "Razorpay",
	}); err != nil {
		t.Fatalf("expected success despite publish error, got %v", err)
	}
}

func TestGetOrder_Access(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	o := mustCreate(t, svc, alice)

	if _, err := svc.GetOrder(ctx, alice, o.ID); err != nil {
		t.Fatalf("owner: %v", err)
	}
	if _, err := svc.GetOrder(ctx, admin, o.ID); err != nil {
		t.Fatalf("admin: %v", err)
	}
	if _, err := svc.GetOrder(ctx, bob, o.ID); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if _, err := svc.GetOrder(ctx, alice, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListOrders_NewestFirst(t *testing.T) {
	svc, _, _ := newTestService(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	svc.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}
	first := mustCreate(t, svc, alice)
	second := mustCreate(t, svc, alice)
	mustCreate(t, svc, bob)

	list, err := svc.ListOrders(context.Background(), alice)
	if err != nil {
		t.Fatalf("ListOrders: %v", err)
	}
	if len(list) != 2 || list[0].ID != second.ID || list[1].ID != first.ID {
		t.Fatalf("unexpected order list %+v", list)
	}
}

func TestMarkDelivered(t *testing.T) {
	svc, store, pub := newTestService(t)
	ctx := context.Background()
	o := mustCreate(t, svc, alice)

	if _, err := svc.MarkDelivered(ctx, alice, o.ID); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for non-admin, got %v", err)
	}
	if _, err := svc.MarkDelivered(ctx, admin, o.ID); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for unpaid order, got %v", err)
	}

	if _, err := store.Transition(ctx, o.ID, orderrepo.Transition{From: domain.OrderStatusCreated, To: domain.OrderStatusPaid, At: time.Now()}); err != nil {
		t.Fatalf("pay: %v", err)
	}

	delivered, err := svc.MarkDelivered(ctx, admin, o.ID)
	if err != nil {
		t.Fatalf("MarkDelivered: %v", err)
	}
	if delivered.Status != domain.OrderStatusDelivered || delivered.DeliveredAt == nil {
		t.Fatalf("unexpected order %+v", delivered)
	}

	again, err := svc.MarkDelivered(ctx, admin, o.ID)
	if err != nil {
		t.Fatalf("repeat MarkDelivered: %v", err)
	}
	if !again.DeliveredAt.Equal(*delivered.DeliveredAt) {
		t.Fatalf("expected deliveredAt unchanged")
	}
	if got := pub.keys[len(pub.keys)-1]; got != events.OrderDelivered {
		t.Fatalf("expected last event order.delivered, got %s", got)
	}
	deliveredEvents := 0
	for _, k := range pub.keys {
		if k == events.OrderDelivered {
			deliveredEvents++
		}
	}
	if deliveredEvents != 1 {
		t.Fatalf("expected one delivered event, got %d", deliveredEvents)
	}
}

func mustCreate(t *testing.T, svc *Service, p domain.Principal) *domain.Order {
	t.Helper()
	o, err := svc.CreateOrder(context.Background(), p, Snapshot{
		Items:           []domain.LineItem{{ProductRef: "P1", UnitPriceCents: 6000, Quantity: 1}},
		ShippingAddress: fullAddress(),
		PaymentMethod:   "Razorpay",
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	return o
}
