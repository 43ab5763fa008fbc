package order

import (
	"context"
	"sort"
	"sync"

	"storefront/internal/domain"
)

// MemoryStore is an in-process test ledger with the same conditional-update semantics as the Postgres one.
type MemoryStore struct {
	mu     sync.Mutex
	orders map[string]domain.Order
	seq    int
	order  map[string]int
}

// NewMemoryStore constructs an empty ledger.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{orders: make(map[string]domain.Order), order: make(map[string]int)}
}

func (s *MemoryStore) Create(_ context.Context, o domain.Order) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.orders[o.ID]; exists {
		return nil, domain.ErrAlreadyExists
	}
	o.Status = domain.OrderStatusCreated
	o.UpdatedAt = o.CreatedAt
	s.orders[o.ID] = cloneOrder(o)
	s.seq++
	s.order[o.ID] = s.seq
	out := cloneOrder(o)
	return &out, nil
}

func (s *MemoryStore) GetByID(_ context.Context, id string) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := cloneOrder(o)
	return &out, nil
}

func (s *MemoryStore) ListByOwner(_ context.Context, ownerID string) ([]domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := []domain.Order{}
	for _, o := range s.orders {
		if o.OwnerID == ownerID {
			result = append(result, cloneOrder(o))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return s.order[result[i].ID] > s.order[result[j].ID]
	})
	return result, nil
}

func (s *MemoryStore) Transition(_ context.Context, id string, t Transition) (*domain.Order, error) {
	if !domain.CanTransition(t.From, t.To) {
		return nil, domain.ErrInvalidTransition
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if o.Status != t.From {
		out := cloneOrder(o)
		return &out, ErrStatusConflict
	}
	at := t.At
	o.Status = t.To
	switch t.To {
	case domain.OrderStatusPaid:
		o.PaidAt = &at
	case domain.OrderStatusDelivered:
		o.DeliveredAt = &at
	}
	if t.Proof != nil {
		proof := *t.Proof
		o.GatewayProof = &proof
	}
	o.UpdatedAt = at
	s.orders[id] = cloneOrder(o)
	out := cloneOrder(o)
	return &out, nil
}

func cloneOrder(o domain.Order) domain.Order {
	out := o
	out.Items = append([]domain.LineItem{}, o.Items...)
	if o.PaidAt != nil {
		v := *o.PaidAt
		out.PaidAt = &v
	}
	if o.DeliveredAt != nil {
		v := *o.DeliveredAt
		out.DeliveredAt = &v
	}
	if o.GatewayProof != nil {
		v := *o.GatewayProof
		out.GatewayProof = &v
	}
	return out
}
