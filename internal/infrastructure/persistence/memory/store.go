// Package memory holds the process-lifetime order store. Orders are
// never deleted; durability is an explicit non-goal of this service.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/elorajewelry/checkout-service/internal/application"
	"github.com/elorajewelry/checkout-service/internal/domain"
)

type OrderStore struct {
	mu            sync.RWMutex
	orders        map[string]*domain.Order
	byTransaction map[string]string
}

func NewOrderStore() *OrderStore {
	return &OrderStore{
		orders:        make(map[string]*domain.Order),
		byTransaction: make(map[string]string),
	}
}

var _ application.OrderStore = (*OrderStore)(nil)

func (s *OrderStore) Insert(ctx context.Context, order *domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.orders[order.RefID]; exists {
		return fmt.Errorf("order %q already exists", order.RefID)
	}

	stored := snapshot(order)
	s.orders[order.RefID] = stored
	if order.TransactionID != "" {
		s.byTransaction[order.TransactionID] = order.RefID
	}
	return nil
}

func (s *OrderStore) GetByRef(ctx context.Context, refID string) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.orders[refID]
	if !ok {
		return nil, application.ErrOrderNotFound
	}
	return snapshot(order), nil
}

func (s *OrderStore) GetByTransactionID(ctx context.Context, transactionID string) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	refID, ok := s.byTransaction[transactionID]
	if !ok {
		return nil, application.ErrOrderNotFound
	}
	order, ok := s.orders[refID]
	if !ok {
		return nil, application.ErrOrderNotFound
	}
	return snapshot(order), nil
}

// MarkPaid performs the unpaid->paid check-and-set under the store
// lock, so concurrent callers see exactly one true result per order.
func (s *OrderStore) MarkPaid(ctx context.Context, refID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[refID]
	if !ok {
		return false, nil
	}
	return order.MarkPaid(), nil
}

// snapshot copies an order so callers can never mutate stored state
// behind the lock's back.
func snapshot(o *domain.Order) *domain.Order {
	c := *o
	if o.Pickup != nil {
		pickup := *o.Pickup
		c.Pickup = &pickup
	}
	if o.Address != nil {
		addr := *o.Address
		c.Address = &addr
	}
	if o.Items != nil {
		c.Items = make([]domain.LineItem, len(o.Items))
		copy(c.Items, o.Items)
	}
	return &c
}
