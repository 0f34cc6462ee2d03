package memory

import (
	"sort"
	"sync"

	"github.com/Sina-Lotfi/storefront/internal/domain"
)

// orderRepositoryInMemory stores placed orders for local development and tests.
type orderRepositoryInMemory struct {
	mu         sync.RWMutex
	orders     map[int64]domain.Order
	nextID     int64
	nextItemID int64
}

// NewOrderRepository returns an in-memory order store. Orders enter it only
// through the checkout conversion (or test seeding via insert).
func NewOrderRepository() *orderRepositoryInMemory {
	return &orderRepositoryInMemory{orders: make(map[int64]domain.Order)}
}

func (r *orderRepositoryInMemory) Get(id int64) (domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return cloneOrder(order), nil
}

func (r *orderRepositoryInMemory) ListByCustomer(customerID int64, limit int) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Order, 0)
	for _, order := range r.orders {
		if order.CustomerID != customerID {
			continue
		}
		result = append(result, cloneOrder(order))
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].PlacedAt.Equal(result[j].PlacedAt) {
			return result[i].PlacedAt.After(result[j].PlacedAt)
		}
		return result[i].ID > result[j].ID
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *orderRepositoryInMemory) SetPaymentStatus(id int64, status domain.PaymentStatus) (domain.Order, error) {
	if !domain.ValidPaymentStatus(status) {
		return domain.Order{}, domain.ErrPaymentStatusInvalid
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	order.PaymentStatus = status
	r.orders[id] = order
	return cloneOrder(order), nil
}

// HasProduct reports whether any order item snapshots the product; it backs
// the catalog's delete guard.
func (r *orderRepositoryInMemory) HasProduct(productID int64) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, order := range r.orders {
		for _, item := range order.Items {
			if item.ProductID == productID {
				return true
			}
		}
	}
	return false
}

// insert assigns ids and stores the order. Used by the in-memory checkout
// conversion and by tests.
func (r *orderRepositoryInMemory) insert(order domain.Order) domain.Order {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	order.ID = r.nextID
	for i := range order.Items {
		r.nextItemID++
		order.Items[i].ID = r.nextItemID
		order.Items[i].OrderID = order.ID
	}
	r.orders[order.ID] = cloneOrder(order)
	return order
}

// cloneOrder copies the order so callers cannot mutate stored state through
// the shared items slice.
func cloneOrder(order domain.Order) domain.Order {
	items := make([]domain.OrderItem, len(order.Items))
	copy(items, order.Items)
	order.Items = items
	return order
}

var _ domain.OrderRepository = (*orderRepositoryInMemory)(nil)
