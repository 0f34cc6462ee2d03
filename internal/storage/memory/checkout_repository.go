package memory

import (
	"fmt"
	"sync"
	"time"

	"github.com/Sina-Lotfi/storefront/internal/domain"
)

// checkoutRepositoryInMemory converts carts to orders over the in-memory
// stores. A single mutex serializes conversions, which gives the same
// guarantee the SQL store gets from its row lock: of two concurrent
// conversions of one cart, exactly one succeeds and the other observes the
// cart as gone.
type checkoutRepositoryInMemory struct {
	mu     sync.Mutex
	carts  *cartRepositoryInMemory
	orders *orderRepositoryInMemory
	outbox *outboxRepositoryInMemory
}

// NewCheckoutRepository wires the in-memory checkout conversion over the
// given stores.
func NewCheckoutRepository(carts *cartRepositoryInMemory, orders *orderRepositoryInMemory, outbox *outboxRepositoryInMemory) *checkoutRepositoryInMemory {
	return &checkoutRepositoryInMemory{
		carts:  carts,
		orders: orders,
		outbox: outbox,
	}
}

func (r *checkoutRepositoryInMemory) ConvertCart(cartID string, customerID int64, placedAt time.Time) (domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	exists, err := r.carts.Exists(cartID)
	if err != nil {
		return domain.Order{}, err
	}
	if !exists {
		return domain.Order{}, domain.ErrCartNotFound
	}

	// Joined read: items whose product vanished are already dropped here.
	items, err := r.carts.ListItems(cartID)
	if err != nil {
		return domain.Order{}, err
	}
	if len(items) == 0 {
		return domain.Order{}, domain.ErrCartEmpty
	}

	order := domain.Order{
		CustomerID:    customerID,
		PlacedAt:      placedAt,
		PaymentStatus: domain.PaymentStatusPending,
	}
	for _, item := range items {
		order.Items = append(order.Items, domain.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.Product.UnitPrice,
		})
	}

	order = r.orders.insert(order)

	msg, err := domain.NewOrderCreatedMessage(order)
	if err != nil {
		return domain.Order{}, err
	}
	if _, err := r.outbox.Enqueue(msg); err != nil {
		return domain.Order{}, fmt.Errorf("enqueue order_created: %w", err)
	}

	if err := r.carts.DeleteCart(cartID); err != nil {
		return domain.Order{}, err
	}

	return order, nil
}

var _ domain.CheckoutRepository = (*checkoutRepositoryInMemory)(nil)
