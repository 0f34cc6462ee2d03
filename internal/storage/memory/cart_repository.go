package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Sina-Lotfi/storefront/internal/domain"
)

// cartRecord stores the cart row and its items keyed by product id, which
// makes the unique-per-(cart, product) rule structural.
type cartRecord struct {
	id        string
	createdAt time.Time
	items     map[int64]*domain.CartItem
}

// cartRepositoryInMemory holds carts for local development and tests.
type cartRepositoryInMemory struct {
	mu         sync.RWMutex
	carts      map[string]*cartRecord
	nextItemID int64

	catalog domain.CatalogRepository
}

// NewCartRepository returns an in-memory cart store. The catalog is consulted
// on reads to join current product rows into items; items whose product has
// been deleted silently drop out, matching the cascade semantics of the SQL
// store.
func NewCartRepository(catalog domain.CatalogRepository) *cartRepositoryInMemory {
	return &cartRepositoryInMemory{
		carts:   make(map[string]*cartRecord),
		catalog: catalog,
	}
}

func (r *cartRepositoryInMemory) Create(cart domain.Cart) (domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cart.ID == "" {
		cart.ID = uuid.NewString()
	}
	if cart.CreatedAt.IsZero() {
		cart.CreatedAt = time.Now().UTC()
	}
	r.carts[cart.ID] = &cartRecord{
		id:        cart.ID,
		createdAt: cart.CreatedAt,
		items:     make(map[int64]*domain.CartItem),
	}
	cart.Items = nil
	return cart, nil
}

func (r *cartRepositoryInMemory) Get(id string) (domain.Cart, error) {
	r.mu.RLock()
	record, ok := r.carts[id]
	r.mu.RUnlock()
	if !ok {
		return domain.Cart{}, domain.ErrCartNotFound
	}

	items, err := r.ListItems(id)
	if err != nil {
		return domain.Cart{}, err
	}
	return domain.Cart{ID: record.id, CreatedAt: record.createdAt, Items: items}, nil
}

func (r *cartRepositoryInMemory) Exists(id string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.carts[id]
	return ok, nil
}

func (r *cartRepositoryInMemory) ListItems(cartID string) ([]domain.CartItem, error) {
	r.mu.RLock()
	record, ok := r.carts[cartID]
	if !ok {
		r.mu.RUnlock()
		return nil, domain.ErrCartNotFound
	}
	bare := make([]domain.CartItem, 0, len(record.items))
	for _, item := range record.items {
		bare = append(bare, *item)
	}
	r.mu.RUnlock()

	result := make([]domain.CartItem, 0, len(bare))
	for _, item := range bare {
		product, err := r.catalog.GetProduct(item.ProductID)
		if err != nil {
			// Product deleted after the item was added: drop the line.
			continue
		}
		item.Product = &product
		result = append(result, item)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *cartRepositoryInMemory) UpsertItem(cartID string, productID int64, quantity int) (domain.CartItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.carts[cartID]
	if !ok {
		return domain.CartItem{}, domain.ErrCartNotFound
	}

	if existing, ok := record.items[productID]; ok {
		existing.Quantity = quantity
		return *existing, nil
	}

	r.nextItemID++
	item := &domain.CartItem{
		ID:        r.nextItemID,
		CartID:    cartID,
		ProductID: productID,
		Quantity:  quantity,
	}
	record.items[productID] = item
	return *item, nil
}

func (r *cartRepositoryInMemory) SetItemQuantity(cartID string, productID int64, quantity int) (domain.CartItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.carts[cartID]
	if !ok {
		return domain.CartItem{}, domain.ErrCartNotFound
	}
	item, ok := record.items[productID]
	if !ok {
		return domain.CartItem{}, domain.ErrCartItemNotFound
	}
	item.Quantity = quantity
	return *item, nil
}

func (r *cartRepositoryInMemory) DeleteCart(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Idempotent: deleting an absent cart is a no-op. Items go with the cart.
	delete(r.carts, id)
	return nil
}

func (r *cartRepositoryInMemory) DeleteOlderThan(before time.Time, limit int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if limit <= 0 {
		limit = 100
	}

	deleted := 0
	for id, record := range r.carts {
		if !record.createdAt.Before(before) {
			continue
		}
		delete(r.carts, id)
		deleted++
		if deleted >= limit {
			break
		}
	}
	return deleted, nil
}

var _ domain.CartRepository = (*cartRepositoryInMemory)(nil)
