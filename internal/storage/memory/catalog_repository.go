package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Sina-Lotfi/storefront/internal/domain"
)

// orderItemChecker reports whether any order item snapshots the product.
// Satisfied by the in-memory order repository.
type orderItemChecker interface {
	HasProduct(productID int64) bool
}

// catalogRepositoryInMemory keeps the whole catalog in maps for local
// development and tests.
type catalogRepositoryInMemory struct {
	mu          sync.RWMutex
	collections map[int64]domain.Collection
	products    map[int64]domain.Product
	reviews     map[int64]domain.Review

	nextCollectionID int64
	nextProductID    int64
	nextReviewID     int64

	orderItems orderItemChecker
}

// NewCatalogRepository returns an in-memory catalog. orderItems guards product
// deletion; it may be nil when orders are out of the picture.
func NewCatalogRepository(orderItems orderItemChecker) *catalogRepositoryInMemory {
	return &catalogRepositoryInMemory{
		collections: make(map[int64]domain.Collection),
		products:    make(map[int64]domain.Product),
		reviews:     make(map[int64]domain.Review),
		orderItems:  orderItems,
	}
}

func (r *catalogRepositoryInMemory) CreateCollection(c domain.Collection) (domain.Collection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextCollectionID++
	c.ID = r.nextCollectionID
	r.collections[c.ID] = c
	return c, nil
}

func (r *catalogRepositoryInMemory) GetCollection(id int64) (domain.CollectionWithCount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.collections[id]
	if !ok {
		return domain.CollectionWithCount{}, domain.ErrCollectionNotFound
	}
	return domain.CollectionWithCount{Collection: c, ProductsCount: r.countProducts(id)}, nil
}

func (r *catalogRepositoryInMemory) ListCollections() ([]domain.CollectionWithCount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.CollectionWithCount, 0, len(r.collections))
	for _, c := range r.collections {
		result = append(result, domain.CollectionWithCount{Collection: c, ProductsCount: r.countProducts(c.ID)})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *catalogRepositoryInMemory) DeleteCollection(id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.collections[id]; !ok {
		return domain.ErrCollectionNotFound
	}
	if r.countProducts(id) > 0 {
		return domain.ErrCollectionNotEmpty
	}
	delete(r.collections, id)
	return nil
}

func (r *catalogRepositoryInMemory) CreateProduct(p domain.Product) (domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.collections[p.CollectionID]; !ok {
		return domain.Product{}, domain.ErrCollectionNotFound
	}
	r.nextProductID++
	p.ID = r.nextProductID
	p.LastUpdate = time.Now().UTC()
	r.products[p.ID] = p
	return p, nil
}

func (r *catalogRepositoryInMemory) GetProduct(id int64) (domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return p, nil
}

func (r *catalogRepositoryInMemory) ListProducts(filter domain.ProductFilter) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	field, desc, err := filter.Ordering()
	if err != nil {
		return nil, err
	}

	result := make([]domain.Product, 0, len(r.products))
	for _, p := range r.products {
		if filter.Matches(p) {
			result = append(result, p)
		}
	}
	sortProducts(result, field, desc)

	limit, offset := filter.Page()
	if offset >= len(result) {
		return []domain.Product{}, nil
	}
	result = result[offset:]
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// sortProducts orders by the given field with id as tie-breaker, or by id
// alone when no field is set.
func sortProducts(products []domain.Product, field string, desc bool) {
	sort.Slice(products, func(i, j int) bool {
		a, b := products[i], products[j]
		var cmp int
		switch field {
		case domain.OrderProductsByUnitPrice:
			cmp = a.UnitPrice.Cmp(b.UnitPrice)
		case domain.OrderProductsByLastUpdate:
			switch {
			case a.LastUpdate.Before(b.LastUpdate):
				cmp = -1
			case a.LastUpdate.After(b.LastUpdate):
				cmp = 1
			}
		}
		if cmp == 0 {
			return a.ID < b.ID
		}
		if desc {
			return cmp > 0
		}
		return cmp < 0
	})
}

func (r *catalogRepositoryInMemory) UpdateProduct(p domain.Product) (domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[p.ID]; !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	p.LastUpdate = time.Now().UTC()
	r.products[p.ID] = p
	return p, nil
}

func (r *catalogRepositoryInMemory) DeleteProduct(id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return domain.ErrProductNotFound
	}
	if r.orderItems != nil && r.orderItems.HasProduct(id) {
		return domain.ErrProductReferenced
	}
	delete(r.products, id)
	for reviewID, review := range r.reviews {
		if review.ProductID == id {
			delete(r.reviews, reviewID)
		}
	}
	return nil
}

func (r *catalogRepositoryInMemory) GetProductPrice(productID int64) (decimal.Decimal, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[productID]
	if !ok {
		return decimal.Zero, false, nil
	}
	return p.UnitPrice, true, nil
}

func (r *catalogRepositoryInMemory) CreateReview(review domain.Review) (domain.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[review.ProductID]; !ok {
		return domain.Review{}, domain.ErrProductNotFound
	}
	r.nextReviewID++
	review.ID = r.nextReviewID
	if review.Date.IsZero() {
		review.Date = time.Now().UTC()
	}
	r.reviews[review.ID] = review
	return review, nil
}

func (r *catalogRepositoryInMemory) ListReviews(productID int64) ([]domain.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Review, 0)
	for _, review := range r.reviews {
		if review.ProductID == productID {
			result = append(result, review)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// countProducts assumes the caller holds at least the read lock.
func (r *catalogRepositoryInMemory) countProducts(collectionID int64) int {
	count := 0
	for _, p := range r.products {
		if p.CollectionID == collectionID {
			count++
		}
	}
	return count
}

var _ domain.CatalogRepository = (*catalogRepositoryInMemory)(nil)
