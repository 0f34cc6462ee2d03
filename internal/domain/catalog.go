package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Collection groups products in the catalog.
type Collection struct {
	ID    int64
	Title string
}

// CollectionWithCount is a Collection annotated with the number of products it
// contains, as listed by the catalog endpoints.
type CollectionWithCount struct {
	Collection
	ProductsCount int
}

// Product is a catalog entry. The checkout workflow treats products as
// immutable except for inventory, which it never mutates.
type Product struct {
	ID           int64
	Title        string
	Slug         string
	Description  string
	UnitPrice    decimal.Decimal
	Inventory    int
	CollectionID int64
	LastUpdate   time.Time
}

// Review is a customer review attached to a product.
type Review struct {
	ID          int64
	ProductID   int64
	Name        string
	Description string
	Date        time.Time
}

// Fields product listings may be ordered by. A leading "-" flips the
// direction.
const (
	OrderProductsByUnitPrice  = "unit_price"
	OrderProductsByLastUpdate = "last_update"
)

// Product listing page bounds.
const (
	DefaultProductPageSize = 10
	MaxProductPageSize     = 100
)

// ProductFilter narrows catalog listings. Zero values mean "no constraint";
// listings are always paginated, with Page supplying the defaults.
type ProductFilter struct {
	CollectionID int64
	PriceGT      *decimal.Decimal
	PriceLT      *decimal.Decimal
	Search       string
	// OrderBy is one of the OrderProductsBy fields, optionally "-"-prefixed
	// for descending order. Empty sorts by id.
	OrderBy string
	Limit   int
	Offset  int
}

// Ordering splits OrderBy into field and direction. An empty field with a nil
// error means id order; unknown fields fail with ErrOrderingInvalid.
func (f ProductFilter) Ordering() (field string, desc bool, err error) {
	raw := f.OrderBy
	if raw == "" {
		return "", false, nil
	}
	desc = strings.HasPrefix(raw, "-")
	field = strings.TrimPrefix(raw, "-")
	switch field {
	case OrderProductsByUnitPrice, OrderProductsByLastUpdate:
		return field, desc, nil
	}
	return "", false, ErrOrderingInvalid
}

// Page returns the effective limit and offset: the default page size when no
// limit is set, capped at the maximum otherwise.
func (f ProductFilter) Page() (limit, offset int) {
	limit = f.Limit
	if limit <= 0 {
		limit = DefaultProductPageSize
	}
	if limit > MaxProductPageSize {
		limit = MaxProductPageSize
	}
	offset = f.Offset
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// Matches reports whether p satisfies every constraint of the filter.
func (f ProductFilter) Matches(p Product) bool {
	if f.CollectionID != 0 && p.CollectionID != f.CollectionID {
		return false
	}
	if f.PriceGT != nil && !p.UnitPrice.GreaterThan(*f.PriceGT) {
		return false
	}
	if f.PriceLT != nil && !p.UnitPrice.LessThan(*f.PriceLT) {
		return false
	}
	if f.Search != "" && !containsFold(p.Title, f.Search) && !containsFold(p.Description, f.Search) {
		return false
	}
	return true
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
