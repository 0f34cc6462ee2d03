package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart is the ephemeral pre-checkout container. It is identified by an opaque
// UUID token and lives only until it is converted to an order or deleted.
type Cart struct {
	ID        string
	CreatedAt time.Time
	Items     []CartItem
}

// CartItem is one line of a cart, unique per (cart, product). Adding the same
// product again overwrites the quantity instead of duplicating the row.
// Product carries the current catalog row when the item was loaded with a
// joined read; it may be nil on bare writes.
type CartItem struct {
	ID        int64
	CartID    string
	ProductID int64
	Quantity  int
	Product   *Product
}

// TotalPrice is the line total at the product's current catalog price. Carts
// never store prices; only orders freeze them.
func (i CartItem) TotalPrice() decimal.Decimal {
	if i.Product == nil {
		return decimal.Zero
	}
	return i.Product.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// TotalPrice sums the line totals of every item in the cart.
func (c Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.TotalPrice())
	}
	return total
}

// ValidateQuantity enforces the positive-integer rule for cart quantities.
func ValidateQuantity(quantity int) error {
	if quantity < 1 {
		return ErrQuantityInvalid
	}
	return nil
}
