package domain

import "time"

// CatalogRepository stores collections, products and reviews.
type CatalogRepository interface {
	CatalogLookup

	CreateCollection(c Collection) (Collection, error)
	// GetCollection returns the collection or ErrCollectionNotFound.
	GetCollection(id int64) (CollectionWithCount, error)
	ListCollections() ([]CollectionWithCount, error)
	// DeleteCollection fails with ErrCollectionNotEmpty while products reference it.
	DeleteCollection(id int64) error

	CreateProduct(p Product) (Product, error)
	// GetProduct returns the product or ErrProductNotFound.
	GetProduct(id int64) (Product, error)
	ListProducts(filter ProductFilter) ([]Product, error)
	UpdateProduct(p Product) (Product, error)
	// DeleteProduct fails with ErrProductReferenced while order items snapshot it.
	// Cart items referencing the product are dropped with it.
	DeleteProduct(id int64) error

	CreateReview(r Review) (Review, error)
	ListReviews(productID int64) ([]Review, error)
}

// CartRepository holds carts and their line items keyed by the cart token.
type CartRepository interface {
	Create(cart Cart) (Cart, error)
	// Get returns the cart with items and their current product rows joined in,
	// or ErrCartNotFound. Items whose product has been deleted are not returned.
	Get(id string) (Cart, error)
	Exists(id string) (bool, error)
	ListItems(cartID string) ([]CartItem, error)
	// UpsertItem overwrites the quantity for an existing (cart, product) pair
	// and inserts a new row otherwise. The unique-per-(cart, product) rule is
	// enforced by the storage layer, not by check-then-insert.
	UpsertItem(cartID string, productID int64, quantity int) (CartItem, error)
	// SetItemQuantity updates an existing line or fails with ErrCartItemNotFound.
	SetItemQuantity(cartID string, productID int64, quantity int) (CartItem, error)
	// DeleteCart removes the cart and, explicitly, all its items in the same
	// transaction. Deleting an absent cart is not an error.
	DeleteCart(id string) error
	// DeleteOlderThan removes up to limit abandoned carts created before the
	// cutoff and reports how many were deleted.
	DeleteOlderThan(before time.Time, limit int) (int, error)
}

// CustomerRepository maps authenticated principals to customer rows.
type CustomerRepository interface {
	// GetOrCreate returns the customer linked to userID, creating a default row
	// on first access. Concurrent first accesses must resolve to a single row:
	// the storage layer enforces uniqueness on the user link and the loser of
	// the race re-reads the winner's row.
	GetOrCreate(userID int64) (Customer, error)
	// GetByUser returns the linked customer or ErrCustomerNotFound.
	GetByUser(userID int64) (Customer, error)
	Update(c Customer) (Customer, error)
}

// OrderRepository reads and mutates durable orders. Orders are only ever
// created through CheckoutRepository.ConvertCart.
type OrderRepository interface {
	// Get returns the order with items or ErrOrderNotFound.
	Get(id int64) (Order, error)
	ListByCustomer(customerID int64, limit int) ([]Order, error)
	// SetPaymentStatus is the only permitted mutation of a placed order.
	SetPaymentStatus(id int64, status PaymentStatus) (Order, error)
}

// CheckoutRepository materializes an order from a cart in one all-or-nothing
// transaction.
type CheckoutRepository interface {
	// ConvertCart creates the order row (payment pending), snapshots every cart
	// item with the product's unit price at this instant, enqueues the
	// order_created outbox message, and deletes the cart with its items. Either
	// all of these effects commit or none are visible.
	//
	// Returns ErrCartNotFound when the cart is gone (including when a
	// concurrent conversion won the race) and ErrCartEmpty when it has no
	// items. A cart item whose product disappeared between validation and the
	// snapshot read drops out of the order silently.
	ConvertCart(cartID string, customerID int64, placedAt time.Time) (Order, error)
}
