package domain

import "errors"

var (
	// ErrCartNotFound is returned when no cart exists for the given token.
	// The message is surfaced verbatim to checkout callers.
	ErrCartNotFound = errors.New("no cart with given id exists")
	// ErrCartEmpty rejects checkout of a cart without a single item.
	ErrCartEmpty = errors.New("the cart is empty")
	// ErrCartItemNotFound is returned when updating a line item that was never added.
	ErrCartItemNotFound = errors.New("cart item not found")
	// ErrProductNotFound covers both invalid product ids (< 1) and products
	// absent from the catalog; bad references read as a 404-like condition.
	ErrProductNotFound = errors.New("product with given id not found")
	// ErrCollectionNotFound is returned when a collection id has no row.
	ErrCollectionNotFound = errors.New("collection not found")
	// ErrCustomerNotFound is returned when no customer is linked to the principal.
	ErrCustomerNotFound = errors.New("customer not found")
	// ErrOrderNotFound is returned when an order id has no row.
	ErrOrderNotFound = errors.New("order not found")
	// ErrQuantityInvalid rejects zero or negative cart quantities; they are
	// never clamped silently.
	ErrQuantityInvalid = errors.New("quantity must be a positive integer")
	// ErrPaymentStatusInvalid rejects unknown payment status transitions.
	ErrPaymentStatusInvalid = errors.New("invalid payment status")
	// ErrMembershipInvalid rejects unknown loyalty tiers on profile updates.
	ErrMembershipInvalid = errors.New("invalid membership tier")
	// ErrOrderingInvalid rejects listing orderings outside the allowed fields.
	ErrOrderingInvalid = errors.New("invalid ordering field")
	// ErrPriceNegative rejects negative unit prices on stored snapshots.
	ErrPriceNegative = errors.New("unit price must be non-negative")
	// ErrProductReferenced blocks deletion of a product that order items snapshot.
	ErrProductReferenced = errors.New("product is associated with an order item")
	// ErrCollectionNotEmpty blocks deletion of a collection that still has products.
	ErrCollectionNotEmpty = errors.New("collection includes one or more products")
	// ErrConflict signals a uniqueness-constraint race lost to a concurrent writer.
	ErrConflict = errors.New("conflicting concurrent write")
	// ErrTransientStorage marks commit failures (deadlock, timeout) that the
	// caller may retry; the core never loops on them itself.
	ErrTransientStorage = errors.New("storage temporarily unavailable")
	// ErrOutboxPublish is returned when an outbox record cannot be updated or published.
	ErrOutboxPublish = errors.New("outbox publish failed")
)

// IsNotFound reports whether err is one of the absent-entity errors.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrCartNotFound) ||
		errors.Is(err, ErrCartItemNotFound) ||
		errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrCollectionNotFound) ||
		errors.Is(err, ErrCustomerNotFound) ||
		errors.Is(err, ErrOrderNotFound)
}

// IsValidation reports whether err is a precondition failure the caller can
// correct by fixing input.
func IsValidation(err error) bool {
	return errors.Is(err, ErrCartNotFound) ||
		errors.Is(err, ErrCartEmpty) ||
		errors.Is(err, ErrQuantityInvalid) ||
		errors.Is(err, ErrOrderingInvalid) ||
		errors.Is(err, ErrPaymentStatusInvalid) ||
		errors.Is(err, ErrMembershipInvalid)
}

// IsConflict reports whether err is a lost uniqueness race.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsTransient reports whether err is retryable at the caller's discretion.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransientStorage)
}
