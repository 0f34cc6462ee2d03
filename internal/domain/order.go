package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus tracks the payment state of an order. Payment itself is
// handled outside this service; orders only record the outcome.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusComplete PaymentStatus = "complete"
	PaymentStatusFailed   PaymentStatus = "failed"
)

// ValidPaymentStatus reports whether s is one of the known payment states.
func ValidPaymentStatus(s PaymentStatus) bool {
	switch s {
	case PaymentStatusPending, PaymentStatusComplete, PaymentStatusFailed:
		return true
	}
	return false
}

// OrderItem is an immutable snapshot of one cart line at checkout time.
// UnitPrice is copied from the product when the order is created and is never
// recalculated, even if the catalog price changes afterwards.
type OrderItem struct {
	ID        int64
	OrderID   int64
	ProductID int64
	Quantity  int
	UnitPrice decimal.Decimal
}

// Total is quantity times the frozen unit price.
func (i OrderItem) Total() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order is the durable record of a completed checkout. Once created it is
// mutated only through payment-status transitions and never deleted.
type Order struct {
	ID            int64
	CustomerID    int64
	PlacedAt      time.Time
	PaymentStatus PaymentStatus
	Items         []OrderItem
}

// Total sums the frozen line totals.
func (o Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Total())
	}
	return total
}

// ValidateInvariants checks the basic shape of a stored order and returns
// every violation found.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if o.CustomerID <= 0 {
		errs = append(errs, ErrCustomerNotFound)
	}
	if len(o.Items) == 0 {
		errs = append(errs, ErrCartEmpty)
	}
	if !ValidPaymentStatus(o.PaymentStatus) {
		errs = append(errs, ErrPaymentStatusInvalid)
	}
	for _, item := range o.Items {
		if item.Quantity <= 0 {
			errs = append(errs, ErrQuantityInvalid)
		}
		if item.UnitPrice.IsNegative() {
			errs = append(errs, ErrPriceNegative)
		}
	}

	return errs
}
