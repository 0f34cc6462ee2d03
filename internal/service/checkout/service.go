// Package checkout drives order placement: it resolves the customer behind
// the authenticated principal and converts the cart into an order through the
// atomic checkout repository.
package checkout

import (
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/Sina-Lotfi/storefront/internal/domain"
	"github.com/Sina-Lotfi/storefront/internal/metrics"
)

// Service exposes the order workflow.
type Service struct {
	customers domain.CustomerRepository
	checkout  domain.CheckoutRepository
	orders    domain.OrderRepository
	metrics   *metrics.CheckoutMetrics
	logger    *log.Entry
	now       func() time.Time
}

// NewService creates the checkout service. metrics may be nil; recording is
// then skipped.
func NewService(
	customers domain.CustomerRepository,
	checkout domain.CheckoutRepository,
	orders domain.OrderRepository,
	checkoutMetrics *metrics.CheckoutMetrics,
	logger *log.Entry,
) *Service {
	if logger == nil {
		logger = log.WithField("component", "checkout-service")
	}
	return &Service{
		customers: customers,
		checkout:  checkout,
		orders:    orders,
		metrics:   checkoutMetrics,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// PlaceOrder converts the cart into an order on behalf of the principal.
// The customer row is created lazily on first order. The conversion itself is
// all-or-nothing; the order_created event is staged inside the same
// transaction and delivered after commit by the outbox worker.
func (s *Service) PlaceOrder(cartID string, userID int64) (domain.Order, error) {
	if cartID == "" {
		return domain.Order{}, domain.ErrCartNotFound
	}

	customer, err := s.customers.GetOrCreate(userID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("resolve customer for user %d: %w", userID, err)
	}

	if s.metrics != nil {
		s.metrics.RecordCheckoutStarted()
		defer s.metrics.RecordCheckoutFinished()
	}

	started := s.now()
	order, err := s.checkout.ConvertCart(cartID, customer.ID, started)
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordCheckoutFailed(failureReason(err))
		}
		s.logger.WithError(err).WithFields(log.Fields{
			"cart_id": cartID,
			"user_id": userID,
		}).Warn("checkout failed")
		return domain.Order{}, err
	}

	if s.metrics != nil {
		s.metrics.RecordOrderPlaced()
		s.metrics.RecordCheckoutDuration(s.now().Sub(started))
	}

	s.logger.WithFields(log.Fields{
		"order_id":    order.ID,
		"customer_id": order.CustomerID,
		"cart_id":     cartID,
		"total":       order.Total().String(),
		"item_count":  len(order.Items),
	}).Info("order placed")
	return order, nil
}

// GetOrder returns the order with items when it belongs to the principal's
// customer row. Absent orders and other customers' orders both read as
// ErrOrderNotFound, so existence never leaks across principals.
func (s *Service) GetOrder(orderID, userID int64) (domain.Order, error) {
	customer, err := s.customers.GetByUser(userID)
	if err != nil {
		if errors.Is(err, domain.ErrCustomerNotFound) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("resolve customer for user %d: %w", userID, err)
	}

	order, err := s.orders.Get(orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if order.CustomerID != customer.ID {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return order, nil
}

// ListOrders returns the principal's orders, newest first. A principal without
// a customer row has no orders.
func (s *Service) ListOrders(userID int64, limit int) ([]domain.Order, error) {
	customer, err := s.customers.GetByUser(userID)
	if err != nil {
		if errors.Is(err, domain.ErrCustomerNotFound) {
			return []domain.Order{}, nil
		}
		return nil, fmt.Errorf("resolve customer for user %d: %w", userID, err)
	}

	return s.orders.ListByCustomer(customer.ID, limit)
}

// SetPaymentStatus records the payment outcome of a placed order. It is the
// only permitted mutation of an order.
func (s *Service) SetPaymentStatus(orderID int64, status domain.PaymentStatus) (domain.Order, error) {
	if !domain.ValidPaymentStatus(status) {
		return domain.Order{}, domain.ErrPaymentStatusInvalid
	}

	order, err := s.orders.SetPaymentStatus(orderID, status)
	if err != nil {
		return domain.Order{}, err
	}

	if s.metrics != nil {
		s.metrics.RecordPaymentTransition(string(status))
	}
	s.logger.WithFields(log.Fields{
		"order_id": order.ID,
		"status":   string(status),
	}).Info("order payment status updated")
	return order, nil
}

func failureReason(err error) string {
	switch {
	case domain.IsTransient(err):
		return "transient"
	case domain.IsValidation(err):
		return "validation"
	case domain.IsNotFound(err):
		return "not_found"
	default:
		return "internal"
	}
}
