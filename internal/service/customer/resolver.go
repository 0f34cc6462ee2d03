// Package customer maps authenticated principals to customer profiles.
package customer

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/Sina-Lotfi/storefront/internal/domain"
)

// Resolver returns the customer profile behind a principal, creating a
// default one on first access, and applies profile updates.
type Resolver struct {
	customers domain.CustomerRepository
	logger    *log.Entry
}

// NewResolver creates the customer resolver.
func NewResolver(customers domain.CustomerRepository, logger *log.Entry) *Resolver {
	if logger == nil {
		logger = log.WithField("component", "customer-resolver")
	}
	return &Resolver{
		customers: customers,
		logger:    logger,
	}
}

// Resolve returns the customer linked to userID, creating a default profile
// on first access. Concurrent first accesses settle on one row; the storage
// layer enforces uniqueness of the user link.
func (r *Resolver) Resolve(userID int64) (domain.Customer, error) {
	if userID < 1 {
		return domain.Customer{}, domain.ErrCustomerNotFound
	}

	customer, err := r.customers.GetOrCreate(userID)
	if err != nil {
		return domain.Customer{}, fmt.Errorf("resolve customer for user %d: %w", userID, err)
	}
	return customer, nil
}

// Update applies profile fields to the principal's customer row. The user
// link is immutable; membership must be a known tier.
func (r *Resolver) Update(userID int64, update domain.Customer) (domain.Customer, error) {
	if update.Membership != "" && !domain.ValidMembership(update.Membership) {
		return domain.Customer{}, domain.ErrMembershipInvalid
	}

	current, err := r.Resolve(userID)
	if err != nil {
		return domain.Customer{}, err
	}

	current.Phone = update.Phone
	current.BirthDate = update.BirthDate
	if update.Membership != "" {
		current.Membership = update.Membership
	}

	updated, err := r.customers.Update(current)
	if err != nil {
		return domain.Customer{}, fmt.Errorf("update customer %d: %w", current.ID, err)
	}

	r.logger.WithFields(log.Fields{
		"customer_id": updated.ID,
		"membership":  string(updated.Membership),
	}).Debug("customer profile updated")
	return updated, nil
}
