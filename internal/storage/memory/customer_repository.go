package memory

import (
	"sync"

	"github.com/Sina-Lotfi/storefront/internal/domain"
)

// customerRepositoryInMemory maps user ids to customers. The byUser index
// plays the role of the unique constraint on the principal link.
type customerRepositoryInMemory struct {
	mu     sync.Mutex
	byID   map[int64]domain.Customer
	byUser map[int64]int64
	nextID int64
}

// NewCustomerRepository returns an in-memory customer store.
func NewCustomerRepository() *customerRepositoryInMemory {
	return &customerRepositoryInMemory{
		byID:   make(map[int64]domain.Customer),
		byUser: make(map[int64]int64),
	}
}

func (r *customerRepositoryInMemory) GetOrCreate(userID int64) (domain.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.byUser[userID]; ok {
		return r.byID[id], nil
	}

	r.nextID++
	customer := domain.Customer{
		ID:         r.nextID,
		UserID:     userID,
		Membership: domain.MembershipBronze,
	}
	r.byID[customer.ID] = customer
	r.byUser[userID] = customer.ID
	return customer, nil
}

func (r *customerRepositoryInMemory) GetByUser(userID int64) (domain.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byUser[userID]
	if !ok {
		return domain.Customer{}, domain.ErrCustomerNotFound
	}
	return r.byID[id], nil
}

func (r *customerRepositoryInMemory) Update(c domain.Customer) (domain.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byID[c.ID]
	if !ok {
		return domain.Customer{}, domain.ErrCustomerNotFound
	}
	// The principal link is immutable once created.
	c.UserID = current.UserID
	r.byID[c.ID] = c
	return c, nil
}

var _ domain.CustomerRepository = (*customerRepositoryInMemory)(nil)
