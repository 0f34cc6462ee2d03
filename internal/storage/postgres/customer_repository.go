package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Sina-Lotfi/storefront/internal/domain"
)

type customerRepository struct {
	db *sql.DB
}

// NewCustomerRepository creates the PostgreSQL implementation of CustomerRepository.
func NewCustomerRepository(store *Store) domain.CustomerRepository {
	return &customerRepository{db: store.DB()}
}

func (r *customerRepository) GetOrCreate(userID int64) (domain.Customer, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	customer, err := r.getByUser(ctx, userID)
	if err == nil {
		return customer, nil
	}
	if !errors.Is(err, domain.ErrCustomerNotFound) {
		return domain.Customer{}, err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO customers (user_id, membership)
		VALUES ($1, $2)
	`, userID, string(domain.MembershipBronze))
	if err != nil && !isUniqueViolation(err) {
		return domain.Customer{}, fmt.Errorf("insert customer: %w", err)
	}

	// Either our insert landed or a concurrent one did; the unique index on
	// user_id guarantees a single row to read back.
	return r.getByUser(ctx, userID)
}

func (r *customerRepository) GetByUser(userID int64) (domain.Customer, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	return r.getByUser(ctx, userID)
}

func (r *customerRepository) getByUser(ctx context.Context, userID int64) (domain.Customer, error) {
	var (
		customer   domain.Customer
		birthDate  sql.NullTime
		membership string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, phone, birth_date, membership
		FROM customers
		WHERE user_id = $1
	`, userID).Scan(&customer.ID, &customer.UserID, &customer.Phone, &birthDate, &membership)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Customer{}, domain.ErrCustomerNotFound
		}
		return domain.Customer{}, fmt.Errorf("select customer: %w", err)
	}

	if birthDate.Valid {
		d := birthDate.Time
		customer.BirthDate = &d
	}
	customer.Membership = domain.Membership(membership)
	return customer, nil
}

func (r *customerRepository) Update(c domain.Customer) (domain.Customer, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var birthDate sql.NullTime
	if c.BirthDate != nil {
		birthDate = sql.NullTime{Time: *c.BirthDate, Valid: true}
	}

	// user_id stays whatever it was on create.
	res, err := r.db.ExecContext(ctx, `
		UPDATE customers
		SET phone = $1,
		    birth_date = $2,
		    membership = $3
		WHERE id = $4
	`, c.Phone, birthDate, string(c.Membership), c.ID)
	if err != nil {
		return domain.Customer{}, fmt.Errorf("update customer: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Customer{}, fmt.Errorf("rows affected for update customer: %w", err)
	}
	if affected == 0 {
		return domain.Customer{}, domain.ErrCustomerNotFound
	}

	var userID int64
	if err := r.db.QueryRowContext(ctx, `SELECT user_id FROM customers WHERE id = $1`, c.ID).Scan(&userID); err != nil {
		return domain.Customer{}, fmt.Errorf("reread customer user link: %w", err)
	}
	c.UserID = userID
	return c, nil
}

var _ domain.CustomerRepository = (*customerRepository)(nil)
