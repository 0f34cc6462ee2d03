package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Sina-Lotfi/storefront/internal/domain"
)

// checkoutTimeout is longer than opTimeout: the conversion holds a row lock
// and touches five tables.
const checkoutTimeout = 10 * time.Second

type checkoutRepository struct {
	db *sql.DB
}

// NewCheckoutRepository creates the PostgreSQL implementation of
// CheckoutRepository. The whole conversion runs in one transaction: order
// insert, item snapshot, outbox enqueue and cart delete commit together or
// not at all.
func NewCheckoutRepository(store *Store) domain.CheckoutRepository {
	return &checkoutRepository{db: store.DB()}
}

func (r *checkoutRepository) ConvertCart(cartID string, customerID int64, placedAt time.Time) (domain.Order, error) {
	ctx, cancel := context.WithTimeout(context.Background(), checkoutTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Order{}, fmt.Errorf("begin checkout tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	order, err := r.convertInTx(ctx, tx, cartID, customerID, placedAt)
	if err != nil {
		if isSerializationFailure(err) {
			return domain.Order{}, domain.ErrTransientStorage
		}
		return domain.Order{}, err
	}

	if err = tx.Commit(); err != nil {
		if isSerializationFailure(err) {
			return domain.Order{}, domain.ErrTransientStorage
		}
		return domain.Order{}, fmt.Errorf("commit checkout: %w", err)
	}
	return order, nil
}

func (r *checkoutRepository) convertInTx(ctx context.Context, tx *sql.Tx, cartID string, customerID int64, placedAt time.Time) (domain.Order, error) {
	// The row lock serializes concurrent conversions of one cart. The loser
	// blocks here until the winner commits the delete, then sees no row.
	var lockedID string
	err := tx.QueryRowContext(ctx, `
		SELECT id FROM carts WHERE id = $1 FOR UPDATE
	`, cartID).Scan(&lockedID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, domain.ErrCartNotFound
		}
		return domain.Order{}, fmt.Errorf("lock cart: %w", err)
	}

	// Price snapshot read. The join drops lines whose product is gone.
	rows, err := tx.QueryContext(ctx, `
		SELECT ci.product_id, ci.quantity, p.unit_price
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.id
	`, cartID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("read cart items for checkout: %w", err)
	}

	items := make([]domain.OrderItem, 0)
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ProductID, &item.Quantity, &item.UnitPrice); err != nil {
			rows.Close()
			return domain.Order{}, fmt.Errorf("scan checkout item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return domain.Order{}, fmt.Errorf("iterate checkout items: %w", err)
	}
	rows.Close()

	if len(items) == 0 {
		return domain.Order{}, domain.ErrCartEmpty
	}

	order := domain.Order{
		CustomerID:    customerID,
		PlacedAt:      placedAt,
		PaymentStatus: domain.PaymentStatusPending,
	}
	if err := tx.QueryRowContext(ctx, `
		INSERT INTO orders (customer_id, placed_at, payment_status)
		VALUES ($1, $2, $3)
		RETURNING id
	`, order.CustomerID, order.PlacedAt, string(order.PaymentStatus)).Scan(&order.ID); err != nil {
		return domain.Order{}, fmt.Errorf("insert order: %w", err)
	}

	for i := range items {
		items[i].OrderID = order.ID
		if err := tx.QueryRowContext(ctx, `
			INSERT INTO order_items (order_id, product_id, quantity, unit_price)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`, items[i].OrderID, items[i].ProductID, items[i].Quantity, items[i].UnitPrice).Scan(&items[i].ID); err != nil {
			return domain.Order{}, fmt.Errorf("insert order item: %w", err)
		}
	}
	order.Items = items

	msg, err := domain.NewOrderCreatedMessage(order)
	if err != nil {
		return domain.Order{}, err
	}
	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO outbox_messages (
			id, aggregate_type, aggregate_id, event_type, payload,
			status, attempt_count, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,'pending',0,$6,$7)
	`, uuid.NewString(), msg.AggregateType, msg.AggregateID, msg.EventType, msg.Payload, now, now); err != nil {
		return domain.Order{}, fmt.Errorf("enqueue order_created: %w", err)
	}

	// Items first, then the cart row itself.
	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID); err != nil {
		return domain.Order{}, fmt.Errorf("delete converted cart items: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM carts WHERE id = $1`, cartID); err != nil {
		return domain.Order{}, fmt.Errorf("delete converted cart: %w", err)
	}

	return order, nil
}

var _ domain.CheckoutRepository = (*checkoutRepository)(nil)
