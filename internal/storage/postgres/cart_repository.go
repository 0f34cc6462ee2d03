package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Sina-Lotfi/storefront/internal/domain"
)

type cartRepository struct {
	db *sql.DB
}

// NewCartRepository creates the PostgreSQL implementation of CartRepository.
func NewCartRepository(store *Store) domain.CartRepository {
	return &cartRepository{db: store.DB()}
}

func (r *cartRepository) Create(cart domain.Cart) (domain.Cart, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if cart.ID == "" {
		cart.ID = uuid.NewString()
	}
	if cart.CreatedAt.IsZero() {
		cart.CreatedAt = time.Now().UTC()
	}

	if _, err := r.db.ExecContext(ctx, `
		INSERT INTO carts (id, created_at)
		VALUES ($1, $2)
	`, cart.ID, cart.CreatedAt); err != nil {
		return domain.Cart{}, fmt.Errorf("insert cart: %w", err)
	}

	cart.Items = nil
	return cart, nil
}

func (r *cartRepository) Get(id string) (domain.Cart, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var cart domain.Cart
	err := r.db.QueryRowContext(ctx, `
		SELECT id, created_at FROM carts WHERE id = $1
	`, id).Scan(&cart.ID, &cart.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Cart{}, domain.ErrCartNotFound
		}
		return domain.Cart{}, fmt.Errorf("select cart: %w", err)
	}

	items, err := r.loadItems(ctx, id)
	if err != nil {
		return domain.Cart{}, err
	}
	cart.Items = items
	return cart, nil
}

func (r *cartRepository) Exists(id string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var found string
	err := r.db.QueryRowContext(ctx, `SELECT id FROM carts WHERE id = $1`, id).Scan(&found)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return false, fmt.Errorf("check cart exists: %w", err)
}

func (r *cartRepository) ListItems(cartID string) ([]domain.CartItem, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	exists, err := r.Exists(cartID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrCartNotFound
	}

	return r.loadItems(ctx, cartID)
}

// loadItems joins current product rows into the cart's lines. The FK on
// cart_items.product_id cascades, so a deleted product takes its lines
// with it and the join never dangles.
func (r *cartRepository) loadItems(ctx context.Context, cartID string) ([]domain.CartItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT ci.id, ci.cart_id, ci.product_id, ci.quantity,
		       p.id, p.title, p.slug, p.description, p.unit_price, p.inventory, p.collection_id, p.last_update
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.id
	`, cartID)
	if err != nil {
		return nil, fmt.Errorf("load cart items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.CartItem, 0)
	for rows.Next() {
		var (
			item    domain.CartItem
			product domain.Product
		)
		if err := rows.Scan(
			&item.ID, &item.CartID, &item.ProductID, &item.Quantity,
			&product.ID, &product.Title, &product.Slug, &product.Description,
			&product.UnitPrice, &product.Inventory, &product.CollectionID, &product.LastUpdate,
		); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		item.Product = &product
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cart items: %w", err)
	}
	return items, nil
}

func (r *cartRepository) UpsertItem(cartID string, productID int64, quantity int) (domain.CartItem, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	item := domain.CartItem{CartID: cartID, ProductID: productID, Quantity: quantity}

	// The unique index on (cart_id, product_id) makes concurrent upserts of
	// the same product collapse into one row; last write wins on quantity.
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO cart_items (cart_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (cart_id, product_id)
		DO UPDATE SET quantity = EXCLUDED.quantity
		RETURNING id
	`, cartID, productID, quantity).Scan(&item.ID)
	if err != nil {
		if fkErr := cartItemFKError(fkViolationConstraint(err)); fkErr != nil {
			return domain.CartItem{}, fkErr
		}
		return domain.CartItem{}, fmt.Errorf("upsert cart item: %w", err)
	}
	return item, nil
}

// cartItemFKError maps a foreign key violation on cart_items to the missing
// parent row. Both constraints carry the table name as a prefix
// (cart_items_cart_id_fkey, cart_items_product_id_fkey), so the match is on
// the column, never on a bare table-name substring.
func cartItemFKError(constraint string) error {
	switch {
	case strings.Contains(constraint, "product_id"):
		return domain.ErrProductNotFound
	case strings.Contains(constraint, "cart_id"):
		return domain.ErrCartNotFound
	}
	return nil
}

func (r *cartRepository) SetItemQuantity(cartID string, productID int64, quantity int) (domain.CartItem, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	item := domain.CartItem{CartID: cartID, ProductID: productID, Quantity: quantity}
	err := r.db.QueryRowContext(ctx, `
		UPDATE cart_items
		SET quantity = $3
		WHERE cart_id = $1 AND product_id = $2
		RETURNING id
	`, cartID, productID, quantity).Scan(&item.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			exists, existsErr := r.Exists(cartID)
			if existsErr != nil {
				return domain.CartItem{}, existsErr
			}
			if !exists {
				return domain.CartItem{}, domain.ErrCartNotFound
			}
			return domain.CartItem{}, domain.ErrCartItemNotFound
		}
		return domain.CartItem{}, fmt.Errorf("update cart item quantity: %w", err)
	}
	return item, nil
}

func (r *cartRepository) DeleteCart(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// Items are removed explicitly rather than left to the cascade so the
	// delete reads the same in every storage backend.
	if _, err = tx.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, id); err != nil {
		return fmt.Errorf("delete cart items: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM carts WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit delete cart: %w", err)
	}
	return nil
}

func (r *cartRepository) DeleteOlderThan(before time.Time, limit int) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if limit <= 0 {
		limit = 100
	}

	res, err := r.db.ExecContext(ctx, `
		DELETE FROM carts
		WHERE id IN (
			SELECT id FROM carts
			WHERE created_at < $1
			ORDER BY created_at
			LIMIT $2
		)
	`, before, limit)
	if err != nil {
		return 0, fmt.Errorf("delete abandoned carts: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected for abandoned carts: %w", err)
	}
	return int(affected), nil
}

var _ domain.CartRepository = (*cartRepository)(nil)
