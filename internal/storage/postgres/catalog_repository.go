package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Sina-Lotfi/storefront/internal/domain"
	"github.com/shopspring/decimal"
)

type catalogRepository struct {
	db *sql.DB
}

// NewCatalogRepository creates the PostgreSQL implementation of CatalogRepository.
func NewCatalogRepository(store *Store) domain.CatalogRepository {
	return &catalogRepository{db: store.DB()}
}

func (r *catalogRepository) CreateCollection(c domain.Collection) (domain.Collection, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	err := r.db.QueryRowContext(ctx, `
		INSERT INTO collections (title)
		VALUES ($1)
		RETURNING id
	`, c.Title).Scan(&c.ID)
	if err != nil {
		return domain.Collection{}, fmt.Errorf("insert collection: %w", err)
	}
	return c, nil
}

func (r *catalogRepository) GetCollection(id int64) (domain.CollectionWithCount, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var c domain.CollectionWithCount
	err := r.db.QueryRowContext(ctx, `
		SELECT c.id, c.title, COUNT(p.id)
		FROM collections c
		LEFT JOIN products p ON p.collection_id = c.id
		WHERE c.id = $1
		GROUP BY c.id, c.title
	`, id).Scan(&c.ID, &c.Title, &c.ProductsCount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.CollectionWithCount{}, domain.ErrCollectionNotFound
		}
		return domain.CollectionWithCount{}, fmt.Errorf("select collection: %w", err)
	}
	return c, nil
}

func (r *catalogRepository) ListCollections() ([]domain.CollectionWithCount, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT c.id, c.title, COUNT(p.id)
		FROM collections c
		LEFT JOIN products p ON p.collection_id = c.id
		GROUP BY c.id, c.title
		ORDER BY c.id
	`)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	defer rows.Close()

	result := make([]domain.CollectionWithCount, 0)
	for rows.Next() {
		var c domain.CollectionWithCount
		if err := rows.Scan(&c.ID, &c.Title, &c.ProductsCount); err != nil {
			return nil, fmt.Errorf("scan collection row: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate collection rows: %w", err)
	}
	return result, nil
}

func (r *catalogRepository) DeleteCollection(id int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM collections WHERE id = $1`, id)
	if err != nil {
		// RESTRICT on products.collection_id turns into a FK violation here.
		if fkViolationConstraint(err) != "" {
			return domain.ErrCollectionNotEmpty
		}
		return fmt.Errorf("delete collection: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for delete collection: %w", err)
	}
	if affected == 0 {
		return domain.ErrCollectionNotFound
	}
	return nil
}

func (r *catalogRepository) CreateProduct(p domain.Product) (domain.Product, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	p.LastUpdate = time.Now().UTC()
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO products (title, slug, description, unit_price, inventory, collection_id, last_update)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id
	`, p.Title, p.Slug, p.Description, p.UnitPrice, p.Inventory, p.CollectionID, p.LastUpdate).Scan(&p.ID)
	if err != nil {
		if fkViolationConstraint(err) != "" {
			return domain.Product{}, domain.ErrCollectionNotFound
		}
		return domain.Product{}, fmt.Errorf("insert product: %w", err)
	}
	return p, nil
}

func (r *catalogRepository) GetProduct(id int64) (domain.Product, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var p domain.Product
	err := r.db.QueryRowContext(ctx, `
		SELECT id, title, slug, description, unit_price, inventory, collection_id, last_update
		FROM products
		WHERE id = $1
	`, id).Scan(&p.ID, &p.Title, &p.Slug, &p.Description, &p.UnitPrice, &p.Inventory, &p.CollectionID, &p.LastUpdate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("select product: %w", err)
	}
	return p, nil
}

func (r *catalogRepository) ListProducts(filter domain.ProductFilter) ([]domain.Product, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	query := strings.Builder{}
	query.WriteString(`
		SELECT id, title, slug, description, unit_price, inventory, collection_id, last_update
		FROM products
		WHERE 1=1
	`)
	args := make([]any, 0, 4)

	if filter.CollectionID != 0 {
		args = append(args, filter.CollectionID)
		fmt.Fprintf(&query, " AND collection_id = $%d", len(args))
	}
	if filter.PriceGT != nil {
		args = append(args, *filter.PriceGT)
		fmt.Fprintf(&query, " AND unit_price > $%d", len(args))
	}
	if filter.PriceLT != nil {
		args = append(args, *filter.PriceLT)
		fmt.Fprintf(&query, " AND unit_price < $%d", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		fmt.Fprintf(&query, " AND (title ILIKE $%d OR description ILIKE $%d)", len(args), len(args))
	}
	// The ordering field is taken from the domain whitelist, never from raw
	// request input, so it is safe to splice into the query.
	field, desc, err := filter.Ordering()
	if err != nil {
		return nil, err
	}
	switch {
	case field == "":
		query.WriteString(" ORDER BY id")
	case desc:
		fmt.Fprintf(&query, " ORDER BY %s DESC, id", field)
	default:
		fmt.Fprintf(&query, " ORDER BY %s, id", field)
	}

	limit, offset := filter.Page()
	args = append(args, limit)
	fmt.Fprintf(&query, " LIMIT $%d", len(args))
	args = append(args, offset)
	fmt.Fprintf(&query, " OFFSET $%d", len(args))

	rows, err := r.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	result := make([]domain.Product, 0)
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Title, &p.Slug, &p.Description, &p.UnitPrice, &p.Inventory, &p.CollectionID, &p.LastUpdate); err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}
	return result, nil
}

func (r *catalogRepository) UpdateProduct(p domain.Product) (domain.Product, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	p.LastUpdate = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET title = $1,
		    slug = $2,
		    description = $3,
		    unit_price = $4,
		    inventory = $5,
		    collection_id = $6,
		    last_update = $7
		WHERE id = $8
	`, p.Title, p.Slug, p.Description, p.UnitPrice, p.Inventory, p.CollectionID, p.LastUpdate, p.ID)
	if err != nil {
		if fkViolationConstraint(err) != "" {
			return domain.Product{}, domain.ErrCollectionNotFound
		}
		return domain.Product{}, fmt.Errorf("update product: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Product{}, fmt.Errorf("rows affected for update product: %w", err)
	}
	if affected == 0 {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return p, nil
}

func (r *catalogRepository) DeleteProduct(id int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		// RESTRICT on order_items.product_id blocks deleting ordered products.
		// Cart items and reviews cascade away with the product.
		if fkViolationConstraint(err) != "" {
			return domain.ErrProductReferenced
		}
		return fmt.Errorf("delete product: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for delete product: %w", err)
	}
	if affected == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *catalogRepository) GetProductPrice(productID int64) (decimal.Decimal, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	var price decimal.Decimal
	err := r.db.QueryRowContext(ctx, `SELECT unit_price FROM products WHERE id = $1`, productID).Scan(&price)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, false, nil
		}
		return decimal.Zero, false, fmt.Errorf("select product price: %w", err)
	}
	return price, true, nil
}

func (r *catalogRepository) CreateReview(review domain.Review) (domain.Review, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	if review.Date.IsZero() {
		review.Date = time.Now().UTC()
	}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO reviews (product_id, name, description, date)
		VALUES ($1,$2,$3,$4)
		RETURNING id
	`, review.ProductID, review.Name, review.Description, review.Date).Scan(&review.ID)
	if err != nil {
		if fkViolationConstraint(err) != "" {
			return domain.Review{}, domain.ErrProductNotFound
		}
		return domain.Review{}, fmt.Errorf("insert review: %w", err)
	}
	return review, nil
}

func (r *catalogRepository) ListReviews(productID int64) ([]domain.Review, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, product_id, name, description, date
		FROM reviews
		WHERE product_id = $1
		ORDER BY id
	`, productID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	result := make([]domain.Review, 0)
	for rows.Next() {
		var review domain.Review
		if err := rows.Scan(&review.ID, &review.ProductID, &review.Name, &review.Description, &review.Date); err != nil {
			return nil, fmt.Errorf("scan review row: %w", err)
		}
		result = append(result, review)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review rows: %w", err)
	}
	return result, nil
}

var _ domain.CatalogRepository = (*catalogRepository)(nil)
