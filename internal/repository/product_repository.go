package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"graca-pdv/internal/domain"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Upsert(ctx context.Context, product *domain.Product) error
	FindByCode(ctx context.Context, code string) (*domain.Product, error)
	List(ctx context.Context, filter string) ([]*domain.Product, error)
	Delete(ctx context.Context, code string) error
	AdjustStock(ctx context.Context, code string, delta int) error
	ReserveStock(ctx context.Context, code string, quantity int) error
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

const productColumns = `code, name, price, quantity, category, description, registered_at, image_ref`

// likeEscaper makes a filter match its wildcard characters literally
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Upsert inserts a product or fully replaces the row stored under the same code
func (r *productRepository) Upsert(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (code) DO UPDATE SET
			name = excluded.name,
			price = excluded.price,
			quantity = excluded.quantity,
			category = excluded.category,
			description = excluded.description,
			registered_at = excluded.registered_at,
			image_ref = excluded.image_ref
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		product.Code,
		product.Name,
		product.Price,
		product.Quantity,
		string(product.Category),
		product.Description,
		formatTimestamp(product.RegisteredAt),
		product.ImageRef,
	)

	if err != nil {
		return fmt.Errorf("failed to upsert product: %w", err)
	}

	return nil
}

// FindByCode retrieves a product by its code
func (r *productRepository) FindByCode(ctx context.Context, code string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE code = $1`

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, code))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by code: %w", err)
	}

	return product, nil
}

// List returns products whose code or name contains filter, ordered by name.
// A blank filter lists the whole catalog.
func (r *productRepository) List(ctx context.Context, filter string) ([]*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	var args []interface{}

	if filter = strings.TrimSpace(filter); filter != "" {
		query += ` WHERE LOWER(code) LIKE LOWER($1) ESCAPE '\' OR LOWER(name) LIKE LOWER($1) ESCAPE '\'`
		args = append(args, "%"+likeEscaper.Replace(filter)+"%")
	}
	query += ` ORDER BY name, code`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// Delete removes a product. Historical sale lines keep their snapshots.
func (r *productRepository) Delete(ctx context.Context, code string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE code = $1`, code)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	return expectOneRow(result, ErrProductNotFound)
}

// AdjustStock adds delta to the on-hand quantity in a single statement. A
// delta that would leave the quantity negative changes nothing.
func (r *productRepository) AdjustStock(ctx context.Context, code string, delta int) error {
	result, err := r.db.ExecContext(
		ctx,
		`UPDATE products SET quantity = quantity + $1 WHERE code = $2 AND quantity + $1 >= 0`,
		delta,
		code,
	)
	if err != nil {
		return fmt.Errorf("failed to adjust stock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 1 {
		return nil
	}

	return r.shortfall(ctx, code, -delta)
}

// ReserveStock decrements quantity only when enough stock is on hand. The check
// and the decrement are one conditional statement.
func (r *productRepository) ReserveStock(ctx context.Context, code string, quantity int) error {
	result, err := r.db.ExecContext(
		ctx,
		`UPDATE products SET quantity = quantity - $1 WHERE code = $2 AND quantity >= $1`,
		quantity,
		code,
	)
	if err != nil {
		return fmt.Errorf("failed to reserve stock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 1 {
		return nil
	}

	return r.shortfall(ctx, code, quantity)
}

// shortfall explains a conditional stock update that matched no row
func (r *productRepository) shortfall(ctx context.Context, code string, requested int) error {
	var available int
	err := r.db.QueryRowContext(ctx, `SELECT quantity FROM products WHERE code = $1`, code).Scan(&available)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to read stock: %w", err)
	}

	return &domain.InsufficientStockError{Code: code, Requested: requested, Available: available}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var (
		product      domain.Product
		category     string
		registeredAt string
	)

	err := row.Scan(
		&product.Code,
		&product.Name,
		&product.Price,
		&product.Quantity,
		&category,
		&product.Description,
		&registeredAt,
		&product.ImageRef,
	)
	if err != nil {
		return nil, err
	}

	product.Price = roundMoney(product.Price)
	product.Category = domain.ParseCategory(category)
	product.RegisteredAt = parseTimestamp(registeredAt)

	return &product, nil
}

func expectOneRow(result sql.Result, notFound error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return notFound
	}

	return nil
}
