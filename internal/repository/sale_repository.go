package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"graca-pdv/internal/domain"
)

var (
	ErrSaleNotFound = errors.New("sale not found")
)

// SaleRepository defines the interface for sale data access
type SaleRepository interface {
	Create(ctx context.Context, sale *domain.Sale) error
	FindByID(ctx context.Context, id int64) (*domain.Sale, error)
}

type saleRepository struct {
	db *sql.DB
}

// NewSaleRepository creates a new instance of SaleRepository
func NewSaleRepository(db *sql.DB) SaleRepository {
	return &saleRepository{db: db}
}

// Create persists the sale header, its line items and the optional card detail
// in one transaction. Generated ids are written back into sale.
func (r *saleRepository) Create(ctx context.Context, sale *domain.Sale) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(
		ctx,
		`INSERT INTO sales (sold_at, total, payment_method, amount_tendered, change)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		formatTimestamp(sale.SoldAt),
		sale.Total,
		string(sale.PaymentMethod),
		sale.AmountTendered,
		sale.Change,
	).Scan(&sale.ID)
	if err != nil {
		return fmt.Errorf("failed to insert sale: %w", err)
	}

	for i := range sale.Items {
		item := &sale.Items[i]
		item.SaleID = sale.ID
		err = tx.QueryRowContext(
			ctx,
			`INSERT INTO sale_line_items (sale_id, product_code, product_name, unit_price, quantity, subtotal)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id`,
			item.SaleID,
			item.ProductCode,
			item.ProductName,
			item.UnitPrice,
			item.Quantity,
			item.Subtotal,
		).Scan(&item.ID)
		if err != nil {
			return fmt.Errorf("failed to insert sale line item %s: %w", item.ProductCode, err)
		}
	}

	if sale.Card != nil {
		sale.Card.SaleID = sale.ID
		err = tx.QueryRowContext(
			ctx,
			`INSERT INTO card_payment_details (sale_id, customer_name, card_type, installments)
			VALUES ($1, $2, $3, $4)
			RETURNING id`,
			sale.Card.SaleID,
			sale.Card.CustomerName,
			string(sale.Card.CardType),
			sale.Card.Installments,
		).Scan(&sale.Card.ID)
		if err != nil {
			return fmt.Errorf("failed to insert card payment detail: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit sale: %w", err)
	}

	return nil
}

// FindByID retrieves a sale with its line items and card detail
func (r *saleRepository) FindByID(ctx context.Context, id int64) (*domain.Sale, error) {
	var (
		sale   domain.Sale
		soldAt string
		method string
	)

	err := r.db.QueryRowContext(
		ctx,
		`SELECT id, sold_at, total, payment_method, amount_tendered, change FROM sales WHERE id = $1`,
		id,
	).Scan(&sale.ID, &soldAt, &sale.Total, &method, &sale.AmountTendered, &sale.Change)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSaleNotFound
		}
		return nil, fmt.Errorf("failed to find sale by ID: %w", err)
	}

	sale.SoldAt = parseTimestamp(soldAt)
	sale.Total = roundMoney(sale.Total)
	sale.PaymentMethod = domain.PaymentMethod(method)
	sale.AmountTendered = roundNullMoney(sale.AmountTendered)
	sale.Change = roundNullMoney(sale.Change)

	items, err := r.findItems(ctx, id)
	if err != nil {
		return nil, err
	}
	sale.Items = items

	card, err := r.findCard(ctx, id)
	if err != nil {
		return nil, err
	}
	sale.Card = card

	return &sale, nil
}

func (r *saleRepository) findItems(ctx context.Context, saleID int64) ([]domain.SaleLineItem, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT id, sale_id, product_code, product_name, unit_price, quantity, subtotal
		FROM sale_line_items
		WHERE sale_id = $1
		ORDER BY id`,
		saleID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list sale line items: %w", err)
	}
	defer rows.Close()

	items := []domain.SaleLineItem{}
	for rows.Next() {
		var item domain.SaleLineItem
		err := rows.Scan(
			&item.ID,
			&item.SaleID,
			&item.ProductCode,
			&item.ProductName,
			&item.UnitPrice,
			&item.Quantity,
			&item.Subtotal,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sale line item: %w", err)
		}
		item.UnitPrice = roundMoney(item.UnitPrice)
		item.Subtotal = roundMoney(item.Subtotal)
		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sale line items: %w", err)
	}

	return items, nil
}

func (r *saleRepository) findCard(ctx context.Context, saleID int64) (*domain.CardPaymentDetail, error) {
	var (
		card     domain.CardPaymentDetail
		cardType string
	)

	err := r.db.QueryRowContext(
		ctx,
		`SELECT id, sale_id, customer_name, card_type, installments
		FROM card_payment_details
		WHERE sale_id = $1`,
		saleID,
	).Scan(&card.ID, &card.SaleID, &card.CustomerName, &cardType, &card.Installments)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find card payment detail for sale %d: %w", saleID, err)
	}

	card.CardType = domain.CardType(cardType)
	return &card, nil
}
