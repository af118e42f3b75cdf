package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"graca-pdv/internal/domain"
)

// ReportRepository defines the read-only aggregations over recorded sales
type ReportRepository interface {
	Summary(ctx context.Context) (domain.SalesSummary, error)
	CountByPaymentMethod(ctx context.Context) ([]domain.PaymentMethodCount, error)
	DailyRevenue(ctx context.Context) ([]domain.DailyRevenue, error)
	DailyRevenueByMethod(ctx context.Context) (domain.RevenueByMethod, error)
	TopSellers(ctx context.Context) ([]domain.ProductSales, error)
	SalesOnDate(ctx context.Context, date string) ([]domain.ProductSales, error)
	StockLevels(ctx context.Context) ([]domain.StockLevel, error)
	CardPayments(ctx context.Context) ([]domain.CardPaymentRow, error)
}

type reportRepository struct {
	db *sql.DB
}

// NewReportRepository creates a new instance of ReportRepository
func NewReportRepository(db *sql.DB) ReportRepository {
	return &reportRepository{db: db}
}

// Summary returns total revenue, number of sales and the average ticket
func (r *reportRepository) Summary(ctx context.Context) (domain.SalesSummary, error) {
	var summary domain.SalesSummary

	err := r.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(total), 0), COUNT(*) FROM sales`).
		Scan(&summary.Revenue, &summary.Count)
	if err != nil {
		return domain.SalesSummary{}, fmt.Errorf("failed to summarise sales: %w", err)
	}

	summary.Revenue = roundMoney(summary.Revenue)
	if summary.Count > 0 {
		summary.AverageTicket = summary.Revenue.Div(decimal.NewFromInt(int64(summary.Count))).Round(2)
	}

	return summary, nil
}

// CountByPaymentMethod returns the number of sales per payment method
func (r *reportRepository) CountByPaymentMethod(ctx context.Context) ([]domain.PaymentMethodCount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT payment_method, COUNT(*)
		FROM sales
		GROUP BY payment_method
		ORDER BY payment_method
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to count sales by payment method: %w", err)
	}
	defer rows.Close()

	counts := []domain.PaymentMethodCount{}
	for rows.Next() {
		var (
			method string
			count  domain.PaymentMethodCount
		)
		if err := rows.Scan(&method, &count.Count); err != nil {
			return nil, fmt.Errorf("failed to scan payment method count: %w", err)
		}
		count.Method = domain.PaymentMethod(method)
		counts = append(counts, count)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payment method counts: %w", err)
	}

	return counts, nil
}

// DailyRevenue returns revenue per calendar day, oldest first
func (r *reportRepository) DailyRevenue(ctx context.Context) ([]domain.DailyRevenue, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT substr(sold_at, 1, 10) AS day, SUM(total)
		FROM sales
		GROUP BY day
		ORDER BY day
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate daily revenue: %w", err)
	}
	defer rows.Close()

	days := []domain.DailyRevenue{}
	for rows.Next() {
		var day domain.DailyRevenue
		if err := rows.Scan(&day.Date, &day.Total); err != nil {
			return nil, fmt.Errorf("failed to scan daily revenue: %w", err)
		}
		day.Total = roundMoney(day.Total)
		days = append(days, day)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating daily revenue: %w", err)
	}

	return days, nil
}

// DailyRevenueByMethod pivots revenue into date -> method -> total
func (r *reportRepository) DailyRevenueByMethod(ctx context.Context) (domain.RevenueByMethod, error) {
	pivot := domain.RevenueByMethod{
		Dates:   []string{},
		Methods: []domain.PaymentMethod{},
		Totals:  map[string]map[domain.PaymentMethod]decimal.Decimal{},
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT substr(sold_at, 1, 10) AS day, payment_method, SUM(total)
		FROM sales
		GROUP BY day, payment_method
		ORDER BY day, payment_method
	`)
	if err != nil {
		return pivot, fmt.Errorf("failed to aggregate revenue by method: %w", err)
	}
	defer rows.Close()

	seenMethods := map[domain.PaymentMethod]bool{}
	for rows.Next() {
		var (
			day    string
			method string
			total  decimal.Decimal
		)
		if err := rows.Scan(&day, &method, &total); err != nil {
			return pivot, fmt.Errorf("failed to scan revenue by method: %w", err)
		}

		m := domain.PaymentMethod(method)
		if _, ok := pivot.Totals[day]; !ok {
			pivot.Totals[day] = map[domain.PaymentMethod]decimal.Decimal{}
			pivot.Dates = append(pivot.Dates, day)
		}
		pivot.Totals[day][m] = roundMoney(total)

		if !seenMethods[m] {
			seenMethods[m] = true
			pivot.Methods = append(pivot.Methods, m)
		}
	}

	if err = rows.Err(); err != nil {
		return pivot, fmt.Errorf("error iterating revenue by method: %w", err)
	}

	sort.Strings(pivot.Dates)
	sort.Slice(pivot.Methods, func(i, j int) bool { return pivot.Methods[i] < pivot.Methods[j] })

	return pivot, nil
}

// TopSellers returns cumulative quantity sold per product code, best first
func (r *reportRepository) TopSellers(ctx context.Context) ([]domain.ProductSales, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT product_code, MAX(product_name), SUM(quantity) AS sold
		FROM sale_line_items
		GROUP BY product_code
		ORDER BY sold DESC, product_code
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate top sellers: %w", err)
	}
	defer rows.Close()

	return scanProductSales(rows)
}

// SalesOnDate returns what was sold on one calendar day (YYYY-MM-DD), best first
func (r *reportRepository) SalesOnDate(ctx context.Context, date string) ([]domain.ProductSales, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT i.product_code, MAX(i.product_name), SUM(i.quantity) AS sold
		FROM sale_line_items i
		JOIN sales s ON s.id = i.sale_id
		WHERE substr(s.sold_at, 1, 10) = $1
		GROUP BY i.product_code
		ORDER BY sold DESC, i.product_code
	`, date)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate sales on %s: %w", date, err)
	}
	defer rows.Close()

	return scanProductSales(rows)
}

func scanProductSales(rows *sql.Rows) ([]domain.ProductSales, error) {
	sales := []domain.ProductSales{}
	for rows.Next() {
		var ps domain.ProductSales
		if err := rows.Scan(&ps.Code, &ps.Name, &ps.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan product sales: %w", err)
		}
		sales = append(sales, ps)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating product sales: %w", err)
	}

	return sales, nil
}

// StockLevels returns on-hand quantities, fullest first, flagging low stock
func (r *reportRepository) StockLevels(ctx context.Context) ([]domain.StockLevel, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT code, name, quantity
		FROM products
		ORDER BY quantity DESC, name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list stock levels: %w", err)
	}
	defer rows.Close()

	levels := []domain.StockLevel{}
	for rows.Next() {
		var level domain.StockLevel
		if err := rows.Scan(&level.Code, &level.Name, &level.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan stock level: %w", err)
		}
		level.Low = level.Quantity < domain.LowStockThreshold
		levels = append(levels, level)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stock levels: %w", err)
	}

	return levels, nil
}

// CardPayments returns card payment details joined with their sale, newest first
func (r *reportRepository) CardPayments(ctx context.Context) ([]domain.CardPaymentRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT s.id, s.sold_at, s.total, d.customer_name, d.card_type, d.installments
		FROM card_payment_details d
		JOIN sales s ON s.id = d.sale_id
		ORDER BY s.sold_at DESC, s.id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list card payments: %w", err)
	}
	defer rows.Close()

	payments := []domain.CardPaymentRow{}
	for rows.Next() {
		var (
			row      domain.CardPaymentRow
			soldAt   string
			cardType string
		)
		err := rows.Scan(&row.SaleID, &soldAt, &row.Total, &row.CustomerName, &cardType, &row.Installments)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card payment: %w", err)
		}
		row.SoldAt = parseTimestamp(soldAt)
		row.Total = roundMoney(row.Total)
		row.CardType = domain.CardType(cardType)
		payments = append(payments, row)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating card payments: %w", err)
	}

	return payments, nil
}
