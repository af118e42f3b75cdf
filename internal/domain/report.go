package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalesSummary aggregates all recorded sales
type SalesSummary struct {
	Revenue       decimal.Decimal `json:"revenue"`
	Count         int             `json:"count"`
	AverageTicket decimal.Decimal `json:"average_ticket"`
}

// PaymentMethodCount is the number of sales paid with one method
type PaymentMethodCount struct {
	Method PaymentMethod `json:"method"`
	Count  int           `json:"count"`
}

// DailyRevenue is the revenue of one calendar day
type DailyRevenue struct {
	Date  string          `json:"date"`
	Total decimal.Decimal `json:"total"`
}

// RevenueByMethod pivots daily revenue into date -> method -> total.
// Dates and Methods are sorted ascending.
type RevenueByMethod struct {
	Dates   []string                                     `json:"dates"`
	Methods []PaymentMethod                              `json:"methods"`
	Totals  map[string]map[PaymentMethod]decimal.Decimal `json:"totals"`
}

// ProductSales is the cumulative quantity sold of one product
type ProductSales struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// StockLevel is the current on-hand quantity of one product
type StockLevel struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Low      bool   `json:"low"`
}

// CardPaymentRow is a card payment joined with its sale
type CardPaymentRow struct {
	SaleID       int64           `json:"sale_id"`
	SoldAt       time.Time       `json:"sold_at"`
	Total        decimal.Decimal `json:"total"`
	CustomerName string          `json:"customer_name"`
	CardType     CardType        `json:"card_type"`
	Installments int             `json:"installments"`
}

// Dashboard bundles every report shown on the analytics screen
type Dashboard struct {
	GeneratedAt     time.Time            `json:"generated_at"`
	Summary         SalesSummary         `json:"summary"`
	PaymentMethods  []PaymentMethodCount `json:"payment_methods"`
	DailyRevenue    []DailyRevenue       `json:"daily_revenue"`
	RevenueByMethod RevenueByMethod      `json:"revenue_by_method"`
	TopSellers      []ProductSales       `json:"top_sellers"`
	Stock           []StockLevel         `json:"stock"`
	CardPayments    []CardPaymentRow     `json:"card_payments"`
}
