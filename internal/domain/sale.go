package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is how a sale was paid
type PaymentMethod string

const (
	PaymentCash PaymentMethod = "dinheiro"
	PaymentCard PaymentMethod = "cartao"
	PaymentPix  PaymentMethod = "pix"
)

// ParsePaymentMethod returns the payment method named by s
func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	switch m := PaymentMethod(strings.ToLower(strings.TrimSpace(s))); m {
	case PaymentCash, PaymentCard, PaymentPix:
		return m, true
	}
	return "", false
}

// CardType distinguishes debit from credit card payments
type CardType string

const (
	CardDebit  CardType = "debito"
	CardCredit CardType = "credito"
)

// ParseCardType returns the card type named by s
func ParseCardType(s string) (CardType, bool) {
	switch c := CardType(strings.ToLower(strings.TrimSpace(s))); c {
	case CardDebit, CardCredit:
		return c, true
	}
	return "", false
}

// CartLine is an uncommitted grouping of one product with a pending quantity.
// Name and UnitPrice are snapshots taken when the line was created.
type CartLine struct {
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// Recompute refreshes the subtotal from price and quantity
func (l *CartLine) Recompute() {
	l.Subtotal = l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Sale is a committed checkout. It is immutable once created.
type Sale struct {
	ID             int64               `json:"id" db:"id"`
	SoldAt         time.Time           `json:"sold_at" db:"sold_at"`
	Total          decimal.Decimal     `json:"total" db:"total"`
	PaymentMethod  PaymentMethod       `json:"payment_method" db:"payment_method"`
	AmountTendered decimal.NullDecimal `json:"amount_tendered" db:"amount_tendered"`
	Change         decimal.NullDecimal `json:"change" db:"change"`
	Items          []SaleLineItem      `json:"items"`
	Card           *CardPaymentDetail  `json:"card,omitempty"`
}

// SaleLineItem is one product line of a sale
type SaleLineItem struct {
	ID          int64           `json:"id" db:"id"`
	SaleID      int64           `json:"sale_id" db:"sale_id"`
	ProductCode string          `json:"product_code" db:"product_code"`
	ProductName string          `json:"product_name" db:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price" db:"unit_price"`
	Quantity    int             `json:"quantity" db:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal" db:"subtotal"`
}

// CardPaymentDetail records who paid by card and how
type CardPaymentDetail struct {
	ID           int64    `json:"id" db:"id"`
	SaleID       int64    `json:"sale_id" db:"sale_id"`
	CustomerName string   `json:"customer_name" db:"customer_name"`
	CardType     CardType `json:"card_type" db:"card_type"`
	Installments int      `json:"installments" db:"installments"`
}
