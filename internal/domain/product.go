package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TimestampLayout is the text format timestamps are persisted in.
const TimestampLayout = "2006-01-02 15:04:05"

// DateLayout is the calendar-day format used by daily reports.
const DateLayout = "2006-01-02"

// LowStockThreshold marks products that should be restocked soon.
const LowStockThreshold = 5

// Category represents a product category
type Category string

const (
	CategoryCosmetics Category = "cosmeticos"
	CategoryPerfumes  Category = "perfumes"
	CategoryBaskets   Category = "cestas"
	CategoryHygiene   Category = "higiene"
	CategoryOther     Category = "outros"
)

// Categories lists the known categories in display order
var Categories = []Category{
	CategoryCosmetics,
	CategoryPerfumes,
	CategoryBaskets,
	CategoryHygiene,
	CategoryOther,
}

// ParseCategory maps free text to a known category, falling back to "outros"
func ParseCategory(s string) Category {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Categories {
		if c == known {
			return known
		}
	}
	return CategoryOther
}

// Product represents a product in the catalog
type Product struct {
	Code         string          `json:"code" db:"code"`
	Name         string          `json:"name" db:"name"`
	Price        decimal.Decimal `json:"price" db:"price"`
	Quantity     int             `json:"quantity" db:"quantity"`
	Category     Category        `json:"category" db:"category"`
	Description  string          `json:"description" db:"description"`
	RegisteredAt time.Time       `json:"registered_at" db:"registered_at"`
	ImageRef     string          `json:"image_ref,omitempty" db:"image_ref"`
}

// LowStock reports whether the on-hand quantity is below the restock threshold
func (p *Product) LowStock() bool {
	return p.Quantity < LowStockThreshold
}
