package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"graca-pdv/internal/domain"
)

// Timestamps are stored as local-time text so both drivers can group by day
// with substr(column, 1, 10).
func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.In(time.Local).Format(domain.TimestampLayout)
}

func parseTimestamp(s string) time.Time {
	t, err := time.ParseInLocation(domain.TimestampLayout, s, time.Local)
	if err != nil {
		return time.Time{}
	}
	return t
}

// REAL columns come back as float64; money is always two places.
func roundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

func roundNullMoney(d decimal.NullDecimal) decimal.NullDecimal {
	if d.Valid {
		d.Decimal = d.Decimal.Round(2)
	}
	return d
}
