package export

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"graca-pdv/internal/domain"
)

type stockRow struct {
	Code     string `csv:"codigo"`
	Name     string `csv:"produto"`
	Quantity int    `csv:"quantidade"`
	Low      bool   `csv:"estoque_baixo"`
}

type cardPaymentRow struct {
	SaleID       int64  `csv:"venda"`
	SoldAt       string `csv:"data"`
	Total        string `csv:"total"`
	CustomerName string `csv:"cliente"`
	CardType     string `csv:"tipo"`
	Installments int    `csv:"parcelas"`
}

// WriteStockCSV writes the stock levels as CSV with a header row
func WriteStockCSV(out io.Writer, levels []domain.StockLevel) error {
	rows := make([]*stockRow, 0, len(levels))
	for _, l := range levels {
		rows = append(rows, &stockRow{Code: l.Code, Name: l.Name, Quantity: l.Quantity, Low: l.Low})
	}

	if err := gocsv.Marshal(rows, out); err != nil {
		return fmt.Errorf("failed to write stock csv: %w", err)
	}
	return nil
}

// WriteCardPaymentsCSV writes the card payment rows as CSV with a header row
func WriteCardPaymentsCSV(out io.Writer, payments []domain.CardPaymentRow) error {
	rows := make([]*cardPaymentRow, 0, len(payments))
	for _, p := range payments {
		rows = append(rows, &cardPaymentRow{
			SaleID:       p.SaleID,
			SoldAt:       p.SoldAt.Format(domain.TimestampLayout),
			Total:        p.Total.StringFixed(2),
			CustomerName: p.CustomerName,
			CardType:     string(p.CardType),
			Installments: p.Installments,
		})
	}

	if err := gocsv.Marshal(rows, out); err != nil {
		return fmt.Errorf("failed to write card payments csv: %w", err)
	}
	return nil
}
