// Package export writes report data as spreadsheets and CSV files.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"graca-pdv/internal/domain"
)

// Sheet names of the dashboard workbook, in tab order
const (
	SheetSummary         = "Resumo"
	SheetPaymentMethods  = "Formas de Pagamento"
	SheetDailyRevenue    = "Receita Diaria"
	SheetRevenueByMethod = "Receita por Forma"
	SheetTopSellers      = "Mais Vendidos"
	SheetStock           = "Estoque"
	SheetCardPayments    = "Cartoes"
)

type sheetWriter struct {
	f         *excelize.File
	headStyle int
}

func (w *sheetWriter) sheet(name string, header []interface{}, rows [][]interface{}) error {
	if _, err := w.f.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", name, err)
	}

	if err := w.f.SetSheetRow(name, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header of %s: %w", name, err)
	}
	if err := w.f.SetRowStyle(name, 1, 1, w.headStyle); err != nil {
		return fmt.Errorf("failed to style header of %s: %w", name, err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := w.f.SetSheetRow(name, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d of %s: %w", i+2, name, err)
		}
	}

	return nil
}

// Workbook builds an .xlsx workbook with one sheet per dashboard report
func Workbook(d *domain.Dashboard) (*excelize.File, error) {
	f := excelize.NewFile()

	headStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	w := &sheetWriter{f: f, headStyle: headStyle}

	steps := []func() error{
		func() error {
			return w.sheet(SheetSummary,
				[]interface{}{"Gerado em", "Faturamento", "Vendas", "Ticket Medio"},
				[][]interface{}{{
					d.GeneratedAt.Format(domain.TimestampLayout),
					d.Summary.Revenue.InexactFloat64(),
					d.Summary.Count,
					d.Summary.AverageTicket.InexactFloat64(),
				}})
		},
		func() error {
			rows := make([][]interface{}, 0, len(d.PaymentMethods))
			for _, pm := range d.PaymentMethods {
				rows = append(rows, []interface{}{string(pm.Method), pm.Count})
			}
			return w.sheet(SheetPaymentMethods, []interface{}{"Forma", "Vendas"}, rows)
		},
		func() error {
			rows := make([][]interface{}, 0, len(d.DailyRevenue))
			for _, day := range d.DailyRevenue {
				rows = append(rows, []interface{}{day.Date, day.Total.InexactFloat64()})
			}
			return w.sheet(SheetDailyRevenue, []interface{}{"Data", "Receita"}, rows)
		},
		func() error {
			header := []interface{}{"Data"}
			for _, m := range d.RevenueByMethod.Methods {
				header = append(header, string(m))
			}
			rows := make([][]interface{}, 0, len(d.RevenueByMethod.Dates))
			for _, date := range d.RevenueByMethod.Dates {
				row := []interface{}{date}
				for _, m := range d.RevenueByMethod.Methods {
					row = append(row, d.RevenueByMethod.Totals[date][m].InexactFloat64())
				}
				rows = append(rows, row)
			}
			return w.sheet(SheetRevenueByMethod, header, rows)
		},
		func() error {
			rows := make([][]interface{}, 0, len(d.TopSellers))
			for _, ps := range d.TopSellers {
				rows = append(rows, []interface{}{ps.Code, ps.Name, ps.Quantity})
			}
			return w.sheet(SheetTopSellers, []interface{}{"Codigo", "Produto", "Quantidade"}, rows)
		},
		func() error {
			rows := make([][]interface{}, 0, len(d.Stock))
			for _, s := range d.Stock {
				low := ""
				if s.Low {
					low = "sim"
				}
				rows = append(rows, []interface{}{s.Code, s.Name, s.Quantity, low})
			}
			return w.sheet(SheetStock, []interface{}{"Codigo", "Produto", "Quantidade", "Estoque Baixo"}, rows)
		},
		func() error {
			rows := make([][]interface{}, 0, len(d.CardPayments))
			for _, c := range d.CardPayments {
				rows = append(rows, []interface{}{
					c.SaleID,
					c.SoldAt.Format(domain.TimestampLayout),
					c.Total.InexactFloat64(),
					c.CustomerName,
					string(c.CardType),
					c.Installments,
				})
			}
			return w.sheet(SheetCardPayments,
				[]interface{}{"Venda", "Data", "Total", "Cliente", "Tipo", "Parcelas"}, rows)
		},
	}

	for _, step := range steps {
		if err := step(); err != nil {
			f.Close()
			return nil, err
		}
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}
	if idx, err := f.GetSheetIndex(SheetSummary); err == nil {
		f.SetActiveSheet(idx)
	}

	return f, nil
}

// WriteWorkbook streams the dashboard workbook to out
func WriteWorkbook(out io.Writer, d *domain.Dashboard) error {
	f, err := Workbook(d)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(out); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
