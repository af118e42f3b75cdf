package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"graca-pdv/internal/config"
	"graca-pdv/internal/database"
	"graca-pdv/internal/domain"
	"graca-pdv/internal/export"
	"graca-pdv/internal/repository"
)

func seedStore(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "pdv.db")
	t.Setenv("DB_DRIVER", config.DriverSQLite)
	t.Setenv("DB_PATH", path)
	t.Setenv("SERVER_ENV", "production")

	db, err := database.New(config.DatabaseConfig{Driver: config.DriverSQLite, Path: path})
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, database.EnsureSchema(db, zap.NewNop()))

	price := decimal.RequireFromString("50.00")
	sale := &domain.Sale{
		SoldAt:        time.Date(2026, 5, 2, 10, 30, 0, 0, time.Local),
		Total:         decimal.RequireFromString("100.00"),
		PaymentMethod: domain.PaymentPix,
		Items: []domain.SaleLineItem{{
			ProductCode: "P1",
			ProductName: "Perfume X",
			UnitPrice:   price,
			Quantity:    2,
			Subtotal:    decimal.RequireFromString("100.00"),
		}},
	}
	require.NoError(t, repository.NewSaleRepository(db.DB()).Create(context.Background(), sale))
	require.Equal(t, int64(1), sale.ID)

	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestReceiptCommand(t *testing.T) {
	seedStore(t)
	dir := t.TempDir()

	out, err := run(t, "receipt", "1", "--save", dir, "--whatsapp", "11988887777")
	require.NoError(t, err)

	assert.Contains(t, out, "2x Perfume X\n   R$ 50.00 -> R$ 100.00\n")
	assert.Contains(t, out, "Forma Pagamento: PIX\n")
	assert.Contains(t, out, "https://wa.me/5511988887777?text=")

	saved, err := os.ReadFile(filepath.Join(dir, "comprovante_1.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(saved), "Venda ID: #1\n")
}

func TestReceiptCommandRejectsUnknownSale(t *testing.T) {
	seedStore(t)

	_, err := run(t, "receipt", "42")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = run(t, "receipt", "abc")
	assert.Error(t, err)
}

func TestExportCommand(t *testing.T) {
	seedStore(t)
	dir := t.TempDir()
	workbook := filepath.Join(dir, "relatorio.xlsx")
	stock := filepath.Join(dir, "estoque.csv")

	out, err := run(t, "export", "--out", workbook, "--stock-csv", stock)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote "+workbook)

	f, err := excelize.OpenFile(workbook)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(export.SheetTopSellers)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "P1", rows[1][0])

	_, err = os.Stat(stock)
	assert.NoError(t, err)
}

func TestSchemaCommand(t *testing.T) {
	seedStore(t)

	out, err := run(t, "schema")
	require.NoError(t, err)
	assert.Contains(t, out, "schema up to date (sqlite3)")
}

func TestFailedCommandIsWrittenToLogFile(t *testing.T) {
	seedStore(t)
	logPath := filepath.Join(t.TempDir(), "erros.log")
	t.Setenv("LOG_FILE_ENABLE", "true")
	t.Setenv("LOG_FILE", logPath)

	_, err := run(t, "receipt", "42")
	require.ErrorIs(t, err, domain.ErrNotFound)

	raw, err := os.ReadFile(logPath)
	require.NoError(t, err)

	var failed map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(string(raw)), "\n") {
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry), line)
		if entry["msg"] == "Command failed" {
			failed = entry
		}
	}
	require.NotNil(t, failed, string(raw))
	assert.Equal(t, "receipt", failed["command"])
	assert.Contains(t, failed["error"], "sale")
}
