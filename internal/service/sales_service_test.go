package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"graca-pdv/internal/domain"
	"graca-pdv/internal/receipt"
	"graca-pdv/internal/repository"
)

type mockSaleRepository struct {
	sales    map[int64]*domain.Sale
	nextID   int64
	failWith error
}

func newMockSaleRepository() *mockSaleRepository {
	return &mockSaleRepository{sales: make(map[int64]*domain.Sale)}
}

func (m *mockSaleRepository) Create(ctx context.Context, sale *domain.Sale) error {
	if m.failWith != nil {
		return m.failWith
	}
	m.nextID++
	sale.ID = m.nextID
	m.sales[sale.ID] = sale
	return nil
}

func (m *mockSaleRepository) FindByID(ctx context.Context, id int64) (*domain.Sale, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	sale, exists := m.sales[id]
	if !exists {
		return nil, repository.ErrSaleNotFound
	}
	return sale, nil
}

var testStore = receipt.Store{Name: "Graça Presentes", Contact: "WhatsApp: (11) 99999-9999"}

func TestRecordAssignsIDAndReceiptRenders(t *testing.T) {
	repo := newMockSaleRepository()
	sales := NewSalesService(repo, testStore, zap.NewNop())
	ctx := context.Background()

	sale := &domain.Sale{
		SoldAt:        time.Date(2026, 2, 3, 14, 5, 9, 0, time.Local),
		Total:         decimal.RequireFromString("100"),
		PaymentMethod: domain.PaymentCard,
		Items: []domain.SaleLineItem{{
			ProductCode: "P1",
			ProductName: "Perfume X",
			UnitPrice:   decimal.RequireFromString("50"),
			Quantity:    2,
			Subtotal:    decimal.RequireFromString("100"),
		}},
	}
	require.NoError(t, sales.Record(ctx, sale))
	assert.Equal(t, int64(1), sale.ID)

	text, err := sales.Receipt(ctx, 1)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(text, "=== COMPROVANTE DE VENDA ===\nLoja: Graça Presentes\n"))
	assert.Contains(t, text, "Venda ID: #1\n")
	assert.Contains(t, text, "2x Perfume X\n   R$ 50.00 -> R$ 100.00\n")
	assert.Contains(t, text, "Forma Pagamento: CARTAO\n")
}

func TestGetUnknownSale(t *testing.T) {
	sales := NewSalesService(newMockSaleRepository(), testStore, zap.NewNop())

	_, err := sales.Get(context.Background(), 99)
	var notFound *domain.NotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "sale", notFound.Entity)
	assert.Equal(t, "99", notFound.Key)

	_, err = sales.Receipt(context.Background(), 99)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRecordStoreFailure(t *testing.T) {
	repo := newMockSaleRepository()
	repo.failWith = errStoreDown
	sales := NewSalesService(repo, testStore, zap.NewNop())

	err := sales.Record(context.Background(), &domain.Sale{PaymentMethod: domain.PaymentPix})
	assert.ErrorIs(t, err, domain.ErrStore)
	assert.ErrorIs(t, err, errStoreDown)
}

func TestGetDegradesToNotFound(t *testing.T) {
	repo := newMockSaleRepository()
	repo.failWith = errStoreDown
	core, logs := observer.New(zap.InfoLevel)
	sales := NewSalesService(repo, testStore, zap.New(core))

	sale, err := sales.Get(context.Background(), 7)
	assert.Nil(t, sale)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NotErrorIs(t, err, domain.ErrStore)

	_, err = sales.Receipt(context.Background(), 7)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	entries := logs.FilterMessage("Store operation failed").All()
	require.Len(t, entries, 2)
	assert.Equal(t, "find sale", entries[0].ContextMap()["operation"])
	assert.Equal(t, "7", entries[0].ContextMap()["key"])
}
