package receipt

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"graca-pdv/internal/domain"
)

var testStore = Store{Name: "Graça Presentes", Contact: "WhatsApp: (11) 99999-9999"}

func perfumeSale() *domain.Sale {
	return &domain.Sale{
		ID:            7,
		SoldAt:        time.Date(2026, 2, 3, 14, 5, 9, 0, time.Local),
		Total:         decimal.RequireFromString("100"),
		PaymentMethod: domain.PaymentPix,
		Items: []domain.SaleLineItem{{
			ProductCode: "P1",
			ProductName: "Perfume X",
			UnitPrice:   decimal.RequireFromString("50"),
			Quantity:    2,
			Subtotal:    decimal.RequireFromString("100"),
		}},
	}
}

func TestRenderIsByteExact(t *testing.T) {
	want := "=== COMPROVANTE DE VENDA ===\n" +
		"Loja: Graça Presentes\n" +
		"WhatsApp: (11) 99999-9999\n" +
		"Data: 2026-02-03 14:05:09\n" +
		"Venda ID: #7\n" +
		"------------------------------\n" +
		"2x Perfume X\n" +
		"   R$ 50.00 -> R$ 100.00\n" +
		"------------------------------\n" +
		"TOTAL: R$ 100.00\n" +
		"Forma Pagamento: PIX\n" +
		"\n" +
		"   Obrigado pela preferência!   \n" +
		"==============================\n"

	assert.Equal(t, want, Render(testStore, perfumeSale()))
}

func TestRenderListsEveryItemInOrder(t *testing.T) {
	sale := perfumeSale()
	sale.PaymentMethod = domain.PaymentCash
	sale.Items = append(sale.Items, domain.SaleLineItem{
		ProductName: "Sabonete",
		UnitPrice:   decimal.RequireFromString("4.5"),
		Quantity:    3,
		Subtotal:    decimal.RequireFromString("13.5"),
	})

	text := Render(testStore, sale)
	first := strings.Index(text, "2x Perfume X")
	second := strings.Index(text, "3x Sabonete\n   R$ 4.50 -> R$ 13.50\n")
	assert.True(t, first >= 0 && second > first, text)
	assert.Contains(t, text, "Forma Pagamento: DINHEIRO\n")
}

func TestSaveText(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "recibos")

	path, err := SaveText(dir, 7, "conteudo")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "comprovante_7.txt"), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "conteudo", string(content))
}

func TestWriteQR(t *testing.T) {
	var buf bytes.Buffer
	WriteQR(&buf, Render(testStore, perfumeSale()))
	assert.NotZero(t, buf.Len())
	assert.Greater(t, strings.Count(buf.String(), "\n"), 10)
}

func TestWhatsAppURL(t *testing.T) {
	link, err := WhatsAppURL("11987654321", "Venda #7: R$ 100.00\nObrigado!")
	require.NoError(t, err)
	assert.Equal(t, "https://wa.me/5511987654321?text=Venda%20%237%3A%20R%24%20100.00%0AObrigado%21", link)

	for _, phone := range []string{"", "123456789", "(11)98765-4321", "11 98765432"} {
		_, err := WhatsAppURL(phone, "x")
		assert.ErrorIs(t, err, domain.ErrValidation, phone)
	}
}
