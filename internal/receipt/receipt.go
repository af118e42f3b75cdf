// Package receipt renders sale receipts and delivers them as a text file,
// a terminal QR code or a WhatsApp link.
package receipt

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/mdp/qrterminal/v3"

	"graca-pdv/internal/domain"
)

const (
	rule   = "------------------------------"
	footer = "=============================="
)

// Store is the shop identity printed at the top of every receipt
type Store struct {
	Name    string
	Contact string
}

// Render formats sale as the customer receipt
func Render(store Store, sale *domain.Sale) string {
	var b strings.Builder

	b.WriteString("=== COMPROVANTE DE VENDA ===\n")
	fmt.Fprintf(&b, "Loja: %s\n", store.Name)
	fmt.Fprintf(&b, "%s\n", store.Contact)
	fmt.Fprintf(&b, "Data: %s\n", sale.SoldAt.Format(domain.TimestampLayout))
	fmt.Fprintf(&b, "Venda ID: #%d\n", sale.ID)
	b.WriteString(rule + "\n")

	for _, item := range sale.Items {
		fmt.Fprintf(&b, "%dx %s\n", item.Quantity, item.ProductName)
		fmt.Fprintf(&b, "   R$ %s -> R$ %s\n", item.UnitPrice.StringFixed(2), item.Subtotal.StringFixed(2))
	}

	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "TOTAL: R$ %s\n", sale.Total.StringFixed(2))
	fmt.Fprintf(&b, "Forma Pagamento: %s\n", strings.ToUpper(string(sale.PaymentMethod)))
	b.WriteString("\n   Obrigado pela preferência!   \n")
	b.WriteString(footer + "\n")

	return b.String()
}

// FileName is the name a receipt is saved under
func FileName(saleID int64) string {
	return fmt.Sprintf("comprovante_%d.txt", saleID)
}

// SaveText writes the receipt text into dir and returns the file path
func SaveText(dir string, saleID int64, text string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create receipt directory: %w", err)
	}

	path := filepath.Join(dir, FileName(saleID))
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("failed to write receipt: %w", err)
	}

	return path, nil
}

// WriteQR draws the receipt text as a QR code using terminal half blocks
func WriteQR(w io.Writer, text string) {
	qrterminal.GenerateHalfBlock(text, qrterminal.L, w)
}

// WhatsAppURL builds a wa.me deep link that opens a chat with phone (DDD and
// number, digits only) prefilled with text.
func WhatsAppURL(phone, text string) (string, error) {
	phone = strings.TrimSpace(phone)
	if len(phone) < 10 || strings.IndexFunc(phone, func(r rune) bool { return r < '0' || r > '9' }) >= 0 {
		return "", domain.NewValidationError("phone", "must be at least 10 digits (DDD + number)")
	}

	escaped := strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
	return "https://wa.me/55" + phone + "?text=" + escaped, nil
}
