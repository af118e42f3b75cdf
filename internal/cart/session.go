// Package cart holds the in-memory carts of the point of sale. Stock is
// reserved in the catalog when a line is added and released when it is
// removed; checkout records the sale without touching stock again.
package cart

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"graca-pdv/internal/domain"
)

// Catalog is the part of the catalog service a cart needs
type Catalog interface {
	Find(ctx context.Context, code string) (*domain.Product, error)
	Reserve(ctx context.Context, code string, quantity int) error
	Release(ctx context.Context, code string, quantity int) error
}

// SaleRecorder persists a finished sale and assigns its id
type SaleRecorder interface {
	Record(ctx context.Context, sale *domain.Sale) error
}

// CardInput carries the card details collected at checkout
type CardInput struct {
	CustomerName string `json:"customer_name"`
	CardType     string `json:"card_type"`
	Installments int    `json:"installments"`
}

// Payment describes how the customer pays
type Payment struct {
	Method   domain.PaymentMethod
	Tendered *decimal.Decimal
	Card     *CardInput
}

// ParseQuantity reads a cart quantity typed by the operator
func ParseQuantity(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, domain.NewValidationError("quantity", "must be a whole number")
	}
	if n <= 0 {
		return 0, domain.NewValidationError("quantity", "must be a positive integer")
	}
	return n, nil
}

// Session is one operator's cart. Its methods are safe for concurrent use.
type Session struct {
	ID string

	mu      sync.Mutex
	lines   []*domain.CartLine
	catalog Catalog
	sales   SaleRecorder
	logger  *zap.Logger
	now     func() time.Time
}

// NewSession creates an empty cart
func NewSession(catalog Catalog, sales SaleRecorder, logger *zap.Logger) *Session {
	id := uuid.New().String()
	return &Session{
		ID:      id,
		catalog: catalog,
		sales:   sales,
		logger:  logger.With(zap.String("session_id", id)),
		now:     time.Now,
	}
}

func (s *Session) find(code string) (int, *domain.CartLine) {
	for i, line := range s.lines {
		if line.Code == code {
			return i, line
		}
	}
	return -1, nil
}

// AddItem reserves quantity units of code and adds them to the cart, merging
// with an existing line for the same product.
func (s *Session) AddItem(ctx context.Context, code string, quantity int) (*domain.CartLine, error) {
	if quantity <= 0 {
		return nil, domain.NewValidationError("quantity", "must be a positive integer")
	}
	code = strings.TrimSpace(code)

	s.mu.Lock()
	defer s.mu.Unlock()

	product, err := s.catalog.Find(ctx, code)
	if err != nil {
		return nil, err
	}
	if quantity > product.Quantity {
		return nil, &domain.InsufficientStockError{Code: code, Requested: quantity, Available: product.Quantity}
	}

	// the read above is only a snapshot; the reservation re-checks atomically
	if err := s.catalog.Reserve(ctx, code, quantity); err != nil {
		return nil, err
	}

	_, line := s.find(code)
	if line == nil {
		line = &domain.CartLine{Code: code, Name: product.Name, UnitPrice: product.Price}
		s.lines = append(s.lines, line)
	}
	line.Quantity += quantity
	line.Recompute()

	s.logger.Debug("Item added to cart", zap.String("code", code), zap.Int("quantity", quantity))
	out := *line
	return &out, nil
}

// RemoveItem releases the reservation of code and drops its line. Removing a
// product that is not in the cart is a no-op.
func (s *Session) RemoveItem(ctx context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, line := s.find(strings.TrimSpace(code))
	if line == nil {
		return nil
	}

	if err := s.catalog.Release(ctx, line.Code, line.Quantity); err != nil {
		return err
	}

	s.lines = append(s.lines[:i], s.lines[i+1:]...)
	return nil
}

// Clear releases every reservation and empties the cart. Lines whose release
// failed stay in the cart and the first failure is returned.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.releaseAll(ctx)
}

func (s *Session) releaseAll(ctx context.Context) error {
	var (
		kept     []*domain.CartLine
		firstErr error
	)
	for _, line := range s.lines {
		if err := s.catalog.Release(ctx, line.Code, line.Quantity); err != nil {
			kept = append(kept, line)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	s.lines = kept
	return firstErr
}

// Lines returns a copy of the cart lines in insertion order
func (s *Session) Lines() []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := make([]domain.CartLine, 0, len(s.lines))
	for _, line := range s.lines {
		lines = append(lines, *line)
	}
	return lines
}

// Total is the sum of the line subtotals
func (s *Session) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.total()
}

func (s *Session) total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range s.lines {
		total = total.Add(line.Subtotal)
	}
	return total
}

// IsEmpty reports whether the cart has no lines
func (s *Session) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.lines) == 0
}

// Checkout records the cart as a sale and empties it. Stock was already taken
// when the lines were added, so it is not adjusted again.
func (s *Session) Checkout(ctx context.Context, payment Payment) (*domain.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.lines) == 0 {
		return nil, domain.NewValidationError("cart", "cart is empty")
	}

	total := s.total()
	sale := &domain.Sale{
		SoldAt:        s.now().Truncate(time.Second),
		Total:         total,
		PaymentMethod: payment.Method,
	}

	switch payment.Method {
	case domain.PaymentCash:
		if payment.Tendered == nil {
			return nil, domain.NewValidationError("amount_tendered", "is required for cash payments")
		}
		tendered := *payment.Tendered
		if tendered.LessThan(total) {
			return nil, &domain.InsufficientPaymentError{Total: total, Tendered: tendered}
		}
		sale.AmountTendered = decimal.NewNullDecimal(tendered)
		sale.Change = decimal.NewNullDecimal(tendered.Sub(total))
	case domain.PaymentCard:
		card, err := cardDetail(payment.Card)
		if err != nil {
			return nil, err
		}
		sale.Card = card
	case domain.PaymentPix:
	default:
		return nil, domain.NewValidationError("payment_method", fmt.Sprintf("unknown payment method %q", payment.Method))
	}

	for _, line := range s.lines {
		sale.Items = append(sale.Items, domain.SaleLineItem{
			ProductCode: line.Code,
			ProductName: line.Name,
			UnitPrice:   line.UnitPrice,
			Quantity:    line.Quantity,
			Subtotal:    line.Subtotal,
		})
	}

	if err := s.sales.Record(ctx, sale); err != nil {
		return nil, err
	}

	s.lines = nil
	s.logger.Info("Checkout completed", zap.Int64("sale_id", sale.ID), zap.String("total", total.StringFixed(2)))
	return sale, nil
}

func cardDetail(in *CardInput) (*domain.CardPaymentDetail, error) {
	if in == nil {
		return nil, domain.NewValidationError("card", "card details are required for card payments")
	}

	name := strings.TrimSpace(in.CustomerName)
	if name == "" {
		return nil, domain.NewValidationError("customer_name", "is required for card payments")
	}

	cardType, ok := domain.ParseCardType(in.CardType)
	if !ok {
		return nil, domain.NewValidationError("card_type", "must be debito or credito")
	}

	installments := in.Installments
	switch {
	case cardType == domain.CardDebit:
		installments = 1
	case installments < 1:
		return nil, domain.NewValidationError("installments", "must be at least 1")
	}

	return &domain.CardPaymentDetail{
		CustomerName: name,
		CardType:     cardType,
		Installments: installments,
	}, nil
}
