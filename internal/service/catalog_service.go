package service

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"graca-pdv/internal/domain"
	"graca-pdv/internal/repository"
)

// NumberText is a numeric form field. It accepts JSON numbers and strings,
// including a decimal comma such as "49,90".
type NumberText string

// UnmarshalJSON keeps the raw text of numbers and strings alike
func (n *NumberText) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = NumberText(s)
		return nil
	}
	if string(data) == "null" {
		*n = ""
		return nil
	}
	*n = NumberText(data)
	return nil
}

func (n NumberText) normalized() string {
	return strings.Replace(strings.TrimSpace(string(n)), ",", ".", 1)
}

// IsBlank reports whether nothing was typed
func (n NumberText) IsBlank() bool {
	return strings.TrimSpace(string(n)) == ""
}

// Decimal parses the text as a decimal amount
func (n NumberText) Decimal() (decimal.Decimal, error) {
	return decimal.NewFromString(n.normalized())
}

// ProductInput is the unvalidated form of a catalog entry
type ProductInput struct {
	Code        string     `json:"code" validate:"required,max=64"`
	Name        string     `json:"name" validate:"required,max=255"`
	Price       NumberText `json:"price" validate:"required,decimal_text"`
	Quantity    NumberText `json:"quantity" validate:"required,integer_text"`
	Category    string     `json:"category"`
	Description string     `json:"description" validate:"max=2000"`
	ImageRef    string     `json:"image_ref" validate:"max=500"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("decimal_text", func(fl validator.FieldLevel) bool {
		_, err := decimal.NewFromString(NumberText(fl.Field().String()).normalized())
		return err == nil
	})
	_ = v.RegisterValidation("integer_text", func(fl validator.FieldLevel) bool {
		_, err := strconv.Atoi(NumberText(fl.Field().String()).normalized())
		return err == nil
	})

	return v
}

// toValidationError reports the first failed rule as a domain ValidationError
func toValidationError(err error) error {
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) || len(fieldErrors) == 0 {
		return domain.NewValidationError("", err.Error())
	}

	fe := fieldErrors[0]
	switch fe.Tag() {
	case "required":
		return domain.NewValidationError(fe.Field(), "is required")
	case "max":
		return domain.NewValidationError(fe.Field(), "must be at most "+fe.Param()+" characters")
	case "decimal_text", "integer_text":
		return domain.NewValidationError(fe.Field(), "must be a valid number")
	default:
		return domain.NewValidationError(fe.Field(), "is invalid")
	}
}

// Product converts the input into a catalog entry stamped at now
func (in ProductInput) Product(now time.Time) (*domain.Product, error) {
	in.Code = strings.TrimSpace(in.Code)
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.Price = NumberText(in.Price.normalized())
	in.Quantity = NumberText(in.Quantity.normalized())

	if err := validate.Struct(in); err != nil {
		return nil, toValidationError(err)
	}

	price, _ := decimal.NewFromString(string(in.Price))
	if price.IsNegative() {
		return nil, domain.NewValidationError("price", "must not be negative")
	}

	quantity, _ := strconv.Atoi(string(in.Quantity))
	if quantity < 0 {
		return nil, domain.NewValidationError("quantity", "must not be negative")
	}

	return &domain.Product{
		Code:         in.Code,
		Name:         in.Name,
		Price:        price.Round(2),
		Quantity:     quantity,
		Category:     domain.ParseCategory(in.Category),
		Description:  in.Description,
		RegisteredAt: now.Truncate(time.Second),
		ImageRef:     strings.TrimSpace(in.ImageRef),
	}, nil
}

// CatalogService defines the interface for product catalog business logic
type CatalogService interface {
	Upsert(ctx context.Context, input ProductInput) (*domain.Product, error)
	Find(ctx context.Context, code string) (*domain.Product, error)
	List(ctx context.Context, filter string) []*domain.Product
	Delete(ctx context.Context, code string) error
	AdjustStock(ctx context.Context, code string, delta int) error
	Reserve(ctx context.Context, code string, quantity int) error
	Release(ctx context.Context, code string, quantity int) error
}

type catalogService struct {
	products repository.ProductRepository
	logger   *zap.Logger
	now      func() time.Time
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(products repository.ProductRepository, logger *zap.Logger) CatalogService {
	return &catalogService{
		products: products,
		logger:   logger,
		now:      time.Now,
	}
}

// Upsert validates the input and inserts or replaces the product
func (s *catalogService) Upsert(ctx context.Context, input ProductInput) (*domain.Product, error) {
	product, err := input.Product(s.now())
	if err != nil {
		return nil, err
	}

	if err := s.products.Upsert(ctx, product); err != nil {
		return nil, storeFailure(s.logger, "upsert product", product.Code, err)
	}

	s.logger.Info("Product saved", zap.String("code", product.Code), zap.Int("quantity", product.Quantity))
	if product.LowStock() {
		s.logger.Warn("Product stock is low", zap.String("code", product.Code), zap.Int("quantity", product.Quantity))
	}
	return product, nil
}

// Find returns the product stored under code. A failed read is logged and
// reported as not found.
func (s *catalogService) Find(ctx context.Context, code string) (*domain.Product, error) {
	product, err := s.products.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, &domain.NotFoundError{Entity: "product", Key: code}
		}
		return nil, lookupFailure(s.logger, "find product", "product", code, err)
	}
	return product, nil
}

// List returns matching products ordered by name. Store failures yield an empty list.
func (s *catalogService) List(ctx context.Context, filter string) []*domain.Product {
	products, err := s.products.List(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list products", zap.String("filter", filter), zap.Error(err))
		return []*domain.Product{}
	}
	return products
}

// Delete removes the product stored under code
func (s *catalogService) Delete(ctx context.Context, code string) error {
	if err := s.products.Delete(ctx, code); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return &domain.NotFoundError{Entity: "product", Key: code}
		}
		return storeFailure(s.logger, "delete product", code, err)
	}

	s.logger.Info("Product deleted", zap.String("code", code))
	return nil
}

// AdjustStock adds delta to the product's on-hand quantity. A delta that would
// take the quantity below zero is rejected with the stock currently available.
func (s *catalogService) AdjustStock(ctx context.Context, code string, delta int) error {
	err := s.products.AdjustStock(ctx, code, delta)
	if err == nil {
		return nil
	}

	var stockErr *domain.InsufficientStockError
	switch {
	case errors.As(err, &stockErr):
		return stockErr
	case errors.Is(err, repository.ErrProductNotFound):
		return &domain.NotFoundError{Entity: "product", Key: code}
	default:
		return storeFailure(s.logger, "adjust stock", code, err)
	}
}

// Reserve takes quantity units out of stock, failing when fewer are on hand
func (s *catalogService) Reserve(ctx context.Context, code string, quantity int) error {
	if quantity <= 0 {
		return domain.NewValidationError("quantity", "must be a positive integer")
	}

	err := s.products.ReserveStock(ctx, code, quantity)
	if err == nil {
		return nil
	}

	var stockErr *domain.InsufficientStockError
	switch {
	case errors.As(err, &stockErr):
		return stockErr
	case errors.Is(err, repository.ErrProductNotFound):
		return &domain.NotFoundError{Entity: "product", Key: code}
	default:
		return storeFailure(s.logger, "reserve stock", code, err)
	}
}

// Release returns quantity reserved units to stock
func (s *catalogService) Release(ctx context.Context, code string, quantity int) error {
	return s.AdjustStock(ctx, code, quantity)
}
