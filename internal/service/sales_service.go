package service

import (
	"context"
	"errors"
	"strconv"

	"go.uber.org/zap"

	"graca-pdv/internal/domain"
	"graca-pdv/internal/receipt"
	"graca-pdv/internal/repository"
)

// SalesService defines the interface for recorded sales and their receipts
type SalesService interface {
	Record(ctx context.Context, sale *domain.Sale) error
	Get(ctx context.Context, id int64) (*domain.Sale, error)
	Receipt(ctx context.Context, id int64) (string, error)
}

type salesService struct {
	sales  repository.SaleRepository
	store  receipt.Store
	logger *zap.Logger
}

// NewSalesService creates a new instance of SalesService
func NewSalesService(sales repository.SaleRepository, store receipt.Store, logger *zap.Logger) SalesService {
	return &salesService{
		sales:  sales,
		store:  store,
		logger: logger,
	}
}

// Record persists a finished sale with its items and card detail atomically
func (s *salesService) Record(ctx context.Context, sale *domain.Sale) error {
	if err := s.sales.Create(ctx, sale); err != nil {
		return storeFailure(s.logger, "record sale", "", err)
	}

	s.logger.Info("Sale recorded",
		zap.Int64("sale_id", sale.ID),
		zap.String("payment_method", string(sale.PaymentMethod)),
		zap.String("total", sale.Total.StringFixed(2)),
		zap.Int("items", len(sale.Items)),
	)
	return nil
}

// Get returns the sale with its items and card detail
func (s *salesService) Get(ctx context.Context, id int64) (*domain.Sale, error) {
	key := strconv.FormatInt(id, 10)

	sale, err := s.sales.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrSaleNotFound) {
			return nil, &domain.NotFoundError{Entity: "sale", Key: key}
		}
		return nil, lookupFailure(s.logger, "find sale", "sale", key, err)
	}
	return sale, nil
}

// Receipt renders the customer receipt of a recorded sale
func (s *salesService) Receipt(ctx context.Context, id int64) (string, error) {
	sale, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return receipt.Render(s.store, sale), nil
}
