package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"graca-pdv/internal/domain"
	"graca-pdv/internal/repository"
)

// ReportService defines the read-only analytics over recorded sales.
// Every call re-queries the store; failures are logged and yield empty results.
type ReportService interface {
	Summary(ctx context.Context) domain.SalesSummary
	PaymentMethods(ctx context.Context) []domain.PaymentMethodCount
	DailyRevenue(ctx context.Context) []domain.DailyRevenue
	DailyRevenueByMethod(ctx context.Context) domain.RevenueByMethod
	TopSellers(ctx context.Context) []domain.ProductSales
	SalesOnDate(ctx context.Context, day time.Time) []domain.ProductSales
	StockLevels(ctx context.Context) []domain.StockLevel
	CardPayments(ctx context.Context) []domain.CardPaymentRow
	Dashboard(ctx context.Context) *domain.Dashboard
}

type reportService struct {
	reports repository.ReportRepository
	logger  *zap.Logger
	now     func() time.Time
}

// NewReportService creates a new instance of ReportService
func NewReportService(reports repository.ReportRepository, logger *zap.Logger) ReportService {
	return &reportService{
		reports: reports,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *reportService) readFailed(report string, err error) {
	s.logger.Error("Failed to build report", zap.String("report", report), zap.Error(err))
}

func (s *reportService) Summary(ctx context.Context) domain.SalesSummary {
	summary, err := s.reports.Summary(ctx)
	if err != nil {
		s.readFailed("summary", err)
		return domain.SalesSummary{Revenue: decimal.Zero, AverageTicket: decimal.Zero}
	}
	return summary
}

func (s *reportService) PaymentMethods(ctx context.Context) []domain.PaymentMethodCount {
	counts, err := s.reports.CountByPaymentMethod(ctx)
	if err != nil {
		s.readFailed("payment methods", err)
		return []domain.PaymentMethodCount{}
	}
	return counts
}

func (s *reportService) DailyRevenue(ctx context.Context) []domain.DailyRevenue {
	days, err := s.reports.DailyRevenue(ctx)
	if err != nil {
		s.readFailed("daily revenue", err)
		return []domain.DailyRevenue{}
	}
	return days
}

func (s *reportService) DailyRevenueByMethod(ctx context.Context) domain.RevenueByMethod {
	pivot, err := s.reports.DailyRevenueByMethod(ctx)
	if err != nil {
		s.readFailed("daily revenue by method", err)
		return domain.RevenueByMethod{
			Dates:   []string{},
			Methods: []domain.PaymentMethod{},
			Totals:  map[string]map[domain.PaymentMethod]decimal.Decimal{},
		}
	}
	return pivot
}

func (s *reportService) TopSellers(ctx context.Context) []domain.ProductSales {
	top, err := s.reports.TopSellers(ctx)
	if err != nil {
		s.readFailed("top sellers", err)
		return []domain.ProductSales{}
	}
	return top
}

func (s *reportService) SalesOnDate(ctx context.Context, day time.Time) []domain.ProductSales {
	sold, err := s.reports.SalesOnDate(ctx, day.Format(domain.DateLayout))
	if err != nil {
		s.readFailed("sales on date", err)
		return []domain.ProductSales{}
	}
	return sold
}

func (s *reportService) StockLevels(ctx context.Context) []domain.StockLevel {
	levels, err := s.reports.StockLevels(ctx)
	if err != nil {
		s.readFailed("stock levels", err)
		return []domain.StockLevel{}
	}
	return levels
}

func (s *reportService) CardPayments(ctx context.Context) []domain.CardPaymentRow {
	rows, err := s.reports.CardPayments(ctx)
	if err != nil {
		s.readFailed("card payments", err)
		return []domain.CardPaymentRow{}
	}
	return rows
}

// Dashboard gathers every report in one snapshot
func (s *reportService) Dashboard(ctx context.Context) *domain.Dashboard {
	return &domain.Dashboard{
		GeneratedAt:     s.now(),
		Summary:         s.Summary(ctx),
		PaymentMethods:  s.PaymentMethods(ctx),
		DailyRevenue:    s.DailyRevenue(ctx),
		RevenueByMethod: s.DailyRevenueByMethod(ctx),
		TopSellers:      s.TopSellers(ctx),
		Stock:           s.StockLevels(ctx),
		CardPayments:    s.CardPayments(ctx),
	}
}
