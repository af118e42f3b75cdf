package transport

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"graca-pdv/internal/domain"
	"graca-pdv/internal/export"
	"graca-pdv/internal/middleware"
	"graca-pdv/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportHandler handles HTTP requests for the analytics reports
type ReportHandler struct {
	reports service.ReportService
	logger  *zap.Logger
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reports service.ReportService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		reports: reports,
		logger:  logger,
	}
}

// RegisterRoutes registers all report routes
func (h *ReportHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/reports", func(r chi.Router) {
		r.Get("/summary", h.Summary)
		r.Get("/payment-methods", h.PaymentMethods)
		r.Get("/daily-revenue", h.DailyRevenue)
		r.Get("/daily-revenue-by-method", h.DailyRevenueByMethod)
		r.Get("/top-sellers", h.TopSellers)
		r.Get("/sales-by-day", h.SalesOnDate)
		r.Get("/stock", h.StockLevels)
		r.Get("/card-payments", h.CardPayments)
		r.Get("/dashboard", h.Dashboard)

		r.Get("/export.xlsx", h.ExportWorkbook)
		r.Get("/stock.csv", h.ExportStock)
		r.Get("/card-payments.csv", h.ExportCardPayments)
	})
}

func (h *ReportHandler) Summary(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, h.reports.Summary(r.Context()))
}

func (h *ReportHandler) PaymentMethods(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, h.reports.PaymentMethods(r.Context()))
}

func (h *ReportHandler) DailyRevenue(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, h.reports.DailyRevenue(r.Context()))
}

func (h *ReportHandler) DailyRevenueByMethod(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, h.reports.DailyRevenueByMethod(r.Context()))
}

func (h *ReportHandler) TopSellers(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, h.reports.TopSellers(r.Context()))
}

// SalesOnDate lists product quantities sold on ?date=YYYY-MM-DD, today by default
func (h *ReportHandler) SalesOnDate(w http.ResponseWriter, r *http.Request) {
	day := time.Now()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.ParseInLocation(domain.DateLayout, raw, time.Local)
		if err != nil {
			middleware.RespondWithDomainError(w, h.logger, domain.NewValidationError("date", "must be formatted as YYYY-MM-DD"))
			return
		}
		day = parsed
	}
	middleware.RespondWithJSON(w, http.StatusOK, h.reports.SalesOnDate(r.Context(), day))
}

func (h *ReportHandler) StockLevels(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, h.reports.StockLevels(r.Context()))
}

func (h *ReportHandler) CardPayments(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, h.reports.CardPayments(r.Context()))
}

func (h *ReportHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, h.reports.Dashboard(r.Context()))
}

func attachment(w http.ResponseWriter, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
}

// ExportWorkbook downloads every report as one spreadsheet
func (h *ReportHandler) ExportWorkbook(w http.ResponseWriter, r *http.Request) {
	dashboard := h.reports.Dashboard(r.Context())

	attachment(w, xlsxContentType, "relatorio.xlsx")
	if err := export.WriteWorkbook(w, dashboard); err != nil {
		h.logger.Error("Failed to write workbook", zap.Error(err))
	}
}

// ExportStock downloads the stock levels as CSV
func (h *ReportHandler) ExportStock(w http.ResponseWriter, r *http.Request) {
	levels := h.reports.StockLevels(r.Context())

	attachment(w, "text/csv; charset=utf-8", "estoque.csv")
	if err := export.WriteStockCSV(w, levels); err != nil {
		h.logger.Error("Failed to write stock CSV", zap.Error(err))
	}
}

// ExportCardPayments downloads the card payments as CSV
func (h *ReportHandler) ExportCardPayments(w http.ResponseWriter, r *http.Request) {
	payments := h.reports.CardPayments(r.Context())

	attachment(w, "text/csv; charset=utf-8", "cartoes.csv")
	if err := export.WriteCardPaymentsCSV(w, payments); err != nil {
		h.logger.Error("Failed to write card payments CSV", zap.Error(err))
	}
}
