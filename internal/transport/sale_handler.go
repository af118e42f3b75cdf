package transport

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"graca-pdv/internal/domain"
	"graca-pdv/internal/middleware"
	"graca-pdv/internal/receipt"
	"graca-pdv/internal/service"
)

// WhatsAppResponse carries the deep link that shares a receipt
type WhatsAppResponse struct {
	URL string `json:"url"`
}

// SavedReceiptResponse is where a receipt file was written
type SavedReceiptResponse struct {
	Path string `json:"path"`
}

// SaleHandler handles HTTP requests for recorded sales
type SaleHandler struct {
	sales      service.SalesService
	receiptDir string
	logger     *zap.Logger
}

// NewSaleHandler creates a new SaleHandler. Receipts saved through the API
// are written into receiptDir.
func NewSaleHandler(sales service.SalesService, receiptDir string, logger *zap.Logger) *SaleHandler {
	return &SaleHandler{
		sales:      sales,
		receiptDir: receiptDir,
		logger:     logger,
	}
}

// RegisterRoutes registers all sale routes
func (h *SaleHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/sales/{id}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Get("/receipt", h.Receipt)
		r.Post("/receipt/file", h.SaveReceipt)
		r.Get("/receipt/whatsapp", h.WhatsApp)
	})
}

func saleID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError("id", "must be a positive sale number")
	}
	return id, nil
}

// Get returns the sale with its items and card detail
func (h *SaleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := saleID(r)
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	sale, err := h.sales.Get(r.Context(), id)
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, sale)
}

// Receipt returns the receipt as plain text
func (h *SaleHandler) Receipt(w http.ResponseWriter, r *http.Request) {
	id, err := saleID(r)
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	text, err := h.sales.Receipt(r.Context(), id)
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `inline; filename="`+receipt.FileName(id)+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(text))
}

// WhatsApp returns a wa.me link prefilled with the receipt for ?phone=
func (h *SaleHandler) WhatsApp(w http.ResponseWriter, r *http.Request) {
	id, err := saleID(r)
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	text, err := h.sales.Receipt(r.Context(), id)
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	link, err := receipt.WhatsAppURL(r.URL.Query().Get("phone"), text)
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, WhatsAppResponse{URL: link})
}

// SaveReceipt writes the receipt into the configured receipt directory
func (h *SaleHandler) SaveReceipt(w http.ResponseWriter, r *http.Request) {
	id, err := saleID(r)
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	text, err := h.sales.Receipt(r.Context(), id)
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	path, err := receipt.SaveText(h.receiptDir, id, text)
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	h.logger.Info("Receipt saved", zap.Int64("sale_id", id), zap.String("path", path))
	middleware.RespondWithJSON(w, http.StatusCreated, SavedReceiptResponse{Path: path})
}
