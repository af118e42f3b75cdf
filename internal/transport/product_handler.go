package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"graca-pdv/internal/middleware"
	"graca-pdv/internal/service"
)

// StockAdjustmentRequest represents a manual stock correction
type StockAdjustmentRequest struct {
	Delta int `json:"delta" validate:"ne=0"`
}

// ProductHandler handles HTTP requests for catalog operations
type ProductHandler struct {
	catalog service.CatalogService
	logger  *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(catalog service.CatalogService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		catalog: catalog,
		logger:  logger,
	}
}

// RegisterRoutes registers all product routes
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Upsert)
		r.Get("/{code}", h.Get)
		r.Put("/{code}", h.Replace)
		r.Delete("/{code}", h.Delete)
		r.Post("/{code}/stock", h.AdjustStock)
	})
}

// List returns the products whose code or name contains ?q=
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products := h.catalog.List(r.Context(), r.URL.Query().Get("q"))
	middleware.RespondWithJSON(w, http.StatusOK, products)
}

// Upsert inserts or replaces the product described by the body
func (h *ProductHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	var input service.ProductInput
	if err := middleware.DecodeJSON(r, &input); err != nil {
		h.logger.Debug("Product body rejected", zap.Error(err))
		middleware.RespondWithDecodeError(w, err)
		return
	}

	h.save(w, r, input)
}

// Replace upserts the product stored under the path code
func (h *ProductHandler) Replace(w http.ResponseWriter, r *http.Request) {
	var input service.ProductInput
	if err := middleware.DecodeJSON(r, &input); err != nil {
		h.logger.Debug("Product body rejected", zap.Error(err))
		middleware.RespondWithDecodeError(w, err)
		return
	}
	input.Code = chi.URLParam(r, "code")

	h.save(w, r, input)
}

func (h *ProductHandler) save(w http.ResponseWriter, r *http.Request, input service.ProductInput) {
	product, err := h.catalog.Upsert(r.Context(), input)
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Get returns one product
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.Find(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Delete removes one product
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.Delete(r.Context(), chi.URLParam(r, "code")); err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AdjustStock applies a signed delta to the product's quantity
func (h *ProductHandler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	var req StockAdjustmentRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	if err := h.catalog.AdjustStock(r.Context(), code, req.Delta); err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	product, err := h.catalog.Find(r.Context(), code)
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	h.logger.Info("Stock adjusted", zap.String("code", code), zap.Int("delta", req.Delta))
	middleware.RespondWithJSON(w, http.StatusOK, product)
}
