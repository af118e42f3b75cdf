package transport

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"graca-pdv/internal/cart"
	"graca-pdv/internal/domain"
	"graca-pdv/internal/middleware"
	"graca-pdv/internal/notice"
	"graca-pdv/internal/service"
)

// AddItemRequest represents a product scanned into the cart
type AddItemRequest struct {
	Code     string             `json:"code" validate:"required"`
	Quantity service.NumberText `json:"quantity" validate:"required"`
}

// CheckoutRequest represents the payment collected at checkout
type CheckoutRequest struct {
	PaymentMethod  string             `json:"payment_method" validate:"required"`
	AmountTendered service.NumberText `json:"amount_tendered"`
	Card           *cart.CardInput    `json:"card"`
}

// CartResponse is the current state of one cart
type CartResponse struct {
	SessionID string            `json:"session_id"`
	Lines     []domain.CartLine `json:"lines"`
	Total     decimal.Decimal   `json:"total"`
	Empty     bool              `json:"empty"`
}

// CheckoutResponse is the recorded sale plus the notice posted for it
type CheckoutResponse struct {
	Sale   *domain.Sale  `json:"sale"`
	Notice notice.Notice `json:"notice"`
}

// SessionHandler handles HTTP requests for cart sessions. Each session gets
// its own notice board.
type SessionHandler struct {
	registry  *cart.Registry
	noticeTTL time.Duration
	logger    *zap.Logger

	mu     sync.Mutex
	boards map[string]*notice.Board
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(registry *cart.Registry, noticeTTL time.Duration, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		registry:  registry,
		noticeTTL: noticeTTL,
		logger:    logger,
		boards:    make(map[string]*notice.Board),
	}
}

// RegisterRoutes registers all cart session routes
func (h *SessionHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/sessions", func(r chi.Router) {
		r.Post("/", h.Open)
		r.Route("/{id}", func(r chi.Router) {
			r.Delete("/", h.Close)
			r.Get("/cart", h.Cart)
			r.Delete("/cart", h.Clear)
			r.Post("/cart/items", h.AddItem)
			r.Delete("/cart/items/{code}", h.RemoveItem)
			r.Post("/checkout", h.Checkout)
			r.Get("/notice", h.Notice)
		})
	})
}

func (h *SessionHandler) board(id string) *notice.Board {
	h.mu.Lock()
	defer h.mu.Unlock()

	b, ok := h.boards[id]
	if !ok {
		b = notice.NewBoard(h.noticeTTL)
		h.boards[id] = b
	}
	return b
}

func (h *SessionHandler) dropBoard(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if b, ok := h.boards[id]; ok {
		b.Stop()
		delete(h.boards, id)
	}
}

func (h *SessionHandler) session(w http.ResponseWriter, r *http.Request) (*cart.Session, bool) {
	session, err := h.registry.Get(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return nil, false
	}
	return session, true
}

func cartResponse(s *cart.Session) CartResponse {
	return CartResponse{
		SessionID: s.ID,
		Lines:     s.Lines(),
		Total:     s.Total(),
		Empty:     s.IsEmpty(),
	}
}

// Open starts a new cart session
func (h *SessionHandler) Open(w http.ResponseWriter, r *http.Request) {
	session := h.registry.Open()
	h.board(session.ID)
	middleware.RespondWithJSON(w, http.StatusCreated, cartResponse(session))
}

// Close releases the session's reservations and discards it
func (h *SessionHandler) Close(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.registry.Close(r.Context(), id); err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}
	h.dropBoard(id)
	w.WriteHeader(http.StatusNoContent)
}

// Cart returns the lines and total of the session
func (h *SessionHandler) Cart(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, cartResponse(session))
}

// AddItem reserves stock and adds it to the cart
func (h *SessionHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	var req AddItemRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	quantity, err := cart.ParseQuantity(string(req.Quantity))
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	if _, err := session.AddItem(r.Context(), req.Code, quantity); err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, cartResponse(session))
}

// RemoveItem drops a line and returns its stock
func (h *SessionHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := session.RemoveItem(r.Context(), chi.URLParam(r, "code")); err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, cartResponse(session))
}

// Clear empties the cart and returns all reserved stock
func (h *SessionHandler) Clear(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := session.Clear(r.Context()); err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, cartResponse(session))
}

// Checkout records the cart as a sale and posts a confirmation notice
func (h *SessionHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	var req CheckoutRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	payment, err := req.payment()
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	sale, err := session.Checkout(r.Context(), payment)
	if err != nil {
		middleware.RespondWithDomainError(w, h.logger, err)
		return
	}

	posted := h.board(session.ID).Post("success", checkoutMessage(sale))
	middleware.RespondWithJSON(w, http.StatusCreated, CheckoutResponse{Sale: sale, Notice: posted})
}

func (req CheckoutRequest) payment() (cart.Payment, error) {
	method, ok := domain.ParsePaymentMethod(req.PaymentMethod)
	if !ok {
		return cart.Payment{}, domain.NewValidationError("payment_method", fmt.Sprintf("unknown payment method %q", req.PaymentMethod))
	}

	payment := cart.Payment{Method: method, Card: req.Card}
	if method == domain.PaymentCash && !req.AmountTendered.IsBlank() {
		tendered, err := req.AmountTendered.Decimal()
		if err != nil {
			return cart.Payment{}, domain.NewValidationError("amount_tendered", "must be a valid number")
		}
		payment.Tendered = &tendered
	}
	return payment, nil
}

func checkoutMessage(sale *domain.Sale) string {
	msg := fmt.Sprintf("Venda #%d finalizada com sucesso!", sale.ID)
	if sale.Change.Valid {
		msg += fmt.Sprintf(" Troco: R$ %s", sale.Change.Decimal.StringFixed(2))
	}
	return msg
}

// Notice returns the session's visible notice, or 204 once it has cleared
func (h *SessionHandler) Notice(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}

	current, ok := h.board(session.ID).Current()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, current)
}

// Shutdown stops every pending notice timer
func (h *SessionHandler) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, b := range h.boards {
		b.Stop()
		delete(h.boards, id)
	}
}
