package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/savourfood/savourpos/internal/middleware"
	"github.com/savourfood/savourpos/internal/models"
	"github.com/savourfood/savourpos/internal/storage"
	"github.com/shopspring/decimal"
	"go.uber.org/zap/zapcore"
)

// registerHeader names the cash register a cart belongs to. Single-register
// deployments never set it and share the default cart.
const (
	registerHeader  = "X-Register-ID"
	defaultRegister = "main"

	defaultOrderLimit = 50
)

// Storage interface for the POS operations
type Storage interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id int64) (models.Product, error)
	CreateProduct(ctx context.Context, p models.Product) (models.Product, error)
	UpdateProduct(ctx context.Context, p models.Product) (models.Product, error)
	DeleteProduct(ctx context.Context, id int64) error

	GetCart(ctx context.Context, ownerID string) (models.Cart, error)
	AddToCart(ctx context.Context, ownerID string, productID int64) (models.Cart, error)
	UpdateCart(ctx context.Context, ownerID string, edits map[int64]models.CartEdit) (models.Cart, error)
	ClearCart(ctx context.Context, ownerID string) error
	Checkout(ctx context.Context, ownerID string, in models.CheckoutInput) (models.Order, error)

	ListOrders(ctx context.Context, limit int) ([]models.Order, error)
	DeleteOrder(ctx context.Context, id int64) error

	DailyReport(ctx context.Context, date time.Time) (models.DailyReport, error)
	SalesSummary(ctx context.Context, year, month int) (models.SalesSummary, error)

	ListExpenses(ctx context.Context) ([]models.Expense, error)
	AddExpense(ctx context.Context, name string, amount decimal.Decimal) (models.Expense, error)

	Ping(ctx context.Context) bool
}

// Log interface for logging
type Log interface {
	Info(string, ...zapcore.Field)
}

// BaseController struct for handling requests
type BaseController struct {
	storage Storage
	log     Log
}

// NewBaseController creates a new BaseController instance
func NewBaseController(storage Storage, log Log) *BaseController {
	return &BaseController{
		storage: storage,
		log:     log,
	}
}

// Route sets up the routes for the BaseController
func (h *BaseController) Route() *chi.Mux {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(middleware.CompressResponseMiddleware)

		r.Get("/api/v1/products", h.listProducts)
		r.Get("/api/v1/products/{id}", h.getProduct)
		r.Get("/api/v1/cart", h.getCart)
		r.Get("/api/v1/orders", h.listOrders)
		r.Get("/api/v1/reports/daily", h.dailyReport)
		r.Get("/api/v1/reports/summary", h.salesSummary)
		r.Get("/api/v1/expenses", h.listExpenses)
	})

	r.Group(func(r chi.Router) {
		r.Post("/api/v1/products", h.createProduct)
		r.Put("/api/v1/products/{id}", h.updateProduct)
		r.Delete("/api/v1/products/{id}", h.deleteProduct)
		r.Post("/api/v1/cart/items/{productID}", h.addToCart)
		r.Patch("/api/v1/cart", h.updateCart)
		r.Delete("/api/v1/cart", h.clearCart)
		r.Post("/api/v1/checkout", h.checkout)
		r.Delete("/api/v1/orders/{id}", h.deleteOrder)
		r.Post("/api/v1/expenses", h.addExpense)
	})

	r.Get("/ping", h.ping)

	return r
}

// Catalog

type productPayload struct {
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	Description string          `json:"description"`
}

func (h *BaseController) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.storage.ListProducts(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *BaseController) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	product, err := h.storage.GetProduct(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *BaseController) createProduct(w http.ResponseWriter, r *http.Request) {
	var payload productPayload
	if !decodeJSON(w, r, &payload) {
		return
	}

	product, err := h.storage.CreateProduct(r.Context(), models.Product{
		Name:        payload.Name,
		Price:       payload.Price,
		Image:       payload.Image,
		Description: payload.Description,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

func (h *BaseController) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var payload productPayload
	if !decodeJSON(w, r, &payload) {
		return
	}

	product, err := h.storage.UpdateProduct(r.Context(), models.Product{
		ID:          id,
		Name:        payload.Name,
		Price:       payload.Price,
		Image:       payload.Image,
		Description: payload.Description,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *BaseController) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.storage.DeleteProduct(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Cart

type cartUpdatePayload struct {
	Edits map[int64]models.CartEdit `json:"edits"`
}

func (h *BaseController) getCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.storage.GetCart(r.Context(), registerID(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

func (h *BaseController) addToCart(w http.ResponseWriter, r *http.Request) {
	productID, ok := pathID(w, r, "productID")
	if !ok {
		return
	}

	cart, err := h.storage.AddToCart(r.Context(), registerID(r), productID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

func (h *BaseController) updateCart(w http.ResponseWriter, r *http.Request) {
	var payload cartUpdatePayload
	if !decodeJSON(w, r, &payload) {
		return
	}

	cart, err := h.storage.UpdateCart(r.Context(), registerID(r), payload.Edits)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cart)
}

func (h *BaseController) clearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.storage.ClearCart(r.Context(), registerID(r)); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *BaseController) checkout(w http.ResponseWriter, r *http.Request) {
	var payload models.CheckoutInput
	if r.ContentLength > 0 {
		if !decodeJSON(w, r, &payload) {
			return
		}
	}

	order, err := h.storage.Checkout(r.Context(), registerID(r), payload)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

// Orders

func (h *BaseController) listOrders(w http.ResponseWriter, r *http.Request) {
	limit := defaultOrderLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeErrorJSON(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	orders, err := h.storage.ListOrders(r.Context(), limit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *BaseController) deleteOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.storage.DeleteOrder(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Reports

func (h *BaseController) dailyReport(w http.ResponseWriter, r *http.Request) {
	date := time.Now().UTC()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeErrorJSON(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
			return
		}
		date = parsed
	}

	report, err := h.storage.DailyReport(r.Context(), date)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *BaseController) salesSummary(w http.ResponseWriter, r *http.Request) {
	now := time.Now().UTC()
	year, month := now.Year(), int(now.Month())

	if raw := r.URL.Query().Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeErrorJSON(w, http.StatusBadRequest, "invalid year")
			return
		}
		year = parsed
	}
	if raw := r.URL.Query().Get("month"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeErrorJSON(w, http.StatusBadRequest, "invalid month")
			return
		}
		month = parsed
	}

	summary, err := h.storage.SalesSummary(r.Context(), year, month)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// Expenses

type expensePayload struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

func (h *BaseController) listExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.storage.ListExpenses(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, expenses)
}

func (h *BaseController) addExpense(w http.ResponseWriter, r *http.Request) {
	var payload expensePayload
	if !decodeJSON(w, r, &payload) {
		return
	}

	expense, err := h.storage.AddExpense(r.Context(), payload.Name, payload.Amount)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, expense)
}

func (h *BaseController) ping(w http.ResponseWriter, r *http.Request) {
	if !h.storage.Ping(r.Context()) {
		writeErrorJSON(w, http.StatusInternalServerError, "database unreachable")
		return
	}
	w.WriteHeader(http.StatusOK)
}

// helpers

func registerID(r *http.Request) string {
	if id := r.Header.Get(registerHeader); id != "" {
		return id
	}
	return defaultRegister
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id < 1 {
		writeErrorJSON(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeErrorJSON(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (h *BaseController) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeErrorJSON(w, http.StatusNotFound, err.Error())
	case errors.Is(err, storage.ErrEmptyCart), errors.Is(err, storage.ErrInvalidInput):
		writeErrorJSON(w, http.StatusBadRequest, err.Error())
	default:
		writeErrorJSON(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorJSON(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
