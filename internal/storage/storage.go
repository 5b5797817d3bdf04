package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/savourfood/savourpos/internal/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/text/currency"
)

var (
	// ErrNotFound indicates an unknown product, order or cart item id.
	ErrNotFound = errors.New("not found")
	// ErrEmptyCart indicates a checkout attempt with no cart lines.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrInvalidInput indicates an out-of-range price, quantity or amount.
	ErrInvalidInput = errors.New("invalid input")
)

// Defaults applied when the till leaves the order attributes blank,
// matching the walk-in counter flow.
const (
	defaultCustomer = "Walk-in"
	defaultTable    = "N/A"
	defaultPayment  = "Cash"
)

type Log interface {
	Info(string, ...zap.Field)
}

// Keeper is the persistence contract the storage layer runs on.
// PlaceOrder and DeleteOrder must be atomic: either every row of the
// order lands (and the cart is cleared) or nothing changes.
type Keeper interface {
	GetProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id int64) (models.Product, error)
	InsertProduct(ctx context.Context, p models.Product) (models.Product, error)
	UpdateProduct(ctx context.Context, p models.Product) (models.Product, error)
	DeleteProduct(ctx context.Context, id int64) error

	GetCartItems(ctx context.Context, ownerID string) ([]models.CartItem, error)
	UpsertCartItem(ctx context.Context, ownerID string, item models.CartItem) error
	UpdateCartItem(ctx context.Context, ownerID string, itemID int64, edit models.CartEdit) (bool, error)
	ClearCart(ctx context.Context, ownerID string) error

	PlaceOrder(ctx context.Context, ownerID string, order models.Order) (models.Order, error)
	GetOrders(ctx context.Context, limit int) ([]models.Order, error)
	DeleteOrder(ctx context.Context, id int64) error
	OrdersBetween(ctx context.Context, from, to time.Time) ([]models.Order, error)

	GetExpenses(ctx context.Context) ([]models.Expense, error)
	InsertExpense(ctx context.Context, e models.Expense) (models.Expense, error)
	ExpensesBetween(ctx context.Context, from, to time.Time) ([]models.Expense, error)

	Ping(ctx context.Context) bool
}

// Storage implements the POS operations on top of a Keeper.
type Storage struct {
	keeper   Keeper
	currency currency.Unit
	log      Log
	now      func() time.Time
}

// NewStorage creates a new Storage instance.
func NewStorage(keeper Keeper, unit currency.Unit, log Log) *Storage {
	return &Storage{
		keeper:   keeper,
		currency: unit,
		log:      log,
		now:      time.Now,
	}
}

// Catalog

func (s *Storage) ListProducts(ctx context.Context) ([]models.Product, error) {
	products, err := s.keeper.GetProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("keeper.GetProducts: %w", err)
	}
	return products, nil
}

func (s *Storage) GetProduct(ctx context.Context, id int64) (models.Product, error) {
	product, err := s.keeper.GetProduct(ctx, id)
	if err != nil {
		return models.Product{}, fmt.Errorf("keeper.GetProduct: %w", err)
	}
	return product, nil
}

func (s *Storage) CreateProduct(ctx context.Context, p models.Product) (models.Product, error) {
	if err := validateProduct(p); err != nil {
		return models.Product{}, err
	}

	created, err := s.keeper.InsertProduct(ctx, p)
	if err != nil {
		return models.Product{}, fmt.Errorf("keeper.InsertProduct: %w", err)
	}

	s.log.Info("product created", zap.Int64("id", created.ID), zap.String("name", created.Name))
	return created, nil
}

func (s *Storage) UpdateProduct(ctx context.Context, p models.Product) (models.Product, error) {
	if err := validateProduct(p); err != nil {
		return models.Product{}, err
	}

	updated, err := s.keeper.UpdateProduct(ctx, p)
	if err != nil {
		return models.Product{}, fmt.Errorf("keeper.UpdateProduct: %w", err)
	}
	return updated, nil
}

func (s *Storage) DeleteProduct(ctx context.Context, id int64) error {
	if err := s.keeper.DeleteProduct(ctx, id); err != nil {
		return fmt.Errorf("keeper.DeleteProduct: %w", err)
	}

	s.log.Info("product deleted", zap.Int64("id", id))
	return nil
}

func validateProduct(p models.Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: product name is required", ErrInvalidInput)
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("%w: product price must not be negative", ErrInvalidInput)
	}
	return nil
}

// Cart

func (s *Storage) GetCart(ctx context.Context, ownerID string) (models.Cart, error) {
	items, err := s.keeper.GetCartItems(ctx, ownerID)
	if err != nil {
		return models.Cart{}, fmt.Errorf("keeper.GetCartItems: %w", err)
	}

	return models.Cart{
		OwnerID:  ownerID,
		Items:    items,
		Total:    cartTotal(items),
		Currency: s.currency.String(),
	}, nil
}

// AddToCart puts one unit of the product on the cart. An existing line for
// the same product grows by one and keeps the price snapshot from its first
// add; a new line snapshots the product's current name and price.
func (s *Storage) AddToCart(ctx context.Context, ownerID string, productID int64) (models.Cart, error) {
	product, err := s.keeper.GetProduct(ctx, productID)
	if err != nil {
		return models.Cart{}, fmt.Errorf("keeper.GetProduct: %w", err)
	}

	item := models.CartItem{
		ProductID:   product.ID,
		ProductName: product.Name,
		Price:       product.Price,
		Quantity:    1,
		Wastage:     0,
	}
	if err := s.keeper.UpsertCartItem(ctx, ownerID, item); err != nil {
		return models.Cart{}, fmt.Errorf("keeper.UpsertCartItem: %w", err)
	}

	return s.GetCart(ctx, ownerID)
}

// UpdateCart applies a batch of quantity/wastage edits. The whole batch is
// validated up front so a bad edit cannot half-apply. Unknown item ids are
// skipped. Wastage above quantity is allowed: spoilage can be recorded after
// the line was rung up.
func (s *Storage) UpdateCart(ctx context.Context, ownerID string, edits map[int64]models.CartEdit) (models.Cart, error) {
	for id, edit := range edits {
		if edit.Quantity < 1 {
			return models.Cart{}, fmt.Errorf("%w: quantity for item %d must be at least 1", ErrInvalidInput, id)
		}
		if edit.Wastage < 0 {
			return models.Cart{}, fmt.Errorf("%w: wastage for item %d must not be negative", ErrInvalidInput, id)
		}
	}

	for id, edit := range edits {
		if _, err := s.keeper.UpdateCartItem(ctx, ownerID, id, edit); err != nil {
			return models.Cart{}, fmt.Errorf("keeper.UpdateCartItem: %w", err)
		}
	}

	return s.GetCart(ctx, ownerID)
}

func (s *Storage) ClearCart(ctx context.Context, ownerID string) error {
	if err := s.keeper.ClearCart(ctx, ownerID); err != nil {
		return fmt.Errorf("keeper.ClearCart: %w", err)
	}
	return nil
}

// Checkout turns the current cart into a persisted order. The order row, its
// item rows and the cart clearing are a single transaction in the keeper: a
// failed checkout leaves no partial order and the cart untouched.
func (s *Storage) Checkout(ctx context.Context, ownerID string, in models.CheckoutInput) (models.Order, error) {
	items, err := s.keeper.GetCartItems(ctx, ownerID)
	if err != nil {
		return models.Order{}, fmt.Errorf("keeper.GetCartItems: %w", err)
	}
	if len(items) == 0 {
		return models.Order{}, ErrEmptyCart
	}

	order := models.Order{
		Reference:     uuid.New(),
		CustomerName:  valueOrDefault(in.CustomerName, defaultCustomer),
		TableNo:       valueOrDefault(in.TableNo, defaultTable),
		PaymentMethod: valueOrDefault(in.PaymentMethod, defaultPayment),
		Total:         cartTotal(items),
		CreatedAt:     s.now().UTC(),
	}
	for _, item := range items {
		order.Items = append(order.Items, models.OrderItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Price:       item.Price,
			Quantity:    item.Quantity,
			Wastage:     item.Wastage,
		})
	}

	placed, err := s.keeper.PlaceOrder(ctx, ownerID, order)
	if err != nil {
		return models.Order{}, fmt.Errorf("keeper.PlaceOrder: %w", err)
	}

	s.log.Info("order placed",
		zap.Int64("order_id", placed.ID),
		zap.String("reference", placed.Reference.String()),
		zap.String("total", placed.Total.String()),
		zap.Int("items", len(placed.Items)))

	return placed, nil
}

// Orders

func (s *Storage) ListOrders(ctx context.Context, limit int) ([]models.Order, error) {
	orders, err := s.keeper.GetOrders(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("keeper.GetOrders: %w", err)
	}
	return orders, nil
}

// DeleteOrder removes an order together with its items in one transaction.
func (s *Storage) DeleteOrder(ctx context.Context, id int64) error {
	if err := s.keeper.DeleteOrder(ctx, id); err != nil {
		return fmt.Errorf("keeper.DeleteOrder: %w", err)
	}

	s.log.Info("order deleted", zap.Int64("id", id))
	return nil
}

// Expenses

func (s *Storage) ListExpenses(ctx context.Context) ([]models.Expense, error) {
	expenses, err := s.keeper.GetExpenses(ctx)
	if err != nil {
		return nil, fmt.Errorf("keeper.GetExpenses: %w", err)
	}
	return expenses, nil
}

// AddExpense appends an expense row. Expenses are append-only: there is no
// update or delete.
func (s *Storage) AddExpense(ctx context.Context, name string, amount decimal.Decimal) (models.Expense, error) {
	if strings.TrimSpace(name) == "" {
		return models.Expense{}, fmt.Errorf("%w: expense name is required", ErrInvalidInput)
	}
	if !amount.IsPositive() {
		return models.Expense{}, fmt.Errorf("%w: expense amount must be positive", ErrInvalidInput)
	}

	expense, err := s.keeper.InsertExpense(ctx, models.Expense{
		Name:      name,
		Amount:    amount,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		return models.Expense{}, fmt.Errorf("keeper.InsertExpense: %w", err)
	}

	return expense, nil
}

func (s *Storage) Ping(ctx context.Context) bool {
	return s.keeper.Ping(ctx)
}

func cartTotal(items []models.CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

func valueOrDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
