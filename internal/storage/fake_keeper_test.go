package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/savourfood/savourpos/internal/models"
)

// fakeKeeper is an in-memory Keeper. PlaceOrder and DeleteOrder mimic the
// real keeper's transactions: they either apply fully or not at all. The
// writes counter tracks mutating calls so tests can assert that failed
// operations performed no persistence writes.
type fakeKeeper struct {
	products      map[int64]models.Product
	nextProductID int64

	carts      map[string][]models.CartItem
	nextItemID int64

	orders          []models.Order
	nextOrderID     int64
	nextOrderItemID int64

	expenses      []models.Expense
	nextExpenseID int64

	writes         int
	failPlaceOrder bool
}

func newFakeKeeper() *fakeKeeper {
	return &fakeKeeper{
		products: make(map[int64]models.Product),
		carts:    make(map[string][]models.CartItem),
	}
}

func (f *fakeKeeper) GetProducts(_ context.Context) ([]models.Product, error) {
	products := make([]models.Product, 0, len(f.products))
	for _, p := range f.products {
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].Name < products[j].Name })
	return products, nil
}

func (f *fakeKeeper) GetProduct(_ context.Context, id int64) (models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return models.Product{}, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	return p, nil
}

func (f *fakeKeeper) InsertProduct(_ context.Context, p models.Product) (models.Product, error) {
	f.writes++
	f.nextProductID++
	p.ID = f.nextProductID
	p.CreatedAt = time.Now().UTC()
	f.products[p.ID] = p
	return p, nil
}

func (f *fakeKeeper) UpdateProduct(_ context.Context, p models.Product) (models.Product, error) {
	existing, ok := f.products[p.ID]
	if !ok {
		return models.Product{}, fmt.Errorf("product %d: %w", p.ID, ErrNotFound)
	}
	f.writes++
	p.CreatedAt = existing.CreatedAt
	f.products[p.ID] = p
	return p, nil
}

func (f *fakeKeeper) DeleteProduct(_ context.Context, id int64) error {
	if _, ok := f.products[id]; !ok {
		return fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	f.writes++
	delete(f.products, id)
	return nil
}

func (f *fakeKeeper) GetCartItems(_ context.Context, ownerID string) ([]models.CartItem, error) {
	items := make([]models.CartItem, len(f.carts[ownerID]))
	copy(items, f.carts[ownerID])
	return items, nil
}

func (f *fakeKeeper) UpsertCartItem(_ context.Context, ownerID string, item models.CartItem) error {
	f.writes++
	items := f.carts[ownerID]
	for i := range items {
		if items[i].ProductID == item.ProductID {
			items[i].Quantity++
			return nil
		}
	}

	f.nextItemID++
	item.ID = f.nextItemID
	item.CreatedAt = time.Now().UTC()
	f.carts[ownerID] = append(items, item)
	return nil
}

func (f *fakeKeeper) UpdateCartItem(_ context.Context, ownerID string, itemID int64, edit models.CartEdit) (bool, error) {
	f.writes++
	items := f.carts[ownerID]
	for i := range items {
		if items[i].ID == itemID {
			items[i].Quantity = edit.Quantity
			items[i].Wastage = edit.Wastage
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeKeeper) ClearCart(_ context.Context, ownerID string) error {
	f.writes++
	delete(f.carts, ownerID)
	return nil
}

func (f *fakeKeeper) PlaceOrder(_ context.Context, ownerID string, order models.Order) (models.Order, error) {
	if f.failPlaceOrder {
		return models.Order{}, errors.New("transaction failed")
	}

	f.writes++
	f.nextOrderID++
	order.ID = f.nextOrderID
	for i := range order.Items {
		f.nextOrderItemID++
		order.Items[i].ID = f.nextOrderItemID
		order.Items[i].OrderID = order.ID
	}
	f.orders = append(f.orders, order)
	delete(f.carts, ownerID)
	return order, nil
}

func (f *fakeKeeper) GetOrders(_ context.Context, limit int) ([]models.Order, error) {
	orders := make([]models.Order, len(f.orders))
	copy(orders, f.orders)
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
	if len(orders) > limit {
		orders = orders[:limit]
	}
	return orders, nil
}

func (f *fakeKeeper) DeleteOrder(_ context.Context, id int64) error {
	for i := range f.orders {
		if f.orders[i].ID == id {
			f.writes++
			f.orders = append(f.orders[:i], f.orders[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("order %d: %w", id, ErrNotFound)
}

func (f *fakeKeeper) OrdersBetween(_ context.Context, from, to time.Time) ([]models.Order, error) {
	var orders []models.Order
	for _, o := range f.orders {
		if !o.CreatedAt.Before(from) && o.CreatedAt.Before(to) {
			orders = append(orders, o)
		}
	}
	return orders, nil
}

func (f *fakeKeeper) GetExpenses(_ context.Context) ([]models.Expense, error) {
	expenses := make([]models.Expense, len(f.expenses))
	copy(expenses, f.expenses)
	sort.Slice(expenses, func(i, j int) bool { return expenses[i].CreatedAt.After(expenses[j].CreatedAt) })
	return expenses, nil
}

func (f *fakeKeeper) InsertExpense(_ context.Context, e models.Expense) (models.Expense, error) {
	f.writes++
	f.nextExpenseID++
	e.ID = f.nextExpenseID
	f.expenses = append(f.expenses, e)
	return e, nil
}

func (f *fakeKeeper) ExpensesBetween(_ context.Context, from, to time.Time) ([]models.Expense, error) {
	var expenses []models.Expense
	for _, e := range f.expenses {
		if !e.CreatedAt.Before(from) && e.CreatedAt.Before(to) {
			expenses = append(expenses, e)
		}
	}
	return expenses, nil
}

func (f *fakeKeeper) Ping(_ context.Context) bool { return true }

var _ Keeper = (*fakeKeeper)(nil)
