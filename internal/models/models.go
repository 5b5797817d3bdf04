package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a sellable menu entry. Cart and order lines copy its name and
// price when they are created, so later edits never rewrite history.
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image,omitempty"`
	Description string          `json:"description,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// CartItem is one pending line on a register's cart. ProductName and Price
// are snapshots taken at the first add.
type CartItem struct {
	ID          int64           `json:"id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int32           `json:"quantity"`
	Wastage     int32           `json:"wastage"`
	CreatedAt   time.Time       `json:"created_at"`
}

type Cart struct {
	OwnerID  string          `json:"owner_id"`
	Items    []CartItem      `json:"items"`
	Total    decimal.Decimal `json:"total"`
	Currency string          `json:"currency"`
}

// CartEdit is one entry of a batch quantity/wastage update.
type CartEdit struct {
	Quantity int32 `json:"quantity"`
	Wastage  int32 `json:"wastage"`
}

type Order struct {
	ID            int64           `json:"id"`
	Reference     uuid.UUID       `json:"reference"`
	CustomerName  string          `json:"customer_name,omitempty"`
	TableNo       string          `json:"table_no,omitempty"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	Total         decimal.Decimal `json:"total"`
	CreatedAt     time.Time       `json:"created_at"`
	Items         []OrderItem     `json:"items,omitempty"`
}

// OrderItem carries the line snapshots frozen at checkout. Price and
// ProductName must never be re-read from the products table.
type OrderItem struct {
	ID          int64           `json:"id"`
	OrderID     int64           `json:"order_id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int32           `json:"quantity"`
	Wastage     int32           `json:"wastage"`
}

// CheckoutInput carries the optional order attributes collected at the till.
type CheckoutInput struct {
	CustomerName  string `json:"customer_name"`
	TableNo       string `json:"table_no"`
	PaymentMethod string `json:"payment_method"`
}

type Expense struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
}

// ProductSales is one row of the most-sold ranking.
type ProductSales struct {
	ProductName string `json:"product_name"`
	Quantity    int64  `json:"quantity"`
}

type DailyReport struct {
	Date       string           `json:"date"`
	Currency   string           `json:"currency"`
	TotalSales decimal.Decimal  `json:"total_sales"`
	MostSold   []ProductSales   `json:"most_sold"`
	Wastage    map[string]int64 `json:"wastage"`
}

type SalesSummary struct {
	Year          int             `json:"year"`
	Month         int             `json:"month"`
	Currency      string          `json:"currency"`
	DailySales    decimal.Decimal `json:"daily_sales"`
	MonthlySales  decimal.Decimal `json:"monthly_sales"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
}
