package storage

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/savourfood/savourpos/internal/models"
	"github.com/shopspring/decimal"
)

// Reports are single-pass folds over the order and expense ledgers fetched
// for the requested range. Nothing is cached or incrementally maintained:
// every report recomputes from a fresh scan, which is fine at POS scale.

// DailyReport aggregates sales, the most-sold ranking and wastage per
// product for one calendar day (UTC).
func (s *Storage) DailyReport(ctx context.Context, date time.Time) (models.DailyReport, error) {
	from := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	orders, err := s.keeper.OrdersBetween(ctx, from, to)
	if err != nil {
		return models.DailyReport{}, fmt.Errorf("keeper.OrdersBetween: %w", err)
	}

	return models.DailyReport{
		Date:       from.Format("2006-01-02"),
		Currency:   s.currency.String(),
		TotalSales: sumOrderTotals(orders),
		MostSold:   mostSold(orders),
		Wastage:    wastageByProduct(orders),
	}, nil
}

// SalesSummary reports sales for the given month together with the total of
// expenses recorded in it. DailySales covers today when today falls in the
// requested month, and is zero otherwise.
func (s *Storage) SalesSummary(ctx context.Context, year, month int) (models.SalesSummary, error) {
	if month < 1 || month > 12 {
		return models.SalesSummary{}, fmt.Errorf("%w: month must be between 1 and 12", ErrInvalidInput)
	}

	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	orders, err := s.keeper.OrdersBetween(ctx, from, to)
	if err != nil {
		return models.SalesSummary{}, fmt.Errorf("keeper.OrdersBetween: %w", err)
	}

	expenses, err := s.keeper.ExpensesBetween(ctx, from, to)
	if err != nil {
		return models.SalesSummary{}, fmt.Errorf("keeper.ExpensesBetween: %w", err)
	}

	daily := decimal.Zero
	today := s.now().UTC()
	if !today.Before(from) && today.Before(to) {
		day := today.Format("2006-01-02")
		for _, o := range orders {
			if o.CreatedAt.UTC().Format("2006-01-02") == day {
				daily = daily.Add(o.Total)
			}
		}
	}

	return models.SalesSummary{
		Year:          year,
		Month:         month,
		Currency:      s.currency.String(),
		DailySales:    daily,
		MonthlySales:  sumOrderTotals(orders),
		TotalExpenses: sumExpenses(expenses),
	}, nil
}

func sumOrderTotals(orders []models.Order) decimal.Decimal {
	total := decimal.Zero
	for _, o := range orders {
		total = total.Add(o.Total)
	}
	return total
}

func sumExpenses(expenses []models.Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return total
}

// mostSold groups order items by product name and sums quantities,
// descending. Ties are broken by name ascending so the ranking is
// reproducible across runs.
func mostSold(orders []models.Order) []models.ProductSales {
	sold := make(map[string]int64)
	for _, o := range orders {
		for _, item := range o.Items {
			sold[item.ProductName] += int64(item.Quantity)
		}
	}

	ranking := make([]models.ProductSales, 0, len(sold))
	for name, qty := range sold {
		ranking = append(ranking, models.ProductSales{ProductName: name, Quantity: qty})
	}
	sort.Slice(ranking, func(i, j int) bool {
		if ranking[i].Quantity != ranking[j].Quantity {
			return ranking[i].Quantity > ranking[j].Quantity
		}
		return ranking[i].ProductName < ranking[j].ProductName
	})

	return ranking
}

func wastageByProduct(orders []models.Order) map[string]int64 {
	wastage := make(map[string]int64)
	for _, o := range orders {
		for _, item := range o.Items {
			if item.Wastage > 0 {
				wastage[item.ProductName] += int64(item.Wastage)
			}
		}
	}
	return wastage
}
