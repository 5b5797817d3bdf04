package dbkeeper

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/savourfood/savourpos/internal/models"
)

func (kp *DBKeeper) GetExpenses(ctx context.Context) ([]models.Expense, error) {
	query := `
		SELECT id, name, amount, created_at
		FROM expenses
		ORDER BY created_at DESC, id DESC
	`

	rows, err := kp.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pool.Query: %w", err)
	}

	return scanExpenses(rows)
}

func (kp *DBKeeper) InsertExpense(ctx context.Context, e models.Expense) (models.Expense, error) {
	query := `
		INSERT INTO expenses (name, amount, created_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	if err := kp.pool.QueryRow(ctx, query, e.Name, e.Amount, e.CreatedAt).Scan(&e.ID); err != nil {
		return models.Expense{}, fmt.Errorf("pool.QueryRow: %w", err)
	}

	return e, nil
}

func (kp *DBKeeper) ExpensesBetween(ctx context.Context, from, to time.Time) ([]models.Expense, error) {
	query := `
		SELECT id, name, amount, created_at
		FROM expenses
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY created_at, id
	`

	rows, err := kp.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("pool.Query: %w", err)
	}

	return scanExpenses(rows)
}

func scanExpenses(rows pgx.Rows) ([]models.Expense, error) {
	defer rows.Close()

	var expenses []models.Expense
	for rows.Next() {
		var e models.Expense
		if err := rows.Scan(&e.ID, &e.Name, &e.Amount, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("rows.Scan: %w", err)
		}
		expenses = append(expenses, e)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("rows iteration: %w", rows.Err())
	}

	return expenses, nil
}
