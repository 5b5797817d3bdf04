package dbkeeper

import (
	"context"
	"fmt"

	"github.com/savourfood/savourpos/internal/models"
)

func (kp *DBKeeper) GetCartItems(ctx context.Context, ownerID string) ([]models.CartItem, error) {
	query := `
		SELECT id, product_id, product_name, price, quantity, wastage, created_at
		FROM cart_items
		WHERE owner_id = $1
		ORDER BY created_at, id
	`

	rows, err := kp.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("pool.Query: %w", err)
	}
	defer rows.Close()

	var items []models.CartItem
	for rows.Next() {
		var item models.CartItem
		if err := rows.Scan(&item.ID, &item.ProductID, &item.ProductName,
			&item.Price, &item.Quantity, &item.Wastage, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("rows.Scan: %w", err)
		}
		items = append(items, item)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("rows iteration: %w", rows.Err())
	}

	return items, nil
}

// UpsertCartItem inserts a new cart line or, when a line for the same
// product already exists, bumps its quantity by one. The conflict update
// deliberately leaves product_name and price alone so the snapshot from the
// first add survives later catalog edits.
func (kp *DBKeeper) UpsertCartItem(ctx context.Context, ownerID string, item models.CartItem) error {
	query := `
		INSERT INTO cart_items (owner_id, product_id, product_name, price, quantity, wastage)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (owner_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + 1
	`

	_, err := kp.pool.Exec(ctx, query,
		ownerID, item.ProductID, item.ProductName, item.Price, item.Quantity, item.Wastage)
	if err != nil {
		return fmt.Errorf("pool.Exec: %w", err)
	}

	return nil
}

func (kp *DBKeeper) UpdateCartItem(ctx context.Context, ownerID string, itemID int64, edit models.CartEdit) (bool, error) {
	query := `
		UPDATE cart_items
		SET quantity = $3, wastage = $4
		WHERE owner_id = $1 AND id = $2
	`

	tag, err := kp.pool.Exec(ctx, query, ownerID, itemID, edit.Quantity, edit.Wastage)
	if err != nil {
		return false, fmt.Errorf("pool.Exec: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (kp *DBKeeper) ClearCart(ctx context.Context, ownerID string) error {
	if _, err := kp.pool.Exec(ctx, `DELETE FROM cart_items WHERE owner_id = $1`, ownerID); err != nil {
		return fmt.Errorf("pool.Exec: %w", err)
	}

	return nil
}
