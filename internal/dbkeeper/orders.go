package dbkeeper

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/savourfood/savourpos/internal/models"
	"github.com/savourfood/savourpos/internal/storage"
	"go.uber.org/zap"
)

var _ storage.Keeper = (*DBKeeper)(nil)

// PlaceOrder persists the order header, its item rows and clears the owner's
// cart in a single transaction. Any failure rolls the whole checkout back so
// no partial order can remain and the cart stays intact.
func (kp *DBKeeper) PlaceOrder(ctx context.Context, ownerID string, order models.Order) (_ models.Order, err error) {
	tx, err := kp.pool.Begin(ctx)
	if err != nil {
		return models.Order{}, fmt.Errorf("pool.Begin: %w", err)
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && rollbackErr != pgx.ErrTxClosed {
				kp.log.Error("Failed to rollback transaction", zap.Error(rollbackErr))
			}
		}
	}()

	err = tx.QueryRow(ctx, `
		INSERT INTO orders (reference, customer_name, table_no, payment_method, total, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, order.Reference, order.CustomerName, order.TableNo, order.PaymentMethod,
		order.Total, order.CreatedAt).Scan(&order.ID)
	if err != nil {
		return models.Order{}, fmt.Errorf("insert order: %w", err)
	}

	stmt := `
		INSERT INTO order_items (order_id, product_id, product_name, price, quantity, wastage)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	batch := &pgx.Batch{}
	for _, item := range order.Items {
		batch.Queue(stmt, order.ID, item.ProductID, item.ProductName, item.Price, item.Quantity, item.Wastage)
	}

	br := tx.SendBatch(ctx, batch)
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
		if scanErr := br.QueryRow().Scan(&order.Items[i].ID); scanErr != nil {
			br.Close()
			err = fmt.Errorf("insert order item: %w", scanErr)
			return models.Order{}, err
		}
	}
	if closeErr := br.Close(); closeErr != nil {
		err = fmt.Errorf("close batch: %w", closeErr)
		return models.Order{}, err
	}

	if _, err = tx.Exec(ctx, `DELETE FROM cart_items WHERE owner_id = $1`, ownerID); err != nil {
		return models.Order{}, fmt.Errorf("clear cart: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return models.Order{}, fmt.Errorf("tx.Commit: %w", err)
	}

	return order, nil
}

func (kp *DBKeeper) GetOrders(ctx context.Context, limit int) ([]models.Order, error) {
	query := `
		SELECT id, reference, customer_name, table_no, payment_method, total, created_at
		FROM orders
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`

	rows, err := kp.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("pool.Query: %w", err)
	}

	orders, err := scanOrders(rows)
	if err != nil {
		return nil, err
	}

	if err := kp.attachItems(ctx, orders); err != nil {
		return nil, err
	}

	return orders, nil
}

// OrdersBetween returns orders created in [from, to) with their items, for
// the reporting folds.
func (kp *DBKeeper) OrdersBetween(ctx context.Context, from, to time.Time) ([]models.Order, error) {
	query := `
		SELECT id, reference, customer_name, table_no, payment_method, total, created_at
		FROM orders
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY created_at, id
	`

	rows, err := kp.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("pool.Query: %w", err)
	}

	orders, err := scanOrders(rows)
	if err != nil {
		return nil, err
	}

	if err := kp.attachItems(ctx, orders); err != nil {
		return nil, err
	}

	return orders, nil
}

// DeleteOrder removes the order and its items in one transaction, the
// explicit application-level cascade.
func (kp *DBKeeper) DeleteOrder(ctx context.Context, id int64) (err error) {
	tx, err := kp.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("pool.Begin: %w", err)
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && rollbackErr != pgx.ErrTxClosed {
				kp.log.Error("Failed to rollback transaction", zap.Error(rollbackErr))
			}
		}
	}()

	if _, err = tx.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, id); err != nil {
		return fmt.Errorf("delete order items: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		err = fmt.Errorf("order %d: %w", id, storage.ErrNotFound)
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("tx.Commit: %w", err)
	}

	return nil
}

func scanOrders(rows pgx.Rows) ([]models.Order, error) {
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var o models.Order
		if err := rows.Scan(&o.ID, &o.Reference, &o.CustomerName, &o.TableNo,
			&o.PaymentMethod, &o.Total, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("rows.Scan: %w", err)
		}
		orders = append(orders, o)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("rows iteration: %w", rows.Err())
	}

	return orders, nil
}

func (kp *DBKeeper) attachItems(ctx context.Context, orders []models.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(orders))
	index := make(map[int64]*models.Order, len(orders))
	for i := range orders {
		ids = append(ids, orders[i].ID)
		index[orders[i].ID] = &orders[i]
	}

	query := `
		SELECT id, order_id, product_id, product_name, price, quantity, wastage
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, id
	`

	rows, err := kp.pool.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("pool.Query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID,
			&item.ProductName, &item.Price, &item.Quantity, &item.Wastage); err != nil {
			return fmt.Errorf("rows.Scan: %w", err)
		}
		if o, ok := index[item.OrderID]; ok {
			o.Items = append(o.Items, item)
		}
	}
	if rows.Err() != nil {
		return fmt.Errorf("rows iteration: %w", rows.Err())
	}

	return nil
}
