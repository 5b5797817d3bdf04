package dbkeeper

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/savourfood/savourpos/internal/models"
	"github.com/savourfood/savourpos/internal/storage"
)

func (kp *DBKeeper) GetProducts(ctx context.Context) ([]models.Product, error) {
	query := `
		SELECT id, name, price, COALESCE(image, ''), COALESCE(description, ''), created_at
		FROM products
		ORDER BY name
	`

	rows, err := kp.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pool.Query: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.Image, &p.Description, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("rows.Scan: %w", err)
		}
		products = append(products, p)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("rows iteration: %w", rows.Err())
	}

	return products, nil
}

func (kp *DBKeeper) GetProduct(ctx context.Context, id int64) (models.Product, error) {
	query := `
		SELECT id, name, price, COALESCE(image, ''), COALESCE(description, ''), created_at
		FROM products
		WHERE id = $1
	`

	var p models.Product
	err := kp.pool.QueryRow(ctx, query, id).
		Scan(&p.ID, &p.Name, &p.Price, &p.Image, &p.Description, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Product{}, fmt.Errorf("product %d: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return models.Product{}, fmt.Errorf("pool.QueryRow: %w", err)
	}

	return p, nil
}

func (kp *DBKeeper) InsertProduct(ctx context.Context, p models.Product) (models.Product, error) {
	query := `
		INSERT INTO products (name, price, image, description)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := kp.pool.QueryRow(ctx, query, p.Name, p.Price, p.Image, p.Description).
		Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return models.Product{}, fmt.Errorf("pool.QueryRow: %w", err)
	}

	return p, nil
}

func (kp *DBKeeper) UpdateProduct(ctx context.Context, p models.Product) (models.Product, error) {
	query := `
		UPDATE products
		SET name = $2, price = $3, image = $4, description = $5
		WHERE id = $1
		RETURNING created_at
	`

	err := kp.pool.QueryRow(ctx, query, p.ID, p.Name, p.Price, p.Image, p.Description).
		Scan(&p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Product{}, fmt.Errorf("product %d: %w", p.ID, storage.ErrNotFound)
	}
	if err != nil {
		return models.Product{}, fmt.Errorf("pool.QueryRow: %w", err)
	}

	return p, nil
}

func (kp *DBKeeper) DeleteProduct(ctx context.Context, id int64) error {
	tag, err := kp.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pool.Exec: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("product %d: %w", id, storage.ErrNotFound)
	}

	return nil
}
