package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-storefront/internal/inventory/dto"
	"github.com/fekuna/omnipos-storefront/internal/model"
	"github.com/fekuna/omnipos-storefront/internal/pkg/database/postgres"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) LockProduct(ctx context.Context, productID string) (*model.Product, error) {
	var p model.Product
	err := sqlx.GetContext(ctx, postgres.Conn(ctx, r.DB), &p,
		`SELECT * FROM products WHERE id = $1 FOR UPDATE`, productID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *PGRepository) SetStock(ctx context.Context, productID string, stock int) error {
	_, err := postgres.Conn(ctx, r.DB).ExecContext(ctx,
		`UPDATE products SET stock = $1, updated_at = NOW() WHERE id = $2`, stock, productID)
	return err
}

func (r *PGRepository) DecrementStock(ctx context.Context, productID string, qty int) (int, bool, error) {
	var after int
	err := sqlx.GetContext(ctx, postgres.Conn(ctx, r.DB), &after, `
        UPDATE products
        SET stock = stock - $1, updated_at = NOW()
        WHERE id = $2 AND stock >= $1
        RETURNING stock
    `, qty, productID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return after, true, nil
}

func (r *PGRepository) LogMovement(ctx context.Context, m *model.InventoryMovement) error {
	query := `
        INSERT INTO inventory_movements (
            id, product_id, movement_type, quantity_change, quantity_before,
            quantity_after, reference_type, reference_id, notes, created_at
        )
        VALUES (
            :id, :product_id, :movement_type, :quantity_change, :quantity_before,
            :quantity_after, :reference_type, :reference_id, :notes, :created_at
        )
    `
	if _, err := sqlx.NamedExecContext(ctx, postgres.Conn(ctx, r.DB), query, m); err != nil {
		return fmt.Errorf("failed to log movement: %w", err)
	}
	return nil
}

func (r *PGRepository) ListMovements(ctx context.Context, f *dto.MovementFilters) ([]model.InventoryMovement, int, error) {
	var items []model.InventoryMovement
	var count int

	conditions := []string{}
	args := []interface{}{}

	if f.ProductID != "" {
		args = append(args, f.ProductID)
		conditions = append(conditions, fmt.Sprintf("product_id = $%d", len(args)))
	}
	if f.MovementType != "" {
		args = append(args, f.MovementType)
		conditions = append(conditions, fmt.Sprintf("movement_type = $%d", len(args)))
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	conn := postgres.Conn(ctx, r.DB)
	if err := sqlx.GetContext(ctx, conn, &count, "SELECT count(*) FROM inventory_movements"+whereClause, args...); err != nil {
		return nil, 0, err
	}

	query := "SELECT * FROM inventory_movements" + whereClause + " ORDER BY created_at DESC"
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	if err := sqlx.SelectContext(ctx, conn, &items, query, args...); err != nil {
		return nil, 0, err
	}
	return items, count, nil
}
