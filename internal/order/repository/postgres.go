package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/fekuna/omnipos-storefront/internal/model"
	"github.com/fekuna/omnipos-storefront/internal/pkg/database/postgres"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, o *model.Order) error {
	query := `
        INSERT INTO orders (id, user_id, email, full_name, address, total, status, created_at, updated_at)
        VALUES (:id, :user_id, :email, :full_name, :address, :total, :status, :created_at, :updated_at)
    `
	_, err := sqlx.NamedExecContext(ctx, postgres.Conn(ctx, r.DB), query, o)
	return err
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Order, error) {
	var o model.Order
	err := sqlx.GetContext(ctx, postgres.Conn(ctx, r.DB), &o, `SELECT * FROM orders WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

func (r *PGRepository) FindByUser(ctx context.Context, userID string, page, pageSize int) ([]model.Order, int, error) {
	conn := postgres.Conn(ctx, r.DB)

	var count int
	if err := sqlx.GetContext(ctx, conn, &count, `SELECT count(*) FROM orders WHERE user_id = $1`, userID); err != nil {
		return nil, 0, err
	}

	var orders []model.Order
	err := sqlx.SelectContext(ctx, conn, &orders, `
        SELECT * FROM orders
        WHERE user_id = $1
        ORDER BY created_at DESC, id DESC
        LIMIT $2 OFFSET $3
    `, userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, err
	}
	return orders, count, nil
}

func (r *PGRepository) UpdateStatus(ctx context.Context, id string, status model.OrderStatus) error {
	_, err := postgres.Conn(ctx, r.DB).ExecContext(ctx,
		`UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3`, status, time.Now(), id)
	return err
}

func (r *PGRepository) AttachCartLines(ctx context.Context, cartID, orderID string) ([]model.Line, error) {
	var lines []model.Line
	err := sqlx.SelectContext(ctx, postgres.Conn(ctx, r.DB), &lines, `
        UPDATE lines SET order_id = $1, cart_id = NULL, price_changed = FALSE
        WHERE cart_id = $2
        RETURNING *
    `, orderID, cartID)
	return lines, err
}

func (r *PGRepository) SetLineFinalPrice(ctx context.Context, lineID string, price decimal.Decimal) error {
	_, err := postgres.Conn(ctx, r.DB).ExecContext(ctx,
		`UPDATE lines SET final_price = $1 WHERE id = $2`, price, lineID)
	return err
}

func (r *PGRepository) FindLines(ctx context.Context, orderIDs []string) ([]model.Line, error) {
	if len(orderIDs) == 0 {
		return []model.Line{}, nil
	}
	query, args, err := sqlx.In(`SELECT * FROM lines WHERE order_id IN (?) ORDER BY created_at, id`, orderIDs)
	if err != nil {
		return nil, err
	}
	var lines []model.Line
	err = sqlx.SelectContext(ctx, postgres.Conn(ctx, r.DB), &lines, r.DB.Rebind(query), args...)
	return lines, err
}
