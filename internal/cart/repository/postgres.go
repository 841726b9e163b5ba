package repository

import (
	"context"
	"database/sql"
	"errors"

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

func (r *PGRepository) CreateCart(ctx context.Context, c *model.Cart) error {
	query := `
        INSERT INTO carts (id, user_id, created_at, updated_at)
        VALUES (:id, :user_id, :created_at, :updated_at)
    `
	_, err := sqlx.NamedExecContext(ctx, postgres.Conn(ctx, r.DB), query, c)
	return err
}

func (r *PGRepository) getCart(ctx context.Context, query string, arg string) (*model.Cart, error) {
	var c model.Cart
	if err := sqlx.GetContext(ctx, postgres.Conn(ctx, r.DB), &c, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *PGRepository) FindCartByID(ctx context.Context, id string) (*model.Cart, error) {
	return r.getCart(ctx, `SELECT * FROM carts WHERE id = $1`, id)
}

func (r *PGRepository) FindCartByUser(ctx context.Context, userID string) (*model.Cart, error) {
	return r.getCart(ctx, `SELECT * FROM carts WHERE user_id = $1`, userID)
}

func (r *PGRepository) DeleteCart(ctx context.Context, id string) error {
	_, err := postgres.Conn(ctx, r.DB).ExecContext(ctx, `DELETE FROM carts WHERE id = $1`, id)
	return err
}

func (r *PGRepository) FindLines(ctx context.Context, cartID string) ([]model.Line, error) {
	var lines []model.Line
	err := sqlx.SelectContext(ctx, postgres.Conn(ctx, r.DB), &lines,
		`SELECT * FROM lines WHERE cart_id = $1 ORDER BY created_at, id`, cartID)
	return lines, err
}

func (r *PGRepository) FindLine(ctx context.Context, cartID, productID string) (*model.Line, error) {
	var l model.Line
	err := sqlx.GetContext(ctx, postgres.Conn(ctx, r.DB), &l,
		`SELECT * FROM lines WHERE cart_id = $1 AND product_id = $2`, cartID, productID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}

func (r *PGRepository) CreateLine(ctx context.Context, l *model.Line) error {
	query := `
        INSERT INTO lines (id, cart_id, order_id, product_id, quantity, final_price, price_changed, created_at)
        VALUES (:id, :cart_id, :order_id, :product_id, :quantity, :final_price, :price_changed, :created_at)
    `
	_, err := sqlx.NamedExecContext(ctx, postgres.Conn(ctx, r.DB), query, l)
	return err
}

func (r *PGRepository) DeleteLine(ctx context.Context, id string) error {
	_, err := postgres.Conn(ctx, r.DB).ExecContext(ctx, `DELETE FROM lines WHERE id = $1`, id)
	return err
}

func (r *PGRepository) UpdateLineQuantity(ctx context.Context, id string, quantity int) error {
	_, err := postgres.Conn(ctx, r.DB).ExecContext(ctx,
		`UPDATE lines SET quantity = $1 WHERE id = $2`, quantity, id)
	return err
}

func (r *PGRepository) MoveLines(ctx context.Context, fromCartID, toCartID string) error {
	_, err := postgres.Conn(ctx, r.DB).ExecContext(ctx,
		`UPDATE lines SET cart_id = $1 WHERE cart_id = $2`, toCartID, fromCartID)
	return err
}

func (r *PGRepository) DeleteLinesByProducts(ctx context.Context, cartID string, productIDs []string) error {
	if len(productIDs) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM lines WHERE cart_id = ? AND product_id IN (?)`, cartID, productIDs)
	if err != nil {
		return err
	}
	_, err = postgres.Conn(ctx, r.DB).ExecContext(ctx, r.DB.Rebind(query), args...)
	return err
}

func (r *PGRepository) ClearPriceChanged(ctx context.Context, cartID string) error {
	_, err := postgres.Conn(ctx, r.DB).ExecContext(ctx,
		`UPDATE lines SET price_changed = FALSE WHERE cart_id = $1`, cartID)
	return err
}

func (r *PGRepository) MarkPriceChanged(ctx context.Context, productID string) (int64, error) {
	res, err := postgres.Conn(ctx, r.DB).ExecContext(ctx,
		`UPDATE lines SET price_changed = TRUE WHERE product_id = $1 AND cart_id IS NOT NULL`, productID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
