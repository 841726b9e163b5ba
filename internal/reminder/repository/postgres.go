package repository

import (
	"context"

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

func (r *PGRepository) Create(ctx context.Context, rem *model.Reminder) error {
	query := `
        INSERT INTO reminders (id, product_id, email, created_at)
        VALUES (:id, :product_id, :email, :created_at)
    `
	_, err := sqlx.NamedExecContext(ctx, postgres.Conn(ctx, r.DB), query, rem)
	return err
}

func (r *PGRepository) Exists(ctx context.Context, productID, email string) (bool, error) {
	var exists bool
	err := sqlx.GetContext(ctx, postgres.Conn(ctx, r.DB), &exists,
		`SELECT EXISTS(SELECT 1 FROM reminders WHERE product_id = $1 AND email = $2)`, productID, email)
	return exists, err
}

func (r *PGRepository) FindByProduct(ctx context.Context, productID string) ([]model.Reminder, error) {
	var items []model.Reminder
	err := sqlx.SelectContext(ctx, postgres.Conn(ctx, r.DB), &items,
		`SELECT * FROM reminders WHERE product_id = $1 ORDER BY created_at`, productID)
	return items, err
}

func (r *PGRepository) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM reminders WHERE id IN (?)`, ids)
	if err != nil {
		return err
	}
	_, err = postgres.Conn(ctx, r.DB).ExecContext(ctx, r.DB.Rebind(query), args...)
	return err
}
