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

func (r *PGRepository) CreateUser(ctx context.Context, u *model.User) error {
	query := `
        INSERT INTO users (
            id, username, email, first_name, last_name,
            password_hash, is_staff, created_at, updated_at
        )
        VALUES (
            :id, :username, :email, :first_name, :last_name,
            :password_hash, :is_staff, :created_at, :updated_at
        )
    `
	_, err := sqlx.NamedExecContext(ctx, postgres.Conn(ctx, r.DB), query, u)
	return err
}

func (r *PGRepository) getUser(ctx context.Context, query string, args ...interface{}) (*model.User, error) {
	var u model.User
	if err := sqlx.GetContext(ctx, postgres.Conn(ctx, r.DB), &u, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *PGRepository) FindUserByID(ctx context.Context, id string) (*model.User, error) {
	return r.getUser(ctx, `SELECT * FROM users WHERE id = $1`, id)
}

func (r *PGRepository) FindUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.getUser(ctx, `SELECT * FROM users WHERE username = $1`, username)
}

func (r *PGRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := sqlx.GetContext(ctx, postgres.Conn(ctx, r.DB), &exists,
		`SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`, username)
	return exists, err
}

func (r *PGRepository) UpdateUser(ctx context.Context, u *model.User) error {
	query := `
        UPDATE users
        SET email = :email,
            first_name = :first_name,
            last_name = :last_name,
            updated_at = :updated_at
        WHERE id = :id
    `
	_, err := sqlx.NamedExecContext(ctx, postgres.Conn(ctx, r.DB), query, u)
	return err
}

func (r *PGRepository) CreateAddress(ctx context.Context, a *model.Address) error {
	query := `
        INSERT INTO addresses (
            id, user_id, country, city, street, postcode,
            house, apartment, created_at, updated_at
        )
        VALUES (
            :id, :user_id, :country, :city, :street, :postcode,
            :house, :apartment, :created_at, :updated_at
        )
    `
	_, err := sqlx.NamedExecContext(ctx, postgres.Conn(ctx, r.DB), query, a)
	return err
}

func (r *PGRepository) FindAddressByUser(ctx context.Context, userID string) (*model.Address, error) {
	var a model.Address
	err := sqlx.GetContext(ctx, postgres.Conn(ctx, r.DB), &a, `SELECT * FROM addresses WHERE user_id = $1`, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *PGRepository) UpdateAddress(ctx context.Context, a *model.Address) error {
	query := `
        UPDATE addresses
        SET country = :country,
            city = :city,
            street = :street,
            postcode = :postcode,
            house = :house,
            apartment = :apartment,
            updated_at = :updated_at
        WHERE id = :id
    `
	_, err := sqlx.NamedExecContext(ctx, postgres.Conn(ctx, r.DB), query, a)
	return err
}
