package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-storefront/internal/model"
	"github.com/fekuna/omnipos-storefront/internal/pkg/database/postgres"
	"github.com/fekuna/omnipos-storefront/internal/product/dto"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, p *model.Product) error {
	query := `
        INSERT INTO products (
            id, category_id, title, slug, description,
            price, discount, stock, image, created_at, updated_at
        )
        VALUES (
            :id, :category_id, :title, :slug, :description,
            :price, :discount, :stock, :image, :created_at, :updated_at
        )
    `
	_, err := sqlx.NamedExecContext(ctx, postgres.Conn(ctx, r.DB), query, p)
	return err
}

func (r *PGRepository) get(ctx context.Context, query string, args ...interface{}) (*model.Product, error) {
	var product model.Product
	err := sqlx.GetContext(ctx, postgres.Conn(ctx, r.DB), &product, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Product, error) {
	return r.get(ctx, `SELECT * FROM products WHERE id = $1 LIMIT 1`, id)
}

func (r *PGRepository) FindByIDForUpdate(ctx context.Context, id string) (*model.Product, error) {
	return r.get(ctx, `SELECT * FROM products WHERE id = $1 FOR UPDATE`, id)
}

func (r *PGRepository) FindBySlug(ctx context.Context, slug string) (*model.Product, error) {
	return r.get(ctx, `SELECT * FROM products WHERE slug = $1 LIMIT 1`, slug)
}

func (r *PGRepository) FindByIDs(ctx context.Context, ids []string) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}

	query, args, err := sqlx.In(`SELECT * FROM products WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}

	var products []model.Product
	err = sqlx.SelectContext(ctx, postgres.Conn(ctx, r.DB), &products, r.DB.Rebind(query), args...)
	return products, err
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.ProductFilters) ([]model.Product, int, error) {
	var products []model.Product
	var count int

	conditions := []string{}
	args := []interface{}{}

	if len(f.CategoryIDs) > 0 {
		in, inArgs, err := sqlx.In("category_id IN (?)", f.CategoryIDs)
		if err != nil {
			return nil, 0, err
		}
		conditions = append(conditions, in)
		args = append(args, inArgs...)
	}
	if f.SearchQuery != "" {
		conditions = append(conditions, "(title ILIKE ? OR description ILIKE ?)")
		pattern := "%" + f.SearchQuery + "%"
		args = append(args, pattern, pattern)
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	conn := postgres.Conn(ctx, r.DB)

	countQuery := r.DB.Rebind("SELECT count(*) FROM products" + whereClause)
	if err := sqlx.GetContext(ctx, conn, &count, countQuery, args...); err != nil {
		return nil, 0, err
	}

	query := "SELECT * FROM products" + whereClause + " ORDER BY title ASC, id ASC"
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	if err := sqlx.SelectContext(ctx, conn, &products, r.DB.Rebind(query), args...); err != nil {
		return nil, 0, err
	}

	return products, count, nil
}

// Update leaves slug untouched: it is fixed at creation.
func (r *PGRepository) Update(ctx context.Context, p *model.Product) error {
	query := `
        UPDATE products
        SET category_id = :category_id,
            title = :title,
            description = :description,
            price = :price,
            discount = :discount,
            stock = :stock,
            image = :image,
            updated_at = :updated_at
        WHERE id = :id
    `
	_, err := sqlx.NamedExecContext(ctx, postgres.Conn(ctx, r.DB), query, p)
	return err
}

func (r *PGRepository) Delete(ctx context.Context, id string) error {
	_, err := postgres.Conn(ctx, r.DB).ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	return err
}

func (r *PGRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := sqlx.GetContext(ctx, postgres.Conn(ctx, r.DB), &exists,
		`SELECT EXISTS(SELECT 1 FROM products WHERE slug = $1)`, slug)
	return exists, err
}

func (r *PGRepository) ListAttributes(ctx context.Context, productID string) ([]model.AttributeValue, error) {
	query := `
        SELECT v.id, v.product_id, v.attribute_id, a.title AS attribute, v.value
        FROM product_attribute_values v
        JOIN attributes a ON a.id = v.attribute_id
        WHERE v.product_id = $1
        ORDER BY a.title
    `
	var values []model.AttributeValue
	err := sqlx.SelectContext(ctx, postgres.Conn(ctx, r.DB), &values, query, productID)
	return values, err
}

func (r *PGRepository) SetAttribute(ctx context.Context, productID, title, value string) error {
	conn := postgres.Conn(ctx, r.DB)

	var attributeID string
	err := sqlx.GetContext(ctx, conn, &attributeID, `
        INSERT INTO attributes (id, title) VALUES ($1, $2)
        ON CONFLICT (title) DO UPDATE SET title = EXCLUDED.title
        RETURNING id
    `, uuid.New().String(), title)
	if err != nil {
		return fmt.Errorf("upsert attribute %q: %w", title, err)
	}

	_, err = conn.ExecContext(ctx, `
        INSERT INTO product_attribute_values (id, product_id, attribute_id, value)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (product_id, attribute_id) DO UPDATE SET value = EXCLUDED.value
    `, uuid.New().String(), productID, attributeID, value)
	return err
}
