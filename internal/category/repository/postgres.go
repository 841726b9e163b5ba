package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-storefront/internal/category/dto"
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

func (r *PGRepository) Create(ctx context.Context, c *model.Category) error {
	query := `
        INSERT INTO categories (id, parent_id, title, slug, created_at, updated_at)
        VALUES (:id, :parent_id, :title, :slug, :created_at, :updated_at)
    `
	_, err := sqlx.NamedExecContext(ctx, postgres.Conn(ctx, r.DB), query, c)
	return err
}

func (r *PGRepository) findOne(ctx context.Context, column, value string) (*model.Category, error) {
	var category model.Category
	query := fmt.Sprintf(`SELECT * FROM categories WHERE %s = $1 LIMIT 1`, column)
	err := sqlx.GetContext(ctx, postgres.Conn(ctx, r.DB), &category, query, value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &category, nil
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Category, error) {
	return r.findOne(ctx, "id", id)
}

func (r *PGRepository) FindBySlug(ctx context.Context, slug string) (*model.Category, error) {
	return r.findOne(ctx, "slug", slug)
}

func (r *PGRepository) FindByTitle(ctx context.Context, title string) (*model.Category, error) {
	return r.findOne(ctx, "title", title)
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.CategoryFilters) ([]model.Category, int, error) {
	var categories []model.Category
	var count int

	conditions := []string{}
	args := []interface{}{}

	if f.ParentID != nil {
		if *f.ParentID == "" {
			conditions = append(conditions, "parent_id IS NULL")
		} else {
			args = append(args, *f.ParentID)
			conditions = append(conditions, fmt.Sprintf("parent_id = $%d", len(args)))
		}
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	conn := postgres.Conn(ctx, r.DB)
	if err := sqlx.GetContext(ctx, conn, &count, "SELECT count(*) FROM categories"+whereClause, args...); err != nil {
		return nil, 0, err
	}

	query := "SELECT * FROM categories" + whereClause + " ORDER BY title ASC"
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	if err := sqlx.SelectContext(ctx, conn, &categories, query, args...); err != nil {
		return nil, 0, err
	}
	return categories, count, nil
}

func (r *PGRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := sqlx.GetContext(ctx, postgres.Conn(ctx, r.DB), &exists,
		`SELECT EXISTS(SELECT 1 FROM categories WHERE slug = $1)`, slug)
	return exists, err
}

func (r *PGRepository) DescendantIDs(ctx context.Context, id string) ([]string, error) {
	query := `
        WITH RECURSIVE tree AS (
            SELECT id FROM categories WHERE id = $1
            UNION ALL
            SELECT c.id FROM categories c JOIN tree t ON c.parent_id = t.id
        )
        SELECT id FROM tree
    `
	var ids []string
	err := sqlx.SelectContext(ctx, postgres.Conn(ctx, r.DB), &ids, query, id)
	return ids, err
}

func (r *PGRepository) ReassignProducts(ctx context.Context, fromIDs []string, toID string) (int64, error) {
	if len(fromIDs) == 0 {
		return 0, nil
	}
	query, args, err := sqlx.In(`UPDATE products SET category_id = ?, updated_at = NOW() WHERE category_id IN (?)`, toID, fromIDs)
	if err != nil {
		return 0, err
	}
	res, err := postgres.Conn(ctx, r.DB).ExecContext(ctx, r.DB.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Delete removes the category; subcategories go with it through the parent_id cascade.
func (r *PGRepository) Delete(ctx context.Context, id string) error {
	_, err := postgres.Conn(ctx, r.DB).ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	return err
}
