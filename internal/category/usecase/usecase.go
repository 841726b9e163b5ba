package usecase

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-storefront/internal/category"
	"github.com/fekuna/omnipos-storefront/internal/category/dto"
	"github.com/fekuna/omnipos-storefront/internal/model"
	"github.com/fekuna/omnipos-storefront/internal/pkg/database/postgres"
	"github.com/fekuna/omnipos-storefront/internal/pkg/logger"
	"github.com/fekuna/omnipos-storefront/internal/pkg/slug"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type categoryUseCase struct {
	repo      category.Repository
	txManager postgres.TxManager
	logger    logger.ZapLogger
}

func NewCategoryUseCase(repo category.Repository, txm postgres.TxManager, log logger.ZapLogger) category.UseCase {
	return &categoryUseCase{
		repo:      repo,
		txManager: txm,
		logger:    log,
	}
}

func (uc *categoryUseCase) CreateCategory(ctx context.Context, input *dto.CreateCategoryInput) (*model.Category, error) {
	if input.ParentID != nil && *input.ParentID != "" {
		parent, err := uc.repo.FindByID(ctx, *input.ParentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, category.ErrCategoryNotFound
		}
	} else {
		input.ParentID = nil
	}

	existing, err := uc.repo.FindByTitle(ctx, input.Title)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, category.ErrTitleTaken
	}

	return uc.create(ctx, input.ParentID, input.Title)
}

func (uc *categoryUseCase) create(ctx context.Context, parentID *string, title string) (*model.Category, error) {
	s, err := slug.Unique(ctx, title, uc.repo.SlugExists)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	cat := &model.Category{
		BaseModel: model.BaseModel{
			ID:        uuid.New().String(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		ParentID: parentID,
		Title:    title,
		Slug:     s,
	}

	if err := uc.repo.Create(ctx, cat); err != nil {
		return nil, err
	}
	uc.logger.Info("Category created", zap.String("category_id", cat.ID), zap.String("slug", cat.Slug))
	return cat, nil
}

func (uc *categoryUseCase) GetCategoryBySlug(ctx context.Context, slug string) (*model.Category, error) {
	cat, err := uc.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, category.ErrCategoryNotFound
	}
	return cat, nil
}

// ListCategories returns the root categories with their subtrees attached.
func (uc *categoryUseCase) ListCategories(ctx context.Context) ([]model.Category, error) {
	all, _, err := uc.repo.FindAll(ctx, &dto.CategoryFilters{})
	if err != nil {
		return nil, err
	}
	return BuildTree(all), nil
}

// DefaultCategory returns the "Unassigned" category, creating it on first use.
func (uc *categoryUseCase) DefaultCategory(ctx context.Context) (*model.Category, error) {
	cat, err := uc.repo.FindByTitle(ctx, model.UnassignedCategory)
	if err != nil {
		return nil, err
	}
	if cat != nil {
		return cat, nil
	}
	return uc.create(ctx, nil, model.UnassignedCategory)
}

func (uc *categoryUseCase) DescendantIDs(ctx context.Context, id string) ([]string, error) {
	return uc.repo.DescendantIDs(ctx, id)
}

// DeleteCategory removes a category and its subtree. Products filed anywhere
// in the subtree move to the default category.
func (uc *categoryUseCase) DeleteCategory(ctx context.Context, id string) error {
	cat, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if cat == nil {
		return category.ErrCategoryNotFound
	}
	if cat.Title == model.UnassignedCategory {
		return category.ErrDefaultCategory
	}

	var moved int64
	err = uc.txManager.WithinTx(ctx, func(ctx context.Context) error {
		def, err := uc.DefaultCategory(ctx)
		if err != nil {
			return err
		}
		ids, err := uc.repo.DescendantIDs(ctx, id)
		if err != nil {
			return err
		}
		if moved, err = uc.repo.ReassignProducts(ctx, ids, def.ID); err != nil {
			return err
		}
		return uc.repo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	uc.logger.Info("Category deleted", zap.String("category_id", id), zap.Int64("products_moved", moved))
	return nil
}

func BuildTree(flat []model.Category) []model.Category {
	children := make(map[string][]model.Category)
	var roots []model.Category
	for _, c := range flat {
		if c.ParentID == nil {
			roots = append(roots, c)
			continue
		}
		children[*c.ParentID] = append(children[*c.ParentID], c)
	}

	var attach func(c *model.Category)
	attach = func(c *model.Category) {
		c.Children = children[c.ID]
		for i := range c.Children {
			attach(&c.Children[i])
		}
	}
	for i := range roots {
		attach(&roots[i])
	}
	return roots
}
