package services

import (
	"context"
	"log/slog"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/log"
)

// CategoryStore is the slice of the record store the category service needs.
type CategoryStore interface {
	CreateCategory(ctx context.Context, c core.Category) (core.Category, error)
	GetCategory(ctx context.Context, userID, id string) (core.Category, error)
	ListCategories(ctx context.Context, userID string) ([]core.Category, error)
	CategoryNameExists(ctx context.Context, userID, name string) (bool, error)
	UpdateCategory(ctx context.Context, c core.Category) (core.Category, error)
	DeleteCategory(ctx context.Context, userID, id string) error
}

// CategoryService manages user categories on top of the shared defaults.
// Defaults are global, immutable and undeletable; user categories are unique
// by (name, user).
type CategoryService struct {
	store CategoryStore
	cache cache.Store
}

func NewCategoryService(store CategoryStore, c cache.Store) *CategoryService {
	return &CategoryService{store: store, cache: c}
}

func (s *CategoryService) Create(ctx context.Context, c core.Category) (core.Category, error) {
	c.IsDefault = false
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}

	exists, err := s.store.CategoryNameExists(ctx, c.UserID, c.Name)
	if err != nil {
		return core.Category{}, err
	}
	if exists {
		return core.Category{}, core.ErrCategoryExists
	}

	created, err := s.store.CreateCategory(ctx, c)
	if err != nil {
		return core.Category{}, err
	}
	invalidate(ctx, s.cache, categoriesKey(created.UserID))

	slog.InfoContext(ctx, "Category created",
		log.FieldUserID, created.UserID,
		"category_id", created.ID,
		"category_name", created.Name,
	)
	return created, nil
}

func (s *CategoryService) Get(ctx context.Context, userID, id string) (core.Category, error) {
	return s.store.GetCategory(ctx, userID, id)
}

// List returns the shared defaults plus the user's own categories.
func (s *CategoryService) List(ctx context.Context, userID string) ([]core.Category, error) {
	if userID == "" {
		return nil, core.ErrMissingUser
	}
	return cacheAside(ctx, s.cache, categoriesKey(userID), collectionTTL, func(ctx context.Context) ([]core.Category, error) {
		return s.store.ListCategories(ctx, userID)
	})
}

func (s *CategoryService) Update(ctx context.Context, c core.Category) (core.Category, error) {
	existing, err := s.store.GetCategory(ctx, c.UserID, c.ID)
	if err != nil {
		return core.Category{}, err
	}
	if existing.IsDefault {
		return core.Category{}, core.ErrDefaultCategory
	}
	c.IsDefault = false
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}

	updated, err := s.store.UpdateCategory(ctx, c)
	if err != nil {
		return core.Category{}, err
	}
	invalidate(ctx, s.cache, categoriesKey(updated.UserID))
	return updated, nil
}

func (s *CategoryService) Delete(ctx context.Context, userID, id string) error {
	existing, err := s.store.GetCategory(ctx, userID, id)
	if err != nil {
		return err
	}
	if existing.IsDefault {
		return core.ErrDefaultCategory
	}

	if err := s.store.DeleteCategory(ctx, userID, id); err != nil {
		return err
	}
	invalidate(ctx, s.cache, categoriesKey(userID))
	return nil
}
