package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"fintrack/internal/cache"
	"fintrack/internal/core"
)

// fakeCategoryStore holds defaults plus user categories.
type fakeCategoryStore struct {
	categories []core.Category
	nextID     int
}

func (f *fakeCategoryStore) CreateCategory(_ context.Context, c core.Category) (core.Category, error) {
	f.nextID++
	c.ID = string(rune('a' + f.nextID))
	f.categories = append(f.categories, c)
	return c, nil
}

func (f *fakeCategoryStore) GetCategory(_ context.Context, userID, id string) (core.Category, error) {
	for _, c := range f.categories {
		if c.ID == id && (c.IsDefault || c.UserID == userID) {
			return c, nil
		}
	}
	return core.Category{}, core.ErrNotFound
}

func (f *fakeCategoryStore) ListCategories(_ context.Context, userID string) ([]core.Category, error) {
	out := []core.Category{}
	for _, c := range f.categories {
		if c.IsDefault || c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCategoryStore) CategoryNameExists(_ context.Context, userID, name string) (bool, error) {
	for _, c := range f.categories {
		if strings.EqualFold(c.Name, name) && (c.IsDefault || c.UserID == userID) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeCategoryStore) UpdateCategory(_ context.Context, c core.Category) (core.Category, error) {
	for i, existing := range f.categories {
		if existing.ID == c.ID && existing.UserID == c.UserID && !existing.IsDefault {
			f.categories[i] = c
			return c, nil
		}
	}
	return core.Category{}, core.ErrNotFound
}

func (f *fakeCategoryStore) DeleteCategory(_ context.Context, userID, id string) error {
	for i, c := range f.categories {
		if c.ID == id && c.UserID == userID && !c.IsDefault {
			f.categories = append(f.categories[:i], f.categories[i+1:]...)
			return nil
		}
	}
	return core.ErrNotFound
}

func defaultCategoryStore() *fakeCategoryStore {
	return &fakeCategoryStore{categories: []core.Category{
		{ID: "cat-food", Name: "Food", Type: core.CategoryExpense, IsDefault: true},
	}}
}

func TestCategoryServiceCreate(t *testing.T) {
	svc := NewCategoryService(defaultCategoryStore(), cache.NewMemory(100))
	ctx := context.Background()

	created, err := svc.Create(ctx, core.Category{Name: "Hobby", Type: core.CategoryExpense, UserID: "u1"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.IsDefault {
		t.Error("user-created category flagged as default")
	}

	listed, err := svc.List(ctx, "u1")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(listed) != 2 {
		t.Errorf("len(List()) = %d, want defaults plus own", len(listed))
	}
}

func TestCategoryServiceDuplicateName(t *testing.T) {
	svc := NewCategoryService(defaultCategoryStore(), cache.NewMemory(100))

	_, err := svc.Create(context.Background(), core.Category{Name: "Food", Type: core.CategoryExpense, UserID: "u1"})
	if !errors.Is(err, core.ErrCategoryExists) {
		t.Errorf("Create() error = %v, want ErrCategoryExists", err)
	}
}

func TestCategoryServiceDefaultsImmutable(t *testing.T) {
	svc := NewCategoryService(defaultCategoryStore(), cache.NewMemory(100))
	ctx := context.Background()

	_, err := svc.Update(ctx, core.Category{ID: "cat-food", Name: "Renamed", Type: core.CategoryExpense, UserID: "u1"})
	if !errors.Is(err, core.ErrDefaultCategory) {
		t.Errorf("Update(default) error = %v, want ErrDefaultCategory", err)
	}

	if err := svc.Delete(ctx, "u1", "cat-food"); !errors.Is(err, core.ErrDefaultCategory) {
		t.Errorf("Delete(default) error = %v, want ErrDefaultCategory", err)
	}
}
