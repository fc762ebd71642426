package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/core"
)

func validExpense(userID string) core.ExpenseRecord {
	return core.ExpenseRecord{
		UserID:      userID,
		Amount:      core.Money{Cents: 2500},
		Description: "Groceries",
		CategoryID:  "cat-food",
		Date:        time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC),
	}
}

func TestExpenseServiceListCachesCollection(t *testing.T) {
	store := &fakeExpenseStore{}
	svc := NewExpenseService(store, cache.NewMemory(100))
	ctx := context.Background()

	if _, err := svc.Create(ctx, validExpense("u1")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	store.listCalls = 0

	if _, err := svc.List(ctx, "u1"); err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if _, err := svc.List(ctx, "u1"); err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if store.listCalls != 1 {
		t.Errorf("listCalls = %d, want 1 (second read served from cache)", store.listCalls)
	}
}

func TestExpenseServiceWriteThenReadIsFresh(t *testing.T) {
	store := &fakeExpenseStore{}
	svc := NewExpenseService(store, cache.NewMemory(100))
	ctx := context.Background()

	if _, err := svc.Create(ctx, validExpense("u1")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	first, err := svc.List(ctx, "u1")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("len(List()) = %d, want 1", len(first))
	}

	// A create immediately after a cached read must be visible.
	if _, err := svc.Create(ctx, validExpense("u1")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	second, err := svc.List(ctx, "u1")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(second) != 2 {
		t.Errorf("len(List()) after create = %d, want 2", len(second))
	}
}

func TestExpenseServiceValidation(t *testing.T) {
	svc := NewExpenseService(&fakeExpenseStore{}, cache.NewMemory(100))
	ctx := context.Background()

	tests := []struct {
		name    string
		mutate  func(*core.ExpenseRecord)
		wantErr error
	}{
		{"missing user", func(e *core.ExpenseRecord) { e.UserID = "" }, core.ErrMissingUser},
		{"zero amount", func(e *core.ExpenseRecord) { e.Amount = core.Money{} }, core.ErrInvalidAmount},
		{"blank description", func(e *core.ExpenseRecord) { e.Description = "   " }, core.ErrEmptyDescription},
		{"missing category", func(e *core.ExpenseRecord) { e.CategoryID = "" }, core.ErrMissingCategory},
		{"bad payment method", func(e *core.ExpenseRecord) { e.PaymentMethod = "barter" }, core.ErrInvalidPaymentMethod},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := validExpense("u1")
			tt.mutate(&e)
			_, err := svc.Create(ctx, e)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Create() error = %v, want %v", err, tt.wantErr)
			}
			if !core.IsValidation(err) {
				t.Errorf("Create() error = %v, want a validation error", err)
			}
		})
	}
}

func TestExpenseServiceDeleteMissing(t *testing.T) {
	svc := NewExpenseService(&fakeExpenseStore{}, cache.NewMemory(100))
	if err := svc.Delete(context.Background(), "u1", "nope"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Delete() error = %v, want ErrNotFound", err)
	}
}
