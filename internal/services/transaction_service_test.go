package services

import (
	"context"
	"testing"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/storage"
)

func validTransaction(userID string, typ core.TransactionType) core.Transaction {
	return core.Transaction{
		UserID:      userID,
		Type:        typ,
		Amount:      core.Money{Cents: 5000},
		Description: "Paycheck",
		CategoryID:  "cat-salary",
		Date:        time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestTransactionServiceFilteredListingsCached(t *testing.T) {
	store := &fakeTransactionStore{}
	svc := NewTransactionService(store, cache.NewMemory(100))
	ctx := context.Background()

	if _, err := svc.Create(ctx, validTransaction("u1", core.Income)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	store.listCalls = 0

	filter := storage.TransactionFilter{Type: core.Income}
	if _, err := svc.List(ctx, "u1", filter); err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if _, err := svc.List(ctx, "u1", filter); err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if store.listCalls != 1 {
		t.Errorf("listCalls = %d, want 1", store.listCalls)
	}

	// A different filter is a different key.
	if _, err := svc.List(ctx, "u1", storage.TransactionFilter{Type: core.Expense}); err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if store.listCalls != 2 {
		t.Errorf("listCalls = %d, want 2 after a distinct filter", store.listCalls)
	}
}

func TestTransactionServiceWriteBumpsGeneration(t *testing.T) {
	store := &fakeTransactionStore{}
	svc := NewTransactionService(store, cache.NewMemory(100))
	ctx := context.Background()

	if _, err := svc.Create(ctx, validTransaction("u1", core.Income)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	filter := storage.TransactionFilter{Type: core.Income}
	page, err := svc.List(ctx, "u1", filter)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if page.Total != 1 {
		t.Fatalf("Total = %d, want 1", page.Total)
	}

	// The write retires every cached filter variant at once.
	if _, err := svc.Create(ctx, validTransaction("u1", core.Income)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	page, err = svc.List(ctx, "u1", filter)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if page.Total != 2 {
		t.Errorf("Total after create = %d, want 2", page.Total)
	}
}

func TestTransactionServicePageDefaults(t *testing.T) {
	store := &fakeTransactionStore{}
	svc := NewTransactionService(store, cache.NewMemory(100))
	ctx := context.Background()

	if _, err := svc.Create(ctx, validTransaction("u1", core.Expense)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	page, err := svc.List(ctx, "u1", storage.TransactionFilter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if page.Page != 1 || page.Limit != storage.DefaultPageSize {
		t.Errorf("page envelope = (%d, %d), want (1, %d)", page.Page, page.Limit, storage.DefaultPageSize)
	}
}

func TestTransactionServiceListRecurring(t *testing.T) {
	store := &fakeTransactionStore{}
	svc := NewTransactionService(store, cache.NewMemory(100))
	ctx := context.Background()

	recurring := validTransaction("u1", core.Expense)
	recurring.IsRecurring = true
	recurring.RecurringFrequency = core.Monthly
	if _, err := svc.Create(ctx, recurring); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := svc.Create(ctx, validTransaction("u1", core.Expense)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := svc.ListRecurring(ctx, "u1")
	if err != nil {
		t.Fatalf("ListRecurring() error = %v", err)
	}
	if len(got) != 1 {
		t.Errorf("len(ListRecurring()) = %d, want 1", len(got))
	}
}
