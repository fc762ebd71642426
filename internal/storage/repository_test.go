package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"fintrack/internal/core"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedTransaction(t *testing.T, repo *Repository, userID string, date time.Time) core.Transaction {
	t.Helper()
	created, err := repo.CreateTransaction(context.Background(), core.Transaction{
		UserID:      userID,
		Type:        core.Expense,
		Amount:      core.Money{Cents: 1000},
		Description: "seed " + date.Format("2006-01-02"),
		CategoryID:  "cat-food",
		Date:        date,
	})
	if err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}
	return created
}

func TestListTransactionsDateBounds(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	jan := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	jun := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)
	for _, d := range []time.Time{jan, mar, jun} {
		seedTransaction(t, repo, "u1", d)
	}

	tests := []struct {
		name      string
		filter    TransactionFilter
		wantTotal int
	}{
		{"no bounds", TransactionFilter{}, 3},
		{"from only", TransactionFilter{From: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)}, 2},
		{"to only", TransactionFilter{To: time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)}, 2},
		{"both bounds", TransactionFilter{
			From: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
			To:   time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC),
		}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, total, err := repo.ListTransactions(ctx, "u1", tt.filter)
			if err != nil {
				t.Fatalf("ListTransactions() error = %v", err)
			}
			if total != tt.wantTotal || len(items) != tt.wantTotal {
				t.Errorf("total = %d, len(items) = %d, want %d", total, len(items), tt.wantTotal)
			}
		})
	}
}

func TestListTransactionsOtherUserInvisible(t *testing.T) {
	repo := newTestRepository(t)
	seedTransaction(t, repo, "u1", time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))

	_, total, err := repo.ListTransactions(context.Background(), "u2", TransactionFilter{})
	if err != nil {
		t.Fatalf("ListTransactions() error = %v", err)
	}
	if total != 0 {
		t.Errorf("total = %d, want 0", total)
	}
}
