package services

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// TransactionStore is the slice of the record store the transaction service
// needs.
type TransactionStore interface {
	CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
	GetTransaction(ctx context.Context, userID, id string) (core.Transaction, error)
	ListTransactions(ctx context.Context, userID string, f storage.TransactionFilter) ([]core.Transaction, int, error)
	ListRecurringTransactions(ctx context.Context, userID string) ([]core.Transaction, error)
	UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, id string) error
}

// TransactionPage is a filtered listing plus its pagination envelope; it is
// what gets cached per filter variant.
type TransactionPage struct {
	Items []core.Transaction `json:"items"`
	Total int                `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

// TransactionService fronts the transaction store with versioned cache keys:
// filtered listings embed a per-user generation counter, and every write
// bumps the counter so all filter variants go stale at once.
type TransactionService struct {
	store TransactionStore
	cache cache.Store
}

func NewTransactionService(store TransactionStore, c cache.Store) *TransactionService {
	return &TransactionService{store: store, cache: c}
}

func (s *TransactionService) Create(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	created, err := s.store.CreateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, err
	}
	s.invalidateUser(ctx, created.UserID)

	slog.InfoContext(ctx, "Transaction created",
		log.FieldUserID, created.UserID,
		"transaction_id", created.ID,
		"transaction_type", created.Type,
		"amount", created.Amount,
	)
	return created, nil
}

func (s *TransactionService) Get(ctx context.Context, userID, id string) (core.Transaction, error) {
	return s.store.GetTransaction(ctx, userID, id)
}

// List returns one page of the user's transactions under the given filter.
func (s *TransactionService) List(ctx context.Context, userID string, f storage.TransactionFilter) (TransactionPage, error) {
	if userID == "" {
		return TransactionPage{}, core.ErrMissingUser
	}

	page, limit := f.Page, f.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = storage.DefaultPageSize
	}

	key := filteredTransactionsKey(userID, s.generation(ctx, userID),
		string(f.Type), string(f.Status), stampOrEmpty(f.From), stampOrEmpty(f.To), page, limit)

	return cacheAside(ctx, s.cache, key, collectionTTL, func(ctx context.Context) (TransactionPage, error) {
		items, total, err := s.store.ListTransactions(ctx, userID, f)
		if err != nil {
			return TransactionPage{}, err
		}
		return TransactionPage{Items: items, Total: total, Page: page, Limit: limit}, nil
	})
}

// ListRecurring returns the user's active recurring transactions.
func (s *TransactionService) ListRecurring(ctx context.Context, userID string) ([]core.Transaction, error) {
	if userID == "" {
		return nil, core.ErrMissingUser
	}
	return s.store.ListRecurringTransactions(ctx, userID)
}

func (s *TransactionService) Update(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	updated, err := s.store.UpdateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, err
	}
	s.invalidateUser(ctx, updated.UserID)
	return updated, nil
}

func (s *TransactionService) Delete(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteTransaction(ctx, userID, id); err != nil {
		return err
	}
	s.invalidateUser(ctx, userID)
	return nil
}

// generation reads the user's listing generation, zero when unset.
func (s *TransactionService) generation(ctx context.Context, userID string) int64 {
	raw, ok := s.cache.Get(ctx, transactionsGenKey(userID))
	if !ok {
		return 0
	}
	gen, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0
	}
	return gen
}

func (s *TransactionService) invalidateUser(ctx context.Context, userID string) {
	// Bumping the generation retires every filtered listing at once.
	gen := s.generation(ctx, userID) + 1
	s.cache.Set(ctx, transactionsGenKey(userID), strconv.FormatInt(gen, 10), 0)

	invalidate(ctx, s.cache,
		transactionsKey(userID),
		spendingInsightsKey(userID),
		savingsKey(userID),
		healthKey(userID),
		predictionsKey(userID),
	)
	now := time.Now()
	invalidate(ctx, s.cache,
		monthlyReportKey(userID, now.Year(), int(now.Month())),
		annualReportKey(userID, now.Year()),
	)
}

func stampOrEmpty(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return strconv.FormatInt(t.Unix(), 10)
}
