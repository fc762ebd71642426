package services

import (
	"context"
	"log/slog"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/log"
)

// ExpenseStore is the slice of the record store the expense service needs.
type ExpenseStore interface {
	CreateExpense(ctx context.Context, e core.ExpenseRecord) (core.ExpenseRecord, error)
	GetExpense(ctx context.Context, userID, id string) (core.ExpenseRecord, error)
	ListExpenses(ctx context.Context, userID string) ([]core.ExpenseRecord, error)
	UpdateExpense(ctx context.Context, e core.ExpenseRecord) (core.ExpenseRecord, error)
	DeleteExpense(ctx context.Context, userID, id string) error
}

// ExpenseService fronts the expense store with a cache-aside collection
// listing. Every mutation invalidates the user's cached collection and the
// derived artifacts built from it before returning.
type ExpenseService struct {
	store ExpenseStore
	cache cache.Store
}

func NewExpenseService(store ExpenseStore, c cache.Store) *ExpenseService {
	return &ExpenseService{store: store, cache: c}
}

func (s *ExpenseService) Create(ctx context.Context, e core.ExpenseRecord) (core.ExpenseRecord, error) {
	if err := e.Validate(); err != nil {
		return core.ExpenseRecord{}, err
	}

	created, err := s.store.CreateExpense(ctx, e)
	if err != nil {
		return core.ExpenseRecord{}, err
	}
	s.invalidateUser(ctx, created.UserID)

	slog.InfoContext(ctx, "Expense created",
		log.FieldUserID, created.UserID,
		"expense_id", created.ID,
		"amount", created.Amount,
	)
	return created, nil
}

func (s *ExpenseService) Get(ctx context.Context, userID, id string) (core.ExpenseRecord, error) {
	return s.store.GetExpense(ctx, userID, id)
}

func (s *ExpenseService) List(ctx context.Context, userID string) ([]core.ExpenseRecord, error) {
	if userID == "" {
		return nil, core.ErrMissingUser
	}
	return cacheAside(ctx, s.cache, expensesKey(userID), collectionTTL, func(ctx context.Context) ([]core.ExpenseRecord, error) {
		return s.store.ListExpenses(ctx, userID)
	})
}

func (s *ExpenseService) Update(ctx context.Context, e core.ExpenseRecord) (core.ExpenseRecord, error) {
	if err := e.Validate(); err != nil {
		return core.ExpenseRecord{}, err
	}

	updated, err := s.store.UpdateExpense(ctx, e)
	if err != nil {
		return core.ExpenseRecord{}, err
	}
	s.invalidateUser(ctx, updated.UserID)
	return updated, nil
}

func (s *ExpenseService) Delete(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteExpense(ctx, userID, id); err != nil {
		return err
	}
	s.invalidateUser(ctx, userID)
	return nil
}

// invalidateUser clears the cached expense collection and every derived
// artifact whose input set an expense mutation changes. Per-period report keys
// are left to their TTL; only the user-scoped analytics keys are cleared
// eagerly.
func (s *ExpenseService) invalidateUser(ctx context.Context, userID string) {
	invalidate(ctx, s.cache,
		expensesKey(userID),
		budgetsKey(userID),
		spendingInsightsKey(userID),
		budgetAnalysisKey(userID),
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
