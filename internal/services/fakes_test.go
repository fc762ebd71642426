package services

import (
	"context"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// fakeExpenseStore keeps expense records in a slice and counts list calls so
// tests can observe cache hits and misses.
type fakeExpenseStore struct {
	records   []core.ExpenseRecord
	listCalls int
	nextID    int
}

func (f *fakeExpenseStore) CreateExpense(_ context.Context, e core.ExpenseRecord) (core.ExpenseRecord, error) {
	f.nextID++
	e.ID = string(rune('a' + f.nextID))
	f.records = append(f.records, e)
	return e, nil
}

func (f *fakeExpenseStore) GetExpense(_ context.Context, userID, id string) (core.ExpenseRecord, error) {
	for _, rec := range f.records {
		if rec.ID == id && rec.UserID == userID {
			return rec, nil
		}
	}
	return core.ExpenseRecord{}, core.ErrNotFound
}

func (f *fakeExpenseStore) ListExpenses(_ context.Context, userID string) ([]core.ExpenseRecord, error) {
	f.listCalls++
	out := []core.ExpenseRecord{}
	for _, rec := range f.records {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeExpenseStore) ListExpensesBetween(_ context.Context, userID string, from, to time.Time) ([]core.ExpenseRecord, error) {
	f.listCalls++
	out := []core.ExpenseRecord{}
	for _, rec := range f.records {
		if rec.UserID == userID && !rec.Date.Before(from) && !rec.Date.After(to) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeExpenseStore) ListExpensesByCategoryBetween(_ context.Context, userID, categoryID string, from, to time.Time) ([]core.ExpenseRecord, error) {
	out := []core.ExpenseRecord{}
	for _, rec := range f.records {
		if rec.UserID == userID && rec.CategoryID == categoryID && !rec.Date.Before(from) && !rec.Date.After(to) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeExpenseStore) UpdateExpense(_ context.Context, e core.ExpenseRecord) (core.ExpenseRecord, error) {
	for i, rec := range f.records {
		if rec.ID == e.ID && rec.UserID == e.UserID {
			f.records[i] = e
			return e, nil
		}
	}
	return core.ExpenseRecord{}, core.ErrNotFound
}

func (f *fakeExpenseStore) DeleteExpense(_ context.Context, userID, id string) error {
	for i, rec := range f.records {
		if rec.ID == id && rec.UserID == userID {
			f.records = append(f.records[:i], f.records[i+1:]...)
			return nil
		}
	}
	return core.ErrNotFound
}

// fakeTransactionStore mirrors fakeExpenseStore for transactions.
type fakeTransactionStore struct {
	items     []core.Transaction
	listCalls int
	nextID    int
}

func (f *fakeTransactionStore) CreateTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	f.nextID++
	t.ID = string(rune('a' + f.nextID))
	if t.Status == "" {
		t.Status = core.StatusActive
	}
	f.items = append(f.items, t)
	return t, nil
}

func (f *fakeTransactionStore) GetTransaction(_ context.Context, userID, id string) (core.Transaction, error) {
	for _, t := range f.items {
		if t.ID == id && t.UserID == userID {
			return t, nil
		}
	}
	return core.Transaction{}, core.ErrNotFound
}

func (f *fakeTransactionStore) ListTransactions(_ context.Context, userID string, filter storage.TransactionFilter) ([]core.Transaction, int, error) {
	f.listCalls++
	out := []core.Transaction{}
	for _, t := range f.items {
		if t.UserID != userID {
			continue
		}
		if filter.Type != "" && t.Type != filter.Type {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		out = append(out, t)
	}
	return out, len(out), nil
}

func (f *fakeTransactionStore) ListTransactionsByTypeBetween(_ context.Context, userID string, typ core.TransactionType, from, to time.Time) ([]core.Transaction, error) {
	out := []core.Transaction{}
	for _, t := range f.items {
		if t.UserID == userID && t.Type == typ && !t.Date.Before(from) && !t.Date.After(to) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTransactionStore) ListRecurringTransactions(_ context.Context, userID string) ([]core.Transaction, error) {
	out := []core.Transaction{}
	for _, t := range f.items {
		if t.UserID == userID && t.IsRecurring && t.Status == core.StatusActive {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTransactionStore) ListDueRecurring(_ context.Context, now time.Time) ([]core.Transaction, error) {
	out := []core.Transaction{}
	for _, t := range f.items {
		if t.IsRecurring && t.Status == core.StatusActive && !t.NextDueDate.IsZero() && !t.NextDueDate.After(now) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTransactionStore) UpdateTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	for i, existing := range f.items {
		if existing.ID == t.ID && existing.UserID == t.UserID {
			f.items[i] = t
			return t, nil
		}
	}
	return core.Transaction{}, core.ErrNotFound
}

func (f *fakeTransactionStore) DeleteTransaction(_ context.Context, userID, id string) error {
	for i, t := range f.items {
		if t.ID == id && t.UserID == userID {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return core.ErrNotFound
}

// fakeBudgetStore keeps budgets in a slice.
type fakeBudgetStore struct {
	budgets []core.Budget
	nextID  int
}

func (f *fakeBudgetStore) CreateBudget(_ context.Context, b core.Budget) (core.Budget, error) {
	f.nextID++
	b.ID = string(rune('a' + f.nextID))
	f.budgets = append(f.budgets, b)
	return b, nil
}

func (f *fakeBudgetStore) GetBudget(_ context.Context, userID, id string) (core.Budget, error) {
	for _, b := range f.budgets {
		if b.ID == id && b.UserID == userID {
			return b, nil
		}
	}
	return core.Budget{}, core.ErrNotFound
}

func (f *fakeBudgetStore) ListBudgets(_ context.Context, userID string) ([]core.Budget, error) {
	out := []core.Budget{}
	for _, b := range f.budgets {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBudgetStore) UpdateBudget(_ context.Context, b core.Budget) (core.Budget, error) {
	for i, existing := range f.budgets {
		if existing.ID == b.ID && existing.UserID == b.UserID {
			f.budgets[i] = b
			return b, nil
		}
	}
	return core.Budget{}, core.ErrNotFound
}

func (f *fakeBudgetStore) DeleteBudget(_ context.Context, userID, id string) error {
	for i, b := range f.budgets {
		if b.ID == id && b.UserID == userID {
			f.budgets = append(f.budgets[:i], f.budgets[i+1:]...)
			return nil
		}
	}
	return core.ErrNotFound
}

// stubEmitter records live emissions.
type stubEmitter struct {
	events []string
	failed bool
}

func (s *stubEmitter) Emit(_ context.Context, userID, event string, _ any) error {
	if s.failed {
		return context.DeadlineExceeded
	}
	s.events = append(s.events, userID+":"+event)
	return nil
}

// stubAlerter records budget alerts.
type stubAlerter struct {
	alerts []string
}

func (s *stubAlerter) SendBudgetAlert(_ context.Context, userID, budgetID, category string, _ float64) error {
	s.alerts = append(s.alerts, budgetID+":"+category)
	return nil
}

// stubReminder records payment reminders.
type stubReminder struct {
	reminders []string
	fail      bool
}

func (s *stubReminder) SendPaymentReminder(_ context.Context, userID string, t core.Transaction) error {
	if s.fail {
		return context.DeadlineExceeded
	}
	s.reminders = append(s.reminders, userID+":"+t.ID)
	return nil
}
