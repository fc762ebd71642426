package services

import (
	"context"
	"log/slog"
	"time"

	"fintrack/internal/analytics"
	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/log"
)

// BudgetStore is the slice of the record store the budget service needs.
type BudgetStore interface {
	CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error)
	GetBudget(ctx context.Context, userID, id string) (core.Budget, error)
	ListBudgets(ctx context.Context, userID string) ([]core.Budget, error)
	UpdateBudget(ctx context.Context, b core.Budget) (core.Budget, error)
	DeleteBudget(ctx context.Context, userID, id string) error
}

// BudgetSpendStore answers "how much was spent in this category over this
// window", the one query budget decoration needs.
type BudgetSpendStore interface {
	ListExpensesByCategoryBetween(ctx context.Context, userID, categoryID string, from, to time.Time) ([]core.ExpenseRecord, error)
}

// BudgetAlerter is the notification hook budget reads fire when a spend
// threshold is crossed.
type BudgetAlerter interface {
	SendBudgetAlert(ctx context.Context, userID, budgetID, category string, percentageUsed float64) error
}

// BudgetService stores budget definitions and decorates every read with spend
// attributes computed from matching expenses. Crossing an alert threshold
// during decoration fires a notification once; the threshold is then marked
// notified in the store.
type BudgetService struct {
	store    BudgetStore
	expenses BudgetSpendStore
	cache    cache.Store
	alerter  BudgetAlerter

	now func() time.Time
}

func NewBudgetService(store BudgetStore, expenses BudgetSpendStore, c cache.Store, alerter BudgetAlerter) *BudgetService {
	return &BudgetService{
		store:    store,
		expenses: expenses,
		cache:    c,
		alerter:  alerter,
		now:      time.Now,
	}
}

func (s *BudgetService) Create(ctx context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}

	created, err := s.store.CreateBudget(ctx, b)
	if err != nil {
		return core.Budget{}, err
	}
	invalidate(ctx, s.cache, budgetsKey(created.UserID), budgetAnalysisKey(created.UserID))

	slog.InfoContext(ctx, "Budget created",
		log.FieldUserID, created.UserID,
		"budget_id", created.ID,
		"amount", created.Amount,
	)
	return created, nil
}

// Get returns one budget decorated with current spending.
func (s *BudgetService) Get(ctx context.Context, userID, id string) (core.BudgetView, error) {
	b, err := s.store.GetBudget(ctx, userID, id)
	if err != nil {
		return core.BudgetView{}, err
	}
	return s.decorate(ctx, b)
}

// List returns the user's budgets decorated with current spending. The
// decorated views are what gets cached; spend attributes inside the cached
// payload go stale only until the next expense write clears the key.
func (s *BudgetService) List(ctx context.Context, userID string) ([]core.BudgetView, error) {
	if userID == "" {
		return nil, core.ErrMissingUser
	}
	return cacheAside(ctx, s.cache, budgetsKey(userID), collectionTTL, func(ctx context.Context) ([]core.BudgetView, error) {
		budgets, err := s.store.ListBudgets(ctx, userID)
		if err != nil {
			return nil, err
		}
		views := make([]core.BudgetView, 0, len(budgets))
		for _, b := range budgets {
			view, err := s.decorate(ctx, b)
			if err != nil {
				return nil, err
			}
			views = append(views, view)
		}
		return views, nil
	})
}

func (s *BudgetService) Update(ctx context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}

	updated, err := s.store.UpdateBudget(ctx, b)
	if err != nil {
		return core.Budget{}, err
	}
	invalidate(ctx, s.cache, budgetsKey(updated.UserID), budgetAnalysisKey(updated.UserID))
	return updated, nil
}

func (s *BudgetService) Delete(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteBudget(ctx, userID, id); err != nil {
		return err
	}
	invalidate(ctx, s.cache, budgetsKey(userID), budgetAnalysisKey(userID))
	return nil
}

// decorate computes the spend attributes for a budget window and fires any
// newly crossed alert thresholds.
func (s *BudgetService) decorate(ctx context.Context, b core.Budget) (core.BudgetView, error) {
	now := s.now()
	records, err := s.expenses.ListExpensesByCategoryBetween(ctx, b.UserID, b.CategoryID, b.StartDate, b.EffectiveEnd(now))
	if err != nil {
		return core.BudgetView{}, err
	}

	var spent core.Money
	for _, rec := range records {
		spent = spent.Add(rec.Amount)
	}
	pct := analytics.PercentageUsed(spent, b.Amount)

	view := core.BudgetView{
		Budget:          b,
		CurrentSpending: spent,
		RemainingAmount: b.Amount.Sub(spent),
		PercentageUsed:  pct,
	}
	s.fireThresholds(ctx, &view.Budget, pct)
	return view, nil
}

// fireThresholds sends one alert per unnotified threshold at or below the
// current usage, then persists the notified flags so repeat reads stay quiet.
func (s *BudgetService) fireThresholds(ctx context.Context, b *core.Budget, pct float64) {
	if !b.AlertsEnabled || s.alerter == nil {
		return
	}

	fired := false
	for i := range b.Thresholds {
		th := &b.Thresholds[i]
		if th.Notified || pct < th.Percentage {
			continue
		}
		if err := s.alerter.SendBudgetAlert(ctx, b.UserID, b.ID, b.CategoryID, pct); err != nil {
			slog.WarnContext(ctx, "Budget alert delivery failed",
				log.FieldUserID, b.UserID,
				"budget_id", b.ID,
				log.FieldError, err,
			)
			continue
		}
		th.Notified = true
		fired = true
	}
	if !fired {
		return
	}
	if _, err := s.store.UpdateBudget(ctx, *b); err != nil {
		slog.WarnContext(ctx, "Failed to persist threshold state",
			log.FieldUserID, b.UserID,
			"budget_id", b.ID,
			log.FieldError, err,
		)
	}
}
