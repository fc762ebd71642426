package services

import (
	"context"
	"fmt"
	"time"

	"fintrack/internal/analytics"
	"fintrack/internal/cache"
	"fintrack/internal/core"
)

// Recommendation is one advisory line in an insight document.
type Recommendation struct {
	Type     string `json:"type"`
	Message  string `json:"message"`
	Category string `json:"category,omitempty"`
}

// MonthTrend is one month's slice of a spending insight: total plus
// per-category sums, in cents.
type MonthTrend struct {
	Total      int64            `json:"total"`
	Categories map[string]int64 `json:"categories"`
}

// SpendingInsights is the cached spending pattern document. MonthlyTrends is
// keyed "year-month" (e.g. "2026-8").
type SpendingInsights struct {
	MonthlyTrends   map[string]MonthTrend     `json:"monthlyTrends"`
	TopCategories   []analytics.CategoryTotal `json:"topCategories"`
	Recommendations []Recommendation          `json:"recommendations"`
	GeneratedAt     time.Time                 `json:"generatedAt"`
}

// BudgetStatusEntry is one budget's classification inside a budget analysis.
type BudgetStatusEntry struct {
	BudgetID       string     `json:"budgetId"`
	Name           string     `json:"name"`
	Category       string     `json:"category"`
	Allocated      core.Money `json:"allocated"`
	Spent          core.Money `json:"spent"`
	Remaining      core.Money `json:"remaining"`
	PercentageUsed float64    `json:"percentageUsed"`
	Status         string     `json:"status"`
}

// BudgetAnalysis is the cached budget analysis document.
type BudgetAnalysis struct {
	OverallStatus   string              `json:"overallStatus"`
	Budgets         []BudgetStatusEntry `json:"budgets"`
	Recommendations []Recommendation    `json:"recommendations"`
	GeneratedAt     time.Time           `json:"generatedAt"`
}

// RecurringExpense is one active recurring outflow in a savings opportunity
// document.
type RecurringExpense struct {
	ID          string         `json:"id"`
	Description string         `json:"description"`
	Amount      core.Money     `json:"amount"`
	Category    string         `json:"category"`
	Frequency   core.Frequency `json:"frequency"`
}

// SavingsOpportunities is the cached savings opportunity document.
type SavingsOpportunities struct {
	RecurringExpenses []RecurringExpense `json:"recurringExpenses"`
	Recommendations   []Recommendation   `json:"recommendations"`
	GeneratedAt       time.Time          `json:"generatedAt"`
}

// BudgetViewer supplies decorated budget views for analysis.
type BudgetViewer interface {
	List(ctx context.Context, userID string) ([]core.BudgetView, error)
}

// RecurringLister supplies the user's active recurring transactions.
type RecurringLister interface {
	ListRecurringTransactions(ctx context.Context, userID string) ([]core.Transaction, error)
}

// insightWindow is the trailing span spending and health views look back over.
const insightWindow = 6

// InsightsService builds the three advisory documents: spending patterns over
// a six month trailing window, budget health classification and savings
// opportunities from recurring outflows. All three are cache-aside with a one
// hour TTL.
type InsightsService struct {
	expenses  ReportExpenseStore
	budgets   BudgetViewer
	recurring RecurringLister
	cache     cache.Store

	now func() time.Time
}

func NewInsightsService(expenses ReportExpenseStore, budgets BudgetViewer, recurring RecurringLister, c cache.Store) *InsightsService {
	return &InsightsService{
		expenses:  expenses,
		budgets:   budgets,
		recurring: recurring,
		cache:     c,
		now:       time.Now,
	}
}

// SpendingPatterns reports month-over-month spending shape with top
// categories and trend recommendations.
func (s *InsightsService) SpendingPatterns(ctx context.Context, userID string) (SpendingInsights, error) {
	if userID == "" {
		return SpendingInsights{}, core.ErrMissingUser
	}
	return cacheAside(ctx, s.cache, spendingInsightsKey(userID), insightTTL, func(ctx context.Context) (SpendingInsights, error) {
		now := s.now()
		records, err := s.expenses.ListExpensesBetween(ctx, userID, now.AddDate(0, -insightWindow, 0), now)
		if err != nil {
			return SpendingInsights{}, fmt.Errorf("%w: %w", core.ErrReportGeneration, err)
		}

		entries := expenseEntries(records)
		buckets := analytics.BucketsDescending(entries)

		insights := SpendingInsights{
			MonthlyTrends:   make(map[string]MonthTrend, len(buckets)),
			TopCategories:   analytics.TopCategories(analytics.CategoryTotals(entries), 5),
			Recommendations: []Recommendation{},
			GeneratedAt:     now,
		}
		for _, b := range buckets {
			insights.MonthlyTrends[fmt.Sprintf("%d-%d", b.Year, b.Month)] = MonthTrend{
				Total:      b.Total,
				Categories: b.Categories,
			}
		}

		// Month-over-month jump, comparing the two most recent present buckets.
		if len(buckets) >= 2 && buckets[1].Total > 0 {
			increase := float64(buckets[0].Total-buckets[1].Total) / float64(buckets[1].Total) * 100
			if increase > 20 {
				insights.Recommendations = append(insights.Recommendations, Recommendation{
					Type:    "warning",
					Message: fmt.Sprintf("Your spending increased by %.1f%% compared to last month", increase),
				})
			}
		}
		if len(insights.TopCategories) > 0 {
			top := insights.TopCategories[0]
			insights.Recommendations = append(insights.Recommendations, Recommendation{
				Type:     "info",
				Message:  fmt.Sprintf("Your highest spending category is %s (%s)", top.Category, core.Money{Cents: top.Total}),
				Category: top.Category,
			})
		}
		return insights, nil
	})
}

// BudgetHealth classifies every budget the user owns and aggregates the worst
// status.
func (s *InsightsService) BudgetHealth(ctx context.Context, userID string) (BudgetAnalysis, error) {
	if userID == "" {
		return BudgetAnalysis{}, core.ErrMissingUser
	}
	return cacheAside(ctx, s.cache, budgetAnalysisKey(userID), insightTTL, func(ctx context.Context) (BudgetAnalysis, error) {
		views, err := s.budgets.List(ctx, userID)
		if err != nil {
			return BudgetAnalysis{}, fmt.Errorf("%w: %w", core.ErrReportGeneration, err)
		}

		analysis := BudgetAnalysis{
			Budgets:         make([]BudgetStatusEntry, 0, len(views)),
			Recommendations: []Recommendation{},
			GeneratedAt:     s.now(),
		}
		statuses := make([]string, 0, len(views))
		for _, v := range views {
			status := analytics.BudgetStatus(v.PercentageUsed)
			statuses = append(statuses, status)
			analysis.Budgets = append(analysis.Budgets, BudgetStatusEntry{
				BudgetID:       v.ID,
				Name:           v.Name,
				Category:       v.CategoryID,
				Allocated:      v.Amount,
				Spent:          v.CurrentSpending,
				Remaining:      v.RemainingAmount,
				PercentageUsed: core.Round2(v.PercentageUsed),
				Status:         status,
			})

			switch {
			case v.PercentageUsed > 90:
				analysis.Recommendations = append(analysis.Recommendations, Recommendation{
					Type:     "critical",
					Message:  fmt.Sprintf("You've used %.1f%% of your %s budget", v.PercentageUsed, v.Name),
					Category: v.CategoryID,
				})
			case v.PercentageUsed < 20:
				analysis.Recommendations = append(analysis.Recommendations, Recommendation{
					Type:     "success",
					Message:  fmt.Sprintf("Great job keeping %s expenses low!", v.Name),
					Category: v.CategoryID,
				})
			}
		}
		analysis.OverallStatus = analytics.WorstStatus(statuses)
		return analysis, nil
	})
}

// SavingsOpportunities surveys active recurring expense transactions and
// flags categories holding more than one, a likely duplicate subscription.
func (s *InsightsService) SavingsOpportunities(ctx context.Context, userID string) (SavingsOpportunities, error) {
	if userID == "" {
		return SavingsOpportunities{}, core.ErrMissingUser
	}
	return cacheAside(ctx, s.cache, savingsKey(userID), insightTTL, func(ctx context.Context) (SavingsOpportunities, error) {
		recurring, err := s.recurring.ListRecurringTransactions(ctx, userID)
		if err != nil {
			return SavingsOpportunities{}, fmt.Errorf("%w: %w", core.ErrReportGeneration, err)
		}

		opps := SavingsOpportunities{
			RecurringExpenses: []RecurringExpense{},
			Recommendations:   []Recommendation{},
			GeneratedAt:       s.now(),
		}
		var total core.Money
		perCategory := make(map[string]int)
		var order []string
		for _, t := range recurring {
			if t.Type != core.Expense {
				continue
			}
			opps.RecurringExpenses = append(opps.RecurringExpenses, RecurringExpense{
				ID:          t.ID,
				Description: t.Description,
				Amount:      t.Amount,
				Category:    t.CategoryID,
				Frequency:   t.RecurringFrequency,
			})
			total = total.Add(t.Amount)
			if perCategory[t.CategoryID] == 0 {
				order = append(order, t.CategoryID)
			}
			perCategory[t.CategoryID]++
		}

		if n := len(opps.RecurringExpenses); n > 0 {
			opps.Recommendations = append(opps.Recommendations, Recommendation{
				Type:    "info",
				Message: fmt.Sprintf("You have %d recurring expenses totaling %s", n, total),
			})
		}
		for _, category := range order {
			if perCategory[category] > 1 {
				opps.Recommendations = append(opps.Recommendations, Recommendation{
					Type:     "warning",
					Message:  fmt.Sprintf("You have multiple subscriptions in %s. Consider consolidating them.", category),
					Category: category,
				})
			}
		}
		return opps, nil
	})
}
