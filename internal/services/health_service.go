package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/analytics"
	"fintrack/internal/cache"
	"fintrack/internal/core"
)

// FinancialHealth is the cached health snapshot. Ratio metrics are
// percentages rounded to two places; the raw ratio feeds the score before
// rounding.
type FinancialHealth struct {
	Score   int `json:"score"`
	Metrics struct {
		SavingsRate           float64    `json:"savingsRate"`
		MonthlySavings        core.Money `json:"monthlySavings"`
		ExpenseToIncomeRatio  float64    `json:"expenseToIncomeRatio"`
		AverageMonthlyIncome  core.Money `json:"averageMonthlyIncome"`
		AverageMonthlyExpense core.Money `json:"averageMonthlyExpense"`
	} `json:"metrics"`
	Recommendations []Recommendation `json:"recommendations"`
	GeneratedAt     time.Time        `json:"generatedAt"`
}

// CategoryTrend labels one category's direction inside a prediction.
type CategoryTrend struct {
	Trend      string  `json:"trend"`
	Percentage float64 `json:"percentage"`
}

// PredictiveAnalysis is the cached next-month spending forecast.
type PredictiveAnalysis struct {
	NextMonth struct {
		ExpectedExpenses map[string]core.Money `json:"expectedExpenses"`
		TotalPredicted   core.Money            `json:"totalPredicted"`
	} `json:"nextMonth"`
	Trends      map[string]CategoryTrend `json:"trends"`
	Alerts      []Recommendation         `json:"alerts"`
	GeneratedAt time.Time                `json:"generatedAt"`
}

// HealthService scores overall financial health and forecasts next month's
// spending, both over a six month trailing window, cached for an hour.
type HealthService struct {
	expenses     ReportExpenseStore
	transactions ReportTransactionStore
	cache        cache.Store

	now func() time.Time
}

func NewHealthService(expenses ReportExpenseStore, transactions ReportTransactionStore, c cache.Store) *HealthService {
	return &HealthService{
		expenses:     expenses,
		transactions: transactions,
		cache:        c,
		now:          time.Now,
	}
}

// FinancialHealth computes the 0-100 health score with its backing metrics.
func (s *HealthService) FinancialHealth(ctx context.Context, userID string) (FinancialHealth, error) {
	if userID == "" {
		return FinancialHealth{}, core.ErrMissingUser
	}
	return cacheAside(ctx, s.cache, healthKey(userID), insightTTL, func(ctx context.Context) (FinancialHealth, error) {
		now := s.now()
		from := now.AddDate(0, -insightWindow, 0)

		var (
			records []core.ExpenseRecord
			income  []core.Transaction
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			records, err = s.expenses.ListExpensesBetween(gctx, userID, from, now)
			return err
		})
		g.Go(func() error {
			var err error
			income, err = s.transactions.ListTransactionsByTypeBetween(gctx, userID, core.Income, from, now)
			return err
		})
		if err := g.Wait(); err != nil {
			return FinancialHealth{}, fmt.Errorf("%w: %w", core.ErrReportGeneration, err)
		}

		var totalExpenses, totalIncome int64
		for _, rec := range records {
			totalExpenses += rec.Amount.Cents
		}
		for _, t := range income {
			totalIncome += t.Amount.Cents
		}

		savingsRate := analytics.SavingsRate(totalIncome, totalExpenses)
		monthlySavings := (totalIncome - totalExpenses) / insightWindow
		var ratio float64
		if totalIncome > 0 {
			ratio = float64(totalExpenses) / float64(totalIncome)
		}

		health := FinancialHealth{
			Score: analytics.HealthScore(analytics.HealthMetrics{
				SavingsRate:          savingsRate,
				ExpenseToIncomeRatio: ratio,
				MonthlySavingsCents:  monthlySavings,
			}),
			Recommendations: []Recommendation{},
			GeneratedAt:     now,
		}
		health.Metrics.SavingsRate = core.Round2(savingsRate)
		health.Metrics.MonthlySavings = core.Money{Cents: monthlySavings}
		health.Metrics.ExpenseToIncomeRatio = core.Round2(ratio * 100)
		health.Metrics.AverageMonthlyIncome = core.Money{Cents: totalIncome / insightWindow}
		health.Metrics.AverageMonthlyExpense = core.Money{Cents: totalExpenses / insightWindow}

		if savingsRate < 20 {
			health.Recommendations = append(health.Recommendations, Recommendation{
				Type:    "warning",
				Message: "Your savings rate is below 20%. Consider reviewing discretionary spending.",
			})
		}
		if ratio > 0.8 {
			health.Recommendations = append(health.Recommendations, Recommendation{
				Type:    "warning",
				Message: "Your expenses are over 80% of your income.",
			})
		}
		if monthlySavings <= 0 {
			health.Recommendations = append(health.Recommendations, Recommendation{
				Type:    "critical",
				Message: "You're spending more than you earn. Immediate action recommended.",
			})
		}
		return health, nil
	})
}

// Predictions forecasts next month's per-category spending: the category
// average over the window plus its trend.
func (s *HealthService) Predictions(ctx context.Context, userID string) (PredictiveAnalysis, error) {
	if userID == "" {
		return PredictiveAnalysis{}, core.ErrMissingUser
	}
	return cacheAside(ctx, s.cache, predictionsKey(userID), insightTTL, func(ctx context.Context) (PredictiveAnalysis, error) {
		now := s.now()
		records, err := s.expenses.ListExpensesBetween(ctx, userID, now.AddDate(0, -insightWindow, 0), now)
		if err != nil {
			return PredictiveAnalysis{}, fmt.Errorf("%w: %w", core.ErrReportGeneration, err)
		}

		// Chronological per-category monthly series.
		buckets := analytics.BucketsDescending(expenseEntries(records))
		series := make(map[string][]float64)
		for i := len(buckets) - 1; i >= 0; i-- {
			for category, cents := range buckets[i].Categories {
				series[category] = append(series[category], float64(cents))
			}
		}

		prediction := PredictiveAnalysis{
			Trends:      make(map[string]CategoryTrend),
			Alerts:      []Recommendation{},
			GeneratedAt: now,
		}
		prediction.NextMonth.ExpectedExpenses = make(map[string]core.Money)

		categories := make([]string, 0, len(series))
		for category := range series {
			categories = append(categories, category)
		}
		sort.Strings(categories)

		var totalPredicted int64
		for _, category := range categories {
			amounts := series[category]
			var sum float64
			for _, a := range amounts {
				sum += a
			}
			average := sum / float64(len(amounts))
			trend := analytics.Trend(amounts)

			expected := int64(math.Round(average + trend))
			if expected < 0 {
				expected = 0
			}
			prediction.NextMonth.ExpectedExpenses[category] = core.Money{Cents: expected}
			totalPredicted += expected

			var pct float64
			if average > 0 {
				pct = core.Round2(trend / average * 100)
			}
			prediction.Trends[category] = CategoryTrend{
				Trend:      analytics.TrendDirection(trend),
				Percentage: pct,
			}
			if trend > 0 && analytics.SignificantTrend(trend, average) {
				prediction.Alerts = append(prediction.Alerts, Recommendation{
					Type:     "warning",
					Message:  fmt.Sprintf("Spending in %s is trending up", category),
					Category: category,
				})
			}
		}
		prediction.NextMonth.TotalPredicted = core.Money{Cents: totalPredicted}
		return prediction, nil
	})
}
