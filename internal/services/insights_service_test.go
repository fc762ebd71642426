package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"fintrack/internal/analytics"
	"fintrack/internal/cache"
	"fintrack/internal/core"
)

type stubBudgetViewer struct {
	views []core.BudgetView
}

func (s *stubBudgetViewer) List(_ context.Context, _ string) ([]core.BudgetView, error) {
	return s.views, nil
}

func newInsightsService(expenses *fakeExpenseStore, budgets *stubBudgetViewer, recurring *fakeTransactionStore) *InsightsService {
	svc := NewInsightsService(expenses, budgets, recurring, cache.NewMemory(100))
	svc.now = fixedNow
	return svc
}

func TestSpendingPatternsFlagsSpike(t *testing.T) {
	// July 100.00, August 150.00: a 50% jump.
	expenses := &fakeExpenseStore{records: []core.ExpenseRecord{
		{ID: "e1", UserID: "u1", CategoryID: "cat-food", Amount: core.Money{Cents: 10000}, Date: time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC)},
		{ID: "e2", UserID: "u1", CategoryID: "cat-food", Amount: core.Money{Cents: 15000}, Date: time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)},
	}}
	svc := newInsightsService(expenses, &stubBudgetViewer{}, &fakeTransactionStore{})

	insights, err := svc.SpendingPatterns(context.Background(), "u1")
	if err != nil {
		t.Fatalf("SpendingPatterns() error = %v", err)
	}

	if got := insights.MonthlyTrends["2026-8"].Total; got != 15000 {
		t.Errorf(`MonthlyTrends["2026-8"].Total = %d, want 15000`, got)
	}
	var warned bool
	for _, rec := range insights.Recommendations {
		if rec.Type == "warning" && strings.Contains(rec.Message, "increased by 50.0%") {
			warned = true
		}
	}
	if !warned {
		t.Errorf("Recommendations = %+v, want month-over-month spike warning", insights.Recommendations)
	}
}

func TestSpendingPatternsTopCategories(t *testing.T) {
	records := []core.ExpenseRecord{}
	for i, category := range []string{"a", "b", "c", "d", "e", "f"} {
		records = append(records, core.ExpenseRecord{
			ID: category, UserID: "u1", CategoryID: category,
			Amount: core.Money{Cents: int64((i + 1) * 1000)},
			Date:   time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC),
		})
	}
	svc := newInsightsService(&fakeExpenseStore{records: records}, &stubBudgetViewer{}, &fakeTransactionStore{})

	insights, err := svc.SpendingPatterns(context.Background(), "u1")
	if err != nil {
		t.Fatalf("SpendingPatterns() error = %v", err)
	}
	if len(insights.TopCategories) != 5 {
		t.Fatalf("len(TopCategories) = %d, want 5", len(insights.TopCategories))
	}
	if insights.TopCategories[0].Category != "f" {
		t.Errorf("TopCategories[0] = %q, want %q", insights.TopCategories[0].Category, "f")
	}
}

func TestBudgetHealthWorstOfSet(t *testing.T) {
	budgets := &stubBudgetViewer{views: []core.BudgetView{
		{Budget: core.Budget{ID: "b1", Name: "Food", CategoryID: "cat-food", Amount: core.Money{Cents: 10000}}, CurrentSpending: core.Money{Cents: 1000}, RemainingAmount: core.Money{Cents: 9000}, PercentageUsed: 10},
		{Budget: core.Budget{ID: "b2", Name: "Rent", CategoryID: "cat-housing", Amount: core.Money{Cents: 10000}}, CurrentSpending: core.Money{Cents: 9500}, RemainingAmount: core.Money{Cents: 500}, PercentageUsed: 95},
	}}
	svc := newInsightsService(&fakeExpenseStore{}, budgets, &fakeTransactionStore{})

	analysis, err := svc.BudgetHealth(context.Background(), "u1")
	if err != nil {
		t.Fatalf("BudgetHealth() error = %v", err)
	}

	if analysis.OverallStatus != analytics.StatusCritical {
		t.Errorf("OverallStatus = %q, want critical", analysis.OverallStatus)
	}
	if analysis.Budgets[0].Status != analytics.StatusGood || analysis.Budgets[1].Status != analytics.StatusCritical {
		t.Errorf("statuses = %q/%q, want good/critical", analysis.Budgets[0].Status, analysis.Budgets[1].Status)
	}

	var critical, success bool
	for _, rec := range analysis.Recommendations {
		switch rec.Type {
		case "critical":
			critical = strings.Contains(rec.Message, "95.0% of your Rent budget")
		case "success":
			success = strings.Contains(rec.Message, "Food")
		}
	}
	if !critical || !success {
		t.Errorf("Recommendations = %+v, want critical for Rent and success for Food", analysis.Recommendations)
	}
}

func TestBudgetHealthEmptySet(t *testing.T) {
	svc := newInsightsService(&fakeExpenseStore{}, &stubBudgetViewer{}, &fakeTransactionStore{})

	analysis, err := svc.BudgetHealth(context.Background(), "u1")
	if err != nil {
		t.Fatalf("BudgetHealth() error = %v", err)
	}
	if analysis.OverallStatus != analytics.StatusGood {
		t.Errorf("OverallStatus with no budgets = %q, want good", analysis.OverallStatus)
	}
}

func TestSavingsOpportunitiesDuplicateSubscriptions(t *testing.T) {
	recurring := &fakeTransactionStore{items: []core.Transaction{
		{ID: "t1", UserID: "u1", Type: core.Expense, CategoryID: "cat-fun", Description: "Netflix", Amount: core.Money{Cents: 1299}, IsRecurring: true, Status: core.StatusActive, RecurringFrequency: core.Monthly},
		{ID: "t2", UserID: "u1", Type: core.Expense, CategoryID: "cat-fun", Description: "Hulu", Amount: core.Money{Cents: 999}, IsRecurring: true, Status: core.StatusActive, RecurringFrequency: core.Monthly},
		{ID: "t3", UserID: "u1", Type: core.Expense, CategoryID: "cat-utils", Description: "Power", Amount: core.Money{Cents: 8000}, IsRecurring: true, Status: core.StatusActive, RecurringFrequency: core.Monthly},
		{ID: "t4", UserID: "u1", Type: core.Income, CategoryID: "cat-salary", Description: "Paycheck", Amount: core.Money{Cents: 500000}, IsRecurring: true, Status: core.StatusActive, RecurringFrequency: core.Monthly},
	}}
	svc := newInsightsService(&fakeExpenseStore{}, &stubBudgetViewer{}, recurring)

	opps, err := svc.SavingsOpportunities(context.Background(), "u1")
	if err != nil {
		t.Fatalf("SavingsOpportunities() error = %v", err)
	}

	// Income-typed recurring items are not outflows.
	if len(opps.RecurringExpenses) != 3 {
		t.Fatalf("len(RecurringExpenses) = %d, want 3", len(opps.RecurringExpenses))
	}

	var duplicates []string
	var summary bool
	for _, rec := range opps.Recommendations {
		switch rec.Type {
		case "warning":
			duplicates = append(duplicates, rec.Category)
		case "info":
			summary = strings.Contains(rec.Message, "3 recurring expenses totaling 102.98")
		}
	}
	if len(duplicates) != 1 || duplicates[0] != "cat-fun" {
		t.Errorf("duplicate warnings = %v, want [cat-fun]", duplicates)
	}
	if !summary {
		t.Errorf("Recommendations = %+v, want aggregate summary line", opps.Recommendations)
	}
}
