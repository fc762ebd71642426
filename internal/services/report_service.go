package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/analytics"
	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/log"
)

// ReportExpenseStore is the expense query surface the report builder uses.
type ReportExpenseStore interface {
	ListExpensesBetween(ctx context.Context, userID string, from, to time.Time) ([]core.ExpenseRecord, error)
}

// ReportTransactionStore is the transaction query surface the report builder
// uses; income totals come from income-typed transactions.
type ReportTransactionStore interface {
	ListTransactionsByTypeBetween(ctx context.Context, userID string, typ core.TransactionType, from, to time.Time) ([]core.Transaction, error)
}

// ReportExporter hands a freshly generated monthly report off for export.
type ReportExporter interface {
	PublishReportExport(ctx context.Context, userID string, year, month int) error
}

// CategoryGroup is one category's slice of a monthly report.
type CategoryGroup struct {
	Category string               `json:"category"`
	Total    core.Money           `json:"total"`
	Count    int                  `json:"count"`
	Records  []core.ExpenseRecord `json:"records"`
}

// MonthlyReport is the cached monthly report document.
type MonthlyReport struct {
	Period struct {
		Month int `json:"month"`
		Year  int `json:"year"`
	} `json:"period"`
	Summary struct {
		TotalIncome       core.Money `json:"totalIncome"`
		TotalExpenses     core.Money `json:"totalExpenses"`
		TotalTransactions int        `json:"totalTransactions"`
		SavingsRate       float64    `json:"savingsRate"`
	} `json:"summary"`
	CategoryBreakdown []CategoryGroup `json:"categoryBreakdown"`
	GeneratedAt       time.Time       `json:"generatedAt"`
}

// AnnualTrends is present only when at least two months carry data.
type AnnualTrends struct {
	HighestMonth    core.Money `json:"highestMonth"`
	LowestMonth     core.Money `json:"lowestMonth"`
	MonthlyVariance float64    `json:"monthlyVariance"`
}

// AnnualReport is the cached annual report document. Monetary totals in the
// breakdowns are cents.
type AnnualReport struct {
	Year    int `json:"year"`
	Summary struct {
		TotalExpenses         core.Money `json:"totalExpenses"`
		TotalTransactions     int        `json:"totalTransactions"`
		AverageMonthlyExpense core.Money `json:"averageMonthlyExpense"`
	} `json:"summary"`
	MonthlyBreakdown  []analytics.MonthTotal    `json:"monthlyBreakdown"`
	CategoryBreakdown []analytics.CategoryTotal `json:"categoryBreakdown"`
	Trends            *AnnualTrends             `json:"trends,omitempty"`
	GeneratedAt       time.Time                 `json:"generatedAt"`
}

// ReportService builds the monthly and annual report documents. Every entry
// point is cache-aside: hit returns the cached payload verbatim, miss
// computes, caches for a day and returns. A fresh monthly report is also
// handed to the exporter, best-effort.
type ReportService struct {
	expenses     ReportExpenseStore
	transactions ReportTransactionStore
	cache        cache.Store
	exporter     ReportExporter

	now func() time.Time
}

func NewReportService(expenses ReportExpenseStore, transactions ReportTransactionStore, c cache.Store, exporter ReportExporter) *ReportService {
	return &ReportService{
		expenses:     expenses,
		transactions: transactions,
		cache:        c,
		exporter:     exporter,
		now:          time.Now,
	}
}

// Monthly builds the report for one calendar month.
func (s *ReportService) Monthly(ctx context.Context, userID string, year, month int) (MonthlyReport, error) {
	if userID == "" {
		return MonthlyReport{}, core.ErrMissingUser
	}
	if month < 1 || month > 12 || year < 1970 {
		return MonthlyReport{}, core.ErrInvalidDate
	}

	key := monthlyReportKey(userID, year, month)
	return cacheAside(ctx, s.cache, key, reportTTL, func(ctx context.Context) (MonthlyReport, error) {
		report, err := s.buildMonthly(ctx, userID, year, month)
		if err != nil {
			return MonthlyReport{}, fmt.Errorf("%w: %w", core.ErrReportGeneration, err)
		}
		// Only a fresh report is handed off for export; cache hits stay quiet.
		if s.exporter != nil {
			if err := s.exporter.PublishReportExport(ctx, userID, year, month); err != nil {
				slog.WarnContext(ctx, "Report export publish failed",
					log.FieldUserID, userID,
					"year", year,
					"month", month,
					log.FieldError, err,
				)
			}
		}
		return report, nil
	})
}

func (s *ReportService) buildMonthly(ctx context.Context, userID string, year, month int) (MonthlyReport, error) {
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0).Add(-time.Second)

	var (
		records []core.ExpenseRecord
		income  []core.Transaction
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = s.expenses.ListExpensesBetween(gctx, userID, from, to)
		return err
	})
	g.Go(func() error {
		var err error
		income, err = s.transactions.ListTransactionsByTypeBetween(gctx, userID, core.Income, from, to)
		return err
	})
	if err := g.Wait(); err != nil {
		return MonthlyReport{}, err
	}

	var report MonthlyReport
	report.Period.Month = month
	report.Period.Year = year
	report.GeneratedAt = s.now()

	groups := make(map[string]*CategoryGroup)
	var order []string
	var totalExpenses core.Money
	for _, rec := range records {
		g, ok := groups[rec.CategoryID]
		if !ok {
			g = &CategoryGroup{Category: rec.CategoryID, Records: []core.ExpenseRecord{}}
			groups[rec.CategoryID] = g
			order = append(order, rec.CategoryID)
		}
		g.Total = g.Total.Add(rec.Amount)
		g.Count++
		g.Records = append(g.Records, rec)
		totalExpenses = totalExpenses.Add(rec.Amount)
	}
	report.CategoryBreakdown = make([]CategoryGroup, 0, len(order))
	for _, name := range order {
		report.CategoryBreakdown = append(report.CategoryBreakdown, *groups[name])
	}

	var totalIncome core.Money
	for _, t := range income {
		totalIncome = totalIncome.Add(t.Amount)
	}

	report.Summary.TotalIncome = totalIncome
	report.Summary.TotalExpenses = totalExpenses
	report.Summary.TotalTransactions = len(records) + len(income)
	if totalIncome.Cents > 0 {
		report.Summary.SavingsRate = core.Round2(analytics.SavingsRate(totalIncome.Cents, totalExpenses.Cents))
	}
	return report, nil
}

// Annual builds the report for one calendar year.
func (s *ReportService) Annual(ctx context.Context, userID string, year int) (AnnualReport, error) {
	if userID == "" {
		return AnnualReport{}, core.ErrMissingUser
	}
	if year < 1970 {
		return AnnualReport{}, core.ErrInvalidDate
	}

	key := annualReportKey(userID, year)
	return cacheAside(ctx, s.cache, key, reportTTL, func(ctx context.Context) (AnnualReport, error) {
		report, err := s.buildAnnual(ctx, userID, year)
		if err != nil {
			return AnnualReport{}, fmt.Errorf("%w: %w", core.ErrReportGeneration, err)
		}
		return report, nil
	})
}

func (s *ReportService) buildAnnual(ctx context.Context, userID string, year int) (AnnualReport, error) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0).Add(-time.Second)

	records, err := s.expenses.ListExpensesBetween(ctx, userID, from, to)
	if err != nil {
		return AnnualReport{}, err
	}

	entries := expenseEntries(records)
	months := analytics.MonthTotalsAscending(entries)

	report := AnnualReport{Year: year, GeneratedAt: s.now()}
	report.MonthlyBreakdown = months
	report.CategoryBreakdown = analytics.CategoryTotals(entries)

	var totalCents int64
	for _, rec := range records {
		totalCents += rec.Amount.Cents
	}
	report.Summary.TotalExpenses = core.Money{Cents: totalCents}
	report.Summary.TotalTransactions = len(records)
	// Fixed divisor: the yearly average spreads over all twelve months, not
	// just the months with data.
	report.Summary.AverageMonthlyExpense = core.Money{Cents: totalCents / 12}

	if len(months) >= 2 {
		trends := &AnnualTrends{
			HighestMonth: core.Money{Cents: months[0].Total},
			LowestMonth:  core.Money{Cents: months[0].Total},
		}
		totals := make([]float64, 0, len(months))
		for _, mt := range months {
			if mt.Total > trends.HighestMonth.Cents {
				trends.HighestMonth = core.Money{Cents: mt.Total}
			}
			if mt.Total < trends.LowestMonth.Cents {
				trends.LowestMonth = core.Money{Cents: mt.Total}
			}
			totals = append(totals, float64(mt.Total)/100)
		}
		trends.MonthlyVariance = core.Round2(analytics.Variance(totals))
		report.Trends = trends
	}
	return report, nil
}

// expenseEntries projects expense records into aggregation entries.
func expenseEntries(records []core.ExpenseRecord) []analytics.Entry {
	entries := make([]analytics.Entry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, analytics.Entry{
			Year:     rec.Date.UTC().Year(),
			Month:    int(rec.Date.UTC().Month()),
			Category: rec.CategoryID,
			Amount:   rec.Amount.Cents,
		})
	}
	return entries
}
