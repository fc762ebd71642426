// Package analytics implements the aggregation primitives behind reports and
// insights: time-bucket grouping, category totals, trend and variance math,
// budget status classification and the financial health score.
//
// Every function here is pure: it operates on records already fetched from the
// store and is deterministic given its input. This keeps the grouping and
// summing logic unit-testable independently of the storage query layer.
package analytics

import (
	"math"
	"sort"

	"fintrack/internal/core"
)

// Entry is the minimal dated monetary record the engine aggregates over.
type Entry struct {
	Year     int
	Month    int // 1..12
	Category string
	Amount   int64 // cents
}

// Bucket is one month-year grouping with per-category sums and counts.
type Bucket struct {
	Year       int              `json:"year"`
	Month      int              `json:"month"`
	Total      int64            `json:"total"`
	Categories map[string]int64 `json:"categories"`
	Count      int              `json:"count"`
}

// MonthTotal is a per-month-index sum for annual breakdowns.
type MonthTotal struct {
	Month int   `json:"month"`
	Total int64 `json:"total"`
	Count int   `json:"count"`
}

// CategoryTotal is a per-category sum with record count.
type CategoryTotal struct {
	Category string `json:"category"`
	Total    int64  `json:"total"`
	Count    int    `json:"count"`
}

// BucketsDescending groups entries by (year, month) and returns buckets sorted
// newest first, each carrying per-category sums. Insight views want the most
// recent bucket at index 0.
func BucketsDescending(entries []Entry) []Bucket {
	index := make(map[[2]int]*Bucket)
	var order [][2]int
	for _, e := range entries {
		key := [2]int{e.Year, e.Month}
		b, ok := index[key]
		if !ok {
			b = &Bucket{Year: e.Year, Month: e.Month, Categories: make(map[string]int64)}
			index[key] = b
			order = append(order, key)
		}
		b.Total += e.Amount
		b.Categories[e.Category] += e.Amount
		b.Count++
	}
	sort.Slice(order, func(i, j int) bool {
		if order[i][0] != order[j][0] {
			return order[i][0] > order[j][0]
		}
		return order[i][1] > order[j][1]
	})
	out := make([]Bucket, 0, len(order))
	for _, key := range order {
		out = append(out, *index[key])
	}
	return out
}

// MonthTotalsAscending groups entries by month index (1..12) ascending.
// Months with no entries are absent, not zero-filled.
func MonthTotalsAscending(entries []Entry) []MonthTotal {
	index := make(map[int]*MonthTotal)
	for _, e := range entries {
		mt, ok := index[e.Month]
		if !ok {
			mt = &MonthTotal{Month: e.Month}
			index[e.Month] = mt
		}
		mt.Total += e.Amount
		mt.Count++
	}
	out := make([]MonthTotal, 0, len(index))
	for _, mt := range index {
		out = append(out, *mt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// CategoryTotals sums entries per category, sorted descending by total.
// Ties keep the insertion order of first encounter (stable sort).
func CategoryTotals(entries []Entry) []CategoryTotal {
	index := make(map[string]*CategoryTotal)
	var order []string
	for _, e := range entries {
		ct, ok := index[e.Category]
		if !ok {
			ct = &CategoryTotal{Category: e.Category}
			index[e.Category] = ct
			order = append(order, e.Category)
		}
		ct.Total += e.Amount
		ct.Count++
	}
	out := make([]CategoryTotal, 0, len(order))
	for _, name := range order {
		out = append(out, *index[name])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Total > out[j].Total })
	return out
}

// TopCategories returns the first n category totals.
func TopCategories(totals []CategoryTotal, n int) []CategoryTotal {
	if len(totals) <= n {
		return totals
	}
	return totals[:n]
}

// Trend compares the mean of the last three amounts against the mean of the
// first three on a chronologically ordered sequence. Sequences shorter than
// three use however many elements are available; fewer than two amounts yield
// no trend.
func Trend(amounts []float64) float64 {
	if len(amounts) < 2 {
		return 0
	}
	n := 3
	if len(amounts) < n {
		n = len(amounts)
	}
	return mean(amounts[len(amounts)-n:]) - mean(amounts[:n])
}

// TrendDirection labels a trend value.
func TrendDirection(trend float64) string {
	switch {
	case trend > 0:
		return "increasing"
	case trend < 0:
		return "decreasing"
	default:
		return "stable"
	}
}

// SignificantTrend reports whether the trend moves more than 10% of the
// average. A zero average never flags.
func SignificantTrend(trend, average float64) bool {
	if average == 0 {
		return false
	}
	return math.Abs(trend/average) > 0.10
}

// Variance is the population standard deviation of the sequence. A single
// element has variance 0; an empty sequence is defined as 0 so callers never
// see NaN.
func Variance(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	var sum float64
	for _, x := range xs {
		d := x - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(xs)))
}

// SavingsRate is the percentage of income not spent. Zero income yields 0
// rather than a division by zero.
func SavingsRate(incomeCents, expenseCents int64) float64 {
	if incomeCents <= 0 {
		return 0
	}
	return float64(incomeCents-expenseCents) / float64(incomeCents) * 100
}

// HealthMetrics feeds the health score.
type HealthMetrics struct {
	SavingsRate          float64
	ExpenseToIncomeRatio float64
	MonthlySavingsCents  int64
}

// HealthScore starts at 100 and deducts for weak metrics, clamped to [0,100]:
// savings rate below 20 and again below 10, expense ratio above 0.9 and again
// above 0.8, and non-positive monthly savings.
func HealthScore(m HealthMetrics) int {
	score := 100
	if m.SavingsRate < 20 {
		score -= 20
	}
	if m.SavingsRate < 10 {
		score -= 20
	}
	if m.ExpenseToIncomeRatio > 0.9 {
		score -= 20
	}
	if m.ExpenseToIncomeRatio > 0.8 {
		score -= 10
	}
	if m.MonthlySavingsCents <= 0 {
		score -= 30
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

// Budget status classification. Boundaries are exclusive on the lower side:
// exactly 75 is still good, exactly 90 is still warning.
const (
	StatusGood     = "good"
	StatusWarning  = "warning"
	StatusCritical = "critical"
)

// BudgetStatus classifies a budget by percentage of allocation used.
func BudgetStatus(percentageUsed float64) string {
	switch {
	case percentageUsed > 90:
		return StatusCritical
	case percentageUsed > 75:
		return StatusWarning
	default:
		return StatusGood
	}
}

var statusRank = map[string]int{
	StatusGood:     0,
	StatusWarning:  1,
	StatusCritical: 2,
}

// WorstStatus returns the worst classification in the set, good for an empty
// set.
func WorstStatus(statuses []string) string {
	worst := StatusGood
	for _, s := range statuses {
		if statusRank[s] > statusRank[worst] {
			worst = s
		}
	}
	return worst
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// PercentageUsed computes spent/allocated*100; a zero allocation yields 0.
func PercentageUsed(spent, allocated core.Money) float64 {
	if allocated.Cents <= 0 {
		return 0
	}
	return float64(spent.Cents) / float64(allocated.Cents) * 100
}
