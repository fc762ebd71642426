package sheets

import "context"

// ReportRow is one exported monthly report line.
type ReportRow struct {
	UserID        string
	Year          int
	Month         int
	TotalIncome   float64
	TotalExpenses float64
	SavingsRate   float64
}

// ReportWriter appends an exported report row to an external sheet.
type ReportWriter interface {
	AppendReport(ctx context.Context, row ReportRow) (rowRef string, err error)
}
