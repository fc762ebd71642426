// Package memory is an in-process ReportWriter for tests and local runs
// without Google credentials.
package memory

import (
	"context"
	"fmt"
	"sync"

	ports "fintrack/internal/sheets"
)

type Writer struct {
	mu   sync.Mutex
	rows []ports.ReportRow
}

var _ ports.ReportWriter = (*Writer)(nil)

func NewWriter() *Writer {
	return &Writer{}
}

func (w *Writer) AppendReport(_ context.Context, row ports.ReportRow) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.rows = append(w.rows, row)
	return fmt.Sprintf("row-%d", len(w.rows)), nil
}

// Rows returns a copy of everything appended so far.
func (w *Writer) Rows() []ports.ReportRow {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]ports.ReportRow, len(w.rows))
	copy(out, w.rows)
	return out
}
