package http

import (
	"net/http"
	"time"

	"fintrack/internal/core"
)

// expenseRequest is the wire shape for creating or updating an expense.
// Amount is a decimal string ("12.34") so no float ever touches money.
type expenseRequest struct {
	Amount        string          `json:"amount"`
	Description   string          `json:"description"`
	CategoryID    string          `json:"categoryId"`
	Date          string          `json:"date"`
	PaymentMethod string          `json:"paymentMethod,omitempty"`
	Currency      string          `json:"currency,omitempty"`
	Location      string          `json:"location,omitempty"`
	Tags          []string        `json:"tags,omitempty"`
	Recurring     *core.Recurring `json:"recurring,omitempty"`
}

func (req expenseRequest) toRecord(userID string) (core.ExpenseRecord, error) {
	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		return core.ExpenseRecord{}, core.ErrInvalidAmount
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return core.ExpenseRecord{}, core.ErrInvalidDate
	}
	return core.ExpenseRecord{
		UserID:        userID,
		Amount:        core.Money{Cents: cents},
		Description:   sanitizeInput(req.Description),
		CategoryID:    req.CategoryID,
		Date:          date,
		PaymentMethod: req.PaymentMethod,
		Currency:      req.Currency,
		Location:      sanitizeInput(req.Location),
		Tags:          req.Tags,
		Recurring:     req.Recurring,
	}, nil
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	userID, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	var req expenseRequest
	if !decodeBody(w, r, &req) {
		return
	}
	record, err := req.toRecord(userID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	created, err := s.expenses.Create(r.Context(), record)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	userID, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	records, err := s.expenses.List(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, records)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	userID, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	record, err := s.expenses.Get(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, record)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	userID, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	var req expenseRequest
	if !decodeBody(w, r, &req) {
		return
	}
	record, err := req.toRecord(userID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	record.ID = r.PathValue("id")

	updated, err := s.expenses.Update(r.Context(), record)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	userID, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	if err := s.expenses.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"id": r.PathValue("id")})
}
