package http

import (
	"net/http"
	"time"

	"fintrack/internal/core"
)

type budgetRequest struct {
	Name          string             `json:"name"`
	Amount        string             `json:"amount"`
	CategoryID    string             `json:"categoryId"`
	Period        string             `json:"period,omitempty"`
	StartDate     string             `json:"startDate"`
	EndDate       string             `json:"endDate,omitempty"`
	Currency      string             `json:"currency,omitempty"`
	AlertsEnabled bool               `json:"alertsEnabled,omitempty"`
	Thresholds    []core.Threshold   `json:"thresholds,omitempty"`
	Shared        []core.BudgetShare `json:"shared,omitempty"`
}

func (req budgetRequest) toBudget(userID string) (core.Budget, error) {
	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		return core.Budget{}, core.ErrInvalidAmount
	}
	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return core.Budget{}, core.ErrInvalidDate
	}
	b := core.Budget{
		UserID:        userID,
		Name:          sanitizeInput(req.Name),
		Amount:        core.Money{Cents: cents},
		CategoryID:    req.CategoryID,
		Period:        core.BudgetPeriod(req.Period),
		StartDate:     start,
		Currency:      req.Currency,
		AlertsEnabled: req.AlertsEnabled,
		Thresholds:    req.Thresholds,
		Shared:        req.Shared,
	}
	if req.EndDate != "" {
		end, err := time.Parse("2006-01-02", req.EndDate)
		if err != nil {
			return core.Budget{}, core.ErrInvalidDate
		}
		b.EndDate = end
	}
	return b, nil
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	userID, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	var req budgetRequest
	if !decodeBody(w, r, &req) {
		return
	}
	b, err := req.toBudget(userID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	created, err := s.budgets.Create(r.Context(), b)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	userID, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	views, err := s.budgets.List(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, views)
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	userID, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	view, err := s.budgets.Get(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	userID, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	var req budgetRequest
	if !decodeBody(w, r, &req) {
		return
	}
	b, err := req.toBudget(userID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	b.ID = r.PathValue("id")

	updated, err := s.budgets.Update(r.Context(), b)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	userID, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	if err := s.budgets.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"id": r.PathValue("id")})
}
