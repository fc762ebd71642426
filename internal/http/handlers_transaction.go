package http

import (
	"net/http"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/storage"
)

type transactionRequest struct {
	Type               string `json:"type"`
	Amount             string `json:"amount"`
	Description        string `json:"description"`
	CategoryID         string `json:"categoryId"`
	Date               string `json:"date"`
	Status             string `json:"status,omitempty"`
	IsRecurring        bool   `json:"isRecurring,omitempty"`
	RecurringFrequency string `json:"recurringFrequency,omitempty"`
	NextDueDate        string `json:"nextDueDate,omitempty"`
}

func (req transactionRequest) toTransaction(userID string) (core.Transaction, error) {
	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		return core.Transaction{}, core.ErrInvalidAmount
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return core.Transaction{}, core.ErrInvalidDate
	}
	t := core.Transaction{
		UserID:             userID,
		Type:               core.TransactionType(req.Type),
		Amount:             core.Money{Cents: cents},
		Description:        sanitizeInput(req.Description),
		CategoryID:         req.CategoryID,
		Date:               date,
		Status:             core.TransactionStatus(req.Status),
		IsRecurring:        req.IsRecurring,
		RecurringFrequency: core.Frequency(req.RecurringFrequency),
	}
	if req.NextDueDate != "" {
		due, err := time.Parse("2006-01-02", req.NextDueDate)
		if err != nil {
			return core.Transaction{}, core.ErrInvalidDate
		}
		t.NextDueDate = due
	}
	return t, nil
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	var req transactionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	t, err := req.toTransaction(userID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	created, err := s.transactions.Create(r.Context(), t)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	from, err := queryTime(r, "from")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid from date")
		return
	}
	to, err := queryTime(r, "to")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid to date")
		return
	}

	filter := storage.TransactionFilter{
		Type:   core.TransactionType(r.URL.Query().Get("type")),
		Status: core.TransactionStatus(r.URL.Query().Get("status")),
		From:   from,
		To:     to,
		Page:   queryInt(r, "page"),
		Limit:  queryInt(r, "limit"),
	}
	page, err := s.transactions.List(r.Context(), userID, filter)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

func (s *Server) handleListRecurring(w http.ResponseWriter, r *http.Request) {
	userID, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	items, err := s.transactions.ListRecurring(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	t, err := s.transactions.Get(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, t)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	var req transactionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	t, err := req.toTransaction(userID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	t.ID = r.PathValue("id")

	updated, err := s.transactions.Update(r.Context(), t)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	if err := s.transactions.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"id": r.PathValue("id")})
}
