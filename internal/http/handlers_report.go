package http

import (
	"net/http"
)

func (s *Server) handleMonthlyReport(w http.ResponseWriter, r *http.Request) {
	userID, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	year, err := pathInt(r, "year")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid year")
		return
	}
	month, err := pathInt(r, "month")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid month")
		return
	}

	report, err := s.reports.Monthly(r.Context(), userID, year, month)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

func (s *Server) handleAnnualReport(w http.ResponseWriter, r *http.Request) {
	userID, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	year, err := pathInt(r, "year")
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid year")
		return
	}

	report, err := s.reports.Annual(r.Context(), userID, year)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

func (s *Server) handleSpendingInsights(w http.ResponseWriter, r *http.Request) {
	userID, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	insights, err := s.insights.SpendingPatterns(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, insights)
}

func (s *Server) handleBudgetAnalysis(w http.ResponseWriter, r *http.Request) {
	userID, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	analysis, err := s.insights.BudgetHealth(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, analysis)
}

func (s *Server) handleSavingsOpportunities(w http.ResponseWriter, r *http.Request) {
	userID, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	opportunities, err := s.insights.SavingsOpportunities(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, opportunities)
}

func (s *Server) handleFinancialHealth(w http.ResponseWriter, r *http.Request) {
	userID, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	health, err := s.health.FinancialHealth(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, health)
}

func (s *Server) handlePredictions(w http.ResponseWriter, r *http.Request) {
	userID, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	prediction, err := s.health.Predictions(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, prediction)
}
