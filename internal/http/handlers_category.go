package http

import (
	"net/http"

	"fintrack/internal/core"
)

type categoryRequest struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Icon  string `json:"icon,omitempty"`
	Color string `json:"color,omitempty"`
}

func (req categoryRequest) toCategory(userID string) core.Category {
	return core.Category{
		UserID: userID,
		Name:   sanitizeInput(req.Name),
		Type:   core.CategoryType(req.Type),
		Icon:   req.Icon,
		Color:  req.Color,
	}
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	var req categoryRequest
	if !decodeBody(w, r, &req) {
		return
	}

	created, err := s.categories.Create(r.Context(), req.toCategory(userID))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	userID, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	categories, err := s.categories.List(r.Context(), userID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, categories)
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	category, err := s.categories.Get(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, category)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	var req categoryRequest
	if !decodeBody(w, r, &req) {
		return
	}
	category := req.toCategory(userID)
	category.ID = r.PathValue("id")

	updated, err := s.categories.Update(r.Context(), category)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := requirePrincipal(w, r)
	if !ok {
		return
	}
	if err := s.categories.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"id": r.PathValue("id")})
}
