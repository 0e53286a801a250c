package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"vaultdrive/internal/auth"
	"vaultdrive/internal/service"

	"github.com/go-chi/chi/v5"
)

type NavigationHandler struct {
	navigationService *service.NavigationService
}

func NewNavigationHandler(navigationService *service.NavigationService) *NavigationHandler {
	return &NavigationHandler{navigationService: navigationService}
}

// ListContents возвращает содержимое папки (или корня, если parent_id не задан).
// Поддерживает sort=name|created_at|updated_at|size и order=asc|desc.
func (h *NavigationHandler) ListContents(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.VerifyToken(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var parentID *int64
	if raw := r.URL.Query().Get("parent_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			http.Error(w, "Invalid parent ID", http.StatusBadRequest)
			return
		}
		parentID = &id
	}

	sort := r.URL.Query().Get("sort")
	order := r.URL.Query().Get("order")

	content, err := h.navigationService.ListContents(r.Context(), userID, parentID, sort, order)
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(content)
}

func (h *NavigationHandler) Search(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.VerifyToken(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	query := r.URL.Query().Get("q")
	if query == "" {
		http.Error(w, "Search query is required", http.StatusBadRequest)
		return
	}

	results, err := h.navigationService.Search(r.Context(), userID, query, r.URL.Query().Get("type"))
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(results)
}

// GetBreadcrumb возвращает цепочку от корня до папки для навигационной строки.
func (h *NavigationHandler) GetBreadcrumb(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.VerifyToken(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	folderID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid folder ID", http.StatusBadRequest)
		return
	}

	breadcrumb, err := h.navigationService.GetBreadcrumb(r.Context(), folderID, userID)
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(breadcrumb)
}
