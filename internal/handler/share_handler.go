package handler

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"vaultdrive/internal/auth"
	"vaultdrive/internal/domain"
	"vaultdrive/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type ShareHandler struct {
	shareService *service.ShareService
}

type createShareRequest struct {
	FileUUID  string `json:"file_uuid"`
	Password  string `json:"password,omitempty"`
	ExpiresIn int64  `json:"expires_in,omitempty"`
	MaxAccess int64  `json:"max_access,omitempty"`
}

type updateShareRequest struct {
	Password  *string `json:"password,omitempty"`
	ExpiresIn *int64  `json:"expires_in,omitempty"`
	MaxAccess *int64  `json:"max_access,omitempty"`
	IsActive  *bool   `json:"is_active,omitempty"`
}

type accessShareRequest struct {
	Password string `json:"password,omitempty"`
}

func NewShareHandler(shareService *service.ShareService) *ShareHandler {
	return &ShareHandler{shareService: shareService}
}

func (h *ShareHandler) CreateShare(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.VerifyToken(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req createShareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	fileUUID, err := uuid.Parse(req.FileUUID)
	if err != nil {
		http.Error(w, "Invalid file UUID", http.StatusBadRequest)
		return
	}

	share, err := h.shareService.CreateShare(r.Context(), userID, fileUUID, service.CreateShareInput{
		Password:   req.Password,
		TTLSeconds: req.ExpiresIn,
		MaxAccess:  req.MaxAccess,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	log.Printf("[CreateShare] Создана ссылка %s на файл %s", share.ID, fileUUID)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(share)
}

// AccessShare открывает файл по публичному токену. Авторизация не нужна,
// ссылка сама является предъявителем доступа. Пароль, если он установлен
// на ссылке, передаётся в теле запроса.
func (h *ShareHandler) AccessShare(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		http.Error(w, "Token is required", http.StatusBadRequest)
		return
	}

	var req accessShareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	file, obj, err := h.shareService.AccessShare(r.Context(), token, req.Password)
	if err != nil {
		respondError(w, err)
		return
	}
	defer obj.Close()

	writeFileResponse(w, file.OriginalName, file.MIMEType, file.SizeBytes, obj)
}

func (h *ShareHandler) UpdateShare(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.VerifyToken(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	shareID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid share ID", http.StatusBadRequest)
		return
	}

	var req updateShareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	share, err := h.shareService.UpdateShare(r.Context(), shareID, userID, domain.ShareUpdate{
		Password:   req.Password,
		TTLSeconds: req.ExpiresIn,
		MaxAccess:  req.MaxAccess,
		IsActive:   req.IsActive,
	})
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(share)
}

func (h *ShareHandler) DeleteShare(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.VerifyToken(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	shareID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid share ID", http.StatusBadRequest)
		return
	}

	if err := h.shareService.DeleteShare(r.Context(), shareID, userID); err != nil {
		respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *ShareHandler) ListShares(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.VerifyToken(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	shares, err := h.shareService.ListShares(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(shares)
}
