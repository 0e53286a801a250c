package handler

import (
	"errors"
	"log"
	"net/http"

	"vaultdrive/internal/domain"
)

// respondError переводит доменную ошибку в HTTP-статус. Каждая
// категория различима для вызывающего, ничего не схлопывается
// в один общий ответ.
func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrInvalidName):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrNameTaken):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, domain.ErrCycleViolation):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, domain.ErrQuotaExceeded):
		http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
	case errors.Is(err, domain.ErrShareExpired),
		errors.Is(err, domain.ErrShareExhausted):
		http.Error(w, err.Error(), http.StatusGone)
	case errors.Is(err, domain.ErrPasswordRequired),
		errors.Is(err, domain.ErrWrongPassword):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, domain.ErrShareRevoked):
		http.Error(w, err.Error(), http.StatusForbidden)
	default:
		log.Printf("[http] Internal error: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
