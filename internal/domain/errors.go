package domain

import "errors"

// Ошибки уровня домена. Хендлеры различают их через errors.Is,
// поэтому каждая категория — отдельное значение, без общих формулировок.
var (
	ErrNotFound             = errors.New("resource not found")
	ErrInvalidName          = errors.New("name contains invalid characters")
	ErrNameTaken            = errors.New("name already taken")
	ErrCycleViolation       = errors.New("cannot move folder into its own subtree")
	ErrDataIntegrity        = errors.New("broken ancestor chain")
	ErrStorageInconsistency = errors.New("blob and metadata state diverged")
	ErrQuotaExceeded        = errors.New("not enough storage space available")

	// Ошибки доступа к share-ссылкам
	ErrShareExpired     = errors.New("share link has expired")
	ErrShareExhausted   = errors.New("maximum access limit reached")
	ErrPasswordRequired = errors.New("password required")
	ErrWrongPassword    = errors.New("invalid password")
	ErrShareRevoked     = errors.New("share link is revoked")
)
