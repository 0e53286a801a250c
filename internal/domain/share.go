package domain

import (
	"github.com/google/uuid"
	"time"
)

// ShareState — состояние share-ссылки. Active и Revoked управляются
// владельцем через флаг is_active, Expired и Exhausted выводятся из
// данных (срок и счетчик) и обратно флагом не снимаются.
type ShareState string

const (
	ShareStateActive    ShareState = "active"
	ShareStateExpired   ShareState = "expired"
	ShareStateExhausted ShareState = "exhausted"
	ShareStateRevoked   ShareState = "revoked"
)

type Share struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	FileUUID     uuid.UUID  `json:"file_uuid" db:"file_uuid"`
	OwnerID      string     `json:"owner_id" db:"owner_id"`
	Token        string     `json:"token" db:"token"`
	PasswordHash *string    `json:"-" db:"password_hash"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty" db:"expires_at"`
	MaxAccess    *int64     `json:"max_access,omitempty" db:"max_access"`
	AccessCount  int64      `json:"access_count" db:"access_count"`
	IsActive     bool       `json:"is_active" db:"is_active"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// State вычисляет текущее состояние ссылки на момент now.
// Порядок проверок фиксирован: revoked, expired, exhausted, active.
func (s *Share) State(now time.Time) ShareState {
	if !s.IsActive {
		return ShareStateRevoked
	}
	if s.ExpiresAt != nil && s.ExpiresAt.Before(now) {
		return ShareStateExpired
	}
	if s.MaxAccess != nil && s.AccessCount >= *s.MaxAccess {
		return ShareStateExhausted
	}
	return ShareStateActive
}

// HasPassword сообщает, защищена ли ссылка паролем.
func (s *Share) HasPassword() bool {
	return s.PasswordHash != nil && *s.PasswordHash != ""
}

// ShareUpdate описывает частичное обновление ссылки владельцем.
// nil-поле означает «не трогать». Пустой пароль снимает защиту,
// нулевой TTL снимает срок, нулевой MaxAccess снимает лимит.
type ShareUpdate struct {
	Password   *string `json:"password,omitempty"`
	TTLSeconds *int64  `json:"ttl_seconds,omitempty"`
	MaxAccess  *int64  `json:"max_access,omitempty"`
	IsActive   *bool   `json:"is_active,omitempty"`
}

// ShareWithFile — ссылка вместе с метаданными файла для списков владельца.
type ShareWithFile struct {
	Share
	FileName     string `json:"file_name" db:"file_name"`
	FileMIMEType string `json:"file_mime_type" db:"file_mime_type"`
	FileSize     int64  `json:"file_size" db:"file_size"`
}
