package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestShareState(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)
	limit := int64(3)

	tests := []struct {
		name  string
		share Share
		want  ShareState
	}{
		{"fresh share", Share{IsActive: true}, ShareStateActive},
		{"revoked by owner", Share{IsActive: false}, ShareStateRevoked},
		{"expired", Share{IsActive: true, ExpiresAt: &past}, ShareStateExpired},
		{"still valid", Share{IsActive: true, ExpiresAt: &future}, ShareStateActive},
		{"exhausted", Share{IsActive: true, MaxAccess: &limit, AccessCount: 3}, ShareStateExhausted},
		{"count below limit", Share{IsActive: true, MaxAccess: &limit, AccessCount: 2}, ShareStateActive},
		// Отзыв сильнее прочих признаков
		{"revoked and expired", Share{IsActive: false, ExpiresAt: &past}, ShareStateRevoked},
		// Производное состояние флагом не снимается: включенная обратно
		// ссылка с истекшим сроком остается истекшей
		{"reactivated but expired", Share{IsActive: true, ExpiresAt: &past, AccessCount: 0}, ShareStateExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.share.State(now))
		})
	}
}

func TestShareHasPassword(t *testing.T) {
	assert.False(t, (&Share{}).HasPassword())

	empty := ""
	assert.False(t, (&Share{PasswordHash: &empty}).HasPassword())

	hash := "$2a$10$abcdefghijklmnopqrstuv"
	assert.True(t, (&Share{PasswordHash: &hash}).HasPassword())
}
