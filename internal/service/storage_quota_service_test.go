package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsagePercent(t *testing.T) {
	cases := []struct {
		name  string
		used  int64
		limit int64
		want  float64
	}{
		{"empty", 0, 104857600, 0},
		{"half", 50, 100, 50},
		{"full", 100, 100, 100},
		{"zero limit", 42, 0, 0},
		{"negative limit", 42, -1, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, usagePercent(tc.used, tc.limit))
		})
	}
}

func TestUpdateQuotaLimitRejectsNonPositive(t *testing.T) {
	s := NewStorageQuotaService(nil)

	require.Error(t, s.UpdateQuotaLimit(context.Background(), "user-1", 0))
	require.Error(t, s.UpdateQuotaLimit(context.Background(), "user-1", -1))
}
