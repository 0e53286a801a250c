package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateFilename(t *testing.T) {
	name, err := generateFilename("report.pdf")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, ".pdf"))
	// 16 байт hex + расширение
	assert.Len(t, name, 32+len(".pdf"))

	// Ключ хранения не зависит от отображаемого имени
	other, err := generateFilename("report.pdf")
	require.NoError(t, err)
	assert.NotEqual(t, name, other)

	plain, err := generateFilename("README")
	require.NoError(t, err)
	assert.Len(t, plain, 32)
}
