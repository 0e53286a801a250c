package pathtree

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaultdrive/internal/domain"
)

func TestValidateName(t *testing.T) {
	valid := []string{"Documents", "test.txt", "отчет 2024", "a", "..."}
	for _, name := range valid {
		assert.NoError(t, ValidateName(name), "name %q", name)
	}

	invalid := []string{"", "   ", "folder/name", `folder\name`, "folder:name", "folder*name", "a?b", `q"w`, "a<b", "a>b", "a|b"}
	for _, name := range invalid {
		err := ValidateName(name)
		require.Error(t, err, "name %q", name)
		assert.True(t, errors.Is(err, domain.ErrInvalidName), "name %q", name)
	}
}

func TestJoin(t *testing.T) {
	assert.Equal(t, "/Parent", Join("", "Parent"))
	assert.Equal(t, "/Parent/Child", Join("/Parent", "Child"))
	assert.Equal(t, "/Parent/Child/test.txt", Join("/Parent/Child", "test.txt"))
}

func TestIsWithin(t *testing.T) {
	assert.True(t, IsWithin("/Foo/bar", "/Foo"))
	assert.True(t, IsWithin("/Foo/bar/baz.txt", "/Foo/bar"))

	// Сосед с общим строковым префиксом не попадает под поддерево
	assert.False(t, IsWithin("/Foobar", "/Foo"))
	assert.False(t, IsWithin("/Foobar/x", "/Foo"))
	// Сам узел — не строгий потомок
	assert.False(t, IsWithin("/Foo", "/Foo"))
}

func TestReplacePrefix(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		oldPrefix string
		newPrefix string
		want      string
		replaced  bool
	}{
		{"child folder", "/Parent/Child", "/Parent", "/NewParent", "/NewParent/Child", true},
		{"nested file", "/Parent/Child/test.txt", "/Parent", "/NewParent", "/NewParent/Child/test.txt", true},
		{"move deeper", "/Source/ToMove/a.txt", "/Source/ToMove", "/Target/ToMove", "/Target/ToMove/a.txt", true},
		{"sibling untouched", "/Foobar/x", "/Foo", "/Baz", "/Foobar/x", false},
		{"node itself untouched", "/Parent", "/Parent", "/NewParent", "/Parent", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ReplacePrefix(tt.path, tt.oldPrefix, tt.newPrefix)
			assert.Equal(t, tt.replaced, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSubtreePattern(t *testing.T) {
	assert.Equal(t, `/Parent/%`, SubtreePattern("/Parent"))

	// Спецсимволы LIKE в именах — литеральные данные
	assert.Equal(t, `/100\%\_done/%`, SubtreePattern("/100%_done"))
	assert.Equal(t, `/a\\b/%`, SubtreePattern(`/a\b`))
}

func TestSearchPattern(t *testing.T) {
	assert.Equal(t, "%report%", SearchPattern("report"))
	assert.Equal(t, `%50\%%`, SearchPattern("50%"))
	assert.Equal(t, `%a\_b%`, SearchPattern("a_b"))
}
