// Package pathtree содержит логику материализованных путей:
// вычисление цепочки предков, каскадную замену префиксов и
// защиту от циклов при перемещении поддеревьев.
package pathtree

import (
	"fmt"
	"strings"

	"vaultdrive/internal/domain"
)

// Символы, запрещенные в именах папок и файлов. Разделитель пути
// и зарезервированные символы файловых систем.
const invalidNameChars = `/\:*?"<>|`

// ValidateName проверяет имя папки или файла.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: empty name", domain.ErrInvalidName)
	}
	if strings.ContainsAny(name, invalidNameChars) {
		return fmt.Errorf("%w: %q", domain.ErrInvalidName, name)
	}
	return nil
}

// Join строит материализованный путь узла по пути родителя.
// Для узла корневого уровня parentPath пустой и путь равен "/<name>".
func Join(parentPath, name string) string {
	return parentPath + "/" + name
}

// IsWithin сообщает, лежит ли path строго внутри поддерева prefix.
// Сравнение идет по границе сегмента: "/Foo" не накрывает "/Foobar".
func IsWithin(path, prefix string) bool {
	return strings.HasPrefix(path, prefix+"/")
}

// ReplacePrefix переписывает префикс пути с oldPrefix на newPrefix,
// не трогая остаток ни на байт. Возвращает false, если path не лежит
// внутри oldPrefix.
func ReplacePrefix(path, oldPrefix, newPrefix string) (string, bool) {
	if !IsWithin(path, oldPrefix) {
		return path, false
	}
	return newPrefix + path[len(oldPrefix):], true
}

// escapeLike экранирует символы, значимые для LIKE/ILIKE. Содержимое
// пути — литеральные данные, а не шаблон, поэтому '%', '_' и сам
// экранирующий символ нейтрализуются. Запросы обязаны указывать ESCAPE '\'.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// SubtreePattern возвращает LIKE-шаблон, накрывающий строгих потомков
// узла с данным путем: экранированный префикс плюс "/%".
func SubtreePattern(prefix string) string {
	return escapeLike(prefix) + "/%"
}

// SearchPattern возвращает ILIKE-шаблон для поиска по фрагменту имени.
func SearchPattern(query string) string {
	return "%" + escapeLike(query) + "%"
}
