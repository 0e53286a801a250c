package pathtree

import (
	"context"
	"fmt"

	"vaultdrive/internal/domain"
)

// MaxDepth ограничивает подъем по цепочке предков. Дерево такой
// глубины легально не построить, так что превышение означает
// испорченные данные с циклом в parent_id.
const MaxDepth = 128

// Node — минимальная проекция папки для обхода цепочки предков.
type Node struct {
	ID       int64
	Name     string
	ParentID *int64
}

// LookupFunc отдает узел по id в рамках текущей транзакции.
// (nil, nil) означает, что узла нет.
type LookupFunc func(ctx context.Context, id int64) (*Node, error)

// Ancestry поднимается от parentID до корня и возвращает цепочку
// предков в порядке от корня вниз. Висячая ссылка на родителя —
// ошибка целостности, а не молчаливо оборванная цепочка.
func Ancestry(ctx context.Context, lookup LookupFunc, parentID *int64) (domain.PathArray, error) {
	chain := make(domain.PathArray, 0, 4)

	id := parentID
	for depth := 0; id != nil; depth++ {
		if depth >= MaxDepth {
			return nil, fmt.Errorf("%w: ancestor chain deeper than %d", domain.ErrDataIntegrity, MaxDepth)
		}

		node, err := lookup(ctx, *id)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve ancestor %d: %w", *id, err)
		}
		if node == nil {
			return nil, fmt.Errorf("%w: dangling parent reference %d", domain.ErrDataIntegrity, *id)
		}

		chain = append(chain, domain.PathEntry{ID: node.ID, Name: node.Name})
		id = node.ParentID
	}

	// Разворачиваем: шли снизу вверх, храним от корня вниз
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}

	return chain, nil
}

// PathOf собирает материализованный путь узла из его цепочки предков.
func PathOf(chain domain.PathArray, name string) string {
	path := ""
	for _, entry := range chain {
		path = Join(path, entry.Name)
	}
	return Join(path, name)
}

// IsAncestor сообщает, встречается ли candidateID в цепочке предков
// nodeID. Совпадающие id предком не считаются: перемещение папки
// в саму себя — это no-op, он отсекается до проверки цикла.
func IsAncestor(ctx context.Context, lookup LookupFunc, candidateID, nodeID int64) (bool, error) {
	if candidateID == nodeID {
		return false, nil
	}

	node, err := lookup(ctx, nodeID)
	if err != nil {
		return false, fmt.Errorf("failed to resolve node %d: %w", nodeID, err)
	}
	if node == nil {
		return false, fmt.Errorf("%w: folder %d", domain.ErrNotFound, nodeID)
	}

	id := node.ParentID
	for depth := 0; id != nil; depth++ {
		if depth >= MaxDepth {
			return false, fmt.Errorf("%w: ancestor chain deeper than %d", domain.ErrDataIntegrity, MaxDepth)
		}
		if *id == candidateID {
			return true, nil
		}

		parent, err := lookup(ctx, *id)
		if err != nil {
			return false, fmt.Errorf("failed to resolve ancestor %d: %w", *id, err)
		}
		if parent == nil {
			return false, fmt.Errorf("%w: dangling parent reference %d", domain.ErrDataIntegrity, *id)
		}
		id = parent.ParentID
	}

	return false, nil
}

// RenameEntry возвращает копию цепочки, где у звена с данным id
// заменено имя. Используется при каскаде переименования: у потомков
// меняется только имя предка, сама структура цепочки неизменна.
func RenameEntry(chain domain.PathArray, id int64, newName string) domain.PathArray {
	out := make(domain.PathArray, len(chain))
	copy(out, chain)
	for i := range out {
		if out[i].ID == id {
			out[i].Name = newName
		}
	}
	return out
}

// Rebase заменяет первые oldDepth звеньев цепочки потомка на новую
// базу. Используется при перемещении: предки перемещенной папки
// меняются, хвост цепочки ниже нее остается прежним.
func Rebase(chain domain.PathArray, oldDepth int, newBase domain.PathArray) domain.PathArray {
	if oldDepth > len(chain) {
		oldDepth = len(chain)
	}
	out := make(domain.PathArray, 0, len(newBase)+len(chain)-oldDepth)
	out = append(out, newBase...)
	out = append(out, chain[oldDepth:]...)
	return out
}
