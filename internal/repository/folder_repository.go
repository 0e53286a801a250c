package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"

	"vaultdrive/internal/domain"
	"vaultdrive/internal/pathtree"
)

type FolderRepository struct {
	db *sqlx.DB
}

func NewFolderRepository(db *sqlx.DB) *FolderRepository {
	return &FolderRepository{db: db}
}

// nodeLookup строит pathtree.LookupFunc поверх текущей транзакции,
// чтобы обход предков видел тот же снимок, что и сама мутация.
func nodeLookup(tx *sqlx.Tx) pathtree.LookupFunc {
	return func(ctx context.Context, id int64) (*pathtree.Node, error) {
		var node pathtree.Node
		err := tx.QueryRowContext(ctx,
			"SELECT id, name, parent_id FROM folders WHERE id = $1",
			id,
		).Scan(&node.ID, &node.Name, &node.ParentID)
		if err == sql.ErrNoRows {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return &node, nil
	}
}

// Create создает папку, вычисляя путь и цепочку предков по текущему
// состоянию родителя внутри транзакции.
func (r *FolderRepository) Create(ctx context.Context, folder *domain.Folder) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if folder.ParentID != nil {
			// Родитель должен существовать и принадлежать владельцу.
			// FOR SHARE сериализует вставку с каскадом переименования
			// или переноса любого предка: каскад держит строку родителя
			// FOR UPDATE, и цепочка предков читается уже после его
			// коммита.
			var parentOwner string
			err := tx.QueryRowContext(ctx,
				"SELECT owner_id FROM folders WHERE id = $1 FOR SHARE",
				*folder.ParentID,
			).Scan(&parentOwner)
			if err == sql.ErrNoRows || (err == nil && parentOwner != folder.OwnerID) {
				return fmt.Errorf("%w: parent folder %d", domain.ErrNotFound, *folder.ParentID)
			}
			if err != nil {
				return fmt.Errorf("failed to get parent folder: %w", err)
			}
		}

		taken, err := folderNameTaken(ctx, tx, folder.OwnerID, folder.ParentID, folder.Name, 0)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("%w: folder %q already exists here", domain.ErrNameTaken, folder.Name)
		}

		chain, err := pathtree.Ancestry(ctx, nodeLookup(tx), folder.ParentID)
		if err != nil {
			return err
		}

		folder.PathArray = chain
		folder.Level = len(chain)
		folder.Path = pathtree.PathOf(chain, folder.Name)

		query := `
        INSERT INTO folders (name, owner_id, parent_id, path, path_array, level)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at, updated_at`

		err = tx.QueryRowContext(
			ctx,
			query,
			folder.Name,
			folder.OwnerID,
			folder.ParentID,
			folder.Path,
			folder.PathArray,
			folder.Level,
		).Scan(&folder.ID, &folder.CreatedAt, &folder.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to create folder: %w", err)
		}

		return nil
	})
}

func (r *FolderRepository) GetByID(ctx context.Context, id int64, ownerID string) (*domain.Folder, error) {
	query := `
        SELECT id, name, owner_id, parent_id, path, path_array, level, created_at, updated_at
        FROM folders
        WHERE id = $1 AND owner_id = $2`

	var folder domain.Folder
	err := r.db.GetContext(ctx, &folder, query, id, ownerID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: folder %d", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get folder: %w", err)
	}

	return &folder, nil
}

// Rename меняет имя папки и каскадно переписывает пути всех потомков
// в той же транзакции. Остаток пути за старым префиксом сохраняется
// байт в байт.
func (r *FolderRepository) Rename(ctx context.Context, id int64, newName, ownerID string) (*domain.Folder, error) {
	var renamed domain.Folder

	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		folder, err := lockFolder(ctx, tx, id, ownerID)
		if err != nil {
			return err
		}

		taken, err := folderNameTaken(ctx, tx, ownerID, folder.ParentID, newName, id)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("%w: folder %q already exists here", domain.ErrNameTaken, newName)
		}

		oldPath := folder.Path
		newPath := pathtree.PathOf(folder.PathArray, newName)

		_, err = tx.ExecContext(ctx, `
            UPDATE folders
            SET name = $1, path = $2, updated_at = CURRENT_TIMESTAMP
            WHERE id = $3`,
			newName, newPath, id)
		if err != nil {
			return fmt.Errorf("failed to rename folder: %w", err)
		}

		// У потомков меняется и префикс пути, и имя этого звена
		// в закешированной цепочке предков
		rewrite := func(descChain domain.PathArray) domain.PathArray {
			return pathtree.RenameEntry(descChain, id, newName)
		}
		if err := cascadePaths(ctx, tx, ownerID, oldPath, newPath, rewrite); err != nil {
			return err
		}

		folder.Name = newName
		folder.Path = newPath
		renamed = *folder
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[Rename] Folder %d renamed to %q, subtree cascaded", id, newName)
	return &renamed, nil
}

// Move переносит папку под нового родителя. Сначала защита от цикла,
// затем тот же каскад, что и при переименовании, но относительно
// новой цепочки предков.
func (r *FolderRepository) Move(ctx context.Context, id int64, destinationID *int64, ownerID string) (*domain.Folder, error) {
	var moved domain.Folder

	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		folder, err := lockFolder(ctx, tx, id, ownerID)
		if err != nil {
			return err
		}

		// Перемещение в саму себя — успешный no-op, до проверки цикла
		if destinationID != nil && *destinationID == id {
			moved = *folder
			return nil
		}

		lookup := nodeLookup(tx)

		if destinationID != nil {
			// FOR SHARE по той же причине, что и в Create: новая цепочка
			// предков считается от назначения, каскад по его предкам
			// не должен проскочить между чтением и коммитом
			var destOwner string
			err := tx.QueryRowContext(ctx,
				"SELECT owner_id FROM folders WHERE id = $1 FOR SHARE",
				*destinationID,
			).Scan(&destOwner)
			if err == sql.ErrNoRows || (err == nil && destOwner != ownerID) {
				return fmt.Errorf("%w: destination folder %d", domain.ErrNotFound, *destinationID)
			}
			if err != nil {
				return fmt.Errorf("failed to get destination folder: %w", err)
			}

			// Нельзя перенести поддерево внутрь самого себя
			inSubtree, err := pathtree.IsAncestor(ctx, lookup, id, *destinationID)
			if err != nil {
				return err
			}
			if inSubtree {
				return fmt.Errorf("%w: folder %d into %d", domain.ErrCycleViolation, id, *destinationID)
			}
		}

		taken, err := folderNameTaken(ctx, tx, ownerID, destinationID, folder.Name, id)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("%w: folder %q already exists in destination", domain.ErrNameTaken, folder.Name)
		}

		newChain, err := pathtree.Ancestry(ctx, lookup, destinationID)
		if err != nil {
			return err
		}

		oldPath := folder.Path
		oldLevel := folder.Level
		newPath := pathtree.PathOf(newChain, folder.Name)

		_, err = tx.ExecContext(ctx, `
            UPDATE folders
            SET parent_id = $1, path = $2, path_array = $3, level = $4, updated_at = CURRENT_TIMESTAMP
            WHERE id = $5`,
			destinationID, newPath, newChain, len(newChain), id)
		if err != nil {
			return fmt.Errorf("failed to move folder: %w", err)
		}

		// Первые oldLevel звеньев цепочки потомка — старые предки
		// перемещенной папки, их заменяет новая база
		rewrite := func(descChain domain.PathArray) domain.PathArray {
			return pathtree.Rebase(descChain, oldLevel, newChain)
		}
		if err := cascadePaths(ctx, tx, ownerID, oldPath, newPath, rewrite); err != nil {
			return err
		}

		folder.ParentID = destinationID
		folder.Path = newPath
		folder.PathArray = newChain
		folder.Level = len(newChain)
		moved = *folder
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[Move] Folder %d moved, subtree cascaded", id)
	return &moved, nil
}

// Delete удаляет папку и все строки, чей путь лежит внутри ее пути,
// одним атомарным пакетом. Возвращает blob-ключи удаленных файлов —
// объекты в хранилище чистятся уже после коммита.
func (r *FolderRepository) Delete(ctx context.Context, id int64, ownerID string) ([]string, error) {
	var blobIDs []string

	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		folder, err := lockFolder(ctx, tx, id, ownerID)
		if err != nil {
			return err
		}

		pattern := pathtree.SubtreePattern(folder.Path)

		// Файлы поддерева: blob-ключи наружу, размер — в счетчик места
		var files []struct {
			BlobID    string `db:"blob_id"`
			SizeBytes int64  `db:"size_bytes"`
		}
		err = tx.SelectContext(ctx, &files, `
            SELECT blob_id, size_bytes FROM files
            WHERE owner_id = $1 AND path LIKE $2 ESCAPE '\'`,
			ownerID, pattern)
		if err != nil {
			return fmt.Errorf("failed to collect subtree files: %w", err)
		}

		var totalSize int64
		for _, f := range files {
			blobIDs = append(blobIDs, f.BlobID)
			totalSize += f.SizeBytes
		}

		_, err = tx.ExecContext(ctx, `
            DELETE FROM files
            WHERE owner_id = $1 AND path LIKE $2 ESCAPE '\'`,
			ownerID, pattern)
		if err != nil {
			return fmt.Errorf("failed to delete subtree files: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
            DELETE FROM folders
            WHERE owner_id = $1 AND (id = $2 OR path LIKE $3 ESCAPE '\')`,
			ownerID, id, pattern)
		if err != nil {
			return fmt.Errorf("failed to delete folders: %w", err)
		}

		if totalSize > 0 {
			if err := adjustUsedBytes(ctx, tx, ownerID, -totalSize); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[Delete] Folder %d deleted with %d files", id, len(blobIDs))
	return blobIDs, nil
}

// GetUserFolders возвращает все папки владельца в порядке путей.
func (r *FolderRepository) GetUserFolders(ctx context.Context, ownerID string) ([]domain.Folder, error) {
	var folders []domain.Folder
	query := `
        SELECT id, name, owner_id, parent_id, path, path_array, level, created_at, updated_at
        FROM folders
        WHERE owner_id = $1
        ORDER BY path`

	err := r.db.SelectContext(ctx, &folders, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user folders: %w", err)
	}

	return folders, nil
}

// ListChildren возвращает папки непосредственно под parentID.
// Колонка и направление сортировки приходят уже проверенными.
func (r *FolderRepository) ListChildren(ctx context.Context, ownerID string, parentID *int64, orderBy, direction string) ([]domain.Folder, error) {
	query := fmt.Sprintf(`
        SELECT id, name, owner_id, parent_id, path, path_array, level, created_at, updated_at
        FROM folders
        WHERE owner_id = $1 AND parent_id IS NOT DISTINCT FROM $2
        ORDER BY %s %s`, orderBy, direction)

	var folders []domain.Folder
	err := r.db.SelectContext(ctx, &folders, query, ownerID, parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list folders: %w", err)
	}

	return folders, nil
}

// SearchByName ищет папки владельца по фрагменту имени.
// Фрагмент экранирован, метасимволы шаблона — литеральные данные.
func (r *FolderRepository) SearchByName(ctx context.Context, ownerID, query string) ([]domain.Folder, error) {
	var folders []domain.Folder
	err := r.db.SelectContext(ctx, &folders, `
        SELECT id, name, owner_id, parent_id, path, path_array, level, created_at, updated_at
        FROM folders
        WHERE owner_id = $1 AND name ILIKE $2 ESCAPE '\'
        ORDER BY path`,
		ownerID, pathtree.SearchPattern(query))
	if err != nil {
		return nil, fmt.Errorf("failed to search folders: %w", err)
	}

	return folders, nil
}

// lockFolder читает папку с блокировкой строки, чтобы конкурирующие
// каскады по одному поддереву выстраивались друг за другом.
func lockFolder(ctx context.Context, tx *sqlx.Tx, id int64, ownerID string) (*domain.Folder, error) {
	var folder domain.Folder
	err := tx.GetContext(ctx, &folder, `
        SELECT id, name, owner_id, parent_id, path, path_array, level, created_at, updated_at
        FROM folders
        WHERE id = $1 AND owner_id = $2
        FOR UPDATE`,
		id, ownerID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: folder %d", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get folder: %w", err)
	}

	return &folder, nil
}

// cascadePaths переписывает пути всех папок и файлов, лежащих внутри
// oldPath, заменяя ровно этот префикс на newPath. Замена выполняется
// в приложении: содержимое пути — литерал, а не шаблон.
func cascadePaths(ctx context.Context, tx *sqlx.Tx, ownerID, oldPath, newPath string, rewriteChain func(domain.PathArray) domain.PathArray) error {
	pattern := pathtree.SubtreePattern(oldPath)

	var descendants []struct {
		ID        int64            `db:"id"`
		Path      string           `db:"path"`
		PathArray domain.PathArray `db:"path_array"`
	}
	err := tx.SelectContext(ctx, &descendants, `
        SELECT id, path, path_array FROM folders
        WHERE owner_id = $1 AND path LIKE $2 ESCAPE '\'
        FOR UPDATE`,
		ownerID, pattern)
	if err != nil {
		return fmt.Errorf("failed to collect subtree folders: %w", err)
	}

	for _, desc := range descendants {
		rewritten, ok := pathtree.ReplacePrefix(desc.Path, oldPath, newPath)
		if !ok {
			return fmt.Errorf("%w: folder %d path %q outside prefix %q", domain.ErrDataIntegrity, desc.ID, desc.Path, oldPath)
		}

		chain := rewriteChain(desc.PathArray)
		_, err = tx.ExecContext(ctx, `
            UPDATE folders
            SET path = $1, path_array = $2, level = $3, updated_at = CURRENT_TIMESTAMP
            WHERE id = $4`,
			rewritten, chain, len(chain), desc.ID)
		if err != nil {
			return fmt.Errorf("failed to update subtree folder %d: %w", desc.ID, err)
		}
	}

	var files []struct {
		UUID string `db:"uuid"`
		Path string `db:"path"`
	}
	err = tx.SelectContext(ctx, &files, `
        SELECT uuid, path FROM files
        WHERE owner_id = $1 AND path LIKE $2 ESCAPE '\'
        FOR UPDATE`,
		ownerID, pattern)
	if err != nil {
		return fmt.Errorf("failed to collect subtree files: %w", err)
	}

	for _, f := range files {
		rewritten, ok := pathtree.ReplacePrefix(f.Path, oldPath, newPath)
		if !ok {
			return fmt.Errorf("%w: file %s path %q outside prefix %q", domain.ErrDataIntegrity, f.UUID, f.Path, oldPath)
		}

		_, err = tx.ExecContext(ctx, `
            UPDATE files
            SET path = $1, updated_at = CURRENT_TIMESTAMP
            WHERE uuid = $2`,
			rewritten, f.UUID)
		if err != nil {
			return fmt.Errorf("failed to update subtree file %s: %w", f.UUID, err)
		}
	}

	return nil
}

func folderNameTaken(ctx context.Context, tx *sqlx.Tx, ownerID string, parentID *int64, name string, excludeID int64) (bool, error) {
	var exists bool
	err := tx.GetContext(ctx, &exists, `
        SELECT EXISTS(
            SELECT 1 FROM folders
            WHERE owner_id = $1 AND parent_id IS NOT DISTINCT FROM $2 AND name = $3 AND id != $4
        )`,
		ownerID, parentID, name, excludeID)
	if err != nil {
		return false, fmt.Errorf("failed to check folder existence: %w", err)
	}

	return exists, nil
}
