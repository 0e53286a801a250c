package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"vaultdrive/internal/domain"
	"vaultdrive/internal/pathtree"
)

// Дефолтный лимит места на владельца — 100MB.
const defaultStorageLimit = 104857600

type FileRepository struct {
	db *sqlx.DB
}

func NewFileRepository(db *sqlx.DB) *FileRepository {
	return &FileRepository{db: db}
}

// Create вычисляет путь файла по текущему пути родительской папки,
// вставляет строку и в той же транзакции увеличивает счетчик занятого
// места владельца. Либо фиксируется все, либо ничего.
func (r *FileRepository) Create(ctx context.Context, file *domain.File) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		parentPath := ""
		if file.FolderID != nil {
			// FOR SHARE: каскад переименования/переноса предка держит
			// эту строку FOR UPDATE, вставка ждет его коммита и читает
			// уже новый путь. Без блокировки путь файла фиксируется по
			// старому префиксу и больше никаким каскадом не ловится.
			err := tx.QueryRowContext(ctx,
				"SELECT path FROM folders WHERE id = $1 AND owner_id = $2 FOR SHARE",
				*file.FolderID, file.OwnerID,
			).Scan(&parentPath)
			if err == sql.ErrNoRows {
				return fmt.Errorf("%w: parent folder %d", domain.ErrNotFound, *file.FolderID)
			}
			if err != nil {
				return fmt.Errorf("failed to get parent folder: %w", err)
			}
		}

		file.Path = pathtree.Join(parentPath, file.Filename)

		query := `
        INSERT INTO files (uuid, filename, original_name, mime_type, encoding, size_bytes, owner_id, folder_id, path, blob_id)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING created_at, updated_at`

		err := tx.QueryRowContext(
			ctx,
			query,
			file.UUID,
			file.Filename,
			file.OriginalName,
			file.MIMEType,
			file.Encoding,
			file.SizeBytes,
			file.OwnerID,
			file.FolderID,
			file.Path,
			file.BlobID,
		).Scan(&file.CreatedAt, &file.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to create file: %w", err)
		}

		return adjustUsedBytes(ctx, tx, file.OwnerID, file.SizeBytes)
	})
}

func (r *FileRepository) GetByUUID(ctx context.Context, id uuid.UUID, ownerID string) (*domain.File, error) {
	var file domain.File
	err := r.db.GetContext(ctx, &file,
		"SELECT * FROM files WHERE uuid = $1 AND owner_id = $2",
		id, ownerID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: file %s", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get file: %w", err)
	}

	return &file, nil
}

// Delete убирает строку файла и уменьшает счетчик места одним коммитом.
// Вызывается только после успешного удаления blob-объекта.
func (r *FileRepository) Delete(ctx context.Context, id uuid.UUID, ownerID string) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var size int64
		err := tx.QueryRowContext(ctx,
			"DELETE FROM files WHERE uuid = $1 AND owner_id = $2 RETURNING size_bytes",
			id, ownerID,
		).Scan(&size)
		if err == sql.ErrNoRows {
			return fmt.Errorf("%w: file %s", domain.ErrNotFound, id)
		}
		if err != nil {
			return fmt.Errorf("failed to delete file: %w", err)
		}

		return adjustUsedBytes(ctx, tx, ownerID, -size)
	})
}

// ListByFolder возвращает файлы непосредственно в папке.
// Колонка и направление сортировки приходят уже проверенными.
func (r *FileRepository) ListByFolder(ctx context.Context, ownerID string, folderID *int64, orderBy, direction string) ([]domain.File, error) {
	query := fmt.Sprintf(`
        SELECT * FROM files
        WHERE owner_id = $1 AND folder_id IS NOT DISTINCT FROM $2
        ORDER BY %s %s`, orderBy, direction)

	var files []domain.File
	err := r.db.SelectContext(ctx, &files, query, ownerID, folderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	return files, nil
}

// SearchByName ищет файлы владельца по фрагменту отображаемого имени.
func (r *FileRepository) SearchByName(ctx context.Context, ownerID, query string) ([]domain.File, error) {
	var files []domain.File
	err := r.db.SelectContext(ctx, &files, `
        SELECT * FROM files
        WHERE owner_id = $1 AND original_name ILIKE $2 ESCAPE '\'
        ORDER BY path`,
		ownerID, pathtree.SearchPattern(query))
	if err != nil {
		return nil, fmt.Errorf("failed to search files: %w", err)
	}

	return files, nil
}

// adjustUsedBytes атомарно сдвигает счетчик занятого места владельца
// внутри переданной транзакции. Никаких read-modify-write: один UPDATE,
// привязанный 1:1 к фиксируемой вставке или удалению.
func adjustUsedBytes(ctx context.Context, tx *sqlx.Tx, ownerID string, delta int64) error {
	_, err := tx.ExecContext(ctx, `
        INSERT INTO storage_quotas (owner_id, total_bytes_limit, used_bytes)
        VALUES ($1, $2, 0)
        ON CONFLICT (owner_id) DO NOTHING`,
		ownerID, defaultStorageLimit)
	if err != nil {
		return fmt.Errorf("failed to ensure quota row: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
        UPDATE storage_quotas
        SET used_bytes = GREATEST(0, used_bytes + $1),
            updated_at = CURRENT_TIMESTAMP
        WHERE owner_id = $2`,
		delta, ownerID)
	if err != nil {
		return fmt.Errorf("failed to update used space: %w", err)
	}

	return nil
}
