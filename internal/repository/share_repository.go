package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"vaultdrive/internal/domain"
)

type ShareRepository struct {
	db *sqlx.DB
}

func NewShareRepository(db *sqlx.DB) *ShareRepository {
	return &ShareRepository{db: db}
}

func (r *ShareRepository) Create(ctx context.Context, share *domain.Share) error {
	query := `
        INSERT INTO shares (id, file_uuid, owner_id, token, password_hash, expires_at, max_access)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(
		ctx,
		query,
		share.ID,
		share.FileUUID,
		share.OwnerID,
		share.Token,
		share.PasswordHash,
		share.ExpiresAt,
		share.MaxAccess,
	).Scan(&share.CreatedAt, &share.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create share: %w", err)
	}

	return nil
}

// GetByToken ищет ссылку по токену независимо от флага is_active:
// отозванную ссылку сервис отличает от несуществующей.
func (r *ShareRepository) GetByToken(ctx context.Context, token string) (*domain.Share, error) {
	var share domain.Share
	err := r.db.GetContext(ctx, &share,
		"SELECT * FROM shares WHERE token = $1",
		token)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: share", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get share: %w", err)
	}

	return &share, nil
}

func (r *ShareRepository) GetByID(ctx context.Context, id uuid.UUID, ownerID string) (*domain.Share, error) {
	var share domain.Share
	err := r.db.GetContext(ctx, &share,
		"SELECT * FROM shares WHERE id = $1 AND owner_id = $2",
		id, ownerID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: share %s", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get share: %w", err)
	}

	return &share, nil
}

// IncrementAccess выполняет инкремент-с-проверкой одним UPDATE:
// счетчик не перешагнет лимит даже при одновременных запросах.
// false означает, что лимит уже исчерпан.
func (r *ShareRepository) IncrementAccess(ctx context.Context, id uuid.UUID) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
        UPDATE shares
        SET access_count = access_count + 1,
            updated_at = CURRENT_TIMESTAMP
        WHERE id = $1
        AND (max_access IS NULL OR access_count < max_access)`,
		id)
	if err != nil {
		return false, fmt.Errorf("failed to increment access count: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return rows > 0, nil
}

func (r *ShareRepository) Save(ctx context.Context, share *domain.Share) error {
	query := `
        UPDATE shares
        SET password_hash = $1,
            expires_at = $2,
            max_access = $3,
            is_active = $4,
            updated_at = CURRENT_TIMESTAMP
        WHERE id = $5 AND owner_id = $6
        RETURNING updated_at`

	err := r.db.QueryRowContext(
		ctx,
		query,
		share.PasswordHash,
		share.ExpiresAt,
		share.MaxAccess,
		share.IsActive,
		share.ID,
		share.OwnerID,
	).Scan(&share.UpdatedAt)
	if err == sql.ErrNoRows {
		return fmt.Errorf("%w: share %s", domain.ErrNotFound, share.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to update share: %w", err)
	}

	return nil
}

func (r *ShareRepository) Delete(ctx context.Context, id uuid.UUID, ownerID string) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM shares WHERE id = $1 AND owner_id = $2",
		id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete share: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: share %s", domain.ErrNotFound, id)
	}

	return nil
}

// ListByOwner возвращает ссылки владельца, новые первыми, с краткими
// метаданными файла.
func (r *ShareRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.ShareWithFile, error) {
	var shares []domain.ShareWithFile
	err := r.db.SelectContext(ctx, &shares, `
        SELECT s.*,
               f.original_name AS file_name,
               f.mime_type AS file_mime_type,
               f.size_bytes AS file_size
        FROM shares s
        JOIN files f ON f.uuid = s.file_uuid
        WHERE s.owner_id = $1
        ORDER BY s.created_at DESC`,
		ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list shares: %w", err)
	}

	return shares, nil
}
