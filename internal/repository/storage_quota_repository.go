package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"vaultdrive/internal/domain"
)

type StorageQuotaRepository struct {
	db *sqlx.DB
}

func NewStorageQuotaRepository(db *sqlx.DB) *StorageQuotaRepository {
	return &StorageQuotaRepository{db: db}
}

// GetQuota возвращает квоту владельца, лениво создавая строку
// с дефолтным лимитом при первом обращении.
func (r *StorageQuotaRepository) GetQuota(ctx context.Context, ownerID string) (*domain.StorageQuota, error) {
	var quota domain.StorageQuota

	err := r.db.GetContext(ctx, &quota,
		"SELECT * FROM storage_quotas WHERE owner_id = $1",
		ownerID)
	if err == sql.ErrNoRows {
		quota = domain.StorageQuota{
			OwnerID:         ownerID,
			TotalBytesLimit: defaultStorageLimit,
			UsedBytes:       0,
		}

		if err := r.create(ctx, &quota); err != nil {
			return nil, fmt.Errorf("failed to create quota: %w", err)
		}
		return &quota, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get quota: %w", err)
	}

	return &quota, nil
}

func (r *StorageQuotaRepository) create(ctx context.Context, quota *domain.StorageQuota) error {
	query := `
        INSERT INTO storage_quotas (owner_id, total_bytes_limit, used_bytes)
        VALUES ($1, $2, $3)
        ON CONFLICT (owner_id) DO UPDATE SET updated_at = CURRENT_TIMESTAMP
        RETURNING id, total_bytes_limit, used_bytes, created_at, updated_at`

	return r.db.QueryRowContext(ctx, query,
		quota.OwnerID,
		quota.TotalBytesLimit,
		quota.UsedBytes,
	).Scan(&quota.ID, &quota.TotalBytesLimit, &quota.UsedBytes, &quota.CreatedAt, &quota.UpdatedAt)
}

func (r *StorageQuotaRepository) UpdateQuotaLimit(ctx context.Context, ownerID string, newLimit int64) error {
	result, err := r.db.ExecContext(ctx, `
        UPDATE storage_quotas
        SET total_bytes_limit = $1,
            updated_at = CURRENT_TIMESTAMP
        WHERE owner_id = $2`,
		newLimit, ownerID)
	if err != nil {
		return fmt.Errorf("failed to update quota limit: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: quota for owner %s", domain.ErrNotFound, ownerID)
	}

	return nil
}
