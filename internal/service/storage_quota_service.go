package service

import (
	"context"
	"fmt"

	"vaultdrive/internal/domain"
	"vaultdrive/internal/repository"
)

type StorageQuotaService struct {
	quotaRepo *repository.StorageQuotaRepository
}

func NewStorageQuotaService(quotaRepo *repository.StorageQuotaRepository) *StorageQuotaService {
	return &StorageQuotaService{
		quotaRepo: quotaRepo,
	}
}

func (s *StorageQuotaService) GetQuotaInfo(ctx context.Context, ownerID string) (*domain.QuotaInfo, error) {
	quota, err := s.quotaRepo.GetQuota(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get quota: %w", err)
	}

	return &domain.QuotaInfo{
		TotalSpace:     quota.TotalBytesLimit,
		UsedSpace:      quota.UsedBytes,
		AvailableSpace: quota.AvailableBytes(),
		UsagePercent:   usagePercent(quota.UsedBytes, quota.TotalBytesLimit),
	}, nil
}

// usagePercent считает занятость в процентах. Нулевой лимит дает 0:
// деление на ноль породило бы Inf/NaN, которые не сериализуются в JSON.
func usagePercent(used, limit int64) float64 {
	if limit <= 0 {
		return 0
	}
	return float64(used) / float64(limit) * 100
}

func (s *StorageQuotaService) CheckSpaceAvailable(ctx context.Context, ownerID string, requiredBytes int64) (bool, error) {
	quota, err := s.quotaRepo.GetQuota(ctx, ownerID)
	if err != nil {
		return false, fmt.Errorf("failed to get quota: %w", err)
	}

	return requiredBytes <= quota.AvailableBytes(), nil
}

func (s *StorageQuotaService) UpdateQuotaLimit(ctx context.Context, ownerID string, newLimit int64) error {
	if newLimit <= 0 {
		return fmt.Errorf("new quota limit must be positive")
	}
	return s.quotaRepo.UpdateQuotaLimit(ctx, ownerID, newLimit)
}
