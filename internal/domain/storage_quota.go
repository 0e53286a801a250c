package domain

import "time"

// StorageQuota — агрегатный счетчик занятого места владельца.
// UsedBytes меняется только атомарными инкрементами в той же
// транзакции, что и вставка/удаление файла.
type StorageQuota struct {
	ID              int64     `json:"id" db:"id"`
	OwnerID         string    `json:"owner_id" db:"owner_id"`
	TotalBytesLimit int64     `json:"total_bytes_limit" db:"total_bytes_limit"`
	UsedBytes       int64     `json:"used_bytes" db:"used_bytes"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

func (q *StorageQuota) AvailableBytes() int64 {
	if q.UsedBytes >= q.TotalBytesLimit {
		return 0
	}
	return q.TotalBytesLimit - q.UsedBytes
}

type QuotaInfo struct {
	TotalSpace     int64   `json:"total_space"`
	UsedSpace      int64   `json:"used_space"`
	AvailableSpace int64   `json:"available_space"`
	UsagePercent   float64 `json:"usage_percent"`
}
