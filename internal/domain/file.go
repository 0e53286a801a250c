package domain

import (
	"github.com/google/uuid"
	"time"
)

type File struct {
	UUID         uuid.UUID `json:"uuid" db:"uuid"`
	Filename     string    `json:"filename" db:"filename"`
	OriginalName string    `json:"original_name" db:"original_name"`
	MIMEType     string    `json:"mime_type" db:"mime_type"`
	Encoding     string    `json:"encoding" db:"encoding"`
	SizeBytes    int64     `json:"size_bytes" db:"size_bytes"`
	OwnerID      string    `json:"owner_id" db:"owner_id"`
	FolderID     *int64    `json:"folder_id,omitempty" db:"folder_id"`
	Path         string    `json:"path" db:"path"`
	BlobID       string    `json:"-" db:"blob_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// FileUpload — метаданные загружаемого файла. Содержимое передается
// отдельным потоком, в память целиком не читается.
type FileUpload struct {
	OriginalName string
	MIMEType     string
	Encoding     string
	FolderID     *int64
	OwnerID      string
}
