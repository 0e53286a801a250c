package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"path/filepath"

	"github.com/google/uuid"

	"vaultdrive/internal/domain"
	"vaultdrive/internal/pathtree"
	"vaultdrive/internal/repository"
	"vaultdrive/internal/service/s3"
)

type FileService struct {
	fileRepo     *repository.FileRepository
	storage      s3.Storage
	quotaService *StorageQuotaService
}

func NewFileService(
	fileRepo *repository.FileRepository,
	storage s3.Storage,
	quotaService *StorageQuotaService,
) *FileService {
	return &FileService{
		fileRepo:     fileRepo,
		storage:      storage,
		quotaService: quotaService,
	}
}

// generateFilename выдает непрозрачный ключ хранения: случайный hex
// плюс исходное расширение. От отображаемого имени не зависит.
func generateFilename(originalName string) (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate filename: %w", err)
	}
	return hex.EncodeToString(b) + filepath.Ext(originalName), nil
}

// SaveFile загружает содержимое в blob-хранилище потоком и затем
// фиксирует метаданные. Пока хранилище не подтвердило запись, строка
// файла не создается; если метаданные не закоммитились, загруженный
// объект добросовестно подчищается.
func (s *FileService) SaveFile(ctx context.Context, upload domain.FileUpload, declaredSize int64, body io.Reader) (*domain.File, error) {
	if err := pathtree.ValidateName(upload.OriginalName); err != nil {
		return nil, err
	}

	// Ранний отказ по заявленному размеру, до передачи байтов
	if declaredSize > 0 {
		ok, err := s.quotaService.CheckSpaceAvailable(ctx, upload.OwnerID, declaredSize)
		if err != nil {
			return nil, fmt.Errorf("failed to check available space: %w", err)
		}
		if !ok {
			return nil, fmt.Errorf("%w: need %d bytes", domain.ErrQuotaExceeded, declaredSize)
		}
	}

	filename, err := generateFilename(upload.OriginalName)
	if err != nil {
		return nil, err
	}

	file := &domain.File{
		UUID:         uuid.New(),
		Filename:     filename,
		OriginalName: upload.OriginalName,
		MIMEType:     upload.MIMEType,
		Encoding:     upload.Encoding,
		OwnerID:      upload.OwnerID,
		FolderID:     upload.FolderID,
		BlobID:       uuid.New().String(),
	}

	size, err := s.storage.Put(ctx, file.BlobID, file.MIMEType, body)
	if err != nil {
		return nil, fmt.Errorf("failed to store file content: %w", err)
	}
	file.SizeBytes = size

	// Фактический размер известен только теперь
	ok, err := s.quotaService.CheckSpaceAvailable(ctx, upload.OwnerID, size)
	if err == nil && !ok {
		s.cleanupBlob(file.BlobID)
		return nil, fmt.Errorf("%w: need %d bytes", domain.ErrQuotaExceeded, size)
	}
	if err != nil {
		s.cleanupBlob(file.BlobID)
		return nil, fmt.Errorf("failed to check available space: %w", err)
	}

	if err := s.fileRepo.Create(ctx, file); err != nil {
		s.cleanupBlob(file.BlobID)
		return nil, err
	}

	return file, nil
}

// cleanupBlob — компенсирующее удаление объекта, на который так и не
// сослались метаданные. Неудача логируется, не эскалируется: вызывающему
// уже уходит первичная ошибка.
func (s *FileService) cleanupBlob(blobID string) {
	if err := s.storage.Delete(context.Background(), blobID); err != nil {
		log.Printf("[SaveFile] Failed to clean up orphaned blob %s: %v", blobID, err)
	}
}

func (s *FileService) GetFile(ctx context.Context, fileID uuid.UUID, ownerID string) (*domain.File, error) {
	return s.fileRepo.GetByUUID(ctx, fileID, ownerID)
}

// DownloadFile возвращает метаданные и поток содержимого.
func (s *FileService) DownloadFile(ctx context.Context, fileID uuid.UUID, ownerID string) (*domain.File, s3.Object, error) {
	file, err := s.fileRepo.GetByUUID(ctx, fileID, ownerID)
	if err != nil {
		return nil, nil, err
	}

	stream, err := s.storage.OpenReadStream(ctx, file.BlobID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open blob stream: %w", err)
	}

	return file, stream, nil
}

// DeleteFile сначала удаляет содержимое из blob-хранилища и только
// после успеха — метаданные. Если хранилище отказало, строка остается
// на месте и оператору уходит ошибка несогласованности, а не молчаливо
// висящая ссылка в никуда.
func (s *FileService) DeleteFile(ctx context.Context, fileID uuid.UUID, ownerID string) error {
	file, err := s.fileRepo.GetByUUID(ctx, fileID, ownerID)
	if err != nil {
		return err
	}

	if err := s.storage.Delete(ctx, file.BlobID); err != nil {
		return fmt.Errorf("%w: blob %s: %v", domain.ErrStorageInconsistency, file.BlobID, err)
	}

	return s.fileRepo.Delete(ctx, fileID, ownerID)
}

// ListFiles возвращает файлы владельца в папке (nil — корневой уровень).
func (s *FileService) ListFiles(ctx context.Context, ownerID string, folderID *int64) ([]domain.File, error) {
	return s.fileRepo.ListByFolder(ctx, ownerID, folderID, "original_name", "ASC")
}
