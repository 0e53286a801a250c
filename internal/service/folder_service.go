package service

import (
	"context"
	"log"

	"vaultdrive/internal/domain"
	"vaultdrive/internal/pathtree"
	"vaultdrive/internal/repository"
	"vaultdrive/internal/service/s3"
)

type FolderService struct {
	folderRepo *repository.FolderRepository
	storage    s3.Storage
}

func NewFolderService(folderRepo *repository.FolderRepository, storage s3.Storage) *FolderService {
	return &FolderService{
		folderRepo: folderRepo,
		storage:    storage,
	}
}

func (s *FolderService) CreateFolder(ctx context.Context, name string, parentID *int64, ownerID string) (*domain.Folder, error) {
	if err := pathtree.ValidateName(name); err != nil {
		return nil, err
	}

	folder := &domain.Folder{
		Name:     name,
		OwnerID:  ownerID,
		ParentID: parentID,
	}

	if err := s.folderRepo.Create(ctx, folder); err != nil {
		return nil, err
	}

	return folder, nil
}

func (s *FolderService) GetFolder(ctx context.Context, folderID int64, ownerID string) (*domain.Folder, error) {
	return s.folderRepo.GetByID(ctx, folderID, ownerID)
}

func (s *FolderService) RenameFolder(ctx context.Context, folderID int64, newName, ownerID string) (*domain.Folder, error) {
	if err := pathtree.ValidateName(newName); err != nil {
		return nil, err
	}

	return s.folderRepo.Rename(ctx, folderID, newName, ownerID)
}

func (s *FolderService) MoveFolder(ctx context.Context, folderID int64, destinationID *int64, ownerID string) (*domain.Folder, error) {
	return s.folderRepo.Move(ctx, folderID, destinationID, ownerID)
}

// DeleteFolder удаляет поддерево одним коммитом, после чего чистит
// blob-объекты удаленных файлов. Ошибки чистки только логируются:
// метаданные уже согласованы, осиротевший объект доберет оператор.
func (s *FolderService) DeleteFolder(ctx context.Context, folderID int64, ownerID string) error {
	blobIDs, err := s.folderRepo.Delete(ctx, folderID, ownerID)
	if err != nil {
		return err
	}

	for _, blobID := range blobIDs {
		if err := s.storage.Delete(ctx, blobID); err != nil {
			log.Printf("[DeleteFolder] Failed to delete blob %s: %v", blobID, err)
		}
	}

	return nil
}

// GetFolderStructure возвращает все папки владельца в порядке путей.
func (s *FolderService) GetFolderStructure(ctx context.Context, ownerID string) ([]domain.Folder, error) {
	return s.folderRepo.GetUserFolders(ctx, ownerID)
}
