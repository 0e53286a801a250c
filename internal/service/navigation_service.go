package service

import (
	"context"
	"strings"

	"vaultdrive/internal/domain"
	"vaultdrive/internal/repository"
)

type NavigationService struct {
	folderRepo *repository.FolderRepository
	fileRepo   *repository.FileRepository
}

func NewNavigationService(folderRepo *repository.FolderRepository, fileRepo *repository.FileRepository) *NavigationService {
	return &NavigationService{
		folderRepo: folderRepo,
		fileRepo:   fileRepo,
	}
}

// Разрешенные ключи сортировки и соответствующие им колонки папок
// и файлов. Все остальное сводится к сортировке по имени.
var sortColumns = map[string]struct {
	folder string
	file   string
}{
	"name":       {"name", "original_name"},
	"created_at": {"created_at", "created_at"},
	"updated_at": {"updated_at", "updated_at"},
	"size":       {"name", "size_bytes"},
}

// ListContents возвращает папки и файлы непосредственно под parentID
// (nil — корневой уровень). Побочных эффектов нет.
func (s *NavigationService) ListContents(ctx context.Context, ownerID string, parentID *int64, sort, order string) (*domain.FolderContent, error) {
	cols, ok := sortColumns[sort]
	if !ok {
		cols = sortColumns["name"]
	}

	direction := "ASC"
	if strings.EqualFold(order, "desc") {
		direction = "DESC"
	}

	folders, err := s.folderRepo.ListChildren(ctx, ownerID, parentID, cols.folder, direction)
	if err != nil {
		return nil, err
	}

	files, err := s.fileRepo.ListByFolder(ctx, ownerID, parentID, cols.file, direction)
	if err != nil {
		return nil, err
	}

	return &domain.FolderContent{
		Folders: folders,
		Files:   files,
		Total:   len(folders) + len(files),
	}, nil
}

// SearchResults — результат поиска по именам папок и файлов.
type SearchResults struct {
	Folders []domain.Folder `json:"folders"`
	Files   []domain.File   `json:"files"`
}

// Search ищет по фрагменту имени без учета регистра. type сужает
// поиск до папок или файлов, пустое значение — и то и другое.
func (s *NavigationService) Search(ctx context.Context, ownerID, query, resourceType string) (*SearchResults, error) {
	results := &SearchResults{
		Folders: []domain.Folder{},
		Files:   []domain.File{},
	}

	if resourceType == "" || resourceType == "folder" {
		folders, err := s.folderRepo.SearchByName(ctx, ownerID, query)
		if err != nil {
			return nil, err
		}
		results.Folders = folders
	}

	if resourceType == "" || resourceType == "file" {
		files, err := s.fileRepo.SearchByName(ctx, ownerID, query)
		if err != nil {
			return nil, err
		}
		results.Files = files
	}

	return results, nil
}

// GetBreadcrumb восстанавливает навигационную цепочку из закешированной
// pathArray, без повторного обхода родителей: синтетический корень,
// предки, сама папка.
func (s *NavigationService) GetBreadcrumb(ctx context.Context, folderID int64, ownerID string) ([]domain.BreadcrumbItem, error) {
	folder, err := s.folderRepo.GetByID(ctx, folderID, ownerID)
	if err != nil {
		return nil, err
	}

	crumbs := make([]domain.BreadcrumbItem, 0, len(folder.PathArray)+2)
	crumbs = append(crumbs, domain.BreadcrumbItem{ID: nil, Name: "Root"})
	for _, entry := range folder.PathArray {
		id := entry.ID
		crumbs = append(crumbs, domain.BreadcrumbItem{ID: &id, Name: entry.Name})
	}
	id := folder.ID
	crumbs = append(crumbs, domain.BreadcrumbItem{ID: &id, Name: folder.Name})

	return crumbs, nil
}
