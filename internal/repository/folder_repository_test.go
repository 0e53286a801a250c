package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"vaultdrive/internal/domain"
	"vaultdrive/internal/pathtree"
)

// Вставка файла и переименование его папки гоняются одновременно.
// Блокировка родительской строки обязана выстроить их друг за другом:
// в любом исходе путь файла начинается с актуального пути папки.
// Без блокировки вставка может зафиксировать путь по старому префиксу,
// который уже ни один каскад не перепишет.
func TestFileCreateSerializedWithFolderRename(t *testing.T) {
	db := testDB(t)
	folderRepo := NewFolderRepository(db)
	fileRepo := NewFileRepository(db)
	ctx := context.Background()

	owner := "user-1"
	parent := &domain.Folder{Name: "Documents", OwnerID: owner}
	require.NoError(t, folderRepo.Create(ctx, parent))

	for i := 0; i < 20; i++ {
		file := &domain.File{
			UUID:         uuid.New(),
			Filename:     fmt.Sprintf("report-%d.txt", i),
			OriginalName: fmt.Sprintf("report-%d.txt", i),
			MIMEType:     "text/plain",
			SizeBytes:    1,
			OwnerID:      owner,
			FolderID:     &parent.ID,
			BlobID:       uuid.New().String(),
		}
		newName := fmt.Sprintf("Documents-%d", i)

		errs := make(chan error, 2)
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			errs <- fileRepo.Create(ctx, file)
		}()
		go func() {
			defer wg.Done()
			_, err := folderRepo.Rename(ctx, parent.ID, newName, owner)
			errs <- err
		}()
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		current, err := folderRepo.GetByID(ctx, parent.ID, owner)
		require.NoError(t, err)
		saved, err := fileRepo.GetByUUID(ctx, file.UUID, owner)
		require.NoError(t, err)
		require.Equal(t, pathtree.Join(current.Path, saved.Filename), saved.Path,
			"file path must follow the folder's committed path")
	}
}

// Та же гонка для вложенной папки: создание ребенка против
// переименования родителя. Цепочка предков и путь ребенка обязаны
// соответствовать зафиксированному состоянию родителя.
func TestFolderCreateSerializedWithParentRename(t *testing.T) {
	db := testDB(t)
	folderRepo := NewFolderRepository(db)
	ctx := context.Background()

	owner := "user-1"
	parent := &domain.Folder{Name: "Projects", OwnerID: owner}
	require.NoError(t, folderRepo.Create(ctx, parent))

	for i := 0; i < 20; i++ {
		child := &domain.Folder{
			Name:     fmt.Sprintf("child-%d", i),
			OwnerID:  owner,
			ParentID: &parent.ID,
		}
		newName := fmt.Sprintf("Projects-%d", i)

		errs := make(chan error, 2)
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			errs <- folderRepo.Create(ctx, child)
		}()
		go func() {
			defer wg.Done()
			_, err := folderRepo.Rename(ctx, parent.ID, newName, owner)
			errs <- err
		}()
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		current, err := folderRepo.GetByID(ctx, parent.ID, owner)
		require.NoError(t, err)
		saved, err := folderRepo.GetByID(ctx, child.ID, owner)
		require.NoError(t, err)
		require.Equal(t, pathtree.Join(current.Path, saved.Name), saved.Path,
			"child path must follow the parent's committed path")
		require.Equal(t, current.Name, saved.PathArray[len(saved.PathArray)-1].Name,
			"cached ancestor chain must carry the parent's committed name")
	}
}
