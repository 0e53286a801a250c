package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"vaultdrive/internal/domain"
)

// Счетчик обращений растет одним условным UPDATE, поэтому при любом
// числе одновременных запросов лимит не перешагивается: успешных
// инкрементов ровно max_access, остальным отказ.
func TestIncrementAccessNeverExceedsCap(t *testing.T) {
	db := testDB(t)
	fileRepo := NewFileRepository(db)
	shareRepo := NewShareRepository(db)
	ctx := context.Background()

	owner := "user-1"
	file := &domain.File{
		UUID:         uuid.New(),
		Filename:     "doc.pdf",
		OriginalName: "doc.pdf",
		MIMEType:     "application/pdf",
		SizeBytes:    1,
		OwnerID:      owner,
		BlobID:       uuid.New().String(),
	}
	require.NoError(t, fileRepo.Create(ctx, file))

	maxAccess := int64(2)
	share := &domain.Share{
		ID:        uuid.New(),
		FileUUID:  file.UUID,
		OwnerID:   owner,
		Token:     "tok-" + uuid.NewString(),
		MaxAccess: &maxAccess,
		IsActive:  true,
	}
	require.NoError(t, shareRepo.Create(ctx, share))

	const attempts = 10
	granted := make(chan bool, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := shareRepo.IncrementAccess(ctx, share.ID)
			granted <- err == nil && ok
		}()
	}
	wg.Wait()
	close(granted)

	successes := 0
	for ok := range granted {
		if ok {
			successes++
		}
	}
	require.Equal(t, int(maxAccess), successes)

	stored, err := shareRepo.GetByID(ctx, share.ID, owner)
	require.NoError(t, err)
	require.Equal(t, maxAccess, stored.AccessCount)
}
