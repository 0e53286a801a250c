package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"vaultdrive/internal/domain"
	"vaultdrive/internal/service/s3"
)

func hashOf(t *testing.T, password string) *string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	s := string(h)
	return &s
}

func activeShare() *domain.Share {
	return &domain.Share{IsActive: true}
}

func TestEvaluateAccess(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)
	limit := int64(2)

	t.Run("open share passes", func(t *testing.T) {
		assert.NoError(t, evaluateAccess(activeShare(), "", now))
	})

	t.Run("revoked", func(t *testing.T) {
		share := activeShare()
		share.IsActive = false
		assert.ErrorIs(t, evaluateAccess(share, "", now), domain.ErrShareRevoked)
	})

	t.Run("expired", func(t *testing.T) {
		share := activeShare()
		share.ExpiresAt = &past
		assert.ErrorIs(t, evaluateAccess(share, "", now), domain.ErrShareExpired)
	})

	t.Run("expired wins over correct password", func(t *testing.T) {
		share := activeShare()
		share.ExpiresAt = &past
		share.PasswordHash = hashOf(t, "secret")
		assert.ErrorIs(t, evaluateAccess(share, "secret", now), domain.ErrShareExpired)
	})

	t.Run("not yet expired", func(t *testing.T) {
		share := activeShare()
		share.ExpiresAt = &future
		assert.NoError(t, evaluateAccess(share, "", now))
	})

	t.Run("exhausted", func(t *testing.T) {
		share := activeShare()
		share.MaxAccess = &limit
		share.AccessCount = 2
		assert.ErrorIs(t, evaluateAccess(share, "", now), domain.ErrShareExhausted)
	})

	t.Run("under the limit", func(t *testing.T) {
		share := activeShare()
		share.MaxAccess = &limit
		share.AccessCount = 1
		assert.NoError(t, evaluateAccess(share, "", now))
	})

	t.Run("password required", func(t *testing.T) {
		share := activeShare()
		share.PasswordHash = hashOf(t, "secret")
		assert.ErrorIs(t, evaluateAccess(share, "", now), domain.ErrPasswordRequired)
	})

	t.Run("wrong password", func(t *testing.T) {
		share := activeShare()
		share.PasswordHash = hashOf(t, "secret")
		assert.ErrorIs(t, evaluateAccess(share, "guess", now), domain.ErrWrongPassword)
	})

	t.Run("correct password", func(t *testing.T) {
		share := activeShare()
		share.PasswordHash = hashOf(t, "secret")
		assert.NoError(t, evaluateAccess(share, "secret", now))
	})
}

type fakeShareStore struct {
	share          *domain.Share
	incrementOK    bool
	incrementCalls int
}

func (f *fakeShareStore) Create(ctx context.Context, share *domain.Share) error { return nil }

func (f *fakeShareStore) GetByToken(ctx context.Context, token string) (*domain.Share, error) {
	if f.share == nil || f.share.Token != token {
		return nil, domain.ErrNotFound
	}
	return f.share, nil
}

func (f *fakeShareStore) GetByID(ctx context.Context, id uuid.UUID, ownerID string) (*domain.Share, error) {
	return f.share, nil
}

func (f *fakeShareStore) IncrementAccess(ctx context.Context, id uuid.UUID) (bool, error) {
	f.incrementCalls++
	return f.incrementOK, nil
}

func (f *fakeShareStore) Save(ctx context.Context, share *domain.Share) error { return nil }

func (f *fakeShareStore) Delete(ctx context.Context, id uuid.UUID, ownerID string) error { return nil }

func (f *fakeShareStore) ListByOwner(ctx context.Context, ownerID string) ([]domain.ShareWithFile, error) {
	return nil, nil
}

type fakeFileStore struct {
	file *domain.File
}

func (f *fakeFileStore) GetByUUID(ctx context.Context, id uuid.UUID, ownerID string) (*domain.File, error) {
	if f.file == nil || f.file.UUID != id {
		return nil, domain.ErrNotFound
	}
	return f.file, nil
}

type fakeBlobStream struct {
	io.Reader
	closed bool
}

func (f *fakeBlobStream) Close() error         { f.closed = true; return nil }
func (f *fakeBlobStream) ContentLength() int64 { return 0 }
func (f *fakeBlobStream) ContentType() string  { return "application/octet-stream" }

type fakeStorage struct {
	openErr error
	stream  *fakeBlobStream
}

func (f *fakeStorage) Put(ctx context.Context, key, contentType string, body io.Reader) (int64, error) {
	return 0, nil
}

func (f *fakeStorage) OpenReadStream(ctx context.Context, key string) (s3.Object, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	return f.stream, nil
}

func (f *fakeStorage) Delete(ctx context.Context, key string) error { return nil }

func accessFixture(incrementOK bool, openErr error) (*ShareService, *fakeShareStore, *fakeBlobStream) {
	file := &domain.File{
		UUID:   uuid.New(),
		BlobID: "blob-1",
	}
	store := &fakeShareStore{
		share: &domain.Share{
			ID:       uuid.New(),
			FileUUID: file.UUID,
			Token:    "tok",
			IsActive: true,
		},
		incrementOK: incrementOK,
	}
	stream := &fakeBlobStream{Reader: strings.NewReader("payload")}
	svc := NewShareService(store, &fakeFileStore{file: file}, &fakeStorage{openErr: openErr, stream: stream})
	return svc, store, stream
}

func TestAccessShare(t *testing.T) {
	ctx := context.Background()

	t.Run("success increments once", func(t *testing.T) {
		svc, store, stream := accessFixture(true, nil)

		file, obj, err := svc.AccessShare(ctx, "tok", "")
		require.NoError(t, err)
		assert.Equal(t, store.share.FileUUID, file.UUID)
		assert.Same(t, stream, obj)
		assert.Equal(t, 1, store.incrementCalls)
		assert.False(t, stream.closed)
	})

	// Счетчик обращений — невозвращаемый ресурс ссылки с лимитом.
	// Сбой хранилища до открытия потока не должен его тратить.
	t.Run("blob failure does not consume an access", func(t *testing.T) {
		svc, store, _ := accessFixture(true, errors.New("blob store down"))

		_, _, err := svc.AccessShare(ctx, "tok", "")
		require.Error(t, err)
		assert.Equal(t, 0, store.incrementCalls)
	})

	t.Run("racing exhaustion closes the stream", func(t *testing.T) {
		svc, store, stream := accessFixture(false, nil)

		_, _, err := svc.AccessShare(ctx, "tok", "")
		assert.ErrorIs(t, err, domain.ErrShareExhausted)
		assert.Equal(t, 1, store.incrementCalls)
		assert.True(t, stream.closed)
	})

	t.Run("unknown token", func(t *testing.T) {
		svc, _, _ := accessFixture(true, nil)

		_, _, err := svc.AccessShare(ctx, "missing", "")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestGenerateToken(t *testing.T) {
	token, err := generateToken()
	require.NoError(t, err)
	// 32 байта источника — 64 hex-символа
	assert.Len(t, token, 64)

	other, err := generateToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}
