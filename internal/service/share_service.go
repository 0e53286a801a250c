package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"vaultdrive/internal/domain"
	"vaultdrive/internal/service/s3"
)

const bcryptCost = 10

// shareStore — операции репозитория ссылок, нужные сервису.
type shareStore interface {
	Create(ctx context.Context, share *domain.Share) error
	GetByToken(ctx context.Context, token string) (*domain.Share, error)
	GetByID(ctx context.Context, id uuid.UUID, ownerID string) (*domain.Share, error)
	IncrementAccess(ctx context.Context, id uuid.UUID) (bool, error)
	Save(ctx context.Context, share *domain.Share) error
	Delete(ctx context.Context, id uuid.UUID, ownerID string) error
	ListByOwner(ctx context.Context, ownerID string) ([]domain.ShareWithFile, error)
}

type fileStore interface {
	GetByUUID(ctx context.Context, id uuid.UUID, ownerID string) (*domain.File, error)
}

type ShareService struct {
	shareRepo shareStore
	fileRepo  fileStore
	storage   s3.Storage
}

func NewShareService(
	shareRepo shareStore,
	fileRepo fileStore,
	storage s3.Storage,
) *ShareService {
	return &ShareService{
		shareRepo: shareRepo,
		fileRepo:  fileRepo,
		storage:   storage,
	}
}

// CreateShareInput — параметры новой ссылки. Нулевые значения
// означают отсутствие ограничения.
type CreateShareInput struct {
	Password   string
	TTLSeconds int64
	MaxAccess  int64
}

// generateToken выдает токен из криптографически стойкого источника.
// 32 случайных байта: вероятность коллизии пренебрежимо мала, логика
// повтора при совпадении не нужна.
func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func hashPassword(password string) (*string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	h := string(hashed)
	return &h, nil
}

func (s *ShareService) CreateShare(ctx context.Context, ownerID string, fileID uuid.UUID, input CreateShareInput) (*domain.Share, error) {
	// Файл должен существовать и принадлежать владельцу
	if _, err := s.fileRepo.GetByUUID(ctx, fileID, ownerID); err != nil {
		return nil, err
	}

	token, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	share := &domain.Share{
		ID:       uuid.New(),
		FileUUID: fileID,
		OwnerID:  ownerID,
		Token:    token,
		IsActive: true,
	}

	if input.Password != "" {
		share.PasswordHash, err = hashPassword(input.Password)
		if err != nil {
			return nil, err
		}
	}
	if input.TTLSeconds > 0 {
		t := time.Now().Add(time.Duration(input.TTLSeconds) * time.Second)
		share.ExpiresAt = &t
	}
	if input.MaxAccess > 0 {
		m := input.MaxAccess
		share.MaxAccess = &m
	}

	if err := s.shareRepo.Create(ctx, share); err != nil {
		return nil, err
	}

	return share, nil
}

// evaluateAccess проверяет ссылку в фиксированном порядке: отозвана,
// истекла, исчерпана, пароль. Сравнение пароля — bcrypt, за постоянное
// время; требование безопасности, а не деталь реализации.
func evaluateAccess(share *domain.Share, password string, now time.Time) error {
	switch share.State(now) {
	case domain.ShareStateRevoked:
		return domain.ErrShareRevoked
	case domain.ShareStateExpired:
		return domain.ErrShareExpired
	case domain.ShareStateExhausted:
		return domain.ErrShareExhausted
	}

	if share.HasPassword() {
		if password == "" {
			return domain.ErrPasswordRequired
		}
		if bcrypt.CompareHashAndPassword([]byte(*share.PasswordHash), []byte(password)) != nil {
			return domain.ErrWrongPassword
		}
	}

	return nil
}

// AccessShare валидирует токен и на успехе атомарно увеличивает
// счетчик обращений. Инкремент-с-проверкой выполняется хранилищем
// одним UPDATE, гонка одновременных запросов лимит не перешагнет.
func (s *ShareService) AccessShare(ctx context.Context, token, password string) (*domain.File, s3.Object, error) {
	share, err := s.shareRepo.GetByToken(ctx, token)
	if err != nil {
		return nil, nil, err
	}

	if err := evaluateAccess(share, password, time.Now()); err != nil {
		return nil, nil, err
	}

	file, err := s.fileRepo.GetByUUID(ctx, share.FileUUID, share.OwnerID)
	if err != nil {
		return nil, nil, err
	}

	// Поток открывается до списания обращения: сбой хранилища не
	// должен сжигать попытку у ссылки с ограниченным числом доступов
	stream, err := s.storage.OpenReadStream(ctx, file.BlobID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open blob stream: %w", err)
	}

	ok, err := s.shareRepo.IncrementAccess(ctx, share.ID)
	if err != nil {
		stream.Close()
		return nil, nil, err
	}
	if !ok {
		// Лимит выбрали конкурирующие запросы между чтением и инкрементом
		stream.Close()
		return nil, nil, domain.ErrShareExhausted
	}

	return file, stream, nil
}

// UpdateShare применяет частичное обновление владельца. Незаданные
// поля не трогаются; пустой пароль снимает защиту, нулевой TTL — срок,
// нулевой лимит — ограничение по числу обращений. TTL всегда
// пересчитывается от текущего момента.
func (s *ShareService) UpdateShare(ctx context.Context, shareID uuid.UUID, ownerID string, update domain.ShareUpdate) (*domain.Share, error) {
	share, err := s.shareRepo.GetByID(ctx, shareID, ownerID)
	if err != nil {
		return nil, err
	}

	if update.Password != nil {
		if *update.Password == "" {
			share.PasswordHash = nil
		} else {
			share.PasswordHash, err = hashPassword(*update.Password)
			if err != nil {
				return nil, err
			}
		}
	}
	if update.TTLSeconds != nil {
		if *update.TTLSeconds <= 0 {
			share.ExpiresAt = nil
		} else {
			t := time.Now().Add(time.Duration(*update.TTLSeconds) * time.Second)
			share.ExpiresAt = &t
		}
	}
	if update.MaxAccess != nil {
		if *update.MaxAccess <= 0 {
			share.MaxAccess = nil
		} else {
			m := *update.MaxAccess
			share.MaxAccess = &m
		}
	}
	if update.IsActive != nil {
		share.IsActive = *update.IsActive
	}

	if err := s.shareRepo.Save(ctx, share); err != nil {
		return nil, err
	}

	return share, nil
}

func (s *ShareService) DeleteShare(ctx context.Context, shareID uuid.UUID, ownerID string) error {
	return s.shareRepo.Delete(ctx, shareID, ownerID)
}

func (s *ShareService) ListShares(ctx context.Context, ownerID string) ([]domain.ShareWithFile, error) {
	return s.shareRepo.ListByOwner(ctx, ownerID)
}
