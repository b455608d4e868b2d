package memstore

import (
	"context"
	"fmt"
	"time"

	"github.com/fsdevblog/shortlink/internal/db"
	"github.com/fsdevblog/shortlink/internal/db/memory"
	"github.com/fsdevblog/shortlink/internal/models"
	"github.com/fsdevblog/shortlink/internal/repositories"
)

// ShortLinkRepo представляет собой репозиторий коротких ссылок в памяти. Ключ записи - короткий код.
type ShortLinkRepo struct {
	s *db.MemoryStorage
}

// NewShortLinkRepo создает новый экземпляр репозитория.
//
// Параметры:
//   - store: экземпляр хранилища в памяти
//
// Возвращает:
//   - *ShortLinkRepo: инициализированный репозиторий
func NewShortLinkRepo(store *db.MemoryStorage) *ShortLinkRepo {
	return &ShortLinkRepo{
		s: store,
	}
}

// Exists проверяет, занят ли код.
//
// Параметры:
//   - ctx: контекст выполнения
//   - shortCode: короткий код
//
// Возвращает:
//   - bool: true если запись с таким кодом есть
//   - error: ошибка контекста
func (r *ShortLinkRepo) Exists(ctx context.Context, shortCode string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("check short code %s: %w", shortCode, err)
	}
	return r.s.IsExist(shortCode), nil
}

// Create создает новую активную запись с нулевым счетчиком.
//
// Параметры:
//   - ctx: контекст выполнения
//   - originalURL: исходная ссылка
//   - shortCode: короткий код
//
// Возвращает:
//   - *models.ShortLink: созданная запись
//   - error: repositories.ErrDuplicateKey если код занят
func (r *ShortLinkRepo) Create(ctx context.Context, originalURL, shortCode string) (*models.ShortLink, error) {
	link, err := memory.Insert[models.ShortLink](ctx, shortCode, r.s.MStorage, func(seq uint) *models.ShortLink {
		return &models.ShortLink{
			ID:          seq,
			OriginalURL: originalURL,
			ShortCode:   shortCode,
			CreatedAt:   time.Now().UTC(),
			IsActive:    true,
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create record: %w", convertErrorType(err))
	}
	return link, nil
}

// ResolveAndRecordVisit атомарно проверяет активность и увеличивает счетчик.
//
// Параметры:
//   - ctx: контекст выполнения
//   - shortCode: короткий код
//
// Возвращает:
//   - *models.ShortLink: запись после инкремента
//   - error: repositories.ErrNotFound или repositories.ErrDeactivated
func (r *ShortLinkRepo) ResolveAndRecordVisit(ctx context.Context, shortCode string) (*models.ShortLink, error) {
	link, err := memory.Update[models.ShortLink](ctx, shortCode, r.s.MStorage, func(l *models.ShortLink) error {
		if !l.IsActive {
			return repositories.ErrDeactivated
		}
		l.Clicks++
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record visit for %s: %w", shortCode, convertErrorType(err))
	}
	return link, nil
}

// GetByShortCode получает запись по короткому коду.
//
// Параметры:
//   - ctx: контекст выполнения
//   - shortCode: короткий код
//
// Возвращает:
//   - *models.ShortLink: найденная запись
//   - error: ошибка поиска (преобразованная через convertErrorType)
func (r *ShortLinkRepo) GetByShortCode(ctx context.Context, shortCode string) (*models.ShortLink, error) {
	link, err := memory.Get[models.ShortLink](ctx, shortCode, r.s.MStorage)
	if err != nil {
		return nil, fmt.Errorf(
			"failed to get record by short code %s: %w",
			shortCode, convertErrorType(err),
		)
	}
	return link, nil
}

// List возвращает записи в порядке создания.
//
// Параметры:
//   - ctx: контекст выполнения
//   - offset: сколько записей пропустить
//   - limit: максимальное количество записей
//
// Возвращает:
//   - []models.ShortLink: страница записей
//   - error: ошибка получения (преобразованная через convertErrorType)
func (r *ShortLinkRepo) List(ctx context.Context, offset, limit int) ([]models.ShortLink, error) {
	links, err := memory.Slice[models.ShortLink](ctx, r.s.MStorage, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", convertErrorType(err))
	}
	return links, nil
}

// Deactivate помечает запись неактивной.
//
// Параметры:
//   - ctx: контекст выполнения
//   - shortCode: короткий код
//
// Возвращает:
//   - error: repositories.ErrNotFound если записи нет
func (r *ShortLinkRepo) Deactivate(ctx context.Context, shortCode string) error {
	_, err := memory.Update[models.ShortLink](ctx, shortCode, r.s.MStorage, func(l *models.ShortLink) error {
		l.IsActive = false
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to deactivate %s: %w", shortCode, convertErrorType(err))
	}
	return nil
}

// Ping проверяет доступность хранилища.
func (r *ShortLinkRepo) Ping(ctx context.Context) error {
	return r.s.Ping(ctx) //nolint:wrapcheck
}
