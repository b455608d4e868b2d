package services

import (
	"context"

	"github.com/fsdevblog/shortlink/internal/models"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mock.go -package=mocks

// ShortLinkRepository описывает хранилище коротких ссылок (журнал переходов).
type ShortLinkRepository interface {
	// Exists проверяет, занят ли код. Не имеет побочных эффектов.
	Exists(ctx context.Context, shortCode string) (bool, error)
	// Create создает активную запись с нулевым счетчиком. Возвращает repositories.ErrDuplicateKey если код занят.
	Create(ctx context.Context, originalURL, shortCode string) (*models.ShortLink, error)
	// ResolveAndRecordVisit атомарно проверяет активность записи и увеличивает счетчик переходов.
	ResolveAndRecordVisit(ctx context.Context, shortCode string) (*models.ShortLink, error)
	// GetByShortCode находит запись по коду без изменения счетчика.
	GetByShortCode(ctx context.Context, shortCode string) (*models.ShortLink, error)
	// List возвращает записи в порядке создания.
	List(ctx context.Context, offset, limit int) ([]models.ShortLink, error)
	// Deactivate помечает запись неактивной.
	Deactivate(ctx context.Context, shortCode string) error
}
