package sql

import (
	"context"
	"time"

	"github.com/fsdevblog/shortlink/internal/models"
	"github.com/fsdevblog/shortlink/internal/repositories"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type ShortLinkRepo struct {
	db     *gorm.DB
	logger *logrus.Entry
}

func NewShortLinkRepo(db *gorm.DB, logger *logrus.Logger) *ShortLinkRepo {
	return &ShortLinkRepo{
		db:     db,
		logger: logger.WithField("module", "repository/sql/short_link"),
	}
}

// Exists проверяет, занят ли код.
func (r *ShortLinkRepo) Exists(ctx context.Context, shortCode string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ShortLink{}).
		Where("short_code = ?", shortCode).
		Count(&count).Error
	if err != nil {
		r.logger.WithError(err).Errorf("failed to check short code %s", shortCode)
		return false, ConvertErrorType(err)
	}
	return count > 0, nil
}

// Create вставляет новую активную запись с нулевым счетчиком.
// Если код уже занят, уникальный индекс отклонит вставку и вернется repositories.ErrDuplicateKey.
func (r *ShortLinkRepo) Create(ctx context.Context, originalURL, shortCode string) (*models.ShortLink, error) {
	link := models.ShortLink{
		OriginalURL: originalURL,
		ShortCode:   shortCode,
		CreatedAt:   time.Now().UTC(),
		IsActive:    true,
	}
	if err := r.db.WithContext(ctx).Create(&link).Error; err != nil {
		converted := ConvertErrorType(err)
		if !errors.Is(converted, repositories.ErrDuplicateKey) {
			r.logger.WithError(err).Errorf("failed to create record %+v", link)
		}
		return nil, converted
	}
	return &link, nil
}

// ResolveAndRecordVisit увеличивает счетчик активной ссылки на единицу и возвращает запись после инкремента.
// Проверка активности и инкремент выполняются одним UPDATE, так что деактивация между ними невозможна.
func (r *ShortLinkRepo) ResolveAndRecordVisit(ctx context.Context, shortCode string) (*models.ShortLink, error) {
	var link models.ShortLink
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.ShortLink{}).
			Where("short_code = ? AND is_active = ?", shortCode, true).
			UpdateColumn("clicks", gorm.Expr("clicks + ?", 1))
		if res.Error != nil {
			return res.Error
		}

		if err := tx.Where("short_code = ?", shortCode).First(&link).Error; err != nil {
			return err //nolint:wrapcheck
		}
		// запись есть, но не обновилась - значит она деактивирована
		if res.RowsAffected == 0 {
			return repositories.ErrDeactivated
		}
		return nil
	})
	if err != nil {
		converted := ConvertErrorType(err)
		if errors.Is(converted, repositories.ErrUnknown) {
			r.logger.WithError(err).Errorf("failed to record visit for %s", shortCode)
		}
		return nil, converted
	}
	return &link, nil
}

// GetByShortCode находит запись по коду независимо от активности.
func (r *ShortLinkRepo) GetByShortCode(ctx context.Context, shortCode string) (*models.ShortLink, error) {
	var link models.ShortLink
	if err := r.db.WithContext(ctx).Where("short_code = ?", shortCode).First(&link).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			r.logger.WithError(err).Errorf("failed to get record by short code %s", shortCode)
		}
		return nil, ConvertErrorType(err)
	}
	return &link, nil
}

// List возвращает записи в порядке создания.
func (r *ShortLinkRepo) List(ctx context.Context, offset, limit int) ([]models.ShortLink, error) {
	if limit <= 0 {
		return []models.ShortLink{}, nil
	}
	var links []models.ShortLink
	err := r.db.WithContext(ctx).
		Order("id ASC").
		Offset(max(offset, 0)).
		Limit(limit).
		Find(&links).Error
	if err != nil {
		r.logger.WithError(err).Errorf("failed to list records offset=%d limit=%d", offset, limit)
		return nil, ConvertErrorType(err)
	}
	if links == nil {
		links = []models.ShortLink{}
	}
	return links, nil
}

// Deactivate переводит ссылку в неактивное состояние. Повторный вызов не ошибка.
func (r *ShortLinkRepo) Deactivate(ctx context.Context, shortCode string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var link models.ShortLink
		if err := tx.Where("short_code = ?", shortCode).First(&link).Error; err != nil {
			return err //nolint:wrapcheck
		}
		return tx.Model(&models.ShortLink{}).
			Where("id = ?", link.ID).
			UpdateColumn("is_active", false).Error
	})
	if err != nil {
		converted := ConvertErrorType(err)
		if errors.Is(converted, repositories.ErrUnknown) {
			r.logger.WithError(err).Errorf("failed to deactivate %s", shortCode)
		}
		return converted
	}
	return nil
}

// Ping проверяет соединение с базой.
func (r *ShortLinkRepo) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return errors.Wrap(err, "get sql.DB")
	}
	return errors.Wrap(sqlDB.PingContext(ctx), "ping database")
}
