package services

import (
	"context"

	"github.com/fsdevblog/shortlink/internal/models"
	"github.com/fsdevblog/shortlink/internal/repositories"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// ShortLinkService создает короткие ссылки и учитывает переходы по ним.
type ShortLinkService struct {
	repo      ShortLinkRepository
	allocator *Allocator
	opts      AllocatorOptions
	logger    *logrus.Entry
}

// NewShortLinkService создает сервис коротких ссылок.
//
// Параметры:
//   - repo: хранилище коротких ссылок
//   - opts: настройки генератора кодов
//   - logger: логгер
//
// Возвращает:
//   - *ShortLinkService: инициализированный сервис
func NewShortLinkService(repo ShortLinkRepository, opts AllocatorOptions, logger *logrus.Logger) *ShortLinkService {
	opts = opts.withDefaults()
	return &ShortLinkService{
		repo:      repo,
		allocator: NewAllocator(repo, opts),
		opts:      opts,
		logger:    logger.WithField("module", "services/short_link"),
	}
}

// Shorten подбирает свободный код и сохраняет новую запись.
//
// Если между проверкой и вставкой код занял параллельный запрос, подбор повторяется.
// Число повторов ограничено MaxAttempts.
//
// Параметры:
//   - ctx: контекст выполнения
//   - originalURL: исходная ссылка
//
// Возвращает:
//   - *models.ShortLink: созданная запись
//   - error: ErrInvalidInput, ErrAllocationExhausted, ErrDuplicateCode или ErrUnknown
func (s *ShortLinkService) Shorten(ctx context.Context, originalURL string) (*models.ShortLink, error) {
	for attempt := 1; attempt <= s.opts.MaxAttempts; attempt++ {
		code, err := s.allocator.Allocate(ctx, originalURL)
		if err != nil {
			return nil, err
		}

		link, err := s.repo.Create(ctx, originalURL, code)
		if err == nil {
			return link, nil
		}
		if !errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, errors.Wrapf(ErrUnknown, "create short link: %s", err.Error())
		}

		s.logger.WithFields(logrus.Fields{
			"code":    code,
			"attempt": attempt,
		}).Debug("short code taken concurrently, retrying")
	}

	return nil, errors.Wrapf(ErrDuplicateCode, "%d insert attempts for url `%s`", s.opts.MaxAttempts, originalURL)
}

// Redirect находит активную ссылку по коду и учитывает переход.
func (s *ShortLinkService) Redirect(ctx context.Context, shortCode string) (*models.ShortLink, error) {
	link, err := s.repo.ResolveAndRecordVisit(ctx, shortCode)
	if err != nil {
		return nil, convertRepoError(err, shortCode)
	}
	return link, nil
}

// Stats возвращает запись по коду без учета перехода. Активность записи не проверяется.
func (s *ShortLinkService) Stats(ctx context.Context, shortCode string) (*models.ShortLink, error) {
	link, err := s.repo.GetByShortCode(ctx, shortCode)
	if err != nil {
		return nil, convertRepoError(err, shortCode)
	}
	return link, nil
}

// List возвращает записи в порядке создания.
func (s *ShortLinkService) List(ctx context.Context, offset, limit int) ([]models.ShortLink, error) {
	if offset < 0 || limit < 0 {
		return nil, errors.Wrapf(ErrInvalidInput, "offset %d, limit %d", offset, limit)
	}
	links, err := s.repo.List(ctx, offset, limit)
	if err != nil {
		return nil, errors.Wrapf(ErrUnknown, "list short links: %s", err.Error())
	}
	return links, nil
}

// Deactivate выключает ссылку. Повторный вызов для выключенной ссылки не является ошибкой.
func (s *ShortLinkService) Deactivate(ctx context.Context, shortCode string) error {
	if err := s.repo.Deactivate(ctx, shortCode); err != nil {
		return convertRepoError(err, shortCode)
	}
	return nil
}

func convertRepoError(err error, shortCode string) error {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return errors.Wrapf(ErrNotFound, "code %s not found", shortCode)
	case errors.Is(err, repositories.ErrDeactivated):
		return errors.Wrapf(ErrDeactivated, "code %s", shortCode)
	default:
		return errors.Wrapf(ErrUnknown, "code %s: %s", shortCode, err.Error())
	}
}
