package controllers

import (
	"context"

	"github.com/fsdevblog/shortlink/internal/models"
)

//go:generate mockgen -source=interfaces.go -destination=mocksctrl/store.go -package=mocksctrl

type ConnectionChecker interface {
	CheckConnection(ctx context.Context) error
}

type ShortLinkStore interface {
	// Shorten создает запись с новым коротким кодом.
	Shorten(ctx context.Context, originalURL string) (*models.ShortLink, error)
	// Redirect находит активную запись и увеличивает счетчик переходов.
	Redirect(ctx context.Context, shortCode string) (*models.ShortLink, error)
	// Stats возвращает запись без учета перехода.
	Stats(ctx context.Context, shortCode string) (*models.ShortLink, error)
	List(ctx context.Context, offset, limit int) ([]models.ShortLink, error)
	Deactivate(ctx context.Context, shortCode string) error
}
