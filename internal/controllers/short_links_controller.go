package controllers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/fsdevblog/shortlink/internal/models"
	"github.com/fsdevblog/shortlink/internal/services"

	"github.com/gin-gonic/gin"
)

// hostnameRegex в соответствии с `RFC 1123`. Имена без зоны (intranet) допускаются, точка в конце - нет.
var hostnameRegex = regexp.MustCompile(`^[a-zA-Z0-9](-?[a-zA-Z0-9])*(\.[a-zA-Z0-9](-?[a-zA-Z0-9])*)*$`)

// ShortenRequest тело запроса POST /api/shorten.
type ShortenRequest struct {
	OriginalURL string `json:"original_url" binding:"required"`
}

// ShortLinkResponse представление записи в ответах API.
type ShortLinkResponse struct {
	ID          uint      `json:"id"`
	OriginalURL string    `json:"original_url"`
	ShortCode   string    `json:"short_code"`
	ShortURL    string    `json:"short_url"`
	CreatedAt   time.Time `json:"created_at"`
	IsActive    bool      `json:"is_active"`
	Clicks      int64     `json:"clicks"`
}

// StatsResponse ответ GET /api/stats/:shortCode.
type StatsResponse struct {
	OriginalURL string    `json:"original_url"`
	ShortCode   string    `json:"short_code"`
	Clicks      int64     `json:"clicks"`
	CreatedAt   time.Time `json:"created_at"`
}

type ShortLinkController struct {
	linkService ShortLinkStore
	baseURL     *url.URL
}

func NewShortLinkController(linkService ShortLinkStore, baseURL *url.URL) *ShortLinkController {
	return &ShortLinkController{
		linkService: linkService,
		baseURL:     baseURL,
	}
}

// Redirect обрабатывает GET /:shortCode. Каждый успешный переход увеличивает счетчик ссылки.
//
// Возвращает:
//   - HTTP 307 с заголовком Location
//   - HTTP 404 если код не найден
//   - HTTP 410 если ссылка выключена
func (s *ShortLinkController) Redirect(ctx *gin.Context) {
	reqCtx, cancel := context.WithTimeout(ctx.Request.Context(), DefaultRequestTimeout)
	defer cancel()

	link, err := s.linkService.Redirect(reqCtx, ctx.Param("shortCode"))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	ctx.Redirect(http.StatusTemporaryRedirect, link.OriginalURL)
}

// CreateShortLink создает короткую ссылку. Принимает json {"original_url": "..."} либо ссылку в теле запроса
// как есть. Формат ответа совпадает с форматом запроса.
func (s *ShortLinkController) CreateShortLink(ctx *gin.Context) {
	isJSON := isJSONRequest(ctx)
	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, MaxBodySize)

	var rawURL string
	if isJSON {
		var req ShortenRequest
		if err := ctx.ShouldBindJSON(&req); err != nil {
			_ = ctx.Error(fmt.Errorf("bind shorten request: %w", err))
			if isBodyTooLarge(err) {
				respondError(ctx, http.StatusRequestEntityTooLarge, ErrBodyTooLarge)
				return
			}
			respondError(ctx, http.StatusBadRequest, errors.New("invalid json body"))
			return
		}
		rawURL = req.OriginalURL
	} else {
		body, readErr := io.ReadAll(ctx.Request.Body)
		if readErr != nil {
			_ = ctx.Error(fmt.Errorf("read body: %w", readErr))
			if isBodyTooLarge(readErr) {
				respondError(ctx, http.StatusRequestEntityTooLarge, ErrBodyTooLarge)
				return
			}
			respondError(ctx, http.StatusInternalServerError, ErrInternal)
			return
		}
		rawURL = string(body)
	}
	rawURL = strings.TrimSpace(rawURL)

	// ссылка сохраняется в исходном виде, разбор нужен только для проверки.
	if _, parseErr := validateURL(rawURL); parseErr != nil {
		respondError(ctx, http.StatusUnprocessableEntity, parseErr)
		return
	}

	reqCtx, cancel := context.WithTimeout(ctx.Request.Context(), DefaultRequestTimeout)
	defer cancel()

	link, err := s.linkService.Shorten(reqCtx, rawURL)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	shortURL := s.getShortURL(ctx.Request, link.ShortCode)
	if isJSON {
		ctx.JSON(http.StatusCreated, s.toResponse(link, shortURL))
		return
	}
	ctx.String(http.StatusCreated, shortURL)
}

// Stats обрабатывает GET /api/stats/:shortCode. Счетчик переходов не изменяется.
func (s *ShortLinkController) Stats(ctx *gin.Context) {
	reqCtx, cancel := context.WithTimeout(ctx.Request.Context(), DefaultRequestTimeout)
	defer cancel()

	link, err := s.linkService.Stats(reqCtx, ctx.Param("shortCode"))
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, StatsResponse{
		OriginalURL: link.OriginalURL,
		ShortCode:   link.ShortCode,
		Clicks:      link.Clicks,
		CreatedAt:   link.CreatedAt,
	})
}

// List обрабатывает GET /api/urls?skip=0&limit=100. limit ограничен MaxListLimit.
func (s *ShortLinkController) List(ctx *gin.Context) {
	skip, skipErr := queryInt(ctx, "skip", 0)
	limit, limitErr := queryInt(ctx, "limit", DefaultListLimit)
	if skipErr != nil || limitErr != nil {
		respondError(ctx, http.StatusBadRequest, ErrBadPaging)
		return
	}
	limit = min(limit, MaxListLimit)

	reqCtx, cancel := context.WithTimeout(ctx.Request.Context(), DefaultRequestTimeout)
	defer cancel()

	links, err := s.linkService.List(reqCtx, skip, limit)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	resp := make([]ShortLinkResponse, 0, len(links))
	for i := range links {
		resp = append(resp, s.toResponse(&links[i], s.getShortURL(ctx.Request, links[i].ShortCode)))
	}
	ctx.JSON(http.StatusOK, resp)
}

// respondServiceError переводит ошибки сервиса в HTTP статусы.
func respondServiceError(ctx *gin.Context, err error) {
	_ = ctx.Error(err)
	switch {
	case errors.Is(err, services.ErrNotFound):
		respondError(ctx, http.StatusNotFound, ErrRecordNotFound)
	case errors.Is(err, services.ErrDeactivated):
		respondError(ctx, http.StatusGone, ErrGone)
	case errors.Is(err, services.ErrInvalidInput):
		respondError(ctx, http.StatusUnprocessableEntity, services.ErrInvalidInput)
	default:
		respondError(ctx, http.StatusInternalServerError, ErrInternal)
	}
}

func (s *ShortLinkController) toResponse(link *models.ShortLink, shortURL string) ShortLinkResponse {
	return ShortLinkResponse{
		ID:          link.ID,
		OriginalURL: link.OriginalURL,
		ShortCode:   link.ShortCode,
		ShortURL:    shortURL,
		CreatedAt:   link.CreatedAt,
		IsActive:    link.IsActive,
		Clicks:      link.Clicks,
	}
}

// getShortURL вспомогательный метод который создает короткую ссылку.
func (s *ShortLinkController) getShortURL(r *http.Request, shortCode string) string {
	var scheme = "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if s.baseURL == nil {
		return fmt.Sprintf("%s://%s/%s", scheme, r.Host, shortCode)
	}
	return fmt.Sprintf("%s/%s", s.baseURL, shortCode)
}

// queryInt читает неотрицательное целое из query параметра.
func queryInt(ctx *gin.Context, key string, defaultValue int) (int, error) {
	raw, ok := ctx.GetQuery(key)
	if !ok {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if v < 0 {
		return 0, fmt.Errorf("%s must not be negative", key)
	}
	return v, nil
}

// validateURL проверяет, является ли строка корректным URL.
func validateURL(rawURL string) (*url.URL, error) {
	parsedURL, err := url.ParseRequestURI(rawURL)

	if err != nil {
		return nil, errors.New("invalid URL format")
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, errors.New("URL must have http or https scheme")
	}

	if parsedURL.Host == "" {
		return nil, errors.New("URL must have a host")
	}

	hostname := parsedURL.Hostname()
	if net.ParseIP(hostname) == nil && !hostnameRegex.MatchString(hostname) {
		return nil, errors.New("invalid hostname")
	}

	return parsedURL, nil
}
