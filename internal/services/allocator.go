package services

import (
	"context"
	"crypto/md5" //nolint:gosec
	"encoding/base64"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/fsdevblog/shortlink/internal/models"

	"github.com/pkg/errors"
)

const (
	DefaultMaxAttempts = 10

	alphanumeric = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// CodeChecker проверяет занятость кода в хранилище.
type CodeChecker interface {
	Exists(ctx context.Context, shortCode string) (bool, error)
}

// AllocatorOptions настройки генератора кодов.
type AllocatorOptions struct {
	// CodeLength длина кода. По умолчанию models.DefaultShortCodeLength.
	CodeLength int
	// MaxAttempts максимальное число попыток подобрать свободный код. По умолчанию DefaultMaxAttempts.
	MaxAttempts int
}

func (o AllocatorOptions) withDefaults() AllocatorOptions {
	if o.CodeLength <= 0 {
		o.CodeLength = models.DefaultShortCodeLength
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = DefaultMaxAttempts
	}
	return o
}

// Allocator подбирает свободный короткий код для ссылки.
type Allocator struct {
	checker CodeChecker
	opts    AllocatorOptions
	nonce   func(attempt int) string
}

func NewAllocator(checker CodeChecker, opts AllocatorOptions) *Allocator {
	return &Allocator{
		checker: checker,
		opts:    opts.withDefaults(),
		nonce: func(attempt int) string {
			return strconv.FormatInt(time.Now().UnixNano(), 10) + "." + strconv.Itoa(attempt)
		},
	}
}

// Allocate возвращает код, которого на момент проверки нет в хранилище.
//
// Первый кандидат вычисляется из самой ссылки, при коллизии к ссылке добавляется метка времени.
// Свободность кода не гарантирует успешной вставки: между проверкой и вставкой код может занять
// параллельный запрос, это решается уникальным индексом хранилища.
//
// Параметры:
//   - ctx: контекст выполнения
//   - originalURL: исходная ссылка, должна начинаться с http:// или https://
//
// Возвращает:
//   - string: свободный код длиной CodeLength
//   - error: ErrInvalidInput, ErrAllocationExhausted или ErrUnknown при ошибке хранилища
func (a *Allocator) Allocate(ctx context.Context, originalURL string) (string, error) {
	if !hasHTTPScheme(originalURL) {
		return "", errors.Wrapf(ErrInvalidInput, "url `%s` must start with http:// or https://", originalURL)
	}

	input := originalURL
	for attempt := 1; attempt <= a.opts.MaxAttempts; attempt++ {
		code := GenerateCode(input, a.opts.CodeLength)

		exists, err := a.checker.Exists(ctx, code)
		if err != nil {
			return "", errors.Wrapf(ErrUnknown, "check code %s: %s", code, err.Error())
		}
		if !exists {
			return code, nil
		}

		input = originalURL + a.nonce(attempt)
	}

	return "", errors.Wrapf(ErrAllocationExhausted, "%d attempts for url `%s`", a.opts.MaxAttempts, originalURL)
}

// GenerateCode вычисляет код нужной длины из строки.
// md5 от входа кодируется в URL-safe base64, из результата остаются только буквы и цифры.
// Если символов не хватает, код дополняется случайными буквами и цифрами.
func GenerateCode(input string, length int) string {
	hash := md5.Sum([]byte(input)) //nolint:gosec
	encoded := base64.URLEncoding.EncodeToString(hash[:])

	var sb strings.Builder
	sb.Grow(length)
	for i := 0; i < len(encoded) && sb.Len() < length; i++ {
		if isAlphanumeric(encoded[i]) {
			sb.WriteByte(encoded[i])
		}
	}
	for sb.Len() < length {
		sb.WriteByte(alphanumeric[rand.IntN(len(alphanumeric))]) //nolint:gosec
	}
	return sb.String()
}

func isAlphanumeric(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func hasHTTPScheme(rawURL string) bool {
	return strings.HasPrefix(rawURL, "http://") || strings.HasPrefix(rawURL, "https://")
}
