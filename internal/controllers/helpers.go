package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	DefaultRequestTimeout = 3 * time.Second

	// MaxBodySize максимальный размер тела запроса на создание ссылки.
	MaxBodySize = 64 << 10

	DefaultListLimit = 100
	MaxListLimit     = 1000
)

// isJSONRequest Определяет тип запроса (json или нет) по заголовку Content-Type.
func isJSONRequest(ctx *gin.Context) bool {
	ct := ctx.Request.Header.Get("Content-Type")
	return strings.HasPrefix(ct, "application/json")
}

// wantsJSON ответ в json отдается для json запросов и для всех маршрутов /api.
func wantsJSON(ctx *gin.Context) bool {
	return isJSONRequest(ctx) || strings.HasPrefix(ctx.FullPath(), "/api/")
}

// respondError отправляет ошибку в формате, подходящем запросу.
func respondError(ctx *gin.Context, status int, err error) {
	if wantsJSON(ctx) {
		ctx.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
		return
	}
	ctx.String(status, err.Error())
	ctx.Abort()
}

// isBodyTooLarge сработал ли http.MaxBytesReader.
func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
