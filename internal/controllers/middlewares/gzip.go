package middlewares

import (
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
)

var gzipWriterPool = sync.Pool{
	New: func() any {
		return gzip.NewWriter(io.Discard)
	},
}

// gzipWriter обертка над gin.ResponseWriter для сжатия ответов в формате gzip.
type gzipWriter struct {
	gin.ResponseWriter
	writer *gzip.Writer
	wrote  bool
}

// Write записывает сжатые данные.
func (g *gzipWriter) Write(data []byte) (int, error) {
	g.Header().Del("Content-Length")
	g.wrote = true
	return g.writer.Write(data) //nolint:wrapcheck
}

// WriteString перекрывает метод gin.ResponseWriter, иначе строка уйдет клиенту несжатой.
func (g *gzipWriter) WriteString(s string) (int, error) {
	return g.Write([]byte(s))
}

// GzipMiddleware создает middleware для сжатия ответов и распаковки запросов в формате gzip.
//
// Для ответов:
//   - Проверяет поддержку gzip в заголовке Accept-Encoding
//   - При поддержке сжимает ответ и устанавливает заголовки Content-Encoding и Vary
//
// Для запросов:
//   - Обрабатывает только POST, PUT, PATCH запросы с заголовком Content-Encoding: gzip
//   - Подменяет тело запроса на распакованное, при ошибке распаковки отвечает 400
//   - Если сжатое или распакованное тело больше maxBodySize, отвечает 413
func GzipMiddleware(maxBodySize int64) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if !readGzip(ctx, maxBodySize) {
			return
		}
		writeGzip(ctx)
	}
}

// writeGzip настраивает сжатие ответа в формате gzip.
func writeGzip(ctx *gin.Context) {
	if !strings.Contains(ctx.Request.Header.Get("Accept-Encoding"), "gzip") {
		ctx.Next()
		return
	}

	ctx.Header("Content-Encoding", "gzip")
	ctx.Header("Vary", "Accept-Encoding")

	gzw, _ := gzipWriterPool.Get().(*gzip.Writer)
	gzw.Reset(ctx.Writer)

	gw := &gzipWriter{
		ResponseWriter: ctx.Writer,
		writer:         gzw,
	}
	defer func() {
		defer gzipWriterPool.Put(gzw)
		// ответ без тела (204, пустой 500) отдаем без gzip заголовков.
		if !gw.wrote && !gw.Written() {
			gw.Header().Del("Content-Encoding")
			gw.Header().Del("Vary")
			return
		}
		if closeErr := gzw.Close(); closeErr != nil {
			_ = ctx.Error(fmt.Errorf("close gzip writer: %w", closeErr))
		}
	}()

	ctx.Writer = gw
	ctx.Next()
}

// readGzip распаковывает тело запроса если оно сжато. Возвращает false если запрос прерван.
func readGzip(ctx *gin.Context, maxBodySize int64) bool {
	if !slices.Contains([]string{http.MethodPost, http.MethodPut, http.MethodPatch}, ctx.Request.Method) {
		return true
	}
	if !strings.Contains(ctx.Request.Header.Get("Content-Encoding"), "gzip") {
		return true
	}

	gzReader, gzErr := gzip.NewReader(http.MaxBytesReader(ctx.Writer, ctx.Request.Body, maxBodySize))
	if gzErr != nil {
		_ = ctx.Error(fmt.Errorf("read gzip: %w", gzErr))
		ctx.AbortWithStatus(http.StatusBadRequest)
		return false
	}
	defer func() {
		if closeErr := gzReader.Close(); closeErr != nil {
			_ = ctx.Error(fmt.Errorf("close gzip reader: %w", closeErr))
		}
	}()

	bodyBytes, err := io.ReadAll(io.LimitReader(gzReader, maxBodySize+1))
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		_ = ctx.Error(fmt.Errorf("read gzip: %w", err))
		ctx.AbortWithStatus(http.StatusRequestEntityTooLarge)
		return false
	case err != nil:
		_ = ctx.Error(fmt.Errorf("read gzip: %w", err))
		ctx.AbortWithStatus(http.StatusBadRequest)
		return false
	case int64(len(bodyBytes)) > maxBodySize:
		_ = ctx.Error(fmt.Errorf("read gzip: decompressed body exceeds %d bytes", maxBodySize))
		ctx.AbortWithStatus(http.StatusRequestEntityTooLarge)
		return false
	}

	ctx.Request.Body = io.NopCloser(bytes.NewReader(bodyBytes))
	ctx.Request.Header.Del("Content-Encoding")
	ctx.Request.ContentLength = int64(len(bodyBytes))
	return true
}
