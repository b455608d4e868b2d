package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// AdminController административные операции над ссылками.
type AdminController struct {
	linkService ShortLinkStore
}

func NewAdminController(linkService ShortLinkStore) *AdminController {
	return &AdminController{linkService: linkService}
}

// Deactivate обрабатывает POST /api/admin/urls/:shortCode/deactivate.
// Выключенная ссылка больше не перенаправляет, статистика по ней остается доступной.
//
// Возвращает:
//   - HTTP 204 при успехе, в том числе для уже выключенной ссылки
//   - HTTP 404 если код не найден
func (a *AdminController) Deactivate(ctx *gin.Context) {
	reqCtx, cancel := context.WithTimeout(ctx.Request.Context(), DefaultRequestTimeout)
	defer cancel()

	if err := a.linkService.Deactivate(reqCtx, ctx.Param("shortCode")); err != nil {
		respondServiceError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}
