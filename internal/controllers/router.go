package controllers

import (
	"github.com/fsdevblog/shortlink/internal/config"
	"github.com/fsdevblog/shortlink/internal/controllers/middlewares"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RouterParams зависимости для SetupRouter.
type RouterParams struct {
	ShortLinkService ShortLinkStore
	PingService      ConnectionChecker
	AppConf          *config.Config
	Logger           *logrus.Logger
}

// SetupRouter собирает gin.Engine со всеми маршрутами сервиса.
// Маршруты администратора регистрируются только если задан AdminJWTSecret.
func SetupRouter(params RouterParams) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestIDMiddleware())
	r.Use(middlewares.LoggerMiddleware(params.Logger))
	r.Use(middlewares.GzipMiddleware(MaxBodySize))

	shortLinkController := NewShortLinkController(params.ShortLinkService, params.AppConf.BaseURL)
	pingController := NewPingController(params.PingService)

	r.GET("/ping", pingController.Ping)
	r.GET("/:shortCode", shortLinkController.Redirect)
	r.POST("/", shortLinkController.CreateShortLink)

	api := r.Group("/api")
	api.POST("/shorten", shortLinkController.CreateShortLink)
	api.GET("/stats/:shortCode", shortLinkController.Stats)
	api.GET("/urls", shortLinkController.List)

	if params.AppConf.AdminJWTSecret != "" {
		adminController := NewAdminController(params.ShortLinkService)
		admin := api.Group("/admin", middlewares.AdminAuthMiddleware([]byte(params.AppConf.AdminJWTSecret)))
		admin.POST("/urls/:shortCode/deactivate", adminController.Deactivate)
	}
	return r
}
