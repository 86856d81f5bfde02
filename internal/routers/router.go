package routers

import (
	"github.com/haierkeys/git-light-sync/internal/app"
	"github.com/haierkeys/git-light-sync/internal/middleware"
	"github.com/haierkeys/git-light-sync/internal/routers/api_router"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewPrivateRouter creates the private router: manual sync, status and metrics
// NewPrivateRouter 创建私有路由：手动同步、状态查询和监控指标
func NewPrivateRouter(appContainer *app.App) *gin.Engine {
	cfg := appContainer.Config()
	logger := appContainer.Logger()

	r := gin.New()

	if cfg.Server.RunMode == "debug" {
		r.Use(gin.Recovery())
	} else {
		r.Use(middleware.RecoveryWithLogger(logger))
	}

	// prom monitoring
	// prom监控
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.Use(middleware.AppInfoWithConfig(app.Name, appContainer.Version().Version))
		api.Use(middleware.TraceMiddlewareWithConfig(middleware.DefaultTraceIDHeader))
		api.Use(middleware.AccessLogWithLogger(logger))

		syncHandler := api_router.NewSyncHandler(appContainer)
		versionHandler := api_router.NewVersionHandler(appContainer)
		healthHandler := api_router.NewHealthHandler(appContainer)

		api.POST("/sync", syncHandler.Sync)
		api.GET("/status", syncHandler.Status)
		api.GET("/version", versionHandler.ServerVersion)
		api.GET("/health", healthHandler.Check)
	}

	if cfg.Server.RunMode == "debug" {
		registerPprof(r)
	}

	r.NoRoute(middleware.NoFound())

	return r
}
