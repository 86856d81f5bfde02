// Package api_router 提供 HTTP API 路由处理器
package api_router

import (
	"time"

	"github.com/haierkeys/git-light-sync/internal/app"
	pkgapp "github.com/haierkeys/git-light-sync/pkg/app"
	"github.com/haierkeys/git-light-sync/pkg/code"

	"github.com/gin-gonic/gin"
)

// HealthHandler 健康检查处理器
type HealthHandler struct {
	*Handler
}

// NewHealthHandler 创建健康检查处理器实例
func NewHealthHandler(a *app.App) *HealthHandler {
	return &HealthHandler{Handler: NewHandler(a)}
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status    string  `json:"status"`    // "healthy" 或 "stopping"
	Version   string  `json:"version"`   // 服务版本号
	Uptime    float64 `json:"uptime"`    // 运行时间（秒）
	Scheduler string  `json:"scheduler"` // idle / running / stopped
}

// Check 健康检查接口
// @Summary 健康检查
// @Tags 系统
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /api/health [get]
func (h *HealthHandler) Check(c *gin.Context) {
	response := HealthResponse{
		Status:    "healthy",
		Version:   h.App.Version().Version,
		Uptime:    time.Since(h.App.StartTime).Seconds(),
		Scheduler: h.App.Scheduler.State().String(),
	}

	if h.App.IsShuttingDown() {
		response.Status = "stopping"
		pkgapp.NewResponse(c).ToResponse(code.ErrorSchedulerStopped.WithData(response))
		return
	}

	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(response))
}
