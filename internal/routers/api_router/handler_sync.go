package api_router

import (
	"context"
	"errors"

	"github.com/haierkeys/git-light-sync/internal/app"
	"github.com/haierkeys/git-light-sync/internal/pipeline"
	"github.com/haierkeys/git-light-sync/internal/task"
	pkgapp "github.com/haierkeys/git-light-sync/pkg/app"
	"github.com/haierkeys/git-light-sync/pkg/code"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SyncHandler sync API router handler
// SyncHandler 同步 API 路由处理器
type SyncHandler struct {
	*Handler
}

// NewSyncHandler creates SyncHandler instance
// NewSyncHandler 创建 SyncHandler 实例
func NewSyncHandler(a *app.App) *SyncHandler {
	return &SyncHandler{
		Handler: NewHandler(a),
	}
}

// SyncResultDTO result of a manual sync
// SyncResultDTO 手动同步结果
type SyncResultDTO struct {
	RunID          string `json:"runId"`
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	FailingStep    string `json:"failingStep,omitempty"`
	FailingCommand string `json:"failingCommand,omitempty"`
	Stdout         string `json:"stdout,omitempty"`
	Stderr         string `json:"stderr,omitempty"`
	Reason         string `json:"reason,omitempty"`
	StepsCompleted int    `json:"stepsCompleted"`
	DurationMs     int64  `json:"durationMs"`
}

func newSyncResultDTO(res pipeline.Result) SyncResultDTO {
	return SyncResultDTO{
		RunID:          res.RunID,
		Success:        res.Success,
		Message:        res.Summary(),
		FailingStep:    string(res.FailingStep),
		FailingCommand: res.FailingCommand,
		Stdout:         res.Stdout,
		Stderr:         res.Stderr,
		Reason:         res.Reason,
		StepsCompleted: res.StepsCompleted,
		DurationMs:     res.Duration.Milliseconds(),
	}
}

// Sync runs a sync now and waits for its result
// @Summary Sync now
// @Description Run add, commit, pull and push once and wait for the result
// @Tags Sync
// @Produce json
// @Success 200 {object} pkgapp.Res{data=SyncResultDTO} "Success or sync failure"
// @Failure 409 {object} pkgapp.Res "A sync is already in progress"
// @Failure 503 {object} pkgapp.Res "Scheduler is stopped"
// @Router /api/sync [post]
func (h *SyncHandler) Sync(c *gin.Context) {
	response := pkgapp.NewResponse(c)

	// 客户端断开不终止正在执行的 git 命令
	ctx := context.WithoutCancel(c.Request.Context())

	res, err := h.App.TriggerNow(ctx)
	switch {
	case errors.Is(err, task.ErrSyncInProgress):
		response.ToResponse(code.ErrorSyncTaskRunning)
		return
	case errors.Is(err, task.ErrSchedulerStopped):
		response.ToResponse(code.ErrorSchedulerStopped)
		return
	case err != nil:
		h.App.Logger().Error("SyncHandler.Sync", zap.Error(err))
		response.ToResponse(code.ErrorServerInternal.WithDetails(err.Error()))
		return
	}

	if !res.Success {
		response.ToResponse(code.ErrorSyncFailed.WithData(newSyncResultDTO(res)))
		return
	}
	response.ToResponse(code.SuccessSync.WithData(newSyncResultDTO(res)))
}

// Status returns the scheduler state and active notices
// @Summary Sync status
// @Tags Sync
// @Produce json
// @Success 200 {object} pkgapp.Res{data=app.Status} "Success"
// @Router /api/status [get]
func (h *SyncHandler) Status(c *gin.Context) {
	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(h.App.Status()))
}
