package code

import "net/http"

var (
	Success = NewSuss(1, lang{en: "Success", zh_cn: "成功"})

	SuccessSync = NewSuss(2, lang{en: "Sync finished successfully", zh_cn: "同步完成"})

	ErrorServerInternal = NewError(500, http.StatusInternalServerError, lang{en: "Internal server error", zh_cn: "服务器内部错误"})

	ErrorNotFound = NewError(404, http.StatusNotFound, lang{en: "Resource not found", zh_cn: "资源不存在"})

	ErrorSyncFailed = NewError(601, http.StatusOK, lang{en: "Sync failed", zh_cn: "同步失败"})

	ErrorSyncTaskRunning = NewError(602, http.StatusConflict, lang{en: "A sync is already in progress", zh_cn: "同步任务正在运行"})

	ErrorSchedulerStopped = NewError(603, http.StatusServiceUnavailable, lang{en: "Scheduler is stopped", zh_cn: "调度器已停止"})
)
