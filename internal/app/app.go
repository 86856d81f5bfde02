// Package app 提供应用容器，封装所有依赖和服务
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/haierkeys/git-light-sync/internal/config"
	"github.com/haierkeys/git-light-sync/internal/notify"
	"github.com/haierkeys/git-light-sync/internal/pipeline"
	"github.com/haierkeys/git-light-sync/internal/runner"
	"github.com/haierkeys/git-light-sync/internal/task"
	pkgapp "github.com/haierkeys/git-light-sync/pkg/app"

	"go.uber.org/zap"
)

// DefaultShutdownTimeout 默认关闭超时时间
const DefaultShutdownTimeout = 30 * time.Second

// App 应用容器，封装所有依赖和服务
type App struct {
	// 基础设施（注入的依赖）
	config    *AppConfig
	logger    *zap.Logger
	StartTime time.Time

	// 同步组件
	Runner    runner.Runner
	Dirty     pipeline.DirtyChecker
	Pipeline  *pipeline.Pipeline
	Board     *notify.Board
	Notifier  notify.Notifier
	SyncTask  *task.SyncTask
	Scheduler *task.Scheduler

	mailSender notify.MailSender

	// 关闭控制
	shutdownCh chan struct{}
}

// Option 应用容器选项
type Option func(*App)

// WithRunner 替换默认的命令执行器
func WithRunner(r runner.Runner) Option {
	return func(a *App) { a.Runner = r }
}

// WithDirtyChecker 替换按配置选择的脏检查实现
func WithDirtyChecker(d pipeline.DirtyChecker) Option {
	return func(a *App) { a.Dirty = d }
}

// WithMailSender 替换 SMTP 发送器
func WithMailSender(s notify.MailSender) Option {
	return func(a *App) { a.mailSender = s }
}

// NewApp 创建应用容器实例
// 初始化所有依赖并进行依赖注入
// cfg: 应用配置（必须）
// logger: zap 日志器（必须）
func NewApp(cfg *AppConfig, logger *zap.Logger, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	a := &App{
		config:     cfg,
		logger:     logger,
		StartTime:  time.Now(),
		shutdownCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.Runner == nil {
		a.Runner = runner.NewExecRunner(cfg.Sync.CommandTimeoutDuration())
	}
	if a.Dirty == nil {
		a.Dirty = newDirtyChecker(cfg.Sync.DirtyCheck, a.Runner)
	}

	a.Pipeline = pipeline.New(a.Runner, a.Dirty, logger)

	// 通知：日志 + 内存看板 + 可选邮件
	a.Board = notify.NewBoard()
	sinks := notify.Multi{notify.NewLogNotifier(logger), a.Board}
	if cfg.Notify.Mail.IsEnabled {
		if a.mailSender != nil {
			sinks = append(sinks, notify.NewMailNotifierWithSender(cfg.Notify.Mail, a.mailSender, logger))
		} else {
			sinks = append(sinks, notify.NewMailNotifier(cfg.Notify.Mail, logger))
		}
	}
	a.Notifier = sinks

	a.SyncTask = task.NewSyncTask(a.Pipeline, cfg.Sync, cfg.Notify, a.Notifier)
	a.Scheduler = task.NewScheduler(logger, a.SyncTask)

	logger.Info("App container initialized successfully",
		zap.Int("interval", cfg.Sync.Interval),
		zap.String("workingDir", cfg.Sync.WorkingDir),
		zap.String("dirtyCheck", cfg.Sync.DirtyCheck),
		zap.Bool("mail", cfg.Notify.Mail.IsEnabled))

	return a, nil
}

func newDirtyChecker(kind string, r runner.Runner) pipeline.DirtyChecker {
	if kind == config.DirtyCheckDiffIndex {
		return pipeline.DiffIndexChecker{Runner: r}
	}
	return pipeline.StatusChecker{Confirm: pipeline.DiffIndexChecker{Runner: r}}
}

// Config 获取应用配置
func (a *App) Config() *AppConfig {
	return a.config
}

// Logger 获取日志器
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Version 获取版本信息
func (a *App) Version() pkgapp.VersionInfo {
	return pkgapp.VersionInfo{
		Version:   Version,
		GitTag:    GitTag,
		BuildTime: BuildTime,
	}
}

// Start 启动调度器：立即同步一次，interval > 0 时按间隔重复
func (a *App) Start() {
	a.Scheduler.Start()
}

// TriggerNow 手动触发一次同步并等待结果
func (a *App) TriggerNow(ctx context.Context) (pipeline.Result, error) {
	return a.Scheduler.TriggerNow(ctx)
}

// NoticeView 状态接口中的通知
type NoticeView struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Detail    string    `json:"detail,omitempty"`
	At        time.Time `json:"at"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Status 同步状态快照
type Status struct {
	State      string       `json:"state"`
	Interval   int          `json:"interval"`
	WorkingDir string       `json:"workingDir"`
	Notices    []NoticeView `json:"notices"`
	Lines      []string     `json:"lines"`
}

// Status 返回调度器状态和仍在显示期内的通知
func (a *App) Status() Status {
	active := a.Board.Active()
	views := make([]NoticeView, 0, len(active))
	for _, n := range active {
		views = append(views, NoticeView{
			Success:   n.Success,
			Message:   n.Message,
			Detail:    n.Detail,
			At:        n.At,
			ExpiresAt: n.ExpiresAt(),
		})
	}
	return Status{
		State:      a.Scheduler.State().String(),
		Interval:   a.config.Sync.Interval,
		WorkingDir: a.config.Sync.WorkingDir,
		Notices:    views,
		Lines:      a.Board.Lines(),
	}
}

// Shutdown 优雅关闭应用容器
// 停止调度器后等待正在进行的同步结束，不会中断运行中的 git 命令
// ctx 用于控制关闭超时，如果为 nil 则使用默认 30 秒超时
func (a *App) Shutdown(ctx context.Context) error {
	// 如果没有提供 context，使用默认超时
	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer cancel()
	}

	// 标记关闭
	select {
	case <-a.shutdownCh:
		// 已经关闭
		return nil
	default:
		close(a.shutdownCh)
	}

	a.logger.Info("App container shutting down...")
	a.Scheduler.Stop()

	if err := a.Scheduler.Wait(ctx); err != nil {
		a.logger.Warn("Shutdown timeout waiting for running sync", zap.Error(err))
		return fmt.Errorf("wait for running sync: %w", err)
	}

	a.logger.Info("App container shutdown completed successfully")
	return nil
}

// IsShuttingDown 检查应用是否正在关闭
func (a *App) IsShuttingDown() bool {
	select {
	case <-a.shutdownCh:
		return true
	default:
		return false
	}
}
