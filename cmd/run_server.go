package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	internalApp "github.com/haierkeys/git-light-sync/internal/app"
	"github.com/haierkeys/git-light-sync/internal/routers"
	"github.com/haierkeys/git-light-sync/pkg/logger"
	"github.com/haierkeys/git-light-sync/pkg/safe_close"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	logger            *zap.Logger            // Logger // 日志对象
	config            *internalApp.AppConfig // App configuration (injected dependency) // 应用配置（注入的依赖）
	privateHttpServer *http.Server
	sc                *safe_close.SafeClose
	app               *internalApp.App // App Container
	shutdownTimeout   time.Duration    // how long Close waits for a running sync // Close 等待运行中同步的时长
}

// loadRunConfig loads the config file and applies command line overrides
// loadRunConfig 加载配置文件并应用命令行覆盖参数
func loadRunConfig(runEnv *runFlags) (*internalApp.AppConfig, string, error) {
	appConfig, configRealpath, err := internalApp.LoadConfig(runEnv.config)
	if err != nil {
		return nil, configRealpath, fmt.Errorf("failed to load config: %w", err)
	}
	if len(runEnv.runMode) > 0 {
		appConfig.Server.RunMode = runEnv.runMode
	}
	if len(runEnv.listen) > 0 {
		appConfig.Server.PrivateHttpListen = runEnv.listen
	}
	if err := appConfig.Validate(); err != nil {
		return nil, configRealpath, err
	}
	return appConfig, configRealpath, nil
}

// NewServer builds the logger, the App Container and the private HTTP
// server, then starts the scheduler
// NewServer 初始化日志器、App Container 和私有 HTTP 服务，并启动调度器
func NewServer(appConfig *internalApp.AppConfig, configRealpath string) (*Server, error) {

	gin.SetMode(appConfig.Server.RunMode)

	s := &Server{
		config:          appConfig,
		sc:              safe_close.NewSafeClose(),
		shutdownTimeout: internalApp.DefaultShutdownTimeout,
	}

	// Initialize logger (using injected config)
	// 初始化日志器（使用注入的配置）
	if err := initLoggerWithConfig(s, appConfig); err != nil {
		return nil, fmt.Errorf("initLogger: %w", err)
	}

	// Initialize App Container (using AppConfig directly)
	// 初始化 App Container（直接使用 AppConfig）
	app, err := internalApp.NewApp(appConfig, s.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create app container: %w", err)
	}
	s.app = app

	s.logger.Warn(fmt.Sprintf("\n%s v%s\nGit: %s\nBuildTime: %s\n", internalApp.Name, internalApp.Version, internalApp.GitTag, internalApp.BuildTime))
	s.logger.Warn("config loaded", zap.String("path", configRealpath))

	if appConfig.Sync.WorkingDir == "" {
		s.logger.Warn("sync.working-dir is not configured, every sync will fail until it is set")
	}

	if httpAddr := appConfig.Server.PrivateHttpListen; len(httpAddr) > 0 {

		s.logger.Info("api_router", zap.String("config.server.PrivateHttpListen", appConfig.Server.PrivateHttpListen))
		s.privateHttpServer = &http.Server{
			Addr:              appConfig.Server.PrivateHttpListen,
			Handler:           routers.NewPrivateRouter(s.app),
			ReadHeaderTimeout: 10 * time.Second,
			MaxHeaderBytes:    1 << 20,
		}

		s.sc.Attach(func(done func(), closeSignal <-chan struct{}) {
			defer done()
			errChan := make(chan error, 1)
			go func() {
				errChan <- s.privateHttpServer.ListenAndServe()
			}()
			select {
			case err := <-errChan:
				// Scheduling keeps running without the HTTP surface
				// HTTP 服务失败不影响定时同步
				if !errors.Is(err, http.ErrServerClosed) {
					s.logger.Error("private api service err", zap.Error(err))
				}
				<-closeSignal
			case <-closeSignal:
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()

				// Stop HTTP server
				// 停止 HTTP 服务器
				if err := s.privateHttpServer.Shutdown(ctx); err != nil {
					s.logger.Error("private api service shutdown error", zap.Error(err))
				}
			}
		})
	}

	// Start the scheduler and register App Container graceful shutdown
	// 启动调度器并注册 App Container 的优雅关闭
	s.sc.Attach(func(done func(), closeSignal <-chan struct{}) {
		defer done()
		s.app.Start()
		<-closeSignal

		// Use graceful shutdown with timeout
		// 使用带超时的优雅关闭
		ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()

		if err := s.app.Shutdown(ctx); err != nil {
			s.logger.Error("failed to shutdown app container", zap.Error(err))
		} else {
			s.logger.Info("App container shutdown gracefully")
		}
		_ = s.logger.Sync()
	})

	return s, nil
}

// initLoggerWithConfig initializes logger (using injected config)
// initLoggerWithConfig 初始化日志器（使用注入的配置）
func initLoggerWithConfig(s *Server, cfg *internalApp.AppConfig) error {
	lg, err := logger.NewLogger(cfg.LoggerConfig())
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	s.logger = lg

	return nil
}

// Close sends the close signal and waits until the scheduler has drained
// or shutdownTimeout has passed
// Close 发送关闭信号并等待调度器排空，最多等待 shutdownTimeout
func (s *Server) Close() error {
	s.sc.SendCloseSignal(nil)
	return s.sc.WaitClosed()
}

// drain blocks until a sync that outlived Close has finished
// drain 等待 Close 超时后仍在运行的同步结束
func (s *Server) drain() {
	if !s.app.Scheduler.IsRunning() {
		return
	}
	s.logger.Warn("waiting for the running sync to finish before reload")
	_ = s.app.Scheduler.Wait(context.Background())
	s.logger.Info("running sync finished, continuing reload")
}
