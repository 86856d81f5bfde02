package cmd

import (
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/radovskyb/watcher"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type runFlags struct {
	dir     string // Project root directory // 项目根目录
	listen  string // Private HTTP listen address // 私有 HTTP 监听地址
	runMode string // Startup mode // 启动模式
	config  string // Specified configuration file path // 指定要使用的配置文件路径
}

// serverHolder 配置重载时替换当前 Server
type serverHolder struct {
	mu sync.Mutex
	s  *Server
}

func (h *serverHolder) get() *Server {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.s
}

// reload validates the new config before the old server is closed, so a
// broken edit keeps the old server running. The old scheduler drains before
// the new one starts, however long the running sync takes, so a reload never
// produces overlapping syncs.
// reload 先校验新配置再关闭旧服务；旧调度器排空后才启动新的，重载不会产生重叠同步
func (h *serverHolder) reload(runEnv *runFlags) {
	h.mu.Lock()
	defer h.mu.Unlock()

	cfg, realpath, err := loadRunConfig(runEnv)
	if err != nil {
		h.s.logger.Error("config reload failed, keeping current config", zap.Error(err))
		return
	}

	if err := h.s.Close(); err != nil {
		h.s.logger.Warn("previous service closed with error", zap.Error(err))
	}
	h.s.drain()

	s, err := NewServer(cfg, realpath)
	if err != nil {
		bootstrapLogger.Error("service start err", zap.Error(err))
		return
	}
	h.s = s
}

func init() {
	runEnv := new(runFlags)

	var runCommand = &cobra.Command{
		Use:   "run [-c config_file] [-d working_dir] [-l listen]",
		Short: "Run the sync service",
		Run: func(cmd *cobra.Command, args []string) {
			if len(runEnv.dir) > 0 {
				err := os.Chdir(runEnv.dir)
				if err != nil {
					bootstrapLogger.Error("failed to change the current working directory", zap.Error(err))
				}
				bootstrapLogger.Info("working directory changed", zap.String("dir", runEnv.dir))
			}

			configFile, err := resolveConfigFile(runEnv.config)
			if err != nil {
				bootstrapLogger.Error("config file error", zap.Error(err))
				return
			}
			runEnv.config = configFile

			cfg, realpath, err := loadRunConfig(runEnv)
			if err != nil {
				bootstrapLogger.Error("config load err", zap.Error(err))
				return
			}

			s, err := NewServer(cfg, realpath)
			if err != nil {
				bootstrapLogger.Error("service start err", zap.Error(err))
				return
			}
			holder := &serverHolder{s: s}

			w := watcher.New()

			// Set MaxEvents to 1 to receive at most 1 event in each listening cycle
			// 将 SetMaxEvents 设置为 1，以便在每个监听周期中至多接收 1 个事件
			w.SetMaxEvents(1)

			// Only notify write events.
			// 只通知写入事件。
			w.FilterOps(watcher.Write)

			go func() {
				for {
					select {
					case event := <-w.Event:
						holder.get().logger.Info("config watcher change", zap.String("event", event.Op.String()), zap.String("file", event.Path))
						holder.reload(runEnv)
					case err := <-w.Error:
						holder.get().logger.Error("config watcher error", zap.Error(err))
					case <-w.Closed:
						bootstrapLogger.Info("config watcher closed")
						return
					}
				}
			}()

			// Watch config.yaml file
			// 监听 config.yaml 文件
			if err := w.Add(runEnv.config); err != nil {
				s.logger.Error("config watcher file error", zap.Error(err))
			}

			// Start watching
			// 启动监听
			go func() {
				if err := w.Start(time.Second * 5); err != nil {
					holder.get().logger.Error("config watcher start error", zap.Error(err))
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

			<-quit
			holder.get().logger.Info("Received shutdown signal, initiating graceful shutdown...")
			w.Close()

			// Wait for all shutdown handlers to complete (including App Container graceful shutdown)
			// 等待所有关闭处理器完成（包括 App Container 的优雅关闭）
			holder.mu.Lock()
			defer holder.mu.Unlock()
			if err := holder.s.Close(); err != nil {
				holder.s.logger.Error("Shutdown completed with error", zap.Error(err))
			} else {
				holder.s.logger.Info("Service has been shut down gracefully.")
			}
		},
	}

	rootCmd.AddCommand(runCommand)
	fs := runCommand.Flags()
	fs.StringVarP(&runEnv.dir, "dir", "d", "", "run dir")
	fs.StringVarP(&runEnv.listen, "listen", "l", "", "private http listen address")
	fs.StringVarP(&runEnv.runMode, "mode", "m", "", "run mode")
	fs.StringVarP(&runEnv.config, "config", "c", "", "config file")

}
