// Package app 提供应用容器，封装所有依赖和服务
package app

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/haierkeys/git-light-sync/internal/config"
	"github.com/haierkeys/git-light-sync/pkg/logger"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// AppConfig 应用配置
type AppConfig struct {
	File   string              `yaml:"-"` // 配置文件路径，不序列化
	Server ServerConfig        `yaml:"server"`
	Log    LogConfig           `yaml:"log"`
	Sync   config.SyncConfig   `yaml:"sync"`
	Notify config.NotifyConfig `yaml:"notify"`
}

// LogConfig 日志配置
type LogConfig struct {
	// Level 日志级别，参见 zapcore.ParseLevel
	Level string `yaml:"level" default:"info" validate:"omitempty,oneof=debug info warn error dpanic panic fatal"`
	// File 日志文件路径，为空时只输出到 stderr
	File string `yaml:"file" default:"storage/logs/git-light-sync.log"`
	// Production 是否启用 JSON 输出
	Production bool `yaml:"production" default:"false"`
	// MaxSize 单个日志文件大小（MB）
	MaxSize int `yaml:"max-size" default:"10" validate:"gte=0"`
	// MaxBackups 保留的旧日志文件数
	MaxBackups int `yaml:"max-backups" default:"5" validate:"gte=0"`
	// MaxAge 旧日志保留天数
	MaxAge int `yaml:"max-age" default:"30" validate:"gte=0"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	// RunMode 运行模式
	RunMode string `yaml:"run-mode" default:"release" validate:"oneof=debug release test"`
	// PrivateHttpListen 私有 HTTP 监听地址，为空时不启动
	PrivateHttpListen string `yaml:"private-http-listen" default:"127.0.0.1:9011"`
}

// LoggerConfig 转换为 pkg/logger 配置
func (c *AppConfig) LoggerConfig() logger.Config {
	return logger.Config{
		Level:      c.Log.Level,
		File:       c.Log.File,
		Production: c.Log.Production,
		MaxSize:    c.Log.MaxSize,
		MaxBackups: c.Log.MaxBackups,
		MaxAge:     c.Log.MaxAge,
	}
}

// LoadConfig 从文件加载配置
// 返回配置实例和配置文件的绝对路径
func LoadConfig(f string) (*AppConfig, string, error) {
	realpath, err := filepath.Abs(f)
	if err != nil {
		return nil, "", err
	}
	realpath = filepath.Clean(realpath)

	c := new(AppConfig)
	c.File = realpath

	// 设置默认值
	if err := defaults.Set(c); err != nil {
		return nil, realpath, errors.Wrap(err, "set default config failed")
	}

	file, err := os.ReadFile(realpath)
	if err != nil {
		return nil, realpath, errors.Wrap(err, "read config file failed")
	}

	err = yaml.Unmarshal(file, c)
	if err != nil {
		return nil, realpath, errors.Wrap(err, "parse config file failed")
	}

	// 不再二次设置默认值：interval: 0 和空的 private-http-listen 是有效配置
	// defaults.Set 会把这些零值重新填成默认值

	if err := c.Validate(); err != nil {
		return nil, realpath, err
	}

	return c, realpath, nil
}

// Validate 校验配置字段
// working-dir 的存在性不在这里检查，未配置时由同步流程报告失败
func (c *AppConfig) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errors.Wrap(err, "validate config failed")
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fe.Namespace()+": "+fe.Tag())
	}
	return errors.Errorf("invalid config: %s", strings.Join(msgs, ", "))
}

// Save 保存配置到文件
func (c *AppConfig) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshal config failed")
	}

	err = os.WriteFile(c.File, data, 0644)
	if err != nil {
		return errors.Wrap(err, "write config file failed")
	}

	return nil
}
