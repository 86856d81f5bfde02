package config

import (
	"time"

	"github.com/haierkeys/git-light-sync/pkg/util"
)

// Dirty check implementations for the commit step
// 提交步骤的脏检查实现
const (
	DirtyCheckStatus    = "status"     // go-git worktree status
	DirtyCheckDiffIndex = "diff-index" // git diff-index --quiet HEAD
)

// SyncConfig Sync configuration
// SyncConfig 同步配置
type SyncConfig struct {
	// Interval sync interval in seconds, 0 disables automatic scheduling
	// Interval 同步间隔（秒），0 表示不自动调度
	Interval int `yaml:"interval" default:"3600" validate:"gte=0"`
	// WorkingDir absolute path of the git working directory, empty means unconfigured
	// WorkingDir git 工作目录的绝对路径，为空表示未配置
	WorkingDir string `yaml:"working-dir"`
	// CommandTimeout timeout of one git command, empty means no limit
	// CommandTimeout 单条 git 命令的超时时间，为空表示不限制
	CommandTimeout string `yaml:"command-timeout"`
	// DirtyCheck how the commit step decides whether the tree is dirty
	// DirtyCheck 提交步骤判断工作区是否有改动的方式
	DirtyCheck string `yaml:"dirty-check" default:"status" validate:"oneof=status diff-index"`
}

// IntervalDuration returns Interval as a time.Duration
// IntervalDuration 返回 time.Duration 形式的同步间隔
func (c SyncConfig) IntervalDuration() time.Duration {
	if c.Interval <= 0 {
		return 0
	}
	return time.Duration(c.Interval) * time.Second
}

// CommandTimeoutDuration returns the parsed CommandTimeout, zero when unset or invalid
// CommandTimeoutDuration 返回解析后的命令超时时间，未设置或无效时为 0
func (c SyncConfig) CommandTimeoutDuration() time.Duration {
	d, err := util.ParseDuration(c.CommandTimeout)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// NotifyConfig Notification configuration
// NotifyConfig 通知配置
type NotifyConfig struct {
	// SuccessDuration how long a success notice stays visible
	// SuccessDuration 成功通知的显示时长
	SuccessDuration string `yaml:"success-duration" default:"5s"`
	// FailureDuration how long a failure notice stays visible
	// FailureDuration 失败通知的显示时长
	FailureDuration string `yaml:"failure-duration" default:"24h"`
	// OutputLimit max bytes of stdout/stderr kept in notices and mails
	// OutputLimit 通知和邮件中保留的 stdout/stderr 最大字节数
	OutputLimit int        `yaml:"output-limit" default:"4096" validate:"gte=0"`
	Mail        MailConfig `yaml:"mail"`
}

// MailConfig SMTP mail notification configuration
// MailConfig SMTP 邮件通知配置
type MailConfig struct {
	IsEnabled bool     `yaml:"is-enable" default:"false"`
	Host      string   `yaml:"host" validate:"required_if=IsEnabled true"`
	Port      int      `yaml:"port" default:"587"`
	Username  string   `yaml:"username"`
	Password  string   `yaml:"password"`
	From      string   `yaml:"from" validate:"required_if=IsEnabled true"`
	To        []string `yaml:"to" validate:"required_if=IsEnabled true"`
	// OnSuccess also mails successful runs
	// OnSuccess 成功时也发送邮件
	OnSuccess bool `yaml:"on-success" default:"false"`
}

// Durations returns the parsed success and failure display durations
// Durations 返回解析后的成功和失败通知显示时长
func (c NotifyConfig) Durations() (success, failure time.Duration) {
	success, err := util.ParseDuration(c.SuccessDuration)
	if err != nil || success <= 0 {
		success = 5 * time.Second
	}
	failure, err = util.ParseDuration(c.FailureDuration)
	if err != nil || failure <= 0 {
		failure = 24 * time.Hour
	}
	return success, failure
}
