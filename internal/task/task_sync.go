package task

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/haierkeys/git-light-sync/internal/config"
	"github.com/haierkeys/git-light-sync/internal/notify"
	"github.com/haierkeys/git-light-sync/internal/pipeline"
	"github.com/haierkeys/git-light-sync/pkg/util"
)

// Syncer runs one full sync against a working directory.
type Syncer interface {
	Run(ctx context.Context, cfg config.SyncConfig) pipeline.Result
}

// SyncTask runs the pipeline and reports every result to the notifier.
type SyncTask struct {
	syncer      Syncer
	cfg         config.SyncConfig
	notifier    notify.Notifier
	successShow time.Duration
	failureShow time.Duration
	outputLimit int
}

func NewSyncTask(syncer Syncer, cfg config.SyncConfig, notifyCfg config.NotifyConfig, notifier notify.Notifier) *SyncTask {
	success, failure := notifyCfg.Durations()
	return &SyncTask{
		syncer:      syncer,
		cfg:         cfg,
		notifier:    notifier,
		successShow: success,
		failureShow: failure,
		outputLimit: notifyCfg.OutputLimit,
	}
}

func (t *SyncTask) Name() string {
	return "git_sync"
}

func (t *SyncTask) LoopInterval() time.Duration {
	return t.cfg.IntervalDuration()
}

func (t *SyncTask) IsStartupRun() bool {
	return true
}

// Run reports every run, including one that panics. The panic is re-raised
// after the failure notice so the scheduler still logs it with the stack.
// Run 每次运行都会发送通知，panic 时发送失败通知后继续上抛，由调度器记录堆栈
func (t *SyncTask) Run(ctx context.Context, trigger Trigger) pipeline.Result {
	t.notifier.Log(fmt.Sprintf("[GitLight] Starting sync (%s).", trigger))
	defer func() {
		if r := recover(); r != nil {
			t.report(pipeline.Result{Reason: fmt.Sprintf("panic: %v", r)})
			panic(r)
		}
	}()
	res := t.syncer.Run(ctx, t.cfg)
	t.report(res)
	return res
}

// report sends exactly one notice per result.
func (t *SyncTask) report(res pipeline.Result) {
	n := notify.Notice{
		Success: res.Success,
		Message: res.Summary(),
		At:      time.Now(),
	}

	if res.Success {
		n.Duration = t.successShow
		t.notifier.NotifySuccess(n)
		t.notifier.Log(n.Message)
		return
	}

	n.Duration = t.failureShow
	n.Detail = t.detail(res)
	t.notifier.NotifyFailure(n)
	t.notifier.Log(n.Message + "\n" + n.Detail)
}

func (t *SyncTask) detail(res pipeline.Result) string {
	var b strings.Builder
	if res.Reason != "" {
		fmt.Fprintf(&b, "reason: %s\n", res.Reason)
	}
	fmt.Fprintf(&b, "stdout: %s\n", util.Truncate(res.Stdout, t.outputLimit))
	fmt.Fprintf(&b, "stderr: %s", util.Truncate(res.Stderr, t.outputLimit))
	return b.String()
}
