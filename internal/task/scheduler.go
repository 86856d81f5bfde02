package task

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/haierkeys/git-light-sync/internal/metrics"
	"github.com/haierkeys/git-light-sync/internal/pipeline"
	"github.com/haierkeys/git-light-sync/pkg/logger"
	"go.uber.org/zap"
)

var (
	// ErrSyncInProgress 已有同步在运行，本次触发被丢弃
	ErrSyncInProgress = errors.New("sync already in progress")
	// ErrSchedulerStopped 调度器已停止
	ErrSchedulerStopped = errors.New("scheduler stopped")
)

// Trigger 触发来源
type Trigger string

const (
	TriggerStartup Trigger = "startup"
	TriggerTick    Trigger = "tick"
	TriggerManual  Trigger = "manual"
)

// State 调度器状态
type State int

const (
	StateIdle State = iota
	StateRunning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Task 定义任务接口
type Task interface {
	Name() string                                             // 任务名称
	Run(ctx context.Context, trigger Trigger) pipeline.Result // 执行任务
	LoopInterval() time.Duration                              // 执行间隔，<=0 不自动执行
	IsStartupRun() bool                                       // 是否立即执行一次
}

// Scheduler 任务调度器
// At most one run of the task is active at a time; a tick or manual trigger
// arriving during a run is dropped.
// 同一时间最多只有一个运行；运行中到达的定时或手动触发会被丢弃
type Scheduler struct {
	logger *zap.Logger
	task   Task

	mu      sync.Mutex
	started bool
	stopped bool
	running bool
	stopCh  chan struct{}
	runDone chan struct{} // closed when the active run finishes

	loopWg sync.WaitGroup // ticker goroutine
}

// NewScheduler 创建任务调度器
func NewScheduler(logger *zap.Logger, task Task) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		logger: logger.With(zap.String("task", task.Name())),
		task:   task,
		stopCh: make(chan struct{}),
	}
}

// Start runs the task once right away when it asks for a startup run, then
// on every LoopInterval until Stop. Calling Start twice has no effect.
// Start 如果任务需要则立即执行一次，之后每隔 LoopInterval 执行，直到 Stop
func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.started || s.stopped {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	interval := s.task.LoopInterval()
	s.logger.Info("task starting", zap.Duration(logger.FieldInterval, interval), zap.Bool("startupRun", s.task.IsStartupRun()))

	if s.task.IsStartupRun() {
		s.dispatch(TriggerStartup)
	}

	if interval <= 0 {
		s.logger.Info("automatic sync disabled, waiting for manual triggers")
		return
	}

	s.loopWg.Add(1)
	go s.loop(interval)
}

func (s *Scheduler) loop(interval time.Duration) {
	defer s.loopWg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// 定时执行
	for {
		select {
		case <-ticker.C:
			s.dispatch(TriggerTick)
		case <-s.stopCh:
			s.logger.Info("task stopped", zap.Bool("loopRun", true))
			return
		}
	}
}

// dispatch claims the run slot and runs the task in a new goroutine.
// dispatch 抢占运行槽位后在新 goroutine 中执行任务
func (s *Scheduler) dispatch(trigger Trigger) {
	if err := s.acquire(trigger); err != nil {
		return
	}
	go func() {
		_ = s.execute(context.Background(), trigger)
	}()
}

// TriggerNow runs the task in the calling goroutine and returns its result.
// It returns ErrSyncInProgress when a run is already active and
// ErrSchedulerStopped after Stop.
// TriggerNow 在调用方 goroutine 中执行任务并返回结果
func (s *Scheduler) TriggerNow(ctx context.Context) (pipeline.Result, error) {
	if err := s.acquire(TriggerManual); err != nil {
		return pipeline.Result{}, err
	}
	return s.execute(ctx, TriggerManual), nil
}

func (s *Scheduler) acquire(trigger Trigger) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		s.logger.Info("trigger ignored, scheduler stopped", zap.String(logger.FieldTrigger, string(trigger)))
		return ErrSchedulerStopped
	}
	if s.running {
		s.logger.Warn("sync skipped, previous run still in progress", zap.String(logger.FieldTrigger, string(trigger)))
		metrics.ObserveSkip(string(trigger))
		return ErrSyncInProgress
	}
	s.running = true
	s.runDone = make(chan struct{})
	metrics.Running.Inc()
	return nil
}

func (s *Scheduler) release() {
	s.mu.Lock()
	s.running = false
	close(s.runDone)
	s.runDone = nil
	s.mu.Unlock()
	metrics.Running.Dec()
}

// execute runs the task in the claimed slot and always releases it.
func (s *Scheduler) execute(ctx context.Context, trigger Trigger) (res pipeline.Result) {
	defer s.release()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("task run panic",
				zap.String(logger.FieldTrigger, string(trigger)),
				zap.Any("panic", r),
				zap.Stack("stack"))
			res = pipeline.Result{Reason: fmt.Sprintf("panic: %v", r)}
		}
		metrics.ObserveRun(string(trigger), res.Success, time.Now())
	}()

	s.logger.Info("task running", zap.String(logger.FieldTrigger, string(trigger)))
	return s.task.Run(ctx, trigger)
}

// Stop prevents any further ticks or triggers. A run already underway is not
// interrupted; use Wait to block until it finishes.
// Stop 阻止后续的定时和手动触发，不中断正在进行的运行
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	close(s.stopCh)
	s.mu.Unlock()

	s.loopWg.Wait()
}

// Wait blocks until no run is active or ctx is done.
// Wait 等待正在进行的运行结束
func (s *Scheduler) Wait(ctx context.Context) error {
	s.mu.Lock()
	done := s.runDone
	s.mu.Unlock()
	if done == nil {
		return nil
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsRunning reports whether a run is active, also after Stop.
// IsRunning 是否有运行中的同步，Stop 之后同样有效
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// State 返回调度器当前状态
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.stopped:
		return StateStopped
	case s.running:
		return StateRunning
	}
	return StateIdle
}
