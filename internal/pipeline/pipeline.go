// Package pipeline runs the fixed sequence of git steps against a working
// directory, stopping at the first failure.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/haierkeys/git-light-sync/internal/config"
	"github.com/haierkeys/git-light-sync/internal/metrics"
	"github.com/haierkeys/git-light-sync/internal/runner"
	"github.com/haierkeys/git-light-sync/pkg/logger"
	"go.uber.org/zap"
)

// Reasons for failures that happen before any command runs.
const (
	ReasonUnconfigured = "working directory is not configured"
	ReasonNotAbsolute  = "working directory must be an absolute path"
	ReasonMissing      = "working directory does not exist"
	ReasonNotDir       = "working directory is not a directory"
)

// Result is the outcome of one full pipeline run.
type Result struct {
	RunID   string
	Success bool

	// Set on failure. FailingCommand is empty when the run failed before any
	// command was started; Reason explains why.
	FailingStep    StepID
	FailingCommand string
	Stdout         string
	Stderr         string
	Reason         string

	StepsCompleted int
	StartedAt      time.Time
	Duration       time.Duration
}

// Pipeline executes Steps through a Runner.
type Pipeline struct {
	runner runner.Runner
	dirty  DirtyChecker
	logger *zap.Logger
	steps  []Step
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithSteps replaces the step sequence. Tests only.
func WithSteps(steps []Step) Option {
	return func(p *Pipeline) { p.steps = steps }
}

// New creates a Pipeline. A nil checker means every tree is treated as dirty.
func New(r runner.Runner, dirty DirtyChecker, lg *zap.Logger, opts ...Option) *Pipeline {
	if lg == nil {
		lg = zap.NewNop()
	}
	p := &Pipeline{
		runner: r,
		dirty:  dirty,
		logger: lg,
		steps:  Steps(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes every step in order against cfg.WorkingDir. It always returns a
// Result and never panics on command failure.
func (p *Pipeline) Run(ctx context.Context, cfg config.SyncConfig) (res Result) {
	res = Result{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
	}
	defer func() { res.Duration = time.Since(res.StartedAt) }()

	lg := p.logger.With(zap.String(logger.FieldRunID, res.RunID), zap.String(logger.FieldDir, cfg.WorkingDir))

	if reason := checkWorkingDir(cfg.WorkingDir); reason != "" {
		res.Reason = reason
		lg.Warn("sync aborted before running commands", zap.String("reason", reason))
		return res
	}

	lg.Info("sync started", zap.Int("steps", len(p.steps)))

	for _, step := range p.steps {
		if step.OnlyIfDirty && !p.isDirty(ctx, lg, cfg.WorkingDir) {
			lg.Info("working tree clean, nothing to commit", zap.String(logger.FieldStep, string(step.ID)))
			res.StepsCompleted++
			continue
		}

		out := p.runner.Run(ctx, step.Command, cfg.WorkingDir)
		metrics.ObserveStep(string(step.ID), out.Success, out.Duration)

		if !out.Success {
			res.FailingStep = step.ID
			res.FailingCommand = step.Command
			res.Stdout = out.Stdout
			res.Stderr = out.Stderr
			res.Reason = failureReason(out)
			lg.Error("sync step failed",
				zap.String(logger.FieldStep, string(step.ID)),
				zap.String(logger.FieldCommand, step.Command),
				zap.String(logger.FieldKind, string(out.Kind)),
				zap.Int(logger.FieldExitCode, out.ExitCode),
				zap.String(logger.FieldStdout, out.Stdout),
				zap.String(logger.FieldStderr, out.Stderr),
				zap.Error(out.Err))
			return res
		}

		lg.Debug("sync step finished",
			zap.String(logger.FieldStep, string(step.ID)),
			zap.Duration(logger.FieldDuration, out.Duration))
		res.StepsCompleted++
	}

	res.Success = true
	lg.Info("sync finished", zap.Duration(logger.FieldDuration, time.Since(res.StartedAt)))
	return res
}

func (p *Pipeline) isDirty(ctx context.Context, lg *zap.Logger, dir string) bool {
	if p.dirty == nil {
		return true
	}
	dirty, err := p.dirty.IsDirty(ctx, dir)
	if err != nil {
		// Let the commit command decide, as `diff-index || commit` would.
		lg.Warn("dirty check failed, attempting commit", zap.Error(err))
		return true
	}
	return dirty
}

func checkWorkingDir(dir string) string {
	if dir == "" {
		return ReasonUnconfigured
	}
	if !filepath.IsAbs(dir) {
		return ReasonNotAbsolute
	}
	fi, err := os.Stat(dir)
	if err != nil {
		return ReasonMissing
	}
	if !fi.IsDir() {
		return ReasonNotDir
	}
	return ""
}

func failureReason(out runner.Outcome) string {
	switch out.Kind {
	case runner.KindSpawn:
		return fmt.Sprintf("command could not be started: %v", out.Err)
	case runner.KindExit:
		return fmt.Sprintf("command exited with code %d", out.ExitCode)
	}
	return "command failed"
}

// Summary returns the human-readable notification text for r.
func (r Result) Summary() string {
	if r.Success {
		return "[GitLight] Sync finished successfully."
	}
	if r.FailingCommand == "" {
		return fmt.Sprintf("[GitLight] Sync failed: %s.", r.Reason)
	}
	return fmt.Sprintf("[GitLight] Sync failed: Command '%s' failed.", r.FailingCommand)
}
