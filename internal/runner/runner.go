// Package runner executes one external command line in a working directory
// and reports a pass/fail Outcome. It never returns errors to the caller:
// every failure is folded into the Outcome value.
package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/input-output-hk/catalyst-forge-libs/executor"
	"github.com/kballard/go-shellquote"
)

// FailureKind classifies a failed Outcome. It is used for logs only.
type FailureKind string

const (
	KindNone FailureKind = ""
	// KindSpawn means the process could not be started.
	KindSpawn FailureKind = "spawn"
	// KindExit means the process ran and exited non-zero or was killed by a signal.
	KindExit FailureKind = "exit"
)

// Outcome is the result of one command invocation.
type Outcome struct {
	Command  string
	Success  bool
	Stdout   string
	Stderr   string
	ExitCode int
	Kind     FailureKind
	Err      error
	Duration time.Duration
}

// Runner runs a command line in a working directory.
type Runner interface {
	Run(ctx context.Context, command string, workingDir string) Outcome
}

// ExecRunner runs commands as child processes through executor. The command
// line is split with POSIX shell quoting rules and executed without a shell.
type ExecRunner struct {
	// Timeout bounds one command; zero means no limit.
	Timeout time.Duration
	// Env is appended to the parent environment.
	Env map[string]string
}

// NewExecRunner creates an ExecRunner
func NewExecRunner(timeout time.Duration) *ExecRunner {
	return &ExecRunner{Timeout: timeout}
}

// Run executes command in workingDir and waits for it to finish.
func (r *ExecRunner) Run(ctx context.Context, command string, workingDir string) (out Outcome) {
	start := time.Now()
	out = Outcome{Command: command, ExitCode: -1}
	defer func() { out.Duration = time.Since(start) }()

	args, err := shellquote.Split(command)
	if err != nil {
		return spawnFailure(out, fmt.Errorf("parse command: %w", err))
	}
	if len(args) == 0 {
		return spawnFailure(out, errors.New("empty command"))
	}

	// exec only reports a generic chdir error for a bad Dir
	fi, err := os.Stat(workingDir)
	if err != nil {
		return spawnFailure(out, fmt.Errorf("working directory: %w", err))
	}
	if !fi.IsDir() {
		return spawnFailure(out, fmt.Errorf("working directory %s is not a directory", workingDir))
	}

	if ctx == nil {
		ctx = context.Background()
	}
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	res, err := executor.New(args[0], args[1:]...).Execute(ctx,
		executor.SilentMode(),
		executor.WithWorkingDir(workingDir),
		executor.WithEnv(r.Env),
	)
	if res != nil {
		out.Stdout = res.Stdout
		out.Stderr = res.Stderr
	}
	if err == nil {
		out.Success = true
		out.ExitCode = 0
		return out
	}

	out.Err = err
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		out.Kind = KindSpawn
		return out
	}
	out.Kind = KindExit
	out.ExitCode = exitErr.ExitCode()
	if ctx.Err() == context.DeadlineExceeded {
		out.Err = fmt.Errorf("command timed out after %s: %w", r.Timeout, err)
	}
	return out
}

func spawnFailure(out Outcome, err error) Outcome {
	out.Success = false
	out.Kind = KindSpawn
	out.Err = err
	return out
}
