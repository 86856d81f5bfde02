package pipeline

import (
	"context"

	"github.com/go-git/go-git/v5"
	"github.com/haierkeys/git-light-sync/internal/runner"
)

// DirtyChecker reports whether a working tree has changes relative to HEAD.
type DirtyChecker interface {
	IsDirty(ctx context.Context, dir string) (bool, error)
}

// StatusChecker inspects the worktree with go-git.
//
// Untracked files are ignored, like `git diff-index HEAD`: the stage step runs
// `git add -A` first, so anything still untracked is excluded by some ignore
// rule go-git may not know about (core.excludesFile, info/exclude).
//
// go-git ignores settings such as core.fileMode and core.autocrlf, so a
// clean answer is trusted but a dirty one is handed to Confirm, when set,
// before the commit step runs.
type StatusChecker struct {
	Confirm DirtyChecker
}

func (c StatusChecker) IsDirty(ctx context.Context, dir string) (bool, error) {
	dirty, err := c.worktreeDirty(dir)
	if err != nil || !dirty || c.Confirm == nil {
		return dirty, err
	}
	return c.Confirm.IsDirty(ctx, dir)
}

func (StatusChecker) worktreeDirty(dir string) (bool, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return false, err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return false, err
	}
	status, err := wt.Status()
	if err != nil {
		return false, err
	}
	for _, s := range status {
		if s.Staging == git.Untracked && s.Worktree == git.Untracked {
			continue
		}
		if s.Staging != git.Unmodified || s.Worktree != git.Unmodified {
			return true, nil
		}
	}
	return false, nil
}

// DiffIndexCommand exits non-zero when the tree differs from HEAD.
const DiffIndexCommand = "git diff-index --quiet HEAD"

// DiffIndexChecker asks git itself via `git diff-index --quiet HEAD`.
// Any failure, including a missing HEAD, reads as dirty.
type DiffIndexChecker struct {
	Runner runner.Runner
}

func (c DiffIndexChecker) IsDirty(ctx context.Context, dir string) (bool, error) {
	out := c.Runner.Run(ctx, DiffIndexCommand, dir)
	if out.Kind == runner.KindSpawn {
		return true, out.Err
	}
	return !out.Success, nil
}
