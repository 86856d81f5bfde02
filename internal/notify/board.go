package notify

import (
	"sync"
	"time"
)

const (
	defaultBoardNotices = 20
	defaultBoardLines   = 100
)

// Board keeps notices in memory until their display duration runs out, plus
// the most recent log lines. It backs the status endpoint.
type Board struct {
	mu       sync.Mutex
	notices  []Notice
	lines    []string
	maxLines int
	maxItems int
	now      func() time.Time
}

func NewBoard() *Board {
	return &Board{
		maxLines: defaultBoardLines,
		maxItems: defaultBoardNotices,
		now:      time.Now,
	}
}

func (b *Board) NotifySuccess(n Notice) { b.add(n) }

func (b *Board) NotifyFailure(n Notice) { b.add(n) }

func (b *Board) Log(line string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = append(b.lines, line)
	if len(b.lines) > b.maxLines {
		b.lines = b.lines[len(b.lines)-b.maxLines:]
	}
}

func (b *Board) add(n Notice) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if n.At.IsZero() {
		n.At = b.now()
	}
	b.notices = append(b.prune(), n)
	if len(b.notices) > b.maxItems {
		b.notices = b.notices[len(b.notices)-b.maxItems:]
	}
}

// prune drops expired notices; callers hold mu.
func (b *Board) prune() []Notice {
	now := b.now()
	kept := b.notices[:0]
	for _, n := range b.notices {
		if now.Before(n.ExpiresAt()) {
			kept = append(kept, n)
		}
	}
	return kept
}

// Active returns the notices still on display, newest first.
func (b *Board) Active() []Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notices = b.prune()
	out := make([]Notice, 0, len(b.notices))
	for i := len(b.notices) - 1; i >= 0; i-- {
		out = append(out, b.notices[i])
	}
	return out
}

// Lines returns the retained log lines, oldest first.
func (b *Board) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.lines...)
}
