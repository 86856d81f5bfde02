// Package notify delivers sync outcomes to the user.
package notify

import (
	"time"
)

// Notice is one human-readable status message.
type Notice struct {
	Success bool
	Message string
	// Detail holds diagnostics such as captured command output.
	Detail string
	// Duration is how long the notice should stay visible.
	Duration time.Duration
	At       time.Time
}

// ExpiresAt returns the time the notice stops being displayed.
func (n Notice) ExpiresAt() time.Time {
	return n.At.Add(n.Duration)
}

// Notifier is the sink for sync outcomes.
type Notifier interface {
	NotifySuccess(n Notice)
	NotifyFailure(n Notice)
	Log(line string)
}

// Multi fans out to every notifier in order.
type Multi []Notifier

func (m Multi) NotifySuccess(n Notice) {
	for _, x := range m {
		x.NotifySuccess(n)
	}
}

func (m Multi) NotifyFailure(n Notice) {
	for _, x := range m {
		x.NotifyFailure(n)
	}
}

func (m Multi) Log(line string) {
	for _, x := range m {
		x.Log(line)
	}
}
