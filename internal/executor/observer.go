package executor

import (
	"context"
	"time"
)

// Status is the stage a point has reached.
type Status string

const (
	StatusStarted   Status = "started"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// Event reports a change in a point's status. Done counts the points that
// have finished, in any terminal state, out of Total.
type Event struct {
	Point    string
	Status   Status
	Err      error
	Duration time.Duration
	Done     int
	Total    int
}

// Observer receives point events. Observe is called from worker goroutines
// and must be safe for concurrent use.
type Observer interface {
	Observe(ctx context.Context, ev Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, ev Event)

// Observe calls f.
func (f ObserverFunc) Observe(ctx context.Context, ev Event) { f(ctx, ev) }
