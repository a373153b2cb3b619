// Package clock lets the polling loop wait on time that tests control.
package clock

import "time"

// Clock is the subset of the time package the liveness loop needs.
type Clock interface {
	Now() time.Time
	// After behaves like time.After. The returned channel is buffered, so
	// abandoning it does not leak a goroutine.
	After(d time.Duration) <-chan time.Time
}

// Real returns a Clock backed by the time package.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }
