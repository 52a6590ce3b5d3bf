// Package poller contains the periodic feed watchers. Each poller registers a
// singleton recurring job with the timer service and reconciles one upstream
// listing against its registry on every tick.
package poller

import (
	"time"
)

// requestTimeout bounds every upstream fetch made from a tick.
const requestTimeout = 30 * time.Second

type Poller interface {
	Start() error
	Stop()
}

// Clock is the slice of the timer service the pollers need.
type Clock interface {
	Every(key string, period time.Duration, fn func()) error
	Cancel(key string)
}
