// Package counter implements an atomic completion counter: a 32-bit
// atomic integer, initialized to a job batch's size, that every
// contributing fiber decrements exactly once on exit. It is its own
// package (rather than living in jobsystem) because both jobsystem and
// fiber need to reference it without creating an import cycle — a Fiber
// holds the counter for the job currently bound to it, the manager owns
// the counter's lifetime.
package counter

import "sync/atomic"

// Counter is a release-ordered atomic countdown. Dec must be at least a
// release operation so a waiter that observes the counter reach target
// also observes every write the decrementing job made before exiting.
type Counter struct {
	value atomic.Int32
}

// New returns a Counter initialized to n, the job-batch size.
func New(n int32) *Counter {
	c := &Counter{}
	c.value.Store(n)
	return c
}

// Dec decrements the counter by one and returns the new value.
func (c *Counter) Dec() int32 {
	return c.value.Add(-1)
}

// Load reads the current value.
func (c *Counter) Load() int32 {
	return c.value.Load()
}
